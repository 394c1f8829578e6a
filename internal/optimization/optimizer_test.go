package optimization

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBracketBounded(t *testing.T) {
	tests := []struct {
		name    string
		b       Bracket
		bounded bool
	}{
		{
			name:    "interior minimum",
			b:       Bracket{X1: 0, Y1: 9, X2: 2.5, Y2: 0.25, X3: 5, Y3: 4},
			bounded: true,
		},
		{
			name:    "tie with left neighbor",
			b:       Bracket{X1: 0, Y1: 1, X2: 1, Y2: 1, X3: 2, Y3: 3},
			bounded: false,
		},
		{
			name:    "flat",
			b:       Bracket{X1: 0, Y1: 2, X2: 1, Y2: 2, X3: 2, Y3: 2},
			bounded: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.Bounded(); got != tt.bounded {
				t.Errorf("Bounded() = %v, want %v", got, tt.bounded)
			}
		})
	}
}

func TestScalarFuncAdapts(t *testing.T) {
	cs := &countingScalar{f: func(x float64) float64 { return sphereObjective([]float64{x}) }}

	if got := cs.eval(3.0); got != 9.0 {
		t.Errorf("eval(3) = %v, want 9", got)
	}
	cs.eval(0.0)
	if cs.calls != 2 {
		t.Errorf("calls = %d, want 2", cs.calls)
	}
}

func TestSphereObjectiveHelpers(t *testing.T) {
	assertFloat64SlicesEqual(t,
		[]float64{sphereObjective([]float64{1, 2}), sphereObjective(nil)},
		[]float64{5, 0}, 1.e-12)

	eye := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	assertMatEqual(t, eye, mat.NewDense(2, 2, []float64{1, 0, 0, 1}), 0)
}

func TestErrorFormatting(t *testing.T) {
	err := NewError("bad bounds").WithComponent("direction_set").WithOperation("Optimize")
	want := "direction_set: Optimize: bad bounds"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := WrapErrorf(errors.New("boom"), "starting point rejected")
	if wrapped.Unwrap() == nil || wrapped.Unwrap().Error() != "boom" {
		t.Errorf("Unwrap() lost the cause: %v", wrapped)
	}
	if WrapError(nil, "nothing") != nil {
		t.Error("wrapping nil must return nil")
	}

	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Errorf("nil error string = %q", nilErr.Error())
	}
}

package objectives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownMinima(t *testing.T) {
	tests := []struct {
		name string
		at   []float64
	}{
		{"sphere", []float64{0, 0, 0}},
		{"rosenbrock", []float64{1, 1, 1}},
		{"rastrigin", []float64{0, 0}},
		{"shifted-quartic", []float64{3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, ok := Get(tt.name)
			require.True(t, ok)
			assert.InDelta(t, obj.Minimum, obj.Func(tt.at), 1.e-12)
		})
	}
}

func TestGetUnknown(t *testing.T) {
	_, ok := Get("does-not-exist")
	assert.False(t, ok)
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
	assert.Contains(t, names, "sphere")
	assert.Contains(t, names, "rosenbrock")
}

func TestRosenbrockValley(t *testing.T) {
	// Points on the parabola x2 = x1^2 sit on the valley floor and are
	// strictly better than points off it.
	on := Rosenbrock([]float64{0.5, 0.25})
	off := Rosenbrock([]float64{0.5, 1.25})
	assert.Less(t, on, off)
}

func TestRastriginMultimodal(t *testing.T) {
	// Near-integer points are local minima; the origin is the global one.
	assert.Greater(t, Rastrigin([]float64{1, 1}), Rastrigin([]float64{0, 0}))
	assert.InDelta(t, 0.0, Rastrigin([]float64{0, 0}), 1.e-12)
}

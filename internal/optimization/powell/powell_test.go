package powell

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func rosenbrock(x []float64) float64 {
	sum := 0.0
	for i := 0; i < len(x)-1; i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1.0 - x[i]
		sum += 100.0*a*a + b*b
	}
	return sum
}

func TestMinimizeSphere(t *testing.T) {
	x := []float64{1.0, -2.0, 3.0, 0.5}
	n := len(x)

	p := Params{MaxIter: 100, CritLim: -1.e60, Tol: 1.e-10}
	fbest := Minimize(p, sphere, x, sphere(x), NewWorkspace(n))

	assert.Less(t, fbest, 1.e-8, "sphere must be driven essentially to zero")
	for i, v := range x {
		assert.InDelta(t, 0.0, v, 1.e-3, "coordinate %d must be near the origin", i)
	}
}

func TestMinimizeSphereIterationBudget(t *testing.T) {
	// A convex quadratic must converge in a small constant multiple of
	// n outer iterations.
	x := []float64{2.0, -1.0, 0.5, 1.5, -2.5}
	n := len(x)

	iters := 0
	p := Params{
		MaxIter: 100,
		CritLim: -1.e60,
		Tol:     1.e-10,
		Progress: func(iter int, best float64) bool {
			iters = iter
			return true
		},
	}
	Minimize(p, sphere, x, sphere(x), NewWorkspace(n))

	assert.LessOrEqual(t, iters, 10*n, "convex quadratic took too many outer iterations")
}

func TestMinimizeMonotonicBest(t *testing.T) {
	x := []float64{-1.2, 1.0}
	var history []float64

	p := Params{
		MaxIter: 200,
		CritLim: -1.e60,
		Tol:     1.e-10,
		Progress: func(iter int, best float64) bool {
			history = append(history, best)
			return true
		},
	}
	Minimize(p, rosenbrock, x, rosenbrock(x), NewWorkspace(len(x)))

	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i], history[i-1],
			"best value increased between outer iterations %d and %d", i-1, i)
	}
}

func TestMinimizeRosenbrock(t *testing.T) {
	x := []float64{-1.2, 1.0}

	p := Params{MaxIter: 500, CritLim: -1.e60, Tol: 1.e-12}
	fbest := Minimize(p, rosenbrock, x, rosenbrock(x), NewWorkspace(len(x)))

	assert.Less(t, fbest, 1.e-4, "must reach the bottom of the banana valley")
	assert.InDelta(t, 1.0, x[0], 0.05)
	assert.InDelta(t, 1.0, x[1], 0.05)
}

func TestMinimizeSingleVariable(t *testing.T) {
	f := func(x []float64) float64 { return (x[0] - 2.0) * (x[0] - 2.0) }
	x := []float64{10.0}

	p := Params{MaxIter: 100, CritLim: -1.e60, Tol: 1.e-10}
	fbest := Minimize(p, f, x, f(x), NewWorkspace(1))

	assert.InDelta(t, 2.0, x[0], 1.e-4)
	assert.Less(t, fbest, 1.e-8)
}

func TestMinimizeCritLimStopsEarly(t *testing.T) {
	x := []float64{5.0, 5.0, 5.0}

	p := Params{MaxIter: 100, CritLim: 1.e-2, Tol: 1.e-12}
	fbest := Minimize(p, sphere, x, sphere(x), NewWorkspace(len(x)))

	assert.LessOrEqual(t, fbest, 1.e-2, "search must stop once the cutoff is reached")
}

func TestMinimizeProgressStop(t *testing.T) {
	x := []float64{3.0, -4.0}
	iters := 0

	p := Params{
		MaxIter: 100,
		CritLim: -1.e60,
		Tol:     1.e-12,
		Progress: func(iter int, best float64) bool {
			iters = iter
			return iter < 2
		},
	}
	Minimize(p, sphere, x, sphere(x), NewWorkspace(len(x)))

	assert.Equal(t, 2, iters, "search must honor the progress callback's stop request")
}

func TestMinimizeWorkspaceReuse(t *testing.T) {
	ws := NewWorkspace(3)
	p := Params{MaxIter: 100, CritLim: -1.e60, Tol: 1.e-10}

	x1 := []float64{1.0, 2.0, 3.0}
	f1 := Minimize(p, sphere, x1, sphere(x1), ws)

	shifted := func(x []float64) float64 {
		sum := 0.0
		for _, v := range x {
			d := v - 1.0
			sum += d * d
		}
		return sum
	}
	x2 := []float64{-2.0, 0.0, 4.0}
	f2 := Minimize(p, shifted, x2, shifted(x2), ws)

	assert.Less(t, f1, 1.e-8)
	assert.Less(t, f2, 1.e-8)
	for i := range x2 {
		assert.InDelta(t, 1.0, x2[i], 1.e-3, "coordinate %d", i)
	}
}

func TestMinimizeFlatFunctionTerminates(t *testing.T) {
	calls := 0
	flat := func(x []float64) float64 {
		calls++
		return 4.0
	}

	x := []float64{1.0, 1.0}
	p := Params{MaxIter: 50, CritLim: -1.e60, Tol: 1.e-8}
	fbest := Minimize(p, flat, x, 4.0, NewWorkspace(2))

	assert.Equal(t, 4.0, fbest)
	assert.Less(t, calls, 5000, "flatness guards must keep the search bounded")
}

func TestMinimizeRespectsIterationCap(t *testing.T) {
	// Rastrigin-style wiggles keep the search busy; the cap must win.
	f := func(x []float64) float64 {
		sum := 0.0
		for _, v := range x {
			sum += v*v - math.Cos(3.0*v)
		}
		return sum
	}

	iters := 0
	p := Params{
		MaxIter: 3,
		CritLim: -1.e60,
		Tol:     0, // Never converge on tolerance
		Progress: func(iter int, best float64) bool {
			iters = iter
			return true
		},
	}
	x := []float64{2.2, -3.1}
	Minimize(p, f, x, f(x), NewWorkspace(2))

	assert.LessOrEqual(t, iters, 3)
}

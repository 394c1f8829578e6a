package optimization

import (
	"context"
)

// Optimizer defines the interface for minimization algorithms
type Optimizer interface {
	// Optimize runs the minimization process
	Optimize(ctx context.Context, config OptimizerConfig) (*Result, error)

	// GetBestSolution returns the best solution found so far
	GetBestSolution() *Solution

	// GetHistory returns the history of outer iterations
	GetHistory() []Evaluation

	// Stop gracefully stops the minimization process
	Stop()
}

// OptimizerConfig contains configuration for the optimizer
type OptimizerConfig struct {
	// Objective function to minimize
	Objective ObjectiveFunc

	// Bounds for each dimension [min, max]; used to choose a starting
	// point when Start is nil
	Bounds [][2]float64

	// Start is the starting point. When nil, a random point inside
	// Bounds is drawn instead.
	Start []float64

	// Maximum number of outer iterations (0 means unlimited)
	MaxIterations int

	// Convergence tolerance for the outer loop
	Tolerance float64

	// CritLim stops the search as soon as the objective drops this low.
	// Normally set impossibly small so Tolerance governs convergence.
	CritLim float64

	// Random seed for reproducibility of the random start
	RandomSeed int64
}

// ScalarFunc is a univariate criterion function. It must be safely
// callable repeatedly with arbitrary arguments, including points beyond
// the original search bounds during boundary extension.
type ScalarFunc func(t float64) float64

// ObjectiveFunc is the vector criterion function being minimized. The
// minimization core treats it as a black box returning a real value;
// there is no error path inside the numeric loops.
type ObjectiveFunc func(x []float64) float64

// Point is an (x, f(x)) pair produced during a univariate search.
type Point struct {
	X float64
	Y float64
}

// Bracket is a triple of abscissas bracketing a univariate minimum.
// After a normal search the center satisfies Y2 <= Y1 and Y2 <= Y3
// (ties permitted). X1 < X2 < X3 is not always guaranteed: the boundary
// extension may leave the best point at an endpoint, signaled by Y1 or
// Y3 equal to Y2.
type Bracket struct {
	X1, Y1 float64
	X2, Y2 float64
	X3, Y3 float64
}

// Bounded reports whether the center is a strict interior minimum.
func (b Bracket) Bounded() bool {
	return b.Y2 < b.Y1 && b.Y2 < b.Y3
}

// Solution represents a point in the minimization space
type Solution struct {
	Parameters []float64
	Value      float64
}

// Evaluation records the best solution after one outer iteration
type Evaluation struct {
	Iteration int
	Solution  *Solution
}

// Result contains the outcome of a minimization run
type Result struct {
	BestSolution *Solution
	History      []Evaluation
	Iterations   int
	Evaluations  int
	Converged    bool
}

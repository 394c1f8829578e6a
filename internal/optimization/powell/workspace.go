package powell

import "gonum.org/v1/gonum/mat"

// Workspace holds the working storage for one minimization call: the
// line-search base point, the displacement vector, and the n x n
// direction matrix (one direction per row). The minimizer owns the
// buffers exclusively for the duration of a call and retains no
// references to them after returning, so a caller may reuse one
// Workspace across sequential calls of the same dimension. Concurrent
// calls must each bring their own Workspace.
type Workspace struct {
	// Base is the origin the line search steps out from.
	Base []float64

	// Delta accumulates the net displacement of one outer iteration,
	// which becomes the candidate replacement direction.
	Delta []float64

	// Directions is the current set of search directions, row-owned by
	// the minimizer and mutated in place: at most one row is replaced
	// per outer iteration.
	Directions *mat.Dense
}

// NewWorkspace allocates working storage for an n-variable problem.
func NewWorkspace(n int) *Workspace {
	return &Workspace{
		Base:       make([]float64, n),
		Delta:      make([]float64, n),
		Directions: mat.NewDense(n, n, nil),
	}
}

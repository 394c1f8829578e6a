// Package powell minimizes a function of n variables without
// derivatives by repeatedly minimizing along a changing set of n search
// directions (Powell's method). Each one-dimensional minimization is a
// bracketing search followed by Brent refinement against a scalar
// criterion that walks along the current direction.
package powell

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/RAVINE/internal/optimization"
	"github.com/copyleftdev/RAVINE/internal/optimization/bracket"
	"github.com/copyleftdev/RAVINE/internal/optimization/brent"
)

// Params configures a direction-set minimization.
type Params struct {
	// MaxIter caps the number of outer iterations. Zero means no cap.
	MaxIter int

	// CritLim stops the search as soon as the best value drops below
	// it. Normally set impossibly small.
	CritLim float64

	// Tol is the convergence tolerance, applied to the absolute
	// improvement when the function is small and relatively otherwise.
	Tol float64

	// Progress, when non-nil, is called after every completed outer
	// iteration with the iteration count and best value so far.
	// Returning false stops the search before the next iteration.
	Progress func(iteration int, best float64) bool
}

// Line-search refinement settings. Under convergence pressure (the
// outer loop has already seen one sub-tolerance iteration) the
// refinement tries extra hard; normally it refines only moderately.
const (
	hardRefineIters = 40
	easyRefineIters = 20
	hardRefineTol   = 1.e-7
	easyRefineTol   = 1.e-5
)

// lineSearch adapts the vector criterion into the scalar criterion the
// univariate searches call: f(base + t*dir). One instance is private to
// a single Minimize call, which keeps the engine reentrant.
type lineSearch struct {
	criter optimization.ObjectiveFunc
	x      []float64 // caller's point, reused as the trial buffer
	base   []float64
	dir    []float64
}

func (ls *lineSearch) eval(t float64) float64 {
	floats.AddScaledTo(ls.x, ls.base, t, ls.dir)
	return ls.criter(ls.x)
}

// minimizeAlong brackets and refines the minimum of ls along its
// current direction, expanding the trial half-width geometrically until
// a true bracket is found. It returns the refined bracket and value.
func minimizeAlong(p Params, ls *lineSearch, scale float64, tryHard bool) (optimization.Bracket, float64, bool) {
	var b optimization.Bracket
	for mult := 0.1; mult < 11.0; mult *= 4.0 {
		b = bracket.Search(bracket.Params{
			Low:     -mult * scale,
			High:    mult * scale,
			Points:  15,
			CritLim: p.CritLim,
		}, ls.eval)
		if b.Bounded() { // Loop until minimum is bounded
			break
		}
	}

	if b.Y2 < p.CritLim { // Good enough already?
		return b, b.Y2, true
	}

	rp := brent.Params{MaxIter: easyRefineIters, CritLim: p.CritLim, Eps: 10.0 * p.Tol, Tol: easyRefineTol}
	if tryHard {
		rp = brent.Params{MaxIter: hardRefineIters, CritLim: p.CritLim, Eps: p.Tol, Tol: hardRefineTol}
	}
	b, fval := brent.Refine(rp, ls.eval, b, b.Y2)
	return b, fval, false
}

// Minimize finds a local minimum of criter starting from x, whose
// function value ystart the caller already has. The point is updated in
// place and the best value found is returned. The workspace must be
// sized for len(x) variables.
func Minimize(p Params, criter optimization.ObjectiveFunc, x []float64, ystart float64, ws *Workspace) float64 {
	n := len(x)

	// Start from the coordinate axes
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				ws.Directions.Set(i, j, 1.0)
			} else {
				ws.Directions.Set(i, j, 0.0)
			}
		}
	}

	ls := &lineSearch{criter: criter, x: x, base: ws.Base}

	replaced := -1 // Assume no replacement will be done
	prevBest := 1.e60
	fbest := ystart
	scale := 0.2
	iter := 0
	convergenceCounter := 0

	for {
		if p.MaxIter > 0 && iter >= p.MaxIter {
			break
		}
		iter++

		if fbest < p.CritLim { // Do we satisfy the caller yet?
			break
		}

		// Convergence check: two consecutive iterations must each
		// improve by less than toler before we quit, so a single noisy
		// small step cannot stop the search.
		var toler float64
		if math.Abs(prevBest) <= 1.0 { // If the function is small
			toler = p.Tol // Work on absolutes
		} else { // But if it is large
			toler = p.Tol * math.Abs(prevBest) // Keep things relative
		}

		if prevBest-fbest <= toler {
			convergenceCounter++
			if convergenceCounter >= 2 {
				break
			}
		} else {
			convergenceCounter = 0
		}

		prevBest = fbest

		// Minimize along every search direction, tracking the one that
		// gave the most improvement. Skip the first direction if it was
		// the one just replaced: it is already minimized.
		copy(ws.Delta, x) // Preserve the starting point
		f0 := fbest       // And the function value there
		delta := -1.0     // Best single-direction improvement
		idelta := 0

		for idir := 0; idir < n; idir++ {
			if n > 1 && idir == 0 && replaced == 0 {
				continue
			}
			copy(ws.Base, x) // The scalar criterion steps out from here
			ls.dir = ws.Directions.RawRowView(idir)

			b, fval, early := minimizeAlong(p, ls, scale, convergenceCounter > 0)
			if early {
				if b.Y2 < fbest { // If the global search improved
					floats.AddScaledTo(x, ws.Base, b.X2, ls.dir)
					fbest = b.Y2
				} else { // Else revert to the starting point
					copy(x, ws.Base)
				}
				return fbest
			}

			scale = math.Abs(b.X2)/float64(n) + (1.0-1.0/float64(n))*scale

			floats.AddScaledTo(x, ws.Base, b.X2, ls.dir)
			if fbest-fval > delta { // Keep track of best direction
				delta = fbest - fval
				idelta = idir
			}
			fbest = fval // This is always the best so far
		}

		// Before the direction sweep we stood at Delta with f=f0; now
		// we stand at x with f=fbest. The average direction of motion
		// may point right along a ravine, so step out once more along
		// it and see.
		for i := 0; i < n; i++ {
			ws.Delta[i] = x[i] - ws.Delta[i] // The average direction
			ws.Base[i] = x[i] + ws.Delta[i]  // Step out to this point
		}
		fval := criter(ws.Base)

		// Powell's replacement test: if the extrapolated step improved
		// on the pre-iteration value AND the second-derivative-style
		// inequality favors the swap, replace the direction of maximum
		// improvement with the average direction. Record which row was
		// replaced so the next sweep can skip it. Without this test the
		// direction set can collapse onto a linearly dependent basis.
		replaced = -1
		ftest := fbest // Save for the replacement test
		if fval < fbest {
			fbest = fval // Might as well keep this better point
			copy(x, ws.Base)
		}

		if fval < f0 { // First of two tests for replacement
			test := f0 - ftest - delta
			test = 2.0 * (f0 - 2.0*ftest + fval) * test * test
			if test < delta*(f0-fval)*(f0-fval) { // Use this direction
				replaced = idelta // Record the upcoming replacement
				length := floats.Norm(ws.Delta, 2)
				for i := 0; i < n; i++ {
					ws.Delta[i] /= length // Keep direction unit length
				}
				ls.dir = ws.Delta
				copy(ws.Base, x) // Set out from here

				// Land precisely on the new direction's minimum before
				// installing it.
				b, fval, early := minimizeAlong(p, ls, scale, convergenceCounter > 0)
				if early {
					if b.Y2 < fbest {
						floats.AddScaledTo(x, ws.Base, b.X2, ls.dir)
						fbest = b.Y2
					} else {
						copy(x, ws.Base)
					}
					break
				}

				scale = math.Abs(b.X2)/float64(n) + (1.0-1.0/float64(n))*scale
				floats.AddScaledTo(x, ws.Base, b.X2, ls.dir)
				fbest = fval

				ws.Directions.SetRow(idelta, ws.Delta)
			}
		}

		if p.Progress != nil && !p.Progress(iter, fbest) {
			break
		}
	}

	return fbest
}

// Package brent refines a bracketing triple toward a local minimum with
// Brent's method: parabolic interpolation through the three best points
// when the estimate is trustworthy, golden-section steps otherwise.
package brent

import (
	"math"

	"github.com/copyleftdev/RAVINE/internal/optimization"
)

// golden is the section ratio that keeps interval shrinkage optimal
// when no parabolic estimate can be used.
const golden = 0.3819660

// minDenom guards the parabolic step against a vanishing denominator,
// forcing a golden-section fallback instead of an infinite step.
const minDenom = 1.e-40

// Params configures a refinement run.
type Params struct {
	// MaxIter caps the number of refinement iterations.
	MaxIter int

	// CritLim ends the run as soon as the best value drops below it.
	// In most cases this should be set impossibly small so that Eps and
	// Tol define convergence.
	CritLim float64

	// Eps is the relative function-improvement tolerance.
	Eps float64

	// Tol is the abscissa convergence tolerance, applied relative to
	// the best point with a floor of one to stay meaningful near zero.
	Tol float64
}

// Refine narrows the bracket b around its local minimum and returns the
// narrowed bracket together with the best function value found. The
// best abscissa is the returned bracket's X2. The y argument is the
// function value at b.X2, which the caller always has in hand.
func Refine(p Params, criter optimization.ScalarFunc, b optimization.Bracket, y float64) (optimization.Bracket, float64) {
	// The three best abscissas seen so far and the function values there
	x0, x1, x2 := b.X2, b.X2, b.X2
	y0, y1, y2 := y, y, y

	xleft := b.X1
	xright := b.X3

	// Force a golden-section step the first iteration by zeroing the
	// recorded movement.
	movement := 0.0
	trial := 0.0

	for iter := 0; iter < p.MaxIter; iter++ {

		if y0 < p.CritLim { // Done?
			break
		}

		// This test is more sophisticated than it looks. It tests the
		// closeness of xright and xleft (relative to smallDist), AND
		// makes sure x0 is near the midpoint of that interval.
		smallStep := math.Abs(x0)
		if smallStep < 1.0 {
			smallStep = 1.0
		}
		smallStep *= p.Tol
		smallDist := 2.0 * smallStep

		xmid := 0.5 * (xleft + xright)

		if math.Abs(x0-xmid) <= smallDist-0.5*(xright-xleft) {
			break
		}

		// Avoid refining the function to the limits of precision
		if iter >= 4 && (y2-y0)/(y0+1.0) < p.Eps {
			break
		}

		var thisX float64
		if math.Abs(movement) > smallStep { // Try parabolic only if moving
			temp1 := (x0 - x2) * (y0 - y1)
			temp2 := (x0 - x1) * (y0 - y2)
			numer := (x0-x1)*temp2 - (x0-x2)*temp1
			denom := 2.0 * (temp1 - temp2)
			testdist := movement // Intervals must get smaller
			movement = trial
			if math.Abs(denom) > minDenom {
				trial = numer / denom // Parabolic estimate of minimum
			} else {
				trial = 1.e40
			}

			temp1 = trial + x0
			if 2.0*math.Abs(trial) < math.Abs(testdist) && // If shrinking
				temp1 > xleft && temp1 < xright { // And safely in bounds
				thisX = temp1 // Use parabolic estimate
				if thisX-xleft < smallDist || // Cannot get too close
					xright-thisX < smallDist { // to the endpoints
					if x0 < xmid {
						trial = smallStep
					} else {
						trial = -smallStep
					}
				}
			} else { // Punt via golden section because cannot use parabolic
				if xmid > x0 {
					movement = xright - x0
				} else {
					movement = xleft - x0
				}
				trial = golden * movement
			}
		} else { // Must use golden section due to insufficient movement
			if xmid > x0 {
				movement = xright - x0
			} else {
				movement = xleft - x0
			}
			trial = golden * movement
		}

		if math.Abs(trial) >= smallStep { // Make sure we move a good distance
			thisX = x0 + trial
		} else if trial > 0.0 {
			thisX = x0 + smallStep
		} else {
			thisX = x0 - smallStep
		}

		// Evaluate the function here and insert this new point in the
		// correct position in the best hierarchy.
		thisY := criter(thisX)

		if thisY <= y0 { // Improvement
			if thisX < x0 {
				xright = x0
			} else {
				xleft = x0
			}
			x2, x1, x0 = x1, x0, thisX
			y2, y1, y0 = y1, y0, thisY
		} else { // No improvement
			if thisX >= x0 {
				xright = thisX
			} else {
				xleft = thisX
			}

			if thisY <= y1 || x1 == x0 {
				x2, x1 = x1, thisX
				y2, y1 = y1, thisY
			} else if thisY <= y2 || x2 == x0 || x2 == x1 {
				x2 = thisX
				y2 = thisY
			}
		}
	}

	return optimization.Bracket{
		X1: xleft, Y1: b.Y1,
		X2: x0, Y2: y0,
		X3: xright, Y3: b.Y3,
	}, y0
}

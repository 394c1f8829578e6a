// Package bracket locates a rough minimum of a univariate function by
// scanning equispaced intervals, extending past the caller's bounds when
// the function is still decreasing at an endpoint.
package bracket

import (
	"math"

	"github.com/copyleftdev/RAVINE/internal/optimization"
)

// Params configures a bracketing search.
type Params struct {
	// Low and High bound the domain to be scanned. If the function is
	// still decreasing at one of these endpoints the search continues
	// beyond it.
	Low  float64
	High float64

	// Points is the number of abscissas to try. A negative count means
	// the caller already knows f(Low) and supplies it in FirstY, saving
	// one evaluation.
	Points int

	// LogSpace spaces the abscissas geometrically instead of
	// arithmetically. Low and High must then share a sign.
	LogSpace bool

	// CritLim ends the scan early once a point at or below it has both
	// neighbors known. The early exit trades global coverage for speed,
	// so in most cases it should be set impossibly small.
	CritLim float64

	// FirstY is f(Low), consulted only when Points is negative.
	FirstY float64
}

// Search scans the domain and returns a triple whose center point has
// the least function value seen. In pathological (flat) cases the
// neighbors' values may equal the center's.
func Search(p Params, criter optimization.ScalarFunc) optimization.Bracket {
	var b optimization.Bracket

	npts := p.Points
	knowFirstPoint := false
	if npts < 0 {
		npts = -npts
		knowFirstPoint = true
	}

	var rate float64
	if p.LogSpace {
		rate = math.Exp(math.Log(p.High/p.Low) / float64(npts-1))
	} else {
		rate = (p.High - p.Low) / float64(npts-1)
	}

	x := p.Low
	previous := 0.0
	ibest := -1       // for proper critlim escape
	turnedUp := false // must know if function increased after min

	for i := 0; i < npts; i++ {
		var y float64
		if i > 0 || !knowFirstPoint {
			y = criter(x)
		} else {
			y = p.FirstY
		}

		if i == 0 || y < b.Y2 { // Keep track of best here
			ibest = i
			b.X2 = x
			b.Y2 = y
			b.Y1 = previous  // Function value to its left
			turnedUp = false // Min is not yet bounded
		} else if i == ibest+1 { // Didn't improve so this point may
			b.Y3 = y // be the right neighbor of the best
			turnedUp = true
		}

		previous = y // Keep track for left neighbor of best

		if b.Y2 <= p.CritLim && ibest > 0 && turnedUp {
			break // Done if good enough and both neighbors found
		}

		if p.LogSpace {
			x *= rate
		} else {
			x += rate
		}
	}

	// We have a minimum (within Low,High) at (X2,Y2). Compute X1 and
	// X3, its neighbors. Y1 and Y3 are already known unless the minimum
	// is at an endpoint.
	if p.LogSpace {
		b.X1 = b.X2 / rate
		b.X3 = b.X2 * rate
	} else {
		b.X1 = b.X2 - rate
		b.X3 = b.X2 + rate
	}

	// The caller may have given a bad scan range. If the function was
	// still decreasing at an endpoint, bail the caller out by walking
	// outward with a doubling step until the function turns up or goes
	// flat for three points in a row.
	if !turnedUp { // Extend to the right (larger x)
		for {
			b.Y3 = criter(b.X3)

			if b.Y3 > b.Y2 { // Function increased, done
				break
			}
			if b.Y1 == b.Y2 && b.Y2 == b.Y3 { // Give up if flat
				break
			}

			b.X1 = b.X2 // Shift all points
			b.Y1 = b.Y2
			b.X2 = b.X3
			b.Y2 = b.Y3

			rate *= 2.0 // Step further each time
			if p.LogSpace {
				b.X3 *= rate
			} else {
				b.X3 += rate
			}
		}
	} else if ibest == 0 { // Extend to the left (smaller x)
		for {
			b.Y1 = criter(b.X1)

			if b.Y1 > b.Y2 { // Function increased, done
				break
			}
			if b.Y1 == b.Y2 && b.Y2 == b.Y3 { // Give up if flat
				break
			}

			b.X3 = b.X2 // Shift all points
			b.Y3 = b.Y2
			b.X2 = b.X1
			b.Y2 = b.Y1

			rate *= 2.0 // Step further each time
			if p.LogSpace {
				b.X1 /= rate
			} else {
				b.X1 -= rate
			}
		}
	}

	return b
}

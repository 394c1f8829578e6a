package bracket

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchUnimodal(t *testing.T) {
	f := func(x float64) float64 { return (x - 3.0) * (x - 3.0) }

	b := Search(Params{Low: 0, High: 10, Points: 21, CritLim: -1.e60}, f)

	assert.LessOrEqual(t, b.Y2, b.Y1, "center must not exceed left neighbor")
	assert.LessOrEqual(t, b.Y2, b.Y3, "center must not exceed right neighbor")
	assert.True(t, b.Bounded())
	assert.InDelta(t, 3.0, b.X2, 0.5, "center should land on the grid point nearest the minimum")
	assert.Less(t, b.X1, b.X2)
	assert.Less(t, b.X2, b.X3)
}

func TestSearchLogSpacing(t *testing.T) {
	// Minimum of (ln x)^2 is at x = 1, well inside a geometric grid
	// over [0.01, 100].
	f := func(x float64) float64 {
		l := math.Log(x)
		return l * l
	}

	b := Search(Params{Low: 0.01, High: 100, Points: 21, LogSpace: true, CritLim: -1.e60}, f)

	assert.LessOrEqual(t, b.Y2, b.Y1)
	assert.LessOrEqual(t, b.Y2, b.Y3)
	assert.InDelta(t, 1.0, b.X2, 0.7)
}

func TestSearchExtendsLeft(t *testing.T) {
	// Minimum at 0, outside the scanned domain [10, 20]: the search
	// must walk left past the lower bound.
	calls := 0
	f := func(x float64) float64 {
		calls++
		return x * x
	}

	b := Search(Params{Low: 10, High: 20, Points: 11, CritLim: -1.e60}, f)

	assert.Less(t, math.Abs(b.X2), 10.0, "center must end up closer to the true minimum than either bound")
	assert.LessOrEqual(t, b.Y2, b.Y1)
	assert.LessOrEqual(t, b.Y2, b.Y3)
	assert.Less(t, calls, 100, "extension must not run away")
}

func TestSearchExtendsRight(t *testing.T) {
	f := func(x float64) float64 { return (x - 50.0) * (x - 50.0) }

	b := Search(Params{Low: 0, High: 10, Points: 11, CritLim: -1.e60}, f)

	assert.Greater(t, b.X2, 10.0)
	assert.LessOrEqual(t, b.Y2, b.Y1)
	assert.LessOrEqual(t, b.Y2, b.Y3)
}

func TestSearchFlatFunctionTerminates(t *testing.T) {
	calls := 0
	f := func(x float64) float64 {
		calls++
		return 7.5
	}

	b := Search(Params{Low: 0, High: 1, Points: 5, CritLim: -1.e60}, f)

	// The three-equal-values check must stop the extension loop.
	assert.Less(t, calls, 20)
	assert.Equal(t, 7.5, b.Y2)
}

func TestSearchKnownFirstPoint(t *testing.T) {
	count := func(calls *int) func(float64) float64 {
		return func(x float64) float64 {
			*calls++
			return (x - 3.0) * (x - 3.0)
		}
	}

	var plain, seeded int
	b1 := Search(Params{Low: 0, High: 10, Points: 5, CritLim: -1.e60}, count(&plain))
	b2 := Search(Params{Low: 0, High: 10, Points: -5, CritLim: -1.e60, FirstY: 9.0}, count(&seeded))

	require.Equal(t, plain-1, seeded, "negative point count must save exactly one evaluation")
	assert.Equal(t, b1, b2)
}

func TestSearchEarlyExit(t *testing.T) {
	calls := 0
	f := func(x float64) float64 {
		calls++
		return (x - 3.0) * (x - 3.0)
	}

	b := Search(Params{Low: 0, High: 100, Points: 101, CritLim: 5.0}, f)

	assert.LessOrEqual(t, b.Y2, 5.0)
	assert.True(t, b.Bounded(), "early exit requires both neighbors known")
	assert.Less(t, calls, 101, "scan must stop before covering the whole grid")
}

func TestSearchEarlyExitNeedsBoundedTriple(t *testing.T) {
	// The very first point already satisfies the threshold, but the
	// minimum is not yet bounded there, so the scan must continue until
	// it is.
	f := func(x float64) float64 { return x * x }

	b := Search(Params{Low: -1, High: 5, Points: 13, CritLim: 10.0}, f)

	assert.True(t, b.Bounded())
	assert.InDelta(t, 0.0, b.X2, 0.51)
}

func TestSearchCosine(t *testing.T) {
	b := Search(Params{Low: 0, High: 2 * math.Pi, Points: 25, CritLim: -1.e60}, math.Cos)

	assert.InDelta(t, math.Pi, b.X2, 0.3)
	assert.InDelta(t, -1.0, b.Y2, 0.05)
}

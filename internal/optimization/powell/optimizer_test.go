package powell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/RAVINE/internal/optimization"
)

func TestOptimizerSphere(t *testing.T) {
	opt, err := NewOptimizer(optimization.OptimizerConfig{
		Objective:     sphere,
		Start:         []float64{2.0, -3.0, 1.0},
		MaxIterations: 100,
		Tolerance:     1.e-10,
	})
	require.NoError(t, err)

	result, err := opt.Optimize(context.Background(), optimization.OptimizerConfig{})
	require.NoError(t, err)

	require.NotNil(t, result.BestSolution)
	assert.Less(t, result.BestSolution.Value, 1.e-8)
	assert.True(t, result.Converged)
	assert.Greater(t, result.Evaluations, 0)
	assert.NotEmpty(t, result.History)
	assert.Equal(t, result.BestSolution, opt.GetBestSolution())
	assert.Equal(t, result.History, opt.GetHistory())
}

func TestOptimizerHistoryMonotonic(t *testing.T) {
	opt, err := NewOptimizer(optimization.OptimizerConfig{
		Objective:     rosenbrock,
		Start:         []float64{-1.2, 1.0},
		MaxIterations: 200,
		Tolerance:     1.e-10,
	})
	require.NoError(t, err)

	result, err := opt.Optimize(context.Background(), optimization.OptimizerConfig{})
	require.NoError(t, err)

	history := result.History
	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		assert.LessOrEqual(t, history[i].Solution.Value, history[i-1].Solution.Value)
	}
}

func TestOptimizerRandomStartReproducible(t *testing.T) {
	cfg := optimization.OptimizerConfig{
		Objective:     sphere,
		Bounds:        [][2]float64{{-5, 5}, {-5, 5}},
		MaxIterations: 50,
		Tolerance:     1.e-8,
		RandomSeed:    42,
	}

	first, err := NewOptimizer(cfg)
	require.NoError(t, err)
	r1, err := first.Optimize(context.Background(), optimization.OptimizerConfig{})
	require.NoError(t, err)

	second, err := NewOptimizer(cfg)
	require.NoError(t, err)
	r2, err := second.Optimize(context.Background(), optimization.OptimizerConfig{})
	require.NoError(t, err)

	assert.Equal(t, r1.Evaluations, r2.Evaluations)
	assert.Equal(t, r1.BestSolution.Value, r2.BestSolution.Value)
	assert.Equal(t, r1.BestSolution.Parameters, r2.BestSolution.Parameters)
}

func TestOptimizerMissingObjective(t *testing.T) {
	opt, err := NewOptimizer(optimization.OptimizerConfig{})
	require.NoError(t, err)

	_, err = opt.Optimize(context.Background(), optimization.OptimizerConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "objective function is required")
}

func TestOptimizerMissingStartAndBounds(t *testing.T) {
	opt, err := NewOptimizer(optimization.OptimizerConfig{Objective: sphere})
	require.NoError(t, err)

	_, err = opt.Optimize(context.Background(), optimization.OptimizerConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting point or bounds")
}

func TestOptimizerInvalidBounds(t *testing.T) {
	opt, err := NewOptimizer(optimization.OptimizerConfig{
		Objective: sphere,
		Bounds:    [][2]float64{{5, -5}},
	})
	require.NoError(t, err)

	_, err = opt.Optimize(context.Background(), optimization.OptimizerConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bounds")
}

func TestOptimizerDimensionMismatch(t *testing.T) {
	opt, err := NewOptimizer(optimization.OptimizerConfig{
		Objective: sphere,
		Start:     []float64{1, 2, 3},
		Bounds:    [][2]float64{{-5, 5}},
	})
	require.NoError(t, err)

	_, err = opt.Optimize(context.Background(), optimization.OptimizerConfig{})
	require.Error(t, err)
}

func TestOptimizerCancellation(t *testing.T) {
	opt, err := NewOptimizer(optimization.OptimizerConfig{
		Objective:     rosenbrock,
		Start:         []float64{-1.2, 1.0},
		MaxIterations: 1000,
		Tolerance:     1.e-14,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancelled before the run even starts

	_, err = opt.Optimize(ctx, optimization.OptimizerConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

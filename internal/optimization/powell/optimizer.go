package powell

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/copyleftdev/RAVINE/internal/optimization"
)

// impossiblyLow is the default CritLim: low enough that tolerance-based
// convergence always governs.
const impossiblyLow = -1.e60

// Optimizer wraps Minimize behind the optimization.Optimizer interface
// so the job server can drive it like any other algorithm. Each
// Optimize call owns its private workspace and line-search state, so
// concurrent jobs never share scratch buffers.
type Optimizer struct {
	// Configuration
	config optimization.OptimizerConfig

	// Random number generator for the starting point
	rng *rand.Rand

	// Best solution found
	bestSolution *optimization.Solution

	// History of outer iterations
	history []optimization.Evaluation

	// For cancellation
	cancel context.CancelFunc

	logger *zap.Logger
}

// NewOptimizer creates a new direction-set Optimizer
func NewOptimizer(config optimization.OptimizerConfig) (*Optimizer, error) {
	if config.MaxIterations < 1 {
		config.MaxIterations = 50 // Default value
	}
	if config.Tolerance <= 0.0 {
		config.Tolerance = 1.e-8 // Default value
	}
	if config.CritLim == 0.0 {
		config.CritLim = impossiblyLow
	}

	// Initialize random number generator
	rng := rand.New(rand.NewSource(config.RandomSeed))
	if config.RandomSeed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	logger, _ := zap.NewProduction()

	return &Optimizer{
		config:  config,
		rng:     rng,
		history: make([]optimization.Evaluation, 0, config.MaxIterations),
		logger:  logger.Named("direction_set"),
	}, nil
}

// Optimize runs the direction-set minimization
func (o *Optimizer) Optimize(ctx context.Context, config optimization.OptimizerConfig) (*optimization.Result, error) {
	// Update config if provided
	if config.Objective != nil {
		o.config = config
		if o.config.MaxIterations < 1 {
			o.config.MaxIterations = 50
		}
		if o.config.Tolerance <= 0.0 {
			o.config.Tolerance = 1.e-8
		}
		if o.config.CritLim == 0.0 {
			o.config.CritLim = impossiblyLow
		}
	}

	if o.config.Objective == nil {
		return nil, optimization.NewError("objective function is required").
			WithComponent("direction_set").WithOperation("Optimize")
	}

	x, err := o.startingPoint()
	if err != nil {
		return nil, err
	}
	n := len(x)

	// Create a cancellable context
	ctx, o.cancel = context.WithCancel(ctx)
	defer o.cancel()

	// Count every criterion call, including those made by the
	// univariate searches.
	evaluations := 0
	objective := func(p []float64) float64 {
		evaluations++
		return o.config.Objective(p)
	}

	o.logger.Debug("Starting minimization",
		zap.Int("dimensions", n),
		zap.Int("max_iterations", o.config.MaxIterations),
		zap.Float64("tolerance", o.config.Tolerance))

	ystart := objective(x)
	o.updateBestSolution(x, ystart)

	iterations := 0
	cancelled := false
	progress := func(iter int, best float64) bool {
		iterations = iter
		o.history = append(o.history, optimization.Evaluation{
			Iteration: iter,
			Solution: &optimization.Solution{
				Parameters: append([]float64(nil), x...),
				Value:      best,
			},
		})
		select {
		case <-ctx.Done():
			cancelled = true
			return false
		default:
			return true
		}
	}

	ws := NewWorkspace(n)
	fbest := Minimize(Params{
		MaxIter:  o.config.MaxIterations,
		CritLim:  o.config.CritLim,
		Tol:      o.config.Tolerance,
		Progress: progress,
	}, objective, x, ystart, ws)

	if cancelled {
		return nil, ctx.Err()
	}

	o.updateBestSolution(x, fbest)

	o.logger.Debug("Minimization finished",
		zap.Int("iterations", iterations),
		zap.Int("evaluations", evaluations),
		zap.Float64("best", fbest))

	return &optimization.Result{
		BestSolution: o.bestSolution,
		History:      o.history,
		Iterations:   iterations,
		Evaluations:  evaluations,
		Converged:    iterations < o.config.MaxIterations || fbest <= o.config.CritLim,
	}, nil
}

// GetBestSolution returns the best solution found so far
func (o *Optimizer) GetBestSolution() *optimization.Solution {
	return o.bestSolution
}

// GetHistory returns the history of outer iterations
func (o *Optimizer) GetHistory() []optimization.Evaluation {
	return o.history
}

// Stop stops the minimization process
func (o *Optimizer) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

// updateBestSolution updates the best solution if the new one is better
func (o *Optimizer) updateBestSolution(params []float64, value float64) {
	if o.bestSolution == nil || value < o.bestSolution.Value {
		o.bestSolution = &optimization.Solution{
			Parameters: append([]float64(nil), params...),
			Value:      value,
		}
	}
}

// startingPoint resolves the starting point from the config: an
// explicit start if given, otherwise a random point inside the bounds.
func (o *Optimizer) startingPoint() ([]float64, error) {
	if len(o.config.Start) > 0 {
		if len(o.config.Bounds) > 0 && len(o.config.Bounds) != len(o.config.Start) {
			return nil, optimization.NewErrorf("start has %d dimensions but bounds have %d",
				len(o.config.Start), len(o.config.Bounds)).
				WithComponent("direction_set").WithOperation("Optimize")
		}
		return append([]float64(nil), o.config.Start...), nil
	}

	if len(o.config.Bounds) == 0 {
		return nil, optimization.NewError("either a starting point or bounds are required").
			WithComponent("direction_set").WithOperation("Optimize")
	}

	x := make([]float64, len(o.config.Bounds))
	for i, b := range o.config.Bounds {
		if b[1] < b[0] || math.IsNaN(b[0]) || math.IsNaN(b[1]) {
			return nil, optimization.NewErrorf("invalid bounds for dimension %d: [%g, %g]",
				i, b[0], b[1]).
				WithComponent("direction_set").WithOperation("Optimize")
		}
		x[i] = b[0] + o.rng.Float64()*(b[1]-b[0])
	}
	return x, nil
}

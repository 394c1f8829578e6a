package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/RAVINE/internal/optimization"
	"github.com/copyleftdev/RAVINE/internal/optimization/objectives"
	"github.com/copyleftdev/RAVINE/internal/optimization/powell"
)

var (
	objectiveName string
	startCSV      string
	boundsCSV     string
	maxIters      int
	tolerance     float64
	critLim       float64
	seed          int64
	showHistory   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single minimization",
	Long: `Runs one minimization of a named objective function and prints the
result. The starting point is given explicitly with --start, or drawn
uniformly from --bounds.`,
	RunE: runMinimization,
}

func init() {
	runCmd.Flags().StringVar(&objectiveName, "objective", "", "Objective function name (see 'ravine objectives')")
	runCmd.Flags().StringVar(&startCSV, "start", "", "Starting point as comma-separated coordinates, e.g. -1.2,1.0")
	runCmd.Flags().StringVar(&boundsCSV, "bounds", "", "Per-dimension bounds as lo:hi pairs, e.g. -5:5,-5:5")
	runCmd.Flags().IntVar(&maxIters, "iters", 200, "Max iterations")
	runCmd.Flags().Float64Var(&tolerance, "tol", 1e-8, "Convergence tolerance")
	runCmd.Flags().Float64Var(&critLim, "critlim", 0, "Stop as soon as the value drops below this (0 disables)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for bounds-drawn starts (0 uses the clock)")
	runCmd.Flags().BoolVar(&showHistory, "history", false, "Print the per-iteration best value")

	runCmd.MarkFlagRequired("objective")
	rootCmd.AddCommand(runCmd)
}

func runMinimization(cmd *cobra.Command, args []string) error {
	obj, ok := objectives.Get(objectiveName)
	if !ok {
		return fmt.Errorf("unknown objective %q, run 'ravine objectives' for the list", objectiveName)
	}

	start, err := parseFloats(startCSV)
	if err != nil {
		return fmt.Errorf("parsing --start: %w", err)
	}
	bounds, err := parseBounds(boundsCSV)
	if err != nil {
		return fmt.Errorf("parsing --bounds: %w", err)
	}
	if len(start) == 0 && len(bounds) == 0 {
		return fmt.Errorf("either --start or --bounds is required")
	}

	optimizer, err := powell.NewOptimizer(optimization.OptimizerConfig{
		Objective:     obj.Func,
		Start:         start,
		Bounds:        bounds,
		MaxIterations: maxIters,
		Tolerance:     tolerance,
		CritLim:       critLim,
		RandomSeed:    seed,
	})
	if err != nil {
		return fmt.Errorf("creating optimizer: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	began := time.Now()
	result, err := optimizer.Optimize(ctx, optimization.OptimizerConfig{})
	if err != nil {
		return fmt.Errorf("minimization failed: %w", err)
	}
	elapsed := time.Since(began)

	if showHistory {
		for _, eval := range result.History {
			fmt.Printf("iter %3d  f = %.10g\n", eval.Iteration, eval.Solution.Value)
		}
	}

	fmt.Printf("objective:   %s\n", obj.Name)
	fmt.Printf("minimum:     %.10g\n", result.BestSolution.Value)
	fmt.Printf("at:          %s\n", formatFloats(result.BestSolution.Parameters))
	fmt.Printf("iterations:  %d\n", result.Iterations)
	fmt.Printf("evaluations: %d\n", result.Evaluations)
	fmt.Printf("converged:   %v\n", result.Converged)
	fmt.Printf("elapsed:     %s\n", elapsed)

	return nil
}

func parseFloats(csv string) ([]float64, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", part)
		}
		values[i] = v
	}
	return values, nil
}

func parseBounds(csv string) ([][2]float64, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	bounds := make([][2]float64, len(parts))
	for i, part := range parts {
		pair := strings.Split(strings.TrimSpace(part), ":")
		if len(pair) != 2 {
			return nil, fmt.Errorf("invalid bound %q, expected lo:hi", part)
		}
		lo, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", pair[0])
		}
		hi, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", pair[1])
		}
		bounds[i] = [2]float64{lo, hi}
	}
	return bounds, nil
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', 8, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "ravine",
	Short: "Derivative-free function minimization service",
	Long: `RAVINE minimizes scalar and multivariate functions without derivatives,
combining a global bracketing scan, Brent refinement, and Powell's
direction-set method. It runs either as a one-shot CLI or as an HTTP
service with job management and result persistence.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

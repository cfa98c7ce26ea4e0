package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stategraph/stategraph/internal/infrastructure/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "stategraph",
	Short: "Run and inspect state graphs defined in YAML",
	Long: `stategraph executes graph definitions: named nodes connected by fixed
and conditional edges, sharing a reducer-merged state. Definitions are
YAML files; see the examples directory for the format.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine; explicit env always wins.
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

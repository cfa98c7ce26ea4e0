package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stategraph/stategraph/internal/app/engine"
	"github.com/stategraph/stategraph/internal/core/state"
	"github.com/stategraph/stategraph/internal/declarative"
	"github.com/stategraph/stategraph/pkg/registry"
)

var (
	runInput     string
	runMode      string
	runStepLimit int
	runStream    bool
)

var runCmd = &cobra.Command{
	Use:   "run <definition.yaml>",
	Short: "Execute a graph definition",
	Long: `Loads a YAML graph definition and runs it to completion. Nodes in the
definition must use literal updates; fn references need code registered
through the library API.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraph(cmd, args[0])
	},
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "{}", "initial state as JSON")
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "full", "stream mode: delta or full")
	runCmd.Flags().IntVar(&runStepLimit, "step-limit", 0, "abort after this many steps (0 = definition's limit)")
	runCmd.Flags().BoolVar(&runStream, "stream", false, "print one event per step instead of the final state")
	rootCmd.AddCommand(runCmd)
}

func runGraph(cmd *cobra.Command, path string) error {
	loaded, err := declarative.LoadFile(path, registry.New())
	if err != nil {
		return err
	}

	var initial state.State
	if err := json.Unmarshal([]byte(runInput), &initial); err != nil {
		return fmt.Errorf("parse --input: %w", err)
	}

	limit := runStepLimit
	if limit == 0 {
		limit = loaded.StepLimit
	}
	opts := []engine.RunOption{
		engine.WithStreamMode(engine.StreamMode(runMode)),
		engine.WithStepLimit(limit),
	}
	eng := engine.New(engine.WithLogger(newLogger()))
	ctx := cmd.Context()

	if runStream {
		s := eng.Stream(ctx, loaded.Graph, initial, opts...)
		for ev := range s.Events() {
			if err := printJSON(ev); err != nil {
				return err
			}
		}
		return s.Err()
	}

	res, err := eng.Run(ctx, loaded.Graph, initial, opts...)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"run_id": res.RunID,
		"status": res.Status,
		"path":   res.Path(),
		"state":  res.State,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

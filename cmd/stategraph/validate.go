package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stategraph/stategraph/internal/declarative"
	"github.com/stategraph/stategraph/pkg/registry"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition.yaml>",
	Short: "Compile a graph definition without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := declarative.LoadFile(args[0], registry.New())
		if err != nil {
			return err
		}
		g := loaded.Graph
		fmt.Printf("%s: ok (%d nodes, entry %s)\n", g.Name(), len(g.Nodes()), g.Entry())
		for _, warning := range g.Warnings() {
			fmt.Printf("warning: %s\n", warning)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

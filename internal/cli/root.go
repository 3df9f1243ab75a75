// Package cli wires the statecraft commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"statecraft/internal/config"
)

var (
	cfg     config.Config
	rootCmd = &cobra.Command{
		Use:   "statecraft",
		Short: "Statecraft: a branching decision-card narrative engine",
		Long: `Statecraft runs branching, stat-driven decision narratives: authors
build stages of event cards joined by follow-up choices, players traverse
them while four bounded gauges react to every decision.

Serve the web game:
  statecraft serve

Check an authored scenario:
  statecraft validate scenarios/demo.yaml`,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

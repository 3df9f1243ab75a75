package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"statecraft/internal/deck"
)

var validateCmd = &cobra.Command{
	Use:   "validate [scenario.yaml]",
	Short: "Check a scenario file for structural defects",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.ScenarioPath
		if len(args) == 1 {
			path = args[0]
		}

		sc, err := deck.ReadScenario(path)
		if err != nil {
			return err
		}

		issues := sc.Validate()
		if len(issues) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d stages, %d library cards)\n",
				path, len(sc.Stages), len(sc.Library))
			return nil
		}
		for _, i := range issues {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", i.String())
		}
		return fmt.Errorf("%d issue(s) found", len(issues))
	},
}

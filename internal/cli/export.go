package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"statecraft/internal/deck"
	"statecraft/internal/game"
	"statecraft/internal/report"
)

var (
	exportOut  string
	exportText bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a sample end-of-run report",
	Long: `Export renders a report for a fresh run of the configured scenario.
Useful for checking the report layout without playing a full game.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sc, err := deck.LoadScenario(cfg.ScenarioPath)
		if err != nil {
			return fmt.Errorf("load scenario %s: %w", cfg.ScenarioPath, err)
		}

		history := sampleHistory(sc)
		var gen game.Reporter = &report.PDF{}
		if exportText {
			gen = report.Text{}
		}
		b, err := gen.Generate(sc.Title, game.OutcomeSuccess, deck.NewGaugeState(), history)
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
		if err := os.WriteFile(exportOut, b, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %d sample decisions)\n",
			exportOut, len(b), len(history))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "report.pdf", "output file")
	exportCmd.Flags().BoolVar(&exportText, "text", false, "render plain text instead of PDF")
}

// sampleHistory fabricates a left-choice walk over each stage's first-level
// cards, enough to exercise the report layout.
func sampleHistory(sc *deck.Scenario) []game.ChoiceRecord {
	var out []game.ChoiceRecord
	for _, st := range sc.Stages {
		for _, id := range st.FirstLevelIDs() {
			for _, it := range st.Items {
				if it.Card == nil || it.Card.ID != id {
					continue
				}
				out = append(out, game.ChoiceRecord{
					StageID:    st.ID,
					CardID:     it.Card.ID,
					CardText:   it.Card.Text,
					Side:       deck.SideLeft,
					OptionText: it.Card.Left.Text,
					Delta:      it.Card.Left.Delta,
				})
			}
		}
	}
	return out
}

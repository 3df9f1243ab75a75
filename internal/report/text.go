package report

import (
	"fmt"
	"strings"

	"statecraft/internal/deck"
	"statecraft/internal/game"
)

// Text renders the same summary as PDF in plain text, for terminals and
// for environments where a PDF viewer is unavailable.
type Text struct{}

var _ game.Reporter = (*Text)(nil)

func (Text) Generate(title string, outcome game.Outcome, final deck.GaugeState, history []game.ChoiceRecord) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))
	fmt.Fprintf(&b, "Outcome: %s\n\n", outcomeLabel(outcome))

	b.WriteString("Final standing\n")
	for _, g := range deck.Gauges {
		fmt.Fprintf(&b, "  %-12s %3d / %d\n", g, final.Get(g), deck.GaugeMax)
	}

	fmt.Fprintf(&b, "\nDecisions (%d)\n", len(history))
	for i, rec := range history {
		fmt.Fprintf(&b, "  %d. [%s] %s - chose %s", i+1, rec.StageID, trim(rec.CardText, 60), rec.Side)
		if rec.OptionText != "" {
			fmt.Fprintf(&b, " (%s)", trim(rec.OptionText, 40))
		}
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

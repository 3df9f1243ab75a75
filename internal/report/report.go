// Package report renders end-of-run reports. The report is supplementary:
// callers treat generation failures as loggable, never as run failures.
package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"statecraft/internal/deck"
	"statecraft/internal/game"
)

// PDF renders a one-page PDF summary: outcome, final gauges, and the
// choices that led there.
type PDF struct {
	// MaxChoices caps how many history lines are rendered; zero means all.
	MaxChoices int
}

var _ game.Reporter = (*PDF)(nil)

// Generate renders the report for a terminated run.
func (p *PDF) Generate(title string, outcome game.Outcome, final deck.GaugeState, history []game.ChoiceRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Outcome: %s", outcomeLabel(outcome)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Final standing", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, g := range deck.Gauges {
		pdf.CellFormat(50, 7, string(g), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d / %d", final.Get(g), deck.GaugeMax), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("Decisions (%d)", len(history)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	shown := history
	if p.MaxChoices > 0 && len(shown) > p.MaxChoices {
		shown = shown[:p.MaxChoices]
	}
	for i, rec := range shown {
		line := fmt.Sprintf("%d. [%s] %s - chose %s", i+1, rec.StageID, trim(rec.CardText, 60), rec.Side)
		if rec.OptionText != "" {
			line += fmt.Sprintf(" (%s)", trim(rec.OptionText, 40))
		}
		pdf.MultiCell(0, 5.5, line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func outcomeLabel(o game.Outcome) string {
	switch o {
	case game.OutcomeSuccess:
		return "the administration survived"
	case game.OutcomeFailure:
		return "the administration fell"
	case game.OutcomeEmptyDeck:
		return "nothing happened"
	default:
		return string(o)
	}
}

func trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

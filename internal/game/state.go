package game

import (
	"statecraft/internal/deck"
	"statecraft/internal/judge"
)

// Phase is the top-level state of a run.
type Phase string

const (
	PhasePlaying    Phase = "playing"
	PhaseCrisis     Phase = "crisis"
	PhaseTerminated Phase = "terminated"
)

// Outcome qualifies a terminated run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	// OutcomeEmptyDeck is the terminal display state for a stage that
	// materialized into nothing playable. It is not a defeat and accrues
	// no warning.
	OutcomeEmptyDeck Outcome = "empty_deck"
)

const (
	// WarningLimit is the number of accumulated KPI warnings that ends a run.
	WarningLimit = 3
	// CrisisTurns is the number of negotiation exchanges a crisis allows.
	CrisisTurns = 3
	// DailyChances is the per-run crisis budget.
	DailyChances = 3
	// CrisisRecovery is the fixed value an exhausted gauge is reset to
	// after a successful negotiation. Never the pre-crisis value; a
	// survived crisis still costs.
	CrisisRecovery = 10
)

// ChoiceRecord is one resolved player choice, kept for the final report.
type ChoiceRecord struct {
	StageID    string     `json:"stageId"`
	CardID     string     `json:"cardId"`
	CardText   string     `json:"cardText"`
	Side       deck.Side  `json:"side"`
	OptionText string     `json:"optionText"`
	Delta      deck.Delta `json:"delta,omitempty"`
}

// CrisisState is the negotiation sub-machine entered when a gauge hits zero.
type CrisisState struct {
	Gauge deck.Gauge `json:"gauge"`
	// TurnsLeft counts remaining exchanges within this crisis.
	TurnsLeft int `json:"turnsLeft"`
	// SavedChances is the daily-chance budget before this entry; a
	// successful negotiation restores it.
	SavedChances int          `json:"savedChances"`
	Transcript   []judge.Turn `json:"transcript"`
}

// State is the complete play-time state of one session. It is a value:
// every transition takes a State and returns the next one, so the machine
// is testable with zero elapsed time and the web layer can persist
// snapshots between requests.
type State struct {
	Phase      Phase
	Outcome    Outcome
	StageIndex int

	// Deck is the materialized card sequence of the current stage. Chosen
	// follow-ups are spliced in immediately after the cursor.
	Deck   []*deck.Card
	Cursor int

	Gauges   deck.GaugeState
	Warnings int
	Chances  int

	Crisis  *CrisisState
	History []ChoiceRecord

	// Report holds the generated end-of-run report, if any.
	Report []byte
}

// CurrentCard returns the card under the cursor, or nil outside of play.
func (st State) CurrentCard() *deck.Card {
	if st.Cursor < 0 || st.Cursor >= len(st.Deck) {
		return nil
	}
	return st.Deck[st.Cursor]
}

// Terminated reports whether the run is over.
func (st State) Terminated() bool { return st.Phase == PhaseTerminated }

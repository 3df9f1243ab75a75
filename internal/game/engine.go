package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"statecraft/internal/deck"
	"statecraft/internal/judge"
)

// Reporter produces the end-of-run narrative report. Invoked exactly once
// per terminated run; a failure is logged, never fatal.
type Reporter interface {
	Generate(title string, outcome Outcome, final deck.GaugeState, history []ChoiceRecord) ([]byte, error)
}

// Engine drives play sessions over one scenario. It is stateless with
// respect to any single session: every method takes a State snapshot and
// returns the next one, fully resolved, before another input is accepted.
type Engine struct {
	Scenario *deck.Scenario
	Judge    judge.Judge
	Reporter Reporter
	Rand     *rand.Rand
	Log      *slog.Logger
}

// StepResult is the outcome of applying one player input. Message carries
// expected rejections (wrong phase, unknown side) that are normal UI
// outcomes rather than errors.
type StepResult struct {
	State   State
	Message string
}

func (e *Engine) rng() *rand.Rand {
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e.Rand
}

func (e *Engine) log() *slog.Logger {
	if e.Log == nil {
		return slog.Default()
	}
	return e.Log
}

// NewGame starts a fresh run on the scenario's first stage.
func (e *Engine) NewGame() (State, error) {
	if e.Scenario == nil || len(e.Scenario.Stages) == 0 {
		return State{}, fmt.Errorf("engine has no scenario")
	}
	st := State{
		Phase:   PhasePlaying,
		Gauges:  deck.NewGaugeState(),
		Chances: DailyChances,
	}
	e.enterStage(&st, 0)
	return st, nil
}

// enterStage materializes a stage's deck and resets the cursor. An empty
// deck is a terminal display state, not a defeat.
func (e *Engine) enterStage(st *State, index int) {
	st.StageIndex = index
	st.Cursor = 0
	st.Deck = deck.Materialize(e.Scenario.Stages[index], e.Scenario.Library, e.rng(), e.log())
	if len(st.Deck) == 0 {
		e.log().Warn("stage has no playable items", "stage", e.Scenario.Stages[index].ID)
		st.Phase = PhaseTerminated
		st.Outcome = OutcomeEmptyDeck
	}
}

// stage returns the stage the session is currently in.
func (e *Engine) stage(st State) *deck.Stage {
	if st.StageIndex < 0 || st.StageIndex >= len(e.Scenario.Stages) {
		return nil
	}
	return e.Scenario.Stages[st.StageIndex]
}

// ApplyChoice resolves one player choice: the option's delta is applied
// (clamped), crisis detection runs, and either the chosen follow-up is
// spliced in as the very next card or the cursor advances. The whole step
// commits atomically with respect to the input; the returned state is the
// only state.
func (e *Engine) ApplyChoice(st State, side deck.Side) (StepResult, error) {
	if st.Phase != PhasePlaying {
		return StepResult{State: st, Message: "no choice can be made right now"}, nil
	}
	card := st.CurrentCard()
	if card == nil {
		return StepResult{}, fmt.Errorf("cursor %d outside deck of %d", st.Cursor, len(st.Deck))
	}
	opt := card.Option(side)
	if opt == nil {
		return StepResult{State: st, Message: "that choice doesn't exist"}, nil
	}

	before := st.Gauges
	st.Gauges = st.Gauges.Apply(opt.Delta)
	st.History = append(st.History, ChoiceRecord{
		StageID:    e.stageID(st),
		CardID:     card.ID,
		CardText:   card.Text,
		Side:       side,
		OptionText: opt.Text,
		Delta:      opt.Delta,
	})

	// First gauge (in fixed enumeration order) exhausted by this
	// application preempts everything else; only one crisis at a time.
	for _, g := range deck.Gauges {
		if st.Gauges.Get(g) <= deck.GaugeMin && before.Get(g) > deck.GaugeMin {
			return e.enterCrisis(st, g), nil
		}
	}

	if opt.FollowUpID != "" {
		if next := e.findStageCard(st, opt.FollowUpID); next != nil {
			spliced := make([]*deck.Card, 0, len(st.Deck)+1)
			spliced = append(spliced, st.Deck[:st.Cursor+1]...)
			spliced = append(spliced, next.Clone())
			spliced = append(spliced, st.Deck[st.Cursor+1:]...)
			st.Deck = spliced
			st.Cursor++
			return StepResult{State: st}, nil
		}
		// Dangling reference: ignored at play time, never fatal.
		e.log().Warn("follow-up missing from stage", "card", card.ID, "followUp", opt.FollowUpID)
	}

	return StepResult{State: e.advance(st)}, nil
}

// advance moves the cursor one card forward, or runs the stage gate at the
// deck's end.
func (e *Engine) advance(st State) State {
	if st.Cursor+1 < len(st.Deck) {
		st.Cursor++
		return st
	}
	return e.stageGate(st)
}

// stageGate evaluates the stage's KPI thresholds at deck exhaustion. Each
// enabled gauge below its threshold adds one warning; the warning count is
// a single synchronous counter, incremented before it is compared.
func (e *Engine) stageGate(st State) State {
	stage := e.stage(st)
	if stage != nil {
		for _, g := range deck.Gauges {
			kpi, ok := stage.KPIs[g]
			if !ok || !kpi.Enabled {
				continue
			}
			if st.Gauges.Get(g) >= kpi.Threshold {
				continue
			}
			st.Warnings++
			e.log().Info("kpi warning",
				"stage", stage.ID, "gauge", g,
				"value", st.Gauges.Get(g), "threshold", kpi.Threshold,
				"warnings", st.Warnings)
		}
	}
	if st.Warnings >= WarningLimit {
		return e.terminate(st, OutcomeFailure)
	}
	if st.StageIndex+1 < len(e.Scenario.Stages) {
		e.enterStage(&st, st.StageIndex+1)
		return st
	}
	return e.terminate(st, OutcomeSuccess)
}

// terminate ends the run and generates the report. Report failure never
// blocks termination.
func (e *Engine) terminate(st State, outcome Outcome) State {
	st.Phase = PhaseTerminated
	st.Outcome = outcome
	st.Crisis = nil
	if e.Reporter == nil || outcome == OutcomeEmptyDeck {
		return st
	}
	report, err := e.Reporter.Generate(e.Scenario.Title, outcome, st.Gauges, st.History)
	if err != nil {
		e.log().Error("report generation failed", "err", err)
		return st
	}
	st.Report = report
	return st
}

func (e *Engine) stageID(st State) string {
	if s := e.stage(st); s != nil {
		return s.ID
	}
	return ""
}

// findStageCard looks a card up in the current stage's full item list,
// follow-up children included.
func (e *Engine) findStageCard(st State, id string) *deck.Card {
	stage := e.stage(st)
	if stage == nil {
		return nil
	}
	for _, it := range stage.Items {
		if it.Card != nil && it.Card.ID == id {
			return it.Card
		}
	}
	return nil
}

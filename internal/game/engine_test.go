package game

import (
	"context"
	"fmt"
	"testing"

	"statecraft/internal/deck"
	"statecraft/internal/judge"
)

// scriptedJudge replays canned verdicts and counts calls.
type scriptedJudge struct {
	verdicts []judge.Verdict
	err      error
	calls    int
}

func (j *scriptedJudge) Negotiate(_ context.Context, _ []judge.Turn, _ judge.GaugeContext) (judge.Verdict, error) {
	j.calls++
	if j.err != nil {
		return judge.Verdict{}, j.err
	}
	if len(j.verdicts) == 0 {
		return judge.Verdict{NPCResponse: "no"}, nil
	}
	v := j.verdicts[0]
	if len(j.verdicts) > 1 {
		j.verdicts = j.verdicts[1:]
	}
	return v, nil
}

// countingReporter records invocations.
type countingReporter struct {
	calls int
	err   error
}

func (r *countingReporter) Generate(_ string, _ Outcome, _ deck.GaugeState, _ []ChoiceRecord) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("report"), nil
}

// crisisScenario builds a two-card stage: A.left tanks people, A.right
// nudges people up and leads to follow-up B.
func crisisScenario() *deck.Scenario {
	return &deck.Scenario{
		Title: "test",
		Stages: []*deck.Stage{{
			ID: "s1",
			Items: []deck.Item{
				deck.CardItem(&deck.Card{ID: "A", Text: "card A",
					Left:  deck.CardOption{Text: "harsh", Delta: deck.Delta{deck.GaugePeople: -60}},
					Right: deck.CardOption{Text: "kind", Delta: deck.Delta{deck.GaugePeople: +5}, FollowUpID: "B"},
				}),
				deck.CardItem(&deck.Card{ID: "B", Text: "card B",
					Left:  deck.CardOption{Text: "l"},
					Right: deck.CardOption{Text: "r"},
				}),
			},
		}},
	}
}

func testEngine(sc *deck.Scenario) (*Engine, *scriptedJudge, *countingReporter) {
	j := &scriptedJudge{}
	r := &countingReporter{}
	return &Engine{Scenario: sc, Judge: j, Reporter: r}, j, r
}

func mustNewGame(t *testing.T, e *Engine) State {
	t.Helper()
	st, err := e.NewGame()
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func mustApply(t *testing.T, e *Engine, st State, side deck.Side) State {
	t.Helper()
	res, err := e.ApplyChoice(st, side)
	if err != nil {
		t.Fatal(err)
	}
	if res.Message != "" {
		t.Fatalf("unexpected rejection: %s", res.Message)
	}
	return res.State
}

func TestNewGame(t *testing.T) {
	e, _, _ := testEngine(crisisScenario())
	st := mustNewGame(t, e)

	if st.Phase != PhasePlaying {
		t.Errorf("phase = %s", st.Phase)
	}
	if st.Chances != DailyChances {
		t.Errorf("chances = %d, want %d", st.Chances, DailyChances)
	}
	// Both A and B are first-level here; B carries an incoming edge only
	// in the authoring sense after A.right links it, and it does: B must
	// not be dealt up front.
	if len(st.Deck) != 1 || st.Deck[0].ID != "A" {
		t.Errorf("deck = %v, want just A", deckCardIDs(st.Deck))
	}
}

func deckCardIDs(cards []*deck.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestApplyChoiceTriggersCrisis(t *testing.T) {
	e, j, _ := testEngine(crisisScenario())
	st := mustNewGame(t, e)
	st.Gauges.Set(deck.GaugePeople, 50)

	st = mustApply(t, e, st, deck.SideLeft)

	if st.Phase != PhaseCrisis {
		t.Fatalf("phase = %s, want crisis", st.Phase)
	}
	if st.Crisis == nil || st.Crisis.Gauge != deck.GaugePeople {
		t.Fatalf("crisis = %+v", st.Crisis)
	}
	if st.Gauges.People != 0 {
		t.Errorf("people = %d, want 0", st.Gauges.People)
	}
	if j.calls != 0 {
		t.Errorf("judge called %d times on crisis entry", j.calls)
	}
	if st.Chances != DailyChances-1 {
		t.Errorf("chances = %d, want one spent", st.Chances)
	}
}

func TestApplyChoiceSplicesFollowUp(t *testing.T) {
	e, _, _ := testEngine(crisisScenario())
	st := mustNewGame(t, e)
	st.Gauges.Set(deck.GaugePeople, 50)

	st = mustApply(t, e, st, deck.SideRight)

	if st.Phase != PhasePlaying {
		t.Fatalf("phase = %s", st.Phase)
	}
	if st.Gauges.People != 55 {
		t.Errorf("people = %d, want 55", st.Gauges.People)
	}
	cur := st.CurrentCard()
	if cur == nil || cur.ID != "B" {
		t.Errorf("current card = %+v, want B next", cur)
	}
}

func TestCrisisPreemptsFollowUp(t *testing.T) {
	sc := crisisScenario()
	// Make the follow-up side also exhaust the gauge.
	sc.Stages[0].Items[0].Card.Right.Delta = deck.Delta{deck.GaugePeople: -100}
	e, _, _ := testEngine(sc)
	st := mustNewGame(t, e)

	st = mustApply(t, e, st, deck.SideRight)

	if st.Phase != PhaseCrisis {
		t.Fatalf("phase = %s, want crisis to preempt follow-up", st.Phase)
	}
	if len(st.Deck) != 1 {
		t.Errorf("follow-up spliced despite crisis: %v", deckCardIDs(st.Deck))
	}
}

func TestFirstGaugeInEnumerationOrderWins(t *testing.T) {
	sc := crisisScenario()
	sc.Stages[0].Items[0].Card.Left.Delta = deck.Delta{
		deck.GaugeGovernance: -100,
		deck.GaugeEconomy:    -100,
	}
	e, _, _ := testEngine(sc)
	st := mustNewGame(t, e)

	st = mustApply(t, e, st, deck.SideLeft)

	if st.Crisis == nil || st.Crisis.Gauge != deck.GaugeEconomy {
		t.Errorf("crisis gauge = %+v, want economy (first in enumeration order)", st.Crisis)
	}
}

func TestStageGateWarning(t *testing.T) {
	for _, tc := range []struct {
		people       int
		wantWarnings int
	}{
		{39, 1},
		{40, 0},
	} {
		sc := crisisScenario()
		sc.Stages[0].KPIs = map[deck.Gauge]deck.KPI{
			deck.GaugePeople: {Enabled: true, Threshold: 40},
		}
		// Choosing the now-inert left path ends the single-card deck.
		sc.Stages[0].Items[0].Card.Left.Delta = nil
		e, _, _ := testEngine(sc)
		st := mustNewGame(t, e)
		st.Gauges.Set(deck.GaugePeople, tc.people)

		st = mustApply(t, e, st, deck.SideLeft)

		if st.Warnings != tc.wantWarnings {
			t.Errorf("people=%d: warnings = %d, want %d", tc.people, st.Warnings, tc.wantWarnings)
		}
	}
}

func TestStageGateSuccessOnLastStage(t *testing.T) {
	sc := crisisScenario()
	sc.Stages[0].Items[0].Card.Left.Delta = nil
	e, _, r := testEngine(sc)
	st := mustNewGame(t, e)

	st = mustApply(t, e, st, deck.SideLeft)

	if st.Phase != PhaseTerminated || st.Outcome != OutcomeSuccess {
		t.Fatalf("phase=%s outcome=%s, want terminated success", st.Phase, st.Outcome)
	}
	if r.calls != 1 {
		t.Errorf("reporter called %d times, want exactly once", r.calls)
	}
	if len(st.Report) == 0 {
		t.Error("no report attached")
	}
}

func TestThreeWarningsTerminate(t *testing.T) {
	oneCardStage := func(id string) *deck.Stage {
		return &deck.Stage{
			ID: id,
			Items: []deck.Item{
				deck.CardItem(&deck.Card{ID: id + "_c", Text: "x"}),
			},
			KPIs: map[deck.Gauge]deck.KPI{
				// Unreachable threshold: every stage exit fails this KPI.
				deck.GaugeGovernance: {Enabled: true, Threshold: 101},
			},
		}
	}
	sc := &deck.Scenario{
		Title:  "warn",
		Stages: []*deck.Stage{oneCardStage("s1"), oneCardStage("s2"), oneCardStage("s3"), oneCardStage("s4")},
	}
	e, _, _ := testEngine(sc)
	st := mustNewGame(t, e)

	st = mustApply(t, e, st, deck.SideLeft) // warning 1, advance to s2
	if st.Phase != PhasePlaying || st.Warnings != 1 {
		t.Fatalf("after stage 1: phase=%s warnings=%d", st.Phase, st.Warnings)
	}
	st = mustApply(t, e, st, deck.SideLeft) // warning 2, advance to s3
	st = mustApply(t, e, st, deck.SideLeft) // warning 3: terminated before s4

	if st.Phase != PhaseTerminated || st.Outcome != OutcomeFailure {
		t.Errorf("phase=%s outcome=%s, want terminated failure on third warning", st.Phase, st.Outcome)
	}
	if st.Warnings != 3 {
		t.Errorf("warnings = %d, want 3", st.Warnings)
	}
}

func TestWarningsAccrueAcrossStages(t *testing.T) {
	// Two failing stages then a passing one: warnings persist across
	// stage boundaries even when the current stage's KPIs are satisfied.
	failing := func(id string) *deck.Stage {
		return &deck.Stage{
			ID:    id,
			Items: []deck.Item{deck.CardItem(&deck.Card{ID: id + "_c"})},
			KPIs:  map[deck.Gauge]deck.KPI{deck.GaugeEconomy: {Enabled: true, Threshold: 101}},
		}
	}
	passing := &deck.Stage{
		ID:    "pass",
		Items: []deck.Item{deck.CardItem(&deck.Card{ID: "pass_c"})},
		KPIs:  map[deck.Gauge]deck.KPI{deck.GaugeEconomy: {Enabled: true, Threshold: 0}},
	}
	sc := &deck.Scenario{Title: "w", Stages: []*deck.Stage{failing("f1"), failing("f2"), passing}}
	e, _, _ := testEngine(sc)
	st := mustNewGame(t, e)

	st = mustApply(t, e, st, deck.SideLeft)
	st = mustApply(t, e, st, deck.SideLeft)
	st = mustApply(t, e, st, deck.SideLeft)

	if st.Phase != PhaseTerminated || st.Outcome != OutcomeSuccess {
		t.Errorf("phase=%s outcome=%s, want success with 2 warnings", st.Phase, st.Outcome)
	}
	if st.Warnings != 2 {
		t.Errorf("warnings = %d, want 2 carried across stages", st.Warnings)
	}
}

func TestEmptyStageIsTerminalDisplayState(t *testing.T) {
	sc := &deck.Scenario{
		Title:  "empty",
		Stages: []*deck.Stage{{ID: "s1"}},
	}
	e, _, r := testEngine(sc)
	st := mustNewGame(t, e)

	if st.Phase != PhaseTerminated || st.Outcome != OutcomeEmptyDeck {
		t.Fatalf("phase=%s outcome=%s, want empty-deck terminal state", st.Phase, st.Outcome)
	}
	if st.Warnings != 0 {
		t.Errorf("warnings = %d, want none for an empty deck", st.Warnings)
	}
	if r.calls != 0 {
		t.Errorf("reporter called for empty-deck state")
	}
}

func TestReportFailureDoesNotBlockTermination(t *testing.T) {
	sc := crisisScenario()
	sc.Stages[0].Items[0].Card.Left.Delta = nil
	e, _, r := testEngine(sc)
	r.err = fmt.Errorf("printer on fire")
	st := mustNewGame(t, e)

	st = mustApply(t, e, st, deck.SideLeft)

	if st.Phase != PhaseTerminated || st.Outcome != OutcomeSuccess {
		t.Errorf("phase=%s outcome=%s, want termination despite report failure", st.Phase, st.Outcome)
	}
	if len(st.Report) != 0 {
		t.Errorf("report attached despite generator failure")
	}
}

func TestApplyChoiceRejectedOutsidePlaying(t *testing.T) {
	e, _, _ := testEngine(crisisScenario())
	st := mustNewGame(t, e)
	st = mustApply(t, e, st, deck.SideLeft) // people 50-60 -> crisis

	res, err := e.ApplyChoice(st, deck.SideRight)
	if err != nil {
		t.Fatal(err)
	}
	if res.Message == "" {
		t.Error("choice accepted during crisis")
	}
	if res.State.Phase != PhaseCrisis {
		t.Errorf("phase changed to %s", res.State.Phase)
	}
}

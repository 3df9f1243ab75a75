package game

import (
	"context"
	"fmt"

	"statecraft/internal/deck"
	"statecraft/internal/judge"
)

// enterCrisis opens the negotiation sub-machine for an exhausted gauge.
// Entering with an empty daily-chance budget is a hard failure: the run
// terminates without any dialogue (and without a judge call). Otherwise one
// chance is spent up front; a successful negotiation refunds it.
func (e *Engine) enterCrisis(st State, g deck.Gauge) StepResult {
	if st.Chances <= 0 {
		e.log().Info("crisis with no chances left", "gauge", g)
		return StepResult{State: e.terminate(st, OutcomeFailure)}
	}
	saved := st.Chances
	st.Chances--
	st.Phase = PhaseCrisis
	st.Crisis = &CrisisState{
		Gauge:        g,
		TurnsLeft:    CrisisTurns,
		SavedChances: saved,
		Transcript: []judge.Turn{
			{Role: judge.RoleNPC, Text: e.crisisOpener(g)},
		},
	}
	return StepResult{State: st}
}

func (e *Engine) crisisOpener(g deck.Gauge) string {
	persona := string(g)
	if p, ok := e.Scenario.Profiles[g]; ok && p.Persona != "" {
		persona = p.Persona
	}
	return fmt.Sprintf("The %s has had enough. %s has collapsed. Convince them, or this is over.", persona, g)
}

// SubmitPlea forwards one player submission, with the full transcript and
// the exhausted gauge's profile, to the judge. The machine is logically
// frozen while the call is in flight: the caller must not submit again
// until this returns. A judge error leaves the state exactly as it was
// before the call; the attempt is not consumed.
func (e *Engine) SubmitPlea(ctx context.Context, st State, plea string) (StepResult, error) {
	if st.Phase != PhaseCrisis || st.Crisis == nil {
		return StepResult{State: st, Message: "there is no crisis to negotiate"}, nil
	}

	cr := st.Crisis
	transcript := make([]judge.Turn, 0, len(cr.Transcript)+2)
	transcript = append(transcript, cr.Transcript...)
	transcript = append(transcript, judge.Turn{Role: judge.RolePlayer, Text: plea})

	verdict, err := e.Judge.Negotiate(ctx, transcript, judge.GaugeContext{
		Gauge:   cr.Gauge,
		Profile: e.Scenario.Profiles[cr.Gauge],
		State:   st.Gauges,
	})
	if err != nil {
		return StepResult{State: st}, fmt.Errorf("negotiate: %w", err)
	}
	transcript = append(transcript, judge.Turn{Role: judge.RoleNPC, Text: verdict.NPCResponse})

	next := st
	next.Crisis = &CrisisState{
		Gauge:        cr.Gauge,
		TurnsLeft:    cr.TurnsLeft,
		SavedChances: cr.SavedChances,
		Transcript:   transcript,
	}

	if verdict.Success {
		return StepResult{State: e.resolveCrisis(next)}, nil
	}
	if next.Crisis.TurnsLeft <= 1 {
		e.log().Info("negotiation exhausted", "gauge", cr.Gauge)
		return StepResult{State: e.terminate(next, OutcomeFailure)}, nil
	}
	next.Crisis.TurnsLeft--
	return StepResult{State: next}, nil
}

// resolveCrisis applies a successful negotiation: the gauge is reset to the
// fixed recovery value (never its pre-crisis level), the chance budget is
// restored, and play resumes linearly past the triggering card. The
// triggering choice's follow-up, if any, is not honored.
func (e *Engine) resolveCrisis(st State) State {
	cr := st.Crisis
	st.Gauges.Set(cr.Gauge, CrisisRecovery)
	st.Chances = cr.SavedChances
	st.Crisis = nil
	st.Phase = PhasePlaying
	return e.advance(st)
}

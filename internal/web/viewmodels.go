package web

import (
	"statecraft/internal/deck"
	"statecraft/internal/game"
)

// StartViewModel contains data for the run setup screen.
type StartViewModel struct {
	Title   string
	Stages  int
	Chances int
}

// GaugeRow is one gauge for template iteration.
type GaugeRow struct {
	Name  string
	Value int
	Max   int
}

// ViewModel renders one committed game state. Animation is the template's
// concern: the state here is already final, never gated on a delay.
type ViewModel struct {
	Title   string
	Phase   game.Phase
	Outcome game.Outcome

	Card *deck.Card
	NPC  deck.NPC

	Gauges   []GaugeRow
	Warnings int
	Chances  int

	Crisis *game.CrisisState

	Message   string
	HasReport bool
}

func (s *Server) makeViewModel(st game.State, msg string) ViewModel {
	vm := ViewModel{
		Title:     s.Engine.Scenario.Title,
		Phase:     st.Phase,
		Outcome:   st.Outcome,
		Warnings:  st.Warnings,
		Chances:   st.Chances,
		Crisis:    st.Crisis,
		Message:   msg,
		HasReport: len(st.Report) > 0,
	}
	for _, g := range deck.Gauges {
		vm.Gauges = append(vm.Gauges, GaugeRow{
			Name:  string(g),
			Value: st.Gauges.Get(g),
			Max:   deck.GaugeMax,
		})
	}
	if card := st.CurrentCard(); card != nil {
		vm.Card = card
		vm.NPC = s.Engine.Scenario.NPCs[card.NPCID]
	}
	return vm
}

package draft

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"statecraft/internal/deck"
)

// Saver is the narrow persistence contract the editing service needs.
type Saver interface {
	Save(ctx context.Context, sc *deck.Scenario) error
}

// Service owns the in-memory scenario draft and applies author edits to it.
// Edits are single-writer: each one runs to completion under the mutex and
// either fully succeeds or leaves the draft untouched. Every successful
// edit schedules a debounced best-effort save.
type Service struct {
	mu       sync.Mutex
	scenario *deck.Scenario

	saver    Saver
	debounce time.Duration
	timer    *time.Timer
	log      *slog.Logger
}

// DefaultDebounce is the save delay after the last edit.
const DefaultDebounce = 2 * time.Second

// NewService wraps a scenario draft. saver may be nil (no persistence).
func NewService(sc *deck.Scenario, saver Saver, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{scenario: sc, saver: saver, debounce: DefaultDebounce, log: log}
}

// Scenario returns a deep copy of the current draft.
func (s *Service) Scenario() *deck.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenario.Clone()
}

// InsertFollowUp links a new card under the given option. Returns the new
// card id, or ok=false for an illegal edit (unknown stage or parent, side
// already linked).
func (s *Service) InsertFollowUp(stageID, parentID string, side deck.Side, ov deck.CardOverrides) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stage := s.scenario.Stage(stageID)
	if stage == nil {
		return "", false
	}
	edited, id, ok := stage.InsertFollowUp(parentID, side, ov)
	if !ok {
		return "", false
	}
	s.scenario.ReplaceStage(stageID, edited)
	s.scheduleSave()
	return id, true
}

// DeleteCard removes a card (cascading to its subtree) or a pool.
func (s *Service) DeleteCard(stageID, cardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	stage := s.scenario.Stage(stageID)
	if stage == nil {
		return false
	}
	edited, ok := stage.DeleteCard(cardID)
	if !ok {
		return false
	}
	s.scenario.ReplaceStage(stageID, edited)
	s.scheduleSave()
	return true
}

// Reorder moves a first-level item and its subtree one position.
func (s *Service) Reorder(stageID, itemID string, dir int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	stage := s.scenario.Stage(stageID)
	if stage == nil {
		return false
	}
	edited, ok := stage.ReorderFirstLevel(itemID, dir)
	if !ok {
		return false
	}
	s.scenario.ReplaceStage(stageID, edited)
	s.scheduleSave()
	return true
}

// AddCard appends a first-level card to a stage.
func (s *Service) AddCard(stageID string, ov deck.CardOverrides) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stage := s.scenario.Stage(stageID)
	if stage == nil {
		return "", false
	}
	edited, id := stage.AddCard(ov)
	s.scenario.ReplaceStage(stageID, edited)
	s.scheduleSave()
	return id, true
}

// AddPool appends a random pool to a stage.
func (s *Service) AddPool(stageID string, count int, entries []string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stage := s.scenario.Stage(stageID)
	if stage == nil {
		return "", false
	}
	edited, id := stage.AddPool(count, entries)
	s.scenario.ReplaceStage(stageID, edited)
	s.scheduleSave()
	return id, true
}

// scheduleSave arms the debounce timer. Called with the mutex held.
func (s *Service) scheduleSave() {
	if s.saver == nil {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		if err := s.Flush(context.Background()); err != nil {
			s.log.Warn("draft autosave failed", "err", err)
		}
	})
}

// Flush saves the draft immediately.
func (s *Service) Flush(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	s.mu.Lock()
	snapshot := s.scenario.Clone()
	s.mu.Unlock()
	return s.saver.Save(ctx, snapshot)
}

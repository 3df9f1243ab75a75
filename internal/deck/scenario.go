package deck

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ReadScenario parses a scenario YAML file as-is, structural defects
// included. Most callers want LoadScenario.
func ReadScenario(path string) (*Scenario, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned and validated
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Stages) == 0 {
		return nil, fmt.Errorf("scenario has no stages")
	}
	return &sc, nil
}

// LoadScenario loads a scenario from a YAML file and normalizes it,
// filtering structural defects defensively rather than failing on them.
func LoadScenario(path string) (*Scenario, error) {
	sc, err := ReadScenario(path)
	if err != nil {
		return nil, err
	}
	sc.Normalize()
	return sc, nil
}

// SaveScenario writes a scenario to a YAML file.
func SaveScenario(path string, sc *Scenario) error {
	b, err := yaml.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), b, 0o644); err != nil {
		return fmt.Errorf("write scenario: %w", err)
	}
	return nil
}

// Normalize repairs structural defects in place: dangling follow-up
// references are cleared, second and later incoming follow-up edges to the
// same card are dropped (keeping the first in deck order), pool counts are
// clamped, and pool entries missing from the library are removed.
func (sc *Scenario) Normalize() {
	for _, st := range sc.Stages {
		idx := st.cardIndex()
		seen := make(map[string]bool)
		for _, it := range st.Items {
			if it.Card != nil {
				for _, side := range sides {
					opt := it.Card.Option(side)
					if opt.FollowUpID == "" {
						continue
					}
					if idx[opt.FollowUpID] == nil || seen[opt.FollowUpID] || opt.FollowUpID == it.Card.ID {
						opt.FollowUpID = ""
						continue
					}
					seen[opt.FollowUpID] = true
				}
			}
			if it.Pool != nil {
				it.Pool.Count = it.Pool.ClampedCount()
				entries := it.Pool.Entries[:0]
				for _, id := range it.Pool.Entries {
					if sc.LibraryCard(id) != nil {
						entries = append(entries, id)
					}
				}
				it.Pool.Entries = entries
			}
		}
	}
}

// Issue is one structural defect found by Validate.
type Issue struct {
	StageID string
	ItemID  string
	Msg     string
}

func (i Issue) String() string {
	out := i.Msg
	if i.ItemID != "" {
		out = i.ItemID + ": " + out
	}
	if i.StageID != "" {
		out = i.StageID + ": " + out
	}
	return out
}

// Validate reports structural defects without repairing them: duplicate
// ids, dangling or duplicated follow-up edges, follow-up cycles, pool draw
// counts out of bounds, and pool entries missing from the library.
func (sc *Scenario) Validate() []Issue {
	var issues []Issue
	if len(sc.Stages) == 0 {
		issues = append(issues, Issue{Msg: "scenario has no stages"})
		return issues
	}
	for _, st := range sc.Stages {
		issues = append(issues, sc.validateStage(st)...)
	}
	return issues
}

func (sc *Scenario) validateStage(st *Stage) []Issue {
	var issues []Issue
	idx := st.cardIndex()

	ids := make(map[string]bool)
	for _, it := range st.Items {
		id := it.ID()
		if id == "" {
			issues = append(issues, Issue{StageID: st.ID, Msg: "item without id"})
			continue
		}
		if ids[id] {
			issues = append(issues, Issue{StageID: st.ID, ItemID: id, Msg: "duplicate item id"})
		}
		ids[id] = true
	}

	incoming := make(map[string]int)
	for _, it := range st.Items {
		if it.Card == nil {
			continue
		}
		for _, side := range sides {
			f := it.Card.Option(side).FollowUpID
			if f == "" {
				continue
			}
			if idx[f] == nil {
				issues = append(issues, Issue{StageID: st.ID, ItemID: it.Card.ID,
					Msg: fmt.Sprintf("%s follow-up references missing card %q", side, f)})
				continue
			}
			incoming[f]++
		}
	}
	for id, n := range incoming {
		if n > 1 {
			issues = append(issues, Issue{StageID: st.ID, ItemID: id,
				Msg: fmt.Sprintf("card has %d incoming follow-up edges", n)})
		}
	}

	// Cycle check: every card with no incoming edge roots a subtree; cards
	// left unreached from any root sit on a cycle.
	reached := make(map[string]bool)
	for _, it := range st.Items {
		if it.Card == nil || incoming[it.Card.ID] > 0 {
			continue
		}
		reached[it.Card.ID] = true
		for _, sub := range st.CollectSubtree(it.Card.ID) {
			reached[sub] = true
		}
	}
	for _, it := range st.Items {
		if it.Card != nil && !reached[it.Card.ID] {
			issues = append(issues, Issue{StageID: st.ID, ItemID: it.Card.ID,
				Msg: "card unreachable from any first-level card (follow-up cycle)"})
		}
	}

	for _, it := range st.Items {
		if it.Pool == nil {
			continue
		}
		if it.Pool.Count < PoolMinDraw || it.Pool.Count > PoolMaxDraw {
			issues = append(issues, Issue{StageID: st.ID, ItemID: it.Pool.ID,
				Msg: fmt.Sprintf("pool count %d outside [%d,%d]", it.Pool.Count, PoolMinDraw, PoolMaxDraw)})
		}
		for _, id := range it.Pool.Entries {
			if sc.LibraryCard(id) == nil {
				issues = append(issues, Issue{StageID: st.ID, ItemID: it.Pool.ID,
					Msg: fmt.Sprintf("pool entry %q missing from library", id)})
			}
		}
	}
	return issues
}

// AddStage appends a new empty stage.
func (sc *Scenario) AddStage(id, title string) *Stage {
	st := &Stage{ID: id, Title: title}
	sc.Stages = append(sc.Stages, st)
	return st
}

// DeleteStage removes a stage by id. At least one stage must remain, so
// deleting the last stage is a no-op.
func (sc *Scenario) DeleteStage(id string) bool {
	if len(sc.Stages) <= 1 {
		return false
	}
	for i, st := range sc.Stages {
		if st.ID == id {
			sc.Stages = append(sc.Stages[:i], sc.Stages[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceStage swaps the stage with the given id for the provided one.
// Used by editing operations that return a modified stage clone.
func (sc *Scenario) ReplaceStage(id string, st *Stage) bool {
	for i, old := range sc.Stages {
		if old.ID == id {
			sc.Stages[i] = st
			return true
		}
	}
	return false
}

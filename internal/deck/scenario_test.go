package deck

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

const scenarioYAML = `
title: Test Run
npcs:
  advisor:
    name: The Advisor
library:
  - id: lib1
    text: Library event
    left:
      text: Accept
      delta:
        economy: -5
    right:
      text: Refuse
stages:
  - id: s1
    title: Opening
    kpis:
      people:
        enabled: true
        threshold: 40
    items:
      - id: a
        npc: advisor
        text: First decision
        left:
          text: Yes
          delta:
            people: -10
          followUp: a1
        right:
          text: No
      - id: a1
        text: Consequence
        left:
          text: Onward
        right:
          text: Back
      - type: random_pool
        id: p1
        count: 2
profiles:
  people:
    persona: union steward
    keywords: [wages, bread, housing]
`

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	if sc.Title != "Test Run" {
		t.Errorf("title = %q", sc.Title)
	}
	if len(sc.Stages) != 1 {
		t.Fatalf("stages = %d, want 1", len(sc.Stages))
	}
	st := sc.Stages[0]
	if len(st.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(st.Items))
	}
	if st.Items[0].Card == nil || st.Items[0].Card.Left.FollowUpID != "a1" {
		t.Errorf("card a not decoded: %+v", st.Items[0])
	}
	if !st.Items[2].IsPool() || st.Items[2].Pool.Count != 2 {
		t.Errorf("pool item not decoded: %+v", st.Items[2])
	}
	if kpi := st.KPIs[GaugePeople]; !kpi.Enabled || kpi.Threshold != 40 {
		t.Errorf("people KPI = %+v", kpi)
	}
	if p := sc.Profiles[GaugePeople]; p.Persona != "union steward" || len(p.Keywords) != 3 {
		t.Errorf("people profile = %+v", p)
	}
}

func TestScenarioYAMLRoundTrip(t *testing.T) {
	var sc Scenario
	if err := yaml.Unmarshal([]byte(scenarioYAML), &sc); err != nil {
		t.Fatal(err)
	}

	b, err := yaml.Marshal(&sc)
	if err != nil {
		t.Fatal(err)
	}
	var again Scenario
	if err := yaml.Unmarshal(b, &again); err != nil {
		t.Fatalf("reparse: %v", err)
	}

	st := again.Stages[0]
	if !st.Items[2].IsPool() {
		t.Error("pool discriminant lost in round trip")
	}
	if st.Items[0].Card == nil || st.Items[0].Card.Left.FollowUpID != "a1" {
		t.Error("card follow-up lost in round trip")
	}
}

func TestNormalizeClearsDanglingFollowUps(t *testing.T) {
	sc := &Scenario{Stages: []*Stage{{
		ID: "s",
		Items: []Item{
			CardItem(&Card{ID: "a", Left: CardOption{FollowUpID: "gone"}}),
		},
	}}}
	sc.Normalize()
	if got := sc.Stages[0].Items[0].Card.Left.FollowUpID; got != "" {
		t.Errorf("dangling follow-up survived: %q", got)
	}
}

func TestNormalizeDropsSecondIncomingEdge(t *testing.T) {
	sc := &Scenario{Stages: []*Stage{{
		ID: "s",
		Items: []Item{
			CardItem(&Card{ID: "a", Left: CardOption{FollowUpID: "shared"}}),
			CardItem(&Card{ID: "shared"}),
			CardItem(&Card{ID: "b", Left: CardOption{FollowUpID: "shared"}}),
		},
	}}}
	sc.Normalize()
	st := sc.Stages[0]
	if got := st.cardIndex()["a"].Left.FollowUpID; got != "shared" {
		t.Errorf("first edge dropped: %q", got)
	}
	if got := st.cardIndex()["b"].Left.FollowUpID; got != "" {
		t.Errorf("second incoming edge survived: %q", got)
	}
}

func TestNormalizePools(t *testing.T) {
	sc := &Scenario{
		Library: testLibrary("l1"),
		Stages: []*Stage{{
			ID: "s",
			Items: []Item{
				PoolItem(&RandomPool{ID: "p", Count: 50, Entries: []string{"l1", "missing"}}),
			},
		}},
	}
	sc.Normalize()
	p := sc.Stages[0].Items[0].Pool
	if p.Count != PoolMaxDraw {
		t.Errorf("count = %d, want clamped", p.Count)
	}
	if len(p.Entries) != 1 || p.Entries[0] != "l1" {
		t.Errorf("entries = %v, want [l1]", p.Entries)
	}
}

func TestValidateReportsDefects(t *testing.T) {
	sc := &Scenario{Stages: []*Stage{{
		ID: "s",
		Items: []Item{
			CardItem(&Card{ID: "a", Left: CardOption{FollowUpID: "gone"}}),
			CardItem(&Card{ID: "a"}),
			PoolItem(&RandomPool{ID: "p", Count: 99, Entries: []string{"nope"}}),
		},
	}}}
	issues := sc.Validate()
	if len(issues) < 4 {
		t.Errorf("issues = %d (%v), want dangling edge, duplicate id, pool count, pool entry", len(issues), issues)
	}
}

func TestValidateCleanScenario(t *testing.T) {
	var sc Scenario
	if err := yaml.Unmarshal([]byte(scenarioYAML), &sc); err != nil {
		t.Fatal(err)
	}
	if issues := sc.Validate(); len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
}

func TestDeleteStageKeepsAtLeastOne(t *testing.T) {
	sc := &Scenario{Stages: []*Stage{{ID: "s1"}, {ID: "s2"}}}
	if !sc.DeleteStage("s2") {
		t.Fatal("delete s2 failed")
	}
	if sc.DeleteStage("s1") {
		t.Error("deleted the last remaining stage")
	}
}

package judge

import (
	"context"
	"testing"

	"statecraft/internal/deck"
)

func peopleContext() GaugeContext {
	return GaugeContext{
		Gauge: deck.GaugePeople,
		Profile: deck.GaugeProfile{
			Persona:  "union steward",
			Keywords: []string{"wages", "bread", "housing"},
		},
	}
}

func TestKeywordAcceptsMatchingPlea(t *testing.T) {
	k := &Keyword{}
	v, err := k.Negotiate(context.Background(), []Turn{
		{Role: RolePlayer, Text: "I will raise wages across every district."},
	}, peopleContext())
	if err != nil {
		t.Fatal(err)
	}
	if !v.Success {
		t.Error("matching plea rejected")
	}
	if v.NPCResponse == "" {
		t.Error("empty npc response")
	}
}

func TestKeywordAcceptsNearMiss(t *testing.T) {
	k := &Keyword{}
	v, err := k.Negotiate(context.Background(), []Turn{
		{Role: RolePlayer, Text: "more hosing for the workers"},
	}, peopleContext())
	if err != nil {
		t.Fatal(err)
	}
	if !v.Success {
		t.Error("one-edit-away plea rejected")
	}
}

func TestKeywordRejectsUnrelatedPlea(t *testing.T) {
	k := &Keyword{}
	v, err := k.Negotiate(context.Background(), []Turn{
		{Role: RolePlayer, Text: "trust me"},
	}, peopleContext())
	if err != nil {
		t.Fatal(err)
	}
	if v.Success {
		t.Error("unrelated plea accepted")
	}
	if v.NPCResponse == "" {
		t.Error("empty npc response on rejection")
	}
}

func TestKeywordUsesLastPlayerTurn(t *testing.T) {
	k := &Keyword{}
	v, err := k.Negotiate(context.Background(), []Turn{
		{Role: RolePlayer, Text: "I will raise wages."},
		{Role: RoleNPC, Text: "Not enough."},
		{Role: RolePlayer, Text: "fine, nothing then"},
	}, peopleContext())
	if err != nil {
		t.Fatal(err)
	}
	if v.Success {
		t.Error("verdict scored an earlier turn instead of the latest plea")
	}
}

func TestKeywordErrorsWithoutPlayerTurn(t *testing.T) {
	k := &Keyword{}
	if _, err := k.Negotiate(context.Background(), nil, peopleContext()); err == nil {
		t.Error("expected error for empty transcript")
	}
}

func TestKeywordWeightScalesScore(t *testing.T) {
	gc := peopleContext()
	gc.Profile.Weight = 0.1
	k := &Keyword{}
	v, err := k.Negotiate(context.Background(), []Turn{
		{Role: RolePlayer, Text: "wages"},
	}, gc)
	if err != nil {
		t.Fatal(err)
	}
	if v.Success {
		t.Error("heavily down-weighted gauge still accepted an exact hit")
	}
}

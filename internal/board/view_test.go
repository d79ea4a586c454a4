package board

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestLookups_DropMissingReferences(t *testing.T) {
	s := mustParse(t, sampleExport)
	c, ok := s.Card("card1")
	if !ok {
		t.Fatalf("card1 missing")
	}
	if got := s.LabelsFor(c); len(got) != 1 || got[0].ID != "lbl-green" {
		t.Fatalf("LabelsFor = %+v", got)
	}
	if got := s.MembersFor(c); len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("MembersFor = %+v", got)
	}
	if got := s.ChecklistsFor(c); len(got) != 1 || got[0].ID != "cl1" {
		t.Fatalf("ChecklistsFor = %+v", got)
	}
}

func TestProject(t *testing.T) {
	s := mustParse(t, sampleExport)
	v := Project(s)

	if v.Name != "Roadmap" || v.Background != "background-color: #519839;" {
		t.Fatalf("unexpected header %q %q", v.Name, v.Background)
	}
	if len(v.Lists) != 2 || v.Lists[0].ID != "A" || v.Lists[1].Index != 1 {
		t.Fatalf("unexpected lists %+v", v.Lists)
	}
	a := v.Lists[0]
	if len(a.Cards) != 2 {
		t.Fatalf("expected closed cards to be projected out, got %d", len(a.Cards))
	}
	c := a.Cards[0]
	if len(c.Labels) != 1 || c.Labels[0].Color != "#61bd4f" || c.Labels[0].Name != "ready" {
		t.Fatalf("unexpected labels %+v", c.Labels)
	}
	if len(c.Members) != 1 || c.Members[0].Avatar != "https://avatars.example.com/m1/30.png" {
		t.Fatalf("unexpected members %+v", c.Members)
	}
	if !c.Badges.Description || c.Badges.CheckItems != 2 || c.Badges.CheckItemsChecked != 1 || c.Badges.ChecklistComplete {
		t.Fatalf("unexpected badges %+v", c.Badges)
	}
	if a.Cards[1].Badges.Description {
		t.Fatalf("card2 has no description")
	}

	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := back["lists"]; !ok {
		t.Fatalf("expected lists key in %s", raw)
	}
}

func TestProject_DoesNotMutate(t *testing.T) {
	s := mustParse(t, sampleExport)
	before := Project(s)
	for i := 0; i < 3; i++ {
		Project(s)
		s.VisibleLists()
		s.VisibleCardsForList("A")
	}
	after := Project(s)
	if len(before.Lists) != len(after.Lists) || before.Lists[0].Cards[0].ID != after.Lists[0].Cards[0].ID {
		t.Fatalf("projection changed between calls")
	}
}

func TestCardIndex(t *testing.T) {
	s := mustParse(t, sampleExport)
	if got := s.CardIndex("card2"); got != 1 {
		t.Fatalf("CardIndex(card2) = %d", got)
	}
	if got := s.CardIndex("cardX"); got != -1 {
		t.Fatalf("closed card should have no visible index, got %d", got)
	}
	if got := s.CardIndex("nope"); got != -1 {
		t.Fatalf("unknown card should have no index, got %d", got)
	}
}

func TestAllCards_IncludesArchived(t *testing.T) {
	s := mustParse(t, sampleExport)
	ids := func(list string) string {
		var out []string
		for _, c := range s.AllCards(list) {
			out = append(out, c.ID)
		}
		return strings.Join(out, ",")
	}
	if got := ids("A"); got != "card1,cardX,card2" {
		t.Fatalf("AllCards(A) = %q", got)
	}
	if got := ids("Z"); got != "cardZ" {
		t.Fatalf("AllCards(Z) = %q", got)
	}
	if len(s.VisibleCardsForList("Z")) != 0 {
		t.Fatalf("archived list must have no visible cards")
	}
}

package board

import (
	"strings"
	"testing"
)

// sampleExport has two open lists, one archived list, and a closed card in A.
const sampleExport = `{
  "id": "b1",
  "name": "Roadmap",
  "prefs": {"backgroundColor": "#519839"},
  "labels": [
    {"id": "lbl-green", "name": "ready", "color": "green"},
    {"id": "lbl-odd", "name": "", "color": "ultraviolet"}
  ],
  "members": [
    {"id": "m1", "fullName": "Jo Doe", "initials": "JD", "avatarUrl": "https://avatars.example.com/m1"}
  ],
  "checklists": [
    {"id": "cl1", "name": "Todo", "idCard": "card1", "checkItems": [
      {"id": "i1", "name": "one", "pos": 2, "state": "complete"},
      {"id": "i2", "name": "two", "pos": 1, "state": "incomplete"}
    ]}
  ],
  "lists": [
    {"id": "B", "name": "Doing", "pos": 2},
    {"id": "A", "name": "Todo", "pos": 1},
    {"id": "Z", "name": "Old", "pos": 3, "closed": true}
  ],
  "cards": [
    {"id": "card1", "name": "one", "idList": "A", "pos": 1, "idLabels": ["lbl-green", "missing"], "idMembers": ["m1", "ghost"], "idChecklists": ["cl1"], "desc": "hello", "badges": {"checkItems": 2, "checkItemsChecked": 1}},
    {"id": "card2", "name": "two", "idList": "A", "pos": 2},
    {"id": "card3", "name": "three", "idList": "B", "pos": 1},
    {"id": "cardX", "name": "archived", "idList": "A", "pos": 1.5, "closed": true},
    {"id": "cardZ", "name": "old", "idList": "Z", "pos": 1}
  ]
}`

func mustParse(t *testing.T, doc string) *State {
	t.Helper()
	s, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func visibleIDs(s *State, listID string) []string {
	cards := s.VisibleCardsForList(listID)
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func listIDs(s *State) []string {
	lists := s.VisibleLists()
	out := make([]string, len(lists))
	for i, l := range lists {
		out[i] = l.ID
	}
	return out
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// checkStrictOrder fails when any sibling set, closed entries included, shares
// a position.
func checkStrictOrder(t *testing.T, s *State) {
	t.Helper()
	seen := map[float64]string{}
	for _, l := range s.lists {
		if other, dup := seen[l.Pos]; dup {
			t.Fatalf("lists %s and %s share pos %v", other, l.ID, l.Pos)
		}
		seen[l.Pos] = l.ID
	}
	for _, l := range s.lists {
		pos := map[float64]string{}
		for _, c := range s.cards {
			if c.ListID != l.ID {
				continue
			}
			if other, dup := pos[c.Pos]; dup {
				t.Fatalf("cards %s and %s in list %s share pos %v", other, c.ID, l.ID, c.Pos)
			}
			pos[c.Pos] = c.ID
		}
	}
	for _, c := range s.cards {
		if _, ok := s.listIdx[c.ListID]; !ok {
			t.Fatalf("card %s references missing list %s", c.ID, c.ListID)
		}
	}
}

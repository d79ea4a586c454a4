package board

import (
	"errors"
	"strings"
	"testing"

	"boardview/internal/model"
)

func TestNormalize_MissingArraysFail(t *testing.T) {
	for name, doc := range map[string]string{
		"no lists":  `{"cards": []}`,
		"no cards":  `{"lists": []}`,
		"bad json":  `{"lists": [`,
		"no id":     `{"lists": [{"name": "x", "pos": 1}], "cards": []}`,
		"no idList": `{"lists": [{"id": "A", "pos": 1}], "cards": [{"id": "c", "pos": 1}]}`,
		"dup list":  `{"lists": [{"id": "A", "pos": 1}, {"id": "A", "pos": 2}], "cards": []}`,
	} {
		s, err := Parse(strings.NewReader(doc))
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if s != nil {
			t.Fatalf("%s: expected no state alongside error", name)
		}
		if !IsNormalizationError(err) {
			t.Fatalf("%s: expected NormalizationError, got %T", name, err)
		}
	}
}

func TestNormalize_ParseErrorUnwraps(t *testing.T) {
	_, err := Parse(strings.NewReader("not json"))
	var ne *NormalizationError
	if !errors.As(err, &ne) || ne.Err == nil {
		t.Fatalf("expected wrapped decode error, got %v", err)
	}
}

func TestNormalize_EmptyBoard(t *testing.T) {
	s := mustParse(t, `{"name": "Empty", "lists": [], "cards": []}`)
	if len(s.VisibleLists()) != 0 {
		t.Fatalf("expected no lists")
	}
	if bg := s.Background(); bg.Kind != model.BackgroundDefault {
		t.Fatalf("expected default background, got %+v", bg)
	}
	if s.BackgroundCSS() == "" {
		t.Fatalf("expected background css")
	}
}

func TestNormalize_OrdersAndFilters(t *testing.T) {
	s := mustParse(t, sampleExport)

	if got := listIDs(s); !sameIDs(got, []string{"A", "B"}) {
		t.Fatalf("visible lists = %v", got)
	}
	if got := visibleIDs(s, "A"); !sameIDs(got, []string{"card1", "card2"}) {
		t.Fatalf("visible cards of A = %v", got)
	}
	if got := s.VisibleCardsForList("Z"); got != nil {
		t.Fatalf("archived list should have no visible cards, got %v", got)
	}
	if _, ok := s.Card("cardX"); !ok {
		t.Fatalf("closed card must be retained")
	}
	if got := s.ClosedCards("A"); len(got) != 1 || got[0].ID != "cardX" {
		t.Fatalf("ClosedCards(A) = %v", got)
	}
	if got := s.ClosedLists(); len(got) != 1 || got[0].ID != "Z" {
		t.Fatalf("ClosedLists = %v", got)
	}
	c := s.Counts()
	if c.Lists != 2 || c.Cards != 3 || c.ClosedLists != 1 || c.ClosedCards != 2 {
		t.Fatalf("unexpected counts %+v", c)
	}
	if s.Background().Color != "#519839" {
		t.Fatalf("expected color background, got %+v", s.Background())
	}
}

func TestNormalize_RepairsTiesAndMissingPositions(t *testing.T) {
	s := mustParse(t, `{
	  "lists": [{"id": "A", "pos": 1}, {"id": "B", "pos": 1}, {"id": "C"}],
	  "cards": [
	    {"id": "c1", "idList": "A", "pos": 5},
	    {"id": "c2", "idList": "A", "pos": 5},
	    {"id": "c3", "idList": "A", "pos": 3}
	  ]
	}`)
	if got := listIDs(s); !sameIDs(got, []string{"A", "B", "C"}) {
		t.Fatalf("tied lists should keep export order, got %v", got)
	}
	if got := visibleIDs(s, "A"); !sameIDs(got, []string{"c3", "c1", "c2"}) {
		t.Fatalf("tied cards should keep export order, got %v", got)
	}
	checkStrictOrder(t, s)
}

func TestNormalize_TiesIgnoreIDOrder(t *testing.T) {
	s := mustParse(t, `{
	  "lists": [{"id": "Z", "pos": 1}, {"id": "A", "pos": 1}],
	  "cards": [
	    {"id": "zz", "idList": "Z", "pos": 2},
	    {"id": "aa", "idList": "Z", "pos": 2}
	  ]
	}`)
	if got := listIDs(s); !sameIDs(got, []string{"Z", "A"}) {
		t.Fatalf("lists = %v; want export order", got)
	}
	if got := visibleIDs(s, "Z"); !sameIDs(got, []string{"zz", "aa"}) {
		t.Fatalf("cards = %v; want export order", got)
	}

	next, err := s.MoveCard("aa", "Z", "A", 0)
	if err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	if got := visibleIDs(next, "Z"); !sameIDs(got, []string{"zz"}) {
		t.Fatalf("Z = %v", got)
	}
	checkStrictOrder(t, next)
}

func TestNormalize_DetachesDanglingCards(t *testing.T) {
	s := mustParse(t, `{"lists": [{"id": "A", "pos": 1}], "cards": [{"id": "c1", "idList": "gone", "pos": 1}]}`)
	if _, ok := s.Card("c1"); ok {
		t.Fatalf("detached card must not be addressable")
	}
	if d := s.Detached(); len(d) != 1 || d[0].ID != "c1" {
		t.Fatalf("expected c1 detached, got %v", d)
	}
	if s.Counts().Detached != 1 {
		t.Fatalf("expected detached count")
	}
	checkStrictOrder(t, s)
}

func TestNormalize_LookupsLastWriteWins(t *testing.T) {
	s := mustParse(t, `{
	  "labels": [{"id": "l", "name": "first", "color": "red"}, {"id": "l", "name": "second", "color": "blue"}],
	  "lists": [{"id": "A", "pos": 1}],
	  "cards": [{"id": "c", "idList": "A", "pos": 1, "idLabels": ["l"]}]
	}`)
	c, _ := s.Card("c")
	labels := s.LabelsFor(c)
	if len(labels) != 1 || labels[0].Name != "second" || labels[0].Color != model.LabelColorBlue {
		t.Fatalf("expected last label to win, got %+v", labels)
	}
	if len(s.Board().Labels) != 1 {
		t.Fatalf("duplicate ids should fold into one board label")
	}
}

func TestNormalize_CardDetails(t *testing.T) {
	s := mustParse(t, `{
	  "lists": [{"id": "A", "pos": 1}],
	  "cards": [{
	    "id": "c", "idList": "A", "pos": 1,
	    "due": "2024-03-01T12:00:00.000Z", "dueComplete": true,
	    "attachments": [{"id": "a1", "url": "https://x/y.png", "name": "y.png", "date": "2024-01-02T03:04:05Z",
	      "previews": [{"url": "https://x/p1.png"}, {"url": "https://x/p2.png"}]}]
	  }]
	}`)
	c, _ := s.Card("c")
	if c.Due == nil || c.Due.Year() != 2024 || !c.DueComplete {
		t.Fatalf("unexpected due %v %v", c.Due, c.DueComplete)
	}
	if len(c.Attachments) != 1 || c.Attachments[0].PreviewURL != "https://x/p1.png" {
		t.Fatalf("expected first preview, got %+v", c.Attachments)
	}
	if c.LabelIDs == nil || c.MemberIDs == nil || c.ChecklistIDs == nil {
		t.Fatalf("id sets should be empty, not nil")
	}
}

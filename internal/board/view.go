package board

import (
	"time"

	"boardview/internal/model"
)

// VisibleLists returns open lists in ascending pos order.
func (s *State) VisibleLists() []model.List {
	idx := s.visibleListIdx()
	out := make([]model.List, len(idx))
	for i, li := range idx {
		out[i] = s.lists[li]
	}
	return out
}

// VisibleCardsForList returns open cards of listID in ascending pos order.
// An unknown or archived list has no visible cards.
func (s *State) VisibleCardsForList(listID string) []model.Card {
	li, ok := s.listIdx[listID]
	if !ok || s.lists[li].Closed {
		return nil
	}
	idx := s.visibleCardIdx(listID)
	out := make([]model.Card, len(idx))
	for i, ci := range idx {
		out[i] = s.cards[ci]
	}
	return out
}

// AllCards returns every card of listID in pos order, archived ones
// included.
func (s *State) AllCards(listID string) []model.Card {
	var idx []int
	for i := range s.cards {
		if s.cards[i].ListID == listID {
			idx = append(idx, i)
		}
	}
	s.sortCardIdx(idx)
	out := make([]model.Card, len(idx))
	for i, ci := range idx {
		out[i] = s.cards[ci]
	}
	return out
}

// ClosedLists returns archived lists in pos order.
func (s *State) ClosedLists() []model.List {
	var out []model.List
	for _, l := range s.lists {
		if l.Closed {
			out = append(out, l)
		}
	}
	return out
}

// ClosedCards returns archived cards of listID in pos order.
func (s *State) ClosedCards(listID string) []model.Card {
	var idx []int
	for i := range s.cards {
		if s.cards[i].ListID == listID && s.cards[i].Closed {
			idx = append(idx, i)
		}
	}
	s.sortCardIdx(idx)
	out := make([]model.Card, len(idx))
	for i, ci := range idx {
		out[i] = s.cards[ci]
	}
	return out
}

// Detached returns cards whose list is not part of the export.
func (s *State) Detached() []model.Card {
	return append([]model.Card(nil), s.detached...)
}

// LabelsFor resolves the card's label ids, skipping ids without a label.
func (s *State) LabelsFor(c model.Card) []model.Label {
	out := make([]model.Label, 0, len(c.LabelIDs))
	for _, id := range c.LabelIDs {
		if l, ok := s.labels[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// MembersFor resolves the card's member ids, skipping unknown ones.
func (s *State) MembersFor(c model.Card) []model.Member {
	out := make([]model.Member, 0, len(c.MemberIDs))
	for _, id := range c.MemberIDs {
		if m, ok := s.members[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

// ChecklistsFor resolves the card's checklist ids, skipping unknown ones.
func (s *State) ChecklistsFor(c model.Card) []model.Checklist {
	out := make([]model.Checklist, 0, len(c.ChecklistIDs))
	for _, id := range c.ChecklistIDs {
		if cl, ok := s.checklists[id]; ok {
			out = append(out, cl)
		}
	}
	return out
}

func (s *State) Board() model.Board { return s.board }

func (s *State) Background() model.Background { return s.board.Background }

// BackgroundCSS is the style resolved when the board was loaded.
func (s *State) BackgroundCSS() string { return s.bgCSS }

// List looks up a list by id, archived lists included.
func (s *State) List(id string) (model.List, bool) {
	li, ok := s.listIdx[id]
	if !ok {
		return model.List{}, false
	}
	return s.lists[li], true
}

// Card looks up a card by id, archived cards included. Detached cards are not
// addressable.
func (s *State) Card(id string) (model.Card, bool) {
	ci, ok := s.cardIdx[id]
	if !ok {
		return model.Card{}, false
	}
	return s.cards[ci], true
}

// ListIndex is the index of listID among the visible lists, or -1.
func (s *State) ListIndex(listID string) int {
	for i, li := range s.visibleListIdx() {
		if s.lists[li].ID == listID {
			return i
		}
	}
	return -1
}

// CardIndex is the index of cardID among the visible cards of its list, or -1.
func (s *State) CardIndex(cardID string) int {
	ci, ok := s.cardIdx[cardID]
	if !ok || s.cards[ci].Closed {
		return -1
	}
	for i, idx := range s.visibleCardIdx(s.cards[ci].ListID) {
		if idx == ci {
			return i
		}
	}
	return -1
}

type Counts struct {
	Lists       int `json:"lists"`
	Cards       int `json:"cards"`
	ClosedLists int `json:"closedLists"`
	ClosedCards int `json:"closedCards"`
	Detached    int `json:"detached"`
}

// Counts tallies visible and hidden entities. Cards in archived lists count as
// hidden even when they are themselves open.
func (s *State) Counts() Counts {
	c := Counts{Detached: len(s.detached)}
	for _, l := range s.lists {
		if l.Closed {
			c.ClosedLists++
		} else {
			c.Lists++
		}
	}
	for i := range s.cards {
		card := &s.cards[i]
		if card.Closed || s.lists[s.listIdx[card.ListID]].Closed {
			c.ClosedCards++
			continue
		}
		c.Cards++
	}
	return c
}

// BoardView is a render-ready snapshot of the visible board.
type BoardView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Desc       string     `json:"desc,omitempty"`
	Background string     `json:"background"`
	Lists      []ListView `json:"lists"`
	Counts     Counts     `json:"counts"`
}

type ListView struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Index int        `json:"index"`
	Cards []CardView `json:"cards"`
}

type CardView struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	ListID  string       `json:"idList"`
	Index   int          `json:"index"`
	URL     string       `json:"url,omitempty"`
	Labels  []LabelView  `json:"labels"`
	Members []MemberView `json:"members"`
	Badges  Badges       `json:"badges"`
	Cover   string       `json:"cover,omitempty"`
}

type LabelView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type MemberView struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Initials string `json:"initials"`
	Avatar   string `json:"avatar"`
}

type Badges struct {
	Description       bool       `json:"description"`
	Due               *time.Time `json:"due,omitempty"`
	DueComplete       bool       `json:"dueComplete"`
	Attachments       int        `json:"attachments"`
	CheckItems        int        `json:"checkItems"`
	CheckItemsChecked int        `json:"checkItemsChecked"`
	ChecklistComplete bool       `json:"checklistComplete"`
}

const avatarSize = 30

// Project derives the render tree for the visible board.
func Project(s *State) BoardView {
	v := BoardView{
		ID:         s.board.ID,
		Name:       s.board.Name,
		Desc:       s.board.Desc,
		Background: s.bgCSS,
		Counts:     s.Counts(),
	}
	lists := s.VisibleLists()
	v.Lists = make([]ListView, 0, len(lists))
	for i, l := range lists {
		cards := s.VisibleCardsForList(l.ID)
		lv := ListView{ID: l.ID, Name: l.Name, Index: i, Cards: make([]CardView, 0, len(cards))}
		for j, c := range cards {
			lv.Cards = append(lv.Cards, s.projectCard(c, j))
		}
		v.Lists = append(v.Lists, lv)
	}
	return v
}

func (s *State) projectCard(c model.Card, idx int) CardView {
	cv := CardView{
		ID:      c.ID,
		Name:    c.Name,
		ListID:  c.ListID,
		Index:   idx,
		URL:     c.URL,
		Labels:  []LabelView{},
		Members: []MemberView{},
		Badges:  CardBadges(c),
	}
	for _, l := range s.LabelsFor(c) {
		cv.Labels = append(cv.Labels, LabelView{ID: l.ID, Name: l.DisplayName(), Color: l.Color.Hex()})
	}
	for _, m := range s.MembersFor(c) {
		cv.Members = append(cv.Members, MemberView{ID: m.ID, FullName: m.FullName, Initials: m.Initials, Avatar: m.Avatar(avatarSize)})
	}
	for _, a := range c.Attachments {
		if a.PreviewURL != "" {
			cv.Cover = a.PreviewURL
			break
		}
	}
	return cv
}

// CardBadges summarizes the card's secondary details.
func CardBadges(c model.Card) Badges {
	return Badges{
		Description:       c.Desc != "",
		Due:               c.Due,
		DueComplete:       c.DueComplete,
		Attachments:       len(c.Attachments),
		CheckItems:        c.CheckItems,
		CheckItemsChecked: c.CheckItemsChecked,
		ChecklistComplete: c.ChecklistComplete(),
	}
}

package board

import (
	"sort"

	"boardview/internal/model"
)

// State is one immutable snapshot of an opened board.
//
// Lists and cards live in arenas addressed by id through listIdx/cardIdx.
// lists is kept sorted by pos (closed lists included); cards keeps load order,
// since per-list order is always derived from pos. Moves return a new State
// and never touch the receiver.
type State struct {
	board model.Board
	bgCSS string

	lists   []model.List
	listIdx map[string]int

	cards   []model.Card
	cardIdx map[string]int

	// detached cards reference a list that is not part of the export. They
	// are retained for completeness but never shown or moved.
	detached []model.Card

	labels     map[string]model.Label
	members    map[string]model.Member
	checklists map[string]model.Checklist
}

// clone returns a copy whose list and card arenas can be modified without
// affecting s. Lookup tables are shared since nothing mutates them.
func (s *State) clone() *State {
	next := *s
	next.lists = append([]model.List(nil), s.lists...)
	next.cards = append([]model.Card(nil), s.cards...)
	next.listIdx = make(map[string]int, len(s.listIdx))
	for k, v := range s.listIdx {
		next.listIdx[k] = v
	}
	return &next
}

// sortLists orders lists by pos and rebuilds listIdx.
func (s *State) sortLists() {
	sort.SliceStable(s.lists, func(i, j int) bool { return s.lists[i].Pos < s.lists[j].Pos })
	s.listIdx = make(map[string]int, len(s.lists))
	for i, l := range s.lists {
		s.listIdx[l.ID] = i
	}
}

// visibleListIdx returns arena indices of open lists in pos order.
func (s *State) visibleListIdx() []int {
	out := make([]int, 0, len(s.lists))
	for i, l := range s.lists {
		if !l.Closed {
			out = append(out, i)
		}
	}
	return out
}

// visibleCardIdx returns arena indices of open cards in listID, in pos order.
func (s *State) visibleCardIdx(listID string) []int {
	out := make([]int, 0, 8)
	for i := range s.cards {
		c := &s.cards[i]
		if c.ListID == listID && !c.Closed {
			out = append(out, i)
		}
	}
	s.sortCardIdx(out)
	return out
}

// sortCardIdx orders by pos; equal positions keep arena (export) order.
func (s *State) sortCardIdx(idx []int) {
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := &s.cards[idx[i]], &s.cards[idx[j]]
		return a.Pos < b.Pos
	})
}

// hiddenCardPos returns positions of closed cards in listID.
func (s *State) hiddenCardPos(listID string) map[float64]bool {
	out := map[float64]bool{}
	for i := range s.cards {
		c := &s.cards[i]
		if c.ListID == listID && c.Closed {
			out[c.Pos] = true
		}
	}
	return out
}

func (s *State) hiddenListPos() map[float64]bool {
	out := map[float64]bool{}
	for _, l := range s.lists {
		if l.Closed {
			out[l.Pos] = true
		}
	}
	return out
}

func (s *State) listSiblings(idx []int) []Sibling {
	out := make([]Sibling, len(idx))
	for i, li := range idx {
		out[i] = Sibling{ID: s.lists[li].ID, Pos: s.lists[li].Pos}
	}
	return out
}

func (s *State) cardSiblings(idx []int) []Sibling {
	out := make([]Sibling, len(idx))
	for i, ci := range idx {
		out[i] = Sibling{ID: s.cards[ci].ID, Pos: s.cards[ci].Pos}
	}
	return out
}

package board

import (
	"errors"
	"slices"

	log "github.com/sirupsen/logrus"
)

// MoveList moves the open list listID to toIndex among the open lists.
//
// toIndex is interpreted against the open lists after removal; anything past
// the end appends. The receiver is never modified: a valid move returns a new
// state, a move that leaves the order as it is returns s itself, and an
// invalid move returns s together with an *OperationError.
func (s *State) MoveList(listID string, toIndex int) (*State, error) {
	li, ok := s.listIdx[listID]
	if !ok {
		return s, opErr(OpMoveList, KindList, listID, "list not found")
	}
	if s.lists[li].Closed {
		return s, opErr(OpMoveList, KindList, listID, "list is archived")
	}
	if toIndex < 0 {
		return s, opErr(OpMoveList, KindList, listID, "negative target index")
	}

	visible := s.visibleListIdx()
	from := slices.Index(visible, li)
	final := Reinsert(s.listSiblings(visible), from, toIndex)
	movedIdx := clampIndex(toIndex, len(final)-1)
	if movedIdx == from {
		return s, nil
	}

	plan := PlanInsert(final, movedIdx, movedIdx < from, s.hiddenListPos())
	next := s.clone()
	for id, pos := range plan.PosByID {
		next.lists[next.listIdx[id]].Pos = pos
	}
	next.sortLists()
	return next, nil
}

// MoveCard moves cardID out of fromListID and into toListID at toIndex.
//
// Indices count open cards only. When both lists are the same this is a
// reorder and toIndex is interpreted after the card's removal. Only cards of
// the destination list may receive new positions; every other card keeps its
// identity and position.
func (s *State) MoveCard(cardID, fromListID, toListID string, toIndex int) (*State, error) {
	ci, ok := s.cardIdx[cardID]
	if !ok {
		return s, opErr(OpMoveCard, KindCard, cardID, "card not found")
	}
	if s.cards[ci].Closed {
		return s, opErr(OpMoveCard, KindCard, cardID, "card is archived")
	}
	if err := s.checkOpenList(fromListID, "source"); err != nil {
		return s, err
	}
	if s.cards[ci].ListID != fromListID {
		return s, opErr(OpMoveCard, KindCard, cardID, "card is not in list "+fromListID)
	}
	if err := s.checkOpenList(toListID, "destination"); err != nil {
		return s, err
	}
	if toIndex < 0 {
		return s, opErr(OpMoveCard, KindCard, cardID, "negative target index")
	}

	src := s.visibleCardIdx(fromListID)
	from := slices.Index(src, ci)

	var (
		final    []Sibling
		movedIdx int
	)
	if fromListID == toListID {
		final = Reinsert(s.cardSiblings(src), from, toIndex)
		movedIdx = clampIndex(toIndex, len(final)-1)
		if movedIdx == from {
			return s, nil
		}
	} else {
		dst := s.cardSiblings(s.visibleCardIdx(toListID))
		movedIdx = clampIndex(toIndex, len(dst))
		final = Insert(dst, Sibling{ID: cardID, Pos: s.cards[ci].Pos}, movedIdx)
	}

	// A card arriving from another list carries a position from a different
	// sibling set, so the right-hand neighbors are displaced in the tie-break.
	preferRight := fromListID != toListID || movedIdx < from
	plan := PlanInsert(final, movedIdx, preferRight, s.hiddenCardPos(toListID))

	next := s.clone()
	next.cards[ci].ListID = toListID
	for id, pos := range plan.PosByID {
		next.cards[next.cardIdx[id]].Pos = pos
	}
	return next, nil
}

func (s *State) checkOpenList(listID, role string) error {
	li, ok := s.listIdx[listID]
	if !ok {
		return opErr(OpMoveCard, KindList, listID, role+" list not found")
	}
	if s.lists[li].Closed {
		return opErr(OpMoveCard, KindList, listID, role+" list is archived")
	}
	return nil
}

// IntentKind says what a MoveIntent relocates.
type IntentKind string

const (
	IntentList IntentKind = "list"
	IntentCard IntentKind = "card"
)

// MoveIntent is a drop gesture translated into engine terms. A gesture that
// ended outside any valid drop zone is reported with Cancelled set.
type MoveIntent struct {
	Kind       IntentKind `json:"kind"`
	ID         string     `json:"id"`
	FromListID string     `json:"fromListId,omitempty"`
	ToListID   string     `json:"toListId,omitempty"`
	ToIndex    int        `json:"toIndex"`
	Cancelled  bool       `json:"cancelled,omitempty"`
}

// Engine owns the current state of one opened board.
// It is not safe for concurrent use.
type Engine struct {
	state *State
	log   log.FieldLogger
}

func NewEngine(s *State, logger log.FieldLogger) *Engine {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Engine{state: s, log: logger}
}

func (e *Engine) State() *State { return e.state }

func (e *Engine) MoveList(listID string, toIndex int) error {
	next, err := e.state.MoveList(listID, toIndex)
	return e.commit(next, err)
}

func (e *Engine) MoveCard(cardID, fromListID, toListID string, toIndex int) error {
	next, err := e.state.MoveCard(cardID, fromListID, toListID, toIndex)
	return e.commit(next, err)
}

// Apply dispatches a move intent. Cancelled intents change nothing.
func (e *Engine) Apply(in MoveIntent) error {
	if in.Cancelled {
		return nil
	}
	switch in.Kind {
	case IntentList:
		return e.MoveList(in.ID, in.ToIndex)
	case IntentCard:
		return e.MoveCard(in.ID, in.FromListID, in.ToListID, in.ToIndex)
	default:
		return e.commit(e.state, opErr("move", string(in.Kind), in.ID, "unknown intent kind"))
	}
}

func (e *Engine) commit(next *State, err error) error {
	if err != nil {
		var oe *OperationError
		if errors.As(err, &oe) {
			e.log.WithFields(log.Fields{
				"op":   oe.Op,
				"kind": oe.Kind,
				"id":   oe.ID,
			}).Warn(oe.Reason)
		}
		return err
	}
	e.state = next
	return nil
}

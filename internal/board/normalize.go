package board

import (
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"boardview/internal/model"
)

// Parse decodes an export document and normalizes it.
func Parse(r io.Reader) (*State, error) {
	doc, err := model.ParseExport(r)
	if err != nil {
		return nil, &NormalizationError{Reason: "export is not valid JSON", Err: err}
	}
	return Normalize(doc)
}

// Normalize validates an export document and builds the initial board state.
// It either returns a complete state or a *NormalizationError, never both.
func Normalize(doc *model.Export) (*State, error) {
	if doc == nil {
		return nil, normErr("empty document")
	}
	if doc.Lists == nil {
		return nil, normErr("missing lists array")
	}
	if doc.Cards == nil {
		return nil, normErr("missing cards array")
	}

	s := &State{
		labels:     map[string]model.Label{},
		members:    map[string]model.Member{},
		checklists: map[string]model.Checklist{},
	}

	if err := s.loadLists(*doc.Lists); err != nil {
		return nil, err
	}
	if err := s.loadCards(*doc.Cards); err != nil {
		return nil, err
	}
	s.loadLookups(doc)

	var image, color string
	if doc.Prefs != nil {
		if doc.Prefs.BackgroundImage != nil {
			image = *doc.Prefs.BackgroundImage
		}
		if doc.Prefs.BackgroundColor != nil {
			color = *doc.Prefs.BackgroundColor
		}
	}
	s.board.ID = strings.TrimSpace(doc.ID)
	s.board.Name = strings.TrimSpace(doc.Name)
	s.board.Desc = doc.Desc
	s.board.URL = doc.URL
	s.board.Background = model.ResolveBackground(image, color)
	s.board.Actions = doc.Actions
	s.bgCSS = s.board.Background.CSS()
	return s, nil
}

func (s *State) loadLists(raw []model.ExportList) error {
	lists := make([]model.List, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, rl := range raw {
		id := strings.TrimSpace(rl.ID)
		if id == "" {
			return normErr("list at index %d has no id", i)
		}
		if seen[id] {
			return normErr("duplicate list id %s", id)
		}
		seen[id] = true
		lists = append(lists, model.List{
			ID:     id,
			Name:   rl.Name,
			Pos:    exportPos(rl.Pos),
			Closed: rl.Closed,
		})
	}

	// Stable sort keeps export order among equal positions; repairOrder then
	// makes the order strict.
	sort.SliceStable(lists, func(i, j int) bool { return lists[i].Pos < lists[j].Pos })
	ptrs := make([]*float64, len(lists))
	for i := range lists {
		ptrs[i] = &lists[i].Pos
	}
	repairOrder(ptrs)

	s.lists = lists
	s.listIdx = make(map[string]int, len(lists))
	for i, l := range lists {
		s.listIdx[l.ID] = i
	}
	return nil
}

func (s *State) loadCards(raw []model.ExportCard) error {
	cards := make([]model.Card, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, rc := range raw {
		id := strings.TrimSpace(rc.ID)
		if id == "" {
			return normErr("card at index %d has no id", i)
		}
		if seen[id] {
			return normErr("duplicate card id %s", id)
		}
		seen[id] = true
		listID := strings.TrimSpace(rc.IDList)
		if listID == "" {
			return normErr("card %s has no idList", id)
		}
		c := cardFromExport(rc)
		c.ID = id
		c.ListID = listID
		if _, ok := s.listIdx[listID]; !ok {
			s.detached = append(s.detached, c)
			continue
		}
		cards = append(cards, c)
	}

	// Per-list strict order, closed cards included.
	byList := map[string][]int{}
	for i := range cards {
		byList[cards[i].ListID] = append(byList[cards[i].ListID], i)
	}
	for _, idx := range byList {
		sort.SliceStable(idx, func(a, b int) bool { return cards[idx[a]].Pos < cards[idx[b]].Pos })
		ptrs := make([]*float64, len(idx))
		for k, ci := range idx {
			ptrs[k] = &cards[ci].Pos
		}
		repairOrder(ptrs)
	}

	s.cards = cards
	s.cardIdx = make(map[string]int, len(cards))
	for i, c := range cards {
		s.cardIdx[c.ID] = i
	}
	return nil
}

func cardFromExport(rc model.ExportCard) model.Card {
	c := model.Card{
		Name:         rc.Name,
		Pos:          exportPos(rc.Pos),
		Closed:       rc.Closed,
		LabelIDs:     nonNil(rc.IDLabels),
		MemberIDs:    nonNil(rc.IDMembers),
		ChecklistIDs: nonNil(rc.IDChecklists),
		DueComplete:  rc.DueComplete,
		URL:          rc.URL,
		Attachments:  make([]model.Attachment, 0, len(rc.Attachments)),
	}
	if rc.Desc != nil {
		c.Desc = *rc.Desc
	}
	if rc.Due != nil {
		if t, ok := parseTime(*rc.Due); ok {
			c.Due = &t
		}
	}
	switch {
	case rc.CheckItems != nil:
		c.CheckItems = *rc.CheckItems
		if rc.CheckItemsChecked != nil {
			c.CheckItemsChecked = *rc.CheckItemsChecked
		}
	case rc.Badges != nil:
		c.CheckItems = rc.Badges.CheckItems
		c.CheckItemsChecked = rc.Badges.CheckItemsChecked
	}
	for _, ra := range rc.Attachments {
		a := model.Attachment{
			ID:       ra.ID,
			URL:      ra.URL,
			Name:     ra.Name,
			MimeType: ra.MimeType,
		}
		if t, ok := parseTime(ra.Date); ok {
			a.Date = t
		}
		if len(ra.Previews) > 0 {
			a.PreviewURL = ra.Previews[0].URL
		}
		c.Attachments = append(c.Attachments, a)
	}
	return c
}

func (s *State) loadLookups(doc *model.Export) {
	labelOrder := make([]string, 0, len(doc.Labels))
	for _, rl := range doc.Labels {
		l := model.Label{ID: rl.ID, Name: rl.Name, Color: model.ParseLabelColor(deref(rl.Color))}
		if _, dup := s.labels[l.ID]; !dup {
			labelOrder = append(labelOrder, l.ID)
		}
		s.labels[l.ID] = l
	}
	s.board.Labels = make([]model.Label, 0, len(labelOrder))
	for _, id := range labelOrder {
		s.board.Labels = append(s.board.Labels, s.labels[id])
	}

	memberOrder := make([]string, 0, len(doc.Members))
	for _, rm := range doc.Members {
		m := model.Member{
			ID:        rm.ID,
			FullName:  rm.FullName,
			Username:  rm.Username,
			Initials:  rm.Initials,
			AvatarURL: deref(rm.AvatarURL),
		}
		if _, dup := s.members[m.ID]; !dup {
			memberOrder = append(memberOrder, m.ID)
		}
		s.members[m.ID] = m
	}
	s.board.Members = make([]model.Member, 0, len(memberOrder))
	for _, id := range memberOrder {
		s.board.Members = append(s.board.Members, s.members[id])
	}

	checklistOrder := make([]string, 0, len(doc.Checklists))
	for _, rc := range doc.Checklists {
		cl := model.Checklist{ID: rc.ID, Name: rc.Name, CardID: rc.IDCard, Items: make([]model.CheckItem, 0, len(rc.CheckItems))}
		for _, ri := range rc.CheckItems {
			st := model.CheckItemIncomplete
			if strings.EqualFold(strings.TrimSpace(ri.State), string(model.CheckItemComplete)) {
				st = model.CheckItemComplete
			}
			var pos float64
			if ri.Pos != nil {
				pos = *ri.Pos
			}
			cl.Items = append(cl.Items, model.CheckItem{ID: ri.ID, Name: ri.Name, Pos: pos, State: st})
		}
		if _, dup := s.checklists[cl.ID]; !dup {
			checklistOrder = append(checklistOrder, cl.ID)
		}
		s.checklists[cl.ID] = cl
	}
	s.board.Checklists = make([]model.Checklist, 0, len(checklistOrder))
	for _, id := range checklistOrder {
		s.board.Checklists = append(s.board.Checklists, s.checklists[id])
	}
}

// exportPos maps a missing or non-finite position to +Inf so the element
// sorts last; repairOrder replaces it.
func exportPos(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return math.Inf(1)
	}
	return *p
}

// repairOrder respaces an already sorted sibling set when it contains ties
// or non-finite positions.
func repairOrder(pos []*float64) {
	broken := false
	for i, p := range pos {
		if math.IsInf(*p, 0) || (i > 0 && *pos[i-1] == *p) {
			broken = true
			break
		}
	}
	if !broken {
		return
	}
	for i, v := range Respace(len(pos)) {
		*pos[i] = v
	}
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return append([]string(nil), xs...)
}

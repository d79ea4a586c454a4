package board

import (
	"math"
)

// DefaultPosStep is the spacing used when positions are assigned at an open
// end of a sibling set or when a set is respaced.
const DefaultPosStep = 65536.0

// Sibling is the ordering view of a list or card: its id and position.
type Sibling struct {
	ID  string
	Pos float64
}

// Reinsert returns a copy of seq with the element at from moved to to.
//
// to indexes the sequence *after* the element has been removed, so to ==
// len(seq)-1 (and anything larger) appends. Negative to inserts at the front.
// An out-of-range from returns an unchanged copy.
func Reinsert[T any](seq []T, from, to int) []T {
	out := make([]T, 0, len(seq))
	if from < 0 || from >= len(seq) {
		return append(out, seq...)
	}
	moved := seq[from]
	rest := make([]T, 0, len(seq)-1)
	rest = append(rest, seq[:from]...)
	rest = append(rest, seq[from+1:]...)
	to = clampIndex(to, len(rest))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	return out
}

// Insert returns a copy of seq with v inserted at index to (clamped).
func Insert[T any](seq []T, v T, to int) []T {
	to = clampIndex(to, len(seq))
	out := make([]T, 0, len(seq)+1)
	out = append(out, seq[:to]...)
	out = append(out, v)
	out = append(out, seq[to:]...)
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

var (
	openLower = math.Inf(-1)
	openUpper = math.Inf(1)
)

// PosBetween returns a position strictly between lower and upper.
// Pass math.Inf(-1) / math.Inf(1) for an open bound. ok is false when the
// bounds leave no representable room.
func PosBetween(lower, upper float64) (float64, bool) {
	var p float64
	switch {
	case math.IsInf(lower, -1) && math.IsInf(upper, 1):
		return DefaultPosStep, true
	case math.IsInf(lower, -1):
		if upper > 0 {
			p = upper / 2
		} else {
			p = upper - DefaultPosStep
		}
	case math.IsInf(upper, 1):
		p = lower + DefaultPosStep
	default:
		if !(lower < upper) {
			return 0, false
		}
		p = lower + (upper-lower)/2
	}
	if math.IsInf(p, 0) || math.IsNaN(p) || !(lower < p && p < upper) {
		return 0, false
	}
	return p, true
}

// posBetweenUnique is PosBetween that also avoids positions held by siblings
// outside the visible set (e.g. archived cards kept in the same list).
func posBetweenUnique(taken map[float64]bool, lower, upper float64) (float64, bool) {
	cur := lower
	for i := 0; i < 64; i++ {
		p, ok := PosBetween(cur, upper)
		if !ok {
			return 0, false
		}
		if !taken[p] {
			return p, true
		}
		cur = p
	}
	return 0, false
}

// Respace returns n evenly spaced positions starting at DefaultPosStep.
func Respace(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = DefaultPosStep * float64(i+1)
	}
	return out
}

// MovePlan describes the position updates needed to realize an index-based
// move. PosByID includes only siblings whose positions change.
type MovePlan struct {
	PosByID      map[string]float64
	WindowIDs    []string // siblings repositioned by the fallback path, in final order
	UsedFallback bool
}

// PlanInsert plans positions for final, the sibling order as it must look
// after the move, where final[movedIdx] is the moved element.
//
// The fast path repositions only the moved element, midway between its new
// neighbors. When the neighbors leave no room (equal or exhausted float
// precision) the smallest contiguous window around movedIdx whose outer bounds
// can hold evenly spread values is repositioned instead. preferRight breaks
// ties between equally small windows in favor of the displaced neighbors to
// the right. taken holds positions of hidden siblings that must not be reused.
func PlanInsert(final []Sibling, movedIdx int, preferRight bool, taken map[float64]bool) MovePlan {
	if movedIdx < 0 || movedIdx >= len(final) {
		return MovePlan{PosByID: map[string]float64{}}
	}

	lower, upper := outerBounds(final, movedIdx, movedIdx)
	if p, ok := posBetweenUnique(taken, lower, upper); ok {
		return MovePlan{PosByID: map[string]float64{final[movedIdx].ID: p}}
	}

	lo, hi, vals := minimalValidWindow(final, movedIdx, preferRight, taken)
	plan := MovePlan{
		PosByID:      make(map[string]float64, hi-lo+1),
		WindowIDs:    make([]string, 0, hi-lo+1),
		UsedFallback: true,
	}
	for i := lo; i <= hi; i++ {
		id := final[i].ID
		plan.WindowIDs = append(plan.WindowIDs, id)
		if final[i].Pos == vals[i-lo] && i != movedIdx {
			continue
		}
		plan.PosByID[id] = vals[i-lo]
	}
	return plan
}

func outerBounds(final []Sibling, lo, hi int) (lower, upper float64) {
	lower, upper = openLower, openUpper
	if lo > 0 {
		lower = final[lo-1].Pos
	}
	if hi+1 < len(final) {
		upper = final[hi+1].Pos
	}
	return lower, upper
}

// minimalValidWindow finds the smallest window [lo, hi] containing movedIdx
// whose outer bounds admit hi-lo+1 distinct, strictly increasing positions.
// The full set always qualifies since both of its bounds are open.
func minimalValidWindow(final []Sibling, movedIdx int, preferRight bool, taken map[float64]bool) (lo, hi int, vals []float64) {
	try := func(lo, hi int) ([]float64, bool) {
		lower, upper := outerBounds(final, lo, hi)
		return spread(lower, upper, hi-lo+1, taken)
	}

	n := len(final)
	for size := 1; size <= n; size++ {
		startMin := movedIdx - (size - 1)
		if startMin < 0 {
			startMin = 0
		}
		startMax := movedIdx
		if startMax+size > n {
			startMax = n - size
		}
		if preferRight {
			for lo := startMax; lo >= startMin; lo-- {
				if v, ok := try(lo, lo+size-1); ok {
					return lo, lo + size - 1, v
				}
			}
		} else {
			for lo := startMin; lo <= startMax; lo++ {
				if v, ok := try(lo, lo+size-1); ok {
					return lo, lo + size - 1, v
				}
			}
		}
	}
	return 0, n - 1, respaceAvoiding(n, taken)
}

// respaceAvoiding is Respace skipping positions in taken. Hidden siblings do
// not take part in the visible order, so only uniqueness matters, and with
// finitely many taken values it always succeeds.
func respaceAvoiding(n int, taken map[float64]bool) []float64 {
	out := make([]float64, 0, n)
	for k := 1; len(out) < n; k++ {
		if p := DefaultPosStep * float64(k); !taken[p] {
			out = append(out, p)
		}
	}
	return out
}

// spread returns n strictly increasing positions inside (lower, upper) that
// avoid taken.
func spread(lower, upper float64, n int, taken map[float64]bool) ([]float64, bool) {
	out := make([]float64, n)
	switch {
	case math.IsInf(lower, -1) && math.IsInf(upper, 1):
		copy(out, respaceAvoiding(n, taken))
	case math.IsInf(lower, -1):
		for i := range out {
			out[i] = upper - DefaultPosStep*float64(n-i)
		}
	case math.IsInf(upper, 1):
		for i := range out {
			out[i] = lower + DefaultPosStep*float64(i+1)
		}
	default:
		if !(lower < upper) {
			return nil, false
		}
		width := upper - lower
		for i := range out {
			out[i] = lower + width*float64(i+1)/float64(n+1)
		}
	}
	prev := lower
	for _, p := range out {
		if math.IsInf(p, 0) || math.IsNaN(p) || !(prev < p) || !(p < upper) || taken[p] {
			return nil, false
		}
		prev = p
	}
	return out, true
}

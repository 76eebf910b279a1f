// Package selection implements Range, Selection, and CursorId: the ordered
// non-empty set of text ranges with a designated primary.
package selection

import (
	"fmt"
	"sort"

	"github.com/xonecas/editorcore/internal/change"
)

// CursorId is a monotonically allocated, stable-where-possible identifier
// for a selection range. Zero is never issued, so it can double as a
// "no id" sentinel.
type CursorId uint64

// idSeq is the process-wide allocator; ids never need to be globally unique
// across documents in production use, but a single shared counter keeps the
// zero-value reserved and avoids plumbing a generator through every call
// site.
var idSeq uint64

// NextID allocates a fresh, never-repeating CursorId.
func NextID() CursorId {
	idSeq++
	return CursorId(idSeq)
}

// ColumnHint preserves the desired visual column across vertical moves.
type ColumnHint struct {
	Col   int
	Valid bool
}

// Range is a single selection range. Anchor/Head give the selection
// endpoints; Head is the logical caret. anchor==head is a bare caret.
type Range struct {
	Anchor, Head int
	ID           CursorId
	Hint         ColumnHint
}

// NewRange constructs a range with a fresh id.
func NewRange(anchor, head int) Range {
	return Range{Anchor: anchor, Head: head, ID: NextID()}
}

// Point constructs a zero-width caret at p.
func Point(p int) Range { return NewRange(p, p) }

// From/To return the range in document order regardless of direction.
func (r Range) From() int {
	if r.Anchor < r.Head {
		return r.Anchor
	}
	return r.Head
}

func (r Range) To() int {
	if r.Anchor < r.Head {
		return r.Head
	}
	return r.Anchor
}

// IsEmpty reports whether the range is a bare caret.
func (r Range) IsEmpty() bool { return r.Anchor == r.Head }

// Cursor returns the logical caret position (Head).
func (r Range) Cursor() int { return r.Head }

// Overlaps reports whether r and o share any char position (touching at a
// single boundary point counts for normalization's merge rule, i.e. [a,b)
// and [b,c) are considered overlapping so adjacent carets coalesce the way
// helix-style editors merge touching ranges).
func (r Range) Overlaps(o Range) bool {
	return r.From() <= o.To() && o.From() <= r.To()
}

// merge combines r and o into the widest span, keeping the earlier id.
func (r Range) merge(o Range) Range {
	from := r.From()
	if o.From() < from {
		from = o.From()
	}
	to := r.To()
	if o.To() > to {
		to = o.To()
	}
	id := r.ID
	// Prefer the numerically smaller (earlier-allocated) id.
	if o.ID != 0 && (id == 0 || o.ID < id) {
		id = o.ID
	}
	// The merged range is backward if either input was backward, so an
	// extending selection (e.g. shift+arrow) keeps its anchor/head sense.
	anchor, head := from, to
	if r.Head < r.Anchor || o.Head < o.Anchor {
		anchor, head = to, from
	}
	return Range{Anchor: anchor, Head: head, ID: id, Hint: r.Hint}
}

// Map translates both endpoints of r through a ChangeSet.
func (r Range) Map(cs *change.ChangeSet) Range {
	anchorAssoc, headAssoc := change.Before, change.After
	if r.Anchor > r.Head {
		anchorAssoc, headAssoc = change.After, change.Before
	}
	return Range{
		Anchor: cs.Map(r.Anchor, anchorAssoc),
		Head:   cs.Map(r.Head, headAssoc),
		ID:     r.ID,
		Hint:   r.Hint,
	}
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

// Selection is an ordered non-empty set of ranges with a designated primary.
type Selection struct {
	ranges     []Range
	primaryIdx int
}

// SelectionError reports a violated Selection invariant.
type SelectionError struct{ Kind, Msg string }

func (e *SelectionError) Error() string { return fmt.Sprintf("selection: %s: %s", e.Kind, e.Msg) }

// Single builds a one-range selection from an explicit anchor/head pair.
func Single(anchor, head int) Selection {
	return Selection{ranges: []Range{NewRange(anchor, head)}, primaryIdx: 0}
}

// PointSelection builds a one-range caret selection at p.
func PointSelection(p int) Selection { return Single(p, p) }

// New builds a Selection from an explicit, non-empty range slice and a
// primary index; ranges are normalized immediately.
func New(ranges []Range, primaryIdx int) (Selection, error) {
	if len(ranges) == 0 {
		return Selection{}, &SelectionError{Kind: "Empty", Msg: "selection must contain at least one range"}
	}
	if primaryIdx < 0 || primaryIdx >= len(ranges) {
		return Selection{}, &SelectionError{Kind: "OutOfBounds", Msg: "primary index out of range"}
	}
	s := Selection{ranges: append([]Range(nil), ranges...), primaryIdx: primaryIdx}
	s.normalize()
	return s, nil
}

// Ranges returns the (read-only) range slice in document order.
func (s Selection) Ranges() []Range { return s.ranges }

// Len returns the number of ranges.
func (s Selection) Len() int { return len(s.ranges) }

// Primary returns the designated primary range.
func (s Selection) Primary() Range { return s.ranges[s.primaryIdx] }

// PrimaryIndex returns the index of the primary range.
func (s Selection) PrimaryIndex() int { return s.primaryIdx }

// Push appends a range and renormalizes, preserving the primary's identity.
func (s Selection) Push(r Range) Selection {
	primaryID := s.ranges[s.primaryIdx].ID
	next := append(append([]Range(nil), s.ranges...), r)
	out := Selection{ranges: next, primaryIdx: len(next) - 1}
	out.normalize()
	out.restorePrimaryByID(primaryID)
	return out
}

// PickPolicy selects which range an operation should act on.
type PickPolicy int

const (
	PickFirst PickPolicy = iota
	PickLast
	PickPrimary
	PickID
)

// Pick returns a range chosen by policy. id is only consulted for PickID.
func (s Selection) Pick(policy PickPolicy, id CursorId) Range {
	switch policy {
	case PickFirst:
		return s.ranges[0]
	case PickLast:
		return s.ranges[len(s.ranges)-1]
	case PickID:
		for _, r := range s.ranges {
			if r.ID == id {
				return r
			}
		}
		return s.Primary()
	default:
		return s.Primary()
	}
}

// Collapse drops all ranges but the one chosen by policy.
func (s Selection) Collapse(policy PickPolicy, id CursorId) Selection {
	r := s.Pick(policy, id)
	return Selection{ranges: []Range{r}, primaryIdx: 0}
}

// Transform applies f to every range, then reassembles and renormalizes.
func (s Selection) Transform(f func(Range) Range) Selection {
	primaryID := s.ranges[s.primaryIdx].ID
	next := make([]Range, len(s.ranges))
	for i, r := range s.ranges {
		next[i] = f(r)
	}
	out := Selection{ranges: next, primaryIdx: s.primaryIdx}
	out.normalize()
	out.restorePrimaryByID(primaryID)
	return out
}

// Map translates every range through a ChangeSet and renormalizes.
func (s Selection) Map(cs *change.ChangeSet) Selection {
	return s.Transform(func(r Range) Range { return r.Map(cs) })
}

// Clamp clips every range's endpoints into [0, maxChar].
func (s Selection) Clamp(maxChar int) Selection {
	return s.Transform(func(r Range) Range {
		clampPt := func(p int) int {
			if p < 0 {
				return 0
			}
			if p > maxChar {
				return maxChar
			}
			return p
		}
		r.Anchor = clampPt(r.Anchor)
		r.Head = clampPt(r.Head)
		return r
	})
}

// restorePrimaryByID re-finds the primary index after a transform/merge that
// may have changed range order or count. If the id was merged away, the
// current index is kept, clamped to the last range.
func (s *Selection) restorePrimaryByID(id CursorId) {
	for i, r := range s.ranges {
		if r.ID == id {
			s.primaryIdx = i
			return
		}
	}
	if s.primaryIdx >= len(s.ranges) {
		s.primaryIdx = len(s.ranges) - 1
	}
}

// normalize sorts ranges by start, merges overlapping pairs (preserving the
// earliest id and widest span), and recomputes primaryIdx.
func (s *Selection) normalize() {
	primaryID := s.ranges[s.primaryIdx].ID
	sort.SliceStable(s.ranges, func(i, j int) bool {
		return s.ranges[i].From() < s.ranges[j].From()
	})
	merged := make([]Range, 0, len(s.ranges))
	for _, r := range s.ranges {
		if n := len(merged); n > 0 && merged[n-1].Overlaps(r) {
			merged[n-1] = merged[n-1].merge(r)
			continue
		}
		merged = append(merged, r)
	}
	s.ranges = merged
	s.restorePrimaryByID(primaryID)
}

// Validate checks the Selection's invariants against a document of length
// maxChar: non-empty, primaryIdx in range, ranges non-overlapping and
// sorted, and all char indices within [0, maxChar].
func (s Selection) Validate(maxChar int) error {
	if len(s.ranges) == 0 {
		return &SelectionError{Kind: "Empty", Msg: "no ranges"}
	}
	if s.primaryIdx < 0 || s.primaryIdx >= len(s.ranges) {
		return &SelectionError{Kind: "OutOfBounds", Msg: "primary index out of range"}
	}
	for i, r := range s.ranges {
		if r.Anchor < 0 || r.Anchor > maxChar || r.Head < 0 || r.Head > maxChar {
			return &SelectionError{Kind: "OutOfBounds", Msg: fmt.Sprintf("range %d out of [0,%d]", i, maxChar)}
		}
		if i > 0 && s.ranges[i-1].Overlaps(r) {
			return &SelectionError{Kind: "OutOfBounds", Msg: fmt.Sprintf("ranges %d and %d overlap after normalization", i-1, i)}
		}
	}
	return nil
}

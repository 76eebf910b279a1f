// Package change implements ChangeSet and Transaction: the retain/insert/
// delete program that maps one rope to another.
package change

import (
	"errors"
	"fmt"

	"github.com/xonecas/editorcore/internal/rope"
)

// OpKind identifies the kind of a single ChangeSet operation.
type OpKind int

const (
	Retain OpKind = iota
	Insert
	Delete
)

// Op is one retain/insert/delete step. N is the retain/delete length in
// chars; Text is the inserted text for Insert ops.
type Op struct {
	Kind OpKind
	N    int
	Text string
}

func (o Op) String() string {
	switch o.Kind {
	case Retain:
		return fmt.Sprintf("Retain(%d)", o.N)
	case Insert:
		return fmt.Sprintf("Insert(%q)", o.Text)
	case Delete:
		return fmt.Sprintf("Delete(%d)", o.N)
	default:
		return "?"
	}
}

// ChangeSet is an ordered list of operations transforming one rope into
// another. The sum of Retain+Delete lengths must equal the source
// document's char length, enforced as the ChangeError invariant.
type ChangeSet struct {
	ops    []Op
	srcLen int // length, in chars, of the document this changeset applies to
}

// ChangeError reports a malformed ChangeSet or Transaction construction.
type ChangeError struct {
	Kind string
	Msg  string
}

func (e *ChangeError) Error() string { return fmt.Sprintf("change: %s: %s", e.Kind, e.Msg) }

var errLengthMismatch = func(msg string) error { return &ChangeError{Kind: "LengthMismatch", Msg: msg} }
var errOverlap = func(msg string) error { return &ChangeError{Kind: "Overlap", Msg: msg} }

// New builds an empty, identity ChangeSet over a document of length srcLen.
func New(srcLen int) *ChangeSet {
	return &ChangeSet{srcLen: srcLen}
}

// SourceLen returns the char length of the document this changeset expects.
func (c *ChangeSet) SourceLen() int { return c.srcLen }

// Ops returns the (read-only) operation list.
func (c *ChangeSet) Ops() []Op { return c.ops }

// IsEmpty reports whether the changeset is a pure identity (a single Retain
// spanning the whole source, or no ops at all).
func (c *ChangeSet) IsEmpty() bool {
	for _, op := range c.ops {
		if op.Kind != Retain {
			return false
		}
	}
	return true
}

// retain/insert/delete append helpers coalesce adjacent same-kind ops so the
// op list stays minimal (mirrors ropey/helix's ChangeSet builder behavior).
func (c *ChangeSet) retain(n int) {
	if n <= 0 {
		return
	}
	if last := len(c.ops) - 1; last >= 0 && c.ops[last].Kind == Retain {
		c.ops[last].N += n
		return
	}
	c.ops = append(c.ops, Op{Kind: Retain, N: n})
}

func (c *ChangeSet) insert(s string) {
	if s == "" {
		return
	}
	if last := len(c.ops) - 1; last >= 0 && c.ops[last].Kind == Insert {
		c.ops[last].Text += s
		return
	}
	c.ops = append(c.ops, Op{Kind: Insert, Text: s})
}

func (c *ChangeSet) delete(n int) {
	if n <= 0 {
		return
	}
	if last := len(c.ops) - 1; last >= 0 && c.ops[last].Kind == Delete {
		c.ops[last].N += n
		return
	}
	c.ops = append(c.ops, Op{Kind: Delete, N: n})
}

// Edit is a single (from, to, replacement) triple used to build a ChangeSet
// via FromEdits.
type Edit struct {
	From, To    int
	Replacement string
}

// FromEdits builds a ChangeSet from a set of non-overlapping edits against a
// document of length srcLen. Edits need not be pre-sorted. Overlapping
// ranges, or a range extending past srcLen, is a ChangeError.
func FromEdits(srcLen int, edits []Edit) (*ChangeSet, error) {
	sorted := append([]Edit(nil), edits...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].From > sorted[j].From; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	cs := New(srcLen)
	pos := 0
	for _, e := range sorted {
		if e.From < pos {
			return nil, errOverlap(fmt.Sprintf("edit [%d,%d) overlaps previous edit ending at %d", e.From, e.To, pos))
		}
		if e.To > srcLen {
			return nil, errLengthMismatch(fmt.Sprintf("edit end %d exceeds document length %d", e.To, srcLen))
		}
		cs.retain(e.From - pos)
		cs.delete(e.To - e.From)
		cs.insert(e.Replacement)
		pos = e.To
	}
	cs.retain(srcLen - pos)
	return cs, nil
}

// Validate checks the ChangeSet's retain+delete total against srcLen.
func (c *ChangeSet) Validate() error {
	total := 0
	for _, op := range c.ops {
		if op.Kind == Retain || op.Kind == Delete {
			total += op.N
		}
	}
	if total != c.srcLen {
		return errLengthMismatch(fmt.Sprintf("retain+delete=%d, source length=%d", total, c.srcLen))
	}
	return nil
}

// LenAfter returns the char length of the document after applying the
// changeset (sum of retains and inserts).
func (c *ChangeSet) LenAfter() int {
	n := 0
	for _, op := range c.ops {
		switch op.Kind {
		case Retain:
			n += op.N
		case Insert:
			n += len([]rune(op.Text))
		}
	}
	return n
}

// Apply rewrites r by running the changeset's operations over it.
func (c *ChangeSet) Apply(r rope.Rope) rope.Rope {
	pos := 0
	result := ""
	for _, op := range c.ops {
		switch op.Kind {
		case Retain:
			result += r.Slice(pos, pos+op.N)
			pos += op.N
		case Delete:
			pos += op.N
		case Insert:
			result += op.Text
		}
	}
	return rope.New(result)
}

// Assoc controls which side of an edit boundary a mapped position sticks to.
type Assoc int

const (
	Before Assoc = iota
	After
)

// Map translates a char position through the changeset, monotonically:
// p <= q implies Map(p, a) <= Map(q, a) for any fixed association.
func (c *ChangeSet) Map(p int, assoc Assoc) int {
	oldPos, newPos := 0, 0
	for _, op := range c.ops {
		switch op.Kind {
		case Retain:
			if p >= oldPos && p < oldPos+op.N {
				return newPos + (p - oldPos)
			}
			if p == oldPos+op.N && assoc == Before {
				return newPos + op.N
			}
			oldPos += op.N
			newPos += op.N
		case Delete:
			if p >= oldPos && p < oldPos+op.N {
				// Position was inside a deleted span: snap to the deletion point
				// (both associations land on the same position).
				if assoc == Before {
					return newPos
				}
				return newPos
			}
			oldPos += op.N
		case Insert:
			n := len([]rune(op.Text))
			if p == oldPos {
				if assoc == After {
					return newPos + n
				}
				return newPos
			}
			newPos += n
		}
	}
	return newPos
}

// Compose returns the ChangeSet equivalent to applying c then b to the same
// source. Composition is associative and the identity changeset is a no-op
// operand.
func (c *ChangeSet) Compose(b *ChangeSet) (*ChangeSet, error) {
	if c.LenAfter() != b.srcLen {
		return nil, errLengthMismatch(fmt.Sprintf("compose: a produces length %d but b expects source length %d", c.LenAfter(), b.srcLen))
	}
	out := New(c.srcLen)

	// Walk c's ops, splitting retains/inserts against b's ops as we consume
	// b's program over c's output stream.
	type cursor struct {
		ops []Op
		i   int
		off int // offset consumed within ops[i]
	}
	bc := &cursor{ops: b.ops}

	advanceB := func(n int, onRetain func(int), onDelete func(int)) {
		for n > 0 {
			if bc.i >= len(bc.ops) {
				onRetain(n)
				return
			}
			op := bc.ops[bc.i]
			switch op.Kind {
			case Insert:
				out.insert(op.Text)
				bc.i++
				bc.off = 0
				continue
			case Retain:
				avail := op.N - bc.off
				take := avail
				if take > n {
					take = n
				}
				onRetain(take)
				n -= take
				bc.off += take
				if bc.off == op.N {
					bc.i++
					bc.off = 0
				}
			case Delete:
				avail := op.N - bc.off
				take := avail
				if take > n {
					take = n
				}
				onDelete(take)
				n -= take
				bc.off += take
				if bc.off == op.N {
					bc.i++
					bc.off = 0
				}
			}
		}
	}

	flushInsertsOnly := func() {
		for bc.i < len(bc.ops) && bc.ops[bc.i].Kind == Insert {
			out.insert(bc.ops[bc.i].Text)
			bc.i++
		}
	}

	for _, op := range c.ops {
		flushInsertsOnly()
		switch op.Kind {
		case Retain:
			advanceB(op.N, out.retain, out.delete)
		case Delete:
			out.delete(op.N)
		case Insert:
			n := len([]rune(op.Text))
			runes := []rune(op.Text)
			consumed := 0
			advanceB(n, func(k int) {
				out.insert(string(runes[consumed : consumed+k]))
				consumed += k
			}, func(k int) {
				consumed += k // b deletes part of c's insertion: drop it
			})
		}
	}
	flushInsertsOnly()
	return out, nil
}

// Invert returns the ChangeSet that undoes c when applied against the rope
// it was built to produce (i.e. apply(invert(c, src), apply(c, src)) == src).
func (c *ChangeSet) Invert(src rope.Rope) *ChangeSet {
	inv := New(c.LenAfter())
	pos := 0
	for _, op := range c.ops {
		switch op.Kind {
		case Retain:
			inv.retain(op.N)
			pos += op.N
		case Delete:
			inv.insert(src.Slice(pos, pos+op.N))
			pos += op.N
		case Insert:
			inv.delete(len([]rune(op.Text)))
		}
	}
	return inv
}

// ErrEmptySource is a sentinel error for an empty source; exported for
// callers that want to special-case "nothing to apply".
var ErrEmptySource = errors.New("change: empty source")

// Package document implements Document: a rope, its
// selection, a branching undo/redo history, and an optional attached syntax
// engine, tied together by ApplyTransaction's edit pipeline.
//
// Each edit applies its text op, then runs a synchronous interpolate and a
// short-timeout inline reparse against the attached syntax engine, tracking
// a monotonic version counter and a saved-baseline marker alongside the
// text. When the inline reparse times out, no background parse is started;
// the host runs one through BackgroundReparse and ApplyBackgroundSnapshot.
package document

import (
	"context"

	"github.com/google/uuid"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/editorcore/internal/change"
	"github.com/xonecas/editorcore/internal/rope"
	"github.com/xonecas/editorcore/internal/selection"
	"github.com/xonecas/editorcore/internal/syntax"
	"github.com/xonecas/editorcore/internal/transaction"
)

// Document is the editable unit: text, selection, version counters, undo
// history, and an optional syntax engine.
type Document struct {
	DisplayName string

	// ID uniquely identifies this document across its lifetime, stable
	// across renames and independent of DisplayName — used as the key a
	// persisted history journal (internal/history) files deltas under.
	ID uuid.UUID

	text      rope.Rope
	sel       selection.Selection
	version   uint64
	savedAt   uint64
	modified  bool

	history *historyTree

	syn *syntax.State
}

// New creates an empty, untitled document with a single zero-width cursor.
func New(displayName string) *Document {
	sel := selection.PointSelection(0)
	return &Document{
		DisplayName: displayName,
		ID:          uuid.New(),
		text:        rope.Empty(),
		sel:         sel,
		version:     0,
		savedAt:     0,
		history:     newHistoryTree(sel),
	}
}

// NewFromText creates a document seeded with existing content.
func NewFromText(displayName, content string) *Document {
	sel := selection.PointSelection(0)
	return &Document{
		DisplayName: displayName,
		ID:          uuid.New(),
		text:        rope.New(content),
		sel:         sel,
		version:     0,
		savedAt:     0,
		history:     newHistoryTree(sel),
	}
}

// Text returns the document's current rope.
func (d *Document) Text() rope.Rope { return d.text }

// Selection returns the document's current selection.
func (d *Document) Selection() selection.Selection { return d.sel }

// Version returns the monotonic edit counter, bumped once per applied
// transaction with a non-empty changeset and once per successful Undo or
// Redo.
func (d *Document) Version() uint64 { return d.version }

// Modified reports whether the document has edits since the last save point.
func (d *Document) Modified() bool { return d.modified }

// AttachSyntax starts an incremental syntax engine over the document's
// current text using lang, and wires it into future ApplyTransaction calls.
func (d *Document) AttachSyntax(ctx context.Context, lang *sitter.Language, languageID string) error {
	syn, err := syntax.New(ctx, lang, languageID, []byte(d.text.String()))
	if err != nil {
		return err
	}
	d.syn = syntax.NewState(syn)
	return nil
}

// Syntax returns the attached syntax engine, or nil if AttachSyntax was
// never called.
func (d *Document) Syntax() *syntax.State { return d.syn }

// ApplyTransaction runs the full edit pipeline for tx against the document:
// rope update, selection mapping, version bump, history push, and — when a
// syntax engine is attached — synchronous interpolation followed by a short
// inline reparse attempt (see runSyntaxUpdate). A transaction whose
// changeset is empty is a no-op on text/version/history, but still installs
// tx.Selection if one was supplied.
func (d *Document) ApplyTransaction(ctx context.Context, tx transaction.Transaction) {
	if tx.Changes.IsEmpty() {
		if tx.Selection != nil {
			d.sel = tx.Selection.Clamp(d.text.LenChars())
		}
		return
	}

	priorSelection := d.sel
	priorText := d.text

	newText := tx.Apply(d.text)
	newSelection := tx.MapSelection(priorSelection).Clamp(newText.LenChars())

	inverse := tx.Changes.Invert(priorText)

	d.text = newText
	d.sel = newSelection
	d.version++
	d.modified = true
	d.history.push(tx.Changes, inverse, priorSelection)

	if d.syn != nil {
		d.runSyntaxUpdate(ctx, priorText, tx.Changes)
	}
}

// runSyntaxUpdate interpolates synchronously, then attempts a short-deadline
// full reparse; if that times out, it only logs at debug level. It does not
// take a snapshot or start a background parse, so the syntax state stays
// interpolated-only until the host calls BackgroundReparse.
func (d *Document) runSyntaxUpdate(ctx context.Context, priorText rope.Rope, cs *change.ChangeSet) {
	edits := syntax.EditsFromChangeSet(priorText, cs)
	d.syn.Interpolate(edits)

	newSrc := []byte(d.text.String())
	if d.syn.TryUpdateShortDeadline(newSrc) {
		return
	}
	// Caller is expected to drive the background path explicitly via
	// BackgroundReparse — Document itself does not own a worker pool.
	log.Debug().
		Str("doc", d.DisplayName).
		Msg("document: short reparse deadline exceeded, deferring to background path")
}

// BackgroundReparse lets a host-owned worker take a snapshot, reparse off
// the edit path, and swap it back in once finished. Callers
// should invoke TakeSnapshot/ParseInBackground/ApplyParsed themselves when
// they want control over the worker pool; this helper is the common case of
// doing all three against the document's current text.
func (d *Document) BackgroundReparse(ctx context.Context) (syntax.Snapshot, error) {
	snap := d.syn.TakeSnapshot([]byte(d.text.String()))
	return syntax.ParseInBackground(ctx, snap, nil)
}

// ApplyBackgroundSnapshot installs a previously computed snapshot if it is
// still current.
func (d *Document) ApplyBackgroundSnapshot(snap syntax.Snapshot) bool {
	if d.syn == nil {
		return false
	}
	return d.syn.ApplyParsed(snap)
}

// Commit marks the document's current version as the saved baseline. It does not write to storage —
// callers own persistence (e.g. internal/history).
func (d *Document) Commit() {
	d.savedAt = d.version
	d.modified = false
}

// Undo reverts the last committed transaction, restoring both text and the
// selection captured just before that edit.
func (d *Document) Undo() bool {
	inverse, restoreSelection, ok := d.history.undo()
	if !ok {
		return false
	}
	d.text = inverse.Apply(d.text)
	d.sel = restoreSelection.Clamp(d.text.LenChars())
	d.version++
	d.modified = d.version != d.savedAt
	return true
}

// Redo reapplies the most recently undone transaction.
func (d *Document) Redo() bool {
	forward, ok := d.history.redo()
	if !ok {
		return false
	}
	d.text = forward.Apply(d.text)
	d.sel = d.sel.Map(forward).Clamp(d.text.LenChars())
	d.version++
	d.modified = d.version != d.savedAt
	return true
}

// CanUndo reports whether Undo would succeed.
func (d *Document) CanUndo() bool { return d.history.canUndo() }

// CanRedo reports whether Redo would succeed.
func (d *Document) CanRedo() bool { return d.history.canRedo() }

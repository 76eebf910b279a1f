package document

import (
	"testing"

	"github.com/xonecas/editorcore/internal/change"
	"github.com/xonecas/editorcore/internal/selection"
	"github.com/xonecas/editorcore/internal/transaction"
)

func TestApplyTransactionUpdatesTextAndVersion(t *testing.T) {
	d := NewFromText("scratch", "hello world")

	tx, err := transaction.Change(d.Text(), []change.Edit{{From: 5, To: 6, Replacement: ", "}})
	if err != nil {
		t.Fatalf("Change: %v", err)
	}
	d.ApplyTransaction(nil, tx)

	if got, want := d.Text().String(), "hello, world"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	if d.Version() != 1 {
		t.Fatalf("version = %d, want 1", d.Version())
	}
	if !d.Modified() {
		t.Fatal("expected Modified() after an edit")
	}
}

func TestUndoRedoRoundTrips(t *testing.T) {
	d := NewFromText("scratch", "abc")

	tx, err := transaction.Change(d.Text(), []change.Edit{{From: 3, To: 3, Replacement: "def"}})
	if err != nil {
		t.Fatalf("Change: %v", err)
	}
	d.ApplyTransaction(nil, tx)
	if got := d.Text().String(); got != "abcdef" {
		t.Fatalf("after edit = %q", got)
	}

	if !d.CanUndo() {
		t.Fatal("expected CanUndo after an edit")
	}
	if !d.Undo() {
		t.Fatal("Undo should succeed")
	}
	if got := d.Text().String(); got != "abc" {
		t.Fatalf("after undo = %q, want %q", got, "abc")
	}

	if !d.CanRedo() {
		t.Fatal("expected CanRedo after an undo")
	}
	if !d.Redo() {
		t.Fatal("Redo should succeed")
	}
	if got := d.Text().String(); got != "abcdef" {
		t.Fatalf("after redo = %q, want %q", got, "abcdef")
	}
}

func TestCommitClearsModified(t *testing.T) {
	d := NewFromText("scratch", "x")
	tx, err := transaction.Change(d.Text(), []change.Edit{{From: 1, To: 1, Replacement: "y"}})
	if err != nil {
		t.Fatalf("Change: %v", err)
	}
	d.ApplyTransaction(nil, tx)
	if !d.Modified() {
		t.Fatal("expected Modified before Commit")
	}
	d.Commit()
	if d.Modified() {
		t.Fatal("expected not Modified after Commit")
	}
}

func TestEmptyTransactionIsNoop(t *testing.T) {
	d := NewFromText("scratch", "abc")
	empty := transaction.New(change.New(d.Text().LenChars()))
	d.ApplyTransaction(nil, empty)
	if d.Version() != 0 {
		t.Fatalf("version = %d, want 0 for no-op transaction", d.Version())
	}
}

// TestEmptyChangesWithSelectionBumpsSelectionNotVersion guards the
// version == initial + number_of_non_empty_transactions invariant: a
// transaction with an identity changeset but a supplied Selection must
// still move the cursor, without counting as an edit.
func TestEmptyChangesWithSelectionBumpsSelectionNotVersion(t *testing.T) {
	d := NewFromText("scratch", "abc")
	sel, err := selection.New([]selection.Range{selection.Point(2)}, 0)
	if err != nil {
		t.Fatalf("selection.New: %v", err)
	}
	tx := transaction.WithSelection(change.New(d.Text().LenChars()), sel)

	d.ApplyTransaction(nil, tx)

	if d.Version() != 0 {
		t.Fatalf("version = %d, want 0 for a selection-only transaction", d.Version())
	}
	if d.Modified() {
		t.Fatal("expected Modified() false for a selection-only transaction")
	}
	if got := d.Selection().Primary().Head; got != 2 {
		t.Fatalf("selection head = %d, want 2", got)
	}
}

// Package transaction glues a ChangeSet to an optional post-apply
// Selection: the atomic unit of edit applied to a document.
//
// It lives apart from internal/change and internal/selection purely to keep
// those two packages decoupled from each other: change.ChangeSet needs no
// knowledge of selections, and selection.Selection needs no knowledge of
// transactions, so only this glue layer depends on both.
package transaction

import (
	"github.com/xonecas/editorcore/internal/change"
	"github.com/xonecas/editorcore/internal/rope"
	"github.com/xonecas/editorcore/internal/selection"
)

// Transaction is a ChangeSet plus an optional selection to install after
// apply. If Selection is nil, the prior selection should be mapped forward
// through Changes instead.
type Transaction struct {
	Changes   *change.ChangeSet
	Selection *selection.Selection
}

// New wraps a changeset with no selection override.
func New(cs *change.ChangeSet) Transaction {
	return Transaction{Changes: cs}
}

// WithSelection attaches a selection to replace the document's after apply.
func WithSelection(cs *change.ChangeSet, sel selection.Selection) Transaction {
	return Transaction{Changes: cs, Selection: &sel}
}

// Change builds a Transaction directly from (from,to,replacement) edits
// against r.
func Change(r rope.Rope, edits []change.Edit) (Transaction, error) {
	cs, err := change.FromEdits(r.LenChars(), edits)
	if err != nil {
		return Transaction{}, err
	}
	return New(cs), nil
}

// Apply rewrites r using t.Changes and returns the new rope.
func (t Transaction) Apply(r rope.Rope) rope.Rope {
	return t.Changes.Apply(r)
}

// MapSelection returns the selection to use after apply: t.Selection if
// present, otherwise prior mapped forward through t.Changes.
func (t Transaction) MapSelection(prior selection.Selection) selection.Selection {
	if t.Selection != nil {
		return *t.Selection
	}
	return prior.Map(t.Changes)
}

// IsEmpty reports whether the transaction is a true no-op: an identity
// changeset with no selection override either. A transaction with an
// identity changeset but a non-nil Selection still needs to run (it bumps
// the selection); Document.ApplyTransaction checks t.Changes.IsEmpty()
// directly for that reason rather than calling this method.
func (t Transaction) IsEmpty() bool {
	return t.Changes.IsEmpty() && t.Selection == nil
}

package document

import (
	"github.com/xonecas/editorcore/internal/change"
	"github.com/xonecas/editorcore/internal/selection"
)

// historyNode is a single entry in the undo/redo DAG: it stores the inverse
// of the edit that produced it plus the selection snapshot from just before
// that edit, so undo can restore both text and cursor position.
type historyNode struct {
	parent          *historyNode
	children        []*historyNode
	lastChildIdx    int // which child redo() will replay, -1 if none chosen
	inverse         *change.ChangeSet
	forward         *change.ChangeSet
	priorSelection  selection.Selection
}

// historyTree is an append-only, branching undo/redo structure: each edit
// after an undo creates a new branch instead of discarding history.
type historyTree struct {
	root    *historyNode
	current *historyNode
}

func newHistoryTree(initial selection.Selection) *historyTree {
	root := &historyNode{lastChildIdx: -1, priorSelection: initial}
	return &historyTree{root: root, current: root}
}

// push records a new edit as a child of the current node and makes it
// current — this is the "commit" of an edit group into the tree.
func (h *historyTree) push(forward, inverse *change.ChangeSet, priorSelection selection.Selection) {
	node := &historyNode{
		parent:         h.current,
		lastChildIdx:   -1,
		forward:        forward,
		inverse:        inverse,
		priorSelection: priorSelection,
	}
	h.current.children = append(h.current.children, node)
	h.current.lastChildIdx = len(h.current.children) - 1
	h.current = node
}

// canUndo reports whether current has a parent to walk back to.
func (h *historyTree) canUndo() bool { return h.current.parent != nil }

// canRedo reports whether current has a remembered child to replay.
func (h *historyTree) canRedo() bool {
	return h.current.lastChildIdx >= 0 && h.current.lastChildIdx < len(h.current.children)
}

// undo returns the inverse changeset and the selection to restore, then
// walks current back to its parent.
func (h *historyTree) undo() (inverse *change.ChangeSet, restoreSelection selection.Selection, ok bool) {
	if !h.canUndo() {
		return nil, selection.Selection{}, false
	}
	node := h.current
	h.current = node.parent
	return node.inverse, node.priorSelection, true
}

// redo reapplies the forward changeset of the last-undone child.
func (h *historyTree) redo() (forward *change.ChangeSet, ok bool) {
	if !h.canRedo() {
		return nil, false
	}
	child := h.current.children[h.current.lastChildIdx]
	h.current = child
	return child.forward, true
}

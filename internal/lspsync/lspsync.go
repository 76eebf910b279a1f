// Package lspsync implements the edit-sync contract: translating
// a document's char-offset ChangeSet into the UTF-16 line/character
// positions the Language Server Protocol requires for incremental
// textDocument/didChange notifications.
//
// This package produces incremental, range-scoped change events, using
// github.com/charmbracelet/x/powernap's protocol.Position/protocol.Range
// types for the wire encoding, and leaves transport (the actual RPC call to
// notify a running language server) to a separate client — position math
// stays independent of RPC plumbing.
package lspsync

import (
	"unicode/utf16"

	"github.com/charmbracelet/x/powernap/pkg/lsp/protocol"

	"github.com/xonecas/editorcore/internal/change"
	"github.com/xonecas/editorcore/internal/rope"
)

// ContentChange is one incremental textDocument/didChange entry: an LSP
// Range plus its replacement text, ready to hand to a transport layer that
// builds a protocol.TextDocumentContentChangeEvent around it.
type ContentChange struct {
	Range protocol.Range
	Text  string
}

// FromChangeSet converts cs, applied against prior (the rope before cs was
// applied), into the minimal set of incremental ContentChanges an LSP
// server expects — one per non-identity (delete and/or insert) run, in
// document order.
func FromChangeSet(prior rope.Rope, cs *change.ChangeSet) []ContentChange {
	var changes []ContentChange
	charPos := 0
	for _, op := range cs.Ops() {
		switch op.Kind {
		case change.Retain:
			charPos += op.N
		case change.Delete:
			start := charPosition(prior, charPos)
			end := charPosition(prior, charPos+op.N)
			changes = append(changes, ContentChange{
				Range: protocol.Range{Start: start, End: end},
			})
			charPos += op.N
		case change.Insert:
			pos := charPosition(prior, charPos)
			changes = append(changes, ContentChange{
				Range: protocol.Range{Start: pos, End: pos},
				Text:  op.Text,
			})
		}
	}
	return mergeAdjacent(changes)
}

// mergeAdjacent folds a Delete immediately followed by an Insert at the
// same boundary into one replace-range change, the common case for a typed
// character or a paste-over-selection edit.
func mergeAdjacent(changes []ContentChange) []ContentChange {
	var out []ContentChange
	for i := 0; i < len(changes); i++ {
		cur := changes[i]
		if cur.Text == "" && i+1 < len(changes) && changes[i+1].Text != "" &&
			changes[i+1].Range.Start == cur.Range.End {
			out = append(out, ContentChange{
				Range: protocol.Range{Start: cur.Range.Start, End: cur.Range.End},
				Text:  changes[i+1].Text,
			})
			i++
			continue
		}
		out = append(out, cur)
	}
	return out
}

// charPosition converts a char offset in r into an LSP Position: a 0-based
// line number and a UTF-16 code-unit column within that line.
func charPosition(r rope.Rope, charOffset int) protocol.Position {
	line := r.CharToLine(charOffset)
	lineCharStart := r.LineToChar(line)
	lineText := r.Line(line)
	runeCol := charOffset - lineCharStart

	units := 0
	for i, ru := range []rune(lineText) {
		if i >= runeCol {
			break
		}
		if ru > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return protocol.Position{Line: uint32(line), Character: uint32(units)}
}

// Utf16Len returns s's length in UTF-16 code units, the unit LSP positions
// and protocol.TextDocumentContentChangeWholeDocument.Text lengths are
// reported in.
func Utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += len(utf16.Encode([]rune{r}))
	}
	return n
}

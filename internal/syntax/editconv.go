package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/editorcore/internal/change"
	"github.com/xonecas/editorcore/internal/rope"
)

// InputEdit mirrors tree-sitter's edit record: byte offsets bracketing the
// region that changed, used to adjust existing parse trees without a full
// reparse.
type InputEdit struct {
	StartByte    uint32
	OldEndByte   uint32
	NewEndByte   uint32
	StartPoint   sitter.Point
	OldEndPoint  sitter.Point
	NewEndPoint  sitter.Point
}

// EditsFromChange walks (oldRope, cs) and produces one InputEdit per
// logical insert/delete/replace. An Insert immediately followed by a
// Delete — or vice versa — collapses into a single replace edit, matching
// how Transaction::change builds a single (from,to,replacement) triple per
// user edit.
func EditsFromChange(oldRope rope.Rope, cs *change.ChangeSet) []InputEdit {
	var edits []InputEdit
	oldPosChars := 0

	ops := cs.Ops()
	for i := 0; i < len(ops); i++ {
		op := ops[i]
		switch op.Kind {
		case change.Retain:
			oldPosChars += op.N

		case change.Delete:
			startByte := charToByte(oldRope, oldPosChars)
			oldEndChars := oldPosChars + op.N
			oldEndByte := charToByte(oldRope, oldEndChars)
			newEndByte := startByte
			// Collapse with an immediately following Insert into one replace.
			if i+1 < len(ops) && ops[i+1].Kind == change.Insert {
				newEndByte = startByte + uint32(len(ops[i+1].Text))
				i++
			}
			edits = append(edits, makeEdit(oldRope, startByte, oldEndByte, newEndByte))
			oldPosChars = oldEndChars

		case change.Insert:
			startByte := charToByte(oldRope, oldPosChars)
			newEndByte := startByte + uint32(len(op.Text))
			// Collapse with an immediately following Delete into one replace.
			oldEndByte := startByte
			if i+1 < len(ops) && ops[i+1].Kind == change.Delete {
				oldEndChars := oldPosChars + ops[i+1].N
				oldEndByte = charToByte(oldRope, oldEndChars)
				edits = append(edits, makeEdit(oldRope, startByte, oldEndByte, newEndByte))
				oldPosChars = oldEndChars
				i++
				continue
			}
			edits = append(edits, makeEdit(oldRope, startByte, oldEndByte, newEndByte))
		}
	}
	return edits
}

func charToByte(r rope.Rope, c int) uint32 {
	return uint32(r.CharToByte(c))
}

// makeEdit fills in Point fields by scanning the old rope's line structure
// up to startByte/oldEndByte. newEndPoint's row/col cannot be derived from
// the old rope alone when bytes were inserted, so it is approximated by the
// same line/col as oldEndPoint shifted by the byte delta on that line —
// acceptable because tree-sitter only uses points as a faster path to the
// same byte offsets, and InputEdit.StartByte/OldEndByte/NewEndByte remain
// exact.
func makeEdit(oldRope rope.Rope, startByte, oldEndByte, newEndByte uint32) InputEdit {
	startChar := oldRope.ByteToChar(int(startByte))
	oldEndChar := oldRope.ByteToChar(int(oldEndByte))

	startPoint := pointAt(oldRope, startChar)
	oldEndPoint := pointAt(oldRope, oldEndChar)

	delta := int(newEndByte) - int(oldEndByte)
	newEndPoint := oldEndPoint
	if oldEndPoint.Row == startPoint.Row {
		newEndPoint.Column = uint32(int(oldEndPoint.Column) + delta)
	} else if delta != 0 {
		// Multi-line edits rarely need the column fixed up precisely; bias
		// to the start point's row so the hint stays monotonic.
		newEndPoint.Row = startPoint.Row
		newEndPoint.Column = uint32(int(startPoint.Column) + int(newEndByte) - int(startByte))
	}

	return InputEdit{
		StartByte:   startByte,
		OldEndByte:  oldEndByte,
		NewEndByte:  newEndByte,
		StartPoint:  startPoint,
		OldEndPoint: oldEndPoint,
		NewEndPoint: newEndPoint,
	}
}

func pointAt(r rope.Rope, charIdx int) sitter.Point {
	line := r.CharToLine(charIdx)
	lineStart := r.LineToChar(line)
	col := charIdx - lineStart
	return sitter.Point{Row: uint32(line), Column: uint32(col)}
}

// Package syntax implements the per-document layered tree-sitter state and
// the two-phase interpolate/reparse update protocol, built on
// github.com/smacker/go-tree-sitter's parse/Close/ParseCtx lifecycle and
// generalized into a stateful, incrementally-edited tree.
package syntax

import (
	"context"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/editorcore/internal/change"
	"github.com/xonecas/editorcore/internal/rope"
)

// Syntax is a layered tree-sitter state: a root tree plus injection layers,
// stored flat and addressed by index.
type Syntax struct {
	layers []*Layer
}

// New parses src with lang and returns a Syntax containing just the root
// layer. Nothing in this package runs an injection query or adds
// injection layers, so every Syntax has the root layer only.
func New(ctx context.Context, lang *sitter.Language, languageID string, src []byte) (*Syntax, error) {
	tree, err := parseLayer(ctx, lang, src, nil)
	if err != nil {
		return nil, err
	}
	root := &Layer{
		LanguageID: languageID,
		language:   lang,
		tree:       tree,
		byteRange:  [2]uint32{0, uint32(len(src))},
		isRoot:     true,
	}
	return &Syntax{layers: []*Layer{root}}, nil
}

// RootTree returns the root layer's parsed tree.
func (s *Syntax) RootTree() *sitter.Tree {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[0].tree
}

// Layers returns all layers (root first), read-only.
func (s *Syntax) Layers() []*Layer { return s.layers }

// LayerAt returns the innermost layer whose byte range contains pos, or the
// root layer if none more specific match. (The highlight adapter does not
// call it; it walks every layer in Layers.)
func (s *Syntax) LayerAt(bytePos uint32) *Layer {
	best := s.layers[0]
	bestWidth := best.byteRange[1] - best.byteRange[0]
	for _, l := range s.layers[1:] {
		if bytePos >= l.byteRange[0] && bytePos < l.byteRange[1] {
			w := l.byteRange[1] - l.byteRange[0]
			if w < bestWidth {
				best = l
				bestWidth = w
			}
		}
	}
	return best
}

// Clone duplicates the Syntax's layer headers, giving each layer its own
// tree-sitter tree handle via the tree's reference-counted Copy. This is
// O(layers), not O(tree size) — go-tree-sitter trees share their
// underlying storage across copies in the C library — which is what makes
// per-parse snapshotting in SyntaxState cheap, while still letting the
// clone's Interpolate/Close run without disturbing the live Syntax.
func (s *Syntax) Clone() *Syntax {
	out := &Syntax{layers: make([]*Layer, len(s.layers))}
	for i, l := range s.layers {
		out.layers[i] = l.clone()
	}
	return out
}

// Close releases every layer's tree-sitter tree.
func (s *Syntax) Close() {
	for _, l := range s.layers {
		if l.tree != nil {
			l.tree.Close()
		}
	}
}

// Interpolate applies byte-offset adjustments to every layer's existing
// tree without reparsing. Budgeted at O(edits ×
// layers); callers are expected to keep this under ~1ms by construction
// (few edits per keystroke).
func (s *Syntax) Interpolate(edits []InputEdit) {
	for _, l := range s.layers {
		if l.tree == nil {
			continue
		}
		for _, e := range edits {
			l.tree.Edit(sitter.EditInput{
				StartIndex:  e.StartByte,
				OldEndIndex: e.OldEndByte,
				NewEndIndex: e.NewEndByte,
				StartPoint:  e.StartPoint,
				OldEndPoint: e.OldEndPoint,
				NewEndPoint: e.NewEndPoint,
			})
		}
		// Shift the layer's own byte range to track the edit (the root
		// layer always spans the whole document; injected layers would
		// need their range recomputed by the injection query on reparse).
		if l.isRoot {
			end := int64(l.byteRange[1])
			for _, e := range edits {
				end += int64(e.NewEndByte) - int64(e.OldEndByte)
			}
			if end < 0 {
				end = 0
			}
			l.byteRange[1] = uint32(end)
		}
	}
}

// Update performs a full reparse of every layer against newSrc, reusing
// each layer's previous tree as a parse seed. This is
// the synchronous form used by callers willing to block; SyntaxState wraps
// it with the two-phase protocol for the hot edit path.
func (s *Syntax) Update(ctx context.Context, newSrc []byte) (*Syntax, error) {
	out := &Syntax{layers: make([]*Layer, len(s.layers))}
	for i, l := range s.layers {
		tree, err := parseLayer(ctx, l.language, newSrc, l.tree)
		if err != nil {
			return nil, err
		}
		out.layers[i] = &Layer{
			LanguageID: l.LanguageID,
			language:   l.language,
			tree:       tree,
			byteRange:  [2]uint32{0, uint32(len(newSrc))},
			isRoot:     l.isRoot,
			parent:     l.parent,
		}
	}
	return out, nil
}

// UpdateWithEdits interpolates edits into a clone then reparses it, so that
// interpolate(edits) followed by UpdateWithEdits(source, edits) produces the
// same tree as a plain Update(old, new) would.
func (s *Syntax) UpdateWithEdits(ctx context.Context, newSrc []byte, edits []InputEdit) (*Syntax, error) {
	tmp := s.Clone()
	tmp.Interpolate(edits)
	out, err := tmp.Update(ctx, newSrc)
	if err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.closeTreesOnly()
	return out, nil
}

// closeTreesOnly releases this Syntax's tree handles without attempting to
// free layer headers twice — used when a cloned scratch Syntax's trees have
// already been superseded by a fresh parse.
func (s *Syntax) closeTreesOnly() {
	for _, l := range s.layers {
		if l.tree != nil {
			l.tree.Close()
		}
	}
}

// TryUpdateWithShortTimeout attempts Update but gives up after budget,
// returning completed=false if the parse did not finish in time. Because go-tree-sitter's ParseCtx
// already accepts a context, a short deadline cancels the underlying parse
// cooperatively at the next byte-read checkpoint.
func (s *Syntax) TryUpdateWithShortTimeout(newSrc []byte, budget time.Duration) (out *Syntax, completed bool) {
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()
	result, err := s.Update(ctx, newSrc)
	if err != nil {
		return nil, false
	}
	return result, true
}

// EditsFromChangeSet is a convenience re-export so callers outside this
// package do not need to depend on the exact edit-construction helper
// location.
func EditsFromChangeSet(oldRope rope.Rope, cs *change.ChangeSet) []InputEdit {
	return EditsFromChange(oldRope, cs)
}

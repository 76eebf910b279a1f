package syntax

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// layerID indexes into Syntax.layers. Layers are stored flat and reference
// their parent by index rather than by pointer, so the forest of injection
// layers never forms a reference
// cycle and stays trivially cloneable.
type layerID int

const rootLayer layerID = 0

// Layer is a single tree-sitter sub-parse: either the document's root
// language or an injected language covering a byte sub-range of it.
type Layer struct {
	LanguageID string
	language   *sitter.Language
	tree       *sitter.Tree
	byteRange  [2]uint32 // [start, end) within the root document's bytes
	parent     layerID   // rootLayer's own parent is itself; check via index 0
	isRoot     bool
}

// Range returns the layer's covered byte range.
func (l *Layer) Range() (start, end uint32) { return l.byteRange[0], l.byteRange[1] }

// Tree returns the layer's parsed tree (may be nil before the first parse).
func (l *Layer) Tree() *sitter.Tree { return l.tree }

// clone duplicates the Layer header and takes an independent handle on its
// tree via the tree-sitter refcounting API, so a cloned Syntax's
// Interpolate/Close never mutates or frees the tree a concurrently live
// Syntax still holds.
func (l *Layer) clone() *Layer {
	cp := *l
	if l.tree != nil {
		cp.tree = l.tree.Copy()
	}
	return &cp
}

func parseLayer(ctx context.Context, lang *sitter.Language, src []byte, old *sitter.Tree) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)
	return parser.ParseCtx(ctx, old, src)
}

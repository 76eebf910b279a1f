package highlightcache

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/editorcore/internal/loader"
	"github.com/xonecas/editorcore/internal/syntax"
	"github.com/xonecas/editorcore/internal/theme"
)

// SyntaxHighlightAdapter is the production HighlightSource: it runs a
// tree-sitter query cursor over the syntax layers intersecting a requested
// byte range, maps each capture through the theme's scope matcher, and
// writes the result through Cache subject to the refresh-tolerance rule.
// Its Highlights method satisfies render.HighlightSource structurally —
// this package does not import render, to keep render the only side of
// that dependency edge.
type SyntaxHighlightAdapter struct {
	State  *syntax.State
	Loader *loader.Loader
	Theme  *theme.Theme
	Cache  *Cache

	// DocVersion returns the owning document's current edit version; the
	// adapter has no document of its own, so this is supplied by the
	// caller that wires the three together.
	DocVersion func() uint64
}

// Highlights resolves highlight spans intersecting byteRange, serving from
// Cache when a fresh entry exists at the current (docVersion, syntaxVersion)
// pair and otherwise running the query cursor and writing the result back.
func (a *SyntaxHighlightAdapter) Highlights(byteRange [2]uint32) []Span {
	want := ByteRange{Start: byteRange[0], End: byteRange[1]}
	docVersion := a.DocVersion()
	parsedVersion, interpolatedVersion := a.State.Versions()

	if cached := a.Cache.Get(want, docVersion, parsedVersion); cached != nil {
		return cached
	}

	syn := a.State.Current()
	if syn == nil {
		return nil
	}

	spans := a.collect(syn, want)
	unparsed := interpolatedVersion != parsedVersion
	a.Cache.Update(want, spans, docVersion, parsedVersion, unparsed)
	return spans
}

// collect runs the highlights query over every layer whose byte range
// intersects want, innermost layers included — an injected-language layer
// contributes its own captures over the sub-range it covers.
func (a *SyntaxHighlightAdapter) collect(syn *syntax.Syntax, want ByteRange) []Span {
	var out []Span
	for _, layer := range syn.Layers() {
		start, end := layer.Range()
		overlap, ok := (ByteRange{Start: start, End: end}).Intersect(want)
		if !ok {
			continue
		}
		tree := layer.Tree()
		if tree == nil {
			continue
		}
		cfg := a.Loader.ConfigByID(layer.LanguageID)
		if cfg == nil {
			continue
		}
		query := cfg.Queries(a.Loader.Resources()).Highlights
		if query == nil {
			continue
		}
		out = append(out, a.runQuery(query, tree, overlap)...)
	}
	return out
}

// runQuery executes query over tree's root node and turns every capture
// that the theme recognizes into a Span clipped to want.
func (a *SyntaxHighlightAdapter) runQuery(query *sitter.Query, tree *sitter.Tree, want ByteRange) []Span {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var out []Span
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			name := query.CaptureNameForId(capture.Index)
			scope, matched := a.Theme.MatchScope(name)
			if !matched {
				continue
			}
			node := capture.Node
			nodeRange := ByteRange{Start: node.StartByte(), End: node.EndByte()}
			clipped, ok := nodeRange.Intersect(want)
			if !ok {
				continue
			}
			out = append(out, Span{Highlight: Highlight(scope), Start: clipped.Start, End: clipped.End})
		}
	}
	return out
}

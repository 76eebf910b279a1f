// Package theme implements Theme: a named style map with hierarchical
// scope matching.
//
// Styling resolves through github.com/alecthomas/chroma/v2's style/color
// machinery; this package reuses chroma.Colour for fg/bg/underline so a
// Theme can be built directly from any registered Chroma style (dark,
// monokai, etc.) as a starting palette, then overridden per tree-sitter
// capture name.
package theme

import (
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
)

// Modifier is a bitfield of text-decoration flags.
type Modifier uint8

const (
	ModBold Modifier = 1 << iota
	ModItalic
	ModUnderline
	ModStrikethrough
)

// Style is one theme entry's resolved appearance.
type Style struct {
	Foreground     chroma.Colour
	Background     chroma.Colour
	UnderlineColor chroma.Colour
	Modifiers      Modifier
}

// Theme is a named style map keyed by dotted scope (e.g. "function.builtin")
// with longest-prefix-wins resolution.
type Theme struct {
	Name    string
	entries map[string]Style
	// sortedKeys is entries' keys sorted by descending length, rebuilt
	// lazily so repeated Set calls don't pay an O(n log n) cost each time.
	sortedKeys []string
	dirty      bool
}

// New builds an empty theme named name.
func New(name string) *Theme {
	return &Theme{Name: name, entries: make(map[string]Style)}
}

// FromChromaStyle seeds a Theme from a compiled Chroma style, mapping each
// Chroma token type's dotted category name to its resolved Style — giving
// every tree-sitter capture that happens to share a name with a Pygments
// token class (e.g. "keyword", "string", "comment") a sensible default
// before any editor-specific overrides are applied.
func FromChromaStyle(name string, sty *chroma.Style) *Theme {
	t := New(name)
	if sty == nil {
		return t
	}
	for tt, scope := range chromaTokenScopes {
		t.Set(scope, fromChromaEntry(sty.Get(tt)))
	}
	return t
}

// chromaTokenScopes maps the broad, stable Chroma token categories this
// package cares about to the dotted scope name a theme keys them by.
var chromaTokenScopes = map[chroma.TokenType]string{
	chroma.Keyword:       "keyword",
	chroma.NameFunction:  "function",
	chroma.NameBuiltin:   "function.builtin",
	chroma.NameClass:     "type",
	chroma.NameVariable:  "variable",
	chroma.LiteralString: "string",
	chroma.LiteralNumber: "constant.numeric",
	chroma.Comment:       "comment",
	chroma.Operator:      "operator",
	chroma.Punctuation:   "punctuation",
}

func fromChromaEntry(e chroma.StyleEntry) Style {
	var mods Modifier
	if e.Bold == chroma.Yes {
		mods |= ModBold
	}
	if e.Italic == chroma.Yes {
		mods |= ModItalic
	}
	if e.Underline == chroma.Yes {
		mods |= ModUnderline
	}
	return Style{Foreground: e.Colour, Background: e.Background, Modifiers: mods}
}

// Set installs or overrides the style for scope.
func (t *Theme) Set(scope string, style Style) {
	t.entries[scope] = style
	t.dirty = true
}

func (t *Theme) rebuildIndex() {
	if !t.dirty {
		return
	}
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	t.sortedKeys = keys
	t.dirty = false
}

// Resolve returns the style for the longest registered scope prefix of
// capture (e.g. "function.builtin" matches "function.builtin" over
// "function" over unset), and whether any prefix matched.
func (t *Theme) Resolve(capture string) (Style, bool) {
	key, ok := t.MatchScope(capture)
	if !ok {
		return Style{}, false
	}
	return t.entries[key], true
}

// MatchScope returns the longest registered scope key that is a dotted-
// scope ancestor of (or equal to) capture, and whether one was found. A
// highlight adapter uses this to turn a tree-sitter capture name into the
// scope identifier it should tag a span with, without needing the
// resolved Style itself.
func (t *Theme) MatchScope(capture string) (string, bool) {
	t.rebuildIndex()
	for _, key := range t.sortedKeys {
		if key == capture || isScopePrefix(key, capture) {
			return key, true
		}
	}
	return "", false
}

// isScopePrefix reports whether prefix is a dotted-scope ancestor of
// capture, e.g. "function" is a prefix of "function.builtin" but not of
// "functional".
func isScopePrefix(prefix, capture string) bool {
	if !strings.HasPrefix(capture, prefix) {
		return false
	}
	rest := capture[len(prefix):]
	return rest == "" || rest[0] == '.'
}

// Package queries embeds the bundled tree-sitter highlight queries, the
// same //go:embed-a-.scm-per-language shape used by Ardelean-Calin/moe's
// buffer package, adapted into a loader.QuerySource so Loader.Default
// languages have something for SyntaxHighlightAdapter's query cursor to
// run.
package queries

import _ "embed"

//go:embed go/highlights.scm
var goHighlights string

//go:embed javascript/highlights.scm
var javascriptHighlights string

//go:embed python/highlights.scm
var pythonHighlights string

// Bundled is the loader.QuerySource backed by this package's embedded
// .scm files. It only ever serves highlight queries — indent, text-object,
// tag, and rainbow queries are out of scope for this pass, so those
// lookups report absent rather than guessing at a query shape nothing
// exercises yet.
type Bundled struct{}

func (Bundled) HighlightsQuery(languageID string) (string, bool) {
	switch languageID {
	case "go":
		return goHighlights, true
	case "javascript":
		return javascriptHighlights, true
	case "python":
		return pythonHighlights, true
	default:
		return "", false
	}
}

func (Bundled) IndentQuery(string) (string, bool)     { return "", false }
func (Bundled) TextObjectQuery(string) (string, bool) { return "", false }
func (Bundled) TagsQuery(string) (string, bool)       { return "", false }
func (Bundled) RainbowQuery(string) (string, bool)    { return "", false }

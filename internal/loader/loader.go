// Package loader implements the Language registry: a data-driven index
// from filenames/shebangs/content to tree-sitter grammars (an extension →
// *sitter.Language table), with lazily compiled per-language queries. The
// glob layer is a small hand-rolled prefix/suffix/"**" matcher rather than a
// third-party globset dependency, since the common "*.config.js"-style
// file-type globs don't need one.
package loader

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// LanguageConfig carries a language's grammar plus the editing-service
// flags (auto-format, soft-wrap, preferred text width, comment token) a
// caller needs alongside grammar lookup.
type LanguageConfig struct {
	ID         string
	ScopeName  string // e.g. "source.go"
	Extensions []string
	Globs      []string
	Shebangs   []string
	// InjectionRegex matches content that should be parsed as this
	// language when embedded inside another (e.g. fenced code blocks).
	InjectionRegex *regexp.Regexp

	AutoFormat    bool
	SoftWrap      bool
	TextWidth     int
	CommentToken  string

	language *sitter.Language

	queriesOnce sync.Once
	queries     compiledQueries
}

// compiledQueries holds the lazily-built query slots: highlights, indent,
// text-object, tag, and rainbow-bracket queries. Injection and locals
// queries are not compiled. Each may remain nil if no query source was
// registered for the language.
type compiledQueries struct {
	Highlights *sitter.Query
	Indent     *sitter.Query
	TextObject *sitter.Query
	Tags       *sitter.Query
	Rainbow    *sitter.Query
}

// QuerySource supplies raw query text for a language; callers provide an
// implementation backed by embedded files, a directory on disk, or a
// network fetch — kept external so Loader stays pure and never hardcodes
// a query source.
type QuerySource interface {
	HighlightsQuery(languageID string) (string, bool)
	IndentQuery(languageID string) (string, bool)
	TextObjectQuery(languageID string) (string, bool)
	TagsQuery(languageID string) (string, bool)
	RainbowQuery(languageID string) (string, bool)
}

// NullQuerySource supplies no queries for any language — the degrade-
// gracefully default.
type NullQuerySource struct{}

func (NullQuerySource) HighlightsQuery(string) (string, bool) { return "", false }
func (NullQuerySource) IndentQuery(string) (string, bool)     { return "", false }
func (NullQuerySource) TextObjectQuery(string) (string, bool) { return "", false }
func (NullQuerySource) TagsQuery(string) (string, bool)       { return "", false }
func (NullQuerySource) RainbowQuery(string) (string, bool)    { return "", false }

// Loader is the language registry: extension/shebang/glob/injection-regex
// indices built once at construction.
type Loader struct {
	byExt      map[string]*LanguageConfig
	byID       map[string]*LanguageConfig
	byGlob     []globEntry
	byShebang  map[string]*LanguageConfig
	injections []injectionEntry
	resources  QuerySource

	mu sync.RWMutex
}

type globEntry struct {
	pattern string
	cfg     *LanguageConfig
}

type injectionEntry struct {
	re  *regexp.Regexp
	cfg *LanguageConfig
}

// shebangRe extracts the interpreter token from a "#!" line.
var shebangRe = regexp.MustCompile(`^#!\s*(?:/usr/bin/env\s+)?(\S+)`)

// New builds a Loader from a language config list and a query source.
func New(configs []*LanguageConfig, resources QuerySource) *Loader {
	if resources == nil {
		resources = NullQuerySource{}
	}
	l := &Loader{
		byExt:     make(map[string]*LanguageConfig),
		byID:      make(map[string]*LanguageConfig),
		byShebang: make(map[string]*LanguageConfig),
		resources: resources,
	}
	for _, cfg := range configs {
		l.byID[cfg.ID] = cfg
		for _, ext := range cfg.Extensions {
			l.byExt[strings.ToLower(ext)] = cfg
		}
		for _, sb := range cfg.Shebangs {
			l.byShebang[sb] = cfg
		}
		for _, g := range cfg.Globs {
			l.byGlob = append(l.byGlob, globEntry{pattern: g, cfg: cfg})
		}
		if cfg.InjectionRegex != nil {
			l.injections = append(l.injections, injectionEntry{re: cfg.InjectionRegex, cfg: cfg})
		}
	}
	// Longest-glob-wins resolution requires globs sorted longest-first.
	sort.SliceStable(l.byGlob, func(i, j int) bool {
		return len(l.byGlob[i].pattern) > len(l.byGlob[j].pattern)
	})
	return l
}

// Default returns a Loader pre-registered with Go, JavaScript, and Python
// grammars from github.com/smacker/go-tree-sitter's bundled language
// subpackages.
func Default(resources QuerySource) *Loader {
	return New([]*LanguageConfig{
		{
			ID:         "go",
			ScopeName:  "source.go",
			Extensions: []string{".go"},
			language:   golang.GetLanguage(),
		},
		{
			ID:         "javascript",
			ScopeName:  "source.js",
			Extensions: []string{".js", ".mjs", ".cjs"},
			Shebangs:   []string{"node"},
			language:   javascript.GetLanguage(),
		},
		{
			ID:         "python",
			ScopeName:  "source.python",
			Extensions: []string{".py"},
			Shebangs:   []string{"python", "python3"},
			language:   python.GetLanguage(),
		},
	}, resources)
}

// LanguageForPath resolves a language for a file path by glob, then
// extension.
func (l *Loader) LanguageForPath(path string) *LanguageConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()

	lower := strings.ToLower(path)
	for _, g := range l.byGlob {
		if matchGlob(g.pattern, lower) {
			return g.cfg
		}
	}
	ext := extOf(lower)
	if cfg, ok := l.byExt[ext]; ok {
		return cfg
	}
	return nil
}

// LanguageForContent resolves a language for a document that has no path
// match, by shebang then injection regex.
func (l *Loader) LanguageForContent(content string) *LanguageConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if strings.HasPrefix(content, "#!") {
		firstLine := content
		if idx := strings.IndexByte(content, '\n'); idx >= 0 {
			firstLine = content[:idx]
		}
		if m := shebangRe.FindStringSubmatch(firstLine); m != nil {
			token := lastPathSegment(m[1])
			if cfg, ok := l.byShebang[token]; ok {
				return cfg
			}
		}
	}

	var best *LanguageConfig
	bestLen := -1
	for _, inj := range l.injections {
		if loc := inj.re.FindStringIndex(content); loc != nil {
			length := loc[1] - loc[0]
			if length > bestLen {
				bestLen = length
				best = inj.cfg
			}
		}
	}
	return best
}

// Resolve runs the full resolution order: glob, extension, shebang, then
// content-regex fallback.
func (l *Loader) Resolve(path, content string) *LanguageConfig {
	if cfg := l.LanguageForPath(path); cfg != nil {
		return cfg
	}
	return l.LanguageForContent(content)
}

// ConfigByID looks up a registered LanguageConfig by its ID, the same
// identifier a Syntax layer's LanguageID carries — used by a highlight
// adapter to find the compiled query set for a given layer.
func (l *Loader) ConfigByID(id string) *LanguageConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byID[id]
}

// Resources returns the QuerySource this Loader was constructed with.
func (l *Loader) Resources() QuerySource {
	return l.resources
}

// Language returns the compiled tree-sitter grammar for cfg.
func (cfg *LanguageConfig) Language() *sitter.Language { return cfg.language }

// Queries lazily compiles and memoizes cfg's query set behind a
// sync.Once, so repeated calls pay the parse cost once per language.
// A query whose source text is absent remains nil in the returned struct.
func (cfg *LanguageConfig) Queries(resources QuerySource) compiledQueries {
	cfg.queriesOnce.Do(func() {
		cfg.queries = compiledQueries{
			Highlights: compileIfPresent(cfg.language, resources.HighlightsQuery, cfg.ID),
			Indent:     compileIfPresent(cfg.language, resources.IndentQuery, cfg.ID),
			TextObject: compileIfPresent(cfg.language, resources.TextObjectQuery, cfg.ID),
			Tags:       compileIfPresent(cfg.language, resources.TagsQuery, cfg.ID),
			Rainbow:    compileIfPresent(cfg.language, resources.RainbowQuery, cfg.ID),
		}
	})
	return cfg.queries
}

func compileIfPresent(lang *sitter.Language, lookup func(string) (string, bool), id string) *sitter.Query {
	src, ok := lookup(id)
	if !ok || src == "" {
		return nil
	}
	q, err := sitter.NewQuery([]byte(src), lang)
	if err != nil {
		return nil
	}
	return q
}

func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return path[idx:]
}

func lastPathSegment(p string) string {
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}

// matchGlob implements a small hand-rolled subset of glob syntax: '*'
// within a segment, and a leading "**/" meaning "any directory depth".
// This keeps Loader dependency-free for the common "*.config.js"-style
// file-type globs without reaching for a third-party globset package.
func matchGlob(pattern, path string) bool {
	pattern = strings.TrimPrefix(pattern, "**/")
	base := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		base = path[idx+1:]
	}
	ok, err := regexp.MatchString(globToRegex(pattern), base)
	return err == nil && ok
}

func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '.':
			b.WriteString(`\.`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('$')
	return b.String()
}

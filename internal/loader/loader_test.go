package loader

import (
	"regexp"
	"testing"
)

func TestLanguageForPathMatchesExtension(t *testing.T) {
	goCfg := &LanguageConfig{ID: "go", Extensions: []string{".go"}}
	l := New([]*LanguageConfig{goCfg}, nil)

	got := l.LanguageForPath("/tmp/main.go")
	if got == nil || got.ID != "go" {
		t.Fatalf("LanguageForPath = %+v, want go", got)
	}
}

func TestLanguageForPathExtensionMatchIsCaseInsensitive(t *testing.T) {
	goCfg := &LanguageConfig{ID: "go", Extensions: []string{".go"}}
	l := New([]*LanguageConfig{goCfg}, nil)

	got := l.LanguageForPath("/tmp/MAIN.GO")
	if got == nil || got.ID != "go" {
		t.Fatalf("LanguageForPath = %+v, want go", got)
	}
}

func TestLanguageForPathLongestGlobWins(t *testing.T) {
	generic := &LanguageConfig{ID: "js", Globs: []string{"*.js"}}
	specific := &LanguageConfig{ID: "special-config", Globs: []string{"*.config.js"}}
	l := New([]*LanguageConfig{generic, specific}, nil)

	got := l.LanguageForPath("/tmp/webpack.config.js")
	if got == nil || got.ID != "special-config" {
		t.Fatalf("LanguageForPath = %+v, want special-config (longest glob)", got)
	}
}

func TestLanguageForPathReturnsNilWhenUnmatched(t *testing.T) {
	l := New(nil, nil)
	if got := l.LanguageForPath("/tmp/unknown.xyz"); got != nil {
		t.Fatalf("LanguageForPath = %+v, want nil", got)
	}
}

func TestLanguageForContentMatchesShebang(t *testing.T) {
	py := &LanguageConfig{ID: "python", Shebangs: []string{"python3"}}
	l := New([]*LanguageConfig{py}, nil)

	got := l.LanguageForContent("#!/usr/bin/env python3\nprint('hi')\n")
	if got == nil || got.ID != "python" {
		t.Fatalf("LanguageForContent = %+v, want python", got)
	}
}

func TestLanguageForContentFallsBackToInjectionRegex(t *testing.T) {
	html := &LanguageConfig{ID: "html", InjectionRegex: regexp.MustCompile(`<html`)}
	l := New([]*LanguageConfig{html}, nil)

	got := l.LanguageForContent("<html><body></body></html>")
	if got == nil || got.ID != "html" {
		t.Fatalf("LanguageForContent = %+v, want html", got)
	}
}

func TestResolvePrefersPathOverContent(t *testing.T) {
	goCfg := &LanguageConfig{ID: "go", Extensions: []string{".go"}}
	py := &LanguageConfig{ID: "python", Shebangs: []string{"python3"}}
	l := New([]*LanguageConfig{goCfg, py}, nil)

	got := l.Resolve("/tmp/main.go", "#!/usr/bin/env python3\n")
	if got == nil || got.ID != "go" {
		t.Fatalf("Resolve = %+v, want go (path wins over content)", got)
	}
}

func TestQueriesReturnsNilForUnregisteredSource(t *testing.T) {
	cfg := &LanguageConfig{ID: "go"}
	queries := cfg.Queries(NullQuerySource{})
	if queries.Highlights != nil {
		t.Fatal("expected a nil Highlights query from NullQuerySource")
	}
}

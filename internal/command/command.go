// Package command implements CommandRegistry, Signature, Flag, and the
// argument tokenizer/parser.
//
// Command dispatch uses a name/alias lookup backed by a map and a variadic
// handler signature. The tokenizer is hand-rolled rather than built on a
// POSIX shell word-splitter: its quoting rules (an unterminated-quote
// completion marker, backslash escapes only inside double quotes) diverge
// from standard shell word-splitting.
package command

import (
	"fmt"
	"sort"
	"strings"
)

// Flag describes one named option a Command accepts.
type Flag struct {
	Name        string
	Alias       byte // 0 if none
	Doc         string
	Completions []string // non-nil means this flag consumes an argument
}

func (f Flag) takesArgument() bool { return f.Completions != nil }

// Signature describes a Command's positional-argument arity and flags.
type Signature struct {
	MinPositionals int
	MaxPositionals int // -1 means unbounded
	Flags          []Flag
}

func (s Signature) flagByName(name string) (Flag, bool) {
	for _, f := range s.Flags {
		if f.Name == name {
			return f, true
		}
	}
	return Flag{}, false
}

func (s Signature) flagByAlias(alias byte) (Flag, bool) {
	for _, f := range s.Flags {
		if f.Alias == alias {
			return f, true
		}
	}
	return Flag{}, false
}

// Event distinguishes why a Handler is being invoked during the lifetime of
// a single command-line prompt: Update fires on every keystroke while a prompt-driven
// command is still being typed (for live preview), Validate fires once on
// submission (Enter), and Abort fires if the prompt is cancelled (Escape)
// so a command that started previewing can undo it. Commands invoked
// directly (not through an interactive prompt, e.g. this package's own
// Dispatch) always fire Validate.
type Event int

const (
	EventValidate Event = iota
	EventUpdate
	EventAbort
)

func (e Event) String() string {
	switch e {
	case EventValidate:
		return "Validate"
	case EventUpdate:
		return "Update"
	case EventAbort:
		return "Abort"
	default:
		return "Unknown"
	}
}

// Handler executes a command given its parsed invocation and the prompt
// event that triggered this call. Most commands ignore event and only act
// when it is EventValidate; a command that previews its effect while
// typing (e.g. a theme switcher) inspects EventUpdate/EventAbort too.
type Handler func(inv Invocation, event Event) error

// Completer supplies completion candidates for a positional index (-1 for
// the variadic fallback) or a flag argument.
type Completer interface {
	CompletePositional(index int, partial string) []string
	CompleteFlagArgument(flag Flag, partial string) []string
}

// Command is a registered, named, documented, invokable operation.
type Command struct {
	Name      string
	Aliases   []string
	Doc       string
	Signature Signature
	Handler   Handler
	Completer Completer
}

// Registry indexes commands by name and alias.
type Registry struct {
	byName map[string]*Command
	order  []string // registration order, for stable listing
}

// NewRegistry builds an empty command registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Command)}
}

// RegistryError reports a registration or lookup failure.
type RegistryError struct{ Kind, Msg string }

func (e *RegistryError) Error() string { return fmt.Sprintf("command: %s: %s", e.Kind, e.Msg) }

// Register indexes cmd by its name and every alias.
func (r *Registry) Register(cmd *Command) error {
	if _, exists := r.byName[cmd.Name]; exists {
		return &RegistryError{Kind: "Duplicate", Msg: "command already registered: " + cmd.Name}
	}
	r.byName[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
	for _, alias := range cmd.Aliases {
		if _, exists := r.byName[alias]; exists {
			return &RegistryError{Kind: "Duplicate", Msg: "alias already registered: " + alias}
		}
		r.byName[alias] = cmd
	}
	return nil
}

// Lookup resolves name or alias to a registered Command.
func (r *Registry) Lookup(nameOrAlias string) (*Command, bool) {
	cmd, ok := r.byName[nameOrAlias]
	return cmd, ok
}

// Names returns registered command names sorted alphabetically (not
// including aliases).
func (r *Registry) Names() []string {
	out := append([]string(nil), r.order...)
	sort.Strings(out)
	return out
}

// ---------------------------------------------------------------------------
// Tokenizer
// ---------------------------------------------------------------------------

// Token is a single parsed word from an input line.
type Token struct {
	Text        string
	Start, End  int // byte offsets into the original line
	Terminated  bool
}

// Tokenize splits line into whitespace-separated tokens, honoring single-
// and double-quoting with backslash escapes inside double quotes only. The
// final token's Terminated field is false if line ends mid-quote, so
// completion can tell a dangling quote apart from a closed one.
func Tokenize(line string) []Token {
	var toks []Token
	i := 0
	n := len(line)

	skipSpace := func() {
		for i < n && isSpace(line[i]) {
			i++
		}
	}

	for {
		skipSpace()
		if i >= n {
			break
		}
		start := i
		var b strings.Builder
		terminated := true

		for i < n && !isSpace(line[i]) {
			switch line[i] {
			case '"':
				i++
				closed := false
				for i < n {
					if line[i] == '\\' && i+1 < n {
						b.WriteByte(line[i+1])
						i += 2
						continue
					}
					if line[i] == '"' {
						closed = true
						i++
						break
					}
					b.WriteByte(line[i])
					i++
				}
				if !closed {
					terminated = false
				}
			case '\'':
				i++
				closed := false
				for i < n {
					if line[i] == '\'' {
						closed = true
						i++
						break
					}
					b.WriteByte(line[i])
					i++
				}
				if !closed {
					terminated = false
				}
			default:
				b.WriteByte(line[i])
				i++
			}
		}
		toks = append(toks, Token{Text: b.String(), Start: start, End: i, Terminated: terminated})
	}
	return toks
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Invocation is the result of parsing a command line against a Signature.
type Invocation struct {
	Positionals []string
	Flags       map[string]string // present-but-argless flags map to ""
	Raw         string
}

// Expander performs variable expansion on a single token. A nil Expander
// passed to Parse behaves as IdentityExpander (no expansion).
type Expander func(token string) (string, error)

// IdentityExpander returns its input unchanged.
func IdentityExpander(token string) (string, error) { return token, nil }

// ParseError reports a parse/validation failure.
type ParseError struct{ Kind, Msg string }

func (e *ParseError) Error() string { return fmt.Sprintf("command parse: %s: %s", e.Kind, e.Msg) }

// Parse tokenizes line, resolves flags against sig, expands each remaining
// token with expand, and — only when validating is true — checks the
// positional count against sig.MinPositionals/MaxPositionals.
func Parse(line string, sig Signature, validating bool, expand Expander) (Invocation, error) {
	if expand == nil {
		expand = IdentityExpander
	}
	toks := Tokenize(line)

	inv := Invocation{Flags: make(map[string]string), Raw: line}

	for i := 0; i < len(toks); i++ {
		tok := toks[i].Text
		switch {
		case strings.HasPrefix(tok, "--") && len(tok) > 2:
			name := tok[2:]
			flag, ok := sig.flagByName(name)
			if !ok {
				if validating {
					return Invocation{}, &ParseError{Kind: "UnknownFlag", Msg: "--" + name}
				}
				continue
			}
			if flag.takesArgument() {
				if i+1 >= len(toks) {
					if validating {
						return Invocation{}, &ParseError{Kind: "MissingArgument", Msg: "--" + name}
					}
					inv.Flags[flag.Name] = ""
					continue
				}
				i++
				val, err := expand(toks[i].Text)
				if err != nil {
					return Invocation{}, err
				}
				inv.Flags[flag.Name] = val
			} else {
				inv.Flags[flag.Name] = ""
			}

		case strings.HasPrefix(tok, "-") && len(tok) == 2:
			alias := tok[1]
			flag, ok := sig.flagByAlias(alias)
			if !ok {
				if validating {
					return Invocation{}, &ParseError{Kind: "UnknownFlag", Msg: tok}
				}
				continue
			}
			if flag.takesArgument() {
				if i+1 >= len(toks) {
					if validating {
						return Invocation{}, &ParseError{Kind: "MissingArgument", Msg: tok}
					}
					inv.Flags[flag.Name] = ""
					continue
				}
				i++
				val, err := expand(toks[i].Text)
				if err != nil {
					return Invocation{}, err
				}
				inv.Flags[flag.Name] = val
			} else {
				inv.Flags[flag.Name] = ""
			}

		default:
			val, err := expand(tok)
			if err != nil {
				return Invocation{}, err
			}
			inv.Positionals = append(inv.Positionals, val)
		}
	}

	if validating {
		n := len(inv.Positionals)
		if n < sig.MinPositionals {
			return Invocation{}, &ParseError{Kind: "TooFewArguments", Msg: fmt.Sprintf("want at least %d, got %d", sig.MinPositionals, n)}
		}
		if sig.MaxPositionals >= 0 && n > sig.MaxPositionals {
			return Invocation{}, &ParseError{Kind: "TooManyArguments", Msg: fmt.Sprintf("want at most %d, got %d", sig.MaxPositionals, n)}
		}
	}

	return inv, nil
}

// Dispatch looks up name in r and runs its handler against the parsed line
// with EventValidate, the direct-invocation default.
func (r *Registry) Dispatch(name, rest string, expand Expander) error {
	return r.DispatchEvent(name, rest, expand, EventValidate)
}

// DispatchEvent looks up name in r and runs its handler against rest with
// the given Event. Only EventValidate validates positional-count and
// unknown-flag errors; EventUpdate and EventAbort parse leniently so a still-incomplete
// prompt line doesn't produce user-visible errors on every keystroke.
func (r *Registry) DispatchEvent(name, rest string, expand Expander, event Event) error {
	cmd, ok := r.Lookup(name)
	if !ok {
		return &RegistryError{Kind: "NotFound", Msg: name}
	}
	inv, err := Parse(rest, cmd.Signature, event == EventValidate, expand)
	if err != nil {
		return err
	}
	return cmd.Handler(inv, event)
}

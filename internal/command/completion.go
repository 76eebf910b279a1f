package command

import "strings"

// Completion is one candidate replacement for a range of the input line.
type Completion struct {
	Start, End int // byte range in the full input line to replace
	Text       string
	Doc        string
}

// completionState classifies what the cursor is currently positioned over,
// driving which completer gets dispatched.
type completionState int

const (
	stateCommandWord completionState = iota
	statePositional
	stateFlagPrefix
	stateFlagArgument
)

// Complete returns completion candidates for input with the cursor at
// cursorPos (byte offset): classify the cursor position, then dispatch to
// the command-word, positional, or flag completer as appropriate.
func (r *Registry) Complete(input string, cursorPos int) []Completion {
	if cursorPos > len(input) {
		cursorPos = len(input)
	}
	prefix := input[:cursorPos]

	if !strings.ContainsAny(prefix, " \t") {
		return r.completeCommandWord(prefix)
	}

	sp := strings.IndexAny(input, " \t")
	if sp < 0 {
		return r.completeCommandWord(prefix)
	}
	name := input[:sp]
	cmd, ok := r.Lookup(name)
	if !ok {
		return nil
	}
	rest := input[sp:]
	restCursor := cursorPos - sp

	state, arg, flag, tokRange := classify(rest, restCursor, cmd.Signature)
	if cmd.Completer == nil {
		return nil
	}

	var candidates []string
	switch state {
	case statePositional:
		candidates = cmd.Completer.CompletePositional(arg, partialAt(rest, tokRange))
	case stateFlagArgument:
		candidates = cmd.Completer.CompleteFlagArgument(flag, partialAt(rest, tokRange))
	default:
		return nil
	}

	out := make([]Completion, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Completion{
			Start: sp + tokRange[0],
			End:   sp + tokRange[1],
			Text:  c,
		})
	}
	return out
}

func (r *Registry) completeCommandWord(prefix string) []Completion {
	lowerPrefix := strings.ToLower(prefix)
	var out []Completion
	seen := make(map[string]bool)
	for _, name := range r.order {
		if seen[name] {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			seen[name] = true
			cmd := r.byName[name]
			out = append(out, Completion{Start: 0, End: len(prefix), Text: name, Doc: cmd.Doc})
		}
	}
	return out
}

// classify walks rest's tokens up to restCursor and determines the
// completion state: which positional index is active, or which flag's
// argument slot the cursor sits in.
func classify(rest string, restCursor int, sig Signature) (state completionState, positionalIdx int, flag Flag, tokRange [2]int) {
	toks := Tokenize(rest)
	positionalIdx = 0

	var activeTok Token
	foundActive := false
	pendingFlagArg := false
	var pendingFlag Flag

	for _, tok := range toks {
		if restCursor >= tok.Start && restCursor <= tok.End {
			activeTok = tok
			foundActive = true
			break
		}
		if pendingFlagArg {
			pendingFlagArg = false
			continue
		}
		switch {
		case strings.HasPrefix(tok.Text, "--") && len(tok.Text) > 2:
			if f, ok := sig.flagByName(tok.Text[2:]); ok && f.takesArgument() {
				pendingFlagArg = true
				pendingFlag = f
			}
		case strings.HasPrefix(tok.Text, "-") && len(tok.Text) == 2:
			if f, ok := sig.flagByAlias(tok.Text[1]); ok && f.takesArgument() {
				pendingFlagArg = true
				pendingFlag = f
			}
		default:
			positionalIdx++
		}
	}

	if !foundActive {
		// Cursor sits in trailing whitespace past the last token.
		if pendingFlagArg {
			return stateFlagArgument, 0, pendingFlag, [2]int{len(rest), len(rest)}
		}
		return statePositional, positionalIdx, Flag{}, [2]int{len(rest), len(rest)}
	}

	if pendingFlagArg {
		return stateFlagArgument, 0, pendingFlag, [2]int{activeTok.Start, activeTok.End}
	}
	if strings.HasPrefix(activeTok.Text, "-") {
		return stateFlagPrefix, 0, Flag{}, [2]int{activeTok.Start, activeTok.End}
	}
	return statePositional, positionalIdx, Flag{}, [2]int{activeTok.Start, activeTok.End}
}

func partialAt(s string, r [2]int) string {
	if r[0] < 0 || r[1] > len(s) || r[0] > r[1] {
		return ""
	}
	return s[r[0]:r[1]]
}

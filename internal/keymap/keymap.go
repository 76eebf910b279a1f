// Package keymap implements KeyBinding resolution: a per-mode prefix trie,
// the pending-key stack, and numeric-count accumulation.
//
// Bindings are registered into a data-driven trie rather than hardcoded in
// a mode-scoped switch, reusing charm.land/bubbletea/v2's key.Msg /
// tea.KeyPressMsg shape for the Key/Modifiers types defined in
// internal/uievent.
package keymap

import (
	"fmt"

	"github.com/xonecas/editorcore/internal/uievent"
)

// Mode names a keymap scope (Normal, Insert, Select, ...); left as a plain
// string so hosts can define their own mode set.
type Mode string

// NodeKind distinguishes a trie node's payload.
type NodeKind int

const (
	NodeCommand NodeKind = iota
	NodePrefix
	NodeMacro
)

// node is one entry in a mode's trie.
type node struct {
	kind     NodeKind
	command  string          // valid when kind == NodeCommand
	label    string          // valid when kind == NodePrefix
	macro    []uievent.Key   // valid when kind == NodeMacro
	children map[uievent.Key]*node
}

func newNode() *node { return &node{children: make(map[uievent.Key]*node)} }

// Keymap holds one trie per mode plus the live pending-key/count state for
// a single input stream.
type Keymap struct {
	roots map[Mode]*node

	pending []uievent.Key
	count   int
	hasCount bool
}

// New builds an empty keymap with no bound modes.
func New() *Keymap {
	return &Keymap{roots: make(map[Mode]*node)}
}

func (k *Keymap) rootFor(mode Mode) *node {
	r, ok := k.roots[mode]
	if !ok {
		r = newNode()
		k.roots[mode] = r
	}
	return r
}

// BindCommand registers keys (in mode) as a leaf invoking command.
func (k *Keymap) BindCommand(mode Mode, keys []uievent.Key, command string) error {
	return k.bind(mode, keys, func(n *node) {
		n.kind = NodeCommand
		n.command = command
	})
}

// BindMacro registers keys (in mode) as a leaf that replays macro.
func (k *Keymap) BindMacro(mode Mode, keys []uievent.Key, macro []uievent.Key) error {
	return k.bind(mode, keys, func(n *node) {
		n.kind = NodeMacro
		n.macro = append([]uievent.Key(nil), macro...)
	})
}

// SetPrefixLabel attaches a human-readable label to an intermediate node,
// used only for hint rendering.
func (k *Keymap) SetPrefixLabel(mode Mode, keys []uievent.Key, label string) error {
	return k.bind(mode, keys, func(n *node) {
		if n.kind != NodeCommand && n.kind != NodeMacro {
			n.kind = NodePrefix
		}
		n.label = label
	})
}

type bindError struct{ msg string }

func (e *bindError) Error() string { return e.msg }

func (k *Keymap) bind(mode Mode, keys []uievent.Key, set func(*node)) error {
	if len(keys) == 0 {
		return &bindError{"keymap: empty key sequence"}
	}
	cur := k.rootFor(mode)
	for i, key := range keys {
		next, ok := cur.children[key]
		if !ok {
			next = newNode()
			cur.children[key] = next
		}
		if i < len(keys)-1 && ok && next.kind == NodeCommand {
			return &bindError{fmt.Sprintf("keymap: %v is already bound as a leaf, cannot extend as a prefix", keys[:i+1])}
		}
		if i < len(keys)-1 {
			next.kind = NodePrefix
		}
		cur = next
	}
	set(cur)
	return nil
}

// Resolution is the outcome of feeding one key into the trie.
type Resolution struct {
	Kind    ResolutionKind
	Command string
	Macro   []uievent.Key
	Count   int // accumulated numeric count, 0 if none was pending
}

type ResolutionKind int

const (
	ResolutionNone ResolutionKind = iota
	ResolutionPending
	ResolutionCommand
	ResolutionMacro
	ResolutionMiss
)

// Feed appends key to the pending stack, looks it up in mode's trie, and
// returns the resolution. A digit key in Normal mode
// that does not match any trie entry accumulates into the numeric count
// instead of being discarded.
func (k *Keymap) Feed(mode Mode, key uievent.Key) Resolution {
	k.pending = append(k.pending, key)

	root, ok := k.roots[mode]
	if !ok {
		k.clearPending()
		return k.tryAccumulateDigit(mode, key)
	}

	cur := root
	for _, pk := range k.pending {
		next, ok := cur.children[pk]
		if !ok {
			k.clearPending()
			return k.tryAccumulateDigit(mode, key)
		}
		cur = next
	}

	switch cur.kind {
	case NodeCommand:
		count := k.takeCount()
		k.clearPending()
		return Resolution{Kind: ResolutionCommand, Command: cur.command, Count: count}
	case NodeMacro:
		count := k.takeCount()
		k.clearPending()
		return Resolution{Kind: ResolutionMacro, Macro: cur.macro, Count: count}
	default:
		return Resolution{Kind: ResolutionPending}
	}
}

// tryAccumulateDigit handles the numeric-count carve-out: a lone digit key
// (mode == Normal, by convention "Normal") that misses the trie accumulates
// into the pending count rather than being reported as a plain miss.
func (k *Keymap) tryAccumulateDigit(mode Mode, key uievent.Key) Resolution {
	if mode == "Normal" && key.Kind == uievent.KeyRune && isDigit(key.Rune) && key.Modifiers == 0 {
		d := int(key.Rune - '0')
		if k.hasCount || d != 0 {
			k.count = k.count*10 + d
			k.hasCount = true
		}
		return Resolution{Kind: ResolutionPending, Count: k.count}
	}
	return Resolution{Kind: ResolutionMiss}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (k *Keymap) clearPending() { k.pending = k.pending[:0] }

func (k *Keymap) takeCount() int {
	if !k.hasCount {
		return 0
	}
	c := k.count
	k.count = 0
	k.hasCount = false
	return c
}

// Pending returns the current pending-key stack, read-only.
func (k *Keymap) Pending() []uievent.Key { return append([]uievent.Key(nil), k.pending...) }

// HintOption is one candidate continuation shown in a pending-key hint list.
type HintOption struct {
	Key   uievent.Key
	Label string
	Kind  NodeKind
}

// Hints is the bottom-line hint snapshot: the pending key sequence, the
// scope it was resolved in, and the set of keys that could extend it.
type Hints struct {
	Pending []uievent.Key
	Scope   Mode
	Options []HintOption
}

// Snapshot returns the current hint state for mode, or ok=false if pending
// is empty (nothing to show).
func (k *Keymap) Snapshot(mode Mode) (Hints, bool) {
	if len(k.pending) == 0 {
		return Hints{}, false
	}
	root, ok := k.roots[mode]
	if !ok {
		return Hints{}, false
	}
	cur := root
	for _, pk := range k.pending {
		next, ok := cur.children[pk]
		if !ok {
			return Hints{}, false
		}
		cur = next
	}
	var opts []HintOption
	for key, child := range cur.children {
		label := child.label
		if label == "" && child.kind == NodeCommand {
			label = child.command
		}
		opts = append(opts, HintOption{Key: key, Label: label, Kind: child.kind})
	}
	return Hints{Pending: append([]uievent.Key(nil), k.pending...), Scope: mode, Options: opts}, true
}

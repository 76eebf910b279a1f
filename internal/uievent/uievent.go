// Package uievent defines the editor core's input-event vocabulary: Key,
// its modifier bitfield, and the UiEvent a host translates its own input
// system into before handing it to keymap.Keymap.
//
// Modeled on charm.land/bubbletea/v2's tea.KeyPressMsg shape (a key kind
// plus a rune plus a modifier set), generalized into a host-independent
// struct so this package does not import bubbletea itself — window and
// input backends are external collaborators, not something this library
// owns.
package uievent

// Modifiers is a bitfield of held modifier keys.
type Modifiers uint8

const (
	ModNone  Modifiers = 0
	ModCtrl  Modifiers = 1 << 0
	ModAlt   Modifiers = 1 << 1
	ModShift Modifiers = 1 << 2
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

// KeyKind distinguishes the class of key pressed.
type KeyKind int

const (
	KeyRune KeyKind = iota
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyFunction // Rune holds the function number, e.g. F1 -> Rune==1
)

// Key is a single key event: a kind plus, for KeyRune, the rune itself,
// plus the active modifier set. Two Keys are equal (and thus usable as a
// trie-node map key, since the struct is comparable) iff Kind, Rune, and
// Modifiers all match.
type Key struct {
	Kind      KeyKind
	Rune      rune
	Modifiers Modifiers
}

// String renders a Key in a terse, vim-binding-like form for hint display
// and log messages, e.g. "<C-w>", "x", "Esc". Only keys with modifiers are
// wrapped in angle brackets.
func (k Key) String() string {
	body := keyBody(k)
	if k.Modifiers == ModNone {
		return body
	}
	prefix := ""
	if k.Modifiers.Has(ModCtrl) {
		prefix += "C-"
	}
	if k.Modifiers.Has(ModAlt) {
		prefix += "A-"
	}
	if k.Modifiers.Has(ModShift) {
		prefix += "S-"
	}
	return "<" + prefix + body + ">"
}

func keyBody(k Key) string {
	switch k.Kind {
	case KeyRune:
		return string(k.Rune)
	case KeyEnter:
		return "Enter"
	case KeyEscape:
		return "Esc"
	case KeyTab:
		return "Tab"
	case KeyBackspace:
		return "BS"
	case KeyDelete:
		return "Del"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	case KeyPageUp:
		return "PgUp"
	case KeyPageDown:
		return "PgDn"
	case KeyFunction:
		return "F" + itoa(int(k.Rune))
	default:
		return "?"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// EventKind distinguishes the broad class of UI input.
type EventKind int

const (
	EventKey EventKind = iota
	EventMouseClick
	EventMouseMove
	EventResize
)

// UiEvent is the host-independent input event keymap/command consume.
// Only Key is populated for EventKey; the rest are placeholders a host
// may extend without this package needing to track every backend's
// mouse/resize particulars.
type UiEvent struct {
	Kind EventKind
	Key  Key
	X, Y int
}

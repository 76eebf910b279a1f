// Command editorcore is a minimal terminal driver exercising the editor
// core library end to end: a Document, a Keymap-driven Normal mode with a
// command-line opened by ':', RenderPlan construction, and an ANSI
// termrender frame.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/cursor"
	tea "charm.land/bubbletea/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/editorcore/internal/change"
	"github.com/xonecas/editorcore/internal/command"
	"github.com/xonecas/editorcore/internal/config"
	"github.com/xonecas/editorcore/internal/document"
	"github.com/xonecas/editorcore/internal/highlightcache"
	"github.com/xonecas/editorcore/internal/keymap"
	"github.com/xonecas/editorcore/internal/loader"
	"github.com/xonecas/editorcore/internal/queries"
	"github.com/xonecas/editorcore/internal/render"
	"github.com/xonecas/editorcore/internal/selection"
	"github.com/xonecas/editorcore/internal/termrender"
	"github.com/xonecas/editorcore/internal/theme"
	"github.com/xonecas/editorcore/internal/transaction"
	"github.com/xonecas/editorcore/internal/uievent"
)

func main() {
	setupLogging()

	flagConfig := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfgPath := *flagConfig
	if cfgPath == "" {
		if dataDir, err := config.EnsureDataDir(); err == nil {
			candidate := filepath.Join(dataDir, "config.toml")
			if _, err := os.Stat(candidate); err == nil {
				cfgPath = candidate
			}
		}
	}
	var cfg *config.Config
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			log.Warn().Err(err).Msg("editorcore: config load failed, using defaults")
		} else {
			cfg = loaded
		}
	}
	if cfg == nil {
		cfg = &config.Config{}
	}

	m := newModel(cfg, flag.Arg(0))

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "editorcore: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

// model is the bubbletea Model wiring the editor core library into a
// terminal program.
type model struct {
	doc      *document.Document
	path     string
	cfg      *config.Config
	keys     *keymap.Keymap
	commands *command.Registry
	th       *theme.Theme
	cursor   cursor.Model

	langs      *loader.Loader
	highlights *highlightcache.Cache

	width, height int

	commandMode bool
	commandLine string
	statusMsg   string
}

func newModel(cfg *config.Config, path string) model {
	var doc *document.Document
	var content string
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			content = string(data)
			doc = document.NewFromText(filepath.Base(path), content)
		} else {
			log.Warn().Err(err).Str("path", path).Msg("editorcore: failed to read file, starting empty")
		}
	}
	if doc == nil {
		doc = document.New("untitled")
	}

	c := cursor.New()
	c.SetMode(cursor.CursorBlink)
	c.Focus()

	m := model{
		doc:        doc,
		path:       path,
		cfg:        cfg,
		keys:       keymap.New(),
		commands:   command.NewRegistry(),
		th:         theme.FromChromaStyle("monokai", styles.Get("monokai")),
		cursor:     c,
		langs:      loader.Default(queries.Bundled{}),
		highlights: highlightcache.New(),
	}
	// chromaTokenScopes doesn't cover every capture name the bundled
	// queries emit; borrow the nearest sibling scope's style rather than
	// leaving these unstyled.
	if s, ok := m.th.Resolve("constant.numeric"); ok {
		m.th.Set("constant.builtin", s)
	}
	if s, ok := m.th.Resolve("variable"); ok {
		m.th.Set("namespace", s)
	}
	if lang := m.langs.Resolve(path, content); lang != nil {
		if err := doc.AttachSyntax(context.Background(), lang.Language(), lang.ID); err != nil {
			log.Warn().Err(err).Str("language", lang.ID).Msg("editorcore: syntax attach failed")
		}
	}
	m.bindKeys()
	m.registerCommands()
	return m
}

// bindKeys installs the small fixed Normal-mode keymap this demo supports;
// a full editor would load these from config instead.
func (m *model) bindKeys() {
	bind := func(r rune, cmdName string) {
		if err := m.keys.BindCommand("Normal", []uievent.Key{{Kind: uievent.KeyRune, Rune: r, Modifiers: uievent.ModCtrl}}, cmdName); err != nil {
			log.Warn().Err(err).Str("command", cmdName).Msg("editorcore: bind failed")
		}
	}
	bind('z', "undo")
	bind('y', "redo")
	bind('q', "quit")
}

// registerCommands installs the ':'-prefixed commands this demo supports.
func (m *model) registerCommands() {
	reg := m.commands
	reg.Register(&command.Command{
		Name: "w",
		Doc:  "write the document to disk",
		Signature: command.Signature{
			MaxPositionals: 1,
		},
		Handler: func(inv command.Invocation, _ command.Event) error {
			path := m.path
			if len(inv.Positionals) == 1 {
				path = inv.Positionals[0]
			}
			if path == "" {
				return fmt.Errorf("w: no file path")
			}
			if err := os.WriteFile(path, []byte(m.doc.Text().String()), 0644); err != nil {
				return err
			}
			m.path = path
			m.doc.Commit()
			m.statusMsg = "wrote " + path
			return nil
		},
	})
	reg.Register(&command.Command{
		Name:      "q",
		Doc:       "quit",
		Signature: command.Signature{},
		Handler: func(command.Invocation, command.Event) error {
			return errQuit
		},
	})
}

var errQuit = fmt.Errorf("quit")

func (m model) Init() tea.Cmd { return m.cursor.Focus() }

// Update dispatches window/key events, then always forwards the message to
// the cursor component last, so it can drive its own blink timer regardless
// of what else the message triggered.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var handled tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyPressMsg:
		next, cmd := m.handleKey(msg)
		m = next.(model)
		handled = cmd
	}

	var cursorCmd tea.Cmd
	m.cursor, cursorCmd = m.cursor.Update(msg)
	return m, tea.Batch(handled, cursorCmd)
}

func (m model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.commandMode {
		return m.handleCommandLineKey(msg)
	}

	key, ok := translateKey(msg)
	if !ok {
		return m, nil
	}

	if key.Kind == uievent.KeyRune && key.Rune == ':' && key.Modifiers == uievent.ModNone {
		m.commandMode = true
		m.commandLine = ""
		return m, nil
	}

	res := m.keys.Feed("Normal", key)
	switch res.Kind {
	case keymap.ResolutionCommand:
		switch res.Command {
		case "undo":
			m.doc.Undo()
		case "redo":
			m.doc.Redo()
		case "quit":
			return m, tea.Quit
		}
		return m, nil
	case keymap.ResolutionPending:
		return m, nil
	}

	m.applyPlainEdit(key)
	return m, nil
}

func (m model) handleCommandLineKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.Keystroke() {
	case "esc":
		m.commandMode = false
		m.commandLine = ""
		return m, nil
	case "enter":
		m.commandMode = false
		line := m.commandLine
		m.commandLine = ""
		name, rest, _ := strings.Cut(line, " ")
		if err := m.commands.Dispatch(name, rest, command.IdentityExpander); err != nil {
			if err == errQuit {
				return m, tea.Quit
			}
			m.statusMsg = "error: " + err.Error()
		}
		return m, nil
	case "backspace":
		if n := len(m.commandLine); n > 0 {
			m.commandLine = m.commandLine[:n-1]
		}
		return m, nil
	}
	if msg.Text != "" {
		m.commandLine += msg.Text
	}
	return m, nil
}

// applyPlainEdit handles ordinary text-editing keys (runes, backspace,
// enter, left/right arrows) against the primary cursor — the modeless-typing half of
// this demo's input handling.
func (m model) applyPlainEdit(key uievent.Key) {
	primary := m.doc.Selection().Primary()
	pos := primary.Head

	switch key.Kind {
	case uievent.KeyRune:
		m.applyEdit(pos, pos, string(key.Rune))
	case uievent.KeyEnter:
		m.applyEdit(pos, pos, "\n")
	case uievent.KeyBackspace:
		if pos > 0 {
			m.applyEdit(pos-1, pos, "")
		}
	case uievent.KeyLeft:
		m.moveCursor(-1)
	case uievent.KeyRight:
		m.moveCursor(1)
	}
}

// applyEdit builds and applies a single-edit Transaction against the
// document's current text.
func (m model) applyEdit(from, to int, replacement string) {
	tx, err := transaction.Change(m.doc.Text(), []change.Edit{{From: from, To: to, Replacement: replacement}})
	if err != nil {
		log.Warn().Err(err).Msg("editorcore: edit rejected")
		return
	}
	m.doc.ApplyTransaction(nil, tx)
}

func (m model) moveCursor(delta int) {
	primary := m.doc.Selection().Primary()
	next := primary.Head + delta
	if next < 0 {
		next = 0
	}
	if next > m.doc.Text().LenChars() {
		next = m.doc.Text().LenChars()
	}
	sel, err := selection.New([]selection.Range{selection.Point(next)}, 0)
	if err != nil {
		return
	}
	tx := transaction.WithSelection(change.New(m.doc.Text().LenChars()), sel)
	m.doc.ApplyTransaction(nil, tx)
}

// highlightSource returns the render.HighlightSource this frame should
// query: the real SyntaxHighlightAdapter once a syntax engine is attached,
// falling back to NoHighlights for a document with no recognized language.
func (m model) highlightSource() render.HighlightSource {
	syn := m.doc.Syntax()
	if syn == nil {
		return render.NoHighlights{}
	}
	doc := m.doc
	return &highlightcache.SyntaxHighlightAdapter{
		State:      syn,
		Loader:     m.langs,
		Theme:      m.th,
		Cache:      m.highlights,
		DocVersion: doc.Version,
	}
}

func (m model) View() tea.View {
	if m.width == 0 || m.height == 0 {
		return tea.NewView("")
	}

	view := render.View{Viewport: render.Rect{Width: m.width, Height: m.height - 1}}
	format := render.TextFormat{SoftWrap: m.cfg.Text.SoftWrap, TabWidth: m.cfg.Text.TabWidthOrDefault()}
	gutter := render.GutterConfig{ShowLineNumbers: true}
	styles := render.Styles{}

	docView := render.DocumentView{Text: m.doc.Text(), Selection: m.doc.Selection()}
	plan := render.Build(docView, view, format, gutter, render.TextAnnotations{}, m.highlightSource(), m.th, styles, nil, nil)

	rows := termrender.Frame(plan, m.th, theme.Style{}, theme.Style{})

	var b strings.Builder
	b.WriteString(strings.Join(rows, "\n"))
	b.WriteString("\n")
	if m.commandMode {
		b.WriteString(":" + m.commandLine)
	} else if m.statusMsg != "" {
		b.WriteString(m.statusMsg)
	} else {
		b.WriteString(m.doc.DisplayName)
	}

	v := tea.NewView(b.String())
	v.AltScreen = true
	return v
}

// translateKey maps a tea.KeyPressMsg into this library's host-independent
// uievent.Key, dispatching on msg.Keystroke() (e.g. "ctrl+z", "shift+enter",
// "tab") rather than on the Code/Mod fields directly — Keystroke() is the
// documented, stable surface for this.
func translateKey(msg tea.KeyPressMsg) (uievent.Key, bool) {
	stroke := msg.Keystroke()
	parts := strings.Split(stroke, "+")
	base := parts[len(parts)-1]
	mods := uievent.ModNone
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl":
			mods |= uievent.ModCtrl
		case "alt":
			mods |= uievent.ModAlt
		case "shift":
			mods |= uievent.ModShift
		}
	}

	switch base {
	case "enter":
		return uievent.Key{Kind: uievent.KeyEnter, Modifiers: mods}, true
	case "esc":
		return uievent.Key{Kind: uievent.KeyEscape, Modifiers: mods}, true
	case "tab":
		return uievent.Key{Kind: uievent.KeyTab, Modifiers: mods}, true
	case "backspace":
		return uievent.Key{Kind: uievent.KeyBackspace, Modifiers: mods}, true
	case "delete":
		return uievent.Key{Kind: uievent.KeyDelete, Modifiers: mods}, true
	case "up":
		return uievent.Key{Kind: uievent.KeyUp, Modifiers: mods}, true
	case "down":
		return uievent.Key{Kind: uievent.KeyDown, Modifiers: mods}, true
	case "left":
		return uievent.Key{Kind: uievent.KeyLeft, Modifiers: mods}, true
	case "right":
		return uievent.Key{Kind: uievent.KeyRight, Modifiers: mods}, true
	case "home":
		return uievent.Key{Kind: uievent.KeyHome, Modifiers: mods}, true
	case "end":
		return uievent.Key{Kind: uievent.KeyEnd, Modifiers: mods}, true
	}
	if msg.Text != "" {
		r := []rune(msg.Text)[0]
		return uievent.Key{Kind: uievent.KeyRune, Rune: r, Modifiers: mods}, true
	}
	return uievent.Key{}, false
}

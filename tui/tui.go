package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/dungeoncore/engine"
	"github.com/nathoo/dungeoncore/engine/mechanics"
	"github.com/nathoo/dungeoncore/engine/parser"
	"github.com/nathoo/dungeoncore/engine/save"
	"github.com/nathoo/dungeoncore/types"
)

// minWidthForPanel is the terminal width below which the dungeon panel is
// hidden.
const minWidthForPanel = 2 * panelWidth

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed input
	isSystem bool // true for meta-command output
}

// Model is the Bubble Tea model for the dungeon editor.
type Model struct {
	engine *engine.Engine
	ctx    context.Context

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	history  *History

	rawLines []rawLine // accumulated log lines (unstyled, for re-wrapping)
	panel    panel

	width     int
	height    int
	ready     bool
	busy      bool // an edit is running; the engine must not be touched
	showPanel bool
	quitting  bool
	lastCmd   string
	saveDir   string
}

// outputMsg carries the result of work done against the engine into the
// Update loop, together with a fresh panel.
type outputMsg struct {
	input    string   // echoed input (empty for the intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
	panel    panel
}

// New creates a TUI model wired to the given engine.
func New(ctx context.Context, eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	home, _ := os.UserHomeDir()
	return Model{
		engine:    eng,
		ctx:       ctx,
		input:     ti,
		spinner:   sp,
		history:   NewHistory(100),
		panel:     snapshotPanel(eng),
		showPanel: true,
		saveDir:   filepath.Join(home, ".dungeoncore", "saves"),
	}
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, eng *engine.Engine) error {
	m := New(ctx, eng)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the intro text.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		return outputMsg{
			lines: []string{
				"Dungeon editor. Edits are applied as you type them; /help lists commands.",
			},
			isSystem: true,
			panel:    m.panel,
		}
	})
}

// Update handles messages (key presses, window resize, editor output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.logWidth(), vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.logWidth()
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if m.busy {
				return m, nil
			}
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(m.input.Value()); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd

	case outputMsg:
		m.busy = false
		m.panel = msg.panel
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		cmd := strings.Fields(input)[0]
		switch cmd {
		case "/panel":
			m.showPanel = !m.showPanel
			m.viewport.Width = m.logWidth()
			m = m.appendOutput(outputMsg{input: input, isSystem: true, panel: m.panel})
			return m, nil
		case "/search":
			// May wait for reference data.
			query := strings.TrimSpace(strings.TrimPrefix(input, cmd))
			return m.exec(input, true, func(ctx context.Context) []string {
				return m.cmdSearch(ctx, query)
			})
		}
		output, quit := m.handleMeta(input)
		m.panel = snapshotPanel(m.engine)
		m = m.appendOutput(outputMsg{input: input, lines: output, isSystem: true, panel: m.panel})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(outputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true, panel: m.panel,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	// Edits run off the Update loop: loading a reference dungeon waits for
	// the reference data.
	eng := m.engine
	return m.exec(input, false, func(ctx context.Context) []string {
		return eng.Step(ctx, input).Output
	})
}

// exec runs work against the engine in a command and marks the model busy
// until its output arrives.
func (m Model) exec(input string, isSystem bool, work func(context.Context) []string) (tea.Model, tea.Cmd) {
	m.busy = true
	ctx, eng := m.ctx, m.engine
	run := func() tea.Msg {
		lines := work(ctx)
		return outputMsg{input: input, lines: lines, isSystem: isSystem, panel: snapshotPanel(eng)}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		rl.kind = classifyLine(line)
		m.rawLines = append(m.rawLines, rl)
	}

	if len(msg.lines) > 0 {
		m.rawLines = append(m.rawLines, rawLine{})
	}

	m.refreshViewport()

	return m
}

// logWidth is the width left for the log once the panel is placed.
func (m Model) logWidth() int {
	if m.panelVisible() {
		return m.width - panelWidth
	}
	return m.width
}

func (m Model) panelVisible() bool {
	return m.showPanel && m.width >= minWidthForPanel
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.logWidth()
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem && rl.kind == kindPlain:
			styled = append(styled, styleSystem.Render(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Leading indentation is kept on the first line.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	indent := text[:len(text)-len(strings.TrimLeft(text, " "))]
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(indent + word)
			lineLen = len(indent) + wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: panel and log, status bar, input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	body := m.viewport.View()
	if m.panelVisible() {
		side := lipgloss.NewStyle().MaxHeight(m.viewport.Height).Render(m.panel.render(panelWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, body)
	}
	return body + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands that finish without waiting. Returns
// output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd, args := parts[0], parts[1:]
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/export":
		return m.cmdExport(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/mechanics":
		return m.cmdMechanics(arg == "preempt"), false

	case "/skill":
		return m.cmdSkill(args), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) savePath(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	return filepath.Join(m.saveDir, name+".json")
}

func (m *Model) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (m *Model) cmdSave(name string) []string {
	path := m.savePath(name, "quicksave")
	data, err := m.engine.Save()
	if err == nil {
		err = m.writeFile(path, data)
	}
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Dungeon saved to %s.", path)}
}

func (m *Model) cmdExport(name string) []string {
	path := m.savePath(name, "export")
	data, err := save.Export(m.engine.Dungeon)
	if err == nil {
		err = m.writeFile(path, data)
	}
	if err != nil {
		return []string{fmt.Sprintf("Export failed: %v", err)}
	}
	return []string{fmt.Sprintf("Dungeon exported to %s.", path)}
}

func (m *Model) cmdLoad(name string) []string {
	path := m.savePath(name, "quicksave")
	data, err := os.ReadFile(path)
	if err == nil {
		err = m.engine.Load(data)
	}
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	return []string{fmt.Sprintf("Dungeon loaded from %s.", path)}
}

func (m *Model) cmdMechanics(preemptOnly bool) []string {
	out := []string{"Dungeon mechanics:"}
	if preemptOnly {
		out[0] = "Preemptive mechanics:"
	}
	mech := m.engine.Mechanics(types.BattleContext{IsPreempt: preemptOnly}, preemptOnly)
	for _, line := range mechanics.Lines(mech) {
		out = append(out, "  "+line)
	}
	return out
}

func (m *Model) cmdSkill(args []string) []string {
	req, err := parser.ParseTurn(args)
	if err != nil {
		return []string{fmt.Sprintf("Usage: %s (%v)", parser.TurnUsage, err)}
	}
	return m.engine.EnemyTurn(req.Battle, req.Forced).Lines()
}

func (m Model) cmdSearch(ctx context.Context, query string) []string {
	if query == "" {
		return []string{"Usage: /search <text>"}
	}
	if w, ok := m.engine.Reference.(interface{ Wait(context.Context) error }); ok {
		if err := w.Wait(ctx); err != nil {
			return []string{fmt.Sprintf("Reference data unavailable: %v", err)}
		}
	}
	found := m.engine.Search(query)
	if len(found) == 0 {
		return []string{"No dungeons found."}
	}
	var out []string
	for _, e := range found {
		out = append(out, fmt.Sprintf("%6d  %s", e.ID, e.Title))
	}
	return out
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System commands:",
		"  /save [name]       Save dungeon and session (default: quicksave)",
		"  /export [name]     Write the bare dungeon snapshot",
		"  /load [name]       Load a save or snapshot",
		"  /mechanics [preempt]  Summarise what the dungeon can do",
		"  /skill [index|-] [combo] [preempt] [team=..] [attr=..] [type=..]  Run one enemy turn",
		"  /search <text>     Find reference dungeons (then: load <id>)",
		"  /state             Dump the active slot",
		"  /panel             Toggle the dungeon panel",
		"  /quit              Exit",
		"",
		"Editing commands:",
		"  floor add | floor <n> | floor rm <n>",
		"  enemy add | enemy <n> | enemy rm <n>",
		"  id <n|name>, lv <n>, hp <n>, hp <n>%",
		"  mult hp|atk|def <value>",
		"  enrage, defbreak, attr, shield, invincible, absorb, void",
		"  comboabsorb, dmgshield, attrabsorb, charges, counter, flags",
		"  load <id>, title, timer, width, normal",
		"  again (g)          Repeat the last edit",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for history (filtered by what you typed)",
	}
}

func (m *Model) cmdState() []string {
	v := m.engine.Dungeon.View(true)
	s := v.Stats
	output := []string{
		fmt.Sprintf("Sub-dungeon: %d", m.engine.Dungeon.ID),
		fmt.Sprintf("Cursor: floor %d, slot %d", v.Active.Floor, v.Active.Enemy),
		fmt.Sprintf("Monster: %d level %d", v.MonsterID, s.Level),
		fmt.Sprintf("HP: %d/%d  ATK: %d  DEF: %d", s.CurrentHP, s.MaxHP, s.Atk, s.Def),
		fmt.Sprintf("Charges: %d/%d  Counter: %d  Flags: %#x", s.Charges, s.MaxCharges, s.Counter, s.Flags),
		fmt.Sprintf("RNG: seed %d position %d", m.engine.RNG.Seed(), m.engine.RNG.Position()),
	}
	if n := len(m.engine.CommandLog); n > 0 {
		output = append(output, fmt.Sprintf("Edits this session: %d", n))
	}
	return output
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}

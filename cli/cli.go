// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the dungeon editor.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/dungeoncore/engine"
	"github.com/nathoo/dungeoncore/engine/events"
	"github.com/nathoo/dungeoncore/engine/mechanics"
	"github.com/nathoo/dungeoncore/engine/parser"
	"github.com/nathoo/dungeoncore/engine/save"
	"github.com/nathoo/dungeoncore/types"
)

// maxSearchResults caps /search output.
const maxSearchResults = 20

// CLI handles line-based interaction with the editor.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".dungeoncore", "saves"),
	}
}

// Run shows the current dungeon, then loops: prompt → input → dispatch →
// output. Dungeon changes are printed by an observer as they happen.
func (c *CLI) Run(ctx context.Context) {
	unsubscribe := c.Engine.Dungeon.Subscribe(events.Funcs{OnUpdate: c.printView})
	defer unsubscribe()

	c.printView(c.Engine.Dungeon.View(true))

	scanner := bufio.NewScanner(c.In)
	for {
		if ctx.Err() != nil {
			return
		}
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return // /quit
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(ctx, input)
		for _, line := range result.Output {
			c.printLine(line)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the editor should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd, args := parts[0], parts[1:]
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true
	case "/save":
		c.cmdSave(arg)
	case "/export":
		c.cmdExport(arg)
	case "/load":
		c.cmdLoad(arg)
	case "/mechanics":
		c.cmdMechanics(arg == "preempt")
	case "/skill":
		c.cmdSkill(args)
	case "/search":
		c.cmdSearch(ctx, strings.TrimSpace(strings.TrimPrefix(input, cmd)))
	case "/state":
		c.printState(c.Engine.Dungeon.View(true))
	case "/help":
		c.cmdHelp()
	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func (c *CLI) savePath(name string) string {
	if name == "" {
		name = "quicksave"
	}
	return filepath.Join(c.SaveDir, name+".json")
}

func (c *CLI) write(name string, data []byte) error {
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.savePath(name), data, 0o644)
}

func (c *CLI) cmdSave(name string) {
	data, err := c.Engine.Save()
	if err == nil {
		err = c.write(name, data)
	}
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Dungeon saved to %s.", c.savePath(name)))
}

func (c *CLI) cmdExport(name string) {
	if name == "" {
		name = "export"
	}
	data, err := save.Export(c.Engine.Dungeon)
	if err == nil {
		err = c.write(name, data)
	}
	if err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Dungeon exported to %s.", c.savePath(name)))
}

func (c *CLI) cmdLoad(name string) {
	data, err := os.ReadFile(c.savePath(name))
	if err == nil {
		err = c.Engine.Load(data)
	}
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Dungeon loaded from %s.", c.savePath(name)))
}

func (c *CLI) cmdMechanics(preemptOnly bool) {
	m := c.Engine.Mechanics(types.BattleContext{IsPreempt: preemptOnly}, preemptOnly)
	if preemptOnly {
		c.printLine("Preemptive mechanics:")
	} else {
		c.printLine("Dungeon mechanics:")
	}
	for _, line := range mechanics.Lines(m) {
		c.printLine("  " + line)
	}
}

// cmdSkill runs one enemy turn. With no index, or "-", the lottery picks
// the behaviour.
func (c *CLI) cmdSkill(args []string) {
	req, err := parser.ParseTurn(args)
	if err != nil {
		c.printSystem(fmt.Sprintf("Usage: %s (%v)", parser.TurnUsage, err))
		return
	}
	for _, line := range c.Engine.EnemyTurn(req.Battle, req.Forced).Lines() {
		c.printLine(line)
	}
}

func (c *CLI) cmdSearch(ctx context.Context, query string) {
	if query == "" {
		c.printSystem("Usage: /search <text>")
		return
	}
	if w, ok := c.Engine.Reference.(interface{ Wait(context.Context) error }); ok {
		if err := w.Wait(ctx); err != nil {
			c.printSystem(fmt.Sprintf("Reference data unavailable: %v", err))
			return
		}
	}
	found := c.Engine.Search(query)
	if len(found) == 0 {
		c.printSystem("No dungeons found.")
		return
	}
	for i, e := range found {
		if i == maxSearchResults {
			c.printLine(fmt.Sprintf("  ... and %d more", len(found)-maxSearchResults))
			break
		}
		c.printLine(fmt.Sprintf("  %6d  %s", e.ID, e.Title))
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]        - Save dungeon and session (default: quicksave)",
		"  /export [name]      - Write the bare dungeon snapshot",
		"  /load [name]        - Load a save or snapshot",
		"  /mechanics [preempt]- Summarise what the dungeon can do",
		"  /skill [index|-] [combo] [preempt] [team=..] [attr=..] [type=..] - Run one enemy turn",
		"  /search <text>      - Find reference dungeons by title",
		"  /state              - Show the active slot in full",
		"  /quit               - Exit",
		"",
		"Editing (separate several with ';'):",
		"  floor add | floor <n> | floor rm <n>",
		"  enemy add | enemy <n> | enemy rm <n>",
		"  id <n|name>, lv <n>, hp <n>, hp <n>%",
		"  mult hp|atk|def <value>   e.g. mult hp 3/2",
		"  enrage <x>, defbreak <pct>, attr <attribute|none>",
		"  shield|invincible|absorb|void [on|off]",
		"  comboabsorb <n>, dmgshield <pct>, attrabsorb <attr...>",
		"  charges <n>, counter <n>, flags <n|0xN>",
		"  load <sub-dungeon id>, title <text>, timer <s>, width <n>, normal [on|off]",
		"  again (g)           - Repeat the last edit",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

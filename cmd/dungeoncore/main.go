// Dungeoncore is an editor for puzzle-RPG dungeons: floors of enemy slots,
// stat multipliers and Lua-scripted enemy behaviours.
// Usage: dungeoncore [--version] [--plain] [--config <file>] [--seed <n>] [--script <file>] [scripts_directory]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nathoo/dungeoncore/cli"
	"github.com/nathoo/dungeoncore/config"
	"github.com/nathoo/dungeoncore/engine"
	"github.com/nathoo/dungeoncore/loader"
	"github.com/nathoo/dungeoncore/refdata"
	"github.com/nathoo/dungeoncore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: dungeoncore [--version] [--plain] [--config <file>] [--seed <n>] [--script <file>] [scripts_directory]\n"

func main() {
	plain := false
	configFile := "dungeoncore.yaml"
	var scriptsDir, scriptFile string
	var seed int64
	seedSet := false

	args := os.Args[1:]
	value := func(i int, flag string) string {
		if i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
			os.Exit(1)
		}
		return args[i+1]
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("dungeoncore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--config":
			configFile = value(i, "--config")
			i++
		case "--script":
			scriptFile = value(i, "--script")
			i++
		case "--seed":
			n, err := strconv.ParseInt(value(i, "--seed"), 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				os.Exit(1)
			}
			seed, seedSet = n, true
			i++
		case "-h", "--help":
			fmt.Print(usage)
			return
		default:
			if scriptsDir == "" {
				scriptsDir = args[i]
			}
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if scriptsDir == "" {
		scriptsDir = cfg.ScriptsDir
	}
	if !seedSet {
		seed = cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	useTUI := scriptFile == "" && !plain && isTerminal()
	logOut, closeLog := logWriter(useTUI)
	defer closeLog()
	log := config.NewLogger(cfg, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Load and compile the behaviour scripts.
	defs, err := loader.Load(scriptsDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading behaviour scripts: %v\n", err)
		os.Exit(1)
	}

	opts := engine.Options{
		Seed:      seed,
		Strategy:  cfg.Strategy(),
		CacheSize: cfg.CacheSize,
		Logger:    log,
	}
	if fetchers := cfg.Fetchers(); len(fetchers) > 0 {
		ref := refdata.New(log, fetchers...)
		ref.Start(ctx)
		opts.Reference = ref
	}

	eng := engine.New(defs, opts)
	eng.Dungeon.BoardWidth = cfg.BoardWidth

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng)
		c.In = f
		c.EchoInput = true
		c.Run(ctx)
		return
	}

	if !useTUI {
		fmt.Printf("dungeoncore %s, %d behaviour sets loaded\n\n", version, len(defs.Monsters))
		cli.New(eng).Run(ctx)
		return
	}

	if err := tui.Run(ctx, eng); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// logWriter picks where logs go. The TUI owns the terminal, so it logs to
// a file under ~/.dungeoncore instead of stderr.
func logWriter(useTUI bool) (io.Writer, func()) {
	if !useTUI {
		return os.Stderr, func() {}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return io.Discard, func() {}
	}
	dir := filepath.Join(home, ".dungeoncore")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "dungeoncore.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { f.Close() }
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

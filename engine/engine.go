// Package engine provides the Step() orchestrator that wires together
// parsing, name resolution, the dungeon reducer, the rule oracle and the
// lottery into a single editing session.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nathoo/dungeoncore/engine/dungeon"
	"github.com/nathoo/dungeoncore/engine/effects"
	"github.com/nathoo/dungeoncore/engine/lottery"
	"github.com/nathoo/dungeoncore/engine/mechanics"
	"github.com/nathoo/dungeoncore/engine/parser"
	"github.com/nathoo/dungeoncore/engine/resolve"
	"github.com/nathoo/dungeoncore/engine/rules"
	"github.com/nathoo/dungeoncore/engine/save"
	"github.com/nathoo/dungeoncore/engine/state"
	"github.com/nathoo/dungeoncore/refdata"
	"github.com/nathoo/dungeoncore/types"
)

// Reference is the reference dungeon data an engine loads from and searches.
type Reference interface {
	dungeon.Source
	Search(query string) []refdata.Entry
}

// Options configures a new Engine.
type Options struct {
	Seed      int64
	Strategy  effects.Strategy
	Reference Reference
	CacheSize int
	Logger    *slog.Logger
}

// Engine holds the behaviour definitions and the dungeon being edited.
type Engine struct {
	Defs       *state.Defs
	Oracle     *rules.Oracle
	Dungeon    *dungeon.Dungeon
	RNG        *lottery.RNG
	Strategy   effects.Strategy
	Reference  Reference
	CommandLog []string

	cacheSize int
	log       *slog.Logger
}

// Result is the outcome of one Step.
type Result struct {
	Commands []dungeon.Command
	Output   []string
	Err      error
}

// New creates a new engine from definitions.
func New(defs *state.Defs, opts Options) *Engine {
	if defs == nil {
		defs = state.NewDefs()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		Defs:       defs,
		Oracle:     rules.NewOracle(defs, opts.CacheSize),
		RNG:        lottery.NewRNG(opts.Seed),
		Strategy:   opts.Strategy,
		Reference:  opts.Reference,
		CommandLog: []string{},
		cacheSize:  opts.CacheSize,
		log:        log,
	}
	e.Dungeon = dungeon.New(dungeon.Options{
		Cards:  e.Oracle,
		Oracle: e.Oracle,
		Source: opts.Reference,
		Random: engineRandom{e},
		Logger: log,
	})
	return e
}

// SetReference replaces the reference data the dungeon loads from.
func (e *Engine) SetReference(ref Reference) {
	e.Reference = ref
	e.Dungeon.SetSource(ref)
}

// engineRandom lets the engine swap its RNG (on load) without rebuilding
// the dungeon.
type engineRandom struct{ e *Engine }

func (r engineRandom) Float64() float64 { return r.e.RNG.Float64() }

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = lottery.RestoreRNG(seed, position)
}

// Reload swaps in new behaviour definitions, e.g. after scripts change.
func (e *Engine) Reload(defs *state.Defs) {
	e.Defs = defs
	e.Oracle = rules.NewOracle(defs, e.cacheSize)
	e.Dungeon.Rebind(e.Oracle, e.Oracle)
}

// Step parses one line of editor input and applies it to the dungeon as a
// single batch.
func (e *Engine) Step(ctx context.Context, input string) Result {
	var result Result

	// 1. Parse input, resolving monster names against the loaded behaviours.
	cmds, err := parser.Parse(input, e.resolveName)
	if err != nil {
		result.Err = err
		result.Output = append(result.Output, err.Error())
		return result
	}

	// 2. Empty input.
	if len(cmds) == 0 {
		result.Output = append(result.Output, "What do you want to change?")
		return result
	}

	// 3. Log the command.
	e.CommandLog = append(e.CommandLog, input)

	// 4. Apply as one batch; observers are notified before Apply returns.
	result.Commands = cmds
	if err := e.Dungeon.Apply(ctx, cmds...); err != nil {
		result.Err = err
		result.Output = append(result.Output, err.Error())
	}
	return result
}

func (e *Engine) resolveName(name string) (int, error) {
	return resolve.Monster(e.Defs, name)
}

// Mechanics summarises every floor under the engine's merge strategy.
func (e *Engine) Mechanics(battle types.BattleContext, preemptOnly bool) types.Mechanics {
	return mechanics.Compute(e.Dungeon, e.Oracle, mechanics.Options{
		Battle:      e.battleFor(battle),
		PreemptOnly: preemptOnly,
		Strategy:    e.Strategy,
	})
}

// battleFor fills in the battle state the dungeon itself knows: a board
// wider than the default is a big board.
func (e *Engine) battleFor(battle types.BattleContext) types.BattleContext {
	if e.Dungeon.BoardWidth > dungeon.DefaultBoardWidth {
		battle.BigBoard = true
	}
	return battle
}

// Search lists reference dungeons whose title contains query.
func (e *Engine) Search(query string) []refdata.Entry {
	if e.Reference == nil {
		return nil
	}
	return e.Reference.Search(query)
}

// Save serializes the dungeon and session.
func (e *Engine) Save() ([]byte, error) {
	return save.Save(e.Dungeon, save.Session{
		RNGSeed:     e.RNG.Seed(),
		RNGPosition: e.RNG.Position(),
		CommandLog:  e.CommandLog,
	})
}

// Load restores a dungeon and session written by Save, or a bare snapshot.
func (e *Engine) Load(data []byte) error {
	sd, err := save.Load(data)
	if err != nil {
		return fmt.Errorf("loading save: %w", err)
	}
	sess := save.ApplySave(e.Dungeon, sd)
	if sd.HasSession {
		e.RestoreRNG(sess.RNGSeed, sess.RNGPosition)
	}
	e.CommandLog = sess.CommandLog
	return nil
}

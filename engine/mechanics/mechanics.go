// Package mechanics summarises what an entire dungeon can do to a team.
package mechanics

import (
	"github.com/nathoo/dungeoncore/engine/dungeon"
	"github.com/nathoo/dungeoncore/engine/effects"
	"github.com/nathoo/dungeoncore/types"
)

// Oracle is the part of the rule oracle the aggregator reads.
type Oracle interface {
	Candidates(ctx types.CombatantContext) []types.Candidate
	Skills(monsterID int) []types.SkillDef
	Rule(monsterID int, ruleID string) (types.SkillDef, bool)
}

// Options tune a Compute call.
type Options struct {
	Battle      types.BattleContext
	PreemptOnly bool
	Strategy    effects.Strategy
}

// Compute folds every slot of every floor into one summary. With
// PreemptOnly only the behaviours the oracle allows on the opening turn are
// counted; otherwise every behaviour of every slot is. The dungeon is not
// modified and no randomness is consumed, so repeated calls agree.
func Compute(d *dungeon.Dungeon, oracle Oracle, opts Options) types.Mechanics {
	var acc types.Mechanics
	m := d.Multipliers

	for _, f := range d.Floors {
		for _, e := range f.Enemies {
			if e.Resolve(m) > 0 {
				acc.Resolve = true
			}
			if e.SuperResolve(m) > 0 {
				acc.SuperResolve = true
			}
			if oracle == nil {
				continue
			}

			skills := oracle.Skills(e.ID)
			var indices []int
			if opts.PreemptOnly {
				battle := opts.Battle
				battle.IsPreempt = true
				battle.Combo = 0
				ctx := e.Context(m, battle)
				// A preempt query sees the slot at full health.
				ctx.HPPercent = 100
				for _, c := range oracle.Candidates(ctx) {
					indices = append(indices, c.Index)
				}
			} else {
				for i := range skills {
					indices = append(indices, i)
				}
			}

			ectx := effects.Context{
				MonsterID: e.ID,
				BaseAtk:   m.Atk.Scale(e.BaseAtk()),
				Strategy:  opts.Strategy,
			}
			for _, idx := range indices {
				if idx < 0 || idx >= len(skills) {
					continue
				}
				rule, ok := oracle.Rule(e.ID, skills[idx].ID)
				if !ok {
					rule = skills[idx]
				}
				ectx.RuleID = rule.ID
				effects.Apply(&acc, rule.Effects, ectx)
			}
		}
	}
	return acc
}

package rules

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nathoo/dungeoncore/engine/state"
	"github.com/nathoo/dungeoncore/types"
)

// DefaultTextCacheSize bounds the rendered-text cache when no size is given.
const DefaultTextCacheSize = 512

type textKey struct {
	monster int
	index   int
}

// Oracle answers behaviour questions over a compiled definition set.
// It is safe for concurrent use; Defs are immutable after loading.
type Oracle struct {
	defs  *state.Defs
	texts *lru.Cache[textKey, string]
}

// NewOracle creates an oracle over defs. cacheSize <= 0 uses the default.
func NewOracle(defs *state.Defs, cacheSize int) *Oracle {
	if defs == nil {
		defs = state.NewDefs()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultTextCacheSize
	}
	// lru.New only fails for a non-positive size.
	texts, _ := lru.New[textKey, string](cacheSize)
	return &Oracle{defs: defs, texts: texts}
}

// Defs returns the definitions the oracle reads.
func (o *Oracle) Defs() *state.Defs {
	return o.defs
}

// Monster implements enemy.Cards.
func (o *Oracle) Monster(id int) (types.MonsterDef, bool) {
	return o.defs.Monster(id)
}

// Skills returns every skill of a monster in declaration order.
func (o *Oracle) Skills(monsterID int) []types.SkillDef {
	return o.defs.Skills(monsterID)
}

// SkillCount returns the size of a monster's behaviour set.
func (o *Oracle) SkillCount(monsterID int) int {
	return len(o.defs.Skills(monsterID))
}

// Rule resolves a skill by its stable rule ID.
func (o *Oracle) Rule(monsterID int, ruleID string) (types.SkillDef, bool) {
	return o.defs.Rule(monsterID, ruleID)
}

// AlwaysActive reports whether the skill at idx is passive.
func (o *Oracle) AlwaysActive(monsterID, idx int) bool {
	s, ok := o.defs.Skill(monsterID, idx)
	return ok && s.Passive
}

type indexed struct {
	index int
	skill types.SkillDef
}

// Candidates runs the selection pipeline for the enemy described by ctx and
// returns the skills the lottery may choose from, in declaration order.
//
//  1. Collect the monster's skills.
//  2. Filter by phase (preempt, passive, charges) and conditions.
//  3. Rank by priority (desc) then source order (asc).
//  4. Keep only the top priority tier.
func (o *Oracle) Candidates(ctx types.CombatantContext) []types.Candidate {
	// Steps 1-2: collect and filter.
	var eligible []indexed
	for i, s := range o.defs.Skills(ctx.MonsterID) {
		if !MatchesPhase(s, ctx) {
			continue
		}
		if !EvalAllConditions(s.Conditions, ctx) {
			continue
		}
		eligible = append(eligible, indexed{index: i, skill: s})
	}
	if len(eligible) == 0 {
		return nil
	}

	// Step 3: rank.
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].skill.Priority != eligible[j].skill.Priority {
			return eligible[i].skill.Priority > eligible[j].skill.Priority
		}
		return eligible[i].index < eligible[j].index
	})

	// Step 4: top tier.
	top := eligible[0].skill.Priority
	cands := make([]types.Candidate, 0, len(eligible))
	for _, e := range eligible {
		if e.skill.Priority != top {
			break
		}
		counter, flags := NextState(e.skill, ctx.Counter, ctx.Flags)
		cands = append(cands, types.Candidate{
			Index:   e.index,
			Chance:  e.skill.Chance,
			Counter: counter,
			Flags:   flags,
		})
	}
	return cands
}

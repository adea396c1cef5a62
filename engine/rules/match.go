package rules

import (
	"github.com/nathoo/dungeoncore/types"
)

// MatchesPhase checks whether a skill can be rolled in this context at all,
// before its conditions are looked at. Passive skills never roll, preempt
// skills roll only on the preemptive turn and everything else only after it.
func MatchesPhase(skill types.SkillDef, ctx types.CombatantContext) bool {
	if skill.Passive {
		return false
	}
	if skill.Preempt != ctx.Battle.IsPreempt {
		return false
	}
	if skill.ChargeCost > 0 && ctx.Charges < skill.ChargeCost {
		return false
	}
	return true
}

// NextState returns the counter and flags an enemy holds after using skill.
func NextState(skill types.SkillDef, counter, flags int) (int, int) {
	if skill.Counter != nil {
		counter = *skill.Counter
	}
	counter += skill.CounterAdd
	flags = (flags | skill.SetFlags) &^ skill.ClearFlags
	return counter, flags
}

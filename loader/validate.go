package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/dungeoncore/engine/effects"
	"github.com/nathoo/dungeoncore/engine/state"
	"github.com/nathoo/dungeoncore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Known effect types.
var validEffectTypes = map[string]bool{
	"attack":           true,
	"gravity":          true,
	"bind":             true,
	"debuff":           true,
	"skyfall":          true,
	"lock":             true,
	"unmatchable":      true,
	"no_skyfall":       true,
	"attribute_absorb": true,
	"combo_absorb":     true,
	"damage_absorb":    true,
	"damage_void":      true,
	"leader_swap":      true,
	"cloud":            true,
	"tape":             true,
	"spinner":          true,
	"skill_delay":      true,
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"preempt":            true,
	"hp_below":           true,
	"hp_above":           true,
	"charges_at_least":   true,
	"flag_set":           true,
	"flag_not":           true,
	"counter_at_least":   true,
	"counter_below":      true,
	"combo_at_least":     true,
	"team_has_attribute": true,
	"team_has_type":      true,
	"team_has_id":        true,
	"big_board":          true,
	"partner_dead":       true,
	"attribute_is":       true,
	"level_at_least":     true,
	"not":                true,
}

// Known monster types.
var validMonsterTypes = map[types.MonsterType]bool{
	"evo": true, "balanced": true, "physical": true, "healer": true,
	"dragon": true, "god": true, "attacker": true, "devil": true,
	"machine": true, "awoken": true, "enhance": true, "redeemable": true,
}

var bindTargets = map[string]bool{
	"leader": true, "sub": true, "team": true, "random": true, "awoken": true, "skill": true,
}

func validAttribute(a types.Attribute) bool {
	for _, known := range types.Attributes {
		if a == known {
			return true
		}
	}
	return false
}

// validate checks compiled defs and adds problems to ve.
func validate(defs *state.Defs, ve *ValidationError) {
	for _, id := range defs.IDs() {
		validateMonster(defs.Monsters[id], ve)
	}
}

func validateMonster(m types.MonsterDef, ve *ValidationError) {
	where := fmt.Sprintf("monster %d", m.ID)

	if m.ID < 0 {
		ve.errorf("%s: id must not be negative", where)
	}
	for _, a := range []types.Attribute{m.Attribute, m.SubAttribute} {
		if a != types.AttrNone && !validAttribute(a) {
			ve.errorf("%s: unknown attribute %q", where, a)
		}
	}
	for _, t := range m.Types {
		if !validMonsterTypes[t] {
			ve.errorf("%s: unknown monster type %q", where, t)
		}
	}
	for t := range m.TypeResists {
		if !validMonsterTypes[t] {
			ve.errorf("%s: type_resists names unknown type %q", where, t)
		}
	}
	for a := range m.AttrResists {
		if !validAttribute(a) {
			ve.errorf("%s: attr_resists names unknown attribute %q", where, a)
		}
	}
	if m.MaxLevel < 1 {
		ve.errorf("%s: max_level must be at least 1", where)
	}
	stats := []struct {
		name string
		r    types.StatRange
	}{{"hp", m.HP}, {"atk", m.Atk}, {"def", m.Def}}
	for _, st := range stats {
		if st.r.Min < 0 || st.r.Max < st.r.Min {
			ve.errorf("%s: %s range %d..%d is invalid", where, st.name, st.r.Min, st.r.Max)
		}
	}
	if m.HP.Max == 0 {
		ve.warnf("%s: has no HP", where)
	}
	if len(m.Skills) == 0 {
		ve.warnf("%s: has no skills", where)
	}

	seen := map[string]bool{}
	for _, s := range m.Skills {
		sw := fmt.Sprintf("%s skill %q", where, s.ID)
		if seen[s.ID] {
			ve.errorf("%s: duplicate skill id", sw)
		}
		seen[s.ID] = true

		if s.Chance < 0 {
			ve.errorf("%s: chance must not be negative", sw)
		}
		if s.Chance == 0 && !s.Passive {
			ve.warnf("%s: chance is 0, it will never be chosen", sw)
		}
		if s.Passive && s.Preempt {
			ve.warnf("%s: passive skills are never rolled, preempt has no effect", sw)
		}
		if s.ChargeCost > 0 && m.MaxCharges == 0 {
			ve.warnf("%s: costs %d charges but the monster has none", sw, s.ChargeCost)
		}
		validateConditions(s.Conditions, sw, ve)
		validateEffects(s.Effects, sw, ve)
	}
}

func validateConditions(conditions []types.Condition, where string, ve *ValidationError) {
	for _, c := range conditions {
		if !validConditionTypes[c.Type] {
			ve.errorf("%s: unknown condition type %q", where, c.Type)
			continue
		}
		switch c.Type {
		case "team_has_attribute", "attribute_is":
			if a, _ := c.Params["attribute"].(string); !validAttribute(types.Attribute(a)) {
				ve.errorf("%s: condition %s has unknown attribute %q", where, c.Type, a)
			}
		case "team_has_type":
			if t, _ := c.Params["type"].(string); !validMonsterTypes[types.MonsterType(t)] {
				ve.errorf("%s: condition team_has_type has unknown type %q", where, t)
			}
		case "not":
			if c.Inner == nil {
				ve.errorf("%s: Not() needs a condition", where)
			} else {
				validateConditions([]types.Condition{*c.Inner}, where, ve)
			}
		}
	}
}

func validateEffects(effs []types.SkillEffect, where string, ve *ValidationError) {
	for _, eff := range effs {
		if !validEffectTypes[eff.Type] {
			ve.errorf("%s: unknown effect type %q", where, eff.Type)
			continue
		}
		if name, ok := eff.Params["merge"].(string); ok {
			if _, err := effects.ParseStrategy(name); err != nil {
				ve.errorf("%s: %v", where, err)
			}
		}
		switch eff.Type {
		case "bind":
			if t, _ := eff.Params["target"].(string); !bindTargets[t] {
				ve.errorf("%s: bind has unknown target %q", where, t)
			}
		case "attribute_absorb":
			list, _ := eff.Params["attributes"].([]any)
			if len(list) == 0 {
				ve.errorf("%s: attribute_absorb needs a list of attributes", where)
			}
			for _, v := range list {
				if a, _ := v.(string); !validAttribute(types.Attribute(a)) {
					ve.errorf("%s: attribute_absorb has unknown attribute %v", where, v)
				}
			}
		}
	}
}

package rules

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/dungeoncore/types"
)

// title upper-cases the first letter of each word. Casers keep state, so
// each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// Describe renders the skill at idx as one line of text. Results are cached
// per (monster, index).
func (o *Oracle) Describe(monsterID, idx int) string {
	key := textKey{monster: monsterID, index: idx}
	if text, ok := o.texts.Get(key); ok {
		return text
	}
	s, ok := o.defs.Skill(monsterID, idx)
	if !ok {
		return ""
	}
	text := DescribeSkill(s)
	o.texts.Add(key, text)
	return text
}

// DescribeSkill renders a skill without caching.
func DescribeSkill(s types.SkillDef) string {
	var b strings.Builder
	name := s.Name
	if name == "" {
		name = s.ID
	}
	b.WriteString(name)
	switch {
	case s.Passive:
		b.WriteString(" (passive)")
	case s.Preempt:
		b.WriteString(" (preemptive)")
	}
	b.WriteString(": ")

	if s.Description != "" {
		b.WriteString(s.Description)
	} else {
		parts := make([]string, 0, len(s.Effects))
		for _, e := range s.Effects {
			parts = append(parts, DescribeEffect(e))
		}
		if len(parts) == 0 {
			parts = append(parts, "Does nothing")
		}
		b.WriteString(strings.Join(parts, "; "))
	}

	if len(s.Conditions) > 0 {
		conds := make([]string, 0, len(s.Conditions))
		for _, c := range s.Conditions {
			conds = append(conds, DescribeCondition(c))
		}
		b.WriteString(" [if ")
		b.WriteString(strings.Join(conds, " and "))
		b.WriteString("]")
	}
	return b.String()
}

// DescribeEffect renders a single effect.
func DescribeEffect(e types.SkillEffect) string {
	p := e.Params
	switch e.Type {
	case "attack":
		hits := toInt(p["hits"])
		if hits > 1 {
			return fmt.Sprintf("Attack %d%% x%d", toInt(p["percent"]), hits)
		}
		return fmt.Sprintf("Attack %d%%", toInt(p["percent"]))
	case "gravity":
		return fmt.Sprintf("Gravity %d%%", toInt(p["percent"]))
	case "bind":
		return fmt.Sprintf("Bind %s for %s", plural(toInt(p["count"]), str(p, "target")), turnRange(p))
	case "debuff":
		return fmt.Sprintf("%s debuff for %s", title(str(p, "kind")), turns(p))
	case "skyfall":
		return fmt.Sprintf("%d%% %s skyfall for %s", toInt(p["percent"]), title(orbName(str(p, "orb"))), turns(p))
	case "lock":
		if n := toInt(p["count"]); n > 0 {
			return fmt.Sprintf("Lock %d orbs", n)
		}
		return "Lock all orbs"
	case "unmatchable":
		return fmt.Sprintf("Unmatchable orbs for %s", turns(p))
	case "no_skyfall":
		return fmt.Sprintf("No skyfall for %s", turns(p))
	case "attribute_absorb":
		names := make([]string, 0)
		for _, a := range strList(p["attributes"]) {
			names = append(names, title(a))
		}
		return fmt.Sprintf("Absorb %s for %s", strings.Join(names, "/"), turns(p))
	case "combo_absorb":
		return fmt.Sprintf("Absorb %d combos or fewer for %s", toInt(p["combos"]), turns(p))
	case "damage_absorb":
		return fmt.Sprintf("Absorb damage over %d for %s", toInt(p["amount"]), turns(p))
	case "damage_void":
		return fmt.Sprintf("Void damage over %d for %s", toInt(p["amount"]), turns(p))
	case "leader_swap":
		return fmt.Sprintf("Swap leader for %s", turns(p))
	case "cloud":
		return fmt.Sprintf("%dx%d cloud for %s", toInt(p["width"]), toInt(p["height"]), turns(p))
	case "tape":
		return fmt.Sprintf("Tape a %s for %s", str(p, "line"), turns(p))
	case "spinner":
		return fmt.Sprintf("%s for %s", plural(toInt(p["count"]), "spinner"), turns(p))
	case "skill_delay":
		return fmt.Sprintf("Delay skills by %s", rangeText(toInt(p["min"]), toInt(p["max"])))
	default:
		return e.Type
	}
}

// DescribeCondition renders a single condition.
func DescribeCondition(c types.Condition) string {
	p := c.Params
	switch c.Type {
	case "preempt":
		return "preemptive"
	case "hp_below":
		return fmt.Sprintf("HP <= %d%%", toInt(p["percent"]))
	case "hp_above":
		return fmt.Sprintf("HP > %d%%", toInt(p["percent"]))
	case "charges_at_least":
		return fmt.Sprintf("charges >= %d", toInt(p["charges"]))
	case "flag_set":
		return fmt.Sprintf("flags has %#x", toInt(p["bits"]))
	case "flag_not":
		return fmt.Sprintf("flags lacks %#x", toInt(p["bits"]))
	case "counter_at_least":
		return fmt.Sprintf("counter >= %d", toInt(p["value"]))
	case "counter_below":
		return fmt.Sprintf("counter < %d", toInt(p["value"]))
	case "combo_at_least":
		return fmt.Sprintf("%d+ combos", toInt(p["combo"]))
	case "team_has_attribute":
		return "team has " + title(str(p, "attribute"))
	case "team_has_type":
		return "team has " + title(str(p, "type"))
	case "team_has_id":
		return fmt.Sprintf("team has #%d", toInt(p["id"]))
	case "big_board":
		return "7x6 board"
	case "partner_dead":
		return "alone"
	case "attribute_is":
		return "attribute is " + title(str(p, "attribute"))
	case "level_at_least":
		return fmt.Sprintf("level >= %d", toInt(p["level"]))
	case "not":
		if c.Inner == nil {
			return "always"
		}
		return "not " + DescribeCondition(*c.Inner)
	default:
		return c.Type
	}
}

func str(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}

func strList(v any) []string {
	var out []string
	switch vals := v.(type) {
	case []any:
		for _, x := range vals {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, vals...)
	}
	return out
}

func orbName(orb string) string {
	return strings.ReplaceAll(orb, "_", " ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func turns(p map[string]any) string {
	return plural(toInt(p["turns"]), "turn")
}

func turnRange(p map[string]any) string {
	lo, hi := toInt(p["min"]), toInt(p["max"])
	if hi <= lo {
		return plural(lo, "turn")
	}
	return fmt.Sprintf("%d-%d turns", lo, hi)
}

func rangeText(lo, hi int) string {
	if hi <= lo {
		return fmt.Sprintf("%d", lo)
	}
	return fmt.Sprintf("%d-%d", lo, hi)
}

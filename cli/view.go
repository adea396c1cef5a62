package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/dungeoncore/engine/events"
)

// printView is the dungeon observer: a short summary after every change and
// the skill list whenever the active slot changed.
func (c *CLI) printView(v events.View) {
	cur := c.Engine.Dungeon.Cursor()
	if v.Active != nil {
		cur = *v.Active
	}

	if v.Title != "" {
		c.printLine("== " + v.Title + " ==")
	}
	c.printLine(floorLine(v.Floors, cur))
	c.printLine(c.slotLine(v))

	for i, s := range v.Skills {
		marker := " "
		if s.AlwaysActive {
			marker = "*"
		}
		c.printLine(fmt.Sprintf("  %s[%d] %s", marker, i, s.Text))
	}
}

func floorLine(floors [][]int, cur events.Cursor) string {
	parts := make([]string, len(floors))
	for fi, ids := range floors {
		slots := make([]string, len(ids))
		for si, id := range ids {
			slots[si] = fmt.Sprintf("%d", id)
			if fi == cur.Floor && si == cur.Enemy {
				slots[si] = "[" + slots[si] + "]"
			}
		}
		parts[fi] = fmt.Sprintf("F%d: %s", fi, strings.Join(slots, " "))
	}
	return strings.Join(parts, " | ")
}

func (c *CLI) monsterName(id int) string {
	if m, ok := c.Engine.Defs.Monster(id); ok {
		return m.Name
	}
	return "unknown"
}

func (c *CLI) slotLine(v events.View) string {
	s := v.Stats
	return fmt.Sprintf("#%d %s Lv%d  HP %d/%d (%d%%)  ATK %d  DEF %d",
		v.MonsterID, c.monsterName(v.MonsterID), s.Level,
		s.CurrentHP, s.MaxHP, s.PercentHP, s.Atk, s.Def)
}

// printState dumps the whole stat block.
func (c *CLI) printState(v events.View) {
	s := v.Stats
	title := v.Title
	if title == "" {
		title = "(untitled)"
	}
	c.printSystem(fmt.Sprintf("Dungeon: %s  multipliers hp %s atk %s def %s", title, v.HP, v.Atk, v.Def))
	c.printSystem(c.slotLine(v))
	c.printSystem(fmt.Sprintf("Base ATK %d x%g enrage, base DEF %d, ignore %d%%",
		s.BaseAtk, s.Enrage, s.BaseDef, s.IgnoreDefensePercent))
	if s.Resolve > 0 || s.SuperResolve > 0 {
		c.printSystem(fmt.Sprintf("Resolve %d, super resolve %d", s.Resolve, s.SuperResolve))
	}
	attr := string(s.Attribute)
	if attr == "" {
		attr = "none"
	}
	c.printSystem(fmt.Sprintf("Attribute %s, shield %t, invincible %t", attr, s.StatusShield, s.Invincible))
	c.printSystem(fmt.Sprintf("Combo absorb %d, damage shield %d%%, damage absorb %t, damage void %t",
		s.ComboAbsorb, s.DamageShieldPercent, s.DamageAbsorb, s.DamageVoid))
	if len(s.AttributeAbsorb) > 0 {
		names := make([]string, len(s.AttributeAbsorb))
		for i, a := range s.AttributeAbsorb {
			names[i] = string(a)
		}
		c.printSystem("Absorbs " + strings.Join(names, ", "))
	}
	if len(s.TypeResists) > 0 {
		parts := make([]string, 0, len(s.TypeResists))
		for t, pct := range s.TypeResists {
			parts = append(parts, fmt.Sprintf("%s %d%%", t, pct))
		}
		sort.Strings(parts)
		c.printSystem("Type resists: " + strings.Join(parts, ", "))
	}
	if len(s.AttrResists) > 0 {
		parts := make([]string, 0, len(s.AttrResists))
		for a, pct := range s.AttrResists {
			parts = append(parts, fmt.Sprintf("%s %d%%", a, pct))
		}
		sort.Strings(parts)
		c.printSystem("Attribute resists: " + strings.Join(parts, ", "))
	}
	c.printSystem(fmt.Sprintf("Charges %d/%d, counter %d, flags %#x", s.Charges, s.MaxCharges, s.Counter, s.Flags))
}

package tui

import (
	"fmt"
	"strings"

	"github.com/nathoo/dungeoncore/engine"
	"github.com/nathoo/dungeoncore/engine/events"
	"github.com/nathoo/dungeoncore/engine/mechanics"
	"github.com/nathoo/dungeoncore/types"
)

// panelWidth is the outer width of the dungeon panel.
const panelWidth = 46

// panel is what the dungeon panel draws: the dungeon view plus the things
// the view does not carry.
type panel struct {
	view      events.View
	name      string
	mechanics []string
}

// snapshotPanel reads everything the panel shows from the engine. It runs
// wherever the engine was last touched, so Update never reads the engine
// while a command is in flight.
func snapshotPanel(eng *engine.Engine) panel {
	v := eng.Dungeon.View(true)
	name := "unknown"
	if md, ok := eng.Defs.Monster(v.MonsterID); ok {
		name = md.Name
	}
	return panel{
		view:      v,
		name:      name,
		mechanics: mechanics.Lines(eng.Mechanics(types.BattleContext{}, false)),
	}
}

// floorLines renders one line per floor with the active slot highlighted.
func floorLines(v events.View) []string {
	lines := make([]string, len(v.Floors))
	for fi, ids := range v.Floors {
		slots := make([]string, len(ids))
		for si, id := range ids {
			text := fmt.Sprintf("%d", id)
			if v.Active != nil && v.Active.Floor == fi && v.Active.Enemy == si {
				text = styleActiveSlot.Render(text)
			}
			slots[si] = text
		}
		lines[fi] = fmt.Sprintf("F%d: %s", fi, strings.Join(slots, " "))
	}
	return lines
}

// render draws the panel at the given inner width.
func (p panel) render(width int) string {
	v, s := p.view, p.view.Stats
	var b []string
	add := func(line string) {
		b = append(b, wordWrap(line, width))
	}

	if v.Title != "" {
		b = append(b, styleTitle.Render(wordWrap(v.Title, width)))
	}
	b = append(b, floorLines(v)...)
	b = append(b, "")

	b = append(b, styleHeading.Render(fmt.Sprintf("#%d %s Lv%d", v.MonsterID, p.name, s.Level)))
	add(fmt.Sprintf("HP %d/%d (%d%%)", s.CurrentHP, s.MaxHP, s.PercentHP))
	add(fmt.Sprintf("ATK %d  DEF %d", s.Atk, s.Def))
	if s.Enrage != 1 || s.IgnoreDefensePercent != 0 {
		add(fmt.Sprintf("Enrage x%g  Def break %d%%", s.Enrage, s.IgnoreDefensePercent))
	}
	if s.MaxCharges > 0 || s.Counter != 0 || s.Flags != 0 {
		add(fmt.Sprintf("Charges %d/%d  Counter %d  Flags %#x", s.Charges, s.MaxCharges, s.Counter, s.Flags))
	}
	var status []string
	if s.StatusShield {
		status = append(status, "shield")
	}
	if s.Invincible {
		status = append(status, "invincible")
	}
	if s.DamageAbsorb {
		status = append(status, "absorb")
	}
	if s.DamageVoid {
		status = append(status, "void")
	}
	if len(status) > 0 {
		add("Status: " + strings.Join(status, ", "))
	}

	if len(v.Skills) > 0 {
		b = append(b, "", styleHeading.Render("Behaviours"))
		for i, sk := range v.Skills {
			line := wordWrap(fmt.Sprintf("[%d] %s", i, sk.Text), width)
			if sk.AlwaysActive {
				line = stylePassive.Render(line)
			}
			b = append(b, line)
		}
	}

	if len(p.mechanics) > 0 {
		b = append(b, "", styleHeading.Render("Mechanics"))
		for _, line := range p.mechanics {
			add(line)
		}
	}

	return stylePanel.Width(width + 2).Render(strings.Join(b, "\n"))
}

package engine

import (
	"fmt"

	"github.com/nathoo/dungeoncore/engine/effects"
	"github.com/nathoo/dungeoncore/types"
)

// Turn is the outcome of one enemy action on the active slot.
type Turn struct {
	Floor     int
	Enemy     int
	MonsterID int
	Index     int // -1 when nothing was eligible
	Rejected  []int
	Text      string
	Effects   types.Mechanics // what the chosen behaviour does
}

// EnemyTurn runs the behaviour lottery for the active slot. forced >= 0
// skips the lottery and reports that behaviour instead. The slot's counter
// and flags advance as the chosen behaviour dictates; HP is untouched.
func (e *Engine) EnemyTurn(battle types.BattleContext, forced int) Turn {
	d := e.Dungeon
	slot := d.Active()
	turn := Turn{
		Floor:     d.ActiveFloor,
		Enemy:     d.ActiveEnemy,
		MonsterID: slot.ID,
	}

	// Base attack before the slot's state changes.
	baseAtk := d.Multipliers.Atk.Scale(slot.BaseAtk())

	turn.Index, turn.Rejected = d.UseEnemySkill(e.battleFor(battle), forced)
	if turn.Index < 0 {
		return turn
	}

	skill, ok := e.Defs.Skill(slot.ID, turn.Index)
	if !ok {
		e.log.Warn("enemy used unknown behaviour", "monster", slot.ID, "index", turn.Index)
		return turn
	}
	turn.Text = e.Oracle.Describe(slot.ID, turn.Index)
	effects.Apply(&turn.Effects, skill.Effects, effects.Context{
		MonsterID: slot.ID,
		RuleID:    skill.ID,
		BaseAtk:   baseAtk,
		Strategy:  e.Strategy,
	})
	return turn
}

// Lines renders a turn for a text front end.
func (t Turn) Lines() []string {
	if t.Index < 0 {
		return []string{fmt.Sprintf("Enemy #%d has nothing to do.", t.MonsterID)}
	}
	out := []string{fmt.Sprintf("Enemy #%d uses behaviour %d: %s", t.MonsterID, t.Index, t.Text)}
	for _, h := range t.Effects.Hits {
		switch h.Kind {
		case "gravity":
			out = append(out, fmt.Sprintf("  Gravity: %d%% of current HP", h.Damage))
		default:
			if h.Count > 1 {
				out = append(out, fmt.Sprintf("  Damage: %d x%d = %d", h.Damage, h.Count, h.Damage*h.Count))
			} else {
				out = append(out, fmt.Sprintf("  Damage: %d", h.Damage))
			}
		}
	}
	if len(t.Rejected) > 0 {
		out = append(out, fmt.Sprintf("  Other candidates: %v", t.Rejected))
	}
	return out
}

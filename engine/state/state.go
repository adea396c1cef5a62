// Package state holds the immutable monster definitions compiled from Lua
// and the lookups the rest of the engine reads them through.
package state

import (
	"sort"

	"github.com/nathoo/dungeoncore/types"
)

// Defs holds the immutable monster definitions loaded from Lua.
type Defs struct {
	Monsters map[int]types.MonsterDef
}

// NewDefs returns an empty definition set.
func NewDefs() *Defs {
	return &Defs{Monsters: map[int]types.MonsterDef{}}
}

// Monster returns the definition for id.
func (d *Defs) Monster(id int) (types.MonsterDef, bool) {
	if d == nil {
		return types.MonsterDef{}, false
	}
	m, ok := d.Monsters[id]
	return m, ok
}

// Skills returns a monster's skills in declaration order. Unknown ids have none.
func (d *Defs) Skills(id int) []types.SkillDef {
	m, ok := d.Monster(id)
	if !ok {
		return nil
	}
	return m.Skills
}

// Skill returns the skill at idx in a monster's behaviour set.
func (d *Defs) Skill(id, idx int) (types.SkillDef, bool) {
	skills := d.Skills(id)
	if idx < 0 || idx >= len(skills) {
		return types.SkillDef{}, false
	}
	return skills[idx], true
}

// Rule returns the skill with the given stable rule ID.
func (d *Defs) Rule(id int, ruleID string) (types.SkillDef, bool) {
	for _, s := range d.Skills(id) {
		if s.ID == ruleID {
			return s, true
		}
	}
	return types.SkillDef{}, false
}

// IDs returns every monster id in ascending order.
func (d *Defs) IDs() []int {
	if d == nil {
		return nil
	}
	ids := make([]int, 0, len(d.Monsters))
	for id := range d.Monsters {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// HasType reports whether a monster carries the given type.
func HasType(m types.MonsterDef, t types.MonsterType) bool {
	for _, mt := range m.Types {
		if mt == t {
			return true
		}
	}
	return false
}

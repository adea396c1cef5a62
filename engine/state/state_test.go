package state

import (
	"testing"

	"github.com/nathoo/dungeoncore/types"
)

func testDefs() *Defs {
	return &Defs{
		Monsters: map[int]types.MonsterDef{
			4014: {
				ID:    4014,
				Name:  "Blazing Dragon",
				Types: []types.MonsterType{"dragon", "devil"},
				Skills: []types.SkillDef{
					{ID: "opener", Preempt: true},
					{ID: "claw"},
					{ID: "roar"},
				},
			},
			12: {ID: 12, Name: "Slime"},
		},
	}
}

func TestMonster(t *testing.T) {
	defs := testDefs()
	m, ok := defs.Monster(4014)
	if !ok || m.Name != "Blazing Dragon" {
		t.Fatalf("Monster(4014) = %+v, %v", m, ok)
	}
	if _, ok := defs.Monster(1); ok {
		t.Error("unknown id should not be found")
	}
}

func TestMonster_NilDefs(t *testing.T) {
	var defs *Defs
	if _, ok := defs.Monster(4014); ok {
		t.Error("nil defs should find nothing")
	}
	if ids := defs.IDs(); ids != nil {
		t.Errorf("nil defs IDs = %v", ids)
	}
}

func TestSkills(t *testing.T) {
	defs := testDefs()
	if n := len(defs.Skills(4014)); n != 3 {
		t.Errorf("expected 3 skills, got %d", n)
	}
	if s := defs.Skills(999); s != nil {
		t.Errorf("unknown monster should have no skills, got %v", s)
	}
}

func TestSkill_Bounds(t *testing.T) {
	defs := testDefs()
	if s, ok := defs.Skill(4014, 1); !ok || s.ID != "claw" {
		t.Errorf("Skill(4014, 1) = %+v, %v", s, ok)
	}
	for _, idx := range []int{-1, 3} {
		if _, ok := defs.Skill(4014, idx); ok {
			t.Errorf("Skill(4014, %d) should be out of range", idx)
		}
	}
}

func TestRule(t *testing.T) {
	defs := testDefs()
	if s, ok := defs.Rule(4014, "roar"); !ok || s.ID != "roar" {
		t.Errorf("Rule(roar) = %+v, %v", s, ok)
	}
	if _, ok := defs.Rule(4014, "bite"); ok {
		t.Error("missing rule should not be found")
	}
}

func TestIDs_Sorted(t *testing.T) {
	ids := testDefs().IDs()
	if len(ids) != 2 || ids[0] != 12 || ids[1] != 4014 {
		t.Errorf("IDs() = %v, want [12 4014]", ids)
	}
}

func TestHasType(t *testing.T) {
	m, _ := testDefs().Monster(4014)
	if !HasType(m, "devil") {
		t.Error("expected devil type")
	}
	if HasType(m, "machine") {
		t.Error("unexpected machine type")
	}
}

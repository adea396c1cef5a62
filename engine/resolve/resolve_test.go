package resolve

import (
	"errors"
	"testing"

	"github.com/nathoo/dungeoncore/engine/state"
	"github.com/nathoo/dungeoncore/types"
)

func testDefs() *state.Defs {
	defs := state.NewDefs()
	defs.Monsters[10] = types.MonsterDef{ID: 10, Name: "Stone Golem"}
	defs.Monsters[11] = types.MonsterDef{ID: 11, Name: "Iron Golem"}
	defs.Monsters[20] = types.MonsterDef{ID: 20, Name: "Dragon"}
	defs.Monsters[21] = types.MonsterDef{ID: 21, Name: "Dragon Knight"}
	defs.Monsters[30] = types.MonsterDef{ID: 30, Name: "Old Guard Captain"}
	return defs
}

func TestMonster(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"numeric id", "4014", 4014},
		{"hash id", "#10", 10},
		{"exact name", "Stone Golem", 10},
		{"case insensitive", "iron golem", 11},
		{"underscore form", "stone_golem", 10},
		{"exact beats partial", "dragon", 20},
		{"partial word", "knight", 21},
		{"several words any order", "captain guard", 30},
		{"surrounding space", "  Dragon Knight ", 21},
	}
	defs := testDefs()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Monster(defs, tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Monster(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestMonster_Ambiguous(t *testing.T) {
	_, err := Monster(testDefs(), "golem")
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguityError, got %T: %v", err, err)
	}
	if len(amb.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %v", amb.Candidates)
	}
	if amb.Candidates[0] != "Stone Golem #10" || amb.Candidates[1] != "Iron Golem #11" {
		t.Errorf("candidates should be in id order: %v", amb.Candidates)
	}
	if amb.Error() != "which golem? (Stone Golem #10, Iron Golem #11)" {
		t.Errorf("unexpected message: %s", amb.Error())
	}
}

func TestMonster_NotFound(t *testing.T) {
	for _, q := range []string{"slime", "", "___", "golem king"} {
		_, err := Monster(testDefs(), q)
		if _, ok := err.(*NotFoundError); !ok {
			t.Errorf("Monster(%q): expected NotFoundError, got %T: %v", q, err, err)
		}
	}
}

func TestMonster_NilDefs(t *testing.T) {
	if id, err := Monster(nil, "12"); err != nil || id != 12 {
		t.Errorf("numeric ids resolve without defs, got %d, %v", id, err)
	}
	if _, err := Monster(nil, "dragon"); err == nil {
		t.Error("expected not found with nil defs")
	}
}

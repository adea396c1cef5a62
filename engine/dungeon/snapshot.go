package dungeon

import (
	"github.com/nathoo/dungeoncore/engine/enemy"
	"github.com/nathoo/dungeoncore/engine/rational"
)

// Snapshot is the portable form of a dungeon. Multipliers are omitted when
// they are exactly 1 or NaN.
type Snapshot struct {
	Title    string          `json:"title"`
	IsNormal bool            `json:"isNormal,omitempty"`
	Floors   []FloorSnapshot `json:"floors"`
	HP       string          `json:"hp,omitempty"`
	Atk      string          `json:"atk,omitempty"`
	Def      string          `json:"def,omitempty"`
}

// FloorSnapshot lists the slots of one floor.
type FloorSnapshot struct {
	Enemies []EnemySnapshot `json:"enemies"`
}

// EnemySnapshot is one slot: behaviour-set id and level.
type EnemySnapshot struct {
	ID    int `json:"id"`
	Level int `json:"lv"`
}

// Snapshot captures the dungeon's title, floors and multipliers.
func (d *Dungeon) Snapshot() Snapshot {
	s := Snapshot{
		Title:    d.Title,
		IsNormal: d.IsNormal,
		Floors:   make([]FloorSnapshot, len(d.Floors)),
		HP:       multiplierText(d.Multipliers.HP),
		Atk:      multiplierText(d.Multipliers.Atk),
		Def:      multiplierText(d.Multipliers.Def),
	}
	for i, f := range d.Floors {
		enemies := make([]EnemySnapshot, len(f.Enemies))
		for j, e := range f.Enemies {
			enemies[j] = EnemySnapshot{ID: e.ID, Level: e.Level}
		}
		s.Floors[i] = FloorSnapshot{Enemies: enemies}
	}
	return s
}

func multiplierText(r rational.Rational) string {
	if r.IsNaN() || r.IsOne() {
		return ""
	}
	return r.String()
}

// LoadSnapshot replaces the dungeon with s, moves the cursor to (0, 0) and
// notifies observers.
func (d *Dungeon) LoadSnapshot(s Snapshot) {
	d.restore(s)
	d.publish(true)
}

// restore rebuilds the dungeon from s without publishing. Floors and slots
// are never left empty: a missing floor list becomes one default floor and
// an empty floor gets one default slot.
func (d *Dungeon) restore(s Snapshot) {
	d.Title = s.Title
	d.IsNormal = s.IsNormal

	floors := make([]*Floor, 0, len(s.Floors))
	for _, fs := range s.Floors {
		f := &Floor{Enemies: make([]*enemy.Enemy, 0, len(fs.Enemies))}
		for _, es := range fs.Enemies {
			e := enemy.New(es.ID, d.cards)
			if es.Level > 0 {
				e.Level = es.Level
			}
			f.Enemies = append(f.Enemies, e)
		}
		if len(f.Enemies) == 0 {
			f.Enemies = append(f.Enemies, enemy.New(DefaultMonsterID, d.cards))
		}
		floors = append(floors, f)
	}
	if len(floors) == 0 {
		floors = append(floors, NewFloor(d.cards))
	}
	d.Floors = floors

	d.Multipliers = enemy.Multipliers{
		HP:  parseMultiplier(s.HP),
		Atk: parseMultiplier(s.Atk),
		Def: parseMultiplier(s.Def),
	}
	d.setActive(0, 0)
}

func parseMultiplier(s string) rational.Rational {
	if s == "" {
		return rational.One()
	}
	return rational.Parse(s)
}

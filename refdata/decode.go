package refdata

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/nathoo/dungeoncore/engine/dungeon"
)

type rawEncounter struct {
	EnemyID  int `json:"enemy_id"`
	Level    int `json:"level"`
	Stage    int `json:"stage"`
	OrderIdx int `json:"order_idx"`
}

type rawSubDungeon struct {
	SubDungeonID int            `json:"sub_dungeon_id"`
	Name         string         `json:"name_na"`
	Floors       int            `json:"floors"`
	HPMult       *float64       `json:"hp_mult"`
	AtkMult      *float64       `json:"atk_mult"`
	DefMult      *float64       `json:"def_mult"`
	Encounters   []rawEncounter `json:"encounters"`
}

type rawDungeon struct {
	DungeonID   int             `json:"dungeon_id"`
	Name        string          `json:"name_na"`
	SubDungeons []rawSubDungeon `json:"sub_dungeons"`
}

// record is one decoded sub-dungeon.
type record struct {
	id   int
	snap dungeon.Snapshot
}

// decode turns a reference dump into one snapshot per sub-dungeon, in file
// order.
func decode(data []byte, log *slog.Logger) ([]record, error) {
	var raw []rawDungeon
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding reference data: %w", err)
	}

	var out []record
	for _, d := range raw {
		for _, sub := range d.SubDungeons {
			floors := make([]dungeon.FloorSnapshot, max(sub.Floors, 0))
			for i := range floors {
				floors[i].Enemies = []dungeon.EnemySnapshot{}
			}
			for _, enc := range sub.Encounters {
				stage := min(max(enc.Stage, 1), len(floors))
				if stage < 1 {
					log.Warn("encounter has no floor to go on",
						"dungeon", d.DungeonID, "sub_dungeon", sub.SubDungeonID, "enemy", enc.EnemyID)
					continue
				}
				f := &floors[stage-1]
				f.Enemies = append(f.Enemies, dungeon.EnemySnapshot{ID: enc.EnemyID, Level: enc.Level})
			}
			out = append(out, record{
				id: sub.SubDungeonID,
				snap: dungeon.Snapshot{
					Title:  d.Name + " - " + sub.Name,
					Floors: floors,
					HP:     multText(sub.HPMult),
					Atk:    multText(sub.AtkMult),
					Def:    multText(sub.DefMult),
				},
			})
		}
	}
	return out, nil
}

// multText renders a multiplier with the fewest digits that read back
// exactly. Missing means 1.
func multText(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

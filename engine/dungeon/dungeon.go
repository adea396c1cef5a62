// Package dungeon holds the editable encounter: floors of enemy slots, the
// dungeon-wide multipliers and the active cursor. All edits go through Apply,
// which runs a batch of commands in a fixed phase order and then notifies
// observers.
package dungeon

import (
	"context"
	"log/slog"
	"time"

	"github.com/nathoo/dungeoncore/engine/enemy"
	"github.com/nathoo/dungeoncore/engine/events"
	"github.com/nathoo/dungeoncore/engine/lottery"
	"github.com/nathoo/dungeoncore/types"
)

// DefaultMonsterID is the behaviour-set id given to new slots.
const DefaultMonsterID = 0

// DefaultBoardWidth is the board width of a hand-built dungeon.
const DefaultBoardWidth = 6

// Oracle answers behaviour questions about a behaviour set.
type Oracle interface {
	Candidates(ctx types.CombatantContext) []types.Candidate
	SkillCount(monsterID int) int
	Describe(monsterID, idx int) string
	AlwaysActive(monsterID, idx int) bool
}

// Source resolves a sub-dungeon id to a snapshot. Lookup blocks until the
// underlying data is available or ctx ends.
type Source interface {
	Lookup(ctx context.Context, id int) (Snapshot, bool, error)
}

// Options configures a new Dungeon. Every field is optional.
type Options struct {
	Cards  enemy.Cards
	Oracle Oracle
	Source Source
	Random lottery.Source
	Logger *slog.Logger
}

// Dungeon is a sequence of floors plus metadata. The zero value is not
// usable; call New.
type Dungeon struct {
	ID                    int
	Title                 string
	IsNormal              bool
	FixedTime             int
	BoardWidth            int
	AllAttributesRequired bool
	NoDupes               bool

	Floors      []*Floor
	Multipliers enemy.Multipliers
	ActiveFloor int
	ActiveEnemy int

	cards  enemy.Cards
	oracle Oracle
	source Source
	random lottery.Source
	log    *slog.Logger
	bus    events.Bus
}

// New returns a hand-built dungeon with one floor holding one default slot.
func New(opts Options) *Dungeon {
	d := &Dungeon{
		ID:          -1,
		BoardWidth:  DefaultBoardWidth,
		Multipliers: enemy.DefaultMultipliers(),
		cards:       opts.Cards,
		oracle:      opts.Oracle,
		source:      opts.Source,
		random:      opts.Random,
		log:         opts.Logger,
	}
	if d.random == nil {
		d.random = lottery.NewRNG(time.Now().UnixNano())
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	d.Floors = []*Floor{NewFloor(d.cards)}
	d.setActive(0, 0)
	return d
}

// Subscribe registers an observer and returns a function that removes it.
func (d *Dungeon) Subscribe(o events.Observer) func() {
	return d.bus.Subscribe(o)
}

// Rebind points every slot and future slot at new behaviour data, e.g. after
// scripts are reloaded. The active slot is reset under the new card data.
func (d *Dungeon) Rebind(cards enemy.Cards, oracle Oracle) {
	d.cards = cards
	d.oracle = oracle
	for _, f := range d.Floors {
		for _, e := range f.Enemies {
			e.SetCards(cards)
		}
	}
	d.Active().Reset(d.Multipliers)
}

// SetSource replaces the reference data source used by LoadDungeon.
func (d *Dungeon) SetSource(src Source) {
	d.source = src
}

// Floor returns the active floor.
func (d *Dungeon) Floor() *Floor {
	return d.Floors[d.ActiveFloor]
}

// Active returns the active slot.
func (d *Dungeon) Active() *enemy.Enemy {
	return d.Floor().ActiveEnemy()
}

// Cursor returns the active (floor, slot) pair.
func (d *Dungeon) Cursor() events.Cursor {
	return events.Cursor{Floor: d.ActiveFloor, Enemy: d.ActiveEnemy}
}

// setActive is the only path that moves the cursor. The newly active slot
// is reset to full health under the dungeon multipliers.
func (d *Dungeon) setActive(floor, slot int) {
	d.ActiveFloor = floor
	d.ActiveEnemy = slot
	d.Floors[floor].Active = slot
	d.Active().Reset(d.Multipliers)
}

// AddFloor appends an empty floor and makes its first slot active.
func (d *Dungeon) AddFloor() {
	d.Floors = append(d.Floors, NewFloor(d.cards))
	d.setActive(len(d.Floors)-1, 0)
}

// DeleteFloor removes floor i. The cursor moves back one floor when it was
// at or after i.
func (d *Dungeon) DeleteFloor(i int) error {
	if i < 0 || i >= len(d.Floors) {
		d.log.Warn("unable to delete floor", "floor", i, "error", ErrIndexOutOfRange)
		return ErrIndexOutOfRange
	}
	if len(d.Floors) == 1 {
		d.log.Warn("unable to delete floor", "floor", i, "error", ErrLastFloor)
		return ErrLastFloor
	}
	d.Floors = append(d.Floors[:i:i], d.Floors[i+1:]...)
	floor := d.ActiveFloor
	if floor >= i {
		floor--
	}
	if floor < 0 {
		floor = 0
	}
	d.setActive(floor, d.Floors[floor].Active)
	return nil
}

// AddEnemy appends a slot to the active floor and makes it active.
func (d *Dungeon) AddEnemy() {
	idx := d.Floor().AddEnemy(d.cards)
	d.setActive(d.ActiveFloor, idx)
}

// DeleteEnemy removes slot i from the active floor.
func (d *Dungeon) DeleteEnemy(i int) error {
	if err := d.Floor().DeleteEnemy(i); err != nil {
		d.log.Warn("unable to delete enemy", "floor", d.ActiveFloor, "enemy", i, "error", err)
		return err
	}
	d.setActive(d.ActiveFloor, d.Floor().Active)
	return nil
}

// UseEnemySkill picks the active slot's next behaviour. A forced index is
// returned as is. Otherwise the oracle's candidates go through the weighted
// lottery, the winner's counter and flags are written to the slot and
// observers are told the outcome. The returned index is -1 when nothing
// was eligible.
func (d *Dungeon) UseEnemySkill(battle types.BattleContext, forced int) (int, []int) {
	if forced >= 0 {
		return forced, []int{}
	}
	e := d.Active()
	idx, rejected := -1, []int{}
	if d.oracle != nil {
		cands := d.oracle.Candidates(e.Context(d.Multipliers, battle))
		if len(cands) > 0 {
			chosen, rej, ok := lottery.Select(cands, lottery.Draw(d.random, cands))
			rejected = rej
			if ok {
				idx = chosen.Index
				e.Counter = chosen.Counter
				e.Flags = chosen.Flags
			}
		}
	}
	d.bus.EnemySkillUsed(events.SkillUse{
		Floor:    d.ActiveFloor,
		Enemy:    d.ActiveEnemy,
		Index:    idx,
		Rejected: rejected,
	})
	return idx, rejected
}

// View renders the state observers redraw from. full adds the cursor and
// the active slot's behaviour lines.
func (d *Dungeon) View(full bool) events.View {
	floors := make([][]int, len(d.Floors))
	for i, f := range d.Floors {
		floors[i] = f.IDs()
	}
	e := d.Active()
	m := d.Multipliers
	v := events.View{
		Title:     d.Title,
		Floors:    floors,
		HP:        m.HP.String(),
		Atk:       m.Atk.String(),
		Def:       m.Def.String(),
		MonsterID: e.ID,
		Stats: events.Stats{
			Level:                e.Level,
			CurrentHP:            e.CurrentHP,
			PercentHP:            e.HPPercent(m),
			MaxHP:                e.MaxHP(m),
			BaseAtk:              e.BaseAtk(),
			Enrage:               e.Enrage,
			Atk:                  e.Atk(m),
			BaseDef:              e.BaseDef(),
			IgnoreDefensePercent: e.IgnoreDefensePercent,
			Def:                  e.Def(m),
			Resolve:              e.Resolve(m),
			SuperResolve:         e.SuperResolve(m),
			TypeResists:          e.TypeResists(),
			AttrResists:          e.AttrResists(),
			StatusShield:         e.StatusShield,
			Invincible:           e.Invincible,
			Attribute:            e.CurrentAttribute(),
			ComboAbsorb:          e.ComboAbsorb,
			DamageAbsorb:         e.DamageAbsorb,
			DamageVoid:           e.DamageVoid,
			AttributeAbsorb:      e.AttributeAbsorb,
			DamageShieldPercent:  e.DamageShieldPercent,
			MaxCharges:           e.MaxCharges(),
			Charges:              e.Charges,
			Counter:              e.Counter,
			Flags:                e.Flags,
		},
	}
	if full {
		c := d.Cursor()
		v.Active = &c
		v.Skills = d.skillLines(e.ID)
	}
	return v
}

func (d *Dungeon) skillLines(monsterID int) []events.SkillLine {
	if d.oracle == nil {
		return nil
	}
	n := d.oracle.SkillCount(monsterID)
	lines := make([]events.SkillLine, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, events.SkillLine{
			Text:         d.oracle.Describe(monsterID, i),
			AlwaysActive: d.oracle.AlwaysActive(monsterID, i),
		})
	}
	return lines
}

func (d *Dungeon) publish(full bool) {
	d.bus.DungeonUpdated(d.View(full))
	d.bus.EnemyChanged(events.EnemyRef{
		Floor:     d.ActiveFloor,
		Enemy:     d.ActiveEnemy,
		MonsterID: d.Active().ID,
	})
}

package dungeon

import (
	"context"
	"fmt"

	"github.com/nathoo/dungeoncore/engine/enemy"
	"github.com/nathoo/dungeoncore/engine/rational"
	"github.com/nathoo/dungeoncore/types"
)

// phase orders command processing inside one Apply call.
type phase int

const (
	phaseLoad phase = iota
	phaseCursor
	phaseRemoval
	phaseMultipliers
	phaseIdentity
	phaseFields
)

// Command is one edit. The concrete types below are the only implementations.
type Command interface {
	phase() phase
}

// slotCommand edits the active slot or the dungeon metadata.
type slotCommand interface {
	Command
	apply(d *Dungeon, e *enemy.Enemy)
}

// LoadDungeon replaces the whole dungeon with reference data.
type LoadDungeon struct{ ID int }

// SetActiveFloor moves the cursor to slot 0 of a floor.
type SetActiveFloor struct{ Floor int }

// SetActiveEnemy moves the cursor within the target floor.
type SetActiveEnemy struct{ Enemy int }

// AddFloor appends a floor and moves the cursor to it.
type AddFloor struct{}

// AddEnemy appends a slot to the target floor and moves the cursor to it.
type AddEnemy struct{}

// RemoveFloor deletes a floor. Floor 0 is reserved and never removed.
type RemoveFloor struct{ Floor int }

// RemoveEnemy deletes a slot of the active floor.
type RemoveEnemy struct{ Enemy int }

// SetHPMultiplier sets the dungeon HP multiplier from text ("1.5", "3/2").
type SetHPMultiplier struct{ Value string }

// SetAtkMultiplier sets the dungeon attack multiplier from text.
type SetAtkMultiplier struct{ Value string }

// SetDefMultiplier sets the dungeon defense multiplier from text.
type SetDefMultiplier struct{ Value string }

type (
	SetHP              struct{ HP int }
	SetHPPercent       struct{ Percent int }
	SetEnrage          struct{ Enrage float64 }
	SetDefenseBreak    struct{ Percent int }
	SetLevel           struct{ Level int }
	SetMonsterID       struct{ ID int }
	SetStatusShield    struct{ On bool }
	SetInvincible      struct{ On bool }
	SetAttribute       struct{ Attribute types.Attribute }
	SetComboAbsorb     struct{ Combos int }
	SetDamageShield    struct{ Percent int }
	SetDamageAbsorb    struct{ On bool }
	SetDamageVoid      struct{ On bool }
	SetAttributeAbsorb struct{ Attributes []types.Attribute }
	SetCharges         struct{ Charges int }
	SetCounter         struct{ Counter int }
	SetFlags           struct{ Flags int }
)

type (
	SetTitle      struct{ Title string }
	SetFixedTime  struct{ Seconds int }
	SetBoardWidth struct{ Width int }
	SetNormal     struct{ On bool }
)

func (LoadDungeon) phase() phase        { return phaseLoad }
func (SetActiveFloor) phase() phase     { return phaseCursor }
func (SetActiveEnemy) phase() phase     { return phaseCursor }
func (AddFloor) phase() phase           { return phaseCursor }
func (AddEnemy) phase() phase           { return phaseCursor }
func (RemoveFloor) phase() phase        { return phaseRemoval }
func (RemoveEnemy) phase() phase        { return phaseRemoval }
func (SetHPMultiplier) phase() phase    { return phaseMultipliers }
func (SetAtkMultiplier) phase() phase   { return phaseMultipliers }
func (SetDefMultiplier) phase() phase   { return phaseMultipliers }
func (SetLevel) phase() phase           { return phaseIdentity }
func (SetMonsterID) phase() phase       { return phaseIdentity }
func (SetHP) phase() phase              { return phaseFields }
func (SetHPPercent) phase() phase       { return phaseFields }
func (SetEnrage) phase() phase          { return phaseFields }
func (SetDefenseBreak) phase() phase    { return phaseFields }
func (SetStatusShield) phase() phase    { return phaseFields }
func (SetInvincible) phase() phase      { return phaseFields }
func (SetAttribute) phase() phase       { return phaseFields }
func (SetComboAbsorb) phase() phase     { return phaseFields }
func (SetDamageShield) phase() phase    { return phaseFields }
func (SetDamageAbsorb) phase() phase    { return phaseFields }
func (SetDamageVoid) phase() phase      { return phaseFields }
func (SetAttributeAbsorb) phase() phase { return phaseFields }
func (SetCharges) phase() phase         { return phaseFields }
func (SetCounter) phase() phase         { return phaseFields }
func (SetFlags) phase() phase           { return phaseFields }
func (SetTitle) phase() phase           { return phaseFields }
func (SetFixedTime) phase() phase       { return phaseFields }
func (SetBoardWidth) phase() phase      { return phaseFields }
func (SetNormal) phase() phase          { return phaseFields }

// A new level or behaviour set starts at full health. Level 0 means
// unset and leaves the slot alone; any other value is taken as given and
// the stat curve treats levels below 1 as level 1.
func (c SetLevel) apply(d *Dungeon, e *enemy.Enemy) {
	if c.Level == 0 {
		d.log.Warn("ignoring level 0")
		return
	}
	e.Level = c.Level
	e.Reset(d.Multipliers)
}

func (c SetMonsterID) apply(d *Dungeon, e *enemy.Enemy) {
	e.ID = c.ID
	e.Charges = e.MaxCharges()
	e.Reset(d.Multipliers)
}

func (c SetHP) apply(d *Dungeon, e *enemy.Enemy)        { e.SetHP(c.HP, d.Multipliers) }
func (c SetHPPercent) apply(d *Dungeon, e *enemy.Enemy) { e.SetHPPercent(c.Percent, d.Multipliers) }
func (c SetEnrage) apply(_ *Dungeon, e *enemy.Enemy)    { e.Enrage = c.Enrage }
func (c SetDefenseBreak) apply(_ *Dungeon, e *enemy.Enemy) {
	e.IgnoreDefensePercent = c.Percent
}
func (c SetStatusShield) apply(_ *Dungeon, e *enemy.Enemy) { e.StatusShield = c.On }
func (c SetInvincible) apply(_ *Dungeon, e *enemy.Enemy)   { e.Invincible = c.On }
func (c SetAttribute) apply(_ *Dungeon, e *enemy.Enemy)    { e.Attribute = c.Attribute }
func (c SetComboAbsorb) apply(_ *Dungeon, e *enemy.Enemy)  { e.ComboAbsorb = c.Combos }
func (c SetDamageShield) apply(_ *Dungeon, e *enemy.Enemy) {
	e.DamageShieldPercent = c.Percent
}
func (c SetDamageAbsorb) apply(_ *Dungeon, e *enemy.Enemy) { e.DamageAbsorb = c.On }
func (c SetDamageVoid) apply(_ *Dungeon, e *enemy.Enemy)   { e.DamageVoid = c.On }
func (c SetAttributeAbsorb) apply(_ *Dungeon, e *enemy.Enemy) {
	e.AttributeAbsorb = append([]types.Attribute(nil), c.Attributes...)
}
func (c SetCharges) apply(_ *Dungeon, e *enemy.Enemy) { e.Charges = c.Charges }
func (c SetCounter) apply(_ *Dungeon, e *enemy.Enemy) { e.Counter = c.Counter }
func (c SetFlags) apply(_ *Dungeon, e *enemy.Enemy)   { e.Flags = c.Flags }

func (c SetTitle) apply(d *Dungeon, _ *enemy.Enemy)     { d.Title = c.Title }
func (c SetFixedTime) apply(d *Dungeon, _ *enemy.Enemy) { d.FixedTime = c.Seconds }
func (c SetBoardWidth) apply(d *Dungeon, _ *enemy.Enemy) {
	d.BoardWidth = c.Width
}
func (c SetNormal) apply(d *Dungeon, _ *enemy.Enemy) { d.IsNormal = c.On }

// Apply runs a batch of commands and notifies observers once. Commands are
// processed by phase, not by their order in cmds:
//
//  1. load a dungeon from the reference source
//  2. resolve the cursor (set floor, set slot, add floor, add slot)
//  3. remove floors and slots
//  4. dungeon multipliers
//  5. level and behaviour set of the active slot
//  6. remaining slot fields and dungeon metadata
//
// Commands of the same phase run in the order given. Rejected edits are
// logged and skipped. The only error is a context error while waiting for
// reference data, in which case nothing is changed or published.
func (d *Dungeon) Apply(ctx context.Context, cmds ...Command) error {
	phases := make(map[phase][]Command)
	for _, cmd := range cmds {
		phases[cmd.phase()] = append(phases[cmd.phase()], cmd)
	}

	before := d.Cursor()
	full := false

	for _, cmd := range phases[phaseLoad] {
		loaded, err := d.load(ctx, cmd.(LoadDungeon).ID)
		if err != nil {
			return err
		}
		full = full || loaded
	}

	d.resolveCursor(phases[phaseCursor])

	for _, cmd := range phases[phaseRemoval] {
		switch c := cmd.(type) {
		case RemoveFloor:
			if c.Floor != 0 {
				_ = d.DeleteFloor(c.Floor)
			}
		case RemoveEnemy:
			_ = d.DeleteEnemy(c.Enemy)
		}
	}

	for _, cmd := range phases[phaseMultipliers] {
		switch c := cmd.(type) {
		case SetHPMultiplier:
			d.Multipliers.HP = rational.Parse(c.Value)
		case SetAtkMultiplier:
			d.Multipliers.Atk = rational.Parse(c.Value)
		case SetDefMultiplier:
			d.Multipliers.Def = rational.Parse(c.Value)
		}
	}
	if len(phases[phaseMultipliers]) > 0 {
		d.Active().Reset(d.Multipliers)
	}

	for _, p := range []phase{phaseIdentity, phaseFields} {
		for _, cmd := range phases[p] {
			if _, ok := cmd.(SetMonsterID); ok {
				full = true
			}
			cmd.(slotCommand).apply(d, d.Active())
		}
	}

	if d.Cursor() != before {
		full = true
	}
	d.publish(full)
	return nil
}

// resolveCursor evaluates the cursor-phase commands in their fixed order
// and applies the resulting target once.
func (d *Dungeon) resolveCursor(cmds []Command) {
	if len(cmds) == 0 {
		return
	}
	var (
		setFloor, setEnemy *int
		addFloor, addEnemy bool
	)
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case SetActiveFloor:
			f := c.Floor
			setFloor = &f
		case SetActiveEnemy:
			e := c.Enemy
			setEnemy = &e
		case AddFloor:
			addFloor = true
		case AddEnemy:
			addEnemy = true
		}
	}

	floor, slot := d.ActiveFloor, d.ActiveEnemy
	if setFloor != nil {
		if *setFloor < 0 || *setFloor >= len(d.Floors) {
			d.log.Warn("ignoring active floor out of range", "floor", *setFloor, "floors", len(d.Floors))
		} else {
			floor, slot = *setFloor, 0
		}
	}
	if setEnemy != nil {
		if n := len(d.Floors[floor].Enemies); *setEnemy < 0 || *setEnemy >= n {
			d.log.Warn("ignoring active enemy out of range", "floor", floor, "enemy", *setEnemy, "enemies", n)
		} else {
			slot = *setEnemy
		}
	}
	if addFloor {
		d.Floors = append(d.Floors, NewFloor(d.cards))
		floor, slot = len(d.Floors)-1, 0
	}
	if addEnemy {
		slot = d.Floors[floor].AddEnemy(d.cards)
	}
	d.setActive(floor, slot)
}

// load replaces the dungeon with reference data for id. It reports whether
// anything was loaded.
func (d *Dungeon) load(ctx context.Context, id int) (bool, error) {
	if d.source == nil {
		d.log.Warn("no dungeon source configured", "sub_dungeon", id)
		return false, nil
	}
	snap, ok, err := d.source.Lookup(ctx, id)
	switch {
	case ctx.Err() != nil:
		return false, fmt.Errorf("loading dungeon %d: %w", id, ctx.Err())
	case err != nil:
		d.log.Warn("dungeon data unavailable", "sub_dungeon", id, "error", err)
		return false, nil
	case !ok:
		d.log.Warn("invalid sub dungeon", "sub_dungeon", id)
		return false, nil
	}
	d.restore(snap)
	d.ID = id
	return true, nil
}

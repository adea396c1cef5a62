// Package enemy models a single combatant slot in a dungeon floor. Derived
// stats are always computed against multipliers supplied by the caller;
// a slot never holds a reference to its dungeon.
package enemy

import (
	"math"

	"github.com/nathoo/dungeoncore/engine/rational"
	"github.com/nathoo/dungeoncore/types"
)

// Cards looks up card data for a behaviour-set id.
type Cards interface {
	Monster(id int) (types.MonsterDef, bool)
}

// Multipliers are the dungeon-wide stat multipliers.
type Multipliers struct {
	HP  rational.Rational
	Atk rational.Rational
	Def rational.Rational
}

// DefaultMultipliers returns exact 1 for every stat.
func DefaultMultipliers() Multipliers {
	return Multipliers{HP: rational.One(), Atk: rational.One(), Def: rational.One()}
}

// placeholder stands in for ids the card source does not know.
var placeholder = types.MonsterDef{
	MaxLevel: 1,
	HP:       types.StatRange{Min: 1, Max: 1},
}

// Enemy is one combatant slot.
type Enemy struct {
	ID                   int
	Level                int
	CurrentHP            int
	Enrage               float64
	IgnoreDefensePercent int
	Charges              int
	Counter              int
	Flags                int
	StatusShield         bool
	Invincible           bool
	Attribute            types.Attribute // override; AttrNone = card attribute
	ComboAbsorb          int
	DamageAbsorb         bool
	DamageVoid           bool
	AttributeAbsorb      []types.Attribute
	DamageShieldPercent  int
	OtherEnemyHP         int

	cards Cards
}

// New returns a level 1 slot for id. cards may be nil.
func New(id int, cards Cards) *Enemy {
	e := &Enemy{
		ID:           id,
		Level:        1,
		Enrage:       1,
		OtherEnemyHP: 100,
		cards:        cards,
	}
	e.Charges = e.MaxCharges()
	return e
}

// SetCards rebinds the card source, e.g. after behaviour data reloads.
func (e *Enemy) SetCards(cards Cards) {
	e.cards = cards
}

// Card returns the card data, or a placeholder for unknown ids.
func (e *Enemy) Card() types.MonsterDef {
	if e.cards != nil {
		if m, ok := e.cards.Monster(e.ID); ok {
			return m
		}
	}
	return placeholder
}

// Known reports whether the card source has data for this slot's id.
func (e *Enemy) Known() bool {
	if e.cards == nil {
		return false
	}
	_, ok := e.cards.Monster(e.ID)
	return ok
}

// Curve interpolates a stat between level 1 and max level.
func Curve(r types.StatRange, level, maxLevel int, growth float64) int {
	if maxLevel <= 1 || level <= 1 {
		return r.Min
	}
	if level > maxLevel {
		level = maxLevel
	}
	if growth <= 0 {
		growth = 1
	}
	frac := math.Pow(float64(level-1)/float64(maxLevel-1), growth)
	return int(math.Round(float64(r.Min) + float64(r.Max-r.Min)*frac))
}

func (e *Enemy) stat(r types.StatRange) int {
	c := e.Card()
	return Curve(r, e.Level, c.MaxLevel, c.Growth)
}

// BaseHP is max HP before the dungeon multiplier.
func (e *Enemy) BaseHP() int {
	return e.stat(e.Card().HP)
}

// MaxHP is max HP after the dungeon multiplier, never below zero.
func (e *Enemy) MaxHP(m Multipliers) int {
	if hp := m.HP.Scale(e.BaseHP()); hp > 0 {
		return hp
	}
	return 0
}

// BaseAtk is attack before multipliers and enrage.
func (e *Enemy) BaseAtk() int {
	return e.stat(e.Card().Atk)
}

// Atk is attack after the dungeon multiplier and enrage.
func (e *Enemy) Atk(m Multipliers) int {
	return clampInt(math.Round(float64(m.Atk.Scale(e.BaseAtk())) * e.Enrage))
}

// BaseDef is defense before multipliers and defense break.
func (e *Enemy) BaseDef() int {
	return e.stat(e.Card().Def)
}

// Def is defense after the dungeon multiplier and defense break.
func (e *Enemy) Def(m Multipliers) int {
	def := m.Def.Scale(e.BaseDef())
	def = clampInt(math.Round(float64(def) * float64(100-e.IgnoreDefensePercent) / 100))
	if def < 0 {
		return 0
	}
	return def
}

// HPPercent is current HP as a rounded percentage of max HP.
func (e *Enemy) HPPercent(m Multipliers) int {
	maxHP := e.MaxHP(m)
	if maxHP <= 0 {
		return 0
	}
	return int(math.Round(float64(e.CurrentHP) / float64(maxHP) * 100))
}

// Resolve is the HP above which a lethal hit leaves the enemy at 1 HP.
// Zero when the card has no resolve.
func (e *Enemy) Resolve(m Multipliers) int {
	return percentOf(e.MaxHP(m), e.Card().ResolvePercent, false)
}

// SuperResolve is the super-resolve threshold, zero when absent.
func (e *Enemy) SuperResolve(m Multipliers) int {
	return percentOf(e.MaxHP(m), e.Card().SuperResolvePercent, false)
}

// CurrentAttribute is the override attribute if set, else the card's.
func (e *Enemy) CurrentAttribute() types.Attribute {
	if e.Attribute != types.AttrNone {
		return e.Attribute
	}
	return e.Card().Attribute
}

// TypeResists returns the card's type resists.
func (e *Enemy) TypeResists() map[types.MonsterType]int {
	return e.Card().TypeResists
}

// AttrResists returns the card's attribute resists.
func (e *Enemy) AttrResists() map[types.Attribute]int {
	return e.Card().AttrResists
}

// MaxCharges returns the card's skill charge capacity.
func (e *Enemy) MaxCharges() int {
	return e.Card().MaxCharges
}

// Reset restores the slot to full health under m.
func (e *Enemy) Reset(m Multipliers) {
	e.CurrentHP = e.MaxHP(m)
}

// SetHP assigns current HP clamped to [0, MaxHP].
func (e *Enemy) SetHP(hp int, m Multipliers) {
	maxHP := e.MaxHP(m)
	switch {
	case hp > maxHP:
		hp = maxHP
	case hp < 0:
		hp = 0
	}
	e.CurrentHP = hp
}

// SetHPPercent clamps pct to [0, 100] and sets HP to ceil(MaxHP×pct/100).
func (e *Enemy) SetHPPercent(pct int, m Multipliers) {
	switch {
	case pct > 100:
		pct = 100
	case pct < 0:
		pct = 0
	}
	e.CurrentHP = percentOf(e.MaxHP(m), pct, true)
}

// percentOf returns n×pct/100 for n >= 0 and pct in [0, 100] without
// overflowing when n is near the int limit.
func percentOf(n, pct int, ceil bool) int {
	rem := n % 100 * pct
	if ceil {
		rem += 99
	}
	return n/100*pct + rem/100
}

// clampInt converts f to int, saturating at the int limits. NaN is 0.
func clampInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// Context builds the oracle's view of this slot.
func (e *Enemy) Context(m Multipliers, battle types.BattleContext) types.CombatantContext {
	return types.CombatantContext{
		MonsterID: e.ID,
		Level:     e.Level,
		Attribute: e.CurrentAttribute(),
		Atk:       e.Atk(m),
		HPPercent: e.HPPercent(m),
		Charges:   e.Charges,
		Flags:     e.Flags,
		Counter:   e.Counter,
		PartnerHP: e.OtherEnemyHP,
		Battle:    battle,
	}
}

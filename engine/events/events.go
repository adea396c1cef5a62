// Package events defines what the dungeon publishes to its observers and
// dispatches it in a single synchronous pass.
package events

import "github.com/nathoo/dungeoncore/types"

// Cursor is the active (floor, slot) pair.
type Cursor struct {
	Floor int
	Enemy int
}

// Stats is the stat block of the active slot.
type Stats struct {
	Level                int
	CurrentHP            int
	PercentHP            int
	MaxHP                int
	BaseAtk              int
	Enrage               float64
	Atk                  int
	BaseDef              int
	IgnoreDefensePercent int
	Def                  int
	Resolve              int
	SuperResolve         int
	TypeResists          map[types.MonsterType]int
	AttrResists          map[types.Attribute]int
	StatusShield         bool
	Invincible           bool
	Attribute            types.Attribute
	ComboAbsorb          int
	DamageAbsorb         bool
	DamageVoid           bool
	AttributeAbsorb      []types.Attribute
	DamageShieldPercent  int
	MaxCharges           int
	Charges              int
	Counter              int
	Flags                int
}

// SkillLine is one rendered behaviour of the active slot.
type SkillLine struct {
	Text         string
	AlwaysActive bool
}

// View is everything an editor needs to redraw after a change.
// Active and Skills are only set when the cursor moved or the active slot
// changed behaviour set.
type View struct {
	Title     string
	Floors    [][]int // behaviour-set ids per floor
	Active    *Cursor
	HP        string
	Atk       string
	Def       string
	Stats     Stats
	MonsterID int
	Skills    []SkillLine
}

// EnemyRef identifies the slot that changed.
type EnemyRef struct {
	Floor     int
	Enemy     int
	MonsterID int
}

// SkillUse reports a lottery result.
type SkillUse struct {
	Floor    int
	Enemy    int
	Index    int
	Rejected []int
}

// Observer receives dungeon notifications after state has changed and
// before the mutating call returns.
type Observer interface {
	DungeonUpdated(View)
	EnemyChanged(EnemyRef)
	EnemySkillUsed(SkillUse)
}

// Funcs adapts plain functions to Observer. Nil fields are skipped.
type Funcs struct {
	OnUpdate func(View)
	OnEnemy  func(EnemyRef)
	OnSkill  func(SkillUse)
}

func (f Funcs) DungeonUpdated(v View) {
	if f.OnUpdate != nil {
		f.OnUpdate(v)
	}
}

func (f Funcs) EnemyChanged(r EnemyRef) {
	if f.OnEnemy != nil {
		f.OnEnemy(r)
	}
}

func (f Funcs) EnemySkillUsed(u SkillUse) {
	if f.OnSkill != nil {
		f.OnSkill(u)
	}
}

// Bus fans notifications out to subscribers in subscription order.
// Single pass: an observer that mutates the dungeon from inside a
// notification triggers its own, separate dispatch.
type Bus struct {
	observers []subscriber
	next      int
}

type subscriber struct {
	id  int
	obs Observer
}

// Subscribe adds an observer and returns a function that removes it.
func (b *Bus) Subscribe(o Observer) func() {
	b.next++
	id := b.next
	b.observers = append(b.observers, subscriber{id: id, obs: o})
	return func() {
		for i, sub := range b.observers {
			if sub.id == id {
				b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	return len(b.observers)
}

// DungeonUpdated dispatches a view to every observer.
func (b *Bus) DungeonUpdated(v View) {
	for _, sub := range b.observers {
		sub.obs.DungeonUpdated(v)
	}
}

// EnemyChanged dispatches a slot change to every observer.
func (b *Bus) EnemyChanged(r EnemyRef) {
	for _, sub := range b.observers {
		sub.obs.EnemyChanged(r)
	}
}

// EnemySkillUsed dispatches a lottery result to every observer.
func (b *Bus) EnemySkillUsed(u SkillUse) {
	for _, sub := range b.observers {
		sub.obs.EnemySkillUsed(u)
	}
}

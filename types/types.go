// Package types defines the shared data structures for the dungeoncore engine.
// This package contains only type definitions: no logic, no methods.
package types

// Attribute is an orb/monster element.
type Attribute string

const (
	AttrNone  Attribute = ""
	AttrFire  Attribute = "fire"
	AttrWater Attribute = "water"
	AttrWood  Attribute = "wood"
	AttrLight Attribute = "light"
	AttrDark  Attribute = "dark"
)

// Attributes lists every real attribute in display order.
var Attributes = []Attribute{AttrFire, AttrWater, AttrWood, AttrLight, AttrDark}

// MonsterType is a monster classification such as "dragon" or "machine".
type MonsterType string

// StatRange is the value of a stat at level 1 and at max level.
type StatRange struct {
	Min int
	Max int
}

// MonsterDef is the immutable card data and behaviour set for one monster.
type MonsterDef struct {
	ID                  int
	Name                string
	Attribute           Attribute
	SubAttribute        Attribute
	Types               []MonsterType
	MaxLevel            int
	HP                  StatRange
	Atk                 StatRange
	Def                 StatRange
	Growth              float64 // curve exponent, 1 = linear
	ResolvePercent      int     // survive a lethal hit above this HP percent
	SuperResolvePercent int
	MaxCharges          int
	TypeResists         map[MonsterType]int // percent damage reduction
	AttrResists         map[Attribute]int
	Skills              []SkillDef
}

// Condition is a predicate that must be true for a skill to be eligible.
type Condition struct {
	Type   string         // "preempt", "hp_below", "flag_not", etc.
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// SkillEffect is one thing a skill does to the player's board or team.
type SkillEffect struct {
	Type   string         // "attack", "bind", "skyfall", ...
	Params map[string]any // effect-specific parameters
}

// SkillDef is a single enemy behaviour. ID is stable within its monster.
type SkillDef struct {
	ID          string
	Name        string
	Chance      int // relative weight in the lottery
	Priority    int // only the highest eligible tier is offered
	Preempt     bool
	Passive     bool // always active; never rolled
	Conditions  []Condition
	Effects     []SkillEffect
	SetFlags    int
	ClearFlags  int
	Counter     *int // absolute counter after use, nil = unchanged
	CounterAdd  int
	SourceOrder int
	ChargeCost  int
	Description string // overrides generated text when set
}

// BattleContext is the player-side state the oracle needs.
type BattleContext struct {
	IsPreempt      bool
	Combo          int
	TeamIDs        []int
	TeamAttributes []Attribute
	TeamTypes      []MonsterType
	BigBoard       bool
}

// CombatantContext is the enemy-side state the oracle needs.
type CombatantContext struct {
	MonsterID int
	Level     int
	Attribute Attribute
	Atk       int
	HPPercent int
	Charges   int
	Flags     int
	Counter   int
	PartnerHP int // percent HP of the other enemy on the floor
	Battle    BattleContext
}

// Candidate is one behaviour the lottery may pick, with the counter and
// flag values the enemy takes if it is picked.
type Candidate struct {
	Index   int
	Chance  int
	Counter int
	Flags   int
}

// Hit is one damaging action found while aggregating mechanics.
type Hit struct {
	Kind      string // "attack" or "gravity"
	MonsterID int
	RuleID    string
	Damage    int // attack: per-hit damage; gravity: percent of player HP
	Count     int
}

// Mechanics summarises every hazard an encounter can present.
type Mechanics struct {
	Resolve      bool
	SuperResolve bool

	LeaderBind bool
	SubBind    bool
	RandomBind bool
	AwokenBind bool
	SkillBind  bool

	TimeDebuff bool
	RCVDebuff  bool
	AtkDebuff  bool
	Poison     bool

	JammerSkyfall       bool
	PoisonSkyfall       bool
	MortalPoisonSkyfall bool
	BombSkyfall         bool
	BlindSkyfall        bool
	LockedSkyfall       bool

	Lock        bool
	Unmatchable bool
	NoSkyfall   bool
	Cloud       bool
	Tape        bool
	Spinner     bool

	AttributeAbsorb bool
	DamageAbsorb    bool
	DamageVoid      bool
	LeaderSwap      bool

	SkillDelay         int
	ComboAbsorb        int
	AttributesAbsorbed int

	Hits []Hit
}

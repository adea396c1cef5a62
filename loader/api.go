package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// skillMarker tags tables built by Skill "id" { ... }.
const skillMarker = "__skill_id"

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	for _, h := range conditionHelpers {
		registerHelper(L, h)
	}
	for _, h := range effectHelpers {
		registerHelper(L, h)
	}
	registerModifiers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Monster(id) { ... } - curried: Monster(id) returns a function that
	// takes the definition table.
	L.SetGlobal("Monster", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.monsters = append(coll.monsters, rawMonster{id: id, file: coll.file, table: tbl})
			return 0
		}))
		return 1
	}))

	// Skill "id" { ... } - curried, returns the table marked with its id so
	// it can sit in a monster's skills list.
	L.SetGlobal("Skill", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			tbl.RawSetString(skillMarker, lua.LString(id))
			L.Push(tbl)
			return 1
		}))
		return 1
	}))
}

// helper describes a Lua function that builds a {type = ...} table from
// positional arguments. Trailing arguments may be omitted.
type helper struct {
	name   string
	typ    string
	params []string
}

var conditionHelpers = []helper{
	{"Preempt", "preempt", nil},
	{"HpBelow", "hp_below", []string{"percent"}},
	{"HpAbove", "hp_above", []string{"percent"}},
	{"ChargesAtLeast", "charges_at_least", []string{"charges"}},
	{"FlagSet", "flag_set", []string{"bits"}},
	{"FlagNot", "flag_not", []string{"bits"}},
	{"CounterAtLeast", "counter_at_least", []string{"value"}},
	{"CounterBelow", "counter_below", []string{"value"}},
	{"ComboAtLeast", "combo_at_least", []string{"combo"}},
	{"TeamHasAttribute", "team_has_attribute", []string{"attribute"}},
	{"TeamHasType", "team_has_type", []string{"type"}},
	{"TeamHasID", "team_has_id", []string{"id"}},
	{"BigBoard", "big_board", nil},
	{"PartnerDead", "partner_dead", nil},
	{"AttributeIs", "attribute_is", []string{"attribute"}},
	{"LevelAtLeast", "level_at_least", []string{"level"}},
}

var effectHelpers = []helper{
	{"Attack", "attack", []string{"percent", "hits"}},
	{"Gravity", "gravity", []string{"percent"}},
	{"Bind", "bind", []string{"target", "min", "max", "count"}},
	{"Debuff", "debuff", []string{"kind", "turns"}},
	{"Skyfall", "skyfall", []string{"orb", "percent", "turns"}},
	{"Lock", "lock", []string{"count"}},
	{"Unmatchable", "unmatchable", []string{"turns"}},
	{"NoSkyfall", "no_skyfall", []string{"turns"}},
	{"AttributeAbsorb", "attribute_absorb", []string{"attributes", "turns"}},
	{"ComboAbsorb", "combo_absorb", []string{"combos", "turns"}},
	{"DamageAbsorb", "damage_absorb", []string{"amount", "turns"}},
	{"DamageVoid", "damage_void", []string{"amount", "turns"}},
	{"LeaderSwap", "leader_swap", []string{"turns"}},
	{"Cloud", "cloud", []string{"width", "height", "turns"}},
	{"Tape", "tape", []string{"line", "turns"}},
	{"Spinner", "spinner", []string{"count", "turns"}},
	{"SkillDelay", "skill_delay", []string{"min", "max"}},
}

func registerHelper(L *lua.LState, h helper) {
	L.SetGlobal(h.name, L.NewFunction(func(L *lua.LState) int {
		if L.GetTop() > len(h.params) {
			L.ArgError(len(h.params)+1, fmt.Sprintf("%s takes at most %d arguments", h.name, len(h.params)))
		}
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(h.typ))
		for i, p := range h.params {
			if v := L.Get(i + 1); v != lua.LNil {
				tbl.RawSetString(p, v)
			}
		}
		L.Push(tbl)
		return 1
	}))
}

func registerModifiers(L *lua.LState) {
	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))

	// Merge(effect, "max"|"min"|"replace") overrides how the effect's
	// numbers combine with other skills in a mechanics summary.
	L.SetGlobal("Merge", L.NewFunction(func(L *lua.LState) int {
		eff := L.CheckTable(1)
		strategy := L.CheckString(2)
		eff.RawSetString("merge", lua.LString(strategy))
		L.Push(eff)
		return 1
	}))
}

package loader

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/dungeoncore/engine/state"
	"github.com/nathoo/dungeoncore/types"
)

// rawMonster holds a monster table before compilation.
type rawMonster struct {
	id    int
	file  string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or false if missing.
func getBool(tbl *lua.LTable, key string) bool {
	b, ok := tbl.RawGetString(key).(lua.LBool)
	return ok && bool(b)
}

// getNumber returns a numeric field from a Lua table, or def if missing.
func getNumber(tbl *lua.LTable, key string, def float64) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key, 0))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively. Whole numbers
// become ints.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if n := val.MaxN(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// arrayTables returns the table elements of an array-style table in order.
func arrayTables(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// compile converts all collected Lua data into Defs. Structural problems
// (duplicates, malformed skill entries) are recorded in the returned
// ValidationError; validate adds the rest.
func compile(coll *collector) (*state.Defs, *ValidationError) {
	defs := state.NewDefs()
	ve := &ValidationError{}
	seenIn := map[int]string{}

	for _, raw := range coll.monsters {
		if prev, dup := seenIn[raw.id]; dup {
			ve.errorf("monster %d defined in both %s and %s", raw.id, prev, raw.file)
			continue
		}
		seenIn[raw.id] = raw.file
		defs.Monsters[raw.id] = compileMonster(raw, ve)
	}
	return defs, ve
}

func compileMonster(raw rawMonster, ve *ValidationError) types.MonsterDef {
	tbl := raw.table
	m := types.MonsterDef{
		ID:                  raw.id,
		Name:                getString(tbl, "name"),
		Attribute:           types.Attribute(strings.ToLower(getString(tbl, "attribute"))),
		SubAttribute:        types.Attribute(strings.ToLower(getString(tbl, "sub_attribute"))),
		MaxLevel:            int(getNumber(tbl, "max_level", 1)),
		HP:                  statRange(tbl, "hp"),
		Atk:                 statRange(tbl, "atk"),
		Def:                 statRange(tbl, "def"),
		Growth:              getNumber(tbl, "growth", 1),
		ResolvePercent:      getInt(tbl, "resolve"),
		SuperResolvePercent: getInt(tbl, "super_resolve"),
		MaxCharges:          getInt(tbl, "charges"),
	}
	if m.Name == "" {
		m.Name = fmt.Sprintf("Monster %d", raw.id)
	}

	if ts := getTable(tbl, "types"); ts != nil {
		for i := 1; i <= ts.MaxN(); i++ {
			if s, ok := ts.RawGetInt(i).(lua.LString); ok {
				m.Types = append(m.Types, types.MonsterType(strings.ToLower(string(s))))
			}
		}
	}
	if rs := getTable(tbl, "type_resists"); rs != nil {
		m.TypeResists = map[types.MonsterType]int{}
		rs.ForEach(func(k, v lua.LValue) {
			if n, ok := v.(lua.LNumber); ok {
				m.TypeResists[types.MonsterType(strings.ToLower(k.String()))] = int(n)
			}
		})
	}
	if rs := getTable(tbl, "attr_resists"); rs != nil {
		m.AttrResists = map[types.Attribute]int{}
		rs.ForEach(func(k, v lua.LValue) {
			if n, ok := v.(lua.LNumber); ok {
				m.AttrResists[types.Attribute(strings.ToLower(k.String()))] = int(n)
			}
		})
	}

	skills := getTable(tbl, "skills")
	if skills != nil {
		for i := 1; i <= skills.MaxN(); i++ {
			st, ok := skills.RawGetInt(i).(*lua.LTable)
			if !ok || getString(st, skillMarker) == "" {
				ve.errorf("monster %d: skills[%d] is not a Skill \"id\" { ... } entry", raw.id, i)
				continue
			}
			m.Skills = append(m.Skills, compileSkill(st, i))
		}
	}
	return m
}

// statRange reads a stat given as a flat number or as {min, max}.
func statRange(tbl *lua.LTable, key string) types.StatRange {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LNumber:
		return types.StatRange{Min: int(v), Max: int(v)}
	case *lua.LTable:
		lo, _ := v.RawGetInt(1).(lua.LNumber)
		hi, ok := v.RawGetInt(2).(lua.LNumber)
		if !ok {
			hi = lo
		}
		return types.StatRange{Min: int(lo), Max: int(hi)}
	}
	return types.StatRange{}
}

func compileSkill(tbl *lua.LTable, order int) types.SkillDef {
	s := types.SkillDef{
		ID:          getString(tbl, skillMarker),
		Name:        getString(tbl, "name"),
		Chance:      int(getNumber(tbl, "chance", 100)),
		Priority:    getInt(tbl, "priority"),
		Preempt:     getBool(tbl, "preempt"),
		Passive:     getBool(tbl, "passive"),
		Conditions:  compileConditions(getTable(tbl, "when")),
		Effects:     compileEffects(getTable(tbl, "does")),
		SetFlags:    getInt(tbl, "set_flags"),
		ClearFlags:  getInt(tbl, "clear_flags"),
		CounterAdd:  getInt(tbl, "counter_add"),
		SourceOrder: order,
		ChargeCost:  getInt(tbl, "cost"),
		Description: getString(tbl, "text"),
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if n, ok := tbl.RawGetString("counter").(lua.LNumber); ok {
		c := int(n)
		s.Counter = &c
	}
	return s
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for _, ct := range arrayTables(tbl) {
		conditions = append(conditions, compileCondition(ct))
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{Type: "not", Negate: true, Inner: &inner}
		}
	}
	return types.Condition{Type: condType, Params: params(tbl)}
}

func compileEffects(tbl *lua.LTable) []types.SkillEffect {
	var effects []types.SkillEffect
	for _, et := range arrayTables(tbl) {
		eff := types.SkillEffect{Type: getString(et, "type"), Params: params(et)}
		applyEffectDefaults(&eff)
		effects = append(effects, eff)
	}
	return effects
}

// applyEffectDefaults fills in the optional helper arguments.
func applyEffectDefaults(eff *types.SkillEffect) {
	p := eff.Params
	setDefault := func(key string, v any) {
		if _, ok := p[key]; !ok {
			p[key] = v
		}
	}
	switch eff.Type {
	case "attack":
		setDefault("hits", 1)
	case "bind":
		setDefault("count", 1)
		if lo, ok := p["min"]; ok {
			setDefault("max", lo)
		}
	case "skill_delay":
		if lo, ok := p["min"]; ok {
			setDefault("max", lo)
		}
	}
}

// params copies every string-keyed field except type.
func params(tbl *lua.LTable) map[string]any {
	p := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			p[string(ks)] = toGoValue(v)
		}
	})
	return p
}

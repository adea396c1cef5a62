package dungeon

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/nathoo/dungeoncore/engine/events"
	"github.com/nathoo/dungeoncore/engine/state"
	"github.com/nathoo/dungeoncore/types"
)

// --- Test doubles ---

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

type fakeOracle struct {
	cands []types.Candidate
	calls int
}

func (o *fakeOracle) Candidates(types.CombatantContext) []types.Candidate {
	o.calls++
	return o.cands
}

func (o *fakeOracle) SkillCount(int) int { return len(o.cands) }

func (o *fakeOracle) Describe(_, idx int) string { return "skill" }

func (o *fakeOracle) AlwaysActive(_, idx int) bool { return idx == 0 }

type fakeSource map[int]Snapshot

func (s fakeSource) Lookup(ctx context.Context, id int) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	snap, ok := s[id]
	return snap, ok, nil
}

type recorder struct {
	views  []events.View
	refs   []events.EnemyRef
	skills []events.SkillUse
}

func (r *recorder) DungeonUpdated(v events.View)      { r.views = append(r.views, v) }
func (r *recorder) EnemyChanged(ref events.EnemyRef)  { r.refs = append(r.refs, ref) }
func (r *recorder) EnemySkillUsed(u events.SkillUse) { r.skills = append(r.skills, u) }

func testDefs() *state.Defs {
	defs := state.NewDefs()
	defs.Monsters[1] = types.MonsterDef{
		ID:         1,
		Name:       "Tyrant",
		MaxLevel:   10,
		HP:         types.StatRange{Min: 1000, Max: 1000},
		Atk:        types.StatRange{Min: 500, Max: 500},
		Def:        types.StatRange{Min: 100, Max: 100},
		MaxCharges: 2,
	}
	defs.Monsters[2] = types.MonsterDef{
		ID:       2,
		Name:     "Golem",
		MaxLevel: 10,
		HP:       types.StatRange{Min: 100, Max: 1000},
		Growth:   1,
	}
	return defs
}

func newTestDungeon(t *testing.T) (*Dungeon, *recorder) {
	t.Helper()
	d := New(Options{Cards: testDefs(), Random: fixedRandom(0)})
	rec := &recorder{}
	d.Subscribe(rec)
	return d, rec
}

func apply(t *testing.T, d *Dungeon, cmds ...Command) {
	t.Helper()
	require.NoError(t, d.Apply(context.Background(), cmds...))
}

// --- Construction and hierarchy ---

func TestNew_Defaults(t *testing.T) {
	d := New(Options{})
	assert.Equal(t, -1, d.ID)
	assert.Equal(t, DefaultBoardWidth, d.BoardWidth)
	require.Len(t, d.Floors, 1)
	require.Len(t, d.Floors[0].Enemies, 1)
	assert.True(t, d.Multipliers.HP.IsOne())
	assert.True(t, d.Multipliers.Atk.IsOne())
	assert.True(t, d.Multipliers.Def.IsOne())
	assert.Equal(t, events.Cursor{}, d.Cursor())
	assert.Equal(t, 1, d.Active().CurrentHP, "placeholder card has 1 HP")
}

func TestScenario_AddFloorAddEnemySelect(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, AddFloor{})
	apply(t, d, AddEnemy{})
	apply(t, d, SetActiveFloor{Floor: 0}, SetActiveEnemy{Enemy: 0})

	require.Len(t, d.Floors, 2)
	assert.Len(t, d.Floors[1].Enemies, 2)
	assert.Equal(t, events.Cursor{Floor: 0, Enemy: 0}, d.Cursor())
}

func TestDeleteFloor_LastIsNoop(t *testing.T) {
	d, _ := newTestDungeon(t)
	err := d.DeleteFloor(0)
	assert.True(t, errors.Is(err, ErrLastFloor))
	assert.Len(t, d.Floors, 1)
}

func TestDeleteEnemy_LastIsNoop(t *testing.T) {
	d, _ := newTestDungeon(t)
	err := d.DeleteEnemy(0)
	assert.True(t, errors.Is(err, ErrLastEnemy))
	assert.Len(t, d.Floor().Enemies, 1)
}

func TestDeleteFloor_OutOfRange(t *testing.T) {
	d, _ := newTestDungeon(t)
	d.AddFloor()
	assert.True(t, errors.Is(d.DeleteFloor(5), ErrIndexOutOfRange))
	assert.True(t, errors.Is(d.DeleteFloor(-1), ErrIndexOutOfRange))
	assert.Len(t, d.Floors, 2)
}

func TestDeleteFloor_CursorMovesBack(t *testing.T) {
	tests := []struct {
		name      string
		active    int
		remove    int
		wantFloor int
	}{
		{"before cursor", 2, 1, 1},
		{"at cursor", 2, 2, 1},
		{"after cursor", 0, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDungeon(t)
			d.AddFloor()
			d.AddFloor()
			apply(t, d, SetActiveFloor{Floor: tt.active})
			require.NoError(t, d.DeleteFloor(tt.remove))
			assert.Len(t, d.Floors, 2)
			assert.Equal(t, tt.wantFloor, d.ActiveFloor)
		})
	}
}

func TestDeleteEnemy_CorrectsActive(t *testing.T) {
	d, _ := newTestDungeon(t)
	d.AddEnemy()
	d.AddEnemy()
	require.Equal(t, 2, d.ActiveEnemy)

	require.NoError(t, d.DeleteEnemy(2))
	assert.Equal(t, 1, d.ActiveEnemy)
	assert.Equal(t, 1, d.Floor().Active)

	require.NoError(t, d.DeleteEnemy(0))
	assert.Equal(t, 0, d.ActiveEnemy)
	assert.Len(t, d.Floor().Enemies, 1)
}

// --- Reducer ---

func TestApply_HPPercent(t *testing.T) {
	tests := []struct {
		pct  int
		want int
	}{
		{37, 370},
		{150, 1000},
		{-5, 0},
		{0, 0},
		{100, 1000},
	}
	for _, tt := range tests {
		d, _ := newTestDungeon(t)
		apply(t, d, SetMonsterID{ID: 1}, SetHPPercent{Percent: tt.pct})
		assert.Equal(t, tt.want, d.Active().CurrentHP, "hp%% %d", tt.pct)
	}
}

func TestApply_SetHPClamps(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetMonsterID{ID: 1})

	apply(t, d, SetHP{HP: 5000})
	assert.Equal(t, 1000, d.Active().CurrentHP)
	apply(t, d, SetHP{HP: -1})
	assert.Equal(t, 0, d.Active().CurrentHP)
	apply(t, d, SetHP{HP: 420})
	assert.Equal(t, 420, d.Active().CurrentHP)
}

func TestApply_NegativeHPMultiplier(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetMonsterID{ID: 1}, SetHPMultiplier{Value: "-1"})
	assert.Equal(t, 0, d.Active().MaxHP(d.Multipliers))
	assert.Equal(t, 0, d.Active().CurrentHP)

	apply(t, d, SetHP{HP: 50})
	assert.Equal(t, 0, d.Active().CurrentHP)
	v := d.View(false)
	assert.GreaterOrEqual(t, v.Stats.CurrentHP, 0)
	assert.Equal(t, 0, v.Stats.PercentHP)
}

func TestApply_HugeHPMultiplierSaturates(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetMonsterID{ID: 1}, SetHPMultiplier{Value: "99999999999999999999"})
	maxHP := d.Active().MaxHP(d.Multipliers)
	assert.Equal(t, math.MaxInt, maxHP)

	apply(t, d, SetHPPercent{Percent: 37})
	hp := d.Active().CurrentHP
	assert.Positive(t, hp)
	assert.Less(t, hp, maxHP)
	assert.Equal(t, 37, d.View(false).Stats.PercentHP)
}

func TestApply_PhaseOrderIgnoresListOrder(t *testing.T) {
	d, _ := newTestDungeon(t)
	// HP is listed first but runs after the multiplier and the new id.
	apply(t, d,
		SetHP{HP: 500},
		SetHPMultiplier{Value: "2"},
		SetMonsterID{ID: 1},
	)
	assert.Equal(t, 2000, d.Active().MaxHP(d.Multipliers))
	assert.Equal(t, 500, d.Active().CurrentHP)
}

func TestApply_CursorBeforeFields(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetLevel{Level: 5}, AddFloor{})
	assert.Equal(t, 1, d.ActiveFloor)
	assert.Equal(t, 5, d.Active().Level, "field edit lands on the new floor's slot")
	assert.Equal(t, 1, d.Floors[0].Enemies[0].Level)
}

func TestApply_CursorEvaluationOrder(t *testing.T) {
	d, _ := newTestDungeon(t)
	d.AddFloor()
	apply(t, d, SetActiveFloor{Floor: 0})

	// AddFloor overrides the explicit floor; AddEnemy lands on the new floor.
	apply(t, d, AddEnemy{}, SetActiveFloor{Floor: 1}, AddFloor{})
	require.Len(t, d.Floors, 3)
	assert.Equal(t, events.Cursor{Floor: 2, Enemy: 1}, d.Cursor())
	assert.Len(t, d.Floors[2].Enemies, 2)
	assert.Len(t, d.Floors[1].Enemies, 1)
}

func TestApply_MultiplierChangeResetsActive(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetMonsterID{ID: 1}, SetHPPercent{Percent: 50})
	require.Equal(t, 500, d.Active().CurrentHP)

	apply(t, d, SetHPMultiplier{Value: "3/2"})
	assert.Equal(t, "3/2", d.Multipliers.HP.String())
	assert.Equal(t, 1500, d.Active().CurrentHP)
}

func TestApply_LevelAndIDReset(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetMonsterID{ID: 2}, SetHPPercent{Percent: 10})
	apply(t, d, SetLevel{Level: 10})
	assert.Equal(t, 1000, d.Active().CurrentHP)

	apply(t, d, SetMonsterID{ID: 1})
	assert.Equal(t, 2, d.Active().Charges, "charges refill to the new card's max")
}

func TestApply_OutOfRangeCursorIgnored(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetActiveFloor{Floor: 4})
	apply(t, d, SetActiveEnemy{Enemy: -1})
	apply(t, d, SetActiveEnemy{Enemy: 3})
	assert.Equal(t, events.Cursor{}, d.Cursor())
}

func TestApply_RemoveFloorZeroIsNoop(t *testing.T) {
	d, _ := newTestDungeon(t)
	d.AddFloor()
	apply(t, d, RemoveFloor{Floor: 0})
	assert.Len(t, d.Floors, 2)

	apply(t, d, RemoveFloor{Floor: 1})
	assert.Len(t, d.Floors, 1)
	assert.Equal(t, 0, d.ActiveFloor)
}

func TestApply_SlotFields(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d,
		SetEnrage{Enrage: 2.5},
		SetDefenseBreak{Percent: 50},
		SetStatusShield{On: true},
		SetInvincible{On: true},
		SetAttribute{Attribute: types.AttrDark},
		SetComboAbsorb{Combos: 5},
		SetDamageShield{Percent: 75},
		SetDamageAbsorb{On: true},
		SetDamageVoid{On: true},
		SetAttributeAbsorb{Attributes: []types.Attribute{types.AttrFire, types.AttrWater}},
		SetCharges{Charges: 3},
		SetCounter{Counter: 4},
		SetFlags{Flags: 6},
		SetTitle{Title: "Arena"},
		SetFixedTime{Seconds: 30},
		SetBoardWidth{Width: 7},
		SetNormal{On: true},
	)
	e := d.Active()
	assert.Equal(t, 2.5, e.Enrage)
	assert.Equal(t, 50, e.IgnoreDefensePercent)
	assert.True(t, e.StatusShield)
	assert.True(t, e.Invincible)
	assert.Equal(t, types.AttrDark, e.CurrentAttribute())
	assert.Equal(t, 5, e.ComboAbsorb)
	assert.Equal(t, 75, e.DamageShieldPercent)
	assert.True(t, e.DamageAbsorb)
	assert.True(t, e.DamageVoid)
	assert.Equal(t, []types.Attribute{types.AttrFire, types.AttrWater}, e.AttributeAbsorb)
	assert.Equal(t, 3, e.Charges)
	assert.Equal(t, 4, e.Counter)
	assert.Equal(t, 6, e.Flags)
	assert.Equal(t, "Arena", d.Title)
	assert.Equal(t, 30, d.FixedTime)
	assert.Equal(t, 7, d.BoardWidth)
	assert.True(t, d.IsNormal)
}

func TestApply_LevelZeroIgnored(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetMonsterID{ID: 2}, SetLevel{Level: 5})
	apply(t, d, SetHP{HP: 10})
	apply(t, d, SetLevel{Level: 0})
	assert.Equal(t, 5, d.Active().Level)
	assert.Equal(t, 10, d.Active().CurrentHP, "ignored level keeps HP")
}

func TestApply_NegativeLevelUsesLevelOneStats(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetMonsterID{ID: 2}, SetLevel{Level: -3})
	assert.Equal(t, -3, d.Active().Level)
	assert.Equal(t, 100, d.Active().MaxHP(d.Multipliers))
	assert.Equal(t, 100, d.Active().CurrentHP)
}

// --- Publishing ---

func TestApply_EmptyBatchPublishes(t *testing.T) {
	d, rec := newTestDungeon(t)
	apply(t, d)
	require.Len(t, rec.views, 1)
	require.Len(t, rec.refs, 1)
	assert.Nil(t, rec.views[0].Active)
	assert.Nil(t, rec.views[0].Skills)
}

func TestApply_PublishesAfterMutation(t *testing.T) {
	d := New(Options{Cards: testDefs(), Oracle: &fakeOracle{cands: []types.Candidate{{Index: 0, Chance: 1}}}})
	var seen []int
	d.Subscribe(events.Funcs{OnUpdate: func(v events.View) {
		seen = append(seen, len(v.Floors))
		// State is already updated when observers run.
		seen = append(seen, len(d.Floors))
	}})

	apply(t, d, AddFloor{})
	assert.Equal(t, []int{2, 2}, seen)
}

func TestApply_ViewCarriesCursorWhenMoved(t *testing.T) {
	d := New(Options{Cards: testDefs(), Oracle: &fakeOracle{cands: []types.Candidate{{Index: 0}, {Index: 1}}}})
	rec := &recorder{}
	d.Subscribe(rec)

	apply(t, d, AddFloor{}, SetMonsterID{ID: 1})
	require.Len(t, rec.views, 1)
	v := rec.views[0]
	require.NotNil(t, v.Active)
	assert.Equal(t, events.Cursor{Floor: 1, Enemy: 0}, *v.Active)
	assert.Equal(t, [][]int{{0}, {1}}, v.Floors)
	assert.Equal(t, "1", v.HP)
	assert.Equal(t, 1000, v.Stats.MaxHP)
	assert.Equal(t, []events.SkillLine{{Text: "skill", AlwaysActive: true}, {Text: "skill"}}, v.Skills)
	assert.Equal(t, events.EnemyRef{Floor: 1, Enemy: 0, MonsterID: 1}, rec.refs[0])

	apply(t, d, SetHP{HP: 10})
	assert.Nil(t, rec.views[1].Active)
}

func TestUnsubscribe(t *testing.T) {
	d := New(Options{})
	rec := &recorder{}
	unsub := d.Subscribe(rec)
	unsub()
	apply(t, d, AddFloor{})
	assert.Empty(t, rec.views)
}

// --- Loading ---

func TestApply_LoadDungeon(t *testing.T) {
	src := fakeSource{
		42: {
			Title:  "Volcano - Hard",
			Floors: []FloorSnapshot{{Enemies: []EnemySnapshot{{ID: 1, Level: 3}}}, {Enemies: []EnemySnapshot{{ID: 2, Level: 10}}}},
			HP:     "2.5",
		},
	}
	d := New(Options{Cards: testDefs(), Source: src})
	rec := &recorder{}
	d.Subscribe(rec)

	apply(t, d, LoadDungeon{ID: 42}, SetActiveFloor{Floor: 1})
	assert.Equal(t, 42, d.ID)
	assert.Equal(t, "Volcano - Hard", d.Title)
	require.Len(t, d.Floors, 2)
	assert.Equal(t, 1, d.ActiveFloor, "cursor commands run after the load")
	assert.Equal(t, 2500, d.Active().CurrentHP)
	require.Len(t, rec.views, 1)
	assert.NotNil(t, rec.views[0].Active)
}

func TestApply_LoadUnknownIsNoop(t *testing.T) {
	d := New(Options{Cards: testDefs(), Source: fakeSource{}})
	d.AddFloor()
	apply(t, d, LoadDungeon{ID: 7})
	assert.Equal(t, -1, d.ID)
	assert.Len(t, d.Floors, 2)
}

func TestApply_LoadCancelled(t *testing.T) {
	d := New(Options{Cards: testDefs(), Source: fakeSource{1: {Title: "x"}}})
	rec := &recorder{}
	d.Subscribe(rec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Apply(ctx, LoadDungeon{ID: 1}, AddFloor{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, d.Floors, 1)
	assert.Empty(t, rec.views)
}

// --- Lottery ---

func TestUseEnemySkill(t *testing.T) {
	cands := []types.Candidate{
		{Index: 0, Chance: 1, Counter: 7, Flags: 1},
		{Index: 1, Chance: 3, Counter: 9, Flags: 2},
	}
	tests := []struct {
		name         string
		draw         float64
		wantIdx      int
		wantRejected []int
		wantCounter  int
	}{
		{"first interval", 0.125, 0, []int{1}, 7},
		{"second interval", 0.625, 1, []int{0}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(Options{Cards: testDefs(), Oracle: &fakeOracle{cands: cands}, Random: fixedRandom(tt.draw)})
			rec := &recorder{}
			d.Subscribe(rec)
			apply(t, d, SetMonsterID{ID: 1}, SetHP{HP: 321})

			idx, rejected := d.UseEnemySkill(types.BattleContext{}, -1)
			assert.Equal(t, tt.wantIdx, idx)
			assert.Equal(t, tt.wantRejected, rejected)
			assert.Equal(t, tt.wantCounter, d.Active().Counter)
			assert.Equal(t, 321, d.Active().CurrentHP, "lottery never touches HP")
			require.Len(t, rec.skills, 1)
			assert.Equal(t, tt.wantIdx, rec.skills[0].Index)
		})
	}
}

func TestUseEnemySkill_Forced(t *testing.T) {
	o := &fakeOracle{cands: []types.Candidate{{Index: 0, Chance: 1}}}
	d := New(Options{Oracle: o})
	rec := &recorder{}
	d.Subscribe(rec)

	idx, rejected := d.UseEnemySkill(types.BattleContext{}, 3)
	assert.Equal(t, 3, idx)
	assert.Empty(t, rejected)
	assert.Zero(t, o.calls)
	assert.Empty(t, rec.skills)
}

func TestUseEnemySkill_NoCandidates(t *testing.T) {
	d := New(Options{Oracle: &fakeOracle{}})
	idx, rejected := d.UseEnemySkill(types.BattleContext{}, -1)
	assert.Equal(t, -1, idx)
	assert.Empty(t, rejected)
}

// --- Snapshots ---

func TestSnapshot_OmitsUnitAndNaNMultipliers(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetAtkMultiplier{Value: "abc"}, SetDefMultiplier{Value: "0.75"}, SetTitle{Title: "T"})

	data, err := json.Marshal(d.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","floors":[{"enemies":[{"id":0,"lv":1}]}],"def":"3/4"}`, string(data))
}

func TestLoadSnapshot_Defaults(t *testing.T) {
	tests := []struct {
		name   string
		snap   Snapshot
		floors int
	}{
		{"no floors", Snapshot{}, 1},
		{"empty floor", Snapshot{Floors: []FloorSnapshot{{}, {Enemies: []EnemySnapshot{{ID: 1}}}}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, rec := newTestDungeon(t)
			d.AddFloor()
			apply(t, d, SetHPMultiplier{Value: "5"})

			d.LoadSnapshot(tt.snap)
			require.Len(t, d.Floors, tt.floors)
			for _, f := range d.Floors {
				assert.NotEmpty(t, f.Enemies)
			}
			assert.True(t, d.Multipliers.HP.IsOne())
			assert.Equal(t, events.Cursor{}, d.Cursor())
			assert.Equal(t, 1, d.Active().Level, "missing level defaults to 1")
			last := rec.views[len(rec.views)-1]
			assert.NotNil(t, last.Active)
		})
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	d, _ := newTestDungeon(t)
	apply(t, d, SetMonsterID{ID: 1}, SetLevel{Level: 4}, SetTitle{Title: "Round"}, SetHPMultiplier{Value: "1.5"})
	apply(t, d, AddFloor{})
	apply(t, d, SetMonsterID{ID: 2}, AddEnemy{})
	before := d.Snapshot()

	data, err := json.Marshal(before)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	other := New(Options{Cards: testDefs()})
	other.LoadSnapshot(decoded)
	assert.Equal(t, before, other.Snapshot())
}

// --- Properties ---

func genCommand(t *rapid.T) Command {
	switch rapid.IntRange(0, 7).Draw(t, "kind") {
	case 0:
		return AddFloor{}
	case 1:
		return AddEnemy{}
	case 2:
		return SetActiveFloor{Floor: rapid.IntRange(-1, 5).Draw(t, "floor")}
	case 3:
		return SetActiveEnemy{Enemy: rapid.IntRange(-1, 5).Draw(t, "enemy")}
	case 4:
		return RemoveFloor{Floor: rapid.IntRange(-1, 5).Draw(t, "rmfloor")}
	case 5:
		return RemoveEnemy{Enemy: rapid.IntRange(-1, 5).Draw(t, "rmenemy")}
	case 6:
		return SetMonsterID{ID: rapid.IntRange(0, 3).Draw(t, "id")}
	default:
		return SetHPPercent{Percent: rapid.IntRange(-10, 110).Draw(t, "pct")}
	}
}

func TestProperty_CursorAlwaysValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := New(Options{Cards: testDefs()})
		batches := rapid.IntRange(1, 20).Draw(t, "batches")
		for i := 0; i < batches; i++ {
			n := rapid.IntRange(0, 4).Draw(t, "size")
			cmds := make([]Command, n)
			for j := range cmds {
				cmds[j] = genCommand(t)
			}
			if err := d.Apply(context.Background(), cmds...); err != nil {
				t.Fatalf("apply: %v", err)
			}

			if len(d.Floors) == 0 {
				t.Fatal("no floors")
			}
			if d.ActiveFloor < 0 || d.ActiveFloor >= len(d.Floors) {
				t.Fatalf("active floor %d of %d", d.ActiveFloor, len(d.Floors))
			}
			for fi, f := range d.Floors {
				if len(f.Enemies) == 0 {
					t.Fatalf("floor %d is empty", fi)
				}
			}
			f := d.Floor()
			if d.ActiveEnemy < 0 || d.ActiveEnemy >= len(f.Enemies) || f.Active != d.ActiveEnemy {
				t.Fatalf("active enemy %d (floor says %d) of %d", d.ActiveEnemy, f.Active, len(f.Enemies))
			}
			e := d.Active()
			if e.CurrentHP < 0 || e.CurrentHP > e.MaxHP(d.Multipliers) {
				t.Fatalf("hp %d outside [0, %d]", e.CurrentHP, e.MaxHP(d.Multipliers))
			}
		}
	})
}

func TestProperty_SnapshotRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		snap := Snapshot{
			Title: rapid.StringMatching(`[A-Za-z ]{0,12}`).Draw(t, "title"),
			HP:    rapid.SampledFrom([]string{"", "2", "3/2", "1/3"}).Draw(t, "hp"),
			Atk:   rapid.SampledFrom([]string{"", "5", "7/4"}).Draw(t, "atk"),
		}
		nf := rapid.IntRange(1, 4).Draw(t, "floors")
		for i := 0; i < nf; i++ {
			ne := rapid.IntRange(1, 3).Draw(t, "enemies")
			var fs FloorSnapshot
			for j := 0; j < ne; j++ {
				fs.Enemies = append(fs.Enemies, EnemySnapshot{
					ID:    rapid.IntRange(0, 5000).Draw(t, "id"),
					Level: rapid.IntRange(1, 99).Draw(t, "lv"),
				})
			}
			snap.Floors = append(snap.Floors, fs)
		}

		d := New(Options{Cards: testDefs()})
		d.LoadSnapshot(snap)
		got := d.Snapshot()
		if got.Title != snap.Title || got.HP != snap.HP || got.Atk != snap.Atk || got.Def != "" {
			t.Fatalf("metadata changed: %+v vs %+v", got, snap)
		}
		if len(got.Floors) != len(snap.Floors) {
			t.Fatalf("floors %d vs %d", len(got.Floors), len(snap.Floors))
		}
		for i := range snap.Floors {
			for j := range snap.Floors[i].Enemies {
				if got.Floors[i].Enemies[j] != snap.Floors[i].Enemies[j] {
					t.Fatalf("floor %d slot %d: %+v vs %+v", i, j, got.Floors[i].Enemies[j], snap.Floors[i].Enemies[j])
				}
			}
		}
	})
}

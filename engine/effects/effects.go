// Package effects folds skill effects into a dungeon mechanics summary.
// Every effect type sets or merges one field. No logic beyond merging.
package effects

import (
	"fmt"
	"math"
	"strings"

	"github.com/nathoo/dungeoncore/types"
)

// Strategy decides how a numeric field merges with the value already there.
type Strategy int

const (
	MergeMax     Strategy = iota // keep the larger value
	MergeMin                     // keep the smaller non-zero value; 0 means unset
	MergeReplace                 // last write wins
)

func (s Strategy) String() string {
	switch s {
	case MergeMin:
		return "min"
	case MergeReplace:
		return "replace"
	default:
		return "max"
	}
}

// ParseStrategy reads "max", "min" or "replace". Empty means max.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "max":
		return MergeMax, nil
	case "min":
		return MergeMin, nil
	case "replace":
		return MergeReplace, nil
	default:
		return MergeMax, fmt.Errorf("unknown merge strategy %q", s)
	}
}

// Merge combines cur with v under s.
func Merge(cur, v int, s Strategy) int {
	switch s {
	case MergeMin:
		if cur == 0 {
			return v
		}
		if v == 0 || cur < v {
			return cur
		}
		return v
	case MergeReplace:
		return v
	default:
		if v > cur {
			return v
		}
		return cur
	}
}

// Context identifies the skill whose effects are being folded.
type Context struct {
	MonsterID int
	RuleID    string
	BaseAtk   int
	Strategy  Strategy
}

// Apply folds effs into m. Booleans are OR-ed, numeric fields merge under
// the context strategy unless an effect carries its own "merge" parameter,
// and hits are appended.
func Apply(m *types.Mechanics, effs []types.SkillEffect, ctx Context) {
	for _, eff := range effs {
		p := eff.Params
		strategy := ctx.Strategy
		if name, ok := p["merge"].(string); ok {
			if s, err := ParseStrategy(name); err == nil {
				strategy = s
			}
		}

		switch eff.Type {
		case "attack":
			hits := toInt(p["hits"])
			if hits < 1 {
				hits = 1
			}
			m.Hits = append(m.Hits, types.Hit{
				Kind:      "attack",
				MonsterID: ctx.MonsterID,
				RuleID:    ctx.RuleID,
				Damage:    attackDamage(ctx.BaseAtk, toInt(p["percent"])),
				Count:     hits,
			})

		case "gravity":
			m.Hits = append(m.Hits, types.Hit{
				Kind:      "gravity",
				MonsterID: ctx.MonsterID,
				RuleID:    ctx.RuleID,
				Damage:    toInt(p["percent"]),
				Count:     1,
			})

		case "bind":
			target, _ := p["target"].(string)
			switch target {
			case "leader":
				m.LeaderBind = true
			case "sub":
				m.SubBind = true
			case "team":
				m.LeaderBind = true
				m.SubBind = true
			case "random":
				m.RandomBind = true
			case "awoken":
				m.AwokenBind = true
			case "skill":
				m.SkillBind = true
			}

		case "debuff":
			kind, _ := p["kind"].(string)
			switch kind {
			case "time":
				m.TimeDebuff = true
			case "rcv":
				m.RCVDebuff = true
			case "atk":
				m.AtkDebuff = true
			case "poison":
				m.Poison = true
			}

		case "skyfall":
			orb, _ := p["orb"].(string)
			switch orb {
			case "jammer":
				m.JammerSkyfall = true
			case "poison":
				m.PoisonSkyfall = true
			case "mortal_poison":
				m.MortalPoisonSkyfall = true
			case "bomb":
				m.BombSkyfall = true
			case "blind":
				m.BlindSkyfall = true
			case "locked":
				m.LockedSkyfall = true
			}

		case "lock":
			m.Lock = true

		case "unmatchable":
			m.Unmatchable = true

		case "no_skyfall":
			m.NoSkyfall = true

		case "cloud":
			m.Cloud = true

		case "tape":
			m.Tape = true

		case "spinner":
			m.Spinner = true

		case "leader_swap":
			m.LeaderSwap = true

		case "damage_absorb":
			m.DamageAbsorb = true

		case "damage_void":
			m.DamageVoid = true

		case "attribute_absorb":
			m.AttributeAbsorb = true
			m.AttributesAbsorbed = Merge(m.AttributesAbsorbed, countList(p["attributes"]), strategy)

		case "combo_absorb":
			m.ComboAbsorb = Merge(m.ComboAbsorb, toInt(p["combos"]), strategy)

		case "skill_delay":
			delay := toInt(p["max"])
			if delay == 0 {
				delay = toInt(p["min"])
			}
			m.SkillDelay = Merge(m.SkillDelay, delay, strategy)
		}
	}
}

func countList(v any) int {
	switch vals := v.(type) {
	case []any:
		return len(vals)
	case []string:
		return len(vals)
	default:
		return 0
	}
}

// attackDamage is ceil(atk×percent/100), saturating at the int limits.
func attackDamage(atk, percent int) int {
	d := math.Ceil(float64(atk) * float64(percent) / 100)
	switch {
	case d >= math.MaxInt:
		return math.MaxInt
	case d <= math.MinInt:
		return math.MinInt
	}
	return int(d)
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

package mechanics

import (
	"fmt"
	"strings"

	"github.com/nathoo/dungeoncore/types"
)

// Lines renders a summary as short human-readable lines, hazards first and
// damage last. An empty summary renders as a single "Nothing notable." line.
func Lines(m types.Mechanics) []string {
	var out []string
	group := func(label string, flags ...flag) {
		var names []string
		for _, f := range flags {
			if f.on {
				names = append(names, f.name)
			}
		}
		if len(names) > 0 {
			out = append(out, label+": "+strings.Join(names, ", "))
		}
	}

	group("Survival",
		flag{"resolve", m.Resolve},
		flag{"super resolve", m.SuperResolve})
	group("Binds",
		flag{"leader", m.LeaderBind},
		flag{"sub", m.SubBind},
		flag{"random", m.RandomBind},
		flag{"awoken", m.AwokenBind},
		flag{"skill", m.SkillBind})
	group("Debuffs",
		flag{"time", m.TimeDebuff},
		flag{"rcv", m.RCVDebuff},
		flag{"atk", m.AtkDebuff},
		flag{"poison", m.Poison})
	group("Skyfall",
		flag{"jammer", m.JammerSkyfall},
		flag{"poison", m.PoisonSkyfall},
		flag{"mortal poison", m.MortalPoisonSkyfall},
		flag{"bomb", m.BombSkyfall},
		flag{"blind", m.BlindSkyfall},
		flag{"locked", m.LockedSkyfall})
	group("Board",
		flag{"lock", m.Lock},
		flag{"unmatchable", m.Unmatchable},
		flag{"no skyfall", m.NoSkyfall},
		flag{"cloud", m.Cloud},
		flag{"tape", m.Tape},
		flag{"spinner", m.Spinner})
	group("Absorb",
		flag{"attribute", m.AttributeAbsorb},
		flag{"damage", m.DamageAbsorb},
		flag{"void", m.DamageVoid})
	group("Other",
		flag{"leader swap", m.LeaderSwap})

	if m.ComboAbsorb > 0 {
		out = append(out, fmt.Sprintf("Combo absorb: %d", m.ComboAbsorb))
	}
	if m.AttributesAbsorbed > 0 {
		out = append(out, fmt.Sprintf("Attributes absorbed: up to %d", m.AttributesAbsorbed))
	}
	if m.SkillDelay > 0 {
		out = append(out, fmt.Sprintf("Skill delay: %d", m.SkillDelay))
	}

	if hit, ok := maxHit(m.Hits); ok {
		out = append(out, fmt.Sprintf("Hardest hit: %d (monster #%d, %s)", hit.Damage*hit.Count, hit.MonsterID, hit.RuleID))
	}
	for _, h := range m.Hits {
		if h.Kind == "gravity" {
			out = append(out, fmt.Sprintf("Gravity: %d%% (monster #%d, %s)", h.Damage, h.MonsterID, h.RuleID))
		}
	}

	if len(out) == 0 {
		return []string{"Nothing notable."}
	}
	return out
}

type flag struct {
	name string
	on   bool
}

// maxHit returns the attack with the largest total damage. Earlier hits win
// ties.
func maxHit(hits []types.Hit) (types.Hit, bool) {
	var best types.Hit
	found := false
	for _, h := range hits {
		if h.Kind != "attack" {
			continue
		}
		if !found || h.Damage*h.Count > best.Damage*best.Count {
			best, found = h, true
		}
	}
	return best, found
}

// Package rules implements the behaviour oracle: it decides which of a
// monster's skills are eligible in a given combat context and renders them
// as text.
package rules

import (
	"github.com/nathoo/dungeoncore/types"
)

// EvalCondition evaluates a single condition against the combat context.
func EvalCondition(c types.Condition, ctx types.CombatantContext) bool {
	switch c.Type {
	case "preempt":
		return ctx.Battle.IsPreempt

	case "hp_below":
		return ctx.HPPercent <= toInt(c.Params["percent"])

	case "hp_above":
		return ctx.HPPercent > toInt(c.Params["percent"])

	case "charges_at_least":
		return ctx.Charges >= toInt(c.Params["charges"])

	case "flag_set":
		bits := toInt(c.Params["bits"])
		return ctx.Flags&bits == bits

	case "flag_not":
		return ctx.Flags&toInt(c.Params["bits"]) == 0

	case "counter_at_least":
		return ctx.Counter >= toInt(c.Params["value"])

	case "counter_below":
		return ctx.Counter < toInt(c.Params["value"])

	case "combo_at_least":
		return ctx.Battle.Combo >= toInt(c.Params["combo"])

	case "team_has_attribute":
		attr, _ := c.Params["attribute"].(string)
		for _, a := range ctx.Battle.TeamAttributes {
			if string(a) == attr {
				return true
			}
		}
		return false

	case "team_has_type":
		mt, _ := c.Params["type"].(string)
		for _, t := range ctx.Battle.TeamTypes {
			if string(t) == mt {
				return true
			}
		}
		return false

	case "team_has_id":
		id := toInt(c.Params["id"])
		for _, tid := range ctx.Battle.TeamIDs {
			if tid == id {
				return true
			}
		}
		return false

	case "big_board":
		return ctx.Battle.BigBoard

	case "partner_dead":
		return ctx.PartnerHP <= 0

	case "attribute_is":
		attr, _ := c.Params["attribute"].(string)
		return string(ctx.Attribute) == attr

	case "level_at_least":
		return ctx.Level >= toInt(c.Params["level"])

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, ctx)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, ctx types.CombatantContext) bool {
	for _, c := range conditions {
		if !EvalCondition(c, ctx) {
			return false
		}
	}
	return true
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

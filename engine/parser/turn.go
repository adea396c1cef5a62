package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/dungeoncore/types"
)

// TurnUsage describes the arguments ParseTurn accepts.
const TurnUsage = "/skill [index|-] [combo] [preempt] [team=id,...] [attr=a,...] [type=t,...]"

// TurnRequest is a parsed enemy turn: which behaviour to force, if any, and
// the player-side battle state the behaviour conditions read.
type TurnRequest struct {
	Forced int // -1 rolls the lottery
	Battle types.BattleContext
}

// ParseTurn reads enemy turn arguments. The first bare word is the forced
// behaviour index ("-" rolls), the second is the combo count. key=value
// words describe the player team and may appear anywhere.
func ParseTurn(args []string) (TurnRequest, error) {
	req := TurnRequest{Forced: -1}
	positional := 0
	for _, arg := range args {
		if key, value, ok := strings.Cut(arg, "="); ok {
			if err := parseTeamOption(&req.Battle, strings.ToLower(key), value); err != nil {
				return TurnRequest{}, err
			}
			continue
		}
		if strings.EqualFold(arg, "preempt") {
			req.Battle.IsPreempt = true
			continue
		}
		switch positional {
		case 0:
			if arg != "-" {
				n, err := strconv.Atoi(arg)
				if err != nil || n < 0 {
					return TurnRequest{}, fmt.Errorf("bad behaviour index %q", arg)
				}
				req.Forced = n
			}
		case 1:
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				return TurnRequest{}, fmt.Errorf("bad combo count %q", arg)
			}
			req.Battle.Combo = n
		default:
			return TurnRequest{}, fmt.Errorf("unexpected argument %q", arg)
		}
		positional++
	}
	return req, nil
}

func parseTeamOption(b *types.BattleContext, key, value string) error {
	items := strings.FieldsFunc(value, func(r rune) bool { return r == ',' })
	switch key {
	case "team":
		for _, item := range items {
			id, err := strconv.Atoi(item)
			if err != nil {
				return fmt.Errorf("bad team id %q", item)
			}
			b.TeamIDs = append(b.TeamIDs, id)
		}
	case "attr":
		for _, item := range items {
			a, ok := parseAttribute(item)
			if !ok || a == types.AttrNone {
				return fmt.Errorf("unknown attribute %q", item)
			}
			b.TeamAttributes = append(b.TeamAttributes, a)
		}
	case "type":
		for _, item := range items {
			b.TeamTypes = append(b.TeamTypes, types.MonsterType(strings.ToLower(item)))
		}
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return nil
}

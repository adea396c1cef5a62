// Package parser converts editor command strings into dungeon commands.
// Intentionally dumb: no grammar, just a keyword and its arguments.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/dungeoncore/engine/dungeon"
	"github.com/nathoo/dungeoncore/types"
)

// Names resolves a monster name to a behaviour-set id.
type Names func(name string) (int, error)

// SyntaxError reports a command that could not be parsed.
type SyntaxError struct {
	Input string
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %q", e.Msg, e.Input)
}

var keywordAliases = map[string]string{
	"f":          "floor",
	"e":          "enemy",
	"slot":       "enemy",
	"level":      "lv",
	"monster":    "id",
	"def-break":  "defbreak",
	"ignoredef":  "defbreak",
	"attribute":  "attr",
	"element":    "attr",
	"combo":      "comboabsorb",
	"shieldpct":  "dmgshield",
	"multiplier": "mult",
	"time":       "timer",
	"board":      "width",
	"name":       "title",
}

var statusKeywords = map[string]bool{
	"shield": true, "invincible": true, "absorb": true, "void": true, "normal": true,
}

// Parse converts a line into one batch of commands. Several commands are
// separated by ";". names may be nil, in which case monsters can only be
// given by id.
func Parse(input string, names Names) ([]dungeon.Command, error) {
	var cmds []dungeon.Command
	for _, seg := range strings.Split(input, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		cmd, err := parseOne(seg, names)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func parseOne(seg string, names Names) (dungeon.Command, error) {
	fields := strings.Fields(seg)
	keyword := strings.ToLower(fields[0])
	if alias, ok := keywordAliases[keyword]; ok {
		keyword = alias
	}
	args := fields[1:]
	// Everything after the keyword, original case kept.
	rest := strings.TrimSpace(seg[len(fields[0]):])

	fail := func(msg string) (dungeon.Command, error) {
		return nil, &SyntaxError{Input: seg, Msg: msg}
	}
	// A trailing % is only meaningful for hp.
	intArg := func(percent bool) (int, error) {
		if len(args) != 1 {
			return 0, &SyntaxError{Input: seg, Msg: "expected one number"}
		}
		arg := args[0]
		if percent {
			arg = strings.TrimSuffix(arg, "%")
		}
		n, err := parseNumber(arg)
		if err != nil {
			return 0, &SyntaxError{Input: seg, Msg: "not a number"}
		}
		return n, nil
	}

	if statusKeywords[keyword] {
		on, err := parseSwitch(args)
		if err != nil {
			return fail(err.Error())
		}
		switch keyword {
		case "shield":
			return dungeon.SetStatusShield{On: on}, nil
		case "invincible":
			return dungeon.SetInvincible{On: on}, nil
		case "absorb":
			return dungeon.SetDamageAbsorb{On: on}, nil
		case "void":
			return dungeon.SetDamageVoid{On: on}, nil
		default:
			return dungeon.SetNormal{On: on}, nil
		}
	}

	switch keyword {
	case "floor", "enemy":
		return parseCursor(keyword, args, seg)

	case "hp":
		n, err := intArg(true)
		if err != nil {
			return nil, err
		}
		if strings.HasSuffix(args[0], "%") {
			return dungeon.SetHPPercent{Percent: n}, nil
		}
		return dungeon.SetHP{HP: n}, nil

	case "hp%":
		n, err := intArg(true)
		if err != nil {
			return nil, err
		}
		return dungeon.SetHPPercent{Percent: n}, nil

	case "mult":
		if len(args) != 2 {
			return fail("usage: mult hp|atk|def <value>")
		}
		switch strings.ToLower(args[0]) {
		case "hp":
			return dungeon.SetHPMultiplier{Value: args[1]}, nil
		case "atk":
			return dungeon.SetAtkMultiplier{Value: args[1]}, nil
		case "def":
			return dungeon.SetDefMultiplier{Value: args[1]}, nil
		}
		return fail("unknown multiplier")

	case "lv":
		n, err := intArg(false)
		if err != nil {
			return nil, err
		}
		return dungeon.SetLevel{Level: n}, nil

	case "id":
		if rest == "" {
			return fail("expected a monster id or name")
		}
		if n, err := strconv.Atoi(rest); err == nil {
			return dungeon.SetMonsterID{ID: n}, nil
		}
		if names == nil {
			return fail("monster names are not available")
		}
		id, err := names(rest)
		if err != nil {
			return nil, err
		}
		return dungeon.SetMonsterID{ID: id}, nil

	case "enrage":
		if len(args) != 1 {
			return fail("expected one number")
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "x"), 64)
		if err != nil {
			return fail("not a number")
		}
		return dungeon.SetEnrage{Enrage: f}, nil

	case "defbreak", "comboabsorb", "dmgshield", "charges", "counter", "flags", "load", "timer", "width":
		n, err := intArg(false)
		if err != nil {
			return nil, err
		}
		return intCommand(keyword, n), nil

	case "attr":
		if len(args) != 1 {
			return fail("expected one attribute")
		}
		a, ok := parseAttribute(args[0])
		if !ok {
			return fail("unknown attribute")
		}
		return dungeon.SetAttribute{Attribute: a}, nil

	case "attrabsorb":
		attrs := []types.Attribute{}
		for _, arg := range args {
			a, ok := parseAttribute(arg)
			if !ok {
				return fail("unknown attribute " + arg)
			}
			if a != types.AttrNone {
				attrs = append(attrs, a)
			}
		}
		return dungeon.SetAttributeAbsorb{Attributes: attrs}, nil

	case "title":
		return dungeon.SetTitle{Title: rest}, nil
	}

	return fail("unknown command")
}

func parseCursor(keyword string, args []string, seg string) (dungeon.Command, error) {
	fail := func(msg string) (dungeon.Command, error) {
		return nil, &SyntaxError{Input: seg, Msg: msg}
	}
	if len(args) == 0 {
		return fail("usage: " + keyword + " add | <n> | rm <n>")
	}
	sub := strings.ToLower(args[0])
	if sub == "add" || sub == "new" {
		if len(args) != 1 {
			return fail("unexpected arguments")
		}
		if keyword == "floor" {
			return dungeon.AddFloor{}, nil
		}
		return dungeon.AddEnemy{}, nil
	}

	remove := sub == "rm" || sub == "remove" || sub == "del" || sub == "delete"
	numArg := args[0]
	if remove {
		if len(args) != 2 {
			return fail("usage: " + keyword + " rm <n>")
		}
		numArg = args[1]
	} else if len(args) != 1 {
		return fail("unexpected arguments")
	}
	n, err := strconv.Atoi(numArg)
	if err != nil {
		return fail("not a number")
	}

	switch {
	case keyword == "floor" && remove:
		return dungeon.RemoveFloor{Floor: n}, nil
	case keyword == "floor":
		return dungeon.SetActiveFloor{Floor: n}, nil
	case remove:
		return dungeon.RemoveEnemy{Enemy: n}, nil
	default:
		return dungeon.SetActiveEnemy{Enemy: n}, nil
	}
}

func intCommand(keyword string, n int) dungeon.Command {
	switch keyword {
	case "defbreak":
		return dungeon.SetDefenseBreak{Percent: n}
	case "comboabsorb":
		return dungeon.SetComboAbsorb{Combos: n}
	case "dmgshield":
		return dungeon.SetDamageShield{Percent: n}
	case "charges":
		return dungeon.SetCharges{Charges: n}
	case "counter":
		return dungeon.SetCounter{Counter: n}
	case "flags":
		return dungeon.SetFlags{Flags: n}
	case "load":
		return dungeon.LoadDungeon{ID: n}
	case "timer":
		return dungeon.SetFixedTime{Seconds: n}
	default:
		return dungeon.SetBoardWidth{Width: n}
	}
}

// parseNumber reads a decimal integer or a 0x-prefixed hex one (for flags).
func parseNumber(s string) (int, error) {
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		n, err := strconv.ParseInt(hex, 16, 0)
		return int(n), err
	}
	return strconv.Atoi(s)
}

func parseSwitch(args []string) (bool, error) {
	if len(args) == 0 {
		return true, nil
	}
	if len(args) > 1 {
		return false, fmt.Errorf("expected on or off")
	}
	switch strings.ToLower(args[0]) {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off")
}

func parseAttribute(s string) (types.Attribute, bool) {
	s = strings.ToLower(s)
	if s == "none" || s == "-" {
		return types.AttrNone, true
	}
	for _, a := range types.Attributes {
		if string(a) == s {
			return a, true
		}
	}
	return types.AttrNone, false
}

// Package resolve maps monster names typed by the user to behaviour-set ids.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/dungeoncore/engine/state"
)

// AmbiguityError indicates multiple monsters matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no monster matched a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no monster called %q", e.Name)
}

// Monster resolves name to a behaviour-set id. A number is taken as an id
// even when no definition exists for it, so placeholders stay editable.
// Otherwise an exact name match wins over a partial one.
func Monster(defs *state.Defs, name string) (int, error) {
	name = strings.TrimSpace(name)
	if id, err := strconv.Atoi(strings.TrimPrefix(name, "#")); err == nil {
		return id, nil
	}

	nameLower := strings.ToLower(name)
	var exact, partial []int
	for _, id := range defs.IDs() {
		m, _ := defs.Monster(id)
		switch matchesName(m.Name, nameLower) {
		case matchExact:
			exact = append(exact, id)
		case matchPartial:
			partial = append(partial, id)
		}
	}

	matches := exact
	if len(matches) == 0 {
		matches = partial
	}
	switch len(matches) {
	case 0:
		return 0, &NotFoundError{Name: name}
	case 1:
		return matches[0], nil
	default:
		cands := make([]string, len(matches))
		for i, id := range matches {
			m, _ := defs.Monster(id)
			cands[i] = fmt.Sprintf("%s #%d", m.Name, id)
		}
		return 0, &AmbiguityError{Name: name, Candidates: cands}
	}
}

type match int

const (
	matchNone match = iota
	matchPartial
	matchExact
)

// matchesName compares a monster name with a lower-cased query.
// "golem" matches "Stone Golem" partially; "stone_golem" matches it exactly.
func matchesName(monsterName, nameLower string) match {
	if monsterName == "" || nameLower == "" {
		return matchNone
	}
	lower := strings.ToLower(monsterName)
	if lower == nameLower || strings.ReplaceAll(lower, " ", "_") == nameLower {
		return matchExact
	}
	// Every query word must be a word of the name.
	words := strings.Fields(lower)
	query := strings.Fields(strings.ReplaceAll(nameLower, "_", " "))
	if len(query) == 0 {
		return matchNone
	}
	for _, q := range query {
		if !containsStr(words, q) {
			return matchNone
		}
	}
	return matchPartial
}

func containsStr(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

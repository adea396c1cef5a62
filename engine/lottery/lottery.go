// Package lottery picks one enemy behaviour from a weighted candidate list.
package lottery

import "github.com/nathoo/dungeoncore/types"

// Source yields uniform draws in [0, 1).
type Source interface {
	Float64() float64
}

// Total returns the sum of candidate chances.
func Total(cands []types.Candidate) int {
	total := 0
	for _, c := range cands {
		total += c.Chance
	}
	return total
}

// Draw scales one draw from src to [0, Total(cands)).
func Draw(src Source, cands []types.Candidate) float64 {
	return src.Float64() * float64(Total(cands))
}

// Select walks cands in order, subtracting each chance from roll. The first
// candidate whose chance exceeds what is left of the roll is chosen; every
// other candidate is rejected in order. ok is false when nothing is chosen,
// which only happens for an empty list or a roll at or past the total.
func Select(cands []types.Candidate, roll float64) (chosen types.Candidate, rejected []int, ok bool) {
	rejected = []int{}
	for _, c := range cands {
		if !ok && roll < float64(c.Chance) {
			chosen = c
			ok = true
		} else {
			rejected = append(rejected, c.Index)
		}
		roll -= float64(c.Chance)
	}
	return chosen, rejected, ok
}

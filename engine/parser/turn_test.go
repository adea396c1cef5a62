package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/dungeoncore/types"
)

func TestParseTurn(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want TurnRequest
	}{
		{"no args rolls", nil, TurnRequest{Forced: -1}},
		{"dash rolls", []string{"-"}, TurnRequest{Forced: -1}},
		{"forced", []string{"2"}, TurnRequest{Forced: 2}},
		{"combo", []string{"-", "7"}, TurnRequest{Forced: -1, Battle: types.BattleContext{Combo: 7}}},
		{"preempt", []string{"preempt"}, TurnRequest{Forced: -1, Battle: types.BattleContext{IsPreempt: true}}},
		{"team ids", []string{"team=1234,5678"}, TurnRequest{Forced: -1, Battle: types.BattleContext{
			TeamIDs: []int{1234, 5678},
		}}},
		{"team before positionals", []string{"attr=Fire,dark", "1", "3", "type=Dragon"}, TurnRequest{Forced: 1, Battle: types.BattleContext{
			Combo:          3,
			TeamAttributes: []types.Attribute{types.AttrFire, types.AttrDark},
			TeamTypes:      []types.MonsterType{"dragon"},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTurn(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTurn_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad index", []string{"two"}},
		{"negative index", []string{"-1"}},
		{"bad combo", []string{"0", "many"}},
		{"extra positional", []string{"0", "1", "2"}},
		{"bad team id", []string{"team=golem"}},
		{"bad attribute", []string{"attr=plasma"}},
		{"none is not a team attribute", []string{"attr=none"}},
		{"unknown option", []string{"board=big"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTurn(tt.args)
			assert.Error(t, err)
		})
	}
}

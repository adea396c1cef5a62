package dungeon

import (
	"errors"

	"github.com/nathoo/dungeoncore/engine/enemy"
)

// Rejections of structural edits. State is unchanged when one is returned.
var (
	ErrLastFloor       = errors.New("cannot delete the only floor")
	ErrLastEnemy       = errors.New("cannot delete the only enemy on a floor")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Floor is an ordered, non-empty list of enemy slots.
type Floor struct {
	Enemies []*enemy.Enemy
	Active  int
}

// NewFloor returns a floor holding one default slot.
func NewFloor(cards enemy.Cards) *Floor {
	return &Floor{Enemies: []*enemy.Enemy{enemy.New(DefaultMonsterID, cards)}}
}

// ActiveEnemy returns the floor's active slot.
func (f *Floor) ActiveEnemy() *enemy.Enemy {
	return f.Enemies[f.Active]
}

// AddEnemy appends a default slot and returns its index. It does not move
// the cursor; the dungeon does that so HP is reset under its multipliers.
func (f *Floor) AddEnemy(cards enemy.Cards) int {
	f.Enemies = append(f.Enemies, enemy.New(DefaultMonsterID, cards))
	return len(f.Enemies) - 1
}

// DeleteEnemy removes slot i. The last slot can never be removed.
func (f *Floor) DeleteEnemy(i int) error {
	if i < 0 || i >= len(f.Enemies) {
		return ErrIndexOutOfRange
	}
	if len(f.Enemies) == 1 {
		return ErrLastEnemy
	}
	f.Enemies = append(f.Enemies[:i:i], f.Enemies[i+1:]...)
	if f.Active >= i && f.Active > 0 {
		f.Active--
	}
	return nil
}

// IDs returns the behaviour-set id of every slot in order.
func (f *Floor) IDs() []int {
	ids := make([]int, len(f.Enemies))
	for i, e := range f.Enemies {
		ids[i] = e.ID
	}
	return ids
}

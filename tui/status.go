package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// dungeon title, the cursor and the dungeon multipliers.
func (m Model) renderStatusBar() string {
	v := m.panel.view

	title := v.Title
	if title == "" {
		title = "(untitled)"
	}
	floor, slot, slots := 0, 0, 0
	if v.Active != nil {
		floor, slot = v.Active.Floor, v.Active.Enemy
	}
	if floor < len(v.Floors) {
		slots = len(v.Floors[floor])
	}

	left := fmt.Sprintf(" %s | Floor %d/%d | Slot %d/%d", title, floor+1, len(v.Floors), slot+1, slots)
	right := fmt.Sprintf("HP x%s ATK x%s DEF x%s ", v.HP, v.Atk, v.Def)
	if m.busy {
		right = m.spinner.View() + " " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

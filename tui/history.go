// Package tui provides a Bubble Tea terminal UI for the dungeon editor.
package tui

import "strings"

// History is a bounded list of submitted input lines with cursor-based
// navigation. Navigation can be narrowed to lines starting with a prefix,
// so typing "mult" and pressing Up walks only the multiplier edits.
type History struct {
	entries []string
	max     int
	cursor  int // -1 = not navigating, 0..len-1 = position in entries
	prefix  string
}

// NewHistory creates a history buffer with the given maximum size.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push adds a line to history. Consecutive duplicates are skipped.
func (h *History) Push(line string) {
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == line {
		return
	}
	h.entries = append(h.entries, line)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Len returns the number of stored lines.
func (h *History) Len() int {
	return len(h.entries)
}

// Prev returns the previous (older) entry starting with prefix. The prefix
// given when navigation starts is kept until ResetCursor. Returns
// ("", false) when nothing matches.
func (h *History) Prev(prefix string) (string, bool) {
	start := h.cursor - 1
	if h.cursor == -1 {
		h.prefix = prefix
		start = len(h.entries) - 1
	}
	for i := start; i >= 0; i-- {
		if strings.HasPrefix(h.entries[i], h.prefix) {
			h.cursor = i
			return h.entries[i], true
		}
	}
	if h.cursor >= 0 {
		// At the oldest match: stay there.
		return h.entries[h.cursor], true
	}
	return "", false
}

// Next returns the next (newer) matching entry. Returns ("", false) when
// past the most recent one (back to fresh input).
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	for i := h.cursor + 1; i < len(h.entries); i++ {
		if strings.HasPrefix(h.entries[i], h.prefix) {
			h.cursor = i
			return h.entries[i], true
		}
	}
	h.ResetCursor()
	return "", false
}

// ResetCursor resets the navigation cursor to the "not navigating" state.
func (h *History) ResetCursor() {
	h.cursor = -1
	h.prefix = ""
}

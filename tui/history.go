// Package tui provides a Bubble Tea terminal UI for navishell: a scrolling
// story viewport with paced reveal, a status bar and a shell prompt.
package tui

import (
	"slices"
	"strings"

	"github.com/nathoo/navishell/engine/parser"
)

// History recalls earlier shell lines at the prompt. Choice numbers are not
// recorded. Recall is filtered by whatever the player had typed when they
// started browsing, so "ca" + Up walks back through cat commands only.
type History struct {
	lines []string
	limit int
	pos   int    // len(lines) when not browsing
	typed string // input captured when browsing started
}

// NewHistory creates a history holding at most limit lines.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Record stores a submitted line. A line already present moves to the
// newest position instead of being stored twice.
func (h *History) Record(line string) {
	line = strings.TrimSpace(line)
	if line == "" || parser.Classify(line).Kind == parser.KindChoice {
		h.Reset()
		return
	}
	if i := slices.Index(h.lines, line); i >= 0 {
		h.lines = slices.Delete(h.lines, i, i+1)
	}
	h.lines = append(h.lines, line)
	if len(h.lines) > h.limit {
		h.lines = h.lines[len(h.lines)-h.limit:]
	}
	h.Reset()
}

// Older steps back to the previous line starting with the captured prefix.
// typed is the current input; it becomes the prefix on the first step.
func (h *History) Older(typed string) (string, bool) {
	if h.pos >= len(h.lines) {
		h.pos = len(h.lines)
		h.typed = typed
	}
	for i := h.pos - 1; i >= 0; i-- {
		if strings.HasPrefix(h.lines[i], h.typed) {
			h.pos = i
			return h.lines[i], true
		}
	}
	if h.pos < len(h.lines) {
		return h.lines[h.pos], true
	}
	return "", false
}

// Newer steps forward. Past the newest match it stops browsing and returns
// the captured input with false, so the prompt gets back what was typed.
func (h *History) Newer() (string, bool) {
	if !h.Browsing() {
		return h.typed, false
	}
	for i := h.pos + 1; i < len(h.lines); i++ {
		if strings.HasPrefix(h.lines[i], h.typed) {
			h.pos = i
			return h.lines[i], true
		}
	}
	typed := h.typed
	h.Reset()
	return typed, false
}

// Browsing reports whether Older has moved off the fresh prompt.
func (h *History) Browsing() bool {
	return h.pos < len(h.lines)
}

// Reset leaves browsing mode.
func (h *History) Reset() {
	h.pos = len(h.lines)
	h.typed = ""
}

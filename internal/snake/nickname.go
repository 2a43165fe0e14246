package snake

import (
	"slices"

	"github.com/tomz197/snake/internal/input"
)

// NameEntry is the nickname editor shown after a lost game. The cursor
// counts characters, not bytes.
type NameEntry struct {
	name   []rune
	cursor int
	limit  int
}

// NewNameEntry returns an empty editor accepting at most limit characters.
func NewNameEntry(limit int) *NameEntry {
	return &NameEntry{limit: limit}
}

// HandleKey edits the name. It returns true when the name is confirmed.
func (n *NameEntry) HandleKey(key input.Key) (confirmed bool) {
	switch key.Code {
	case input.KeyEnter:
		return true
	case input.KeyBackspace:
		n.deleteChar()
	case input.KeyLeft:
		n.moveCursor(-1)
	case input.KeyRight:
		n.moveCursor(1)
	case input.KeyRune:
		n.insertChar(key.Rune)
	}
	return false
}

func (n *NameEntry) insertChar(r rune) {
	if n.limit > 0 && len(n.name) >= n.limit {
		return
	}
	n.name = slices.Insert(n.name, n.cursor, r)
	n.moveCursor(1)
}

func (n *NameEntry) deleteChar() {
	if n.cursor == 0 {
		return
	}
	n.name = slices.Delete(n.name, n.cursor-1, n.cursor)
	n.moveCursor(-1)
}

func (n *NameEntry) moveCursor(by int) {
	n.cursor = max(0, min(n.cursor+by, len(n.name)))
}

// String returns the name typed so far.
func (n *NameEntry) String() string { return string(n.name) }

// Cursor returns the cursor position in characters.
func (n *NameEntry) Cursor() int { return n.cursor }

package loop

import (
	"github.com/tomz197/snake/internal/input"
	"github.com/tomz197/snake/internal/leaderboard"
)

// Board shows the leaderboard table.
type Board struct {
	table *leaderboard.Table
}

// NewBoard creates the leaderboard screen over table. The controller
// mutates the same table when a game finishes.
func NewBoard(table *leaderboard.Table) *Board {
	return &Board{table: table}
}

func (b *Board) Kind() ModeKind { return ModeLeaderboard }

// Table returns the table shown by the screen.
func (b *Board) Table() *leaderboard.Table { return b.table }

func (b *Board) HandleKey(key input.Key) Event {
	if key.Code == input.KeyEscape || key.Code == input.KeyEnter || key.Is('q') {
		return switchTo(ModeMenu)
	}
	return Event{}
}

func (b *Board) Draw(ctx DrawContext) {
	drawLeaderboard(ctx, b.table)
}

package loop

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/tomz197/snake/internal/leaderboard"
	"github.com/tomz197/snake/internal/loop/config"
	"github.com/tomz197/snake/internal/snake"
)

const titleArt = `
 ____  _   _    _    _  _______
/ ___|| \ | |  / \  | |/ / ____|
\___ \|  \| | / _ \ | ' /|  _|
 ___) | |\  |/ ___ \| . \| |___
|____/|_| \_/_/   \_\_|\_\_____|`

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	itemStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = itemStyle.Reverse(true).Bold(true)
	hintStyle     = lipgloss.NewStyle().Faint(true)
	popupStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
)

// placeCentered writes a rendered block in the middle of the terminal.
func placeCentered(ctx DrawContext, block string) {
	w, h := lipgloss.Size(block)
	col := max(1, (ctx.Width-w)/2+1)
	row := max(1, (ctx.Height-h)/2+1)
	ctx.Writer.WriteBlock(col, row, block)
}

// drawTitleScreen draws the title art and the menu items.
func drawTitleScreen(ctx DrawContext, labels []string, selected int) {
	items := make([]string, len(labels))
	for i, label := range labels {
		if i == selected {
			items[i] = selectedStyle.Render(label)
		} else {
			items[i] = itemStyle.Render(label)
		}
	}

	block := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(strings.TrimPrefix(titleArt, "\n")),
		"",
		lipgloss.JoinVertical(lipgloss.Center, items...),
		"",
		hintStyle.Render("↑/↓ select  enter confirm  p/l/q shortcuts"),
	)
	placeCentered(ctx, block)
}

// RenderLeaderboard formats the table as a bordered grid.
func RenderLeaderboard(board *leaderboard.Table) string {
	rows := make([][]string, 0, leaderboard.Capacity)
	for i, rec := range board.Records {
		name, score := rec.NameString(), strconv.Itoa(int(rec.Score))
		if name == "" && rec.Score == 0 {
			name, score = "-", "-"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), name, score})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "NAME", "SCORE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return s.Bold(true)
			case col == 1:
				return s.Width(config.MaxNicknameLength + 2)
			case col == 2:
				return s.Align(lipgloss.Right)
			}
			return s
		}).
		String()
}

// drawLeaderboard draws the ranked table.
func drawLeaderboard(ctx DrawContext, board *leaderboard.Table) {
	block := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("LEADERBOARD"),
		"",
		RenderLeaderboard(board),
		"",
		hintStyle.Render("q/esc/enter back to menu"),
	)
	placeCentered(ctx, block)
}

// drawHUD writes the score line above the playground.
func drawHUD(ctx DrawContext, score uint16, paused bool) {
	left := ctx.Canvas.OffsetCol()
	row := max(1, ctx.Canvas.OffsetRow()-1)
	ctx.Writer.WriteAt(left+1, row, fmt.Sprintf("Score: %d", score))

	hint := "space pause  esc menu"
	if paused {
		hint = "space resume  esc menu"
	}
	right := left + ctx.Canvas.TerminalWidth() + 1
	ctx.Writer.WriteAt(max(1, right-runewidth.StringWidth(hint)+1), row, hintStyle.Render(hint))
}

// nameField renders the nickname with the cursor cell highlighted.
func nameField(entry *snake.NameEntry) string {
	runes := []rune(entry.String())
	cur := entry.Cursor()

	at, after := " ", ""
	if cur < len(runes) {
		at = string(runes[cur])
		after = string(runes[cur+1:])
	}
	field := string(runes[:cur]) + cursorStyle.Render(at) + after
	visible := runewidth.StringWidth(entry.String())
	if cur == len(runes) {
		visible++
	}
	return field + strings.Repeat(" ", max(0, config.MaxNicknameLength+1-visible))
}

// drawGameOver draws the nickname popup over the playground.
func drawGameOver(ctx DrawContext, score uint16, entry *snake.NameEntry) {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("GAME OVER"),
		fmt.Sprintf("Your score: %d", score),
		"",
		fmt.Sprintf("Enter your nickname (max %d characters):", config.MaxNicknameLength),
		"> "+nameField(entry),
		"",
		hintStyle.Render("enter to confirm"),
	)
	placeCentered(ctx, popupStyle.Render(body))
}

// drawPaused draws the pause notice.
func drawPaused(ctx DrawContext) {
	body := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("PAUSED"),
		"",
		hintStyle.Render("space to resume"),
	)
	placeCentered(ctx, popupStyle.Render(body))
}

// drawTooSmall replaces the frame when the terminal cannot fit the playground.
func drawTooSmall(ctx DrawContext) {
	ctx.Writer.WriteCentered(ctx.Width, max(1, ctx.Height/2), "terminal too small")
}

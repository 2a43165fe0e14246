package loop

import (
	"github.com/tomz197/snake/internal/input"
)

type menuItem struct {
	label  string
	hotkey rune
	event  Event
}

var menuItems = []menuItem{
	{label: "Play", hotkey: 'p', event: switchTo(ModeSimulation)},
	{label: "Leaderboard", hotkey: 'l', event: switchTo(ModeLeaderboard)},
	{label: "Quit", hotkey: 'q', event: Event{Kind: EventQuit}},
}

// Menu is the title screen.
type Menu struct {
	selected int
}

// NewMenu creates a menu with the first item selected.
func NewMenu() *Menu { return &Menu{} }

func (m *Menu) Kind() ModeKind { return ModeMenu }

// Selected returns the highlighted item index.
func (m *Menu) Selected() int { return m.selected }

func (m *Menu) HandleKey(key input.Key) Event {
	switch key.Code {
	case input.KeyUp:
		m.selected = (m.selected + len(menuItems) - 1) % len(menuItems)
	case input.KeyDown:
		m.selected = (m.selected + 1) % len(menuItems)
	case input.KeyEnter:
		return menuItems[m.selected].event
	case input.KeyEscape:
		return Event{Kind: EventQuit}
	case input.KeyRune:
		for _, item := range menuItems {
			if key.Is(item.hotkey) {
				return item.event
			}
		}
	}
	return Event{}
}

func (m *Menu) Draw(ctx DrawContext) {
	labels := make([]string, len(menuItems))
	for i, item := range menuItems {
		labels[i] = item.label
	}
	drawTitleScreen(ctx, labels, m.selected)
}

package loop

import (
	"github.com/tomz197/snake/internal/draw"
	"github.com/tomz197/snake/internal/input"
	"github.com/tomz197/snake/internal/snake"
)

// ModeKind identifies one of the three screens of the game.
type ModeKind int

const (
	ModeMenu ModeKind = iota
	ModeSimulation
	ModeLeaderboard
)

func (k ModeKind) String() string {
	switch k {
	case ModeMenu:
		return "menu"
	case ModeSimulation:
		return "simulation"
	case ModeLeaderboard:
		return "leaderboard"
	}
	return "unknown"
}

// Mode is a screen that owns its state while parked.
type Mode interface {
	Kind() ModeKind
	// HandleKey reacts to one key press and tells the controller what to do next.
	HandleKey(key input.Key) Event
	// Draw renders the mode. It must not change mode state.
	Draw(ctx DrawContext)
}

// DrawContext provides drawing resources for modes.
type DrawContext struct {
	Canvas *draw.Canvas      // Half-block canvas sized to the playground
	Writer *draw.ChunkWriter // Frame buffer for text and styled blocks
	Width  int               // Terminal columns
	Height int               // Terminal rows
}

// EventKind says what a mode asks the controller to do.
type EventKind int

const (
	EventNone   EventKind = iota
	EventSwitch           // Activate Target
	EventTurn             // Queue Action for the next tick
	EventFinish           // Record Name/Score and start over
	EventQuit             // Leave the game
)

// Event is the result of a key press.
type Event struct {
	Kind   EventKind
	Target ModeKind
	Action snake.Action
	Name   string
	Score  uint16
}

func switchTo(kind ModeKind) Event { return Event{Kind: EventSwitch, Target: kind} }

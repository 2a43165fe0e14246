package snake

import (
	"github.com/tomz197/snake/internal/geom"
	"github.com/tomz197/snake/internal/input"
)

// Action is a discrete command fed to the engine on a tick.
type Action int

const (
	ActionNone Action = iota
	TurnUp
	TurnDown
	TurnLeft
	TurnRight
)

func (a Action) String() string {
	switch a {
	case TurnUp:
		return "turn-up"
	case TurnDown:
		return "turn-down"
	case TurnLeft:
		return "turn-left"
	case TurnRight:
		return "turn-right"
	default:
		return "none"
	}
}

// Direction returns the heading a turn action asks for.
func (a Action) Direction() (geom.Direction, bool) {
	switch a {
	case TurnUp:
		return geom.Up, true
	case TurnDown:
		return geom.Down, true
	case TurnLeft:
		return geom.Left, true
	case TurnRight:
		return geom.Right, true
	}
	return 0, false
}

// Resolve maps a key press to a turn. Turns along the current axis
// (reversals and repeats) resolve to ActionNone.
func Resolve(key input.Key, head geom.Direction) Action {
	var want Action
	switch {
	case key.Code == input.KeyUp || key.Is('w') || key.Is('i'):
		want = TurnUp
	case key.Code == input.KeyDown || key.Is('s') || key.Is('k'):
		want = TurnDown
	case key.Code == input.KeyLeft || key.Is('a') || key.Is('j'):
		want = TurnLeft
	case key.Code == input.KeyRight || key.Is('d') || key.Is('l'):
		want = TurnRight
	default:
		return ActionNone
	}

	dir, _ := want.Direction()
	if dir.Parallel(head) {
		return ActionNone
	}
	return want
}

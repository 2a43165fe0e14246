package loop

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/snake/internal/geom"
	"github.com/tomz197/snake/internal/input"
	"github.com/tomz197/snake/internal/loop/config"
	"github.com/tomz197/snake/internal/snake"
)

// zeroRand places every food item in the bottom-left corner, away from
// the snake's path.
type zeroRand struct{}

func (zeroRand) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestController(t *testing.T, kill bool) (*Controller, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := NewController(Options{
		Game: snake.Config{
			Playground:    config.Playground,
			BordersKill:   kill,
			InitialLength: config.InitialLength,
			Step:          config.Step,
			Rand:          zeroRand{},
		},
		Tick: 250 * time.Millisecond,
		Now:  clock.Now,
	})
	return c, clock
}

func press(c *Controller, keys ...input.Key) {
	for _, k := range keys {
		c.HandleKey(k)
	}
}

func typeText(c *Controller, s string) {
	for _, r := range s {
		c.HandleKey(input.Rune(r))
	}
}

var (
	keyUp    = input.Key{Code: input.KeyUp}
	keyDown  = input.Key{Code: input.KeyDown}
	keyEnter = input.Key{Code: input.KeyEnter}
	keyEsc   = input.Key{Code: input.KeyEscape}
)

func TestNewControllerOrder(t *testing.T) {
	c, _ := newTestController(t, false)
	assert.Equal(t, []ModeKind{ModeMenu, ModeLeaderboard, ModeSimulation}, c.Order())
	assert.True(t, c.Running())
}

func TestSwitchTransfersOwnership(t *testing.T) {
	c, _ := newTestController(t, false)

	typeText(c, "l")
	assert.Equal(t, []ModeKind{ModeLeaderboard, ModeSimulation, ModeMenu}, c.Order())

	typeText(c, "q")
	assert.Equal(t, []ModeKind{ModeMenu, ModeSimulation, ModeLeaderboard}, c.Order())
	assert.True(t, c.Running(), "q on the leaderboard only leaves the screen")

	typeText(c, "p")
	assert.Equal(t, []ModeKind{ModeSimulation, ModeLeaderboard, ModeMenu}, c.Order())
	assert.Len(t, c.Order(), 3)
}

func TestSwitchToActiveIsNoop(t *testing.T) {
	c, _ := newTestController(t, false)
	before := c.Order()
	c.switchTo(ModeMenu)
	assert.Equal(t, before, c.Order())
}

func TestParkedSimulationKeepsState(t *testing.T) {
	c, clock := newTestController(t, false)
	typeText(c, "p")
	sim := c.Active().(*Simulation)

	for i := 0; i < 4; i++ {
		require.True(t, c.Tick())
		clock.Advance(250 * time.Millisecond)
	}
	head := sim.Engine().Head()

	press(c, keyEsc)
	assert.Equal(t, ModeMenu, c.Active().Kind())
	clock.Advance(time.Second)
	assert.False(t, c.Tick(), "no ticks outside the simulation")

	typeText(c, "p")
	require.Same(t, sim, c.Active())
	assert.Equal(t, head, sim.Engine().Head())
}

func TestTickGate(t *testing.T) {
	c, clock := newTestController(t, false)
	typeText(c, "p")

	assert.True(t, c.Tick())
	assert.False(t, c.Tick())
	clock.Advance(249 * time.Millisecond)
	assert.False(t, c.Tick())
	clock.Advance(time.Millisecond)
	assert.True(t, c.Tick())
}

func TestLastTurnWins(t *testing.T) {
	c, clock := newTestController(t, false)
	typeText(c, "p")
	sim := c.Active().(*Simulation)
	require.Equal(t, geom.Right, sim.Engine().Direction())

	press(c, keyUp, keyDown)
	assert.Equal(t, snake.TurnDown, c.Pending())

	require.True(t, c.Tick())
	assert.Equal(t, geom.Down, sim.Engine().Direction())
	assert.Equal(t, snake.ActionNone, c.Pending(), "queued turn is consumed by the tick")

	clock.Advance(250 * time.Millisecond)
	press(c, input.Key{Code: input.KeyLeft}, input.Rune('x'))
	assert.Equal(t, snake.TurnLeft, c.Pending(), "irrelevant keys do not clear the queued turn")
}

func TestPause(t *testing.T) {
	c, clock := newTestController(t, false)
	typeText(c, "p")
	sim := c.Active().(*Simulation)

	typeText(c, " ")
	require.True(t, sim.Paused())
	head := sim.Engine().Head()

	press(c, keyUp)
	assert.Equal(t, snake.ActionNone, c.Pending())
	require.True(t, c.Tick())
	assert.Equal(t, head, sim.Engine().Head())

	typeText(c, " ")
	clock.Advance(250 * time.Millisecond)
	require.True(t, c.Tick())
	assert.NotEqual(t, head, sim.Engine().Head())
}

func TestFinishGame(t *testing.T) {
	c, clock := newTestController(t, true)
	typeText(c, "p")
	sim := c.Active().(*Simulation)

	for i := 0; i < 100 && !sim.Engine().Lost(); i++ {
		require.True(t, c.Tick())
		clock.Advance(250 * time.Millisecond)
	}
	require.True(t, sim.Engine().Lost())

	typeText(c, "ann")
	assert.Equal(t, ModeSimulation, c.Active().Kind(), "typing goes to the nickname popup")
	press(c, keyEnter)

	assert.Equal(t, []ModeKind{ModeMenu, ModeSimulation, ModeLeaderboard}, c.Order())
	assert.Equal(t, "ann", c.Table().Records[0].NameString())
	assert.Equal(t, uint16(8), c.Table().Records[0].Score)

	next := c.modes[1].(*Simulation)
	assert.NotSame(t, sim, next)
	assert.NotEqual(t, sim.ID(), next.ID())
	assert.False(t, next.Engine().Lost())

	typeText(c, "l")
	board := c.Active().(*Board)
	assert.Same(t, c.Table(), board.Table())
}

func TestInterruptQuitsEverywhere(t *testing.T) {
	interrupt := input.Key{Code: input.KeyInterrupt}

	c, _ := newTestController(t, false)
	press(c, interrupt)
	assert.False(t, c.Running())

	c, _ = newTestController(t, false)
	typeText(c, "p")
	press(c, interrupt)
	assert.False(t, c.Running())
}

func TestMenuNavigation(t *testing.T) {
	c, _ := newTestController(t, false)
	menu := c.Active().(*Menu)

	press(c, keyUp)
	assert.Equal(t, 2, menu.Selected(), "selection wraps")
	press(c, keyDown, keyDown)
	assert.Equal(t, 1, menu.Selected())

	press(c, keyEnter)
	assert.Equal(t, ModeLeaderboard, c.Active().Kind())
	press(c, keyEnter)
	assert.Equal(t, ModeMenu, c.Active().Kind())

	press(c, keyDown, keyEnter)
	assert.False(t, c.Running())
}

func TestMenuEscapeQuits(t *testing.T) {
	c, _ := newTestController(t, false)
	press(c, keyEsc)
	assert.False(t, c.Running())
}

// feedTerminal decodes raw terminal bytes and hands every key to c.
func feedTerminal(t *testing.T, c *Controller, raw string) {
	t.Helper()
	s := input.StartStream(bufio.NewReader(strings.NewReader(raw)))
	require.Eventually(t, func() bool {
		keys, open := s.Drain()
		press(c, keys...)
		return !open
	}, time.Second, time.Millisecond)
}

func TestEditingKeysAreIgnored(t *testing.T) {
	c, _ := newTestController(t, false)
	menu := c.Active().(*Menu)

	// Delete, Home, F1, then Ctrl+Down.
	feedTerminal(t, c, "\x1b[3~\x1b[H\x1bOP\x1b[1;5B")
	assert.True(t, c.Running())
	assert.Equal(t, ModeMenu, c.Active().Kind())
	assert.Equal(t, 1, menu.Selected())

	typeText(c, "p")
	require.Equal(t, ModeSimulation, c.Active().Kind())
	feedTerminal(t, c, "\x1b[3~\x1b[6~")
	assert.Equal(t, ModeSimulation, c.Active().Kind())
}

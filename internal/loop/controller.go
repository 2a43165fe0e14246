package loop

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/snake/internal/input"
	"github.com/tomz197/snake/internal/leaderboard"
	"github.com/tomz197/snake/internal/loop/config"
	"github.com/tomz197/snake/internal/snake"
)

// Options configure a Controller.
type Options struct {
	Table  *leaderboard.Table
	Game   snake.Config     // Template for every new game
	Tick   time.Duration    // Time between simulation ticks
	Now    func() time.Time // Clock used to gate ticks
	Logger *log.Logger
}

// Controller owns the three modes and routes keys and ticks to the
// active one. modes[0] is active, the others are parked with their state.
type Controller struct {
	modes    []Mode
	table    *leaderboard.Table
	game     snake.Config
	tick     time.Duration
	now      func() time.Time
	lastTick time.Time
	pending  snake.Action
	running  bool
	logger   *log.Logger
}

// NewController creates the modes in the order menu, leaderboard, simulation.
func NewController(opts Options) *Controller {
	c := &Controller{
		table:   opts.Table,
		game:    opts.Game,
		tick:    opts.Tick,
		now:     opts.Now,
		logger:  opts.Logger,
		running: true,
	}
	if c.table == nil {
		c.table = leaderboard.Default()
	}
	if c.tick <= 0 {
		c.tick = config.TickRate
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}

	c.modes = []Mode{
		NewMenu(),
		NewBoard(c.table),
		NewSimulation(c.game, c.logger),
	}
	return c
}

// Active returns the mode receiving keys and drawing the screen.
func (c *Controller) Active() Mode { return c.modes[0] }

// Order returns the kinds of all modes, active first.
func (c *Controller) Order() []ModeKind {
	kinds := make([]ModeKind, len(c.modes))
	for i, m := range c.modes {
		kinds[i] = m.Kind()
	}
	return kinds
}

// Running reports whether the loop should keep going.
func (c *Controller) Running() bool { return c.running }

// Stop ends the loop after the current iteration.
func (c *Controller) Stop() { c.running = false }

// Pending returns the turn queued for the next tick.
func (c *Controller) Pending() snake.Action { return c.pending }

// Table returns the leaderboard updated by finished games.
func (c *Controller) Table() *leaderboard.Table { return c.table }

// HandleKey dispatches one key press. Ctrl+C quits from every mode.
func (c *Controller) HandleKey(key input.Key) {
	if key.Code == input.KeyInterrupt {
		c.logger.Debug("interrupt")
		c.Stop()
		return
	}

	ev := c.Active().HandleKey(key)
	switch ev.Kind {
	case EventQuit:
		c.Stop()
	case EventSwitch:
		c.switchTo(ev.Target)
	case EventTurn:
		// Only the latest turn of a tick counts.
		c.pending = ev.Action
	case EventFinish:
		c.finishGame(ev.Name, ev.Score)
	}
}

// Tick advances the simulation when it is active and the tick interval
// has passed. It returns whether a tick ran.
func (c *Controller) Tick() bool {
	sim, ok := c.Active().(*Simulation)
	if !ok {
		return false
	}
	now := c.now()
	if now.Sub(c.lastTick) < c.tick {
		return false
	}
	sim.Advance(c.pending)
	c.pending = snake.ActionNone
	c.lastTick = now
	return true
}

// extract removes the mode of the given kind and returns it.
func (c *Controller) extract(kind ModeKind) Mode {
	i := slices.IndexFunc(c.modes, func(m Mode) bool { return m.Kind() == kind })
	if i < 0 {
		panic(fmt.Sprintf("loop: no %s mode", kind))
	}
	m := c.modes[i]
	c.modes = slices.Delete(c.modes, i, i+1)
	return m
}

// switchTo moves the target to the front and parks the previous mode at
// the back.
func (c *Controller) switchTo(kind ModeKind) {
	prev := c.Active()
	if prev.Kind() == kind {
		return
	}
	target := c.extract(kind)
	c.extract(prev.Kind())
	c.modes = append([]Mode{target}, c.modes...)
	c.modes = append(c.modes, prev)
	c.pending = snake.ActionNone
	c.logger.Debug("mode switched", "from", prev.Kind(), "to", kind)
}

// finishGame records the result of the lost game, replaces it with a new
// one and returns to the menu with the leaderboard parked last.
func (c *Controller) finishGame(name string, score uint16) {
	old := c.extract(ModeSimulation)
	menu := c.extract(ModeMenu)
	board := c.extract(ModeLeaderboard)

	rank, ok := c.table.RankInsert(name, score)
	if ok {
		c.logger.Info("leaderboard entry", "name", name, "score", score, "rank", rank+1)
	} else {
		c.logger.Info("score did not qualify", "name", name, "score", score)
	}

	sim := NewSimulation(c.game, c.logger)
	c.logger.Debug("new game", "previous", old.(*Simulation).ID(), "next", sim.ID())
	c.modes = []Mode{menu, sim, board}
	c.pending = snake.ActionNone
}

package loop

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/snake/internal/geom"
	"github.com/tomz197/snake/internal/input"
	"github.com/tomz197/snake/internal/leaderboard"
	"github.com/tomz197/snake/internal/loop/config"
	"github.com/tomz197/snake/internal/snake"
)

// Simulation is the playing screen: one engine plus the nickname popup
// shown once the game is lost.
type Simulation struct {
	id     uuid.UUID
	engine *snake.Engine
	name   *snake.NameEntry
	paused bool
	logger *log.Logger
}

// NewSimulation starts a fresh game.
func NewSimulation(cfg snake.Config, logger *log.Logger) *Simulation {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Simulation{
		id:     uuid.New(),
		engine: snake.NewEngine(cfg),
		name:   snake.NewNameEntry(config.MaxNicknameLength),
	}
	s.logger = logger.With("game", s.id.String())
	return s
}

func (s *Simulation) Kind() ModeKind { return ModeSimulation }

// ID identifies the game in logs.
func (s *Simulation) ID() uuid.UUID { return s.id }

// Engine exposes the underlying game.
func (s *Simulation) Engine() *snake.Engine { return s.engine }

// Paused reports whether ticks are suspended.
func (s *Simulation) Paused() bool { return s.paused }

// Score is the current table score of the game.
func (s *Simulation) Score() uint16 {
	return leaderboard.ScoreFromLength(s.engine.Length())
}

func (s *Simulation) HandleKey(key input.Key) Event {
	if s.engine.Lost() {
		if s.name.HandleKey(key) {
			return Event{Kind: EventFinish, Name: s.name.String(), Score: s.Score()}
		}
		return Event{}
	}

	switch {
	case key.Is(' '):
		s.paused = !s.paused
		s.logger.Debug("pause toggled", "paused", s.paused)
		return Event{}
	case key.Code == input.KeyEscape:
		return switchTo(ModeMenu)
	case s.paused:
		return Event{}
	}
	if action := snake.Resolve(key, s.engine.Direction()); action != snake.ActionNone {
		return Event{Kind: EventTurn, Action: action}
	}
	return Event{}
}

// Advance runs one tick. Paused or lost games do not move.
func (s *Simulation) Advance(action snake.Action) {
	if s.paused || s.engine.Lost() {
		return
	}
	s.engine.Advance(action)
	if s.engine.Lost() {
		s.logger.Info("game over", "score", s.Score(), "head", s.engine.Head())
	}
}

func (s *Simulation) Draw(ctx DrawContext) {
	pg := s.engine.Playground()
	// The canvas grows downwards, the playground upwards.
	toCanvas := func(p geom.Point) (float64, float64) {
		return p.X - pg.Left(), pg.Bottom() - p.Y
	}

	for _, seg := range s.engine.Segments() {
		x1, y1 := toCanvas(seg.Tail)
		x2, y2 := toCanvas(seg.Head)
		ctx.Canvas.DrawLine(x1, y1, x2, y2)
	}
	if food, ok := s.engine.Food(); ok {
		ctx.Canvas.SetFloat(toCanvas(food))
	}
	ctx.Canvas.Render(ctx.Writer)
	ctx.Canvas.RenderBorder(ctx.Writer)

	drawHUD(ctx, s.Score(), s.paused)
	if s.engine.Lost() {
		drawGameOver(ctx, s.Score(), s.name)
	} else if s.paused {
		drawPaused(ctx)
	}
}

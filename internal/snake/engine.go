// Package snake implements the continuous-coordinate snake simulation:
// segment movement, growth, wraparound and self-collision.
package snake

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/tomz197/snake/internal/geom"
)

// ErrEntropy is the panic cause when the random source cannot be read.
var ErrEntropy = errors.New("snake: random source failed")

// growthPerFood is how much the target length grows for each food eaten.
const growthPerFood = 1.0

// State is the simulation phase.
type State int

const (
	Running State = iota
	Lost
)

// Config describes the playground and movement constants of a game.
type Config struct {
	Playground    geom.Rect
	BordersKill   bool
	InitialLength float64
	Step          float64   // Distance the head and tail move per tick
	Rand          io.Reader // Defaults to crypto/rand
}

// absorption is eaten food travelling towards the tail. The tail waits on
// it for pauses ticks before moving again.
type absorption struct {
	at     geom.Point
	pauses int
}

// Engine owns the snake, its food and the loss flag.
type Engine struct {
	cfg      Config
	segments []geom.Segment // Head first
	length   float64        // Target length
	pending  []absorption
	food     geom.Point
	hasFood  bool
	state    State
}

// NewEngine creates a running game with a single segment heading right,
// starting at the playground centre.
func NewEngine(cfg Config) *Engine {
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}
	start := cfg.Playground.Center()
	seg := geom.NewSegment(start, geom.Right)
	seg.AdvanceHead(cfg.InitialLength)
	return &Engine{
		cfg:      cfg,
		segments: []geom.Segment{seg},
		length:   cfg.InitialLength,
	}
}

// Advance runs one tick with the given action. It does nothing once lost.
func (e *Engine) Advance(action Action) {
	if e.state == Lost {
		return
	}
	if len(e.segments) == 0 {
		panic("snake: no segments")
	}

	// Food must be handled before any new segment appears at the head.
	e.processFood()
	e.turn(action)
	e.segments[0].AdvanceHead(e.cfg.Step)
	e.advanceTail()
	e.wrap()
	e.checkLoss()
}

// processFood places food when none is active and eats it when the head
// sits on it.
func (e *Engine) processFood() {
	if !e.hasFood {
		e.food = e.randomFood()
		e.hasFood = true
	}
	if e.segments[0].Head.Equal(e.food) {
		pauses := int(math.Round(growthPerFood / e.cfg.Step))
		e.pending = append(e.pending, absorption{at: e.food, pauses: pauses})
		e.length += growthPerFood
		e.hasFood = false
	}
}

// randomFood draws one 32-bit value and uses its low and high halves for
// the two axes.
func (e *Engine) randomFood() geom.Point {
	var buf [4]byte
	if _, err := io.ReadFull(e.cfg.Rand, buf[:]); err != nil {
		panic(fmt.Errorf("%w: %v", ErrEntropy, err))
	}
	v := binary.LittleEndian.Uint32(buf[:])
	pg := e.cfg.Playground
	x := uint32(pg.X) + v%uint32(pg.W)
	y := uint32(pg.Y) + (v>>16)%uint32(pg.H)
	return geom.Point{X: float64(x), Y: float64(y)}
}

// turn starts a new zero-length head segment for a valid turn.
func (e *Engine) turn(action Action) {
	dir, ok := action.Direction()
	if !ok || dir.Parallel(e.segments[0].Dir) {
		return
	}
	e.segments = slices.Insert(e.segments, 0, geom.NewSegment(e.segments[0].Head, dir))
}

// advanceTail shrinks the tail by one step unless it is waiting on
// absorbed food, and drops the tail segment once it has no length left.
func (e *Engine) advanceTail() {
	last := len(e.segments) - 1
	tail := &e.segments[last]

	if len(e.pending) > 0 && tail.Tail.Equal(e.pending[0].at) {
		e.pending[0].pauses--
		if e.pending[0].pauses <= 0 {
			e.pending = e.pending[1:]
		}
		return
	}

	// Zero-length tails show up after a wraparound followed by a turn.
	remove := tail.Degenerate()
	tail.AdvanceTail(e.cfg.Step)
	if tail.Degenerate() {
		remove = true
	}
	if remove && last > 0 {
		e.segments = e.segments[:last]
	}
}

// wrap moves the head to the opposite edge when it leaves a wrapping
// playground. The extra tail step cancels the length of the new segment.
// If the tail sits on an absorption point that step consumes a pause, so
// a food can be absorbed over fewer ticks; total growth is unchanged.
func (e *Engine) wrap() {
	if e.cfg.BordersKill {
		return
	}
	head := e.segments[0]
	entry, mirrored, crossed := e.cfg.Playground.Wrap(head.Head, head.Dir)
	if !crossed {
		return
	}
	e.segments = slices.Insert(e.segments, 0, geom.Segment{Tail: entry, Head: mirrored, Dir: head.Dir})
	e.advanceTail()
}

// checkLoss flags the game lost on a deadly border or when the head runs
// into the bounding box of any other non-degenerate segment.
func (e *Engine) checkLoss() {
	head := e.segments[0].Head
	if e.cfg.BordersKill && e.cfg.Playground.OnOrOutside(head) {
		e.state = Lost
		return
	}
	for _, s := range e.segments[1:] {
		if s.Degenerate() {
			continue
		}
		if s.Contains(head) {
			e.state = Lost
			return
		}
	}
}

// State returns the current simulation phase.
func (e *Engine) State() State { return e.state }

// Lost reports whether the game is over.
func (e *Engine) Lost() bool { return e.state == Lost }

// Direction returns the direction of the head segment.
func (e *Engine) Direction() geom.Direction { return e.segments[0].Dir }

// Head returns the position of the snake's head.
func (e *Engine) Head() geom.Point { return e.segments[0].Head }

// Length returns the target length, which is also the score.
func (e *Engine) Length() float64 { return e.length }

// DrawnLength sums the extent of every segment.
func (e *Engine) DrawnLength() float64 {
	var total float64
	for _, s := range e.segments {
		total += s.Len()
	}
	return total
}

// Segments returns a copy of the segment chain, head first.
func (e *Engine) Segments() []geom.Segment {
	return slices.Clone(e.segments)
}

// Food returns the active food position, if any.
func (e *Engine) Food() (geom.Point, bool) { return e.food, e.hasFood }

// Pending returns the absorbed food positions still ahead of the tail.
func (e *Engine) Pending() []geom.Point {
	out := make([]geom.Point, len(e.pending))
	for i, p := range e.pending {
		out[i] = p.at
	}
	return out
}

// Playground returns the bounds of the play area.
func (e *Engine) Playground() geom.Rect { return e.cfg.Playground }

// Package geom provides the axis-aligned segment model the snake is built from.
package geom

import "gonum.org/v1/gonum/floats/scalar"

// Tolerance used when comparing coordinates. Positions only ever move in
// half-unit steps, so anything tighter than that works.
const tolerance = 1e-9

// Direction is one of the four compass directions a segment can point in.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Horizontal reports whether d moves along the x axis.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

// Parallel reports whether d and o share an axis (same or opposite direction).
func (d Direction) Parallel(o Direction) bool {
	return d.Horizontal() == o.Horizontal()
}

// Vector returns the unit step for d. Up increases y.
func (d Direction) Vector() (dx, dy float64) {
	switch d {
	case Up:
		return 0, 1
	case Down:
		return 0, -1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Point is a position in playground coordinates.
type Point struct {
	X, Y float64
}

// Equal compares two points with a small absolute/relative tolerance.
func (p Point) Equal(o Point) bool {
	return scalar.EqualWithinAbsOrRel(p.X, o.X, tolerance, tolerance) &&
		scalar.EqualWithinAbsOrRel(p.Y, o.Y, tolerance, tolerance)
}

// Moved returns p shifted by step units along d.
func (p Point) Moved(d Direction, step float64) Point {
	dx, dy := d.Vector()
	return Point{X: p.X + dx*step, Y: p.Y + dy*step}
}

// Segment is one straight piece of the snake. Tail is the trailing
// endpoint, Head the leading one; they differ only along Dir's axis.
type Segment struct {
	Tail Point
	Head Point
	Dir  Direction
}

// NewSegment returns a zero-length segment at p pointing in d.
func NewSegment(p Point, d Direction) Segment {
	return Segment{Tail: p, Head: p, Dir: d}
}

// Len returns the extent of the segment along its axis.
func (s Segment) Len() float64 {
	if s.Dir.Horizontal() {
		return abs(s.Head.X - s.Tail.X)
	}
	return abs(s.Head.Y - s.Tail.Y)
}

// Degenerate reports whether both endpoints coincide.
func (s Segment) Degenerate() bool {
	return s.Tail.Equal(s.Head)
}

// AdvanceHead moves the leading endpoint by step along the segment direction.
func (s *Segment) AdvanceHead(step float64) {
	s.Head = s.Head.Moved(s.Dir, step)
}

// AdvanceTail moves the trailing endpoint by step toward the leading one.
func (s *Segment) AdvanceTail(step float64) {
	s.Tail = s.Tail.Moved(s.Dir, step)
}

// Contains reports whether p lies inside the segment's inclusive bounding
// box, regardless of which way the segment is oriented.
func (s Segment) Contains(p Point) bool {
	minX, maxX := order(s.Tail.X, s.Head.X)
	minY, maxY := order(s.Tail.Y, s.Head.Y)
	return minX <= p.X && p.X <= maxX && minY <= p.Y && p.Y <= maxY
}

// Rect is an axis-aligned rectangle with integer origin and size.
type Rect struct {
	X, Y int
	W, H int
}

// Left returns the minimum x.
func (r Rect) Left() float64 { return float64(r.X) }

// Right returns the maximum x.
func (r Rect) Right() float64 { return float64(r.X + r.W) }

// Top returns the minimum y.
func (r Rect) Top() float64 { return float64(r.Y) }

// Bottom returns the maximum y.
func (r Rect) Bottom() float64 { return float64(r.Y + r.H) }

// Center returns the integer centre of the rectangle.
func (r Rect) Center() Point {
	return Point{X: float64(r.X + r.W/2), Y: float64(r.Y + r.H/2)}
}

// OnOrOutside reports whether p touches or crosses any edge.
func (r Rect) OnOrOutside(p Point) bool {
	return p.X >= r.Right() || p.X <= r.Left() || p.Y >= r.Bottom() || p.Y <= r.Top()
}

// Wrap reports whether a head at p moving in d has crossed the edge it is
// heading for. If so it returns the mirrored point on the opposite edge
// and the point where the crossing segment enters from.
func (r Rect) Wrap(p Point, d Direction) (entry, mirrored Point, crossed bool) {
	switch d {
	case Left:
		if p.X < r.Left() {
			over := r.Left() - p.X
			return Point{X: r.Right(), Y: p.Y}, Point{X: r.Right() - over, Y: p.Y}, true
		}
	case Right:
		if p.X > r.Right() {
			over := p.X - r.Right()
			return Point{X: r.Left(), Y: p.Y}, Point{X: r.Left() + over, Y: p.Y}, true
		}
	case Up:
		if p.Y > r.Bottom() {
			over := p.Y - r.Bottom()
			return Point{X: p.X, Y: r.Top()}, Point{X: p.X, Y: r.Top() + over}, true
		}
	case Down:
		if p.Y < r.Top() {
			over := r.Top() - p.Y
			return Point{X: p.X, Y: r.Bottom()}, Point{X: p.X, Y: r.Bottom() - over}, true
		}
	}
	return Point{}, Point{}, false
}

func order(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

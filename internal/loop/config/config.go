// Package config centralizes all tunable game parameters.
package config

import (
	"time"

	"github.com/tomz197/snake/internal/geom"
)

// Playground - the area the snake lives in, in logical units.
var Playground = geom.Rect{X: 10, Y: 10, W: 50, H: 50}

// Snake
const (
	InitialLength = 8.0
	Step          = 0.5 // Distance moved per tick
	BordersKill   = false
)

// Ticks
const (
	TickRate = 250 * time.Millisecond
)

// Leaderboard
const (
	MaxNicknameLength = 16 // Characters accepted by the game-over popup
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

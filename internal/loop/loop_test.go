package loop

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/snake/internal/draw"
	"github.com/tomz197/snake/internal/input"
)

func TestLayout(t *testing.T) {
	tests := []struct {
		name                       string
		width, height              int
		cols, rows, offCol, offRow int
	}{
		{"standard terminal", 80, 24, 42, 21, 19, 2},
		{"wide terminal", 200, 30, 54, 27, 73, 2},
		{"narrow terminal", 30, 40, 28, 14, 1, 13},
		{"tiny terminal", 10, 4, 2, 1, 4, 2},
		{"too small", 3, 3, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows, offCol, offRow := layout(tt.width, tt.height)
			assert.Equal(t, []int{tt.cols, tt.rows, tt.offCol, tt.offRow}, []int{cols, rows, offCol, offRow})
			if cols > 0 {
				assert.LessOrEqual(t, offRow+rows+1, tt.height, "bottom border fits")
				assert.LessOrEqual(t, offCol+cols+1, tt.width, "right border fits")
			}
		})
	}
}

func runWithKeys(t *testing.T, c *Controller, keys ...input.Key) string {
	t.Helper()
	stream, send := input.NewStream()
	for _, k := range keys {
		send <- k
	}

	var out bytes.Buffer
	err := Run(context.Background(), c, stream, &out, RunOptions{
		TermSizeFunc: draw.FixedSize(80, 24),
		FrameTime:    time.Millisecond,
	})
	require.NoError(t, err)
	return out.String()
}

func TestRunQuitFromMenu(t *testing.T) {
	c, _ := newTestController(t, false)
	out := runWithKeys(t, c, input.Rune('q'))

	assert.False(t, c.Running())
	assert.Contains(t, out, "\033[?25l")
	assert.Contains(t, out, "\033[?25h")
}

func TestRunDrawsActiveMode(t *testing.T) {
	c, _ := newTestController(t, false)
	stream, send := input.NewStream()
	send <- input.Rune('p')
	close(send)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), c, stream, &out, RunOptions{
		TermSizeFunc: draw.FixedSize(80, 24),
		FrameTime:    time.Millisecond,
	}))

	assert.False(t, c.Running(), "closed input stops the loop")
	assert.Equal(t, ModeSimulation, c.Active().Kind())
}

func TestRunStopsOnCancel(t *testing.T) {
	c, _ := newTestController(t, false)
	stream, _ := input.NewStream()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, Run(ctx, c, stream, &out, RunOptions{
		TermSizeFunc: draw.FixedSize(80, 24),
		FrameTime:    time.Millisecond,
	}))
	assert.False(t, c.Running())
	assert.Contains(t, out.String(), "Play", "one frame is drawn before the loop notices")
}

func TestDrawFrameSimulation(t *testing.T) {
	c, _ := newTestController(t, false)
	typeText(c, "p")
	require.True(t, c.Tick())

	var out bytes.Buffer
	cw := draw.NewChunkWriter(&out)
	canvas := draw.NewScaledCanvas(0, 0, 50, 50)
	require.NoError(t, drawFrame(c, cw, canvas, draw.FixedSize(80, 24)))

	s := out.String()
	assert.Contains(t, s, "Score: 8")
	assert.Contains(t, s, "┌")
	assert.True(t, strings.ContainsAny(s, "▀▄█"), "snake body rendered")
}

func TestDrawFrameLeaderboard(t *testing.T) {
	c, _ := newTestController(t, false)
	c.Table().RankInsert("zoe", 31)
	typeText(c, "l")

	var out bytes.Buffer
	require.NoError(t, drawFrame(c, draw.NewChunkWriter(&out), draw.NewScaledCanvas(0, 0, 50, 50), draw.FixedSize(80, 24)))

	s := out.String()
	assert.Contains(t, s, "LEADERBOARD")
	assert.Contains(t, s, "zoe")
	assert.Contains(t, s, "31")
}

func TestDrawFrameGameOverPopup(t *testing.T) {
	c, clock := newTestController(t, true)
	typeText(c, "p")
	sim := c.Active().(*Simulation)
	for !sim.Engine().Lost() {
		require.True(t, c.Tick())
		clock.Advance(250 * time.Millisecond)
	}
	typeText(c, "rex")

	var out bytes.Buffer
	require.NoError(t, drawFrame(c, draw.NewChunkWriter(&out), draw.NewScaledCanvas(0, 0, 50, 50), draw.FixedSize(80, 24)))

	s := out.String()
	assert.Contains(t, s, "GAME OVER")
	assert.Contains(t, s, "rex")
}

func TestDrawFrameTooSmall(t *testing.T) {
	c, _ := newTestController(t, false)
	var out bytes.Buffer
	require.NoError(t, drawFrame(c, draw.NewChunkWriter(&out), draw.NewScaledCanvas(0, 0, 50, 50), draw.FixedSize(3, 3)))
	assert.Contains(t, out.String(), "too small")
}

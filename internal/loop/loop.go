// Package loop provides the main game loop and mode management.
package loop

import (
	"context"
	"io"
	"time"

	"github.com/tomz197/snake/internal/draw"
	"github.com/tomz197/snake/internal/input"
	"github.com/tomz197/snake/internal/loop/config"
)

// RunOptions configure Run.
type RunOptions struct {
	TermSizeFunc draw.TermSizeFunc
	FrameTime    time.Duration
}

// layout fits a square playground into a terminal of the given size. One
// row is kept for the HUD and one cell on each side for the border.
// cols is 0 when the terminal is too small.
func layout(termWidth, termHeight int) (cols, rows, offCol, offRow int) {
	cols = min(termWidth-2, 2*(termHeight-3))
	cols -= cols % 2
	if cols < 2 {
		return 0, 0, 0, 0
	}
	rows = cols / 2
	offCol = (termWidth - cols) / 2
	offRow = 1 + (termHeight-1-rows)/2
	return cols, rows, offCol, offRow
}

// Run starts the main loop with the standard Input → Update → Draw cycle.
// It returns when the controller stops, the input stream closes or ctx is
// cancelled.
func Run(ctx context.Context, c *Controller, stream *input.Stream, w io.Writer, opts RunOptions) error {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	frameTime := opts.FrameTime
	if frameTime <= 0 {
		frameTime = config.ClientTargetFrameTime
	}

	cw := draw.NewChunkWriter(w)
	pg := config.Playground
	canvas := draw.NewScaledCanvas(0, 0, float64(pg.W), float64(pg.H))

	draw.HideCursor(w)
	defer draw.ShowCursor(w)
	draw.ClearScreen(w)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for c.Running() {
		frameStart := time.Now()

		// ===== INPUT PHASE =====
		keys, open := stream.Drain()
		for _, key := range keys {
			c.HandleKey(key)
			if !c.Running() {
				break
			}
		}
		if !open {
			c.logger.Info("input closed")
			c.Stop()
		}
		if !c.Running() {
			break
		}

		// ===== UPDATE PHASE =====
		c.Tick()

		// ===== DRAW PHASE =====
		if err := drawFrame(c, cw, canvas, termSizeFunc); err != nil {
			return err
		}

		// ===== FRAME TIMING =====
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(max(0, frameTime-time.Since(frameStart)))
		select {
		case <-ctx.Done():
			c.logger.Info("stopping", "reason", context.Cause(ctx))
			c.Stop()
		case <-timer.C:
		}
	}

	draw.ClearScreen(w)
	return nil
}

// drawFrame clears the screen and draws the active mode.
func drawFrame(c *Controller, cw *draw.ChunkWriter, canvas *draw.Canvas, termSizeFunc draw.TermSizeFunc) error {
	width, height, err := termSizeFunc()
	if err != nil {
		return err
	}

	cols, rows, offCol, offRow := layout(width, height)
	canvas.Resize(cols, rows)
	canvas.SetOffset(offCol, offRow)
	canvas.Clear()

	draw.ClearScreen(cw)
	ctx := DrawContext{Canvas: canvas, Writer: cw, Width: width, Height: height}
	if cols == 0 {
		drawTooSmall(ctx)
	} else {
		c.Active().Draw(ctx)
	}
	return cw.Flush()
}

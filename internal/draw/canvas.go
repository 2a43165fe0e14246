package draw

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Supports scaling from logical coordinates to actual terminal pixels.
type Canvas struct {
	termWidth      int    // Actual terminal columns
	termHeight     int    // Actual terminal rows
	subPixelHeight int    // termHeight * 2
	pixels         []bool // Flat slice: [y * termWidth + x]

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offsets of the canvas origin.
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
	numBuf    [20]byte
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{logicalWidth: logicalWidth, logicalHeight: logicalHeight}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(termWidth, 0)
	termHeight = max(termHeight, 0)
	subPixelHeight := termHeight * 2

	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.pixels = make([]bool, subPixelHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
	}

	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset of the canvas origin.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset.
func (c *Canvas) OffsetCol() int { return c.offsetCol }

// OffsetRow returns the row offset.
func (c *Canvas) OffsetRow() int { return c.offsetRow }

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

func (c *Canvas) setPixel(x, y int) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = true
	}
}

// Pixel reports whether the pixel at actual sub-pixel coordinates is set.
func (c *Canvas) Pixel(x, y int) bool {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return false
	}
	return c.pixels[y*c.termWidth+x]
}

func (c *Canvas) toPixel(x, y float64) (int, int) {
	return int(math.Floor(x * c.scaleX)), int(math.Floor(y * c.scaleY))
}

// SetFloat sets a pixel using float logical coordinates (applies scaling).
func (c *Canvas) SetFloat(x, y float64) {
	c.setPixel(c.toPixel(x, y))
}

// DrawLine draws a line between two logical points using Bresenham's algorithm.
func (c *Canvas) DrawLine(x1f, y1f, x2f, y2f float64) {
	x1, y1 := c.toPixel(x1f, y1f)
	x2, y2 := c.toPixel(x2f, y2f)

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Render outputs the canvas to the writer using half-block characters.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 12)

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := (row*2 + 1) * c.termWidth

		for col := 0; col < c.termWidth; col++ {
			top := c.pixels[topOffset+col]
			bottom := c.pixels[bottomOffset+col]

			var ch rune
			switch {
			case top && bottom:
				ch = BlockFull
			case top:
				ch = BlockUpperHalf
			case bottom:
				ch = BlockLowerHalf
			default:
				continue // Skip empty cells
			}

			c.moveTo(col+1+c.offsetCol, row+1+c.offsetRow)
			c.renderBuf.WriteRune(ch)
		}
	}

	io.WriteString(w, c.renderBuf.String())
}

func (c *Canvas) moveTo(col, row int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

// RenderBorder draws a box one cell outside the canvas area. Edges that
// would fall off the terminal are skipped.
func (c *Canvas) RenderBorder(w io.Writer) {
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	hasH := left >= 1
	hasV := top >= 1

	var buf strings.Builder
	line := strings.Repeat("─", c.termWidth)
	if hasV {
		if hasH {
			buf.WriteString(cursor(left, top) + "┌" + line + "┐")
			buf.WriteString(cursor(left, bottom) + "└" + line + "┘")
		} else {
			buf.WriteString(cursor(c.offsetCol+1, top) + line)
			buf.WriteString(cursor(c.offsetCol+1, bottom) + line)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row < bottom; row++ {
			buf.WriteString(cursor(left, row) + "│" + cursor(right, row) + "│")
		}
	}

	io.WriteString(w, buf.String())
}

// TerminalWidth returns the canvas width in terminal columns.
func (c *Canvas) TerminalWidth() int { return c.termWidth }

// TerminalHeight returns the canvas height in terminal rows.
func (c *Canvas) TerminalHeight() int { return c.termHeight }

// LogicalToTerminal converts logical coordinates to a 1-based terminal position (col, row).
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return px + 1 + c.offsetCol, py/2 + 1 + c.offsetRow
}

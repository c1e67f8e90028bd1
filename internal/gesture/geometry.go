// Package gesture implements direct manipulation of layers inside a
// block: dragging and resizing text layers and overlay images, and
// scaling the block image along each axis. All positions are expressed
// in percent (or fractions) of the container so they survive any
// screen size.
package gesture

import (
	"math"

	"signage/internal/styleconfig"
)

// ContainerRect is the on-screen rectangle of the block in client pixels.
type ContainerRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a pointer position in client pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Percent maps p to container percent coordinates clamped to [0, 100].
// A degenerate container maps everything to the origin.
func (c ContainerRect) Percent(p Point) (x, y float64) {
	fx, fy := c.Fraction(p)
	return styleconfig.ClampPercent(fx * 100), styleconfig.ClampPercent(fy * 100)
}

// Fraction maps p to unclamped [0, 1] container coordinates.
func (c ContainerRect) Fraction(p Point) (x, y float64) {
	if c.Width > 0 {
		x = (p.X - c.Left) / c.Width
	}
	if c.Height > 0 {
		y = (p.Y - c.Top) / c.Height
	}
	return x, y
}

// Handle names a resize or scale handle on the layer outline.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNW Handle = "nw"
	HandleNE Handle = "ne"
	HandleSW Handle = "sw"
	HandleSE Handle = "se"
)

// Signs returns the direction each axis grows in when the handle moves
// right or down.
func (h Handle) Signs() (sx, sy float64) {
	switch h {
	case HandleN:
		return 0, -1
	case HandleS:
		return 0, 1
	case HandleE:
		return 1, 0
	case HandleW:
		return -1, 0
	case HandleNW:
		return -1, -1
	case HandleNE:
		return 1, -1
	case HandleSW:
		return -1, 1
	case HandleSE:
		return 1, 1
	}
	return 0, 0
}

// IsCorner reports whether h is one of the four corner handles.
func (h Handle) IsCorner() bool {
	switch h {
	case HandleNW, HandleNE, HandleSW, HandleSE:
		return true
	}
	return false
}

// Valid reports whether h is a known handle.
func (h Handle) Valid() bool {
	sx, sy := h.Signs()
	return sx != 0 || sy != 0
}

// Resize divisors: how many pixels of pointer travel double the size.
const (
	TextResizeDivisor    = 50.0
	OverlayResizeDivisor = 30.0
)

// ResizeDelta folds a pixel offset into the signed growth along handle h.
func ResizeDelta(h Handle, offset Point) float64 {
	sx, sy := h.Signs()
	return sx*offset.X + sy*offset.Y
}

// ResizedSize scales start by 1+delta/divisor, rounds, and clamps.
func ResizedSize(start, delta, divisor, lo, hi float64) float64 {
	return styleconfig.Clamp(math.Round(start*(1+delta/divisor)), lo, hi)
}

// ScaledValue moves a scale factor by twice the fractional pointer travel
// in the direction of sign, clamped to the scale limits.
func ScaledValue(start, deltaFraction, sign float64) float64 {
	if sign == 0 {
		return start
	}
	return styleconfig.Clamp(start+sign*deltaFraction*2, styleconfig.MinScale, styleconfig.MaxScale)
}

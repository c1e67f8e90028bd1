// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import "math"

// Rect is a normalized rectangle in percent of the canvas.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Area returns W*H in square percent.
func (r Rect) Area() float64 { return r.W * r.H }

// Valid reports whether every coordinate is finite and the size positive.
func (r Rect) Valid() bool {
	for _, v := range []float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.W > 0 && r.H > 0
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	left := math.Min(r.X, o.X)
	top := math.Min(r.Y, o.Y)
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

// Overlaps reports whether r and o share a region of positive area.
// eps absorbs rounding at shared edges.
func (r Rect) Overlaps(o Rect, eps float64) bool {
	w := math.Min(r.Right(), o.Right()) - math.Max(r.X, o.X)
	h := math.Min(r.Bottom(), o.Bottom()) - math.Max(r.Y, o.Y)
	return w > eps && h > eps
}

// Round returns r with every coordinate rounded to the given number of
// decimal places.
func (r Rect) Round(places int) Rect {
	return Rect{
		X: roundTo(r.X, places),
		Y: roundTo(r.Y, places),
		W: roundTo(r.W, places),
		H: roundTo(r.H, places),
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Cell locates a block on the grid. Column and Row are 0-based; spans are
// at least 1.
type Cell struct {
	Column     int `json:"column"`
	Row        int `json:"row"`
	ColumnSpan int `json:"column_span"`
	RowSpan    int `json:"row_span"`
}

// Spanning reports whether the cell covers more than one grid cell.
func (c Cell) Spanning() bool {
	return c.ColumnSpan > 1 || c.RowSpan > 1
}

// Rect converts the cell to percent coordinates on grid g.
func (c Cell) Rect(g Grid) Rect {
	cw := 100 / float64(g.Columns)
	ch := 100 / float64(g.Rows)
	return Rect{
		X: float64(c.Column) * cw,
		Y: float64(c.Row) * ch,
		W: float64(c.ColumnSpan) * cw,
		H: float64(c.RowSpan) * ch,
	}
}

// spanOverride is the one block of a special layout that covers two cells.
type spanOverride struct {
	index int
	cell  Cell
}

// spanOverrides is shared by the position calculator and the CSS-grid
// span descriptors so the two can never disagree.
var spanOverrides = map[int]spanOverride{
	// Full-width bottom half.
	3: {index: 2, cell: Cell{Column: 0, Row: 1, ColumnSpan: 2, RowSpan: 1}},
	// Full-height middle third.
	5: {index: 2, cell: Cell{Column: 1, Row: 0, ColumnSpan: 1, RowSpan: 2}},
	// Bottom-right quadrant.
	7: {index: 6, cell: Cell{Column: 2, Row: 1, ColumnSpan: 2, RowSpan: 1}},
}

// Cells returns the grid cell of every block for blockCount blocks, in
// index order. Blocks without an override fill the free cells in
// row-major order, skipping cells covered by a spanning block.
func Cells(blockCount int) []Cell {
	if blockCount <= 0 {
		return nil
	}
	g := Resolve(blockCount)
	taken := make([]bool, g.Cells())

	ov, special := spanOverrides[blockCount]
	if special {
		for r := ov.cell.Row; r < ov.cell.Row+ov.cell.RowSpan; r++ {
			for c := ov.cell.Column; c < ov.cell.Column+ov.cell.ColumnSpan; c++ {
				taken[r*g.Columns+c] = true
			}
		}
	}

	cells := make([]Cell, blockCount)
	next := 0
	for i := 0; i < blockCount; i++ {
		if special && i == ov.index {
			cells[i] = ov.cell
			continue
		}
		for next < len(taken) && taken[next] {
			next++
		}
		cells[i] = Cell{Column: next % g.Columns, Row: next / g.Columns, ColumnSpan: 1, RowSpan: 1}
		next++
	}
	return cells
}

// Position returns the rectangle of block index for blockCount blocks.
// Out-of-range indices fall back to the plain index%columns placement so
// callers never get a zero rect.
func Position(index, blockCount int) Rect {
	g := Resolve(blockCount)
	if index >= 0 && index < blockCount {
		return Cells(blockCount)[index].Rect(g)
	}
	c := Cell{Column: index % g.Columns, Row: index / g.Columns, ColumnSpan: 1, RowSpan: 1}
	if index < 0 {
		c.Column, c.Row = 0, 0
	}
	return c.Rect(g)
}

// Positions returns the rectangles of all blocks for blockCount blocks.
func Positions(blockCount int) []Rect {
	g := Resolve(blockCount)
	cells := Cells(blockCount)
	rects := make([]Rect, len(cells))
	for i, c := range cells {
		rects[i] = c.Rect(g)
	}
	return rects
}

// Span returns the grid cell of block index, carrying the row and column
// spans a CSS-grid renderer needs. It agrees with Position by
// construction.
func Span(index, blockCount int) Cell {
	if index >= 0 && index < blockCount {
		return Cells(blockCount)[index]
	}
	return Cell{ColumnSpan: 1, RowSpan: 1}
}

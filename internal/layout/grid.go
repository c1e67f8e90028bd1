// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package layout computes block geometry for signage templates: the grid
// shape for a block count, the normalized rectangle of every block, and
// the decision between uniform grid placement and absolute placement.
// Every function here is pure; all rectangles are in percent of the
// 16:9 canvas.
package layout

import "math"

// DefaultGap is the gutter between grid cells, in pixels.
const DefaultGap = 2

// Grid describes the uniform grid used to place a given number of blocks.
type Grid struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
	Gap     int `json:"gap"`

	// SpecialLayout is set for 3, 5 and 7 blocks, where one block spans
	// two grid cells.
	SpecialLayout bool `json:"special_layout"`
}

// Cells returns the number of grid cells.
func (g Grid) Cells() int {
	return g.Columns * g.Rows
}

// gridTable holds the hand-tuned layouts. Counts missing here use the
// 16:9 fallback in Resolve.
var gridTable = map[int]Grid{
	0:  {Columns: 2, Rows: 2, Gap: 0},
	1:  {Columns: 1, Rows: 1, Gap: 0},
	2:  {Columns: 2, Rows: 1, Gap: DefaultGap},
	3:  {Columns: 2, Rows: 2, Gap: DefaultGap, SpecialLayout: true},
	4:  {Columns: 2, Rows: 2, Gap: DefaultGap},
	5:  {Columns: 3, Rows: 2, Gap: DefaultGap, SpecialLayout: true},
	6:  {Columns: 3, Rows: 2, Gap: DefaultGap},
	7:  {Columns: 4, Rows: 2, Gap: DefaultGap, SpecialLayout: true},
	8:  {Columns: 4, Rows: 2, Gap: DefaultGap},
	9:  {Columns: 3, Rows: 3, Gap: DefaultGap},
	10: {Columns: 5, Rows: 2, Gap: DefaultGap},
	11: {Columns: 4, Rows: 3, Gap: DefaultGap},
	12: {Columns: 4, Rows: 3, Gap: DefaultGap},
	14: {Columns: 5, Rows: 3, Gap: DefaultGap},
	15: {Columns: 5, Rows: 3, Gap: DefaultGap},
	16: {Columns: 4, Rows: 4, Gap: DefaultGap},
}

// Resolve returns the grid for blockCount. It is total: negative counts
// are treated as zero and counts outside the table get a grid whose cells
// stay close to 16:9.
func Resolve(blockCount int) Grid {
	if blockCount < 0 {
		blockCount = 0
	}
	if g, ok := gridTable[blockCount]; ok {
		return g
	}
	cols := int(math.Ceil(math.Sqrt(float64(blockCount) * 16 / 9)))
	if cols < 1 {
		cols = 1
	}
	rows := int(math.Ceil(float64(blockCount) / float64(cols)))
	if rows < 1 {
		rows = 1
	}
	return Grid{Columns: cols, Rows: rows, Gap: DefaultGap}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import (
	"math"
	"sort"
)

// Mode is the stored layout mode of a template.
type Mode string

const (
	// ModeAuto infers the layout from the block rectangles. Templates
	// created before layout_mode existed have this mode.
	ModeAuto Mode = ""
	// ModeGrid always renders the uniform grid.
	ModeGrid Mode = "grid"
	// ModeAbsolute renders every block at its stored rectangle.
	ModeAbsolute Mode = "absolute"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeAuto || m == ModeGrid || m == ModeAbsolute
}

// BlockGeometry is the stored geometry of one block. Nil fields mean the
// block has no custom rectangle and uses its computed grid slot.
type BlockGeometry struct {
	ID     string   `json:"id"`
	Index  int      `json:"block_index"`
	X      *float64 `json:"position_x,omitempty"`
	Y      *float64 `json:"position_y,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// CustomRect returns the stored rectangle and whether it is usable:
// all four values present and finite, non-negative origin, positive size.
func (b BlockGeometry) CustomRect() (Rect, bool) {
	if b.X == nil || b.Y == nil || b.Width == nil || b.Height == nil {
		return Rect{}, false
	}
	r := Rect{X: *b.X, Y: *b.Y, W: *b.Width, H: *b.Height}
	if !r.Valid() || r.X < 0 || r.Y < 0 {
		return Rect{}, false
	}
	return r, true
}

// Decision is the outcome of the grid-vs-absolute selection.
type Decision struct {
	UseCustomPositions bool `json:"use_custom_positions"`
	HasVariableSizes   bool `json:"has_variable_sizes"`
	UseAbsolute        bool `json:"use_absolute"`
}

// Select decides how blocks are placed. With ModeAuto the decision is
// inferred: absolute placement only when every block carries a valid
// custom rectangle and the sizes are not all equal. An explicit mode wins
// over inference, except that absolute placement is impossible unless
// every block has a rectangle.
func Select(mode Mode, blocks []BlockGeometry) Decision {
	d := Decision{UseCustomPositions: len(blocks) > 0}
	sizes := make(map[[2]float64]struct{})
	for _, b := range blocks {
		r, ok := b.CustomRect()
		if !ok {
			d.UseCustomPositions = false
			break
		}
		sizes[[2]float64{roundTo(r.W, 2), roundTo(r.H, 2)}] = struct{}{}
	}
	d.HasVariableSizes = d.UseCustomPositions && len(sizes) > 1

	switch mode {
	case ModeGrid:
		d.UseAbsolute = false
	case ModeAbsolute:
		d.UseAbsolute = d.UseCustomPositions
	default:
		d.UseAbsolute = d.UseCustomPositions && d.HasVariableSizes
	}
	return d
}

// Placement is where one block renders.
type Placement struct {
	ID    string `json:"id"`
	Index int    `json:"block_index"`
	Rect  Rect   `json:"rect"`
	// Cell is set in grid mode and carries the row/column span used by a
	// CSS-grid style renderer.
	Cell *Cell `json:"cell,omitempty"`
}

// RenderPlan is the full placement of a template's blocks.
type RenderPlan struct {
	Mode       Mode        `json:"mode"`
	Grid       Grid        `json:"grid"`
	Decision   Decision    `json:"decision"`
	Placements []Placement `json:"placements"`
}

// Plan places blocks, sorted by index, either on the uniform grid or at
// their stored rectangles. Grid placement and absolute placement of the
// same uniform rectangles produce identical rects.
func Plan(mode Mode, blocks []BlockGeometry) RenderPlan {
	sorted := make([]BlockGeometry, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	d := Select(mode, sorted)
	g := Resolve(len(sorted))
	plan := RenderPlan{Mode: mode, Grid: g, Decision: d, Placements: make([]Placement, len(sorted))}

	cells := Cells(len(sorted))
	for i, b := range sorted {
		p := Placement{ID: b.ID, Index: b.Index}
		if d.UseAbsolute {
			p.Rect, _ = b.CustomRect()
		} else {
			c := cells[i]
			p.Cell = &c
			p.Rect = c.Rect(g)
		}
		plan.Placements[i] = p
	}
	return plan
}

// EffectiveRects returns the rectangle each block currently occupies, in
// the order given. It is the geometry used by the merge engine.
func EffectiveRects(mode Mode, blocks []BlockGeometry) map[string]Rect {
	plan := Plan(mode, blocks)
	out := make(map[string]Rect, len(plan.Placements))
	for _, p := range plan.Placements {
		out[p.ID] = p.Rect
	}
	return out
}

// CoveredArea sums the area of rects in square percent. A layout that
// tiles the canvas covers 100*100.
func CoveredArea(rects []Rect) float64 {
	var sum float64
	for _, r := range rects {
		sum += r.Area()
	}
	return sum
}

// Float returns a pointer to v, for building BlockGeometry literals.
func Float(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

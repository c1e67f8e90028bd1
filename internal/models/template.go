// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"signage/internal/layout"
)

// Template is a signage screen design: a fixed number of blocks laid out
// on a 16:9 canvas.
type Template struct {
	ID          uuid.UUID   `json:"id"`
	DisplayName string      `json:"display_name"`
	Description string      `json:"description"`
	BlockCount  int         `json:"block_count"`
	LayoutMode  layout.Mode `json:"layout_mode"`
	Version     int         `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Block is one rectangular region of a template. Position and size are
// percentages of the canvas; nil means "use the computed grid slot".
type Block struct {
	ID          uuid.UUID       `json:"id"`
	TemplateID  uuid.UUID       `json:"template_id"`
	BlockIndex  int             `json:"block_index"`
	PositionX   *float64        `json:"position_x"`
	PositionY   *float64        `json:"position_y"`
	Width       *float64        `json:"width"`
	Height      *float64        `json:"height"`
	StyleConfig json.RawMessage `json:"style_config"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Geometry returns the block's stored geometry for the layout package.
func (b *Block) Geometry() layout.BlockGeometry {
	return layout.BlockGeometry{
		ID:     b.ID.String(),
		Index:  b.BlockIndex,
		X:      b.PositionX,
		Y:      b.PositionY,
		Width:  b.Width,
		Height: b.Height,
	}
}

// SetRect stores r as the block's custom rectangle.
func (b *Block) SetRect(r layout.Rect) {
	x, y, w, h := r.X, r.Y, r.W, r.H
	b.PositionX, b.PositionY, b.Width, b.Height = &x, &y, &w, &h
}

// Geometries converts blocks for the layout package.
func Geometries(blocks []Block) []layout.BlockGeometry {
	out := make([]layout.BlockGeometry, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].Geometry()
	}
	return out
}

// BlockPatch is a partial update of a Block. StyleConfig is merged per
// top-level key.
type BlockPatch struct {
	PositionX   *float64        `json:"position_x,omitempty"`
	PositionY   *float64        `json:"position_y,omitempty"`
	Width       *float64        `json:"width,omitempty"`
	Height      *float64        `json:"height,omitempty"`
	StyleConfig json.RawMessage `json:"style_config,omitempty"`
}

// TouchesGeometry reports whether the patch moves or resizes the block.
func (p *BlockPatch) TouchesGeometry() bool {
	return p.PositionX != nil || p.PositionY != nil || p.Width != nil || p.Height != nil
}

// Empty reports whether the patch changes nothing.
func (p *BlockPatch) Empty() bool {
	return p.PositionX == nil && p.PositionY == nil && p.Width == nil &&
		p.Height == nil && len(p.StyleConfig) == 0
}

// TemplatePatch is a partial update of a Template.
type TemplatePatch struct {
	DisplayName *string      `json:"display_name,omitempty"`
	Description *string      `json:"description,omitempty"`
	BlockCount  *int         `json:"block_count,omitempty"`
	LayoutMode  *layout.Mode `json:"layout_mode,omitempty"`
}

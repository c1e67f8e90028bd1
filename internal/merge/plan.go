// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package merge combines several blocks of a template into one. Plan is a
// pure computation over the current blocks; Service loads the blocks,
// plans, and applies the result through the store in one transaction.
package merge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"signage/internal/layout"
	"signage/internal/models"
)

var (
	ErrTooFewBlocks    = errors.New("merge needs at least two distinct blocks")
	ErrBlockOutOfRange = errors.New("block number out of range")
	ErrOverlap         = errors.New("merged area would cover another block")
)

// overlapEpsilon absorbs rounding at shared edges, in percent.
const overlapEpsilon = 0.05

// Assignment is the post-merge placement of one surviving block.
type Assignment struct {
	BlockID  uuid.UUID   `json:"block_id"`
	OldIndex int         `json:"old_index"`
	NewIndex int         `json:"new_index"`
	Rect     layout.Rect `json:"rect"`
}

// MergePlan describes every change a merge makes.
type MergePlan struct {
	TemplateID uuid.UUID   `json:"template_id"`
	Target     uuid.UUID   `json:"target"`
	TargetRect layout.Rect `json:"target_rect"`

	// Absorbed blocks are deleted after their contents move to Target.
	Absorbed []uuid.UUID `json:"absorbed"`

	// Survivors lists the target and every untouched block, in their new
	// index order.
	Survivors []Assignment `json:"survivors"`

	BlockCount int `json:"block_count"`
}

// Plan computes the merge of the blocks numbered target and others into
// target. Numbers are 1-based block positions (block_index+1). Nothing is
// changed; validation errors leave the template as it is.
func Plan(blocks []models.Block, mode layout.Mode, target int, others []int) (*MergePlan, error) {
	sorted := make([]models.Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].BlockIndex < sorted[j].BlockIndex })

	byNumber := make(map[int]*models.Block, len(sorted))
	for i := range sorted {
		byNumber[sorted[i].BlockIndex+1] = &sorted[i]
	}

	resolve := func(n int) (*models.Block, error) {
		b, ok := byNumber[n]
		if !ok {
			return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrBlockOutOfRange, n, len(sorted))
		}
		return b, nil
	}

	tb, err := resolve(target)
	if err != nil {
		return nil, err
	}
	participants := map[uuid.UUID]bool{tb.ID: true}
	var absorbed []uuid.UUID
	for _, n := range others {
		b, err := resolve(n)
		if err != nil {
			return nil, err
		}
		if participants[b.ID] {
			continue
		}
		participants[b.ID] = true
		absorbed = append(absorbed, b.ID)
	}
	if len(participants) < 2 {
		return nil, ErrTooFewBlocks
	}

	rects := layout.EffectiveRects(mode, models.Geometries(sorted))
	box := rects[tb.ID.String()]
	for _, id := range absorbed {
		box = box.Union(rects[id.String()])
	}
	box = box.Round(2)

	for _, b := range sorted {
		if participants[b.ID] {
			continue
		}
		if box.Overlaps(rects[b.ID.String()], overlapEpsilon) {
			return nil, fmt.Errorf("%w: block %d lies inside the merged area, include it in the merge", ErrOverlap, b.BlockIndex+1)
		}
	}

	plan := &MergePlan{
		TemplateID: tb.TemplateID,
		Target:     tb.ID,
		TargetRect: box,
		Absorbed:   absorbed,
	}
	for _, b := range sorted {
		if participants[b.ID] && b.ID != tb.ID {
			continue
		}
		r := rects[b.ID.String()].Round(2)
		if b.ID == tb.ID {
			r = box
		}
		plan.Survivors = append(plan.Survivors, Assignment{
			BlockID:  b.ID,
			OldIndex: b.BlockIndex,
			NewIndex: len(plan.Survivors),
			Rect:     r,
		})
	}
	plan.BlockCount = len(plan.Survivors)
	return plan, nil
}

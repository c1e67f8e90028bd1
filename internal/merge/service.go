// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"signage/internal/models"
)

// ErrTemplateNotFound is returned when the template does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// Store is the persistence the merge service needs.
type Store interface {
	FindTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error)
	ListBlocks(ctx context.Context, templateID uuid.UUID) ([]models.Block, error)
	// ApplyMerge moves contents, deletes absorbed blocks, rewrites the
	// survivors and switches the template to absolute layout atomically.
	ApplyMerge(ctx context.Context, plan *MergePlan) error
}

// Invalidator drops cached layouts of a template.
type Invalidator interface {
	InvalidateTemplate(ctx context.Context, id uuid.UUID)
}

// Service plans and applies merges.
type Service struct {
	store Store
	cache Invalidator
}

// NewService creates a merge service. cache may be nil.
func NewService(store Store, cache Invalidator) *Service {
	return &Service{store: store, cache: cache}
}

// Merge merges the blocks numbered others into the block numbered target.
func (s *Service) Merge(ctx context.Context, templateID uuid.UUID, target int, others []int) (*MergePlan, error) {
	tmpl, err := s.store.FindTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	if tmpl == nil {
		return nil, ErrTemplateNotFound
	}

	blocks, err := s.store.ListBlocks(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	plan, err := Plan(blocks, tmpl.LayoutMode, target, others)
	if err != nil {
		return nil, err
	}
	plan.TemplateID = templateID

	if err := s.store.ApplyMerge(ctx, plan); err != nil {
		return nil, fmt.Errorf("apply merge: %w", err)
	}
	if s.cache != nil {
		s.cache.InvalidateTemplate(ctx, templateID)
	}

	slog.Info("blocks merged",
		"template_id", templateID,
		"target", target,
		"absorbed", len(plan.Absorbed),
		"block_count", plan.BlockCount,
	)
	return plan, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor holds the editing state of one template. Every edit is
// applied to the local copy first and then persisted in the background,
// one request at a time per content, with later edits folded into the
// request that is waiting to be sent.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"signage/internal/models"
	"signage/internal/rotation"
	"signage/internal/styleconfig"
)

// Backend is the API the workspace persists through.
type Backend interface {
	ListBlocks(ctx context.Context, templateID uuid.UUID) ([]models.Block, error)
	ListContents(ctx context.Context, blockID uuid.UUID) ([]models.BlockContent, error)
	GetContent(ctx context.Context, id uuid.UUID) (*models.BlockContent, error)
	CreateContent(ctx context.Context, c *models.BlockContent) (*models.BlockContent, error)
	PatchContent(ctx context.Context, id uuid.UUID, p models.ContentPatch) (*models.BlockContent, error)
	DeleteContent(ctx context.Context, id uuid.UUID) error
	PatchBlock(ctx context.Context, id uuid.UUID, p models.BlockPatch) (*models.Block, error)
}

// Reporter shows a transient error message to the user.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) { f(err) }

// Option configures a Workspace.
type Option func(*Workspace)

// WithReporter sets where persistence errors are reported.
func WithReporter(r Reporter) Option {
	return func(w *Workspace) { w.report = r }
}

// WithLogger sets the workspace logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) { w.log = l }
}

// queue is the persistence state of one content.
type queue struct {
	running bool
	pending *models.ContentPatch

	// undo restores the local state of pending edits whose save fails.
	// Entries run with the workspace lock held.
	undo []func()
}

// Workspace is the optimistic editing state of one template.
type Workspace struct {
	backend    Backend
	templateID uuid.UUID
	report     Reporter
	log        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	idle     *sync.Cond
	blocks   []models.Block
	contents map[uuid.UUID]*models.BlockContent
	phases   map[uuid.UUID]rotation.Phase
	queues   map[uuid.UUID]*queue
}

// Open loads the blocks and contents of a template.
func Open(ctx context.Context, backend Backend, templateID uuid.UUID, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		backend:    backend,
		templateID: templateID,
		report:     ReporterFunc(func(error) {}),
		log:        slog.Default(),
		contents:   make(map[uuid.UUID]*models.BlockContent),
		phases:     make(map[uuid.UUID]rotation.Phase),
		queues:     make(map[uuid.UUID]*queue),
	}
	w.idle = sync.NewCond(&w.mu)
	for _, o := range opts {
		o(w)
	}
	w.ctx, w.cancel = context.WithCancel(context.WithoutCancel(ctx))

	if err := w.Reload(ctx); err != nil {
		w.cancel()
		return nil, err
	}
	return w, nil
}

// Reload replaces the local state with the backend's. Pending saves are
// waited for first.
func (w *Workspace) Reload(ctx context.Context) error {
	w.Flush()

	blocks, err := w.backend.ListBlocks(ctx, w.templateID)
	if err != nil {
		return fmt.Errorf("list blocks: %w", err)
	}
	contents := make(map[uuid.UUID]*models.BlockContent)
	for _, b := range blocks {
		list, err := w.backend.ListContents(ctx, b.ID)
		if err != nil {
			return fmt.Errorf("list contents of block %s: %w", b.ID, err)
		}
		for i := range list {
			c := list[i]
			contents[c.ID] = &c
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].BlockIndex < blocks[j].BlockIndex })

	w.mu.Lock()
	w.blocks = blocks
	w.contents = contents
	w.mu.Unlock()
	return nil
}

// Close stops background saves. Edits not yet sent are dropped.
func (w *Workspace) Close() {
	w.cancel()
	w.Flush()
}

// Flush blocks until no save is queued or in flight.
func (w *Workspace) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.busyLocked() {
		w.idle.Wait()
	}
}

func (w *Workspace) busyLocked() bool {
	for _, q := range w.queues {
		if q.running {
			return true
		}
	}
	return false
}

// TemplateID returns the template being edited.
func (w *Workspace) TemplateID() uuid.UUID { return w.templateID }

// Blocks returns the blocks in index order.
func (w *Workspace) Blocks() []models.Block {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.Block, len(w.blocks))
	copy(out, w.blocks)
	return out
}

// Contents returns the contents of a block in display order.
func (w *Workspace) Contents(blockID uuid.UUID) []models.BlockContent {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []models.BlockContent
	for _, c := range w.contents {
		if c.TemplateBlockID == blockID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Content returns the local copy of a content.
func (w *Workspace) Content(id uuid.UUID) (models.BlockContent, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.contents[id]
	if !ok {
		return models.BlockContent{}, false
	}
	return *c, true
}

// Style returns the local style document of a content.
func (w *Workspace) Style(id uuid.UUID) styleconfig.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.contents[id]
	if !ok {
		return styleconfig.Document{}
	}
	return styleconfig.Parse(c.StyleConfig)
}

// SetDisplayedPhase records which rotation phase of a content is on
// screen. Text layer edits go to that phase.
func (w *Workspace) SetDisplayedPhase(id uuid.UUID, p rotation.Phase) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.phases[id] = p
}

// DisplayedPhase returns the phase last set for a content.
func (w *Workspace) DisplayedPhase(id uuid.UUID) rotation.Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.phases[id]; ok {
		return p
	}
	return rotation.First()
}

// Apply updates the local content immediately and queues the patch for
// saving. It only fails if the content is unknown.
func (w *Workspace) Apply(id uuid.UUID, p models.ContentPatch) error {
	return w.apply(id, p, nil)
}

func (w *Workspace) apply(id uuid.UUID, p models.ContentPatch, undo func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.contents[id]
	if !ok {
		return fmt.Errorf("content %s: %w", id, models.ErrNotFound)
	}
	applyLocal(c, p)

	q := w.queues[id]
	if q == nil {
		q = &queue{}
		w.queues[id] = q
	}
	if q.pending == nil {
		q.pending = &models.ContentPatch{}
	}
	coalesce(q.pending, p)
	if undo != nil {
		q.undo = append(q.undo, undo)
	}
	if !q.running {
		q.running = true
		go w.drain(id)
	}
	return nil
}

func (w *Workspace) drain(id uuid.UUID) {
	for {
		w.mu.Lock()
		q := w.queues[id]
		c := w.contents[id]
		if q.pending == nil || c == nil || w.ctx.Err() != nil {
			q.running = false
			q.pending, q.undo = nil, nil
			w.idle.Broadcast()
			w.mu.Unlock()
			return
		}
		p, undo := *q.pending, q.undo
		q.pending, q.undo = nil, nil
		version := c.Version
		w.mu.Unlock()

		saved, err := w.send(id, p, version)

		w.mu.Lock()
		if err != nil {
			for i := len(undo) - 1; i >= 0; i-- {
				undo[i]()
			}
			w.mu.Unlock()
			w.log.Error("failed to save content", "content_id", id, "error", err)
			w.report.Report(fmt.Errorf("save content: %w", err))
			continue
		}
		w.settleLocked(id, saved)
		w.mu.Unlock()
	}
}

// send persists p conditioned on version. On a version conflict the
// content is refetched, the local edits are replayed on top of it and the
// request is retried once.
func (w *Workspace) send(id uuid.UUID, p models.ContentPatch, version int) (*models.BlockContent, error) {
	p.IfVersion = &version
	saved, err := w.backend.PatchContent(w.ctx, id, p)
	if !errors.Is(err, models.ErrVersionConflict) {
		return saved, err
	}

	fresh, err := w.backend.GetContent(w.ctx, id)
	if err != nil {
		return nil, fmt.Errorf("refetch after conflict: %w", err)
	}
	if fresh == nil {
		return nil, fmt.Errorf("content %s: %w", id, models.ErrNotFound)
	}
	w.log.Debug("content changed remotely, retrying", "content_id", id, "version", fresh.Version)

	w.mu.Lock()
	if c, ok := w.contents[id]; ok {
		rebased := *fresh
		applyLocal(&rebased, p)
		if q := w.queues[id]; q != nil && q.pending != nil {
			applyLocal(&rebased, *q.pending)
		}
		*c = rebased
	}
	w.mu.Unlock()

	p.IfVersion = &fresh.Version
	return w.backend.PatchContent(w.ctx, id, p)
}

// settleLocked takes the saved version. When nothing else is queued the
// server copy becomes the local copy.
func (w *Workspace) settleLocked(id uuid.UUID, saved *models.BlockContent) {
	c, ok := w.contents[id]
	if !ok || saved == nil {
		return
	}
	if q := w.queues[id]; q != nil && q.pending != nil {
		c.Version = saved.Version
		c.UpdatedAt = saved.UpdatedAt
		return
	}
	*c = *saved
}

func applyLocal(c *models.BlockContent, p models.ContentPatch) {
	if p.Title != nil {
		c.Title = p.Title
	}
	if p.Price != nil {
		c.Price = p.Price
	}
	if p.Description != nil {
		c.Description = p.Description
	}
	if p.ImageURL != nil {
		c.ImageURL = p.ImageURL
	}
	if len(p.StyleConfig) > 0 {
		merged := styleconfig.Merge(styleconfig.Parse(c.StyleConfig), styleconfig.Parse(p.StyleConfig))
		c.StyleConfig = merged.Bytes()
	}
}

// coalesce folds src into dst; later values win per field and per style
// key.
func coalesce(dst *models.ContentPatch, src models.ContentPatch) {
	if src.Title != nil {
		dst.Title = src.Title
	}
	if src.Price != nil {
		dst.Price = src.Price
	}
	if src.Description != nil {
		dst.Description = src.Description
	}
	if src.ImageURL != nil {
		dst.ImageURL = src.ImageURL
	}
	if len(src.StyleConfig) > 0 {
		merged := styleconfig.Merge(styleconfig.Parse(dst.StyleConfig), styleconfig.Parse(src.StyleConfig))
		dst.StyleConfig = merged.Bytes()
	}
}

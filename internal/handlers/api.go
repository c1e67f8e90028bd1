// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the signage API.
// Handlers receive their dependencies through the API struct; every
// dependency is an interface so tests can substitute in-memory fakes.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"signage/internal/layout"
	"signage/internal/merge"
	"signage/internal/models"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// TemplateStore is the template persistence the API needs.
type TemplateStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
	Update(ctx context.Context, id uuid.UUID, p models.TemplatePatch) (*models.Template, error)
}

// BlockStore is the block persistence the API needs.
type BlockStore interface {
	ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]models.Block, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Block, error)
	Update(ctx context.Context, id uuid.UUID, p models.BlockPatch) (*models.Block, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ResetContents(ctx context.Context, id uuid.UUID) (int64, error)
}

// ContentStore is the block content persistence the API needs.
type ContentStore interface {
	ListByBlock(ctx context.Context, blockID uuid.UUID) ([]models.BlockContent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.BlockContent, error)
	Create(ctx context.Context, c *models.BlockContent) (*models.BlockContent, error)
	Patch(ctx context.Context, id uuid.UUID, p models.ContentPatch) (*models.BlockContent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Merger merges blocks of a template.
type Merger interface {
	Merge(ctx context.Context, templateID uuid.UUID, target int, others []int) (*merge.MergePlan, error)
}

// LayoutCache holds computed render plans.
type LayoutCache interface {
	Get(ctx context.Context, id uuid.UUID, version int) (*layout.RenderPlan, bool)
	Set(ctx context.Context, id uuid.UUID, version int, plan *layout.RenderPlan)
	InvalidateTemplate(ctx context.Context, id uuid.UUID)
}

// Prober measures media durations.
type Prober interface {
	Duration(ctx context.Context, url string) int
}

// Backfill records rotation item source lengths in the background.
type Backfill interface {
	Schedule(ctx context.Context, contentID uuid.UUID)
}

// Deps are the dependencies of the API. Cache, Prober and Backfill are
// optional.
type Deps struct {
	Templates TemplateStore
	Blocks    BlockStore
	Contents  ContentStore
	Merger    Merger
	Cache     LayoutCache
	Prober    Prober
	Backfill  Backfill
}

// API groups all HTTP handlers and their dependencies.
type API struct {
	templates TemplateStore
	blocks    BlockStore
	contents  ContentStore
	merger    Merger
	cache     LayoutCache
	prober    Prober
	backfill  Backfill
}

// New creates the API handler group.
func New(d Deps) *API {
	return &API{
		templates: d.Templates,
		blocks:    d.Blocks,
		contents:  d.Contents,
		merger:    d.Merger,
		cache:     d.Cache,
		prober:    d.Prober,
		backfill:  d.Backfill,
	}
}

func (a *API) invalidate(ctx context.Context, templateID uuid.UUID) {
	if a.cache != nil {
		a.cache.InvalidateTemplate(ctx, templateID)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps persistence errors onto HTTP statuses. Unknown
// errors are logged and reported as 500 without detail.
func writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrVersionConflict):
		writeError(w, http.StatusConflict, "version conflict: reload and retry")
	default:
		slog.Error(op+" failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID parses a UUID URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

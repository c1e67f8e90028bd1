// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"signage/internal/layout"
	"signage/internal/merge"
	"signage/internal/models"
)

// GetTemplate returns one template.
func (a *API) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := a.templates.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "find template", err)
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// PatchTemplate updates the name, description, block count or layout
// mode of a template. Changing the block count returns the template to
// its computed grid.
func (a *API) PatchTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var p models.TemplatePatch
	if !decodeBody(w, r, &p) {
		return
	}
	if msg := validateTemplatePatch(p); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	t, err := a.templates.Update(r.Context(), id, p)
	if err != nil {
		writeStoreError(w, r, "update template", err)
		return
	}
	a.invalidate(r.Context(), id)

	slog.Info("template updated", "template_id", id, "version", t.Version, "block_count", t.BlockCount)
	writeJSON(w, http.StatusOK, t)
}

// ListBlocks returns the blocks of a template in index order.
func (a *API) ListBlocks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	blocks, err := a.blocks.ListByTemplate(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "list blocks", err)
		return
	}
	if blocks == nil {
		blocks = []models.Block{}
	}
	writeJSON(w, http.StatusOK, blocks)
}

// Layout returns the render plan of a template: where every block goes
// and whether the grid or the stored rectangles are used.
func (a *API) Layout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	t, err := a.templates.FindByID(ctx, id)
	if err != nil {
		writeStoreError(w, r, "find template", err)
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	if a.cache != nil {
		if plan, ok := a.cache.Get(ctx, id, t.Version); ok {
			writeJSON(w, http.StatusOK, plan)
			return
		}
	}

	blocks, err := a.blocks.ListByTemplate(ctx, id)
	if err != nil {
		writeStoreError(w, r, "list blocks", err)
		return
	}
	plan := layout.Plan(t.LayoutMode, models.Geometries(blocks))
	if a.cache != nil {
		a.cache.Set(ctx, id, t.Version, &plan)
	}
	writeJSON(w, http.StatusOK, plan)
}

type mergeRequest struct {
	Target int   `json:"target"`
	Others []int `json:"others"`
}

// Merge combines blocks into one. Block numbers are 1-based.
func (a *API) Merge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req mergeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	plan, err := a.merger.Merge(r.Context(), id, req.Target, req.Others)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, plan)
	case errors.Is(err, merge.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, "template not found")
	case errors.Is(err, merge.ErrTooFewBlocks),
		errors.Is(err, merge.ErrBlockOutOfRange),
		errors.Is(err, merge.ErrOverlap):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeStoreError(w, r, "merge blocks", err)
	}
}

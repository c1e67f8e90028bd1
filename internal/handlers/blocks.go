// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"

	"signage/internal/models"
)

type blockRequest struct {
	PositionX   *float64        `json:"position_x"`
	PositionY   *float64        `json:"position_y"`
	Width       *float64        `json:"width"`
	Height      *float64        `json:"height"`
	StyleConfig json.RawMessage `json:"style_config"`
}

// PatchBlock updates a block's rectangle or merges keys into its style.
func (a *API) PatchBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req blockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	style, err := decodeStyle(req.StyleConfig)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := models.BlockPatch{
		PositionX: req.PositionX, PositionY: req.PositionY,
		Width: req.Width, Height: req.Height,
	}
	if style != nil {
		p.StyleConfig = style.Bytes()
	}
	if p.Empty() {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if msg := validateRect(p); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	b, err := a.blocks.Update(r.Context(), id, p)
	if err != nil {
		writeStoreError(w, r, "update block", err)
		return
	}
	a.invalidate(r.Context(), b.TemplateID)
	writeJSON(w, http.StatusOK, b)
}

// DeleteBlock removes a block and its contents.
func (a *API) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()
	b, err := a.blocks.FindByID(ctx, id)
	if err != nil {
		writeStoreError(w, r, "find block", err)
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "block not found")
		return
	}
	if err := a.blocks.Delete(ctx, id); err != nil {
		writeStoreError(w, r, "delete block", err)
		return
	}
	a.invalidate(ctx, b.TemplateID)
	w.WriteHeader(http.StatusNoContent)
}

// ResetBlock deletes every content of a block.
func (a *API) ResetBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()
	b, err := a.blocks.FindByID(ctx, id)
	if err != nil {
		writeStoreError(w, r, "find block", err)
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "block not found")
		return
	}
	n, err := a.blocks.ResetContents(ctx, id)
	if err != nil {
		writeStoreError(w, r, "reset block", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"signage/internal/media"
	"signage/internal/models"
	"signage/internal/rotation"
	"signage/internal/styleconfig"
)

const (
	defaultHorizon = 60 * time.Second
	maxHorizon     = time.Hour
)

type contentRequest struct {
	TemplateBlockID *uuid.UUID         `json:"template_block_id"`
	ContentType     models.ContentType `json:"content_type"`
	Title           *string            `json:"title"`
	Price           *float64           `json:"price"`
	Description     *string            `json:"description"`
	ImageURL        *string            `json:"image_url"`
	StyleConfig     json.RawMessage    `json:"style_config"`
	Version         *int               `json:"version"`
	Selection       *models.Selection  `json:"selection"`
}

// ListContents returns the contents of a block in display order. With
// ?visible=1 the rendering rule applies: a regional menu hides every
// other content.
func (a *API) ListContents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "blockId")
	if !ok {
		return
	}
	contents, err := a.contents.ListByBlock(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "list contents", err)
		return
	}
	if r.URL.Query().Get("visible") == "1" {
		contents = models.VisibleContents(contents)
	}
	if contents == nil {
		contents = []models.BlockContent{}
	}
	writeJSON(w, http.StatusOK, contents)
}

// GetContent returns one content.
func (a *API) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := a.contents.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "find content", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateContent creates a content, either from an explicit record or
// from a content library selection. A background selection sets the
// block background and creates nothing. Images, videos and regional
// menus replace the block's existing content of the same kind.
func (a *API) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TemplateBlockID == nil {
		writeError(w, http.StatusBadRequest, "template_block_id is required")
		return
	}
	ctx := r.Context()

	var c *models.BlockContent
	if req.Selection != nil {
		if req.Selection.IsBackground() {
			a.applyBackground(w, r, *req.TemplateBlockID, req.Selection.Value())
			return
		}
		var err error
		if c, err = req.Selection.ToContent(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if c.ContentType == models.ContentTypeRegionalMenu {
			menu := styleconfig.RegionalMenuStyle{}
			menu.Sanitize()
			c.StyleConfig = menu.Document().Bytes()
		}
	} else {
		style, err := decodeStyle(req.StyleConfig)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := styleconfig.CheckRotationURLs(style); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		c = &models.BlockContent{
			ContentType: req.ContentType,
			Title:       req.Title,
			Price:       req.Price,
			Description: req.Description,
			ImageURL:    req.ImageURL,
		}
		if style != nil {
			c.StyleConfig = style.Bytes()
		}
	}
	c.TemplateBlockID = *req.TemplateBlockID
	if msg := validateNewContent(c); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	created, err := a.contents.Create(ctx, c)
	if err != nil {
		writeStoreError(w, r, "create content", err)
		return
	}
	a.scheduleBackfill(r, created)
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) applyBackground(w http.ResponseWriter, r *http.Request, blockID uuid.UUID, url string) {
	if url == "" {
		writeError(w, http.StatusUnprocessableEntity, "background selection has no url")
		return
	}
	patch := styleconfig.BackgroundImagePatch(url)
	b, err := a.blocks.Update(r.Context(), blockID, models.BlockPatch{StyleConfig: patch.Bytes()})
	if err != nil {
		writeStoreError(w, r, "set block background", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"block": b})
}

// PatchContent updates a content. style_config is merged per top-level
// key into the stored document. An optional version makes the update
// conditional; a stale version answers 409.
func (a *API) PatchContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	style, err := decodeStyle(req.StyleConfig)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := styleconfig.CheckRotationURLs(style); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	p := models.ContentPatch{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IfVersion:   req.Version,
	}
	if len(style) > 0 {
		p.StyleConfig = style.Bytes()
	}
	if p.Empty() {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if msg := validateContentFields(p.Title, p.Description, p.ImageURL, p.Price); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	updated, err := a.contents.Patch(r.Context(), id, p)
	if err != nil {
		writeStoreError(w, r, "patch content", err)
		return
	}
	a.scheduleBackfill(r, updated)
	writeJSON(w, http.StatusOK, updated)
}

// scheduleBackfill queues source length probing for rotation videos of
// unknown length.
func (a *API) scheduleBackfill(r *http.Request, c *models.BlockContent) {
	if a.backfill == nil || !media.NeedsBackfill(c) {
		return
	}
	a.backfill.Schedule(r.Context(), c.ID)
}

// DeleteContent removes a content.
func (a *API) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.contents.Delete(r.Context(), id); err != nil {
		writeStoreError(w, r, "delete content", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type timelineStep struct {
	Phase            rotation.Phase `json:"phase"`
	URL              string         `json:"url"`
	Start            float64        `json:"start_seconds"`
	End              float64        `json:"end_seconds"`
	Transition       string         `json:"transition,omitempty"`
	TransitionMillis int            `json:"transition_ms,omitempty"`
	Final            bool           `json:"final,omitempty"`
}

type timelineResponse struct {
	ContentID uuid.UUID      `json:"content_id"`
	Cycle     float64        `json:"cycle_seconds"`
	PlayOnce  bool           `json:"play_once"`
	Steps     []timelineStep `json:"steps"`
}

// Timeline returns the rotation schedule of an image or video content
// from time zero until ?horizon seconds (default 60).
func (a *API) Timeline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	horizon := defaultHorizon
	if v := r.URL.Query().Get("horizon"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || time.Duration(n)*time.Second > maxHorizon {
			writeError(w, http.StatusBadRequest, "horizon must be between 1 and 3600 seconds")
			return
		}
		horizon = time.Duration(n) * time.Second
	}

	c, err := a.contents.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, "find content", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}
	if !c.ContentType.IsMedia() {
		writeError(w, http.StatusUnprocessableEntity, "only image and video contents rotate")
		return
	}

	url := ""
	if c.ImageURL != nil {
		url = *c.ImageURL
	}
	m := styleconfig.DecodeMedia(styleconfig.Parse(c.StyleConfig))
	seq := rotation.ForContent(c.ContentType == models.ContentTypeVideo, url, m)

	resp := timelineResponse{
		ContentID: c.ID,
		Cycle:     seq.CycleDuration().Seconds(),
		PlayOnce:  seq.PlayOnce,
		Steps:     []timelineStep{},
	}
	for _, st := range rotation.Timeline(seq, horizon) {
		resp.Steps = append(resp.Steps, timelineStep{
			Phase:            st.Phase,
			URL:              st.URL,
			Start:            st.Start.Seconds(),
			End:              st.End.Seconds(),
			Transition:       string(st.Transition),
			TransitionMillis: int(st.TransitionDuration.Milliseconds()),
			Final:            st.Final,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apiclient is a typed client for the signage HTTP API. It
// implements editor.Backend so an editing workspace can persist through
// a remote server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"signage/internal/editor"
	"signage/internal/layout"
	"signage/internal/models"
	"signage/internal/rotation"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// Error is a non-2xx response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Unwrap maps statuses onto the model sentinels so callers can use
// errors.Is.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		return models.ErrVersionConflict
	}
	return nil
}

var _ editor.Backend = (*Client)(nil)

// Client talks to one API server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL. A nil httpClient gets one with
// DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// do sends body as JSON and decodes the response into out. out may be
// nil for responses without a body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("api unmarshal: %w", err)
	}
	return nil
}

// styleString encodes a style document the way request bodies carry it:
// as a JSON string holding JSON.
func styleString(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

type contentBody struct {
	TemplateBlockID *uuid.UUID         `json:"template_block_id,omitempty"`
	ContentType     models.ContentType `json:"content_type,omitempty"`
	Title           *string            `json:"title,omitempty"`
	Price           *float64           `json:"price,omitempty"`
	Description     *string            `json:"description,omitempty"`
	ImageURL        *string            `json:"image_url,omitempty"`
	StyleConfig     *string            `json:"style_config,omitempty"`
	Version         *int               `json:"version,omitempty"`
	Selection       *models.Selection  `json:"selection,omitempty"`
}

type blockBody struct {
	PositionX   *float64 `json:"position_x,omitempty"`
	PositionY   *float64 `json:"position_y,omitempty"`
	Width       *float64 `json:"width,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	StyleConfig *string  `json:"style_config,omitempty"`
}

// GetTemplate fetches a template.
func (c *Client) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var t models.Template
	if err := c.do(ctx, http.MethodGet, "/templates/"+id.String(), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// PatchTemplate updates a template.
func (c *Client) PatchTemplate(ctx context.Context, id uuid.UUID, p models.TemplatePatch) (*models.Template, error) {
	var t models.Template
	if err := c.do(ctx, http.MethodPatch, "/templates/"+id.String(), p, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Layout fetches the render plan of a template.
func (c *Client) Layout(ctx context.Context, id uuid.UUID) (*layout.RenderPlan, error) {
	var p layout.RenderPlan
	if err := c.do(ctx, http.MethodGet, "/templates/"+id.String()+"/layout", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MergeResult is the response of a merge.
type MergeResult struct {
	Target     uuid.UUID   `json:"target"`
	TargetRect layout.Rect `json:"target_rect"`
	Absorbed   []uuid.UUID `json:"absorbed"`
	BlockCount int         `json:"block_count"`
}

// Merge merges the blocks numbered others (1-based) into target.
func (c *Client) Merge(ctx context.Context, templateID uuid.UUID, target int, others []int) (*MergeResult, error) {
	body := struct {
		Target int   `json:"target"`
		Others []int `json:"others"`
	}{target, others}
	var res MergeResult
	if err := c.do(ctx, http.MethodPost, "/templates/"+templateID.String()+"/merge", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListBlocks returns the blocks of a template.
func (c *Client) ListBlocks(ctx context.Context, templateID uuid.UUID) ([]models.Block, error) {
	var blocks []models.Block
	if err := c.do(ctx, http.MethodGet, "/templates/"+templateID.String()+"/blocks", nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// PatchBlock updates a block's rectangle or style.
func (c *Client) PatchBlock(ctx context.Context, id uuid.UUID, p models.BlockPatch) (*models.Block, error) {
	body := blockBody{
		PositionX: p.PositionX, PositionY: p.PositionY, Width: p.Width, Height: p.Height,
		StyleConfig: styleString(p.StyleConfig),
	}
	var b models.Block
	if err := c.do(ctx, http.MethodPatch, "/template-blocks/"+id.String(), body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBlock removes a block.
func (c *Client) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/template-blocks/"+id.String(), nil, nil)
}

// ResetBlock deletes every content of a block.
func (c *Client) ResetBlock(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/template-blocks/"+id.String()+"/contents", nil, nil)
}

// ListContents returns the contents of a block.
func (c *Client) ListContents(ctx context.Context, blockID uuid.UUID) ([]models.BlockContent, error) {
	var contents []models.BlockContent
	if err := c.do(ctx, http.MethodGet, "/template-block-contents/block/"+blockID.String(), nil, &contents); err != nil {
		return nil, err
	}
	return contents, nil
}

// GetContent fetches one content.
func (c *Client) GetContent(ctx context.Context, id uuid.UUID) (*models.BlockContent, error) {
	var bc models.BlockContent
	if err := c.do(ctx, http.MethodGet, "/template-block-contents/"+id.String(), nil, &bc); err != nil {
		return nil, err
	}
	return &bc, nil
}

// CreateContent creates a content record.
func (c *Client) CreateContent(ctx context.Context, in *models.BlockContent) (*models.BlockContent, error) {
	blockID := in.TemplateBlockID
	body := contentBody{
		TemplateBlockID: &blockID,
		ContentType:     in.ContentType,
		Title:           in.Title,
		Price:           in.Price,
		Description:     in.Description,
		ImageURL:        in.ImageURL,
		StyleConfig:     styleString(in.StyleConfig),
	}
	var bc models.BlockContent
	if err := c.do(ctx, http.MethodPost, "/template-block-contents", body, &bc); err != nil {
		return nil, err
	}
	return &bc, nil
}

// CreateFromSelection creates content from a content library pick. A
// background pick updates the block and returns no content.
func (c *Client) CreateFromSelection(ctx context.Context, blockID uuid.UUID, sel models.Selection) (*models.BlockContent, error) {
	body := contentBody{TemplateBlockID: &blockID, Selection: &sel}
	var bc models.BlockContent
	if err := c.do(ctx, http.MethodPost, "/template-block-contents", body, &bc); err != nil {
		return nil, err
	}
	if bc.ID == uuid.Nil {
		return nil, nil
	}
	return &bc, nil
}

// PatchContent applies a partial update. With p.IfVersion set, a stale
// version fails with an error matching models.ErrVersionConflict.
func (c *Client) PatchContent(ctx context.Context, id uuid.UUID, p models.ContentPatch) (*models.BlockContent, error) {
	body := contentBody{
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		StyleConfig: styleString(p.StyleConfig),
		Version:     p.IfVersion,
	}
	var bc models.BlockContent
	if err := c.do(ctx, http.MethodPatch, "/template-block-contents/"+id.String(), body, &bc); err != nil {
		return nil, err
	}
	return &bc, nil
}

// DeleteContent removes a content.
func (c *Client) DeleteContent(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/template-block-contents/"+id.String(), nil, nil)
}

// Timeline is the rotation schedule of a content.
type Timeline struct {
	ContentID uuid.UUID      `json:"content_id"`
	Cycle     float64        `json:"cycle_seconds"`
	PlayOnce  bool           `json:"play_once"`
	Steps     []TimelineStep `json:"steps"`
}

// TimelineStep is one phase of a Timeline.
type TimelineStep struct {
	Phase            rotation.Phase `json:"phase"`
	URL              string         `json:"url"`
	Start            float64        `json:"start_seconds"`
	End              float64        `json:"end_seconds"`
	Transition       string         `json:"transition,omitempty"`
	TransitionMillis int            `json:"transition_ms,omitempty"`
	Final            bool           `json:"final,omitempty"`
}

// Timeline fetches the rotation schedule of a content over horizon.
func (c *Client) Timeline(ctx context.Context, id uuid.UUID, horizon time.Duration) (*Timeline, error) {
	q := url.Values{"horizon": {fmt.Sprint(int(horizon.Seconds()))}}
	var tl Timeline
	if err := c.do(ctx, http.MethodGet, "/template-block-contents/"+id.String()+"/timeline?"+q.Encode(), nil, &tl); err != nil {
		return nil, err
	}
	return &tl, nil
}

// ProbeDuration asks the server for the length of the media at mediaURL
// in whole seconds; 0 means unknown.
func (c *Client) ProbeDuration(ctx context.Context, mediaURL string) (int, error) {
	var res struct {
		DurationSeconds int `json:"duration_seconds"`
	}
	body := struct {
		URL string `json:"url"`
	}{mediaURL}
	if err := c.do(ctx, http.MethodPost, "/media/probe", body, &res); err != nil {
		return 0, err
	}
	return res.DurationSeconds, nil
}

// Health checks the server.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

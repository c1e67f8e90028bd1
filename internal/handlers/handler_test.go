// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests:
// an in-memory store behind the handler interfaces, the real merge
// service and the in-process layout cache.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"signage/internal/cache"
	"signage/internal/layout"
	"signage/internal/merge"
	"signage/internal/models"
	"signage/internal/styleconfig"
)

// memDB is an in-memory stand-in for the PostgreSQL stores.
type memDB struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*models.Template
	blocks    map[uuid.UUID]*models.Block
	contents  map[uuid.UUID]*models.BlockContent
}

func newMemDB() *memDB {
	return &memDB{
		templates: make(map[uuid.UUID]*models.Template),
		blocks:    make(map[uuid.UUID]*models.Block),
		contents:  make(map[uuid.UUID]*models.BlockContent),
	}
}

// addTemplate stores a template with n blocks on the computed grid.
func (m *memDB) addTemplate(n int) (*models.Template, []models.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	t := &models.Template{ID: uuid.New(), DisplayName: "Test", BlockCount: n, Version: 1, CreatedAt: now, UpdatedAt: now}
	m.templates[t.ID] = t
	var blocks []models.Block
	for i := 0; i < n; i++ {
		b := &models.Block{ID: uuid.New(), TemplateID: t.ID, BlockIndex: i, StyleConfig: json.RawMessage(`{}`)}
		m.blocks[b.ID] = b
		blocks = append(blocks, *b)
	}
	tc := *t
	return &tc, blocks
}

func (m *memDB) blocksOf(templateID uuid.UUID) []models.Block {
	var out []models.Block
	for _, b := range m.blocks {
		if b.TemplateID == templateID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlockIndex < out[j].BlockIndex })
	return out
}

func (m *memDB) contentsOf(blockID uuid.UUID) []models.BlockContent {
	var out []models.BlockContent
	for _, c := range m.contents {
		if c.TemplateBlockID == blockID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out
}

// FindTemplate, ListBlocks and ApplyMerge implement merge.Store.
func (m *memDB) FindTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	return memTemplates{m}.FindByID(ctx, id)
}

func (m *memDB) ListBlocks(ctx context.Context, templateID uuid.UUID) ([]models.Block, error) {
	return memBlocks{m}.ListByTemplate(ctx, templateID)
}

func (m *memDB) ApplyMerge(_ context.Context, plan *merge.MergePlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range plan.Absorbed {
		for _, c := range m.contents {
			if c.TemplateBlockID == id {
				c.TemplateBlockID = plan.Target
			}
		}
		delete(m.blocks, id)
	}
	for _, a := range plan.Survivors {
		b, ok := m.blocks[a.BlockID]
		if !ok {
			return models.ErrNotFound
		}
		b.BlockIndex = a.NewIndex
		b.SetRect(a.Rect)
	}
	t := m.templates[plan.TemplateID]
	t.BlockCount = plan.BlockCount
	t.LayoutMode = layout.ModeAbsolute
	t.Version++
	return nil
}

type memTemplates struct{ *memDB }

func (s memTemplates) FindByID(_ context.Context, id uuid.UUID) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, nil
	}
	tc := *t
	return &tc, nil
}

func (s memTemplates) Update(_ context.Context, id uuid.UUID, p models.TemplatePatch) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.DisplayName != nil {
		t.DisplayName = *p.DisplayName
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.LayoutMode != nil {
		t.LayoutMode = *p.LayoutMode
	}
	if p.BlockCount != nil {
		t.BlockCount = *p.BlockCount
	}
	t.Version++
	tc := *t
	return &tc, nil
}

type memBlocks struct{ *memDB }

func (s memBlocks) ListByTemplate(_ context.Context, templateID uuid.UUID) ([]models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocksOf(templateID), nil
}

func (s memBlocks) FindByID(_ context.Context, id uuid.UUID) (*models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, nil
	}
	bc := *b
	return &bc, nil
}

func (s memBlocks) Update(_ context.Context, id uuid.UUID, p models.BlockPatch) (*models.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.PositionX != nil {
		b.PositionX = p.PositionX
	}
	if p.PositionY != nil {
		b.PositionY = p.PositionY
	}
	if p.Width != nil {
		b.Width = p.Width
	}
	if p.Height != nil {
		b.Height = p.Height
	}
	if len(p.StyleConfig) > 0 {
		b.StyleConfig = styleconfig.Merge(styleconfig.Parse(b.StyleConfig), styleconfig.Parse(p.StyleConfig)).Bytes()
	}
	if p.TouchesGeometry() {
		s.templates[b.TemplateID].Version++
	}
	bc := *b
	return &bc, nil
}

func (s memBlocks) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok {
		return models.ErrNotFound
	}
	delete(s.blocks, id)
	for _, o := range s.blocks {
		if o.TemplateID == b.TemplateID && o.BlockIndex > b.BlockIndex {
			o.BlockIndex--
		}
	}
	t := s.templates[b.TemplateID]
	t.BlockCount--
	t.Version++
	return nil
}

func (s memBlocks) ResetContents(_ context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for cid, c := range s.contents {
		if c.TemplateBlockID == id {
			delete(s.contents, cid)
			n++
		}
	}
	return n, nil
}

type memContents struct{ *memDB }

func (s memContents) ListByBlock(_ context.Context, blockID uuid.UUID) ([]models.BlockContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contentsOf(blockID), nil
}

func (s memContents) FindByID(_ context.Context, id uuid.UUID) (*models.BlockContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, nil
	}
	cc := *c
	return &cc, nil
}

func (s memContents) Create(_ context.Context, c *models.BlockContent) (*models.BlockContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocks[c.TemplateBlockID]; !ok {
		return nil, models.ErrNotFound
	}
	displaced := c.ContentType.Displaces()
	next := 0
	for id, o := range s.contents {
		if o.TemplateBlockID != c.TemplateBlockID {
			continue
		}
		gone := false
		for _, t := range displaced {
			if o.ContentType == t {
				delete(s.contents, id)
				gone = true
			}
		}
		if !gone && o.DisplayOrder >= next {
			next = o.DisplayOrder + 1
		}
	}
	cc := *c
	cc.ID = uuid.New()
	cc.DisplayOrder = next
	cc.Version = 1
	if len(cc.StyleConfig) == 0 {
		cc.StyleConfig = json.RawMessage(`{}`)
	}
	s.contents[cc.ID] = &cc
	out := cc
	return &out, nil
}

func (s memContents) Patch(_ context.Context, id uuid.UUID, p models.ContentPatch) (*models.BlockContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.IfVersion != nil && *p.IfVersion != c.Version {
		return nil, models.ErrVersionConflict
	}
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
		c.StyleConfig = styleconfig.Merge(styleconfig.Parse(c.StyleConfig), styleconfig.Parse(p.StyleConfig)).Bytes()
	}
	c.Version++
	cc := *c
	return &cc, nil
}

func (s memContents) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.contents, id)
	return nil
}

// stubProber returns a fixed duration and records the probed URLs.
type stubProber struct {
	mu      sync.Mutex
	seconds int
	urls    []string
}

func (p *stubProber) Duration(_ context.Context, url string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, url)
	return p.seconds
}

// recordingBackfill records scheduled content ids.
type recordingBackfill struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (b *recordingBackfill) Schedule(_ context.Context, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids = append(b.ids, id)
}

func (b *recordingBackfill) scheduled() []uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uuid.UUID(nil), b.ids...)
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	DB       *memDB
	Layouts  *cache.Layouts
	Prober   *stubProber
	Backfill *recordingBackfill
	API      *API
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newMemDB()
	layouts := cache.NewLayouts(nil)
	prober := &stubProber{seconds: 42}
	backfill := &recordingBackfill{}

	api := New(Deps{
		Templates: memTemplates{db},
		Blocks:    memBlocks{db},
		Contents:  memContents{db},
		Merger:    merge.NewService(db, layouts),
		Cache:     layouts,
		Prober:    prober,
		Backfill:  backfill,
	})
	return &testEnv{DB: db, Layouts: layouts, Prober: prober, Backfill: backfill, API: api}
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// do runs handler h against a request with an optional JSON body and a
// single URL parameter.
func do(t *testing.T, h http.HandlerFunc, method, target string, body any, param, value string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if param != "" {
		req = withChiURLParam(req, param, value)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

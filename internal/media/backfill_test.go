package media

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"signage/internal/models"
	"signage/internal/styleconfig"
)

type fakeDurations map[string]int

func (f fakeDurations) Duration(_ context.Context, url string) int { return f[url] }

// memStore is an in-memory content store with version checks and
// per-key style merging.
type memStore struct {
	mu       sync.Mutex
	c        models.BlockContent
	conflict int // number of upcoming patches to reject
	patches  int
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*models.BlockContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.c.ID {
		return nil, nil
	}
	c := s.c
	return &c, nil
}

func (s *memStore) Patch(_ context.Context, id uuid.UUID, p models.ContentPatch) (*models.BlockContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches++
	if s.conflict > 0 {
		s.conflict--
		s.c.Version++
		return nil, models.ErrVersionConflict
	}
	if p.IfVersion != nil && *p.IfVersion != s.c.Version {
		return nil, models.ErrVersionConflict
	}
	doc := styleconfig.Merge(styleconfig.Parse(s.c.StyleConfig), styleconfig.Parse(p.StyleConfig))
	s.c.StyleConfig = doc.Bytes()
	s.c.Version++
	c := s.c
	return &c, nil
}

func videoContent(items string) models.BlockContent {
	url := "https://x/first.mp4"
	return models.BlockContent{
		ID:          uuid.New(),
		ContentType: models.ContentTypeVideo,
		ImageURL:    &url,
		Version:     1,
		StyleConfig: []byte(`{"imageFit":"contain","videoRotation":{"firstVideoDurationSeconds":10,"rotationItems":` + items + `}}`),
	}
}

func rotationItems(t *testing.T, s *memStore) []styleconfig.RotationItem {
	t.Helper()
	m := styleconfig.DecodeMedia(styleconfig.Parse(s.c.StyleConfig))
	items, _ := m.RotationItems()
	return items
}

func TestBackfillCapsDurations(t *testing.T) {
	store := &memStore{c: videoContent(`[{"url":"https://x/a.mov","durationSeconds":60},{"url":"https://x/b.mp4","durationSeconds":20}]`)}
	b := NewBackfill(fakeDurations{"https://x/a.mov": 8, "https://x/b.mp4": 45}, store)

	if !NeedsBackfill(&store.c) {
		t.Fatal("expected content to need a backfill")
	}
	b.Schedule(context.Background(), store.c.ID)
	b.Wait()

	items := rotationItems(t, store)
	if items[0].SourceDurationSeconds != 8 || items[0].DurationSeconds != 8 {
		t.Errorf("item 0: source %d duration %d, want 8/8", items[0].SourceDurationSeconds, items[0].DurationSeconds)
	}
	if items[1].SourceDurationSeconds != 45 || items[1].DurationSeconds != 20 {
		t.Errorf("item 1: source %d duration %d, want 45/20", items[1].SourceDurationSeconds, items[1].DurationSeconds)
	}
	if !styleconfig.Parse(store.c.StyleConfig).Has(styleconfig.KeyImageFit) {
		t.Error("unrelated keys must survive")
	}
	if NeedsBackfill(&store.c) {
		t.Error("nothing should be left to probe")
	}
}

func TestBackfillRetriesOnConflict(t *testing.T) {
	store := &memStore{c: videoContent(`[{"url":"https://x/a.mp4","durationSeconds":30}]`), conflict: 1}
	b := NewBackfill(fakeDurations{"https://x/a.mp4": 12}, store)

	if err := b.Run(context.Background(), store.c.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.patches != 2 {
		t.Errorf("patches: got %d, want 2", store.patches)
	}
	if got := rotationItems(t, store)[0].DurationSeconds; got != 12 {
		t.Errorf("duration: got %d, want 12", got)
	}
}

func TestBackfillSkipsUnknownDurations(t *testing.T) {
	store := &memStore{c: videoContent(`[{"url":"https://x/a.mp4","durationSeconds":30}]`)}
	b := NewBackfill(fakeDurations{}, store)

	if err := b.Run(context.Background(), store.c.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.patches != 0 {
		t.Errorf("patches: got %d, want 0", store.patches)
	}
}

func TestBackfillIgnoresNonMedia(t *testing.T) {
	c := models.BlockContent{ID: uuid.New(), ContentType: models.ContentTypeText, StyleConfig: []byte(`{}`)}
	if NeedsBackfill(&c) {
		t.Error("text content never needs a backfill")
	}
}

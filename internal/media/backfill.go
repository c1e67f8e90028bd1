// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"signage/internal/models"
	"signage/internal/styleconfig"
)

const backfillAttempts = 3

// DurationProber is what the backfill needs from a Prober.
type DurationProber interface {
	Duration(ctx context.Context, url string) int
}

// ContentStore reads and patches block contents.
type ContentStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.BlockContent, error)
	Patch(ctx context.Context, id uuid.UUID, p models.ContentPatch) (*models.BlockContent, error)
}

// Backfill records the source length of video rotation items after they
// are saved, which caps their durationSeconds. It never blocks the
// request that added the items.
type Backfill struct {
	prober DurationProber
	store  ContentStore
	log    *slog.Logger
	wg     sync.WaitGroup
}

// NewBackfill creates a backfill.
func NewBackfill(prober DurationProber, store ContentStore) *Backfill {
	return &Backfill{prober: prober, store: store, log: slog.Default()}
}

// Schedule runs the backfill of one content in the background.
func (b *Backfill) Schedule(ctx context.Context, contentID uuid.UUID) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.Run(context.WithoutCancel(ctx), contentID); err != nil {
			b.log.Warn("duration backfill failed", "content_id", contentID, "error", err)
		}
	}()
}

// Wait blocks until every scheduled backfill has finished.
func (b *Backfill) Wait() {
	b.wg.Wait()
}

// Run probes the video rotation items of a content that have no known
// source length and stores the results. Items are matched by URL on a
// fresh copy so concurrent edits to the list are kept.
func (b *Backfill) Run(ctx context.Context, contentID uuid.UUID) error {
	c, err := b.store.FindByID(ctx, contentID)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	if c == nil {
		return nil
	}

	probed := map[string]int{}
	for _, url := range pendingURLs(c) {
		if secs := b.prober.Duration(ctx, url); secs > 0 {
			probed[url] = secs
		}
	}
	if len(probed) == 0 {
		return nil
	}

	for attempt := 0; attempt < backfillAttempts; attempt++ {
		if attempt > 0 {
			if c, err = b.store.FindByID(ctx, contentID); err != nil || c == nil {
				return err
			}
		}
		patch, ok := durationPatch(c, probed)
		if !ok {
			return nil
		}
		version := c.Version
		_, err = b.store.Patch(ctx, contentID, models.ContentPatch{StyleConfig: patch.Bytes(), IfVersion: &version})
		if err == nil {
			b.log.Info("rotation durations recorded", "content_id", contentID, "items", len(probed))
			return nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return fmt.Errorf("patch content: %w", err)
		}
	}
	return fmt.Errorf("patch content: %w", models.ErrVersionConflict)
}

// NeedsBackfill reports whether a content has video rotation items of
// unknown length.
func NeedsBackfill(c *models.BlockContent) bool {
	return len(pendingURLs(c)) > 0
}

func pendingURLs(c *models.BlockContent) []string {
	if !c.ContentType.IsMedia() {
		return nil
	}
	m := styleconfig.DecodeMedia(styleconfig.Parse(c.StyleConfig))
	items, key := m.RotationItems()
	seen := map[string]bool{}
	var urls []string
	for _, it := range items {
		video := it.IsVideo || key == styleconfig.KeyVideoRotation
		if video && it.SourceDurationSeconds == 0 && it.URL != "" && !seen[it.URL] {
			seen[it.URL] = true
			urls = append(urls, it.URL)
		}
	}
	return urls
}

// durationPatch sets the probed lengths on c's rotation items and
// returns the changed key. ok is false when nothing changes.
func durationPatch(c *models.BlockContent, probed map[string]int) (styleconfig.Document, bool) {
	m := styleconfig.DecodeMedia(styleconfig.Parse(c.StyleConfig))
	items, key := m.RotationItems()
	changed := false
	for i := range items {
		secs, ok := probed[items[i].URL]
		if !ok || items[i].SourceDurationSeconds == secs {
			continue
		}
		items[i].SourceDurationSeconds = secs
		items[i].Sanitize()
		changed = true
	}
	if !changed {
		return nil, false
	}
	patch, err := m.Patch(key)
	if err != nil {
		return nil, false
	}
	return patch, true
}

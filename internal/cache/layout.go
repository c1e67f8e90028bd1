// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"signage/internal/layout"
)

const (
	// layoutKeyPrefix is the Valkey key prefix for cached layout plans.
	layoutKeyPrefix = "layout:"

	// DefaultLayoutTTL is how long a layout plan stays cached.
	DefaultLayoutTTL = 10 * time.Minute
)

// entry is what is stored under a template's key. The version lets a
// reader reject a plan computed for an older template.
type entry struct {
	Version int               `json:"version"`
	Plan    layout.RenderPlan `json:"plan"`
}

// LayoutCache stores render plans in Valkey.
type LayoutCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLayoutCache creates a layout cache backed by the given Valkey client.
func NewLayoutCache(client *redis.Client, ttl time.Duration) *LayoutCache {
	if ttl == 0 {
		ttl = DefaultLayoutTTL
	}
	return &LayoutCache{client: client, ttl: ttl}
}

func layoutKey(id uuid.UUID) string {
	return layoutKeyPrefix + id.String()
}

// Get returns the cached plan of a template at the given version.
func (lc *LayoutCache) Get(ctx context.Context, id uuid.UUID, version int) (*layout.RenderPlan, bool) {
	val, err := lc.client.Get(ctx, layoutKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("layout cache get error", "template_id", id, "error", err)
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(val, &e); err != nil {
		slog.Warn("layout cache decode error", "template_id", id, "error", err)
		return nil, false
	}
	if e.Version != version {
		return nil, false
	}
	slog.Debug("layout cache hit", "template_id", id, "version", version)
	return &e.Plan, true
}

// Set stores the plan of a template at the given version.
func (lc *LayoutCache) Set(ctx context.Context, id uuid.UUID, version int, plan *layout.RenderPlan) {
	b, err := json.Marshal(entry{Version: version, Plan: *plan})
	if err != nil {
		slog.Warn("layout cache encode error", "template_id", id, "error", err)
		return
	}
	if err := lc.client.Set(ctx, layoutKey(id), b, lc.ttl).Err(); err != nil {
		slog.Warn("layout cache set error", "template_id", id, "error", err)
	}
}

// InvalidateTemplate removes the cached plan of one template.
func (lc *LayoutCache) InvalidateTemplate(ctx context.Context, id uuid.UUID) {
	if err := lc.client.Del(ctx, layoutKey(id)).Err(); err != nil {
		slog.Warn("layout cache invalidate error", "template_id", id, "error", err)
		return
	}
	slog.Debug("layout cache invalidated", "template_id", id)
}

// InvalidateAll removes every cached plan by scanning for the prefix.
func (lc *LayoutCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := lc.client.Scan(ctx, cursor, layoutKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("layout cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("layout cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("layout cache cleared", "deleted", deleted)
	}
}

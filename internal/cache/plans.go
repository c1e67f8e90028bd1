// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"signage/internal/layout"
)

// planKey identifies one version of a template's plan. Template updates
// and block geometry edits bump the version, so a stale entry is a miss
// in every process, not only the one that handled the edit.
type planKey struct {
	id      uuid.UUID
	version int
}

// PlanCache is the in-process (L1) plan cache.
type PlanCache struct {
	mu      sync.RWMutex
	entries map[planKey]*layout.RenderPlan
}

// NewPlanCache creates an empty plan cache.
func NewPlanCache() *PlanCache {
	return &PlanCache{entries: make(map[planKey]*layout.RenderPlan)}
}

// Get returns the cached plan, or nil on a miss.
func (c *PlanCache) Get(id uuid.UUID, version int) *layout.RenderPlan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[planKey{id: id, version: version}]
}

// Put stores a plan.
func (c *PlanCache) Put(id uuid.UUID, version int, plan *layout.RenderPlan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id && k.version < version {
			delete(c.entries, k)
		}
	}
	c.entries[planKey{id: id, version: version}] = plan
	slog.Debug("plan cached", "template_id", id, "version", version, "size", len(c.entries))
}

// Len returns the number of cached plans.
func (c *PlanCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// InvalidateTemplate removes every cached version of a template.
func (c *PlanCache) InvalidateTemplate(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id {
			delete(c.entries, k)
		}
	}
	slog.Debug("plan cache invalidated", "template_id", id)
}

// Layouts chains the L1 and optional L2 caches.
type Layouts struct {
	L1 *PlanCache
	L2 *LayoutCache
}

// NewLayouts creates a two-level cache. l2 may be nil when Valkey is not
// configured.
func NewLayouts(l2 *LayoutCache) *Layouts {
	return &Layouts{L1: NewPlanCache(), L2: l2}
}

// Get looks in L1, then L2. An L2 hit is promoted to L1.
func (l *Layouts) Get(ctx context.Context, id uuid.UUID, version int) (*layout.RenderPlan, bool) {
	if p := l.L1.Get(id, version); p != nil {
		return p, true
	}
	if l.L2 == nil {
		return nil, false
	}
	p, ok := l.L2.Get(ctx, id, version)
	if ok {
		l.L1.Put(id, version, p)
	}
	return p, ok
}

// Set stores a plan in both levels.
func (l *Layouts) Set(ctx context.Context, id uuid.UUID, version int, plan *layout.RenderPlan) {
	l.L1.Put(id, version, plan)
	if l.L2 != nil {
		l.L2.Set(ctx, id, version, plan)
	}
}

// InvalidateTemplate drops a template from both levels.
func (l *Layouts) InvalidateTemplate(ctx context.Context, id uuid.UUID) {
	l.L1.InvalidateTemplate(ctx, id)
	if l.L2 != nil {
		l.L2.InvalidateTemplate(ctx, id)
	}
}

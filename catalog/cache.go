// Package catalog keeps the objective and visual style lists loaded once and
// shared by every conversation in the process.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hrygo/creastudio/client"
	"github.com/hrygo/creastudio/envelope"
	"github.com/hrygo/creastudio/metrics"
)

// Loader fetches both catalogs. *client.CatalogService satisfies it.
type Loader interface {
	LoadAll(ctx context.Context) *envelope.Response[client.Catalogs]
}

// Cache holds the catalogs from the first successful load until Close.
// There is no expiry; Reload refetches explicitly.
//
// Slices returned by the accessors are shared and must not be modified.
type Cache struct {
	loader  Loader
	metrics *metrics.Exporter
	group   singleflight.Group

	mu          sync.RWMutex
	catalogs    *client.Catalogs
	objectiveBy map[int64]client.CatalogEntry
	styleBy     map[int64]client.CatalogEntry
	loadedAt    time.Time
}

func New(loader Loader, exporter *metrics.Exporter) *Cache {
	return &Cache{loader: loader, metrics: exporter}
}

// Load returns the cached catalogs, fetching them on first use. Concurrent
// callers share one backend round.
func (c *Cache) Load(ctx context.Context) *envelope.Response[client.Catalogs] {
	c.mu.RLock()
	cached := c.catalogs
	c.mu.RUnlock()
	if cached != nil {
		c.metrics.RecordCacheHit("catalog")
		return envelope.Success(*cached, "Catalogs loaded from cache", nil)
	}
	c.metrics.RecordCacheMiss("catalog")
	return c.fetch(ctx, false)
}

// Reload drops nothing until the refetch succeeds; a failed reload keeps the
// previous lists.
func (c *Cache) Reload(ctx context.Context) *envelope.Response[client.Catalogs] {
	c.group.Forget("catalogs")
	return c.fetch(ctx, true)
}

func (c *Cache) fetch(ctx context.Context, force bool) *envelope.Response[client.Catalogs] {
	v, _, shared := c.group.Do("catalogs", func() (any, error) {
		if !force {
			c.mu.RLock()
			cached := c.catalogs
			c.mu.RUnlock()
			if cached != nil {
				return envelope.Success(*cached, "Catalogs loaded from cache", nil), nil
			}
		}
		resp := c.loader.LoadAll(ctx)
		if resp.IsSuccess() {
			c.store(resp.Data)
		}
		return resp, nil
	})
	if shared {
		slog.Debug("catalog load shared with concurrent caller")
	}
	return v.(*envelope.Response[client.Catalogs])
}

func (c *Cache) store(data client.Catalogs) {
	objectives := make(map[int64]client.CatalogEntry, len(data.Objectives))
	for _, e := range data.Objectives {
		objectives[e.ID] = e
	}
	styles := make(map[int64]client.CatalogEntry, len(data.Styles))
	for _, e := range data.Styles {
		styles[e.ID] = e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalogs = &data
	c.objectiveBy = objectives
	c.styleBy = styles
	c.loadedAt = time.Now()
	slog.Debug("catalogs loaded", "objectives", len(data.Objectives), "styles", len(data.Styles))
}

// Loaded reports whether a load has succeeded since construction or Close.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalogs != nil
}

func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

func (c *Cache) Objectives() []client.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalogs == nil {
		return nil
	}
	return c.catalogs.Objectives
}

func (c *Cache) Styles() []client.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalogs == nil {
		return nil
	}
	return c.catalogs.Styles
}

func (c *Cache) ActiveObjectives() []client.CatalogEntry {
	return active(c.Objectives())
}

func (c *Cache) ActiveStyles() []client.CatalogEntry {
	return active(c.Styles())
}

func active(entries []client.CatalogEntry) []client.CatalogEntry {
	out := make([]client.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out
}

func (c *Cache) Objective(id int64) (client.CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.objectiveBy[id]
	return e, ok
}

func (c *Cache) Style(id int64) (client.CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.styleBy[id]
	return e, ok
}

// ObjectiveByName finds an objective ignoring case.
func (c *Cache) ObjectiveByName(name string) (client.CatalogEntry, bool) {
	for _, e := range c.Objectives() {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return client.CatalogEntry{}, false
}

// StyleByName finds a style ignoring case.
func (c *Cache) StyleByName(name string) (client.CatalogEntry, bool) {
	for _, e := range c.Styles() {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return client.CatalogEntry{}, false
}

// Close drops the lists. A later Load fetches them again.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalogs = nil
	c.objectiveBy = nil
	c.styleBy = nil
	c.loadedAt = time.Time{}
}

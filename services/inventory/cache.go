// Package inventory mirrors the content account's torrent list and carries
// the canonical-ID annotations produced by metadata resolution.
package inventory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"boxstream/models"
	"boxstream/services/debrid"
)

// RefreshTimeout bounds one shared upstream listing.
const RefreshTimeout = 30 * time.Second

type annotation struct {
	canonicalID string
	descriptor  models.Descriptor
}

// Cache is a keyed mirror of the account inventory. Entries are replaced
// wholesale on every refresh; annotations are never cleared and survive
// refreshes for every ID that recurs.
type Cache struct {
	provider debrid.Provider

	mu          sync.RWMutex
	entries     map[string]models.InventoryEntry
	order       []string
	annotations map[string]annotation

	refreshGroup singleflight.Group
}

// NewCache creates an empty cache backed by provider.
func NewCache(provider debrid.Provider) *Cache {
	return &Cache{
		provider:    provider,
		entries:     make(map[string]models.InventoryEntry),
		annotations: make(map[string]annotation),
	}
}

// Refresh pulls the full inventory as one snapshot and merges it into the
// store. Concurrent callers share a single upstream call. The shared call is
// detached from any one caller's cancellation; a caller whose context ends
// early stops waiting without failing the others.
func (c *Cache) Refresh(ctx context.Context) ([]models.InventoryEntry, error) {
	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), RefreshTimeout)
		defer cancel()
		return c.refresh(shared)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.InventoryEntry), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("refresh inventory: %w", ctx.Err())
	}
}

func (c *Cache) refresh(ctx context.Context) ([]models.InventoryEntry, error) {
	if c.provider == nil {
		return nil, fmt.Errorf("refresh inventory: %w", debrid.ErrConfigMissing)
	}

	snapshot, err := c.provider.ListTorrents(ctx)
	if err != nil {
		log.Printf("[inventory] refresh failed: %v", err)
		return nil, fmt.Errorf("refresh inventory: %w", err)
	}

	entries := make(map[string]models.InventoryEntry, len(snapshot))
	order := make([]string, 0, len(snapshot))
	for _, entry := range snapshot {
		if entry.ID == "" {
			continue
		}
		if _, dup := entries[entry.ID]; !dup {
			order = append(order, entry.ID)
		}
		entry.CanonicalID = ""
		entry.Descriptor = nil
		entries[entry.ID] = entry.Clone()
	}

	c.mu.Lock()
	c.entries = entries
	c.order = order
	out := c.snapshotLocked()
	c.mu.Unlock()

	log.Printf("[inventory] refreshed %d entries", len(out))
	return out, nil
}

// Get returns the entry with the given ID from the last snapshot.
func (c *Cache) Get(id string) (models.InventoryEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	if !ok {
		return models.InventoryEntry{}, false
	}
	return c.withAnnotationLocked(entry), true
}

// Annotate binds an entry to a canonical ID. The first resolution wins:
// it returns false and changes nothing when the entry is already annotated,
// unknown, or canonicalID is empty.
func (c *Cache) Annotate(id, canonicalID string, descriptor models.Descriptor) bool {
	if id == "" || canonicalID == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; !ok {
		return false
	}
	if _, done := c.annotations[id]; done {
		return false
	}
	c.annotations[id] = annotation{canonicalID: canonicalID, descriptor: descriptor}
	return true
}

// FindByCanonicalID returns every entry annotated with canonicalID, in
// snapshot order.
func (c *Cache) FindByCanonicalID(canonicalID string) []models.InventoryEntry {
	if canonicalID == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var matches []models.InventoryEntry
	for _, id := range c.order {
		if ann, ok := c.annotations[id]; ok && ann.canonicalID == canonicalID {
			matches = append(matches, c.withAnnotationLocked(c.entries[id]))
		}
	}
	return matches
}

// Entries returns the current snapshot in upstream order.
func (c *Cache) Entries() []models.InventoryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Len returns the number of entries in the current snapshot.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Cache) snapshotLocked() []models.InventoryEntry {
	out := make([]models.InventoryEntry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.withAnnotationLocked(c.entries[id]))
	}
	return out
}

func (c *Cache) withAnnotationLocked(entry models.InventoryEntry) models.InventoryEntry {
	out := entry.Clone()
	if ann, ok := c.annotations[entry.ID]; ok {
		out.CanonicalID = ann.canonicalID
		d := ann.descriptor
		out.Descriptor = &d
	}
	return out
}

// SortByRecency orders entries newest first by UpdatedAt, then CreatedAt,
// then the Unix epoch. The sort is stable so equal times keep upstream order.
func SortByRecency(entries []models.InventoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RecencyTime().After(entries[j].RecencyTime())
	})
}

// Package catalog builds the per-kind listing of canonical entries from the
// account inventory.
package catalog

import (
	"context"
	"fmt"
	"log"

	"boxstream/models"
	"boxstream/services/inventory"
	"boxstream/services/metadata"
	"boxstream/services/placeholder"
	"boxstream/services/release"
)

// DefaultLimit is the catalog page size and its upper bound.
const DefaultLimit = 20

// Inventory is the part of the inventory cache the assembler needs.
type Inventory interface {
	Refresh(ctx context.Context) ([]models.InventoryEntry, error)
	Get(id string) (models.InventoryEntry, bool)
	Annotate(id, canonicalID string, descriptor models.Descriptor) bool
}

// TitleResolver maps parsed titles to canonical records.
type TitleResolver interface {
	SearchByTitle(ctx context.Context, title string, kind models.MediaKind, year int) metadata.Lookup
	GetByID(ctx context.Context, kind models.MediaKind, id string) metadata.Lookup
	Cached(id string) (models.CanonicalRecord, bool)
}

// Options tune catalog assembly.
type Options struct {
	Limit     int
	PublicURL string
}

// Assembler builds catalogs. It holds no state of its own; every cache it
// touches is injected.
type Assembler struct {
	inventory Inventory
	resolver  TitleResolver
	limit     int
	publicURL string
}

// NewAssembler wires an assembler to its inventory and resolver.
func NewAssembler(inv Inventory, resolver TitleResolver, opts Options) *Assembler {
	limit := opts.Limit
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	return &Assembler{
		inventory: inv,
		resolver:  resolver,
		limit:     limit,
		publicURL: opts.PublicURL,
	}
}

// Build returns the first page of the catalog for kind.
func (a *Assembler) Build(ctx context.Context, kind models.MediaKind) []models.CatalogEntry {
	return a.BuildPage(ctx, kind, 0)
}

// BuildPage lists distinct canonical entries for kind, newest inventory
// first, skipping the first skip distinct entries. Entries beyond the page
// are never parsed or resolved. Any failure yields an empty or shorter
// listing, never an error.
func (a *Assembler) BuildPage(ctx context.Context, kind models.MediaKind, skip int) []models.CatalogEntry {
	out := []models.CatalogEntry{}
	if _, ok := models.ParseMediaKind(string(kind)); !ok {
		return out
	}
	if skip < 0 {
		skip = 0
	}

	entries, err := a.inventory.Refresh(ctx)
	if err != nil {
		log.Printf("[catalog] %s: inventory unavailable: %v", kind, err)
		return out
	}
	inventory.SortByRecency(entries)

	emitted := make(map[string]struct{})
	distinct := 0
	for _, entry := range entries {
		if len(out) >= a.limit {
			break
		}
		if ctx.Err() != nil {
			log.Printf("[catalog] %s: stopped early: %v", kind, ctx.Err())
			break
		}

		item, ok, err := a.resolveEntry(ctx, entry, kind)
		if err != nil {
			log.Printf("[catalog] skipping entry %s (%q): %v", entry.ID, entry.Name, err)
			continue
		}
		if !ok {
			continue
		}
		if _, dup := emitted[item.ID]; dup {
			continue
		}
		emitted[item.ID] = struct{}{}
		distinct++
		if distinct <= skip {
			continue
		}
		out = append(out, item)
	}

	log.Printf("[catalog] %s: %d entries (skip=%d, inventory=%d)", kind, len(out), skip, len(entries))
	return out
}

// resolveEntry turns one inventory entry into a catalog entry. ok is false
// when the entry is of another kind. A panic while handling the entry is
// reported as an error so one bad entry cannot abort the pass.
func (a *Assembler) resolveEntry(ctx context.Context, entry models.InventoryEntry, kind models.MediaKind) (item models.CatalogEntry, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	desc := release.Parse(entry.Name)
	if desc.Kind != kind {
		return models.CatalogEntry{}, false, nil
	}

	quality := desc.Quality
	if quality == "" {
		quality = release.ExtractQuality(entry.Name)
	}

	if rec, found := a.lookup(ctx, entry, desc); found {
		// Quality variants of one title are annotated too so stream
		// resolution can find all of them.
		a.inventory.Annotate(entry.ID, rec.ID, desc)
		return a.fromRecord(rec, kind, entry, desc, quality), true, nil
	}

	return a.fallback(entry, desc, quality), true, nil
}

// lookup prefers an existing annotation so an entry keeps the identity it
// was first resolved to.
func (a *Assembler) lookup(ctx context.Context, entry models.InventoryEntry, desc models.Descriptor) (models.CanonicalRecord, bool) {
	if entry.Annotated() {
		if rec, ok := a.resolver.Cached(entry.CanonicalID); ok {
			return rec, true
		}
	}
	res := a.resolver.SearchByTitle(ctx, desc.Title, desc.Kind, desc.Year)
	if !res.Found() {
		return models.CanonicalRecord{}, false
	}
	return *res.Record, true
}

func (a *Assembler) fallback(entry models.InventoryEntry, desc models.Descriptor, quality string) models.CatalogEntry {
	item := models.CatalogEntry{
		ID:                models.FallbackID(entry.ID),
		Type:              desc.Kind,
		Name:              desc.Title,
		Poster:            placeholder.URL(a.publicURL, desc.Title),
		SourceInventoryID: entry.ID,
		SourceName:        entry.Name,
		Quality:           quality,
	}
	if desc.Year > 0 {
		item.ReleaseInfo = fmt.Sprint(desc.Year)
	}
	return item
}

func (a *Assembler) fromRecord(rec models.CanonicalRecord, kind models.MediaKind, entry models.InventoryEntry, desc models.Descriptor, quality string) models.CatalogEntry {
	item := models.CatalogEntry{
		ID:                rec.ID,
		Type:              kind,
		Name:              rec.Name,
		Poster:            rec.Poster,
		Background:        rec.Background,
		Description:       rec.Description,
		ReleaseInfo:       rec.ReleaseInfo,
		IMDBRating:        rec.Rating,
		SourceInventoryID: entry.ID,
		SourceName:        entry.Name,
		Quality:           quality,
	}
	if item.Name == "" {
		item.Name = desc.Title
	}
	if item.Poster == "" {
		item.Poster = placeholder.URL(a.publicURL, item.Name)
	}
	return item
}

// Package streams maps canonical IDs back to inventory entries and issues
// playback links for their video files.
package streams

import (
	"context"
	"log"
	"log/slog"
	"sort"

	"boxstream/models"
	"boxstream/services/inventory"
	"boxstream/services/metadata"
	"boxstream/services/release"
)

const defaultLinkConcurrency = 4

// Inventory is the part of the inventory cache the resolver needs.
type Inventory interface {
	Refresh(ctx context.Context) ([]models.InventoryEntry, error)
	Get(id string) (models.InventoryEntry, bool)
	FindByCanonicalID(canonicalID string) []models.InventoryEntry
	Annotate(id, canonicalID string, descriptor models.Descriptor) bool
}

// TitleResolver maps parsed titles to canonical records.
type TitleResolver interface {
	SearchByTitle(ctx context.Context, title string, kind models.MediaKind, year int) metadata.Lookup
}

// LinkIssuer issues ephemeral playback URLs. debrid.Provider satisfies it.
type LinkIssuer interface {
	Name() string
	RequestDownloadLink(ctx context.Context, torrentID, fileID string) (string, error)
}

// Options tune stream resolution.
type Options struct {
	LinkConcurrency int
}

// Resolver resolves canonical IDs to playback links.
type Resolver struct {
	log         *slog.Logger
	inventory   Inventory
	titles      TitleResolver
	links       LinkIssuer
	concurrency int
}

// NewResolver wires a resolver to its collaborators.
func NewResolver(inv Inventory, titles TitleResolver, links LinkIssuer, opts Options) *Resolver {
	concurrency := opts.LinkConcurrency
	if concurrency <= 0 {
		concurrency = defaultLinkConcurrency
	}
	return &Resolver{
		log:         slog.Default().With("component", "stream-resolver"),
		inventory:   inv,
		titles:      titles,
		links:       links,
		concurrency: concurrency,
	}
}

// Resolve returns playback links for a canonical ID. It never fails:
// unknown ID shapes, missing entries and upstream errors all yield an
// empty slice.
func (r *Resolver) Resolve(ctx context.Context, id string) []models.PlaybackLink {
	ref := models.ParseCanonicalID(id)

	var entries []models.InventoryEntry
	switch ref.Shape {
	case models.IDFallback:
		if entry, ok := r.fallbackEntry(ctx, ref.EntryID); ok {
			entries = []models.InventoryEntry{entry}
		}
	case models.IDAuthoritative:
		entries = r.authoritativeEntries(ctx, ref.BaseID)
	default:
		return []models.PlaybackLink{}
	}

	if len(entries) == 0 {
		log.Printf("[streams] no inventory entry for %s", id)
		return []models.PlaybackLink{}
	}

	targets := selectTargets(entries, ref.Season, ref.Episode)
	links := r.issue(ctx, targets)
	log.Printf("[streams] %s: %d links from %d entries (%d targets)", id, len(links), len(entries), len(targets))
	return links
}

// fallbackEntry looks an entry up by ID, refreshing once when it is not
// cached yet.
func (r *Resolver) fallbackEntry(ctx context.Context, entryID string) (models.InventoryEntry, bool) {
	if entry, ok := r.inventory.Get(entryID); ok {
		return entry, true
	}
	if _, err := r.inventory.Refresh(ctx); err != nil {
		log.Printf("[streams] refresh for entry %s failed: %v", entryID, err)
		return models.InventoryEntry{}, false
	}
	return r.inventory.Get(entryID)
}

// authoritativeEntries returns every inventory entry bound to canonicalID,
// best quality first. When nothing is annotated yet it re-resolves
// unannotated entries until one matches.
func (r *Resolver) authoritativeEntries(ctx context.Context, canonicalID string) []models.InventoryEntry {
	snapshot, err := r.inventory.Refresh(ctx)
	if err != nil {
		log.Printf("[streams] refresh for %s failed: %v", canonicalID, err)
		return nil
	}

	matches := r.inventory.FindByCanonicalID(canonicalID)
	if len(matches) == 0 {
		matches = r.scan(ctx, snapshot, canonicalID)
	}
	rankEntries(matches)
	return matches
}

// scan re-parses and re-resolves unannotated entries, newest first. Every
// successful resolution is annotated. Once canonicalID is found, remaining
// entries with the same parsed identity are attached without further
// lookups.
func (r *Resolver) scan(ctx context.Context, snapshot []models.InventoryEntry, canonicalID string) []models.InventoryEntry {
	inventory.SortByRecency(snapshot)

	var (
		matches []models.InventoryEntry
		matched *models.Descriptor
	)
	for _, entry := range snapshot {
		if entry.Annotated() {
			continue
		}
		desc := release.Parse(entry.Name)

		if matched != nil {
			if sameIdentity(*matched, desc) && r.inventory.Annotate(entry.ID, canonicalID, desc) {
				matches = append(matches, entry)
			}
			continue
		}
		if ctx.Err() != nil {
			break
		}

		res := r.titles.SearchByTitle(ctx, desc.Title, desc.Kind, desc.Year)
		if !res.Found() {
			continue
		}
		r.inventory.Annotate(entry.ID, res.Record.ID, desc)
		if res.Record.ID == canonicalID {
			log.Printf("[streams] resolved %s to entry %s (%q)", canonicalID, entry.ID, entry.Name)
			matches = append(matches, entry)
			d := desc
			matched = &d
		}
	}
	return matches
}

func sameIdentity(a, b models.Descriptor) bool {
	return a.Kind == b.Kind && a.Year == b.Year && metadata.SameTitle(a.Title, b.Title)
}

// rankEntries orders quality variants best first, newest first within a
// quality.
func rankEntries(entries []models.InventoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		qi := release.QualityRank(entryQuality(entries[i]))
		qj := release.QualityRank(entryQuality(entries[j]))
		if qi != qj {
			return qi < qj
		}
		return entries[i].RecencyTime().After(entries[j].RecencyTime())
	})
}

func entryQuality(entry models.InventoryEntry) string {
	if entry.Descriptor != nil && entry.Descriptor.Quality != "" {
		return entry.Descriptor.Quality
	}
	if q := release.Parse(entry.Name).Quality; q != "" {
		return q
	}
	return release.ExtractQuality(entry.Name)
}

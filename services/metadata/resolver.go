package metadata

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"boxstream/models"
)

// Client is the external metadata catalog.
type Client interface {
	Search(ctx context.Context, kind models.MediaKind, query string) ([]models.CanonicalRecord, error)
	Meta(ctx context.Context, kind models.MediaKind, id string) (*models.CanonicalRecord, error)
}

// LookupStatus classifies the outcome of a metadata lookup.
type LookupStatus int

const (
	// LookupNotFound means the catalog answered and had no match.
	LookupNotFound LookupStatus = iota
	// LookupFound means Record holds the match.
	LookupFound
	// LookupFailed means the catalog could not be reached; nothing was cached.
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupFailed:
		return "failed"
	default:
		return "not-found"
	}
}

// Lookup is the result of a resolver call.
type Lookup struct {
	Status LookupStatus
	Record *models.CanonicalRecord
	Err    error
}

// Found reports whether the lookup produced a record.
func (l Lookup) Found() bool {
	return l.Status == LookupFound && l.Record != nil
}

func found(rec models.CanonicalRecord) Lookup {
	return Lookup{Status: LookupFound, Record: &rec}
}

// searchEntry is a cached search outcome; an empty id is a cached miss.
type searchEntry struct {
	id string
}

// Resolver maps parsed titles to canonical records. It keeps a search cache
// keyed by (kind, title, year) and a by-ID cache keyed by ID alone. Neither
// cache expires.
type Resolver struct {
	client  Client
	timeout time.Duration

	mu       sync.RWMutex
	searches map[string]searchEntry
	byID     map[string]models.CanonicalRecord
	missing  map[string]struct{}

	group singleflight.Group
}

// NewResolver creates a resolver with empty caches. timeout bounds every
// outbound call.
func NewResolver(client Client, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultCinemetaTimeout
	}
	return &Resolver{
		client:   client,
		timeout:  timeout,
		searches: make(map[string]searchEntry),
		byID:     make(map[string]models.CanonicalRecord),
		missing:  make(map[string]struct{}),
	}
}

// SearchByTitle finds the canonical record for a title. Among several
// candidates the first one wins unless another candidate's year equals
// year exactly. Hits and misses are cached; upstream failures are logged,
// reported as LookupFailed and not cached.
func (r *Resolver) SearchByTitle(ctx context.Context, title string, kind models.MediaKind, year int) Lookup {
	title = strings.TrimSpace(title)
	if title == "" || r.client == nil {
		return Lookup{Status: LookupNotFound}
	}

	key := searchCacheKey(kind, title, year)
	if lookup, ok := r.cachedSearch(key); ok {
		return lookup
	}

	v, _, _ := r.group.Do("search:"+key, func() (any, error) {
		if lookup, ok := r.cachedSearch(key); ok {
			return lookup, nil
		}

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		candidates, err := r.client.Search(callCtx, kind, searchQuery(title))
		if err != nil {
			log.Printf("[metadata] search failed kind=%s title=%q year=%d: %v", kind, title, year, err)
			return Lookup{Status: LookupFailed, Err: err}, nil
		}

		rec, ok := pickCandidate(candidates, year)
		r.mu.Lock()
		defer r.mu.Unlock()
		if !ok {
			r.searches[key] = searchEntry{}
			log.Printf("[metadata] no match kind=%s title=%q year=%d", kind, title, year)
			return Lookup{Status: LookupNotFound}, nil
		}
		if rec.Kind == "" {
			rec.Kind = kind
		}
		r.searches[key] = searchEntry{id: rec.ID}
		r.byID[rec.ID] = rec
		delete(r.missing, rec.ID)
		log.Printf("[metadata] matched kind=%s title=%q year=%d -> %s (%s)", kind, title, year, rec.ID, rec.Name)
		return found(rec), nil
	})
	return v.(Lookup)
}

// GetByID returns the record for id, consulting the by-ID cache first.
func (r *Resolver) GetByID(ctx context.Context, kind models.MediaKind, id string) Lookup {
	id = strings.TrimSpace(id)
	if id == "" || r.client == nil {
		return Lookup{Status: LookupNotFound}
	}
	if lookup, ok := r.cachedID(id); ok {
		return lookup
	}

	v, _, _ := r.group.Do("id:"+id, func() (any, error) {
		if lookup, ok := r.cachedID(id); ok {
			return lookup, nil
		}

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		rec, err := r.client.Meta(callCtx, kind, id)
		if err != nil {
			log.Printf("[metadata] meta lookup failed kind=%s id=%s: %v", kind, id, err)
			return Lookup{Status: LookupFailed, Err: err}, nil
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if rec == nil {
			r.missing[id] = struct{}{}
			return Lookup{Status: LookupNotFound}, nil
		}
		out := *rec
		if out.Kind == "" {
			out.Kind = kind
		}
		r.byID[id] = out
		return found(out), nil
	})
	return v.(Lookup)
}

// Cached returns a by-ID cache entry without any network call.
func (r *Resolver) Cached(id string) (models.CanonicalRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	return rec, ok
}

func (r *Resolver) cachedSearch(key string) (Lookup, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.searches[key]
	if !ok {
		return Lookup{}, false
	}
	if entry.id == "" {
		return Lookup{Status: LookupNotFound}, true
	}
	rec, ok := r.byID[entry.id]
	if !ok {
		return Lookup{}, false
	}
	return found(rec), true
}

func (r *Resolver) cachedID(id string) (Lookup, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.byID[id]; ok {
		return found(rec), true
	}
	if _, ok := r.missing[id]; ok {
		return Lookup{Status: LookupNotFound}, true
	}
	return Lookup{}, false
}

// pickCandidate applies the tie-break: exact year match first, else the
// first candidate.
func pickCandidate(candidates []models.CanonicalRecord, year int) (models.CanonicalRecord, bool) {
	if len(candidates) == 0 {
		return models.CanonicalRecord{}, false
	}
	if year > 0 {
		for _, c := range candidates {
			if c.Year == year {
				return c, true
			}
		}
	}
	return candidates[0], true
}

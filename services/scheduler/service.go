// Package scheduler runs background catalog pre-warming so the metadata
// caches and inventory annotations are filled before clients ask.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"boxstream/models"
)

// CatalogBuilder builds one catalog listing.
type CatalogBuilder interface {
	Build(ctx context.Context, kind models.MediaKind) []models.CatalogEntry
}

// Service manages the pre-warm loop.
type Service struct {
	builder  CatalogBuilder
	interval time.Duration
	kinds    []models.MediaKind

	// Runtime state. done is closed when the current loop goroutine exits;
	// it outlives running when Stop times out.
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	runs atomic.Int64
}

// NewService creates a scheduler that rebuilds the movie and series
// catalogs every interval.
func NewService(builder CatalogBuilder, interval time.Duration) *Service {
	if interval < time.Minute {
		interval = 30 * time.Minute
	}
	return &Service{
		builder:  builder,
		interval: interval,
		kinds:    []models.MediaKind{models.MediaKindMovie, models.MediaKindSeries},
	}
}

// Start begins the background loop. The first warm-up runs immediately.
// A loop left behind by a timed-out Stop must exit before a new one starts;
// Start waits for it, bounded by ctx.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.done != nil {
		select {
		case <-s.done:
		case <-ctx.Done():
			return fmt.Errorf("previous warm-up loop still running: %w", ctx.Err())
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.running = true

	go s.loop(loopCtx, done)

	log.Printf("[scheduler] catalog warm-up started (every %s)", s.interval)
	return nil
}

// Stop cancels the loop and waits for an in-flight run, bounded by ctx.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.running = false
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		log.Println("[scheduler] catalog warm-up stopped")
		return nil
	case <-ctx.Done():
		log.Println("[scheduler] catalog warm-up stop timed out; loop still exiting")
		return ctx.Err()
	}
}

// Runs returns how many warm-up passes have completed.
func (s *Service) Runs() int64 {
	return s.runs.Load()
}

func (s *Service) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce builds every catalog once.
func (s *Service) RunOnce(ctx context.Context) {
	start := time.Now()
	total := 0
	for _, kind := range s.kinds {
		if ctx.Err() != nil {
			return
		}
		total += len(s.builder.Build(ctx, kind))
	}

	s.runs.Add(1)
	log.Printf("[scheduler] warmed %d catalog entries in %s", total, time.Since(start).Round(time.Millisecond))
}

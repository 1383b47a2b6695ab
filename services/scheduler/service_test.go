package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"boxstream/models"
)

type recordingBuilder struct {
	mu    sync.Mutex
	kinds []models.MediaKind
}

func (b *recordingBuilder) Build(_ context.Context, kind models.MediaKind) []models.CatalogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kinds = append(b.kinds, kind)
	return []models.CatalogEntry{{ID: "tt1"}}
}

func (b *recordingBuilder) calls() []models.MediaKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.MediaKind(nil), b.kinds...)
}

func TestRunOnceBuildsEveryKind(t *testing.T) {
	builder := &recordingBuilder{}
	s := NewService(builder, time.Hour)

	s.RunOnce(context.Background())

	got := builder.calls()
	if len(got) != 2 || got[0] != models.MediaKindMovie || got[1] != models.MediaKindSeries {
		t.Fatalf("unexpected builds %v", got)
	}
	if s.Runs() != 1 {
		t.Fatalf("expected 1 run, got %d", s.Runs())
	}
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	builder := &recordingBuilder{}
	s := NewService(builder, time.Hour)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Runs() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.Runs() != 1 {
		t.Fatalf("expected the initial run, got %d", s.Runs())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestRunOnceCancelled(t *testing.T) {
	builder := &recordingBuilder{}
	s := NewService(builder, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.RunOnce(ctx)

	if len(builder.calls()) != 0 || s.Runs() != 0 {
		t.Fatal("cancelled run should do nothing")
	}
}

type blockingBuilder struct {
	release   chan struct{}
	entered   chan struct{}
	active    atomic.Int32
	maxActive atomic.Int32
}

func (b *blockingBuilder) Build(_ context.Context, kind models.MediaKind) []models.CatalogEntry {
	n := b.active.Add(1)
	defer b.active.Add(-1)
	for {
		prev := b.maxActive.Load()
		if n <= prev || b.maxActive.CompareAndSwap(prev, n) {
			break
		}
	}
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return nil
}

func TestStartAfterTimedOutStopWaitsForOldLoop(t *testing.T) {
	builder := &blockingBuilder{release: make(chan struct{}), entered: make(chan struct{}, 8)}
	s := NewService(builder, time.Hour)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-builder.entered

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Stop(expired); err == nil {
		t.Fatal("Stop should report the timeout while a build is stuck")
	}

	short, cancelShort := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelShort()
	if err := s.Start(short); err == nil {
		t.Fatal("Start must not spawn a second loop while the old one is alive")
	}

	close(builder.release)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	select {
	case <-builder.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("restarted loop never ran")
	}

	ctx, cancelStop := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelStop()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := builder.maxActive.Load(); got != 1 {
		t.Fatalf("expected one loop at a time, saw %d concurrent builds", got)
	}
}

package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"boxstream/models"
	"boxstream/services/debrid"
	"boxstream/services/debrid/mocks"
	"boxstream/services/inventory"
	"boxstream/services/metadata"
)

type stubCatalog struct {
	calls   int64
	mu      sync.Mutex
	records map[string][]models.CanonicalRecord
}

func (s *stubCatalog) Search(_ context.Context, kind models.MediaKind, query string) ([]models.CanonicalRecord, error) {
	atomic.AddInt64(&s.calls, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[string(kind)+"|"+query], nil
}

func (s *stubCatalog) Meta(context.Context, models.MediaKind, string) (*models.CanonicalRecord, error) {
	return nil, nil
}

func at(minutes int) *time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
	return &t
}

func newAssembler(t *testing.T, entries []models.InventoryEntry, records map[string][]models.CanonicalRecord) (*Assembler, *inventory.Cache, *stubCatalog) {
	t.Helper()
	return newAssemblerWithOptions(t, entries, records, Options{PublicURL: "http://addon.local"})
}

func newAssemblerWithOptions(t *testing.T, entries []models.InventoryEntry, records map[string][]models.CanonicalRecord, opts Options) (*Assembler, *inventory.Cache, *stubCatalog) {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().ListTorrents(gomock.Any()).Return(entries, nil).AnyTimes()

	inv := inventory.NewCache(provider)
	stub := &stubCatalog{records: records}
	resolver := metadata.NewResolver(stub, time.Second)
	return NewAssembler(inv, resolver, opts), inv, stub
}

func TestBuildDeduplicatesCanonicalIDs(t *testing.T) {
	records := map[string][]models.CanonicalRecord{
		"movie|Movie Name": {{ID: "tt100", Name: "Movie Name", Poster: "https://img/poster.jpg", Year: 2021}},
	}
	first := models.InventoryEntry{ID: "a", Name: "Movie.Name.2021.1080p.BluRay.mkv", UpdatedAt: at(10)}
	second := models.InventoryEntry{ID: "b", Name: "Movie.Name.2021.2160p.WEB-DL.mkv", UpdatedAt: at(5)}

	for _, order := range [][]models.InventoryEntry{{first, second}, {second, first}} {
		assembler, inv, _ := newAssembler(t, order, records)

		got := assembler.Build(context.Background(), models.MediaKindMovie)
		require.Len(t, got, 1)
		assert.Equal(t, "tt100", got[0].ID)
		assert.Equal(t, "a", got[0].SourceInventoryID, "newest entry is emitted")
		assert.Equal(t, "1080p", got[0].Quality)

		variants := inv.FindByCanonicalID("tt100")
		assert.Len(t, variants, 2, "both quality variants are annotated")
	}
}

func featureEntries(n int) []models.InventoryEntry {
	var entries []models.InventoryEntry
	for i := 0; i < n; i++ {
		entries = append(entries, models.InventoryEntry{
			ID:        fmt.Sprint(i),
			Name:      fmt.Sprintf("Feature%02d.2020.720p.mkv", i),
			UpdatedAt: at(100 - i),
		})
	}
	return entries
}

func TestBuildCapsAtLimitAndResolvesLazily(t *testing.T) {
	assembler, _, stub := newAssembler(t, featureEntries(30), nil)

	got := assembler.Build(context.Background(), models.MediaKindMovie)
	require.Len(t, got, DefaultLimit)
	assert.Equal(t, "torbox:0", got[0].ID)
	assert.Equal(t, "torbox:19", got[DefaultLimit-1].ID)
	assert.Equal(t, int64(DefaultLimit), atomic.LoadInt64(&stub.calls))
}

func TestBuildLimitNeverExceedsCap(t *testing.T) {
	assembler, _, _ := newAssemblerWithOptions(t, featureEntries(30), nil, Options{Limit: 50})
	assert.Len(t, assembler.Build(context.Background(), models.MediaKindMovie), DefaultLimit)

	small, _, _ := newAssemblerWithOptions(t, featureEntries(30), nil, Options{Limit: 5})
	assert.Len(t, small.Build(context.Background(), models.MediaKindMovie), 5)
}

func TestBuildFiltersByKind(t *testing.T) {
	entries := []models.InventoryEntry{
		{ID: "1", Name: "Show.Name.S02E05.720p.mkv", UpdatedAt: at(3)},
		{ID: "2", Name: "Movie.Name.2021.1080p.BluRay.mkv", UpdatedAt: at(2)},
		{ID: "3", Name: "Other.Show.S01.1080p", UpdatedAt: at(1)},
	}
	assembler, _, _ := newAssembler(t, entries, nil)

	series := assembler.Build(context.Background(), models.MediaKindSeries)
	require.Len(t, series, 2)
	for _, item := range series {
		assert.Equal(t, models.MediaKindSeries, item.Type)
	}
	assert.Equal(t, []string{"torbox:1", "torbox:3"}, []string{series[0].ID, series[1].ID})

	movies := assembler.Build(context.Background(), models.MediaKindMovie)
	require.Len(t, movies, 1)
	assert.Equal(t, "torbox:2", movies[0].ID)
}

func TestBuildFallbackEntry(t *testing.T) {
	entries := []models.InventoryEntry{{ID: "42", Name: "Home.Video.2019.mkv"}}
	assembler, inv, _ := newAssembler(t, entries, nil)

	got := assembler.Build(context.Background(), models.MediaKindMovie)
	require.Len(t, got, 1)
	item := got[0]
	assert.Equal(t, "torbox:42", item.ID)
	assert.Equal(t, "Home Video", item.Name)
	assert.Equal(t, "2019", item.ReleaseInfo)
	assert.True(t, strings.HasPrefix(item.Poster, "http://addon.local/placeholder/poster.png?title="))

	entry, ok := inv.Get("42")
	require.True(t, ok)
	assert.False(t, entry.Annotated(), "fallback entries are not annotated")
}

func TestBuildFallbackIDsStayPerEntry(t *testing.T) {
	entries := []models.InventoryEntry{
		{ID: "1", Name: "Unknown.Title.2010.720p.mkv", UpdatedAt: at(2)},
		{ID: "2", Name: "Unknown.Title.2010.1080p.mkv", UpdatedAt: at(1)},
	}
	assembler, _, _ := newAssembler(t, entries, nil)

	got := assembler.Build(context.Background(), models.MediaKindMovie)
	require.Len(t, got, 2)
	assert.Equal(t, "torbox:1", got[0].ID)
	assert.Equal(t, "torbox:2", got[1].ID)
}

func TestBuildQualityFallsBackToContentExtraction(t *testing.T) {
	records := map[string][]models.CanonicalRecord{
		"movie|Some Film": {{ID: "tt7", Name: "Some Film"}},
	}
	entries := []models.InventoryEntry{{ID: "1", Name: "Some.Film.2005.BluRay.x264.mkv"}}
	assembler, _, _ := newAssembler(t, entries, records)

	got := assembler.Build(context.Background(), models.MediaKindMovie)
	require.Len(t, got, 1)
	assert.Equal(t, "BluRay", got[0].Quality)
}

func TestBuildPageSkipsDistinctEntries(t *testing.T) {
	var entries []models.InventoryEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, models.InventoryEntry{
			ID:        fmt.Sprint(i),
			Name:      fmt.Sprintf("Picture%d.2001.mkv", i),
			UpdatedAt: at(10 - i),
		})
	}
	assembler, _, _ := newAssembler(t, entries, nil)
	assembler.limit = 2

	page := assembler.BuildPage(context.Background(), models.MediaKindMovie, 2)
	require.Len(t, page, 2)
	assert.Equal(t, "torbox:2", page[0].ID)
	assert.Equal(t, "torbox:3", page[1].ID)

	assert.Empty(t, assembler.BuildPage(context.Background(), models.MediaKindMovie, 10))
}

func TestBuildReturnsEmptyOnInventoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().ListTorrents(gomock.Any()).
		Return(nil, fmt.Errorf("torbox status 500: %w", debrid.ErrUpstreamUnavailable))

	assembler := NewAssembler(inventory.NewCache(provider), metadata.NewResolver(&stubCatalog{}, time.Second), Options{})

	got := assembler.Build(context.Background(), models.MediaKindMovie)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildUnsupportedKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	assembler := NewAssembler(inventory.NewCache(provider), metadata.NewResolver(&stubCatalog{}, time.Second), Options{})
	got := assembler.Build(context.Background(), models.MediaKind("channel"))
	assert.Empty(t, got)
}

type panickyResolver struct{}

func (p *panickyResolver) SearchByTitle(_ context.Context, title string, _ models.MediaKind, _ int) metadata.Lookup {
	if title == "Bad Entry" {
		panic("boom")
	}
	return metadata.Lookup{Status: metadata.LookupNotFound}
}

func (p *panickyResolver) GetByID(context.Context, models.MediaKind, string) metadata.Lookup {
	return metadata.Lookup{Status: metadata.LookupNotFound}
}

func (p *panickyResolver) Cached(string) (models.CanonicalRecord, bool) {
	return models.CanonicalRecord{}, false
}

func TestBuildIsolatesPerEntryFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().ListTorrents(gomock.Any()).Return([]models.InventoryEntry{
		{ID: "1", Name: "Bad.Entry.2020.mkv", UpdatedAt: at(2)},
		{ID: "2", Name: "Good.Entry.2020.mkv", UpdatedAt: at(1)},
	}, nil)

	assembler := NewAssembler(inventory.NewCache(provider), &panickyResolver{}, Options{})
	got := assembler.Build(context.Background(), models.MediaKindMovie)
	require.Len(t, got, 1)
	assert.Equal(t, "torbox:2", got[0].ID)
}

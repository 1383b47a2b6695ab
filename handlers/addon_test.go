package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"boxstream/models"
	"boxstream/services/debrid"
	"boxstream/utils"
)

type fakeCatalog struct {
	lastKind models.MediaKind
	lastSkip int
	entries  []models.CatalogEntry
	meta     *models.Meta
}

func (f *fakeCatalog) BuildPage(_ context.Context, kind models.MediaKind, skip int) []models.CatalogEntry {
	f.lastKind = kind
	f.lastSkip = skip
	return f.entries
}

func (f *fakeCatalog) Meta(_ context.Context, kind models.MediaKind, id string) *models.Meta {
	if f.meta != nil && f.meta.ID == id {
		return f.meta
	}
	return nil
}

type fakeStreams struct {
	lastID string
	links  []models.PlaybackLink
}

func (f *fakeStreams) Resolve(_ context.Context, id string) []models.PlaybackLink {
	f.lastID = id
	return f.links
}

type fakeAccount struct {
	info *models.AccountInfo
	err  error
}

func (f *fakeAccount) GetAccountInfo(context.Context) (*models.AccountInfo, error) {
	return f.info, f.err
}

func newAddonServer(h *AddonHandler) http.Handler {
	r := utils.NewRouter()
	h.Register(r)
	return r
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestManifest(t *testing.T) {
	rec := get(t, newAddonServer(&AddonHandler{}), "/manifest.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var manifest models.Manifest
	if err := json.NewDecoder(rec.Body).Decode(&manifest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(manifest.Catalogs) != 2 || manifest.Catalogs[0].ID != "torbox-movie" {
		t.Fatalf("unexpected catalogs %+v", manifest.Catalogs)
	}
	if len(manifest.IDPrefixes) != 2 || manifest.IDPrefixes[1] != "torbox:" {
		t.Fatalf("unexpected id prefixes %v", manifest.IDPrefixes)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("manifest must be readable cross-origin")
	}
}

func TestCatalogRoute(t *testing.T) {
	cat := &fakeCatalog{entries: []models.CatalogEntry{
		{ID: "tt1", Type: models.MediaKindMovie, Name: "One", SourceInventoryID: "secret"},
	}}
	srv := newAddonServer(&AddonHandler{Assembler: cat})

	rec := get(t, srv, "/catalog/movie/torbox-movie.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string][]map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["metas"]) != 1 || body["metas"][0]["id"] != "tt1" {
		t.Fatalf("unexpected metas %v", body["metas"])
	}
	if _, leaked := body["metas"][0]["SourceInventoryID"]; leaked {
		t.Fatal("back-pointers must not be serialised")
	}

	get(t, srv, "/catalog/series/torbox-series/skip=40.json")
	if cat.lastKind != models.MediaKindSeries || cat.lastSkip != 40 {
		t.Fatalf("expected series skip=40, got %s skip=%d", cat.lastKind, cat.lastSkip)
	}
}

func TestCatalogRouteDegradesToEmpty(t *testing.T) {
	srv := newAddonServer(&AddonHandler{Assembler: &fakeCatalog{}})

	for _, path := range []string{"/catalog/movie/torbox-movie.json", "/catalog/channel/x.json"} {
		rec := get(t, srv, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if body := rec.Body.String(); body != "{\"metas\":[]}\n" {
			t.Fatalf("%s: expected empty metas, got %s", path, body)
		}
	}
}

func TestMetaRoute(t *testing.T) {
	cat := &fakeCatalog{meta: &models.Meta{ID: "torbox:9", Type: models.MediaKindMovie, Name: "Nine"}}
	srv := newAddonServer(&AddonHandler{Assembler: cat})

	rec := get(t, srv, "/meta/movie/torbox:9.json")
	var resp models.MetaResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Meta == nil || resp.Meta.Name != "Nine" {
		t.Fatalf("unexpected meta %+v", resp.Meta)
	}

	rec = get(t, srv, "/meta/movie/tt404.json")
	if body := rec.Body.String(); body != "{\"meta\":null}\n" {
		t.Fatalf("expected null meta, got %s", body)
	}
}

func TestStreamRoute(t *testing.T) {
	streams := &fakeStreams{links: []models.PlaybackLink{{
		Name:    "Torbox\n1080p",
		Title:   "Movie.mkv\n1.0 GB",
		URL:     "https://cdn.example/1",
		Quality: "1080p",
		Size:    1_000_000_000,
	}}}
	srv := newAddonServer(&AddonHandler{Streams: streams})

	rec := get(t, srv, "/stream/series/tt0903747:1:2.json")
	if streams.lastID != "tt0903747:1:2" {
		t.Fatalf("unexpected id %q", streams.lastID)
	}
	var resp models.StreamResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Streams) != 1 {
		t.Fatalf("expected 1 stream, got %d", len(resp.Streams))
	}
	s := resp.Streams[0]
	if s.URL != "https://cdn.example/1" || s.BehaviorHints == nil || s.BehaviorHints.Filename != "Movie.mkv" || s.BehaviorHints.BingeGroup != "boxstream-1080p" {
		t.Fatalf("unexpected stream %+v hints=%+v", s, s.BehaviorHints)
	}
}

func TestStreamRouteEmpty(t *testing.T) {
	srv := newAddonServer(&AddonHandler{Streams: &fakeStreams{}})
	for _, path := range []string{"/stream/movie/tt1.json", "/stream/tv/tt1.json"} {
		rec := get(t, srv, path)
		if body := rec.Body.String(); rec.Code != http.StatusOK || body != "{\"streams\":[]}\n" {
			t.Fatalf("%s: expected empty streams, got %d %s", path, rec.Code, body)
		}
	}
}

func TestAccountRoute(t *testing.T) {
	ok := newAddonServer(&AddonHandler{Account: &fakeAccount{info: &models.AccountInfo{Email: "a@b.c", PlanName: "Pro", PremiumActive: true}}})
	rec := get(t, ok, "/account")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	failing := newAddonServer(&AddonHandler{Account: &fakeAccount{err: fmt.Errorf("me: %w", debrid.ErrUpstreamUnavailable)}})
	if rec := get(t, failing, "/account"); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	missing := newAddonServer(&AddonHandler{Account: &fakeAccount{err: debrid.ErrConfigMissing}})
	if rec := get(t, missing, "/account"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestPosterRoute(t *testing.T) {
	rec := get(t, newAddonServer(&AddonHandler{}), "/placeholder/poster.png?title=Home+Video")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Fatalf("invalid png: %v", err)
	}
}

func TestParseSkip(t *testing.T) {
	cases := map[string]int{"": 0, "skip=20": 20, "skip=-5": 0, "search=x&skip=3": 3, "genre=Drama": 0, "%zz": 0}
	for in, want := range cases {
		if got := parseSkip(in); got != want {
			t.Errorf("parseSkip(%q) = %d, want %d", in, got, want)
		}
	}
}

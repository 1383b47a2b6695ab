package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boxstream/models"
)

func TestCinemetaSearchParsesCandidates(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"metas":[
			{"id":"tt1160419","imdb_id":"tt1160419","type":"movie","name":"Dune","releaseInfo":"2021","imdbRating":"8.0","poster":"https://img/p.jpg"},
			{"id":"tt0087182","type":"movie","name":"Dune","year":1984,"imdbRating":6.3},
			{"name":"No ID"}
		]}`))
	}))
	defer srv.Close()

	client := NewCinemetaClient(srv.URL+"/", time.Second)
	records, err := client.Search(context.Background(), models.MediaKindMovie, "Dune Part")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPath != "/catalog/movie/top/search=Dune%20Part.json" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Year != 2021 || records[0].Rating != "8.0" || records[0].Poster == "" {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if records[1].ID != "tt0087182" || records[1].Year != 1984 || records[1].ReleaseInfo != "1984" || records[1].Rating != "6.3" {
		t.Fatalf("unexpected second record %+v", records[1])
	}
}

func TestCinemetaMetaNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	rec, err := NewCinemetaClient(srv.URL, time.Second).Meta(context.Background(), models.MediaKindSeries, "tt0000001")
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestCinemetaMetaEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":null}`))
	}))
	defer srv.Close()

	rec, err := NewCinemetaClient(srv.URL, time.Second).Meta(context.Background(), models.MediaKindMovie, "tt1")
	if err != nil || rec != nil {
		t.Fatalf("expected nil record and no error, got %+v %v", rec, err)
	}
}

func TestCinemetaMetaParsesSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/meta/series/tt0903747.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"meta":{"id":"tt0903747","type":"series","name":"Breaking Bad","releaseInfo":"2008-2013"}}`))
	}))
	defer srv.Close()

	rec, err := NewCinemetaClient(srv.URL, time.Second).Meta(context.Background(), models.MediaKindSeries, "tt0903747")
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if rec == nil || rec.Kind != models.MediaKindSeries || rec.Year != 2008 || rec.ReleaseInfo != "2008-2013" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestCinemetaServerErrorIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewCinemetaClient(srv.URL, time.Second).Search(context.Background(), models.MediaKindMovie, "x"); err == nil {
		t.Fatal("expected error for 502")
	}
}

func TestCinemetaDefaults(t *testing.T) {
	c := NewCinemetaClient("  ", 0)
	if c.baseURL != defaultCinemetaURL {
		t.Fatalf("expected default url, got %q", c.baseURL)
	}
	if c.httpc.Timeout != defaultCinemetaTimeout {
		t.Fatalf("expected default timeout, got %v", c.httpc.Timeout)
	}
}

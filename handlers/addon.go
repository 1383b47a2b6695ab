package handlers

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"boxstream/models"
	"boxstream/services/catalog"
	"boxstream/services/debrid"
	"boxstream/services/placeholder"
	"boxstream/services/streams"
	"boxstream/utils"
)

type catalogService interface {
	BuildPage(ctx context.Context, kind models.MediaKind, skip int) []models.CatalogEntry
	Meta(ctx context.Context, kind models.MediaKind, id string) *models.Meta
}

type streamService interface {
	Resolve(ctx context.Context, id string) []models.PlaybackLink
}

type accountService interface {
	GetAccountInfo(ctx context.Context) (*models.AccountInfo, error)
}

var (
	_ catalogService = (*catalog.Assembler)(nil)
	_ streamService  = (*streams.Resolver)(nil)
	_ accountService = (debrid.Provider)(nil)
)

// AddonVersion is reported in the manifest.
var AddonVersion = "1.0.0"

// AddonHandler serves the addon protocol: manifest, catalogs, metas and
// streams. Engine degradation never produces an error status; the client
// gets an empty payload instead.
type AddonHandler struct {
	Assembler catalogService
	Streams   streamService
	Account   accountService
}

// Register mounts the addon routes on r.
func (h *AddonHandler) Register(r *mux.Router) {
	public := func(path string, fn http.HandlerFunc) {
		r.Handle(path, utils.PublicCORS(fn)).Methods(http.MethodGet, http.MethodOptions)
	}
	public("/manifest.json", h.Manifest)
	public("/catalog/{type}/{id}.json", h.Catalog)
	public("/catalog/{type}/{id}/{extra}.json", h.Catalog)
	public("/meta/{type}/{id}.json", h.Meta)
	public("/stream/{type}/{id}.json", h.Stream)
	public(placeholder.Path, h.Poster)
	public("/version", NewVersionHandler().GetVersion)

	r.Handle("/account", utils.PrivateCORS(http.HandlerFunc(h.AccountInfo))).Methods(http.MethodGet, http.MethodOptions)
}

// Manifest describes the addon.
func (h *AddonHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	extra := []models.CatalogExtra{{Name: "skip"}}
	utils.WriteJSON(w, http.StatusOK, models.Manifest{
		ID:          "community.boxstream",
		Version:     AddonVersion,
		Name:        "Torbox Library",
		Description: "Movies and series from your Torbox account, matched to Cinemeta.",
		Resources:   []string{"catalog", "meta", "stream"},
		Types:       []string{string(models.MediaKindMovie), string(models.MediaKindSeries)},
		Catalogs: []models.ManifestCatalog{
			{Type: string(models.MediaKindMovie), ID: "torbox-movie", Name: "Torbox Movies", Extra: extra},
			{Type: string(models.MediaKindSeries), ID: "torbox-series", Name: "Torbox Series", Extra: extra},
		},
		IDPrefixes: []string{"tt", models.FallbackPrefix},
	})
}

// Catalog lists canonical entries for a kind. The optional extra segment
// carries "skip=N".
func (h *AddonHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp := models.CatalogResponse{Metas: []models.CatalogEntry{}}

	kind, ok := models.ParseMediaKind(vars["type"])
	if !ok || h.Assembler == nil {
		utils.WriteJSON(w, http.StatusOK, resp)
		return
	}

	skip := parseSkip(vars["extra"])
	if metas := h.Assembler.BuildPage(r.Context(), kind, skip); metas != nil {
		resp.Metas = metas
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// Meta returns one canonical entry's detail.
func (h *AddonHandler) Meta(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp := models.MetaResponse{}

	kind, ok := models.ParseMediaKind(vars["type"])
	if ok && h.Assembler != nil {
		resp.Meta = h.Assembler.Meta(r.Context(), kind, vars["id"])
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// Stream lists playback links for a canonical ID.
func (h *AddonHandler) Stream(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp := models.StreamResponse{Streams: []models.Stream{}}

	if _, ok := models.ParseMediaKind(vars["type"]); !ok || h.Streams == nil {
		utils.WriteJSON(w, http.StatusOK, resp)
		return
	}

	for _, link := range h.Streams.Resolve(r.Context(), vars["id"]) {
		resp.Streams = append(resp.Streams, toStream(link))
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// AccountInfo reports plan and usage of the content account.
func (h *AddonHandler) AccountInfo(w http.ResponseWriter, r *http.Request) {
	if h.Account == nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "account not configured"})
		return
	}
	info, err := h.Account.GetAccountInfo(r.Context())
	if err != nil {
		log.Printf("[addon] account info failed: %v", err)
		status := http.StatusBadGateway
		if errors.Is(err, debrid.ErrConfigMissing) {
			status = http.StatusServiceUnavailable
		}
		utils.WriteJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	utils.WriteJSON(w, http.StatusOK, info)
}

// Poster renders a placeholder poster for ?title=.
func (h *AddonHandler) Poster(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := placeholder.Render(&buf, r.URL.Query().Get("title")); err != nil {
		log.Printf("[addon] render placeholder: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func parseSkip(extra string) int {
	if extra == "" {
		return 0
	}
	values, err := url.ParseQuery(extra)
	if err != nil {
		return 0
	}
	skip, err := strconv.Atoi(strings.TrimSpace(values.Get("skip")))
	if err != nil || skip < 0 {
		return 0
	}
	return skip
}

func toStream(link models.PlaybackLink) models.Stream {
	hints := &models.StreamBehaviorHints{
		Filename:  link.Title,
		VideoSize: link.Size,
	}
	if i := strings.IndexByte(hints.Filename, '\n'); i >= 0 {
		hints.Filename = hints.Filename[:i]
	}
	if link.Quality != "" {
		hints.BingeGroup = "boxstream-" + strings.ToLower(link.Quality)
	}
	return models.Stream{
		Name:          link.Name,
		Title:         link.Title,
		URL:           link.URL,
		BehaviorHints: hints,
	}
}

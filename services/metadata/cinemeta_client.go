package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"boxstream/models"
)

const (
	defaultCinemetaURL     = "https://v3-cinemeta.strem.io"
	defaultCinemetaTimeout = 5 * time.Second
)

var reYearDigits = regexp.MustCompile(`\d{4}`)

// Minimal Cinemeta client (catalog search and meta-by-id endpoints)

// CinemetaClient queries the Cinemeta catalog, whose IDs are IMDb IDs.
type CinemetaClient struct {
	baseURL string
	httpc   *http.Client
}

// NewCinemetaClient creates a client for baseURL. Every request is bounded
// by timeout.
func NewCinemetaClient(baseURL string, timeout time.Duration) *CinemetaClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultCinemetaURL
	}
	if timeout <= 0 {
		timeout = defaultCinemetaTimeout
	}
	return &CinemetaClient{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type cinemetaMeta struct {
	ID          string `json:"id"`
	IMDBID      string `json:"imdb_id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Poster      string `json:"poster"`
	Background  string `json:"background"`
	Description string `json:"description"`
	ReleaseInfo any    `json:"releaseInfo"`
	Year        any    `json:"year"`
	IMDBRating  any    `json:"imdbRating"`
}

type cinemetaCatalogResponse struct {
	Metas []cinemetaMeta `json:"metas"`
}

type cinemetaMetaResponse struct {
	Meta *cinemetaMeta `json:"meta"`
}

// Search returns ranked candidates for query within kind.
func (c *CinemetaClient) Search(ctx context.Context, kind models.MediaKind, query string) ([]models.CanonicalRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	endpoint := fmt.Sprintf("%s/catalog/%s/top/search=%s.json", c.baseURL, kind, url.PathEscape(query))

	var resp cinemetaCatalogResponse
	found, err := c.doGET(ctx, endpoint, &resp)
	if err != nil || !found {
		return nil, err
	}

	records := make([]models.CanonicalRecord, 0, len(resp.Metas))
	for _, m := range resp.Metas {
		if rec, ok := m.toRecord(kind); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Meta returns the record for id, or nil when Cinemeta does not know it.
func (c *CinemetaClient) Meta(ctx context.Context, kind models.MediaKind, id string) (*models.CanonicalRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	endpoint := fmt.Sprintf("%s/meta/%s/%s.json", c.baseURL, kind, url.PathEscape(id))

	var resp cinemetaMetaResponse
	found, err := c.doGET(ctx, endpoint, &resp)
	if err != nil || !found || resp.Meta == nil {
		return nil, err
	}
	rec, ok := resp.Meta.toRecord(kind)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// doGET decodes a JSON body into v. A 404 is reported as found=false.
func (c *CinemetaClient) doGET(ctx context.Context, endpoint string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build cinemeta request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Printf("[cinemeta] GET %s", endpoint)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return false, fmt.Errorf("cinemeta get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return false, fmt.Errorf("cinemeta get %s failed: %s: %s", endpoint, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decode cinemeta response: %w", err)
	}
	return true, nil
}

func (m cinemetaMeta) toRecord(kind models.MediaKind) (models.CanonicalRecord, bool) {
	id := strings.TrimSpace(m.IMDBID)
	if id == "" {
		id = strings.TrimSpace(m.ID)
	}
	if id == "" {
		return models.CanonicalRecord{}, false
	}

	recordKind := kind
	if k, ok := models.ParseMediaKind(m.Type); ok {
		recordKind = k
	}

	releaseInfo := cast.ToString(m.ReleaseInfo)
	yearText := cast.ToString(m.Year)
	if releaseInfo == "" {
		releaseInfo = yearText
	}

	return models.CanonicalRecord{
		ID:          id,
		Kind:        recordKind,
		Name:        m.Name,
		Poster:      m.Poster,
		Background:  m.Background,
		Description: m.Description,
		ReleaseInfo: releaseInfo,
		Rating:      cast.ToString(m.IMDBRating),
		Year:        firstYear(yearText, releaseInfo),
	}, true
}

func firstYear(values ...string) int {
	for _, v := range values {
		if match := reYearDigits.FindString(v); match != "" {
			if y, err := strconv.Atoi(match); err == nil {
				return y
			}
		}
	}
	return 0
}

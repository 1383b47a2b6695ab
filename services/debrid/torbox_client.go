package debrid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"boxstream/models"
	"boxstream/utils"
)

const (
	defaultTorboxBaseURL = "https://api.torbox.app/v1/api"
	defaultTorboxTimeout = 30 * time.Second
)

// TorboxClient handles API interactions with Torbox service.
// It implements the Provider interface.
type TorboxClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// Ensure TorboxClient implements Provider interface.
var _ Provider = (*TorboxClient)(nil)

// NewTorboxClient creates a new Torbox API client.
func NewTorboxClient(apiKey string) *TorboxClient {
	return &TorboxClient{
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: defaultTorboxTimeout},
		baseURL:    defaultTorboxBaseURL,
	}
}

// Name returns the provider identifier.
func (c *TorboxClient) Name() string {
	return "torbox"
}

func init() {
	RegisterProvider("torbox", func(apiKey string) Provider {
		return NewTorboxClient(apiKey)
	})
}

// Configure applies "base_url" and "timeout_seconds" overrides.
func (c *TorboxClient) Configure(config map[string]string) {
	if base := strings.TrimRight(strings.TrimSpace(config["base_url"]), "/"); base != "" {
		c.baseURL = base
	}
	if raw := strings.TrimSpace(config["timeout_seconds"]); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			c.httpClient.Timeout = time.Duration(secs) * time.Second
		}
	}
}

// torboxResponse is the generic API response wrapper.
type torboxResponse[T any] struct {
	Success bool            `json:"success"`
	Data    T               `json:"data,omitempty"`
	Detail  string          `json:"detail"`
	Error   json.RawMessage `json:"error,omitempty"` // null, string or object
}

// torboxID accepts both numeric and string identifiers.
type torboxID string

func (id *torboxID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = torboxID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = torboxID(n.String())
	return nil
}

// torboxTorrent represents a torrent in Torbox.
type torboxTorrent struct {
	ID               torboxID        `json:"id"`
	Hash             string          `json:"hash"`
	CreatedAt        json.RawMessage `json:"created_at"`
	UpdatedAt        json.RawMessage `json:"updated_at"`
	Size             int64           `json:"size"`
	Active           bool            `json:"active"`
	DownloadState    string          `json:"download_state"` // cached, completed, downloading, etc.
	Name             string          `json:"name"`
	DownloadFinished bool            `json:"download_finished"`
	Files            []torboxFile    `json:"files"`
}

// torboxFile represents a file within a torrent.
type torboxFile struct {
	ID        torboxID `json:"id"`
	Name      string   `json:"name"`
	Size      int64    `json:"size"`
	MimeType  string   `json:"mimetype"`
	ShortName string   `json:"short_name"`
}

// doRequest performs an authorized GET and returns the body of a 2xx response.
func (c *TorboxClient) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrConfigMissing
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: torbox authentication failed: invalid API key", ErrUpstreamUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %w", ErrUpstreamUnavailable, err)
	}
	return body, nil
}

// ListTorrents returns the full torrent list, forcing a fresh snapshot.
func (c *TorboxClient) ListTorrents(ctx context.Context) ([]models.InventoryEntry, error) {
	endpoint := fmt.Sprintf("%s/torrents/mylist?bypass_cache=true", c.baseURL)

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("list torrents: %w", err)
	}

	var result torboxResponse[[]torboxTorrent]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode mylist response: %w", ErrUpstreamUnavailable, err)
	}

	if !result.Success {
		return nil, fmt.Errorf("%w: list torrents failed: %s", ErrUpstreamUnavailable, result.Detail)
	}

	entries := make([]models.InventoryEntry, 0, len(result.Data))
	for _, torrent := range result.Data {
		if torrent.ID == "" {
			continue
		}
		entries = append(entries, torrent.toEntry())
	}

	log.Printf("[torbox] listed %d torrents", len(entries))
	return entries, nil
}

func (t torboxTorrent) toEntry() models.InventoryEntry {
	entry := models.InventoryEntry{
		ID:        string(t.ID),
		Name:      t.Name,
		Hash:      t.Hash,
		Size:      t.Size,
		CreatedAt: ParseTimestamp(t.CreatedAt),
		UpdatedAt: ParseTimestamp(t.UpdatedAt),
	}
	if len(t.Files) > 0 {
		entry.Files = make([]models.InventoryFile, 0, len(t.Files))
		for _, f := range t.Files {
			name := f.Name
			if name == "" {
				name = f.ShortName
			}
			entry.Files = append(entry.Files, models.InventoryFile{
				ID:   string(f.ID),
				Name: name,
				Size: f.Size,
			})
		}
	}
	return entry
}

// RequestDownloadLink asks Torbox for a temporary download URL.
func (c *TorboxClient) RequestDownloadLink(ctx context.Context, torrentID, fileID string) (string, error) {
	torrentID = strings.TrimSpace(torrentID)
	if torrentID == "" {
		return "", fmt.Errorf("torrent ID is required")
	}

	params := url.Values{}
	params.Set("token", c.apiKey)
	params.Set("torrent_id", torrentID)
	if fileID = strings.TrimSpace(fileID); fileID != "" {
		params.Set("file_id", fileID)
	}
	params.Set("redirect", "false")
	endpoint := fmt.Sprintf("%s/torrents/requestdl?%s", c.baseURL, params.Encode())

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("request download link: %w", err)
	}

	var result torboxResponse[any]
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: decode requestdl response: %w", ErrUpstreamUnavailable, err)
	}

	if !result.Success {
		return "", fmt.Errorf("%w: requestdl failed: %s", ErrUpstreamUnavailable, result.Detail)
	}

	// The data field can be a string (the URL directly) or an object with "link" field
	var downloadURL string
	switch data := result.Data.(type) {
	case string:
		downloadURL = data
	case map[string]any:
		if link, ok := data["link"].(string); ok {
			downloadURL = link
		}
	}

	if downloadURL == "" {
		return "", fmt.Errorf("%w: no download URL returned", ErrUpstreamUnavailable)
	}
	downloadURL, err = utils.NormalizePlaybackURL(downloadURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	log.Printf("[torbox] issued link for torrent %s file %q", torrentID, fileID)
	return downloadURL, nil
}

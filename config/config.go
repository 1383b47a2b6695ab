// Package config loads and saves boxstream settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Host               string `json:"host"`
	Port               int    `json:"port"`
	PublicURL          string `json:"publicUrl"`
	RateLimitPerMinute int    `json:"rateLimitPerMinute"`
	RateLimitBurst     int    `json:"rateLimitBurst"`
}

// TorboxSettings configures the content account.
type TorboxSettings struct {
	APIKey         string `json:"apiKey"`
	BaseURL        string `json:"baseUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	Provider       string `json:"provider"`
}

// MetadataSettings configures the external metadata catalog.
type MetadataSettings struct {
	CinemetaURL    string `json:"cinemetaUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// CatalogSettings configures catalog assembly.
type CatalogSettings struct {
	Limit int `json:"limit"`
}

// StreamSettings configures playback link issuance.
type StreamSettings struct {
	LinkConcurrency int `json:"linkConcurrency"`
}

// WarmupSettings configures background catalog pre-warming.
type WarmupSettings struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"intervalMinutes"`
}

// LoggingSettings configures the process log.
type LoggingSettings struct {
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
	Compress   bool   `json:"compress"`
	Level      string `json:"level"`
}

// Settings is the full settings document.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Torbox   TorboxSettings   `json:"torbox"`
	Metadata MetadataSettings `json:"metadata"`
	Catalog  CatalogSettings  `json:"catalog"`
	Streams  StreamSettings   `json:"streams"`
	Warmup   WarmupSettings   `json:"warmup"`
	Logging  LoggingSettings  `json:"logging"`
}

// Manager reads and writes the settings file.
type Manager struct {
	fs     afero.Fs
	path   string
	getenv func(string) string
	mu     sync.Mutex
}

// NewManager creates a manager for a settings file on the OS filesystem.
func NewManager(path string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), path)
}

// NewManagerWithFs creates a manager over an arbitrary filesystem.
func NewManagerWithFs(fsys afero.Fs, path string) *Manager {
	return &Manager{fs: fsys, path: path, getenv: lookupEnv}
}

// Path returns the settings file path.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the settings file, fills defaults and applies environment
// overrides. A missing file is not an error.
func (m *Manager) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings := DefaultSettings()
	if m.path != "" {
		data, err := afero.ReadFile(m.fs, m.path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Settings{}, fmt.Errorf("read settings %s: %w", m.path, err)
		default:
			if err := json.Unmarshal(data, &settings); err != nil {
				return Settings{}, fmt.Errorf("parse settings %s: %w", m.path, err)
			}
		}
	}

	applyDefaults(&settings)
	applyEnv(&settings, m.getenv)
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Save writes settings to a temp file and renames it over the settings file.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.path == "" {
		return errors.New("save settings: no settings path configured")
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := m.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := afero.WriteFile(m.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := m.fs.Rename(tmp, m.path); err != nil {
		_ = m.fs.Remove(tmp)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultPort            = 7000
	DefaultTorboxURL       = "https://api.torbox.app/v1/api"
	DefaultCinemetaURL     = "https://v3-cinemeta.strem.io"
	DefaultProvider        = "torbox"
	DefaultCatalogLimit    = 20
	DefaultLinkConcurrency = 4
)

// DefaultSettings returns settings with every default filled in.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host:               "0.0.0.0",
			Port:               DefaultPort,
			RateLimitPerMinute: 120,
			RateLimitBurst:     30,
		},
		Torbox: TorboxSettings{
			BaseURL:        DefaultTorboxURL,
			TimeoutSeconds: 30,
			Provider:       DefaultProvider,
		},
		Metadata: MetadataSettings{
			CinemetaURL:    DefaultCinemetaURL,
			TimeoutSeconds: 5,
		},
		Catalog: CatalogSettings{Limit: DefaultCatalogLimit},
		Streams: StreamSettings{LinkConcurrency: DefaultLinkConcurrency},
		Warmup:  WarmupSettings{IntervalMinutes: 30},
		Logging: LoggingSettings{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
			Level:      "info",
		},
	}
}

// applyDefaults fills zero values left by a partial settings file.
func applyDefaults(s *Settings) {
	d := DefaultSettings()
	if s.Server.Host == "" {
		s.Server.Host = d.Server.Host
	}
	if s.Server.Port == 0 {
		s.Server.Port = d.Server.Port
	}
	if s.Server.RateLimitPerMinute == 0 {
		s.Server.RateLimitPerMinute = d.Server.RateLimitPerMinute
	}
	if s.Server.RateLimitBurst == 0 {
		s.Server.RateLimitBurst = d.Server.RateLimitBurst
	}
	if s.Torbox.BaseURL == "" {
		s.Torbox.BaseURL = d.Torbox.BaseURL
	}
	if s.Torbox.TimeoutSeconds <= 0 {
		s.Torbox.TimeoutSeconds = d.Torbox.TimeoutSeconds
	}
	if s.Torbox.Provider == "" {
		s.Torbox.Provider = d.Torbox.Provider
	}
	if s.Metadata.CinemetaURL == "" {
		s.Metadata.CinemetaURL = d.Metadata.CinemetaURL
	}
	if s.Metadata.TimeoutSeconds <= 0 {
		s.Metadata.TimeoutSeconds = d.Metadata.TimeoutSeconds
	}
	if s.Catalog.Limit <= 0 {
		s.Catalog.Limit = d.Catalog.Limit
	}
	if s.Streams.LinkConcurrency <= 0 {
		s.Streams.LinkConcurrency = d.Streams.LinkConcurrency
	}
	if s.Warmup.IntervalMinutes <= 0 {
		s.Warmup.IntervalMinutes = d.Warmup.IntervalMinutes
	}
	if s.Logging.Level == "" {
		s.Logging.Level = d.Logging.Level
	}
}

func lookupEnv(key string) string {
	return os.Getenv(key)
}

// applyEnv overlays environment variables on top of file settings.
func applyEnv(s *Settings, getenv func(string) string) {
	if v := strings.TrimSpace(getenv("TORBOX_API_KEY")); v != "" {
		s.Torbox.APIKey = v
	}
	if v := strings.TrimSpace(getenv("TORBOX_BASE_URL")); v != "" {
		s.Torbox.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("CINEMETA_URL")); v != "" {
		s.Metadata.CinemetaURL = v
	}
	if v := strings.TrimSpace(getenv("BOXSTREAM_HOST")); v != "" {
		s.Server.Host = v
	}
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			s.Server.Port = port
		}
	}
	if v := strings.TrimSpace(getenv("BOXSTREAM_PUBLIC_URL")); v != "" {
		s.Server.PublicURL = v
	}
	if v := strings.TrimSpace(getenv("BOXSTREAM_LOG_FILE")); v != "" {
		s.Logging.File = v
	}
	if v := strings.TrimSpace(getenv("BOXSTREAM_LOG_LEVEL")); v != "" {
		s.Logging.Level = v
	}
}

// Validate reports settings that cannot work.
func (s Settings) Validate() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", s.Server.Port)
	}
	if s.Catalog.Limit > DefaultCatalogLimit {
		return fmt.Errorf("invalid catalog.limit %d (max %d)", s.Catalog.Limit, DefaultCatalogLimit)
	}
	switch strings.ToLower(s.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", s.Logging.Level)
	}
	return nil
}

// Addr returns the listen address.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

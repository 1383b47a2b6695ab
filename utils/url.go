package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// EncodeURLWithSpaces re-encodes a URL whose path or query carries raw spaces.
// Torbox occasionally returns CDN links built from unescaped file names.
func EncodeURLWithSpaces(rawURL string) (string, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	encoded := parsedURL.Scheme + "://" + parsedURL.Host + parsedURL.EscapedPath()
	if parsedURL.RawQuery != "" {
		encoded += "?" + strings.ReplaceAll(parsedURL.RawQuery, " ", "%20")
	}
	return encoded, nil
}

// NormalizePlaybackURL accepts only absolute http(s) URLs and returns them
// with spaces encoded.
func NormalizePlaybackURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse playback url: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported playback url scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("playback url %q has no host", rawURL)
	}
	if !strings.Contains(rawURL, " ") {
		return rawURL, nil
	}
	return EncodeURLWithSpaces(rawURL)
}

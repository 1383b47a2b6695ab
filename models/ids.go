package models

import (
	"regexp"
	"strconv"
	"strings"
)

// FallbackPrefix marks canonical IDs synthesized from an inventory entry ID
// when the metadata catalog has no match.
const FallbackPrefix = "torbox:"

var reAuthoritativeID = regexp.MustCompile(`^tt\d+$`)

// IDShape classifies a canonical ID.
type IDShape int

const (
	IDUnknown IDShape = iota
	IDFallback
	IDAuthoritative
)

// CanonicalRef is a parsed canonical ID. Series episode IDs carry a
// ":season:episode" suffix on either shape.
type CanonicalRef struct {
	Shape   IDShape
	BaseID  string // tt1234567 or torbox:<entryID>
	EntryID string // fallback IDs only
	Season  int
	Episode int
}

// FallbackID returns the fallback canonical ID for an inventory entry.
func FallbackID(entryID string) string {
	return FallbackPrefix + entryID
}

// ParseCanonicalID splits id into its shape, base ID and optional
// season/episode suffix. Unrecognised IDs get IDUnknown.
func ParseCanonicalID(id string) CanonicalRef {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, FallbackPrefix) {
		rest := strings.TrimPrefix(id, FallbackPrefix)
		entryID, season, episode := splitEpisodeSuffix(rest)
		if entryID == "" {
			return CanonicalRef{}
		}
		return CanonicalRef{
			Shape:   IDFallback,
			BaseID:  FallbackID(entryID),
			EntryID: entryID,
			Season:  season,
			Episode: episode,
		}
	}

	base, season, episode := splitEpisodeSuffix(id)
	if !reAuthoritativeID.MatchString(base) {
		return CanonicalRef{}
	}
	return CanonicalRef{Shape: IDAuthoritative, BaseID: base, Season: season, Episode: episode}
}

// IsFallbackID reports whether id has the fallback shape.
func IsFallbackID(id string) bool {
	return ParseCanonicalID(id).Shape == IDFallback
}

func splitEpisodeSuffix(id string) (string, int, int) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 {
		return id, 0, 0
	}
	season, err1 := strconv.Atoi(parts[1])
	episode, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return id, 0, 0
	}
	return parts[0], season, episode
}

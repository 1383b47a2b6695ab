package models

// MediaKind is the content family of a title.
type MediaKind string

const (
	MediaKindMovie  MediaKind = "movie"
	MediaKindSeries MediaKind = "series"
)

// ParseMediaKind maps a host-client type string to a MediaKind.
func ParseMediaKind(value string) (MediaKind, bool) {
	switch MediaKind(value) {
	case MediaKindMovie:
		return MediaKindMovie, true
	case MediaKindSeries:
		return MediaKindSeries, true
	default:
		return "", false
	}
}

// Descriptor is the structured result of parsing a release name.
// Zero values mean "not detected".
type Descriptor struct {
	Title   string    `json:"title"`
	Year    int       `json:"year,omitempty"`
	Season  int       `json:"season,omitempty"`
	Episode int       `json:"episode,omitempty"`
	Quality string    `json:"quality,omitempty"`
	Kind    MediaKind `json:"kind"`
}

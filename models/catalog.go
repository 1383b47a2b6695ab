package models

// CanonicalRecord is a title record from the external metadata catalog.
type CanonicalRecord struct {
	ID          string    `json:"id"`
	Kind        MediaKind `json:"type"`
	Name        string    `json:"name"`
	Poster      string    `json:"poster,omitempty"`
	Background  string    `json:"background,omitempty"`
	Description string    `json:"description,omitempty"`
	ReleaseInfo string    `json:"releaseInfo,omitempty"`
	Rating      string    `json:"imdbRating,omitempty"`
	Year        int       `json:"-"`
}

// CatalogEntry is one canonical media entry of a catalog listing.
// The Source* and Quality fields are back-pointers for stream resolution
// and are not serialised to the host client.
type CatalogEntry struct {
	ID          string    `json:"id"`
	Type        MediaKind `json:"type"`
	Name        string    `json:"name"`
	Poster      string    `json:"poster,omitempty"`
	Background  string    `json:"background,omitempty"`
	Description string    `json:"description,omitempty"`
	ReleaseInfo string    `json:"releaseInfo,omitempty"`
	IMDBRating  string    `json:"imdbRating,omitempty"`

	SourceInventoryID string `json:"-"`
	SourceName        string `json:"-"`
	Quality           string `json:"-"`
}

package models

// Manifest describes the addon to the host client.
type Manifest struct {
	ID          string            `json:"id"`
	Version     string            `json:"version"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Resources   []string          `json:"resources"`
	Types       []string          `json:"types"`
	Catalogs    []ManifestCatalog `json:"catalogs"`
	IDPrefixes  []string          `json:"idPrefixes"`
}

// CatalogExtra is an optional catalog argument such as "skip".
type CatalogExtra struct {
	Name       string `json:"name"`
	IsRequired bool   `json:"isRequired,omitempty"`
}

// ManifestCatalog declares one catalog.
type ManifestCatalog struct {
	Type  string         `json:"type"`
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Extra []CatalogExtra `json:"extra,omitempty"`
}

// CatalogResponse wraps a catalog listing.
type CatalogResponse struct {
	Metas []CatalogEntry `json:"metas"`
}

// MetaVideo is one episode of a series meta.
type MetaVideo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Season   int    `json:"season,omitempty"`
	Episode  int    `json:"episode,omitempty"`
	Released string `json:"released,omitempty"`
}

// Meta is the detail record for one canonical entry.
type Meta struct {
	ID          string      `json:"id"`
	Type        MediaKind   `json:"type"`
	Name        string      `json:"name"`
	Poster      string      `json:"poster,omitempty"`
	Background  string      `json:"background,omitempty"`
	Description string      `json:"description,omitempty"`
	ReleaseInfo string      `json:"releaseInfo,omitempty"`
	IMDBRating  string      `json:"imdbRating,omitempty"`
	Videos      []MetaVideo `json:"videos,omitempty"`
}

// MetaResponse wraps a meta record; Meta is nil when nothing was found.
type MetaResponse struct {
	Meta *Meta `json:"meta"`
}

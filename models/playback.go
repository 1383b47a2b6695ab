package models

// PlaybackLink is an ephemeral playback URL issued for one file (or one
// single-file entry) of the content account.
type PlaybackLink struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	InventoryID string `json:"-"`
	FileID      string `json:"-"`
	Quality     string `json:"-"`
	Size        int64  `json:"-"`
}

// StreamBehaviorHints carries player hints for a stream.
type StreamBehaviorHints struct {
	NotWebReady bool   `json:"notWebReady,omitempty"`
	BingeGroup  string `json:"bingeGroup,omitempty"`
	Filename    string `json:"filename,omitempty"`
	VideoSize   int64  `json:"videoSize,omitempty"`
}

// Stream is the host-client wire form of a PlaybackLink.
type Stream struct {
	Name          string               `json:"name"`
	Title         string               `json:"title"`
	URL           string               `json:"url"`
	BehaviorHints *StreamBehaviorHints `json:"behaviorHints,omitempty"`
}

// StreamResponse wraps a stream listing.
type StreamResponse struct {
	Streams []Stream `json:"streams"`
}

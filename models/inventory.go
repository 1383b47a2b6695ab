package models

import "time"

// InventoryFile is one file inside a content-account torrent.
type InventoryFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
}

// InventoryEntry mirrors one torrent held by the content account.
// CanonicalID and Descriptor are annotations added after a successful
// metadata resolution; an empty CanonicalID means the entry is unannotated.
type InventoryEntry struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Hash      string          `json:"hash,omitempty"`
	Size      int64           `json:"size"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
	Files     []InventoryFile `json:"files,omitempty"`

	CanonicalID string      `json:"canonicalId,omitempty"`
	Descriptor  *Descriptor `json:"descriptor,omitempty"`
}

// Annotated reports whether the entry has been bound to a canonical ID.
func (e InventoryEntry) Annotated() bool {
	return e.CanonicalID != ""
}

// RecencyTime returns UpdatedAt, then CreatedAt, then the zero Unix epoch.
func (e InventoryEntry) RecencyTime() time.Time {
	if e.UpdatedAt != nil {
		return *e.UpdatedAt
	}
	if e.CreatedAt != nil {
		return *e.CreatedAt
	}
	return time.Unix(0, 0).UTC()
}

// Clone returns a copy that shares no mutable state with e.
func (e InventoryEntry) Clone() InventoryEntry {
	out := e
	if e.Files != nil {
		out.Files = append([]InventoryFile(nil), e.Files...)
	}
	if e.Descriptor != nil {
		d := *e.Descriptor
		out.Descriptor = &d
	}
	return out
}

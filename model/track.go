package model

import "time"

// TrackSource tells where a track came from.
type TrackSource string

const (
	SourceBuiltin  TrackSource = "builtin"
	SourceImported TrackSource = "imported"
)

// Track is a playable audio reference.
type Track struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Artist     string      `json:"artist"`
	SourceURL  string      `json:"url"`
	CoverURL   string      `json:"cover"`
	Source     TrackSource `json:"source"`
	ObjectKey  string      `json:"-"` // Blob key for imported tracks, not exposed in API
	ImportedAt time.Time   `json:"importedAt,omitempty"`
}

// Ref returns the reference an alarm stores for this track.
func (t Track) Ref() TrackRef {
	return TrackRef{ID: t.ID, Title: t.Title, URL: t.SourceURL}
}

// ReadOnly reports whether the track is part of the built-in catalog.
func (t Track) ReadOnly() bool {
	return t.Source == SourceBuiltin
}

package models

import (
	"fmt"
	"strings"
)

// Track is a single song as presented to the player.
type Track struct {
	ID         string  `json:"id"`
	URI        string  `json:"uri"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Duration   int     `json:"duration"` // seconds
	ArtURL     string  `json:"art_url"`
	PreviewURL *string `json:"preview_url,omitempty"`
	Demo       bool    `json:"demo"`
}

// HasPreview reports whether the track carries a non-empty preview clip URL.
func (t Track) HasPreview() bool {
	return t.PreviewURL != nil && *t.PreviewURL != ""
}

// Preview returns the preview URL or the empty string.
func (t Track) Preview() string {
	if t.PreviewURL == nil {
		return ""
	}
	return *t.PreviewURL
}

// Playable reports whether the track can make any sound for a listener with or without full access.
func (t Track) Playable(authenticated bool) bool {
	if authenticated && !t.Demo {
		return true
	}
	return t.HasPreview()
}

// String renders "Artist - Title".
func (t Track) String() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// Matches reports whether query is a case-insensitive substring of the title or artist.
func (t Track) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) || strings.Contains(strings.ToLower(t.Artist), q)
}

// Playlist is a user playlist summary.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TrackCount int    `json:"track_count"`
	Owner      string `json:"owner"`
	ArtURL     string `json:"art_url"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Package models defines the catalog entities shared by the catalog client, the player and the views.
//
//   - [Track] : a playable song, either a catalog result or a local sample
//   - [Playlist] : a read-only projection of a user's playlist
//
// Both are immutable values once built. [Track.PreviewURL] is an explicit optional: a nil pointer
// means the catalog offered no 30-second clip for that track.
package models

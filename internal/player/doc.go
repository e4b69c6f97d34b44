// Package player owns the single live playback session.
//
// # Paths
//
// The [Engine] plays a queue entry on one of two paths. The preview path decodes the track's
// 30 second mp3 clip locally through an [AudioSource] (gopxl/beep by default). The full path asks a
// Spotify Connect device to play the track via [services.Remote]; it is taken only when a credential
// exists, a device is registered and the track is not a demo entry. A failed remote play falls back
// to the preview path for the same track.
//
// # Invariants
//
// At most one audio source sounds at any time: the previous source is stopped and its listeners
// detached before the next one is opened. Every session carries a generation number, and signals
// (time updates, end of track, remote state) tagged with an older generation are dropped.
//
// Position and duration are reported in milliseconds on both paths, so renderers never need to
// know which path is active.
package player

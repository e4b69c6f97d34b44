// Package services talks to the Spotify Web API and layers the hybrid catalog on top of it.
//
// # Spotify Client
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2 and maps its responses onto [models.Track]
// and [models.Playlist]. It implements both [API] (catalog and playlist endpoints) and [Remote]
// (Spotify Connect transport used for full-track playback).
//
// Requests go through [NewHTTPClient], which injects the bearer token from an [oauth2.TokenSource],
// paces calls with a [rate.Limiter], and turns a 401 into [shared.ErrTokenExpired].
//
// # Catalog
//
// [Catalog] decides per call whether to use the network. With a credential, search hits the Web
// API; without one it answers from local samples and never fails. Playlist operations need a
// credential and have no local fallback. Any 401 purges the stored credential and surfaces as
// [shared.ErrLoginRequired].
package services

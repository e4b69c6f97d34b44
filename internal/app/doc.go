// Package app routes user intents through the auth gate to the catalog and the playback engine.
//
// [Controller] is the only place that decides which notice a failure becomes. [New] wires the
// token store, login flow, Spotify client, catalog, Connect poller and engine from a [shared.Config].
package app

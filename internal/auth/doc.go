// Package auth owns the Spotify credential and the rules for who may use it.
//
// # Token Store
//
// [Store] is the single owner of the bearer credential. [Store.Restore] runs once at startup and
// checks, in order, a token waiting in the login [Handoff] (fresh from the OAuth callback) and the
// persisted token. A handed-off token is persisted and scrubbed from the handoff so it is never
// read twice. Every other component reads the credential through [Store.Snapshot],
// [Store.Authenticated] or the [oauth2.TokenSource] implementation.
//
// # Auth Gate
//
// [Gate.Ensure] guards features that need an account. Authenticated callers pass straight through.
// Anonymous callers get a [Prompter] dialog; choosing to log in starts the authorization redirect
// via an [Authorizer], and the triggering action is abandoned either way.
//
// # Login
//
// [LoginFlow] runs the authorization code flow with PKCE against a temporary callback server
// and delivers the resulting token to the [Handoff].
package auth

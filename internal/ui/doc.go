// Package ui implements the interactive player using bubbletea's Elm architecture.
//
// A single [Model] shows:
//  1. a status header naming the access tier
//  2. the current list: featured tracks, search results, a playlist or the user's playlists
//  3. the now-playing line with a clickable progress bar, clock and volume
//  4. a notice line that clears itself after a few seconds
//
// User intents go to the [app.Controller] from tea commands so network calls never block rendering.
// Player state arrives as [player.Update] values read from the engine's channel, and login prompts raised
// by the gate arrive through the [Prompter], which the model answers from its y/n dialog.
//
// Keyboard bindings follow vim conventions for movement (j/k) plus single-key transport controls; the
// full list is shown via charmbracelet/bubbles/help.
package ui

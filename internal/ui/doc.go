// Package ui implements an interactive terminal player using bubbletea's Elm architecture.
//
// The TUI provides a two-level library browser with a persistent transport bar:
//  1. [PlaylistView] : Browse presets, user playlists, liked tracks and local files
//  2. [TrackView] : Browse a collection's tracks and start playback
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via tea.Msg.
// Playback state flows in from the player session's event channel, re-armed after every delivery, plus a one-second tick for the position readout.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with transport controls (space, n, b, s, r, +/-) and contextual help via charmbracelet/bubbles/help.
package ui

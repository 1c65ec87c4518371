// Package models defines the data records shared across the playback core.
//
// Two categories of types live here:
//
// 1. Playable shapes: [Track] is the unified form consumed by the queue and
// both playback sources; [LocalFile] carries the extra payload metadata for
// imported audio and converts into a Track for playback.
//
// 2. Persisted records: [Playlist] and [PlaylistTrack] model user and preset
// playlists with add-time snapshots rather than live track references.
//
// Rotator state has its own record types in internal/rotator since it is
// owned exclusively by that package.
package models

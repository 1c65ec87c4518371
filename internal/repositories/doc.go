// Package repositories implements SQLite persistence for every record the
// player keeps across restarts.
//
// Key Implementations:
//   - [RotatorStore] : the rotator.Store backing the API key pool; the whole
//     state (keys, active index, usage, last reset) is rewritten in one
//     transaction per save
//   - [PlaylistRepository] : user playlists and preset track overrides with
//     ordered add-time track snapshots
//   - [HistoryRepository] : the recently-played list, most-recent-first,
//     trimmed to its cap on every write
//   - [LikedRepository] : liked track snapshots
//   - [LocalFileRepository] : metadata rows for imported audio files
//
// Malformed rows are skipped with a warning during loads rather than failing
// the whole read; writes run in transactions so a failed write never leaves a
// partial record behind.
package repositories

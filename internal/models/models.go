package models

import (
	"strings"
	"time"
)

// Track is the unified shape for anything the player can load, whether it
// came from a remote search, a playlist snapshot, or a local file import.
type Track struct {
	ID          string
	Title       string
	Artist      string
	Thumbnail   string
	Description string

	// Local tracks additionally carry the payload reference and file
	// metadata; these fields are zero for remote tracks.
	Local     bool
	FilePath  string
	MIMEType  string
	SizeBytes int64
}

// Valid reports whether the track carries the fields every consumer relies
// on. Items from the remote API that fail this check are dropped.
func (t Track) Valid() bool {
	return strings.TrimSpace(t.ID) != "" && strings.TrimSpace(t.Title) != ""
}

// PlaylistTrack is a snapshot of a track taken at add-time. Playlists hold
// copies, not live references, so upstream title changes never alter them.
type PlaylistTrack struct {
	TrackID   string
	Title     string
	Artist    string
	Thumbnail string
	AddedAt   time.Time
}

// Snapshot copies the display fields of a track into a playlist membership
// record stamped with the current time.
func Snapshot(t Track, now time.Time) PlaylistTrack {
	return PlaylistTrack{
		TrackID:   t.ID,
		Title:     t.Title,
		Artist:    t.Artist,
		Thumbnail: t.Thumbnail,
		AddedAt:   now,
	}
}

// Track converts a snapshot back into a playable Track.
func (pt PlaylistTrack) Track() Track {
	return Track{
		ID:        pt.TrackID,
		Title:     pt.Title,
		Artist:    pt.Artist,
		Thumbnail: pt.Thumbnail,
	}
}

// Playlist is an ordered sequence of track snapshots. Preset playlists are
// seeded in code, cannot be deleted or renamed, and only their accumulated
// tracks are persisted.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Preset      bool
	Tracks      []PlaylistTrack
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// SuggestedSongs holds the seed search queries for preset playlists.
	// Never persisted.
	SuggestedSongs []string
}

// Contains reports whether the playlist already holds a snapshot of the
// given track ID.
func (p *Playlist) Contains(trackID string) bool {
	for _, t := range p.Tracks {
		if t.TrackID == trackID {
			return true
		}
	}
	return false
}

// LocalFile is the metadata record for an imported audio file. The payload
// itself lives on disk at Path under the library directory.
type LocalFile struct {
	ID        string
	Title     string
	Artist    string
	FileName  string
	MIMEType  string
	SizeBytes int64
	Path      string
	AddedAt   time.Time
}

// Track converts a local file record into a playable Track.
func (f LocalFile) Track() Track {
	return Track{
		ID:        f.ID,
		Title:     f.Title,
		Artist:    f.Artist,
		Local:     true,
		FilePath:  f.Path,
		MIMEType:  f.MIMEType,
		SizeBytes: f.SizeBytes,
	}
}

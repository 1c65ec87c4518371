package library

import (
	"context"

	"github.com/Batman1190/Spirify/internal/models"
)

// RecordPlay adds a track to the front of the recently played list. It
// satisfies the player session's history interface.
func (s *Service) RecordPlay(_ context.Context, track models.Track) error {
	return s.history.Record(track, s.now())
}

// RecentlyPlayed returns the recently played tracks, newest first.
func (s *Service) RecentlyPlayed() ([]models.Track, error) {
	return s.history.List()
}

// ToggleLiked flips the liked status of a track and reports the new status.
func (s *Service) ToggleLiked(track models.Track) (bool, error) {
	return s.liked.Toggle(track, s.now())
}

// IsLiked reports whether a track is in the liked set.
func (s *Service) IsLiked(trackID string) (bool, error) {
	return s.liked.IsLiked(trackID)
}

// LikedTracks returns the liked tracks, most recently liked first.
func (s *Service) LikedTracks() ([]models.Track, error) {
	return s.liked.List()
}

// Package library manages the user's collection: playlists and their preset
// seeds, the recently played list, liked tracks, and imported local files.
package library

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/repositories"
	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// seedConcurrency bounds how many suggested-song searches run at once. The
// gateway's own pacing still applies underneath.
const seedConcurrency = 3

// Searcher finds remote tracks for seed queries.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.Track, error)
}

// Service is the library facade over the persistence layer.
type Service struct {
	playlists *repositories.PlaylistRepository
	history   *repositories.HistoryRepository
	liked     *repositories.LikedRepository
	files     *repositories.LocalFileRepository
	search    Searcher
	dir       string
	logger    *log.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator injects the ID source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// Deps carries the service's collaborators.
type Deps struct {
	Playlists *repositories.PlaylistRepository
	History   *repositories.HistoryRepository
	Liked     *repositories.LikedRepository
	Files     *repositories.LocalFileRepository
	Search    Searcher
	Dir       string
	Logger    *log.Logger
}

func NewService(deps Deps, opts ...Option) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	s := &Service{
		playlists: deps.Playlists,
		history:   deps.History,
		liked:     deps.Liked,
		files:     deps.Files,
		search:    deps.Search,
		dir:       deps.Dir,
		logger:    logger,
		now:       time.Now,
		newID:     shared.GenerateID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Playlists returns presets first in their fixed order, then user playlists
// oldest first. Preset rows only contribute accumulated tracks; name,
// description and seed queries always come from the definitions.
func (s *Service) Playlists() ([]*models.Playlist, error) {
	stored, err := s.playlists.List()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Playlist, len(stored))
	for _, p := range stored {
		byID[p.ID] = p
	}

	out := make([]*models.Playlist, 0, len(stored)+presetCount)
	for _, def := range presetPlaylists() {
		if row, ok := byID[def.ID]; ok {
			def.Tracks = row.Tracks
			def.CreatedAt = row.CreatedAt
			def.UpdatedAt = row.UpdatedAt
		}
		out = append(out, def)
	}
	for _, p := range stored {
		if !p.Preset {
			out = append(out, p)
		}
	}
	return out, nil
}

// Playlist looks up one playlist by ID, preset or user-created.
func (s *Service) Playlist(id string) (*models.Playlist, error) {
	if def := presetByID(id); def != nil {
		row, err := s.playlists.Get(id)
		if err == nil {
			def.Tracks = row.Tracks
			def.CreatedAt = row.CreatedAt
			def.UpdatedAt = row.UpdatedAt
		} else if !errors.Is(err, shared.ErrPlaylistNotFound) {
			return nil, err
		}
		return def, nil
	}
	return s.playlists.Get(id)
}

// CreatePlaylist makes a new user playlist with a generated ID.
func (s *Service) CreatePlaylist(name, description string) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrInvalidInput
	}

	now := s.now()
	p := &models.Playlist{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.playlists.Save(p); err != nil {
		return nil, err
	}
	s.logger.Info("created playlist", "id", p.ID, "name", p.Name)
	return p, nil
}

// RenamePlaylist updates a user playlist's name. Presets keep theirs.
func (s *Service) RenamePlaylist(id, name string) error {
	if presetByID(id) != nil {
		return shared.ErrPresetLocked
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrInvalidInput
	}

	p, err := s.playlists.Get(id)
	if err != nil {
		return err
	}
	p.Name = name
	p.UpdatedAt = s.now()
	return s.playlists.Save(p)
}

// DeletePlaylist removes a user playlist. Presets cannot be deleted.
func (s *Service) DeletePlaylist(id string) error {
	if presetByID(id) != nil {
		return shared.ErrPresetLocked
	}
	return s.playlists.Delete(id)
}

// AddTrack appends a snapshot of the track unless one with the same ID is
// already present. Presets accept track adds.
func (s *Service) AddTrack(playlistID string, track models.Track) error {
	if !track.Valid() {
		return shared.ErrInvalidInput
	}

	p, err := s.Playlist(playlistID)
	if err != nil {
		return err
	}
	if p.Contains(track.ID) {
		return nil
	}

	now := s.now()
	p.Tracks = append(p.Tracks, models.Snapshot(track, now))
	p.UpdatedAt = now
	return s.playlists.Save(p)
}

// RemoveTrack drops a track snapshot from the playlist.
func (s *Service) RemoveTrack(playlistID, trackID string) error {
	p, err := s.Playlist(playlistID)
	if err != nil {
		return err
	}

	kept := p.Tracks[:0]
	for _, t := range p.Tracks {
		if t.TrackID != trackID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(p.Tracks) {
		return shared.ErrTrackNotFound
	}
	p.Tracks = kept
	p.UpdatedAt = s.now()
	return s.playlists.Save(p)
}

// SeedPlaylist searches each of a preset's suggested songs and adds the first
// result when the playlist does not already hold it. Failed searches are
// logged and skipped. Returns how many tracks were added.
func (s *Service) SeedPlaylist(ctx context.Context, id string) (int, error) {
	p, err := s.Playlist(id)
	if err != nil {
		return 0, err
	}
	if !p.Preset || len(p.SuggestedSongs) == 0 {
		return 0, shared.ErrInvalidInput
	}

	var (
		mu    sync.Mutex
		added int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seedConcurrency)

	for _, query := range p.SuggestedSongs {
		g.Go(func() error {
			results, err := s.search.Search(gctx, query, 1)
			if err != nil {
				s.logger.Warn("seed search failed", "query", query, "error", err)
				return nil
			}
			if len(results) == 0 {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if !p.Contains(results[0].ID) {
				p.Tracks = append(p.Tracks, models.Snapshot(results[0], s.now()))
				added++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return added, err
	}

	p.UpdatedAt = s.now()
	if err := s.playlists.Save(p); err != nil {
		return added, err
	}
	s.logger.Info("seeded preset playlist", "id", id, "added", added)
	return added, nil
}

package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/shared"
)

// PlaylistRepository persists playlists with their ordered track snapshots.
//
// User playlists and preset track overrides share the same tables; preset
// rows carry is_preset = 1 and their stored name/description are never read
// back, since preset metadata is fixed in code.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Save upserts a playlist and replaces its track snapshots in one
// transaction.
func (r *PlaylistRepository) Save(p *models.Playlist) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	preset := 0
	if p.Preset {
		preset = 1
	}

	_, err = tx.Exec(`
		INSERT INTO playlists (id, name, description, is_preset, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, p.Description, preset, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert playlist: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to clear playlist tracks: %w", err)
	}

	for i, t := range p.Tracks {
		_, err := tx.Exec(`
			INSERT INTO playlist_tracks (playlist_id, position, track_id, title, artist, thumbnail, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, p.ID, i, t.TrackID, t.Title, t.Artist, t.Thumbnail, t.AddedAt)
		if err != nil {
			return fmt.Errorf("failed to insert playlist track: %w", err)
		}
	}

	return tx.Commit()
}

// Get retrieves a playlist with its tracks by ID.
func (r *PlaylistRepository) Get(id string) (*models.Playlist, error) {
	row := r.db.QueryRow(`
		SELECT id, name, description, is_preset, created_at, updated_at
		FROM playlists
		WHERE id = ?
	`, id)

	p, err := scanPlaylist(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadTracks(p); err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves all playlists with their tracks, user-created first by
// creation time.
func (r *PlaylistRepository) List() ([]*models.Playlist, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, is_preset, created_at, updated_at
		FROM playlists
		ORDER BY is_preset DESC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, p := range playlists {
		if err := r.loadTracks(p); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

// Delete removes a playlist and its tracks.
func (r *PlaylistRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist tracks: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	return tx.Commit()
}

func (r *PlaylistRepository) loadTracks(p *models.Playlist) error {
	rows, err := r.db.Query(`
		SELECT track_id, title, artist, thumbnail, added_at
		FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, p.ID)
	if err != nil {
		return fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.PlaylistTrack
		if err := rows.Scan(&t.TrackID, &t.Title, &t.Artist, &t.Thumbnail, &t.AddedAt); err != nil {
			return fmt.Errorf("failed to scan playlist track: %w", err)
		}
		p.Tracks = append(p.Tracks, t)
	}
	return rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPlaylist(row scannable) (*models.Playlist, error) {
	var (
		p         models.Playlist
		preset    int
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &preset, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Preset = preset == 1
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return &p, nil
}

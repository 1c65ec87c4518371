package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Batman1190/Spirify/internal/models"
)

// HistoryLimit caps the recently-played list.
const HistoryLimit = 20

// HistoryRepository persists the recently-played list, most-recent-first.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record moves the track to the front of the list, deduplicating by track
// ID and trimming everything past the cap.
func (r *HistoryRepository) Record(track models.Track, playedAt time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM history WHERE track_id = ?`, track.ID); err != nil {
		return fmt.Errorf("failed to dedupe history: %w", err)
	}

	if _, err := tx.Exec(`UPDATE history SET position = position + 1`); err != nil {
		return fmt.Errorf("failed to shift history: %w", err)
	}

	local := 0
	if track.Local {
		local = 1
	}
	_, err = tx.Exec(`
		INSERT INTO history (track_id, position, title, artist, thumbnail, is_local, played_at)
		VALUES (?, 0, ?, ?, ?, ?, ?)
	`, track.ID, track.Title, track.Artist, track.Thumbnail, local, playedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM history WHERE position >= ?`, HistoryLimit); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	return tx.Commit()
}

// List returns the recently-played tracks, most recent first.
func (r *HistoryRepository) List() ([]models.Track, error) {
	rows, err := r.db.Query(`
		SELECT track_id, title, artist, thumbnail, is_local
		FROM history
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var (
			t     models.Track
			local int
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.Thumbnail, &local); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		t.Local = local == 1
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// LikedRepository persists liked track snapshots.
type LikedRepository struct {
	db *sql.DB
}

// NewLikedRepository creates a new LikedRepository with the given database connection
func NewLikedRepository(db *sql.DB) *LikedRepository {
	return &LikedRepository{db: db}
}

// IsLiked reports whether the track ID is in the liked set.
func (r *LikedRepository) IsLiked(trackID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM liked_tracks WHERE track_id = ?)`, trackID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check liked track: %w", err)
	}
	return exists, nil
}

// Toggle flips liked membership for the track and reports the new state.
func (r *LikedRepository) Toggle(track models.Track, likedAt time.Time) (bool, error) {
	liked, err := r.IsLiked(track.ID)
	if err != nil {
		return false, err
	}

	if liked {
		if _, err := r.db.Exec(`DELETE FROM liked_tracks WHERE track_id = ?`, track.ID); err != nil {
			return false, fmt.Errorf("failed to unlike track: %w", err)
		}
		return false, nil
	}

	_, err = r.db.Exec(`
		INSERT INTO liked_tracks (track_id, title, artist, thumbnail, liked_at)
		VALUES (?, ?, ?, ?, ?)
	`, track.ID, track.Title, track.Artist, track.Thumbnail, likedAt)
	if err != nil {
		return false, fmt.Errorf("failed to like track: %w", err)
	}
	return true, nil
}

// List returns all liked tracks, most recently liked first.
func (r *LikedRepository) List() ([]models.Track, error) {
	rows, err := r.db.Query(`
		SELECT track_id, title, artist, thumbnail
		FROM liked_tracks
		ORDER BY liked_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.Thumbnail); err != nil {
			return nil, fmt.Errorf("failed to scan liked track: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

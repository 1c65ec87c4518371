package repositories

import (
	"database/sql"
	"fmt"

	"github.com/Batman1190/Spirify/internal/rotator"
)

// RotatorStore persists rotator state in the rotator_state and credentials
// tables. Each Save rewrites the whole record inside a transaction.
type RotatorStore struct {
	db *sql.DB
}

// NewRotatorStore creates a new RotatorStore with the given database connection
func NewRotatorStore(db *sql.DB) *RotatorStore {
	return &RotatorStore{db: db}
}

// Load reads the persisted rotator state. A missing state row yields the
// zero State so a fresh database starts empty rather than erroring.
func (s *RotatorStore) Load() (rotator.State, error) {
	var state rotator.State

	err := s.db.QueryRow(`
		SELECT active_index, quota_limit, last_reset
		FROM rotator_state
		WHERE id = 1
	`).Scan(&state.ActiveIndex, &state.QuotaLimit, &state.LastReset)
	if err == sql.ErrNoRows {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("failed to read rotator state: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT token, usage
		FROM credentials
		ORDER BY position ASC
	`)
	if err != nil {
		return state, fmt.Errorf("failed to read credentials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k rotator.KeyState
		if err := rows.Scan(&k.Token, &k.Usage); err != nil {
			return state, fmt.Errorf("failed to scan credential: %w", err)
		}
		state.Keys = append(state.Keys, k)
	}
	if err := rows.Err(); err != nil {
		return state, fmt.Errorf("row iteration error: %w", err)
	}

	return state, nil
}

// Save rewrites the whole rotator record in one transaction.
func (s *RotatorStore) Save(state rotator.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO rotator_state (id, active_index, quota_limit, last_reset)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			active_index = excluded.active_index,
			quota_limit = excluded.quota_limit,
			last_reset = excluded.last_reset
	`, state.ActiveIndex, state.QuotaLimit, state.LastReset)
	if err != nil {
		return fmt.Errorf("failed to write rotator state: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	for i, k := range state.Keys {
		_, err := tx.Exec(`
			INSERT INTO credentials (token, position, usage)
			VALUES (?, ?, ?)
		`, k.Token, i, k.Usage)
		if err != nil {
			return fmt.Errorf("failed to insert credential: %w", err)
		}
	}

	return tx.Commit()
}

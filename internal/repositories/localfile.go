package repositories

import (
	"database/sql"
	"fmt"

	"github.com/Batman1190/Spirify/internal/models"
)

// LocalFileRepository persists metadata for imported audio files. Payloads
// live on disk under the library directory; only the rows live here.
type LocalFileRepository struct {
	db *sql.DB
}

// NewLocalFileRepository creates a new LocalFileRepository with the given database connection
func NewLocalFileRepository(db *sql.DB) *LocalFileRepository {
	return &LocalFileRepository{db: db}
}

// Create inserts a new local file record.
func (r *LocalFileRepository) Create(f *models.LocalFile) error {
	_, err := r.db.Exec(`
		INSERT INTO local_files (id, title, artist, file_name, mime_type, size_bytes, path, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.Title, f.Artist, f.FileName, f.MIMEType, f.SizeBytes, f.Path, f.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to insert local file: %w", err)
	}
	return nil
}

// Get retrieves a local file record by ID.
func (r *LocalFileRepository) Get(id string) (*models.LocalFile, error) {
	var f models.LocalFile
	err := r.db.QueryRow(`
		SELECT id, title, artist, file_name, mime_type, size_bytes, path, added_at
		FROM local_files
		WHERE id = ?
	`, id).Scan(&f.ID, &f.Title, &f.Artist, &f.FileName, &f.MIMEType, &f.SizeBytes, &f.Path, &f.AddedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("local file not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan local file: %w", err)
	}
	return &f, nil
}

// List retrieves all local file records in import order.
func (r *LocalFileRepository) List() ([]*models.LocalFile, error) {
	rows, err := r.db.Query(`
		SELECT id, title, artist, file_name, mime_type, size_bytes, path, added_at
		FROM local_files
		ORDER BY added_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query local files: %w", err)
	}
	defer rows.Close()

	var files []*models.LocalFile
	for rows.Next() {
		var f models.LocalFile
		if err := rows.Scan(&f.ID, &f.Title, &f.Artist, &f.FileName, &f.MIMEType, &f.SizeBytes, &f.Path, &f.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan local file: %w", err)
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// Delete removes a local file record by ID.
func (r *LocalFileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM local_files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete local file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("local file not found: %s", id)
	}
	return nil
}

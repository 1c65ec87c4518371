package library

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/shared"
)

// ImportFile copies an audio file into the library directory and records its
// metadata. The title is the file name without its extension and the artist
// defaults to "Unknown Artist" until edited.
func (s *Service) ImportFile(src string) (*models.LocalFile, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidInput, src)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStorageWrite, err)
	}

	id := s.newID()
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	dest := id + ext

	if err := copyFile(src, filepath.Join(s.dir, dest)); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStorageWrite, err)
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	f := &models.LocalFile{
		ID:        id,
		Title:     strings.TrimSuffix(base, ext),
		Artist:    "Unknown Artist",
		FileName:  base,
		MIMEType:  mimeType,
		SizeBytes: info.Size(),
		Path:      dest,
		AddedAt:   s.now(),
	}
	if err := s.files.Create(f); err != nil {
		os.Remove(filepath.Join(s.dir, dest))
		return nil, err
	}

	s.logger.Info("imported local file", "id", id, "title", f.Title, "size", f.SizeBytes)
	return f, nil
}

// LocalFiles lists the imported files, newest first.
func (s *Service) LocalFiles() ([]*models.LocalFile, error) {
	return s.files.List()
}

// LocalTracks returns the imported files as playable tracks.
func (s *Service) LocalTracks() ([]models.Track, error) {
	files, err := s.files.List()
	if err != nil {
		return nil, err
	}
	tracks := make([]models.Track, 0, len(files))
	for _, f := range files {
		t := f.Track()
		t.FilePath = filepath.Join(s.dir, f.Path)
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// RemoveFile deletes an imported file's metadata row and its payload.
func (s *Service) RemoveFile(id string) error {
	f, err := s.files.Get(id)
	if err != nil {
		return err
	}
	if err := s.files.Delete(id); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, f.Path)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove payload", "id", id, "error", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

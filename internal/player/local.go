package player

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/shared"
)

// LocalSource plays imported files from the library directory. Files are
// seekable, so duration and Seek work.
type LocalSource struct {
	*source
	dir string
}

func NewLocalSource(dir string, opts ...SourceOption) *LocalSource {
	l := &LocalSource{dir: dir}
	l.source = newSource("local", l.openFile, true, applyOptions(opts))
	return l
}

func (l *LocalSource) openFile(_ context.Context, track models.Track) (io.ReadCloser, error) {
	path := track.FilePath
	if path == "" {
		return nil, fmt.Errorf("%w: track %s has no file path", shared.ErrPlayback, track.ID)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", shared.ErrPlayback, path, err)
	}
	return f, nil
}

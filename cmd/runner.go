package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/Batman1190/Spirify/internal/library"
	"github.com/Batman1190/Spirify/internal/player"
	"github.com/Batman1190/Spirify/internal/queue"
	"github.com/Batman1190/Spirify/internal/repositories"
	"github.com/Batman1190/Spirify/internal/rotator"
	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/Batman1190/Spirify/internal/youtube"
	"github.com/charmbracelet/log"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and everything built on it come up lazily on first use, so
// commands like setup work before any state exists.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer

	db      *sql.DB
	rot     *rotator.Rotator
	gateway *youtube.Gateway
	queries *youtube.QueryBuilder
	lib     *library.Service
	session *player.Session
}

// RunnerOpts contains configuration options for creating a Runner. Tests
// inject pre-built services; production leaves them nil and lets ensure()
// wire everything from config.
type RunnerOpts struct {
	Config  *shared.Config
	Logger  *log.Logger
	Output  io.Writer
	DB      *sql.DB
	Rotator *rotator.Rotator
	Gateway *youtube.Gateway
	Library *library.Service
	Session *player.Session
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		logger:  opts.Logger,
		output:  opts.Output,
		db:      opts.DB,
		rot:     opts.Rotator,
		gateway: opts.Gateway,
		lib:     opts.Library,
		session: opts.Session,
		queries: youtube.NewQueryBuilder(rand.New(rand.NewSource(rand.Int63()))),
	}
}

// ensure opens the database and builds the rotator, gateway and library
// service on first use.
func (r *Runner) ensure() error {
	if r.lib != nil && r.rot != nil && r.gateway != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.db = db
	}

	if r.rot == nil {
		rot, err := rotator.New(repositories.NewRotatorStore(r.db), r.logger,
			rotator.WithQuotaLimit(r.config.YouTube.QuotaLimit))
		if err != nil {
			return fmt.Errorf("failed to initialize key rotator: %w", err)
		}
		for _, key := range r.config.YouTube.APIKeys {
			if err := rot.AddCredential(key); err != nil && !errors.Is(err, shared.ErrDuplicateCredential) {
				r.logger.Warn("skipping configured API key", "error", err)
			}
		}
		r.rot = rot
	}

	if r.gateway == nil {
		r.gateway = youtube.NewGateway(r.rot, youtube.Opts{
			BaseURL: r.config.YouTube.BaseURL,
			Region:  r.config.YouTube.Region,
			Logger:  r.logger,
		})
	}

	if r.lib == nil {
		r.lib = library.NewService(library.Deps{
			Playlists: repositories.NewPlaylistRepository(r.db),
			History:   repositories.NewHistoryRepository(r.db),
			Liked:     repositories.NewLikedRepository(r.db),
			Files:     repositories.NewLocalFileRepository(r.db),
			Search:    r.gateway,
			Dir:       r.config.Library.Path,
			Logger:    r.logger,
		})
	}

	return nil
}

// ensureSession additionally wires the audio pipeline. Kept separate from
// ensure because most commands never touch the speaker.
func (r *Runner) ensureSession() error {
	if err := r.ensure(); err != nil {
		return err
	}
	if r.session != nil {
		return nil
	}

	remote := player.NewRemoteSource(r.config.YouTube.StreamURL, player.WithLogger(r.logger))
	local := player.NewLocalSource(r.config.Library.Path, player.WithLogger(r.logger))
	controller := player.NewController(remote, local, r.logger)
	controller.SetVolume(r.config.Player.Volume)

	r.session = player.NewSession(controller, queue.New(), r.lib, r.logger)
	return nil
}

// Close releases the database handle, if it was ever opened.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// SetLogger swaps the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

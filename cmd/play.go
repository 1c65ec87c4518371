package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/player"
	"github.com/Batman1190/Spirify/internal/queue"
	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play resolves a track list from the flags, starts playback and blocks
// until the queue is stopped with Ctrl-C.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureSession(); err != nil {
		return err
	}

	tracks, title, err := r.resolveTracks(ctx, cmd)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w: nothing to play", shared.ErrTrackNotFound)
	}

	mode, err := parseRepeatMode(cmd.String("repeat"))
	if err != nil {
		return err
	}
	q := r.session.Queue()
	q.SetRepeat(mode)
	if cmd.Bool("shuffle") && !q.Shuffle() {
		q.ToggleShuffle()
	}
	if volume := int(cmd.Int("volume")); volume >= 0 {
		r.session.SetVolume(volume)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go r.printEvents(runCtx)

	r.writePlainHeader(fmt.Sprintf("Playing %s (%d tracks)", title, len(tracks)))
	if err := r.session.Play(runCtx, tracks, 0); err != nil {
		return err
	}

	if err := r.session.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	r.writePlain("Stopped\n")
	return nil
}

// resolveTracks picks the playback source: a playlist, the liked tracks,
// the imported files or a fresh search.
func (r *Runner) resolveTracks(ctx context.Context, cmd *cli.Command) ([]models.Track, string, error) {
	if id := strings.TrimSpace(cmd.String("playlist")); id != "" {
		playlist, err := r.lib.Playlist(id)
		if err != nil {
			return nil, "", err
		}
		tracks := make([]models.Track, 0, len(playlist.Tracks))
		for _, pt := range playlist.Tracks {
			tracks = append(tracks, pt.Track())
		}
		if len(tracks) == 0 && playlist.Preset {
			return nil, "", fmt.Errorf("%w: preset %q is empty, run playlists seed %s first", shared.ErrTrackNotFound, playlist.Name, playlist.ID)
		}
		return tracks, playlist.Name, nil
	}

	if cmd.Bool("liked") {
		tracks, err := r.lib.LikedTracks()
		return tracks, "Liked Songs", err
	}

	if cmd.Bool("local") {
		tracks, err := r.lib.LocalTracks()
		return tracks, "Local Files", err
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return nil, "", fmt.Errorf("%w: query, --playlist, --liked or --local", shared.ErrMissingArgument)
	}
	tracks, err := r.gateway.Search(ctx, r.queries.Build(query), 20)
	return tracks, fmt.Sprintf("results for %q", query), err
}

func parseRepeatMode(s string) (queue.RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return queue.RepeatOff, nil
	case "all":
		return queue.RepeatAll, nil
	case "one":
		return queue.RepeatOne, nil
	default:
		return queue.RepeatOff, fmt.Errorf("%w: repeat mode %q", shared.ErrInvalidInput, s)
	}
}

// printEvents mirrors session state changes onto the terminal while the
// blocking play command runs.
func (r *Runner) printEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.session.Events():
			switch ev.State {
			case player.StatePlaying:
				artist := ev.Track.Artist
				if artist == "" {
					artist = "Unknown Artist"
				}
				r.writePlain("▶ %s • %s\n", ev.Track.Title, artist)
			case player.StatePaused:
				r.writePlain("⏸ Paused\n")
			case player.StateError:
				r.writePlain("✗ %s (%v)\n", ev.Track.Title, ev.Err)
			}
		}
	}
}

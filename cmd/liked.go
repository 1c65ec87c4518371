package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/urfave/cli/v3"
)

// LikedList prints the liked tracks, most recently liked first.
func (r *Runner) LikedList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(); err != nil {
		return err
	}

	tracks, err := r.lib.LikedTracks()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}

	r.writePlainHeader("Liked Songs")
	r.writeTracks(tracks)
	return nil
}

// LikedToggle searches for the query and toggles the top result's liked
// status.
func (r *Runner) LikedToggle(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	tracks, err := r.gateway.Search(ctx, query, 1)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w: no results for %q", shared.ErrTrackNotFound, query)
	}

	liked, err := r.lib.ToggleLiked(tracks[0])
	if err != nil {
		return err
	}
	if liked {
		r.writePlain("♥ Liked %q\n", tracks[0].Title)
	} else {
		r.writePlain("✓ Unliked %q\n", tracks[0].Title)
	}
	return nil
}

// Recent prints the recently played tracks, newest first.
func (r *Runner) Recent(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(); err != nil {
		return err
	}

	tracks, err := r.lib.RecentlyPlayed()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}

	r.writePlainHeader("Recently Played")
	r.writeTracks(tracks)
	return nil
}

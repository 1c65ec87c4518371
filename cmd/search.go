package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search finds music videos for a query, biased toward spiritual music.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	tracks, err := r.gateway.Search(ctx, r.queries.Build(query), int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Results for %q", query))
	r.writeTracks(tracks)
	return nil
}

// Trending shows the most popular music videos for the configured region.
func (r *Runner) Trending(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(); err != nil {
		return err
	}

	tracks, err := r.gateway.Trending(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}

	r.writePlainHeader(fmt.Sprintf("Trending in %s", r.config.YouTube.Region))
	r.writeTracks(tracks)
	return nil
}

func (r *Runner) writeTracks(tracks []models.Track) {
	if len(tracks) == 0 {
		r.writePlain("No tracks found\n")
		return
	}
	for i, t := range tracks {
		artist := t.Artist
		if artist == "" {
			artist = "Unknown Artist"
		}
		r.writePlain("%2d. %s • %s  [%s]\n", i+1, t.Title, artist, t.ID)
	}
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints every playlist, presets first.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(); err != nil {
		return err
	}

	playlists, err := r.lib.Playlists()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	r.writePlainHeader("Playlists")
	for _, p := range playlists {
		kind := ""
		if p.Preset {
			kind = " (preset)"
		}
		r.writePlain("%s%s • %d tracks  [%s]\n", p.Name, kind, len(p.Tracks), p.ID)
	}
	return nil
}

// PlaylistsCreate makes a new user playlist.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(); err != nil {
		return err
	}

	p, err := r.lib.CreatePlaylist(cmd.String("name"), cmd.String("description"))
	if err != nil {
		return err
	}
	r.writePlain("✓ Created %q [%s]\n", p.Name, p.ID)
	return nil
}

// PlaylistsRename renames a user playlist.
func (r *Runner) PlaylistsRename(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	if err := r.lib.RenamePlaylist(id, cmd.String("name")); err != nil {
		return err
	}
	r.writePlain("✓ Renamed playlist %s\n", id)
	return nil
}

// PlaylistsDelete removes a user playlist.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	if err := r.lib.DeletePlaylist(id); err != nil {
		return err
	}
	r.writePlain("✓ Deleted playlist %s\n", id)
	return nil
}

// PlaylistsShow prints one playlist with its tracks.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	p, err := r.lib.Playlist(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(p, true)
	}

	r.writePlainHeader(p.Name)
	if p.Description != "" {
		r.writePlain("%s\n\n", p.Description)
	}
	if len(p.Tracks) == 0 {
		r.writePlain("No tracks yet\n")
		if p.Preset {
			r.writePlain("Seed it with 'spirify playlists seed %s'\n", p.ID)
		}
		return nil
	}
	for i, t := range p.Tracks {
		artist := t.Artist
		if artist == "" {
			artist = "Unknown Artist"
		}
		r.writePlain("%2d. %s • %s  [%s]\n", i+1, t.Title, artist, t.TrackID)
	}
	return nil
}

// PlaylistsAdd searches for the query and adds the top result.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	query := strings.TrimSpace(cmd.StringArg("query"))
	if id == "" || query == "" {
		return fmt.Errorf("%w: id and query", shared.ErrMissingArgument)
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

	if err := r.lib.AddTrack(id, tracks[0]); err != nil {
		return err
	}
	r.writePlain("✓ Added %q to playlist %s\n", tracks[0].Title, id)
	return nil
}

// PlaylistsRemove drops a track from a playlist.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	trackID := strings.TrimSpace(cmd.StringArg("track"))
	if id == "" || trackID == "" {
		return fmt.Errorf("%w: id and track", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	if err := r.lib.RemoveTrack(id, trackID); err != nil {
		return err
	}
	r.writePlain("✓ Removed %s from playlist %s\n", trackID, id)
	return nil
}

// PlaylistsSeed loads a preset's suggested songs via search.
func (r *Runner) PlaylistsSeed(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	if err := r.ensure(); err != nil {
		return err
	}

	r.logger.Info("seeding preset playlist", "id", id)
	added, err := r.lib.SeedPlaylist(ctx, id)
	if err != nil {
		return err
	}
	r.writePlain("✓ Added %d tracks to %s\n", added, id)
	return nil
}

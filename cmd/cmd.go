// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, keysCommand, searchCommand, trendingCommand, playlistsCommand, localCommand, likedCommand, recentCommand, playCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// keysCommand manages the API key pool.
func keysCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "Manage YouTube API keys",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add an API key to the rotation pool",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Action: r.KeysAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove an API key from the rotation pool",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Action: r.KeysRemove,
			},
			{
				Name:  "list",
				Usage: "Show keys with today's usage",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.KeysList,
			},
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search for music videos",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Search,
	}
}

func trendingCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "trending",
		Usage: "Show trending music for the configured region",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Trending,
	}
}

// playlistsCommand handles playlist operations, presets included.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all playlists, presets first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "create",
				Usage: "Create a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "rename",
				Usage: "Rename a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "New playlist name",
						Required: true,
					},
				},
				Action: r.PlaylistsRename,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistsDelete,
			},
			{
				Name:  "show",
				Usage: "Show a playlist's tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PlaylistsShow,
			},
			{
				Name:  "add",
				Usage: "Search and add the top result to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "query"},
				},
				Action: r.PlaylistsAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a track from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "track"},
				},
				Action: r.PlaylistsRemove,
			},
			{
				Name:  "seed",
				Usage: "Load a preset playlist's suggested songs",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistsSeed,
			},
		},
	}
}

// localCommand handles imported audio files.
func localCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "local",
		Usage: "Manage imported audio files",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Copy an audio file into the library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.LocalImport,
			},
			{
				Name:  "list",
				Usage: "List imported files",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LocalList,
			},
			{
				Name:  "remove",
				Usage: "Delete an imported file and its metadata",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LocalRemove,
			},
		},
	}
}

func likedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "liked",
		Usage: "Manage liked tracks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List liked tracks",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LikedList,
			},
			{
				Name:  "toggle",
				Usage: "Search and toggle the top result's liked status",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Action: r.LikedToggle,
			},
		},
	}
}

func recentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Show recently played tracks",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Recent,
	}
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a playlist, liked songs, local files or search results",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Playlist ID to play",
			},
			&cli.BoolFlag{
				Name:  "liked",
				Usage: "Play liked tracks",
			},
			&cli.BoolFlag{
				Name:  "local",
				Usage: "Play imported local files",
			},
			&cli.BoolFlag{
				Name:    "shuffle",
				Aliases: []string{"s"},
				Usage:   "Enable shuffle",
			},
			&cli.StringFlag{
				Name:  "repeat",
				Usage: "Repeat mode: off, all or one",
				Value: "off",
			},
			&cli.IntFlag{
				Name:  "volume",
				Usage: "Playback volume (0-100)",
				Value: -1,
			},
		},
		Action: r.Play,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive terminal player",
		Action: r.TUI,
	}
}

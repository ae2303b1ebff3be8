// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the JustMusik session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and persist the session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create a new account (does not sign in)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (prompted when omitted)",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Clear the persisted session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show session state and token expiry",
				Action: r.AuthStatus,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in user's profile",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.AuthWhoami,
			},
		},
	}
}

// songsCommand handles catalog operations
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "songs",
		Aliases: []string{"catalog"},
		Usage:   "Browse the song catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List songs with local filtering, sorting, and paging",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Filter across title, artist, genre, and album",
					},
					&cli.StringFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Filter by exact genre",
					},
					&cli.StringFlag{
						Name:    "sort",
						Aliases: []string{"s"},
						Usage:   "Sort by title, artist, or genre",
					},
					&cli.IntFlag{
						Name:    "page",
						Aliases: []string{"p"},
						Usage:   "Page to show",
						Value:   1,
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Print every matching song instead of one page",
					},
					&cli.BoolFlag{
						Name:  "cached",
						Usage: "List from the local cache without calling the API",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SongsList,
			},
			{
				Name:      "get",
				Usage:     "Show a single song",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action:    r.SongsGet,
			},
			{
				Name:      "search",
				Usage:     "Search the platform's remote index",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action:    r.SongsSearch,
			},
			{
				Name:      "stream-url",
				Usage:     "Resolve a song's stream URL",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.SongsStreamURL,
			},
			{
				Name:      "download",
				Usage:     "Download a song's audio file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: '{title} - {artist}.mp3')",
					},
				},
				Action: r.SongsDownload,
			},
			{
				Name:  "export",
				Usage: "Export the filtered catalog to csv, markdown, or text",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown, or text",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (base name for csv, directory for markdown)",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Filter across title, artist, genre, and album",
					},
					&cli.StringFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Filter by exact genre",
					},
					&cli.StringFlag{
						Name:    "sort",
						Aliases: []string{"s"},
						Usage:   "Sort by title, artist, or genre",
					},
				},
				Action: r.SongsExport,
			},
		},
	}
}

// favoritesCommand handles the current user's favorites
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"favs"},
		Usage:   "Manage favorite songs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorited songs",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.FavoritesList,
			},
			{
				Name:      "add",
				Usage:     "Mark a song as a favorite",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a song from favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesRemove,
			},
			{
				Name:      "check",
				Usage:     "Check whether a song is favorited",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesCheck,
			},
		},
	}
}

// adminCommand handles song mutations, gated on the admin role
func adminCommand(r *Runner) *cli.Command {
	metaFlags := []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Song title"},
		&cli.StringFlag{Name: "artist", Usage: "Artist name"},
		&cli.StringFlag{Name: "album", Usage: "Album name"},
		&cli.StringFlag{Name: "genre", Usage: "Genre"},
		&cli.IntFlag{Name: "duration", Usage: "Duration in seconds"},
		&cli.StringFlag{Name: "image-url", Usage: "Cover image URL"},
	}

	return &cli.Command{
		Name:  "admin",
		Usage: "Catalog management (requires the admin role)",
		Commands: []*cli.Command{
			{
				Name:  "upload",
				Usage: "Upload a new song",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "audio",
						Aliases:  []string{"a"},
						Usage:    "Path to the audio file",
						Required: true,
					},
				}, metaFlags...),
				Action: r.AdminUpload,
			},
			{
				Name:      "update",
				Usage:     "Update a song's metadata, optionally replacing the audio",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "audio",
						Aliases: []string{"a"},
						Usage:   "Path to a replacement audio file",
					},
				}, metaFlags...),
				Action: r.AdminUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a song from the catalog",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.AdminDelete,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a starter config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Where to write the config file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the local database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalog browser",
		Action:  r.TUI,
	}
}

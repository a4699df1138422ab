// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
	}
}

// backupFlags is shared between the backup command and the root command, so
// a bare `spotback` invocation performs a full backup.
func backupFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory for CSV files",
		},
		&cli.StringFlag{
			Name:  "user",
			Usage: "Spotify user ID (overrides config)",
		},
		&cli.BoolFlag{
			Name:  "features",
			Usage: "Include audio feature columns (tempo, key, energy, ...)",
		},
		&cli.FloatFlag{
			Name:  "rate",
			Usage: "API requests per second",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Skip recording the run in the local database",
		},
	}
}

// backupCommand runs the full export
func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "backup",
		Aliases: []string{"run"},
		Usage:   "Export all playlists of the configured user to CSV files",
		Flags:   backupFlags(),
		Action:  r.Backup,
	}
}

// playlistsCommand lists the user's playlists without exporting
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List the configured user's playlists",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "user",
				Usage: "Spotify user ID (overrides config)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to show",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Playlists,
	}
}

// authCommand handles the OAuth2 authorization-code flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with Spotify to include private playlists",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Auth,
	}
}

// historyCommand lists recorded backup runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past backup runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "files",
				Usage: "Include the files produced by each run",
			},
		},
		Action: r.History,
	}
}

// setupCommand creates the config file and initializes the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file and initialize the history database",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Setup,
	}
}

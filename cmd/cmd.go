// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/moodmusic/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// outputFlags are shared by every command that prints catalog items.
func outputFlags() []cli.Flag {
	formats := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		formats[i] = string(f)
	}
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   fmt.Sprintf("Output format (%s)", strings.Join(formats, ", ")),
			Value:   string(formatter.FormatText),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to a file instead of stdout",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Overwrite the output file if it exists",
		},
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of items (1-50)",
		Value:   10,
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Override server.host",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override server.port",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand manages the config file and database schema
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.Rollback,
			},
		},
	}
}

// searchCommand searches the catalogs with the app token
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search Spotify, falling back to JioSaavn",
		ArgsUsage: "<query>",
		Flags: append(outputFlags(),
			limitFlag(),
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Item type (track, album, playlist, artist)",
				Value:   "track",
			},
		),
		Action: r.Search,
	}
}

// browseCommand prints the discovery sections served by the API
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Print trending songs, featured playlists, artists and recommendations",
		Commands: []*cli.Command{
			{
				Name:   "trending",
				Usage:  "Trending songs",
				Flags:  append(outputFlags(), limitFlag()),
				Action: r.Trending,
			},
			{
				Name:   "playlists",
				Usage:  "Featured playlists, one per genre",
				Flags:  outputFlags(),
				Action: r.FeaturedPlaylists,
			},
			{
				Name:   "artists",
				Usage:  "Popular artists",
				Flags:  outputFlags(),
				Action: r.Artists,
			},
			{
				Name:  "feed",
				Usage: "Trending and regional industry sections",
				Flags: append(outputFlags(),
					limitFlag(),
					&cli.StringFlag{
						Name:  "industry",
						Usage: "Regional industry (bollywood, tollywood, kollywood, ...)",
					},
				),
				Action: r.Feed,
			},
			{
				Name:  "recommend",
				Usage: "Mood-based recommendations for an emotion",
				Flags: append(outputFlags(),
					limitFlag(),
					&cli.StringFlag{
						Name:     "emotion",
						Aliases:  []string{"e"},
						Usage:    "Detected emotion (happy, sad, angry, ...)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "language",
						Aliases: []string{"l"},
						Usage:   "Song language",
						Value:   "english",
					},
					&cli.BoolFlag{
						Name:  "wellbeing",
						Usage: "Prefer uplifting music for negative emotions",
					},
				),
				Action: r.Recommend,
			},
		},
	}
}

// checkCommand reports which providers are usable
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify provider credentials and reachability",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Check,
	}
}

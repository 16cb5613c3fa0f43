package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/bharadwaj008/Article-Search-Pipeline/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "articles",
		Usage: "Hybrid semantic and date-range search over research articles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML configuration file",
				EnvVars: []string{"ARTICLES_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = map[string]any{}
			}
			c.App.Metadata[configKey] = cfg
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Store articles from a JSON file and index them",
				ArgsUsage: "FILE",
				Action:    ingestCommand,
			},
			{
				Name:   "index",
				Usage:  "Re-index every stored article",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "drop",
						Usage: "Drop the vector collection before indexing",
					},
				},
			},
			{
				Name:   "build-index",
				Usage:  "Build the vector partition index if none exists",
				Action: buildIndexCommand,
			},
			{
				Name:      "search",
				Usage:     "Search articles",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "nprobe",
						Usage: "Number of index partitions to probe (0 uses the configured default)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (0 uses the configured default)",
					},
					&cli.StringFlag{
						Name:    "display",
						Aliases: []string{"d"},
						Usage:   "What to show: all, titles or keywords",
						Value:   displayAll,
					},
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Also export the results to this CSV file",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Show each search stage",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the search API over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to server.addr from the config)",
					},
				},
			},
			{
				Name:   "show-config",
				Usage:  "Print the effective configuration as TOML",
				Action: showConfigCommand,
			},
		},
	}
}

// loadedConfig returns the configuration read in Before, or the defaults.
func loadedConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

func setupLogger(c *cli.Context) error {
	// The flag wins over the config file when given
	levelStr := strings.ToLower(c.String("log-level"))
	if !c.IsSet("log-level") {
		if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok && cfg.Log.Level != "" {
			levelStr = strings.ToLower(cfg.Log.Level)
		}
	}

	level, err := config.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"spotback/internal/services"
	"spotback/internal/shared"
)

// configCandidates are probed in order when no explicit --config is given.
var configCandidates = []string{"config.json", "config.toml"}

func main() {
	logger := shared.NewLogger(nil)

	var config *shared.Config
	for _, path := range configCandidates {
		if _, err := os.Stat(path); err == nil {
			if loaded, err := shared.LoadConfig(path); err == nil {
				config = loaded
			} else {
				logger.Warnf("failed to load %s: %v", path, err)
			}
			break
		}
	}

	var service services.Service
	if config != nil && config.ClientID != "" && config.Secret != "" {
		if svc, err := services.NewSpotifyService(config); err == nil {
			service = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Service: service,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "spotback",
		Usage:    "Back up Spotify playlists to CSV files",
		Version:  "0.3.0",
		Commands: runner.register(),
		Flags:    backupFlags(),
		// Running with no arguments performs a full backup.
		Action: runner.Backup,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

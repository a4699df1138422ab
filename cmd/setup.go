package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"spotback/internal/shared"
)

// Setup creates a starter config file and initializes the history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = configCandidates[0]
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}
	r.writePlain("✓ Created config file at %s\n", configPath)

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to create history database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}
	r.writePlain("✓ Initialized history database at %s\n\n", config.Database)

	r.writePlain("Next steps:\n")
	r.writePlain("  1. Add your Spotify client_id, secret and user to %s\n", configPath)
	r.writePlain("  2. Run 'spotback auth' to include private playlists (optional)\n")
	r.writePlain("  3. Run 'spotback backup'\n")

	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"spotback/internal/models"
	"spotback/internal/repositories"
	"spotback/internal/shared"
)

// History lists past backup runs recorded in the local database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}

	repo := repositories.NewRunRepository(db)

	limit := int(cmd.Int("limit"))
	runs, err := repo.List(limit)
	if err != nil {
		return fmt.Errorf("failed to list backup runs: %w", err)
	}

	withFiles := cmd.Bool("files")

	if cmd.Bool("json") {
		type runWithFiles struct {
			Run   *models.BackupRun   `json:"run"`
			Files []models.BackupFile `json:"files,omitempty"`
		}

		output := make([]runWithFiles, 0, len(runs))
		for _, run := range runs {
			entry := runWithFiles{Run: run}
			if withFiles {
				if entry.Files, err = repo.Files(run.ID); err != nil {
					return fmt.Errorf("failed to load files for run %s: %w", run.ID, err)
				}
			}
			output = append(output, entry)
		}

		return r.writeJSON(output, true)
	}

	if len(runs) == 0 {
		r.writePlain("No backup runs recorded yet. Run 'spotback backup' first.\n")
		return nil
	}

	r.writePlain("Showing %d backup runs:\n\n", len(runs))
	for _, run := range runs {
		marker := "✓"
		if run.Status == models.RunFailed {
			marker = "✗"
		}

		r.writePlain("%s #%d %s\n", marker, run.Sequence, run.StartedAt.Format(time.RFC1123))
		r.writePlain("   User: %s\n", run.UserID)
		r.writePlain("   Output: %s\n", run.OutputDir)
		r.writePlain("   Playlists: %d, Tracks: %d\n", run.PlaylistCount, run.TrackCount)
		if run.Error != "" {
			r.writePlain("   Error: %s\n", run.Error)
		}

		if withFiles {
			files, err := repo.Files(run.ID)
			if err != nil {
				return fmt.Errorf("failed to load files for run %s: %w", run.ID, err)
			}
			for _, file := range files {
				r.writePlain("   - %s (%d tracks)\n", file.Path, file.TrackCount)
			}
		}

		r.writePlain("\n")
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"spotback/internal/repositories"
	"spotback/internal/shared"
	"spotback/internal/tasks"
)

// Backup performs a full export run: authenticate, enumerate playlists, and
// write one CSV per playlist plus the playlists.csv index.
func (r *Runner) Backup(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	user := cmd.String("user")
	if user == "" {
		user = config.User
	}
	if user == "" {
		return fmt.Errorf("%w: user must be set in config or via --user", shared.ErrInvalidConfig)
	}

	if config.ClientID == "" || config.Secret == "" {
		return fmt.Errorf("%w: client_id and secret must be set", shared.ErrMissingCredentials)
	}

	svc, err := r.resolveService(config)
	if err != nil {
		return err
	}

	r.logger.Infof("authenticating with %s", svc.Name())
	if err := svc.Authenticate(ctx); err != nil {
		return err
	}

	opts := tasks.BackupOpts{
		User:            user,
		OutputDir:       cmd.String("output"),
		IncludeFeatures: cmd.Bool("features"),
		RateLimit:       cmd.Float("rate"),
	}
	if opts.OutputDir == "" {
		opts.OutputDir = config.OutputDir
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = config.RateLimit
	}

	var recorder tasks.HistoryRecorder
	if !cmd.Bool("no-history") {
		if db, err := shared.NewDatabase(config.Database); err != nil {
			r.logger.Warn("history database unavailable", "error", err)
		} else {
			defer db.Close()
			if err := shared.RunMigrations(db); err != nil {
				r.logger.Warn("failed to migrate history database", "error", err)
			} else {
				recorder = repositories.NewRunRepository(db)
			}
		}
	}

	engine := tasks.NewBackupEngine(svc, recorder)

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.Run(ctx, progress, opts)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	if result.HistoryErr != nil {
		r.logger.Warn("failed to record run history", "error", result.HistoryErr)
	}

	r.logger.Infof("backup complete in %v", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))

	r.writePlainln("✓ Backup complete")
	r.writePlain("  Directory: %s\n", result.OutputDirectory)
	r.writePlain("  Playlists: %d\n", result.PlaylistCount)
	r.writePlain("  Tracks:    %d\n", result.TrackCount)

	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"spotback/internal/shared"
)

// Playlists lists the configured user's playlists without exporting anything.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
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

	svc, err := r.resolveService(config)
	if err != nil {
		return err
	}

	if err := svc.Authenticate(ctx); err != nil {
		return err
	}

	r.logger.Infof("listing playlists for %v", user)

	playlists, err := svc.GetPlaylists(ctx, user)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	limit := int(cmd.Int("limit"))
	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		if p.Public {
			r.writePlain("   Visibility: Public\n")
		} else {
			r.writePlain("   Visibility: Private\n")
		}
		r.writePlain("\n")
	}

	return nil
}

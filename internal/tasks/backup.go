package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"spotback/internal/formatter"
	"spotback/internal/models"
	"spotback/internal/shared"
)

// Run performs a full backup export.
//
// Playlists are processed one at a time, in the order the API returns them.
// Any fetch or write error aborts the run immediately: there is no retry and
// no partial-failure recovery. A subsequent run starts from the beginning and
// overwrites existing files.
func (e *BackupEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts BackupOpts) (*BackupResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.User == "" {
		return nil, fmt.Errorf("%w: user must be set", shared.ErrMissingArgument)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "spotify_backup"
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	result := &BackupResult{
		RunID:           shared.GenerateID(),
		OutputDirectory: opts.OutputDir,
		StartedAt:       time.Now(),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	e.sendProgress(progress, resolveUserUpdate(opts.User))
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	user, err := e.service.User(ctx, opts.User)
	if err != nil {
		return nil, e.fail(result, opts.User, err)
	}
	result.User = user.ID

	e.sendProgress(progress, fetchPlaylistsUpdate(user.ID))
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	playlists, err := e.service.GetPlaylists(ctx, user.ID)
	if err != nil {
		return nil, e.fail(result, user.ID, err)
	}
	result.PlaylistCount = len(playlists)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, e.fail(result, user.ID, fmt.Errorf("failed to create output directory: %w", err))
	}

	e.sendProgress(progress, writeIndexUpdate(len(playlists)))
	indexPath := filepath.Join(opts.OutputDir, formatter.IndexFilename)
	if err := formatter.WriteIndexCSV(playlists, indexPath); err != nil {
		return nil, e.fail(result, user.ID, err)
	}
	result.IndexFile = indexPath

	used := map[string]bool{strings.ToLower(formatter.IndexFilename): true}

	for i, playlist := range playlists {
		e.sendProgress(progress, exportingPlaylistUpdate(i+1, len(playlists), playlist.Name))

		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		export, err := e.service.ExportPlaylist(ctx, playlist)
		if err != nil {
			return nil, e.fail(result, user.ID, fmt.Errorf("failed to export playlist %q: %w", playlist.Name, err))
		}

		if opts.IncludeFeatures && len(export.Tracks) > 0 {
			e.sendProgress(progress, fetchFeaturesUpdate(i+1, len(playlists), playlist.Name))

			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
			if err := e.attachFeatures(ctx, export); err != nil {
				return nil, e.fail(result, user.ID, fmt.Errorf("failed to fetch audio features for %q: %w", playlist.Name, err))
			}
		}

		filename := exportFilename(playlist, used)
		path := filepath.Join(opts.OutputDir, filename)
		if err := formatter.WriteCSVExport(export, path, opts.IncludeFeatures); err != nil {
			return nil, e.fail(result, user.ID, err)
		}

		result.Files = append(result.Files, ExportedFile{
			PlaylistID:   playlist.ID,
			PlaylistName: playlist.Name,
			Path:         path,
			TrackCount:   len(export.Tracks),
		})
		result.TrackCount += len(export.Tracks)

		e.sendProgress(progress, exportCompletedUpdate(i+1, len(playlists), playlist.Name, len(export.Tracks)))
	}

	result.FinishedAt = time.Now()
	result.HistoryErr = e.record(result, models.RunCompleted, "")

	e.sendProgress(progress, completedUpdate(result))
	return result, nil
}

// attachFeatures fetches audio features for all tracks of an export and
// attaches them by URI.
func (e *BackupEngine) attachFeatures(ctx context.Context, export *models.PlaylistExport) error {
	uris := make([]string, 0, len(export.Tracks))
	for _, track := range export.Tracks {
		uris = append(uris, track.URI)
	}

	features, err := e.service.AudioFeatures(ctx, uris)
	if err != nil {
		return err
	}

	for i := range export.Tracks {
		export.Tracks[i].Features = features[export.Tracks[i].URI]
	}

	return nil
}

// exportFilename picks a unique CSV filename for a playlist.
//
// The sanitized playlist name is preferred; the playlist ID is the fallback
// when the name is unusable, already taken, or reserved for the index file.
// Uniqueness is tracked case-insensitively so runs behave the same on
// case-preserving filesystems.
func exportFilename(playlist models.Playlist, used map[string]bool) string {
	candidates := []string{shared.SanitizeFilename(playlist.Name), playlist.ID}

	for _, base := range candidates {
		if base == "" {
			continue
		}
		filename := base + ".csv"
		if key := strings.ToLower(filename); !used[key] {
			used[key] = true
			return filename
		}
	}

	// Two playlists with the same ID cannot exist; this only guards against
	// a name that collides with another playlist's ID.
	for n := 2; ; n++ {
		filename := fmt.Sprintf("%s_%d.csv", playlist.ID, n)
		if key := strings.ToLower(filename); !used[key] {
			used[key] = true
			return filename
		}
	}
}

// fail records a failed run in history and returns the original error.
func (e *BackupEngine) fail(result *BackupResult, userID string, err error) error {
	result.User = userID
	result.FinishedAt = time.Now()
	result.HistoryErr = e.record(result, models.RunFailed, err.Error())
	return err
}

// record persists the run outcome through the history recorder, if any.
func (e *BackupEngine) record(result *BackupResult, status models.RunStatus, errText string) error {
	if e.history == nil {
		return nil
	}

	finished := result.FinishedAt
	run := &models.BackupRun{
		ID:            result.RunID,
		UserID:        result.User,
		OutputDir:     result.OutputDirectory,
		PlaylistCount: result.PlaylistCount,
		TrackCount:    result.TrackCount,
		Status:        status,
		Error:         errText,
		StartedAt:     result.StartedAt,
		FinishedAt:    &finished,
	}

	files := make([]models.BackupFile, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, models.BackupFile{
			ID:           shared.GenerateID(),
			RunID:        result.RunID,
			PlaylistID:   f.PlaylistID,
			PlaylistName: f.PlaylistName,
			Path:         f.Path,
			TrackCount:   f.TrackCount,
		})
	}

	return e.history.RecordRun(run, files)
}

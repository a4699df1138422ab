// package tasks implements the backup export procedure.
//
// The core abstraction is BackupEngine, which drives one export run:
// resolve the user, enumerate playlists, and write one CSV per playlist plus
// the playlists.csv index. Operations emit progress updates via channels for
// non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"time"

	"spotback/internal/models"
	"spotback/internal/services"
)

// Engine defines the backup operations exposed to the CLI layer.
type Engine interface {
	// Run performs a full backup export: one CSV per playlist owned by the
	// configured user, plus a playlists.csv index, written sequentially.
	Run(ctx context.Context, progress chan<- ProgressUpdate, opts BackupOpts) (*BackupResult, error)
}

// HistoryRecorder persists the outcome of a backup run.
//
// Implemented by repositories.RunRepository; optional, the engine works
// without one.
type HistoryRecorder interface {
	RecordRun(run *models.BackupRun, files []models.BackupFile) error
}

// BackupOpts contains configuration for one backup run.
type BackupOpts struct {
	User            string  // Spotify user whose playlists are exported
	OutputDir       string  // Output directory (default: spotify_backup)
	IncludeFeatures bool    // Fetch audio features per track
	RateLimit       float64 // Requests per second (default: 5)
}

// ExportedFile describes one CSV produced during a run.
type ExportedFile struct {
	PlaylistID   string
	PlaylistName string
	Path         string
	TrackCount   int
}

// BackupResult contains all data from a completed backup run.
type BackupResult struct {
	RunID           string         // Unique identifier recorded in history
	User            string         // Resolved user ID
	OutputDirectory string         // Directory holding the CSV files
	IndexFile       string         // Path of playlists.csv
	Files           []ExportedFile // One entry per playlist CSV, in export order
	PlaylistCount   int
	TrackCount      int
	StartedAt       time.Time
	FinishedAt      time.Time
	HistoryErr      error // Non-fatal failure to persist run history
}

// BackupEngine implements Engine against a single music service.
type BackupEngine struct {
	service services.Service
	history HistoryRecorder
}

// NewBackupEngine creates a BackupEngine. The recorder may be nil, in which
// case no run history is persisted.
func NewBackupEngine(service services.Service, history HistoryRecorder) *BackupEngine {
	return &BackupEngine{
		service: service,
		history: history,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *BackupEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

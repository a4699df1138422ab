package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"spotback/internal/models"
)

// RunRepository persists backup runs and their produced files.
//
// Implements tasks.HistoryRecorder.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// RecordRun inserts a run and all of its file rows in a single transaction.
func (r *RunRepository) RecordRun(run *models.BackupRun, files []models.BackupFile) error {
	sequence, err := NextSequence(r.db, "backup_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.Sequence = sequence

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO backup_runs (id, sequence, user_id, output_dir, playlist_count, track_count, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		run.ID,
		run.Sequence,
		run.UserID,
		run.OutputDir,
		run.PlaylistCount,
		run.TrackCount,
		string(run.Status),
		nullString(run.Error),
		run.StartedAt,
		nullTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	fileQuery := `
		INSERT INTO backup_files (id, run_id, playlist_id, playlist_name, path, track_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	for _, file := range files {
		if err := file.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		_, err = tx.Exec(fileQuery,
			file.ID,
			file.RunID,
			file.PlaylistID,
			file.PlaylistName,
			file.Path,
			file.TrackCount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert file record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run record: %w", err)
	}

	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(id string) (*models.BackupRun, error) {
	query := `
		SELECT id, sequence, user_id, output_dir, playlist_count, track_count, status, error, started_at, finished_at
		FROM backup_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return run, nil
}

// List retrieves runs ordered newest first, up to limit (0 means no limit).
func (r *RunRepository) List(limit int) ([]*models.BackupRun, error) {
	query := `
		SELECT id, sequence, user_id, output_dir, playlist_count, track_count, status, error, started_at, finished_at
		FROM backup_runs
		ORDER BY sequence DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BackupRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Files retrieves the file rows recorded for a run.
func (r *RunRepository) Files(runID string) ([]models.BackupFile, error) {
	query := `
		SELECT id, run_id, playlist_id, playlist_name, path, track_count
		FROM backup_files
		WHERE run_id = ?
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []models.BackupFile
	for rows.Next() {
		var f models.BackupFile
		if err := rows.Scan(&f.ID, &f.RunID, &f.PlaylistID, &f.PlaylistName, &f.Path, &f.TrackCount); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return files, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.BackupRun, error) {
	var (
		run        models.BackupRun
		status     string
		errText    sql.NullString
		finishedAt sql.NullTime
	)

	err := row.Scan(
		&run.ID,
		&run.Sequence,
		&run.UserID,
		&run.OutputDir,
		&run.PlaylistCount,
		&run.TrackCount,
		&status,
		&errText,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Status = models.RunStatus(status)
	if errText.Valid {
		run.Error = errText.String
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}

	return &run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// package models defines the data model for the playlist backup tool
package models

import (
	"fmt"
	"strings"
	"time"
)

// Playlist represents a playlist as surfaced by the Spotify Web API.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URI         string `json:"uri"`
	URL         string `json:"url,omitempty"`
	OwnerName   string `json:"owner_name,omitempty"`
	OwnerURI    string `json:"owner_uri,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// Track represents a single playlist entry with its metadata columns.
//
// Field order matches the CSV column order used by the formatter.
type Track struct {
	AddedAt    string         `json:"added_at"`
	URI        string         `json:"uri"`
	URL        string         `json:"url,omitempty"`
	Name       string         `json:"name"`
	Artists    []string       `json:"artists"`
	Album      string         `json:"album,omitempty"`
	AlbumDate  string         `json:"album_date,omitempty"`
	DurationMS int            `json:"duration_ms"`
	Popularity int            `json:"popularity"`
	Features   *AudioFeatures `json:"audio_features,omitempty"`
}

// ArtistList renders the artist names as a single comma-separated string.
func (t Track) ArtistList() string {
	return strings.Join(t.Artists, ", ")
}

// AudioFeatures holds the per-track audio analysis attributes.
type AudioFeatures struct {
	Tempo            float64 `json:"tempo"`
	TimeSignature    int     `json:"time_signature"`
	Key              int     `json:"key"`
	Mode             int     `json:"mode"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Loudness         float64 `json:"loudness"`
	Valence          float64 `json:"valence"`
}

// PlaylistExport represents a playlist with all its tracks in API order.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// RunStatus enumerates the terminal states of a backup run.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// BackupRun is the persisted record of one export run.
type BackupRun struct {
	ID            string
	Sequence      int
	UserID        string
	OutputDir     string
	PlaylistCount int
	TrackCount    int
	Status        RunStatus
	Error         string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// Validate checks that the run record is consistent before persistence.
func (r *BackupRun) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("backup run ID must be set")
	}
	if r.UserID == "" {
		return fmt.Errorf("backup run user ID must be set")
	}
	if r.OutputDir == "" {
		return fmt.Errorf("backup run output directory must be set")
	}
	switch r.Status {
	case RunCompleted, RunFailed:
	default:
		return fmt.Errorf("invalid run status: %q", r.Status)
	}
	return nil
}

// BackupFile is the persisted record of one CSV produced during a run.
type BackupFile struct {
	ID           string
	RunID        string
	PlaylistID   string
	PlaylistName string
	Path         string
	TrackCount   int
}

// Validate checks that the file record is consistent before persistence.
func (f *BackupFile) Validate() error {
	if f.ID == "" || f.RunID == "" {
		return fmt.Errorf("backup file ID and run ID must be set")
	}
	if f.Path == "" {
		return fmt.Errorf("backup file path must be set")
	}
	return nil
}

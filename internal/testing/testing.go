// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"

	"spotback/internal/models"
	"spotback/internal/services"
)

// MockService is a fixture-driven test double for [services.Service].
type MockService struct {
	Profile   *services.UserProfile
	Playlists []models.Playlist
	Exports   map[string][]models.Track // playlist ID -> tracks
	Features  map[string]*models.AudioFeatures

	AuthErr      error
	UserErr      error
	PlaylistsErr error
	ExportErr    error
	FeaturesErr  error
}

func (m *MockService) Authenticate(ctx context.Context) error {
	return m.AuthErr
}

func (m *MockService) User(ctx context.Context, userID string) (*services.UserProfile, error) {
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	if m.Profile != nil {
		return m.Profile, nil
	}
	return &services.UserProfile{ID: userID}, nil
}

func (m *MockService) GetPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	return m.Playlists, nil
}

func (m *MockService) ExportPlaylist(ctx context.Context, playlist models.Playlist) (*models.PlaylistExport, error) {
	if m.ExportErr != nil {
		return nil, m.ExportErr
	}
	return &models.PlaylistExport{
		Playlist: playlist,
		Tracks:   m.Exports[playlist.ID],
	}, nil
}

func (m *MockService) AudioFeatures(ctx context.Context, trackURIs []string) (map[string]*models.AudioFeatures, error) {
	if m.FeaturesErr != nil {
		return nil, m.FeaturesErr
	}
	result := make(map[string]*models.AudioFeatures)
	for _, uri := range trackURIs {
		if af, ok := m.Features[uri]; ok {
			result[uri] = af
		}
	}
	return result, nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FailingRecorder is a test double for tasks.HistoryRecorder that always fails.
type FailingRecorder struct{}

func (f *FailingRecorder) RecordRun(run *models.BackupRun, files []models.BackupFile) error {
	return fmt.Errorf("history unavailable")
}

// MemoryRecorder captures recorded runs in memory.
type MemoryRecorder struct {
	Runs  []*models.BackupRun
	Files [][]models.BackupFile
}

func (m *MemoryRecorder) RecordRun(run *models.BackupRun, files []models.BackupFile) error {
	m.Runs = append(m.Runs, run)
	m.Files = append(m.Files, files)
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

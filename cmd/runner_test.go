package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"spotback/internal/models"
	"spotback/internal/services"
	"spotback/internal/shared"
	tu "spotback/internal/testing"
)

func testRunner(t *testing.T, svc services.Service) (*Runner, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	config := shared.DefaultConfig()
	config.ClientID = "test_client_id"
	config.Secret = "test_client_secret"
	config.User = "mono"
	config.Database = filepath.Join(t.TempDir(), "history.db")

	logger := shared.NewLogger(&bytes.Buffer{})

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Service: svc,
		Logger:  logger,
		Output:  output,
	})
	return runner, output
}

func runCommand(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "spotback",
		Commands: runner.register(),
		Flags:    backupFlags(),
		Action:   runner.Backup,
	}
	return app.Run(context.Background(), append([]string{"spotback"}, args...))
}

func backupService() *tu.MockService {
	return &tu.MockService{
		Profile: &services.UserProfile{ID: "mono", DisplayName: "Mono"},
		Playlists: []models.Playlist{
			{ID: "pl1", Name: "Road Trip", TrackCount: 1},
			{ID: "pl2", Name: "Chill", TrackCount: 1},
		},
		Exports: map[string][]models.Track{
			"pl1": {{URI: "spotify:track:aaa", Name: "First Song"}},
			"pl2": {{URI: "spotify:track:bbb", Name: "Second Song"}},
		},
	}
}

func TestNewRunner(t *testing.T) {
	t.Run("with all dependencies provided", func(t *testing.T) {
		config := shared.DefaultConfig()
		logger := shared.NewLogger(nil)
		output := &bytes.Buffer{}
		svc := &tu.MockService{}

		runner := NewRunner(RunnerOpts{
			Config:  config,
			Service: svc,
			Logger:  logger,
			Output:  output,
		})

		if runner.config != config {
			t.Error("expected config to be set")
		}
		if runner.service != services.Service(svc) {
			t.Error("expected service to be set")
		}
		if runner.logger != logger {
			t.Error("expected logger to be set")
		}
		if runner.output != output {
			t.Error("expected output to be set")
		}
	})

	t.Run("with nil logger uses default", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		if runner.logger == nil {
			t.Error("expected default logger to be set")
		}
	})

	t.Run("with nil output uses stdout", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		if runner.output != os.Stdout {
			t.Error("expected output to default to os.Stdout")
		}
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("writes formatted JSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
			t.Fatalf("writeJSON() error = %v", err)
		}
		if !strings.Contains(output.String(), `"key": "value"`) {
			t.Errorf("output = %s", output.String())
		}
	})

	t.Run("propagates write errors", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := runner.writeJSON(map[string]string{}, false); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestResolveConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		_, err := runner.resolveConfig(filepath.Join(t.TempDir(), "nope.json"))
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("error = %v, want ErrMissingConfig", err)
		}
	})

	t.Run("loads and caches", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte(`{"client_id": "a", "secret": "b", "user": "mono"}`), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		config, err := runner.resolveConfig(path)
		if err != nil {
			t.Fatalf("resolveConfig() error = %v", err)
		}
		if config.User != "mono" {
			t.Errorf("User = %q, want mono", config.User)
		}

		cached, err := runner.resolveConfig("somewhere/else.json")
		if err != nil {
			t.Fatalf("resolveConfig() error = %v", err)
		}
		if cached != config {
			t.Error("expected cached config on second call")
		}
	})
}

func TestBackupCommand(t *testing.T) {
	t.Run("exports all playlists", func(t *testing.T) {
		runner, output := testRunner(t, backupService())
		dir := t.TempDir()

		err := runCommand(t, runner, "backup", "--output", dir, "--rate", "1000", "--no-history")
		if err != nil {
			t.Fatalf("backup command error = %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "playlists.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "Road Trip.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "Chill.csv"))

		if !strings.Contains(output.String(), "Backup complete") {
			t.Errorf("summary missing from output: %s", output.String())
		}
	})

	t.Run("records history", func(t *testing.T) {
		runner, output := testRunner(t, backupService())
		dir := t.TempDir()

		if err := runCommand(t, runner, "backup", "--output", dir, "--rate", "1000"); err != nil {
			t.Fatalf("backup command error = %v", err)
		}

		output.Reset()
		if err := runCommand(t, runner, "history"); err != nil {
			t.Fatalf("history command error = %v", err)
		}

		if !strings.Contains(output.String(), "mono") {
			t.Errorf("history output missing run: %s", output.String())
		}
	})

	t.Run("root action runs backup", func(t *testing.T) {
		runner, output := testRunner(t, backupService())
		dir := t.TempDir()

		if err := runCommand(t, runner, "--output", dir, "--rate", "1000", "--no-history"); err != nil {
			t.Fatalf("bare invocation error = %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "playlists.csv"))
		if !strings.Contains(output.String(), "Backup complete") {
			t.Errorf("summary missing from output: %s", output.String())
		}
	})

	t.Run("fails without user", func(t *testing.T) {
		runner, _ := testRunner(t, backupService())
		runner.config.User = ""

		err := runCommand(t, runner, "backup", "--no-history")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("propagates export failures", func(t *testing.T) {
		svc := backupService()
		svc.ExportErr = errors.New("api exploded")
		runner, _ := testRunner(t, svc)

		err := runCommand(t, runner, "backup", "--output", t.TempDir(), "--rate", "1000", "--no-history")
		if err == nil || !strings.Contains(err.Error(), "api exploded") {
			t.Errorf("error = %v, want export failure", err)
		}
	})
}

func TestPlaylistsCommand(t *testing.T) {
	t.Run("plain listing", func(t *testing.T) {
		runner, output := testRunner(t, backupService())

		if err := runCommand(t, runner, "playlists"); err != nil {
			t.Fatalf("playlists command error = %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Found 2 playlists") {
			t.Errorf("missing count: %s", got)
		}
		if !strings.Contains(got, "Road Trip") || !strings.Contains(got, "Chill") {
			t.Errorf("missing playlists: %s", got)
		}
	})

	t.Run("json listing", func(t *testing.T) {
		runner, output := testRunner(t, backupService())

		if err := runCommand(t, runner, "playlists", "--json"); err != nil {
			t.Fatalf("playlists command error = %v", err)
		}

		if !strings.Contains(output.String(), `"id": "pl1"`) {
			t.Errorf("json output missing playlist: %s", output.String())
		}
	})

	t.Run("respects limit", func(t *testing.T) {
		runner, output := testRunner(t, backupService())

		if err := runCommand(t, runner, "playlists", "--limit", "1"); err != nil {
			t.Fatalf("playlists command error = %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Found 1 playlists") {
			t.Errorf("limit not applied: %s", got)
		}
		if strings.Contains(got, "Chill") {
			t.Errorf("limit not applied: %s", got)
		}
	})
}

func TestSetupCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Output: output,
	})

	// Database path in the generated config is relative, so run from the temp dir.
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	if err := runCommand(t, runner, "setup", "--config", configPath); err != nil {
		t.Fatalf("setup command error = %v", err)
	}

	tu.AssertFileExists(t, configPath)
	if !strings.Contains(output.String(), "Next steps") {
		t.Errorf("setup output missing guidance: %s", output.String())
	}

	if err := runCommand(t, runner, "setup", "--config", configPath); err == nil {
		t.Error("second setup should fail when config exists")
	}
}

package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		path := writeTempConfig(t, "config.json", `{
			"client_id": "abc123",
			"secret": "shhh",
			"user": "wandering-mono",
			"requests_timeout": 45
		}`)

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		if config.ClientID != "abc123" {
			t.Errorf("ClientID = %q, want abc123", config.ClientID)
		}
		if config.User != "wandering-mono" {
			t.Errorf("User = %q, want wandering-mono", config.User)
		}
		if config.RequestsTimeout != 45 {
			t.Errorf("RequestsTimeout = %d, want 45", config.RequestsTimeout)
		}
		if config.Timeout() != 45*time.Second {
			t.Errorf("Timeout() = %v, want 45s", config.Timeout())
		}
	})

	t.Run("toml", func(t *testing.T) {
		path := writeTempConfig(t, "config.toml", `
client_id = "abc123"
secret = "shhh"
user = "wandering-mono"
output_dir = "exports"
`)

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		if config.ClientID != "abc123" {
			t.Errorf("ClientID = %q, want abc123", config.ClientID)
		}
		if config.OutputDir != "exports" {
			t.Errorf("OutputDir = %q, want exports", config.OutputDir)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "config.json", `{"client_id": "a", "secret": "b", "user": "c"}`)

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		if config.RequestsTimeout != 30 {
			t.Errorf("RequestsTimeout = %d, want default 30", config.RequestsTimeout)
		}
		if config.OutputDir != "spotify_backup" {
			t.Errorf("OutputDir = %q, want default spotify_backup", config.OutputDir)
		}
		if config.RateLimit != 5 {
			t.Errorf("RateLimit = %v, want default 5", config.RateLimit)
		}
		if config.Server.Host != "127.0.0.1" || config.Server.Port != 8080 {
			t.Errorf("Server = %+v, want 127.0.0.1:8080", config.Server)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("LoadConfig() error = %v, want ErrMissingConfig", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeTempConfig(t, "config.json", `{not json`)
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("LoadConfig() error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		path := writeTempConfig(t, "config.toml", `client_id = `)
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("LoadConfig() error = %v, want ErrInvalidConfig", err)
		}
	})
}

func TestSaveConfig(t *testing.T) {
	t.Run("json round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		config := DefaultConfig()
		config.ClientID = "abc123"
		config.User = "wandering-mono"

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if loaded.ClientID != "abc123" || loaded.User != "wandering-mono" {
			t.Errorf("round trip mismatch: %+v", loaded)
		}
	})

	t.Run("toml round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.ClientID = "abc123"

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if loaded.ClientID != "abc123" {
			t.Errorf("round trip mismatch: %+v", loaded)
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile() error = %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if config.OutputDir == "" {
		t.Error("generated config missing defaults")
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("CreateConfigFile() should fail when the file already exists")
	}
}

func TestConfigValidate(t *testing.T) {
	tc := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "valid",
			config: Config{ClientID: "a", Secret: "b", User: "c"},
		},
		{
			name:    "missing credentials",
			config:  Config{User: "c"},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "missing user",
			config:  Config{ClientID: "a", Secret: "b"},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigToken(t *testing.T) {
	config := &Config{}

	if config.OAuthToken() != nil {
		t.Error("OAuthToken() should be nil before any token is stored")
	}

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	config.UpdateToken(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       expiry,
	})

	token := config.OAuthToken()
	if token == nil {
		t.Fatal("OAuthToken() returned nil after UpdateToken")
	}
	if token.AccessToken != "access" || token.RefreshToken != "refresh" {
		t.Errorf("OAuthToken() = %+v", token)
	}
	if !token.Expiry.Equal(expiry) {
		t.Errorf("Expiry = %v, want %v", token.Expiry, expiry)
	}
}

package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.json
var exampleConf []byte

// Config represents the application configuration, loaded once at process
// start and treated as immutable for the duration of a backup run.
//
// The canonical format is a flat JSON file with client_id, secret, user,
// redirect_uri and requests_timeout; TOML files with the same keys are
// accepted as well.
type Config struct {
	ClientID        string       `json:"client_id" toml:"client_id"`
	Secret          string       `json:"secret" toml:"secret"`
	User            string       `json:"user" toml:"user"`
	RedirectURI     string       `json:"redirect_uri,omitempty" toml:"redirect_uri"`
	RequestsTimeout int          `json:"requests_timeout" toml:"requests_timeout"`
	OutputDir       string       `json:"output_dir,omitempty" toml:"output_dir"`
	RateLimit       float64      `json:"rate_limit,omitempty" toml:"rate_limit"`
	Database        string       `json:"database,omitempty" toml:"database"`
	Server          ServerConfig `json:"server,omitzero" toml:"server"`
	Token           *StoredToken `json:"token,omitempty" toml:"token"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `json:"host" toml:"host"`
	Port int    `json:"port" toml:"port"`
}

// StoredToken holds OAuth2 tokens persisted by the auth command.
type StoredToken struct {
	AccessToken  string    `json:"access_token" toml:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty" toml:"refresh_token"`
	Expiry       time.Time `json:"expiry,omitzero" toml:"expiry"`
}

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files ending in .toml are parsed as TOML; everything else is parsed as JSON.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	} else {
		if err := UnmarshalJSON(data, &config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	}

	config.applyDefaults()
	return &config, nil
}

// SaveConfig writes the configuration back to the specified path, preserving
// the format implied by the file extension.
func SaveConfig(path string, config *Config) error {
	var data []byte
	var err error

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var buf strings.Builder
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		data = []byte(buf.String())
	} else {
		data, err = MarshalJSON(config, true)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		data = append(data, '\n')
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := UnmarshalJSON(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyDefaults()
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the credentials required for any API call are present.
func (c *Config) Validate() error {
	if c.ClientID == "" || c.Secret == "" {
		return fmt.Errorf("%w: client_id and secret must be set", ErrMissingCredentials)
	}
	if c.User == "" {
		return fmt.Errorf("%w: user must be set", ErrInvalidConfig)
	}
	return nil
}

// UpdateToken stores the tokens from an OAuth2 exchange on the config.
func (c *Config) UpdateToken(token *oauth2.Token) {
	c.Token = &StoredToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
}

// OAuthToken converts the stored token back into an [oauth2.Token].
//
// Returns nil when no token has been saved.
func (c *Config) OAuthToken() *oauth2.Token {
	if c.Token == nil || c.Token.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  c.Token.AccessToken,
		RefreshToken: c.Token.RefreshToken,
		Expiry:       c.Token.Expiry,
	}
}

// Timeout returns the configured request timeout as a [time.Duration].
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestsTimeout) * time.Second
}

func (c *Config) applyDefaults() {
	if c.RequestsTimeout <= 0 {
		c.RequestsTimeout = 30
	}
	if c.OutputDir == "" {
		c.OutputDir = "spotify_backup"
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 5
	}
	if c.Database == "" {
		c.Database = "./spotback.db"
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
}

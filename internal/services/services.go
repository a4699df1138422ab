// package services defines interface Service for interacting with the Spotify Web API
package services

import (
	"context"

	"golang.org/x/oauth2"

	"spotback/internal/models"
)

// Service defines the operations the backup engine needs from a music service.
type Service interface {
	// Authenticate obtains an access credential.
	// Returns an error if authentication fails; no retry is attempted.
	Authenticate(ctx context.Context) error

	// User retrieves the public profile for a user ID.
	// Returns [shared.ErrUserNotFound] when the user does not exist.
	User(ctx context.Context, userID string) (*UserProfile, error)

	// GetPlaylists retrieves all playlists owned by the given user, in the
	// order the API returns them.
	GetPlaylists(ctx context.Context, userID string) ([]models.Playlist, error)

	// ExportPlaylist fetches all tracks for a playlist and combines them with
	// the already-known playlist metadata.
	ExportPlaylist(ctx context.Context, playlist models.Playlist) (*models.PlaylistExport, error)

	// AudioFeatures retrieves audio analysis attributes for the given track
	// URIs, keyed by URI. Batching is handled internally.
	AudioFeatures(ctx context.Context, trackURIs []string) (map[string]*models.AudioFeatures, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Service for providers that support the OAuth2
// authorization-code flow via a local callback server.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 configuration for the
	// callback handler's token exchange.
	GetOAuthConfig() *oauth2.Config
}

// UserProfile represents a user profile from a music service.
type UserProfile struct {
	ID          string
	DisplayName string
	URI         string
	Followers   int
}

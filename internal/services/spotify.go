// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"spotback/internal/models"
	"spotback/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify caps page sizes at 50 and audio-features batches at 100.
	pageLimit        = 50
	maxFeaturesBatch = 100

	trackURIPrefix = "spotify:track:"
)

// errNotFound marks a 404 from the API so callers can map it to the
// appropriate sentinel (user vs playlist).
var errNotFound = errors.New("resource not found")

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type followers struct {
	Total int `json:"total"`
}

// spotifyUser represents a Spotify user profile.
type spotifyUser struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"display_name"`
	URI          string       `json:"uri"`
	Followers    followers    `json:"followers"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// spotifyArtist represents a Spotify artist reference on a track.
type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// spotifyAlbum represents a Spotify album reference on a track.
type spotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// spotifyTrack represents a Spotify track.
type spotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []spotifyArtist `json:"artists"`
	Album        spotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	Popularity   int             `json:"popularity"`
	URI          string          `json:"uri"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// spotifyPlaylistItem represents a track within a playlist context.
type spotifyPlaylistItem struct {
	AddedAt string       `json:"added_at"`
	Track   spotifyTrack `json:"track"`
}

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	URI         string `json:"uri"`
}

type playlistTracksRef struct {
	Total int `json:"total"`
}

// spotifySimplePlaylist represents a simplified playlist object (used in lists).
type spotifySimplePlaylist struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Owner        owner             `json:"owner"`
	Public       bool              `json:"public"`
	Tracks       playlistTracksRef `json:"tracks"`
	URI          string            `json:"uri"`
	ExternalURLs externalURLs      `json:"external_urls"`
}

// paginatedPlaylists represents a paginated response of playlists.
type paginatedPlaylists struct {
	Items  []spotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// paginatedPlaylistItems represents a paginated response of playlist tracks.
type paginatedPlaylistItems struct {
	Items  []spotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

// spotifyAudioFeatures represents the audio-features object for one track.
type spotifyAudioFeatures struct {
	URI              string  `json:"uri"`
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

// SpotifyService implements the Service interface for Spotify API interactions.
//
// Uses the client-credentials grant by default and a user token from the
// authorization-code flow when one has been saved by the auth command.
type SpotifyService struct {
	oauthConfig *oauth2.Config
	credsConfig *clientcredentials.Config
	savedToken  *oauth2.Token
	httpClient  *http.Client
	base        *http.Client
	baseURL     string
}

// NewSpotifyService creates a new Spotify service from the application config.
//
// The base HTTP client carries the configured requests_timeout; it is used
// for token exchange and all API calls.
func NewSpotifyService(cfg *shared.Config) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("%w: client_id and secret are required", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://%s:%d/callback", cfg.Server.Host, cfg.Server.Port)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.Secret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	credsConfig := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.Secret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{
		oauthConfig: oauthConfig,
		credsConfig: credsConfig,
		savedToken:  cfg.OAuthToken(),
		base:        &http.Client{Timeout: cfg.Timeout()},
		baseURL:     spotifyBaseURL,
	}, nil
}

// Authenticate obtains an access token.
//
// When a user token was saved by the auth command it is used (and refreshed
// via its refresh token); otherwise the client-credentials grant is performed
// immediately so credential problems surface before any export work starts.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.base)

	if s.savedToken != nil {
		s.httpClient = s.oauthConfig.Client(ctx, s.savedToken)
		return nil
	}

	token, err := s.credsConfig.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration used for token exchange.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.oauthConfig
}

// doRequest performs an authenticated GET against the Spotify API and decodes
// the JSON response into result.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", errNotFound, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// User retrieves the public profile for a user ID.
func (s *SpotifyService) User(ctx context.Context, userID string) (*UserProfile, error) {
	var user spotifyUser
	endpoint := fmt.Sprintf("/users/%s", url.PathEscape(userID))
	if err := s.doRequest(ctx, endpoint, &user); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, userID)
		}
		return nil, err
	}

	return &UserProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		URI:         user.URI,
		Followers:   user.Followers.Total,
	}, nil
}

// UserPlaylists retrieves one page of a user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, userID string, limit, offset int) (*paginatedPlaylists, error) {
	if limit <= 0 || limit > pageLimit {
		limit = pageLimit
	}

	var response paginatedPlaylists
	endpoint := fmt.Sprintf("/users/%s/playlists?limit=%d&offset=%d", url.PathEscape(userID), limit, offset)
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, userID)
		}
		return nil, err
	}

	return &response, nil
}

// GetPlaylists retrieves all playlists owned by the given user, following
// pagination until the API reports no next page.
func (s *SpotifyService) GetPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	var all []models.Playlist
	offset := 0

	for {
		response, err := s.UserPlaylists(ctx, userID, pageLimit, offset)
		if err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			all = append(all, models.Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				URI:         sp.URI,
				URL:         sp.ExternalURLs.Spotify,
				OwnerName:   sp.Owner.DisplayName,
				OwnerURI:    sp.Owner.URI,
				TrackCount:  sp.Tracks.Total,
				Public:      sp.Public,
			})
		}

		if response.Next == nil {
			break
		}
		offset += response.Limit
	}

	return all, nil
}

// PlaylistItems retrieves one page of a playlist's tracks.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*paginatedPlaylistItems, error) {
	if limit <= 0 || limit > pageLimit {
		limit = pageLimit
	}

	var response paginatedPlaylistItems
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), limit, offset)
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		return nil, err
	}

	return &response, nil
}

// ExportPlaylist fetches every track of a playlist and combines them with the
// playlist metadata from the listing.
//
// Items without a track URI (removed or local tracks) are skipped, matching
// the behavior of dropping rows with invalid URIs. Order is preserved.
func (s *SpotifyService) ExportPlaylist(ctx context.Context, playlist models.Playlist) (*models.PlaylistExport, error) {
	var tracks []models.Track
	offset := 0

	for {
		response, err := s.PlaylistItems(ctx, playlist.ID, pageLimit, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range response.Items {
			if item.Track.URI == "" {
				continue
			}

			track := models.Track{
				AddedAt:    item.AddedAt,
				URI:        item.Track.URI,
				URL:        item.Track.ExternalURLs.Spotify,
				Name:       item.Track.Name,
				Album:      item.Track.Album.Name,
				AlbumDate:  item.Track.Album.ReleaseDate,
				DurationMS: item.Track.DurationMS,
				Popularity: item.Track.Popularity,
			}
			for _, artist := range item.Track.Artists {
				track.Artists = append(track.Artists, artist.Name)
			}

			tracks = append(tracks, track)
		}

		if response.Next == nil {
			break
		}
		offset += response.Limit
	}

	return &models.PlaylistExport{
		Playlist: playlist,
		Tracks:   tracks,
	}, nil
}

// AudioFeatures retrieves audio analysis attributes for the given track URIs
// in batches of at most 100 IDs, keyed by track URI in the result.
//
// Tracks the API has no analysis for are absent from the map.
func (s *SpotifyService) AudioFeatures(ctx context.Context, trackURIs []string) (map[string]*models.AudioFeatures, error) {
	features := make(map[string]*models.AudioFeatures, len(trackURIs))

	var ids []string
	for _, uri := range trackURIs {
		if id := strings.TrimPrefix(uri, trackURIPrefix); id != "" && id != uri {
			ids = append(ids, id)
		}
	}

	for start := 0; start < len(ids); start += maxFeaturesBatch {
		end := min(start+maxFeaturesBatch, len(ids))

		var response struct {
			AudioFeatures []*spotifyAudioFeatures `json:"audio_features"`
		}

		endpoint := fmt.Sprintf("/audio-features?ids=%s", url.QueryEscape(strings.Join(ids[start:end], ",")))
		if err := s.doRequest(ctx, endpoint, &response); err != nil {
			return nil, err
		}

		for _, af := range response.AudioFeatures {
			if af == nil {
				continue
			}
			features[af.URI] = &models.AudioFeatures{
				Tempo:            af.Tempo,
				TimeSignature:    af.TimeSignature,
				Key:              af.Key,
				Mode:             af.Mode,
				Danceability:     af.Danceability,
				Energy:           af.Energy,
				Speechiness:      af.Speechiness,
				Acousticness:     af.Acousticness,
				Instrumentalness: af.Instrumentalness,
				Liveness:         af.Liveness,
				Loudness:         af.Loudness,
				Valence:          af.Valence,
			}
		}
	}

	return features, nil
}

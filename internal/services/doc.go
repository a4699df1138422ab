// Package services defines the [Service] interface for music streaming providers and implements it for Spotify.
//
// # Service Interface
//
// The backup engine talks to providers through a small abstraction: resolve a
// user, list their playlists, export a playlist's tracks, and fetch audio
// features. This keeps the engine testable with in-memory fakes.
//
// # Spotify Implementation
//
// [SpotifyService] is a thin REST client over [oauth2]. Two grants are
// supported:
//
//   - client credentials (default): enough to read a user's public playlists
//   - authorization code: a user token saved by the auth command, which also
//     surfaces private and collaborative playlists; [oauth2.Config.Client]
//     refreshes expired tokens automatically via the refresh token
//
// The configured requests_timeout applies to token exchange and every API
// call through the shared base [http.Client]. There is no retry policy:
// a failed request fails the operation.
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends Service for the authorization-code
// flow driven by the CLI together with the internal/server callback handler.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAuthFailed] : credential rejection or 401/403 response
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrUserNotFound] : configured user does not exist
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
package services

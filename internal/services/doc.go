// Package services defines the [Service] interface for the remote music catalog and implements it for Spotify.
//
// # Service Interface
//
// The playlist builder only needs four remote operations: resolve the current user, create a playlist,
// search the catalog for a track, and add tracks to a playlist.
//
// # Spotify Implementation
//
// [SpotifyService] wraps the [spotify.Client] from github.com/zmb3/spotify/v2.
// Its HTTP client comes from an [oauth2.Config], so expired access tokens are refreshed automatically
// with the saved refresh token. Refreshed tokens are reported through [SpotifyService.SetTokenRefreshCallback]
// so the CLI can persist them.
//
// Searches use type=track and limit=1. An empty result is reported as [shared.ErrTrackNotFound];
// every other failure wraps [shared.ErrAPIRequest]. Nothing is retried.
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends Service for OAuth providers.
// [SpotifyService] implements it for the local callback flow used by the auth command.
package services

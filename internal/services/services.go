// package services defines interface Service for the remote music catalog used to build playlists
//
// Spotify (via github.com/zmb3/spotify/v2)
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Service defines the remote operations needed to create and populate a playlist.
type Service interface {
	// Authenticate performs OAuth or token based authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CurrentUser returns the ID of the authenticated account.
	CurrentUser(ctx context.Context) (string, error)

	// CreatePlaylist creates an empty playlist owned by userID.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error)

	// SearchTrack runs a single free-text track search and returns the top result.
	// Returns an error wrapping shared.ErrTrackNotFound when the search has no results.
	SearchTrack(ctx context.Context, query string) (*Track, error)

	// AddTracks appends catalog items to a playlist, preserving order.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends [Service] for providers authorized through the OAuth2 code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the consent page URL carrying state.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the OAuth2 configuration used for code exchange.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate authenticates with an existing token, refreshing it as needed.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// Playlist represents a playlist created on the remote service
type Playlist struct {
	ID          string
	Name        string
	Description string
	Public      bool
}

// Track represents a catalog item returned by search
type Track struct {
	ID     string
	Title  string
	Artist string
	Album  string
	URI    string
}

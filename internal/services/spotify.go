// Spotify API implementation of [Service]
//
// Spotify API reference: https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/spotlists/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const (
	defaultRedirectURI = "http://127.0.0.1:8080/callback"

	// maxAddBatch is the most items Spotify accepts in one add-items request.
	maxAddBatch = 100
)

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithBaseURL points the API client at a different host. The URL must end with a slash.
func WithBaseURL(url string) SpotifyOption {
	return func(s *SpotifyService) {
		s.baseURL = url
	}
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] for authentication and [spotify.Client] for API calls.
type SpotifyService struct {
	config         *oauth2.Config
	client         *spotify.Client
	baseURL        string
	credentials    map[string]string
	onTokenRefresh func(*oauth2.Token)

	mu    sync.Mutex
	token *oauth2.Token
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{spotifyauth.ScopePlaylistModifyPrivate},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}

	s := &SpotifyService{
		config:      config,
		credentials: credentials,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers fn to be called whenever the client obtains a new access token.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// Token returns the most recent token seen by the client.
func (s *SpotifyService) Token() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticate performs OAuth2 authentication with Spotify.
//
// Expects an "access_token" (optionally with "refresh_token") or an "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		return s.OAuthenticate(ctx, &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
		})
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate builds the API client around token. Expired tokens are refreshed on first use.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return fmt.Errorf("%w: no saved token", shared.ErrNotAuthenticated)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		last:     token.AccessToken,
		callback: s.tokenChanged,
	}

	var opts []spotify.ClientOption
	if s.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(s.baseURL))
	}
	s.client = spotify.New(oauth2.NewClient(ctx, source), opts...)
	return nil
}

func (s *SpotifyService) tokenChanged(token *oauth2.Token) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.onTokenRefresh != nil {
		s.onTokenRefresh(token)
	}
}

func (s *SpotifyService) ready() error {
	if s.client == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return nil
}

// CurrentUser returns the authenticated user's ID.
func (s *SpotifyService) CurrentUser(ctx context.Context) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: get current user: %v", shared.ErrAPIRequest, err)
	}
	return user.ID, nil
}

// CreatePlaylist creates a non-collaborative playlist for userID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	created, err := s.client.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return nil, fmt.Errorf("%w: create playlist %q: %v", shared.ErrAPIRequest, name, err)
	}

	return &Playlist{
		ID:          string(created.ID),
		Name:        created.Name,
		Description: description,
		Public:      public,
	}, nil
}

// SearchTrack searches the catalog for query and returns the first track.
func (s *SpotifyService) SearchTrack(ctx context.Context, query string) (*Track, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	results, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %v", shared.ErrAPIRequest, query, err)
	}

	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, query)
	}

	item := results.Tracks.Tracks[0]
	track := &Track{
		ID:    string(item.ID),
		Title: item.Name,
		Album: item.Album.Name,
		URI:   string(item.URI),
	}
	if len(item.Artists) > 0 {
		track.Artist = item.Artists[0].Name
	}
	return track, nil
}

// AddTracks adds trackIDs to the playlist in order, in as few requests as the API allows.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := s.ready(); err != nil {
		return err
	}

	for start := 0; start < len(trackIDs); start += maxAddBatch {
		end := min(start+maxAddBatch, len(trackIDs))

		ids := make([]spotify.ID, 0, end-start)
		for _, id := range trackIDs[start:end] {
			ids = append(ids, spotify.ID(id))
		}

		if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
			return fmt.Errorf("%w: add tracks to %s: %v", shared.ErrAPIRequest, playlistID, err)
		}
	}
	return nil
}

// refreshableTokenSource reports tokens that differ from the last one it returned.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

// Token implements [oauth2.TokenSource].
func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/spotlists/internal/shared"
	"golang.org/x/oauth2"
)

var testCredentials = map[string]string{
	"client_id":     "test_client_id",
	"client_secret": "test_client_secret",
}

// fakeSpotify is a minimal Spotify Web API stand-in recording the requests it receives.
type fakeSpotify struct {
	mu       sync.Mutex
	requests []string
	created  map[string]any
	added    [][]string
	catalog  map[string]string // query -> track id
	failPath string
}

func newFakeSpotify() *fakeSpotify {
	return &fakeSpotify{catalog: map[string]string{}}
}

func (f *fakeSpotify) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test_token" {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"status":401,"message":"Invalid access token"}}`)
		return
	}

	if f.failPath != "" && strings.HasSuffix(r.URL.Path, f.failPath) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"status":429,"message":"API rate limit exceeded"}}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/me":
		fmt.Fprint(w, `{"id":"user123","display_name":"Test User"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/users/user123/playlists":
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.created = body
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":"pl123","name":%q}`, body["name"])
	case r.Method == http.MethodGet && r.URL.Path == "/search":
		q := r.URL.Query()
		if q.Get("type") != "track" || q.Get("limit") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"status":400,"message":"bad search"}}`)
			return
		}
		id, ok := f.catalog[q.Get("q")]
		if !ok {
			fmt.Fprint(w, `{"tracks":{"items":[],"total":0,"limit":1,"offset":0}}`)
			return
		}
		fmt.Fprintf(w, `{"tracks":{"items":[{"id":%q,"name":"Song","uri":"spotify:track:%s","artists":[{"id":"a1","name":"Artist"}],"album":{"id":"al1","name":"Album"}}],"total":1,"limit":1,"offset":0}}`, id, id)
	case r.Method == http.MethodPost && r.URL.Path == "/playlists/pl123/tracks":
		var body struct {
			URIs []string `json:"uris"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.added = append(f.added, body.URIs)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"snapshot_id":"snap1"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"status":404,"message":"not found"}}`)
	}
}

func newTestService(t *testing.T, fake *fakeSpotify) *SpotifyService {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(testCredentials, WithBaseURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "test_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
				"redirect_uri":  "http://localhost:9999/callback",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.config.RedirectURL != "http://localhost:9999/callback" {
				t.Errorf("expected configured redirect URI, got %s", srv.config.RedirectURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "test_client_secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.config.RedirectURL != defaultRedirectURI {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")

		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "playlist-modify-private"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q, got %s", want, authURL)
			}
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("WithAccessToken", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{"access_token": "test_access_token"})
			if err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}

			if token := srv.Token(); token == nil || token.AccessToken != "test_access_token" {
				t.Errorf("expected access token to be 'test_access_token', got %+v", token)
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Empty Token", func(t *testing.T) {
			err := srv.OAuthenticate(context.Background(), &oauth2.Token{})
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("Unauthenticated Calls", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		ctx := context.Background()

		if _, err := srv.CurrentUser(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("CurrentUser: expected ErrNotAuthenticated, got %v", err)
		}
		if _, err := srv.CreatePlaylist(ctx, "u", "n", "d", false); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("CreatePlaylist: expected ErrNotAuthenticated, got %v", err)
		}
		if _, err := srv.SearchTrack(ctx, "q"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("SearchTrack: expected ErrNotAuthenticated, got %v", err)
		}
		if err := srv.AddTracks(ctx, "p", []string{"t"}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("AddTracks: expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Service Interface", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var _ Service = srv
		var _ OAuthService = srv
	})
}

func TestSpotifyServiceAPI(t *testing.T) {
	ctx := context.Background()

	t.Run("CurrentUser", func(t *testing.T) {
		srv := newTestService(t, newFakeSpotify())

		id, err := srv.CurrentUser(ctx)
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if id != "user123" {
			t.Errorf("expected user123, got %s", id)
		}
	})

	t.Run("CreatePlaylist is private and non-collaborative", func(t *testing.T) {
		fake := newFakeSpotify()
		srv := newTestService(t, fake)

		playlist, err := srv.CreatePlaylist(ctx, "user123", "Road Trip", "A curated playlist of road trip tracks", false)
		if err != nil {
			t.Fatalf("CreatePlaylist() error = %v", err)
		}

		if playlist.ID != "pl123" || playlist.Name != "Road Trip" {
			t.Errorf("unexpected playlist %+v", playlist)
		}
		if fake.created["public"] != false {
			t.Errorf("expected public=false in request, got %v", fake.created["public"])
		}
		if fake.created["collaborative"] == true {
			t.Error("expected non-collaborative playlist")
		}
		if fake.created["description"] != "A curated playlist of road trip tracks" {
			t.Errorf("unexpected description %v", fake.created["description"])
		}
	})

	t.Run("SearchTrack found", func(t *testing.T) {
		fake := newFakeSpotify()
		fake.catalog["Song A"] = "trackA"
		srv := newTestService(t, fake)

		track, err := srv.SearchTrack(ctx, "Song A")
		if err != nil {
			t.Fatalf("SearchTrack() error = %v", err)
		}
		if track.ID != "trackA" || track.Artist != "Artist" || track.Album != "Album" {
			t.Errorf("unexpected track %+v", track)
		}
		if track.URI != "spotify:track:trackA" {
			t.Errorf("unexpected URI %s", track.URI)
		}
	})

	t.Run("SearchTrack not found", func(t *testing.T) {
		srv := newTestService(t, newFakeSpotify())

		_, err := srv.SearchTrack(ctx, "Missing Song")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("API errors wrap ErrAPIRequest", func(t *testing.T) {
		fake := newFakeSpotify()
		fake.failPath = "/search"
		srv := newTestService(t, fake)

		_, err := srv.SearchTrack(ctx, "Song A")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if errors.Is(err, shared.ErrTrackNotFound) {
			t.Error("rate limit must not look like a search miss")
		}

		if got := len(fake.requests); got != 1 {
			t.Errorf("expected exactly one request without retry, got %d", got)
		}
	})

	t.Run("AddTracks batches by 100 in order", func(t *testing.T) {
		fake := newFakeSpotify()
		srv := newTestService(t, fake)

		ids := make([]string, 150)
		for i := range ids {
			ids[i] = fmt.Sprintf("t%03d", i)
		}

		if err := srv.AddTracks(ctx, "pl123", ids); err != nil {
			t.Fatalf("AddTracks() error = %v", err)
		}

		if len(fake.added) != 2 {
			t.Fatalf("expected 2 add requests, got %d", len(fake.added))
		}
		if len(fake.added[0]) != 100 || len(fake.added[1]) != 50 {
			t.Errorf("unexpected batch sizes %d and %d", len(fake.added[0]), len(fake.added[1]))
		}
		if fake.added[0][0] != "spotify:track:t000" || fake.added[1][49] != "spotify:track:t149" {
			t.Errorf("unexpected order: first=%s last=%s", fake.added[0][0], fake.added[1][49])
		}
	})

	t.Run("AddTracks single batch", func(t *testing.T) {
		fake := newFakeSpotify()
		srv := newTestService(t, fake)

		if err := srv.AddTracks(ctx, "pl123", []string{"a", "b"}); err != nil {
			t.Fatalf("AddTracks() error = %v", err)
		}
		if len(fake.added) != 1 {
			t.Errorf("expected 1 add request, got %d", len(fake.added))
		}
	})
}

func TestRefreshableTokenSource(t *testing.T) {
	t.Run("calls callback on first token fetch", func(t *testing.T) {
		var captured *oauth2.Token

		source := &refreshableTokenSource{
			source:   &mockTokenSource{token: &oauth2.Token{AccessToken: "test_token"}},
			callback: func(token *oauth2.Token) { captured = token },
		}

		token, err := source.Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if captured == nil || captured.AccessToken != "test_token" {
			t.Errorf("expected callback with test_token, got %+v", captured)
		}
		if token.AccessToken != "test_token" {
			t.Errorf("expected returned token to be 'test_token', got %s", token.AccessToken)
		}
	})

	t.Run("skips callback for the seeded token", func(t *testing.T) {
		callCount := 0
		source := &refreshableTokenSource{
			source:   &mockTokenSource{token: &oauth2.Token{AccessToken: "saved"}},
			last:     "saved",
			callback: func(*oauth2.Token) { callCount++ },
		}

		source.Token()
		if callCount != 0 {
			t.Errorf("expected no callback for unchanged token, got %d", callCount)
		}
	})

	t.Run("calls callback when token changes", func(t *testing.T) {
		callCount := 0
		mock := &mockTokenSource{token: &oauth2.Token{AccessToken: "token1"}}

		source := &refreshableTokenSource{
			source:   mock,
			callback: func(*oauth2.Token) { callCount++ },
		}

		source.Token()
		source.Token()
		mock.token = &oauth2.Token{AccessToken: "token2"}
		source.Token()

		if callCount != 2 {
			t.Errorf("expected callback called twice, got %d", callCount)
		}
	})

	t.Run("handles nil callback gracefully", func(t *testing.T) {
		source := &refreshableTokenSource{
			source: &mockTokenSource{token: &oauth2.Token{AccessToken: "test_token"}},
		}

		token, err := source.Token()
		if err != nil {
			t.Fatalf("expected no error with nil callback, got %v", err)
		}
		if token.AccessToken != "test_token" {
			t.Error("expected token to be returned despite nil callback")
		}
	})

	t.Run("propagates source errors", func(t *testing.T) {
		source := &refreshableTokenSource{
			source: &mockTokenSource{err: errors.New("token source error")},
			callback: func(*oauth2.Token) {
				t.Error("callback should not be called on error")
			},
		}

		token, err := source.Token()
		if err == nil || !strings.Contains(err.Error(), "token source error") {
			t.Errorf("expected source error, got %v", err)
		}
		if token != nil {
			t.Error("expected nil token on error")
		}
	})

	t.Run("service callback receives refreshed token", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var got *oauth2.Token
		srv.SetTokenRefreshCallback(func(token *oauth2.Token) { got = token })
		srv.tokenChanged(&oauth2.Token{AccessToken: "fresh"})

		if got == nil || got.AccessToken != "fresh" {
			t.Errorf("expected callback with fresh token, got %+v", got)
		}
		if srv.Token().AccessToken != "fresh" {
			t.Errorf("expected service token to update, got %s", srv.Token().AccessToken)
		}
	})
}

// mockTokenSource implements [oauth2.TokenSource] for testing
type mockTokenSource struct {
	token *oauth2.Token
	err   error
}

func (m *mockTokenSource) Token() (*oauth2.Token, error) {
	return m.token, m.err
}

// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/spotlists/internal/services"
	"github.com/desertthunder/spotlists/internal/shared"
)

// MockService is a recording test double for [services.Service].
//
// Catalog maps search queries to track IDs; queries missing from it are reported as not found.
type MockService struct {
	UserID  string
	Catalog map[string]string

	AuthErr        error
	CurrentUserErr error
	CreateErr      error
	SearchErrs     map[string]error // Per-query search failures
	AddErr         error

	mu        sync.Mutex
	AuthCalls int
	Created   []services.Playlist
	Searches  []string
	Added     map[string][]string
	AddCalls  int
	calls     int
}

// NewMockService returns a MockService for user "user123" with the given catalog.
func NewMockService(catalog map[string]string) *MockService {
	return &MockService{UserID: "user123", Catalog: catalog}
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuthCalls++
	return m.AuthErr
}

func (m *MockService) CurrentUser(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.CurrentUserErr != nil {
		return "", m.CurrentUserErr
	}
	return m.UserID, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*services.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if userID != m.UserID {
		return nil, fmt.Errorf("%w: unexpected owner %s", shared.ErrAPIRequest, userID)
	}

	pl := services.Playlist{
		ID:          fmt.Sprintf("pl%d", len(m.Created)+1),
		Name:        name,
		Description: description,
		Public:      public,
	}
	m.Created = append(m.Created, pl)
	return &pl, nil
}

func (m *MockService) SearchTrack(ctx context.Context, query string) (*services.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.Searches = append(m.Searches, query)
	if err, ok := m.SearchErrs[query]; ok {
		return nil, err
	}
	id, ok := m.Catalog[query]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, query)
	}
	return &services.Track{ID: id, Title: query}, nil
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.AddCalls++
	if m.AddErr != nil {
		return m.AddErr
	}
	if m.Added == nil {
		m.Added = map[string][]string{}
	}
	m.Added[playlistID] = append(m.Added[playlistID], trackIDs...)
	return nil
}

// Calls returns the number of remote calls made (authentication excluded).
func (m *MockService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// WriteFile writes content to path or fails the test.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

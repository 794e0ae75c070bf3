package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/spotlists/internal/shared"
	"golang.org/x/oauth2"
)

const defaultCallbackPath = "/callback"

const successPage = `<!DOCTYPE html>
<html>
<head><title>spotlists</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 20vh;">
    <h1 style="color: #1DB954;">Authorization Successful</h1>
    <p>You can close this window and return to the terminal.</p>
</body>
</html>
`

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles the redirect of an authorization code flow.
//
// It accepts one callback only. Later requests are rejected.
type OAuthHandler struct {
	config     *oauth2.Config
	state      string
	path       string
	resultChan chan OAuthResult
	once       sync.Once

	mu          sync.Mutex
	callbackHit bool
}

// NewOAuthHandler creates a handler for config, expecting state on the callback.
// The callback path is taken from config.RedirectURL.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:     config,
		state:      state,
		path:       CallbackPath(config.RedirectURL),
		resultChan: make(chan OAuthResult, 1),
	}
}

// CallbackPath returns the path component of redirectURI, or "/callback".
func CallbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" || u.Path == "/" {
		return defaultCallbackPath
	}
	return u.Path
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP validates state, exchanges the code for a token, and publishes the result.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.Send(OAuthResult{err: fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send publishes result. Only the first call has an effect.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Fail publishes err as the result, ending any [OAuthHandler.Wait].
func (h *OAuthHandler) Fail(err error) {
	h.Send(OAuthResult{err: err})
}

// Wait blocks until the callback completes or ctx is done.
func (h *OAuthHandler) Wait(ctx context.Context) (*oauth2.Token, error) {
	select {
	case result := <-h.resultChan:
		if result.Error() != nil {
			return nil, result.Error()
		}
		if result.Token == nil {
			return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
		}
		return result.Token, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no authorization callback received", shared.ErrTimeout)
		}
		return nil, ctx.Err()
	}
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlists/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows which paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router registers handlers and middleware.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a Handler's routes for GET requests
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// CallbackServer is a short-lived local HTTP server that receives a single redirect.
type CallbackServer struct {
	httpServer *http.Server
	listener   net.Listener
	errs       chan error
	logger     *log.Logger
}

// NewCallbackServer creates a server for handler bound to addr (host:port).
func NewCallbackServer(addr string, handler http.Handler, logger *log.Logger) *CallbackServer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CallbackServer{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		errs:   make(chan error, 1),
		logger: logger,
	}
}

// Start binds the listener and serves in the background.
//
// Bind failures are returned directly. Later serve failures are delivered on [CallbackServer.Errors].
func (s *CallbackServer) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %v", shared.ErrServiceUnavailable, s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		s.logger.Debug("callback server listening", "addr", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before [CallbackServer.Start].
func (s *CallbackServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Errors reports serve failures after a successful start.
func (s *CallbackServer) Errors() <-chan error {
	return s.errs
}

// Shutdown stops the server, waiting for in-flight requests until ctx is done.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/desertthunder/spotlists/internal/server"
	"github.com/desertthunder/spotlists/internal/services"
	"github.com/desertthunder/spotlists/internal/shared"
	"github.com/desertthunder/spotlists/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Auth performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and saves the exchanged token to the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	config, path, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	spotify, err := r.newSpotify(config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("%w; set client_id and client_secret in %s", err, path)
	}

	token, err := r.doOAuth(ctx, config, spotify)
	if err != nil {
		return err
	}

	if err := shared.SaveToken(path, token); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("%s", ui.Success("Authorization successful"))
	r.writePlainln("%s", ui.Success("Token saved to "+path))
	r.writePlainln("%s", ui.Hint("You can now run: spotlists"))
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, config *shared.Config, oauthSrv services.OAuthService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(handler)

	addr := net.JoinHostPort(config.Server.Host, strconv.Itoa(config.Server.Port))
	srv := server.NewCallbackServer(addr, router, r.logger)
	if err := srv.Start(); err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	r.logger.Info("waiting for OAuth callback", "addr", srv.Addr(), "path", handler.Routes()[0])

	waitCtx, cancel := context.WithTimeout(ctx, r.authTimeout)
	defer cancel()

	go func() {
		select {
		case err := <-srv.Errors():
			handler.Fail(fmt.Errorf("%w: callback server: %v", shared.ErrServiceUnavailable, err))
		case <-waitCtx.Done():
		}
	}()

	authURL := oauthSrv.GetAuthURL(state)
	r.writePlainln("→ Opening browser for %s authorization...", oauthSrv.Name())
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlainln("%s", ui.Warning("Could not open browser automatically."))
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlainln("→ Waiting for authorization (%s timeout)...", r.authTimeout)

	token, err := handler.Wait(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	return token, nil
}

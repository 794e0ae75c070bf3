package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/spotlists/internal/definitions"
	"github.com/desertthunder/spotlists/internal/ledger"
	"github.com/desertthunder/spotlists/internal/services"
	"github.com/desertthunder/spotlists/internal/shared"
	"github.com/desertthunder/spotlists/internal/tasks"
	"github.com/desertthunder/spotlists/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Run creates a playlist for every definition missing from the dedup log and prints a summary.
//
// Credentials are only checked once there is something to create.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config, path, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "run", shared.GenerateID()[:8])
	opts := tasks.EngineOpts{
		Ledger:      ledger.New(config.Playlists.LogPath, logger),
		Definitions: definitions.NewLoader(config.Playlists.Dir, logger),
		Output:      r.output,
		Logger:      logger,
		SearchRate:  config.Playlists.SearchRate,
	}

	if cmd.Bool("dry-run") {
		return r.dryRun(tasks.NewPlaylistEngine(opts))
	}

	opts.Service, opts.Authorize = r.connect(config, path)
	engine := tasks.NewPlaylistEngine(opts)

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			logger.Debug(update.Message, "phase", update.Phase.String())
		}
	}()

	result, err := engine.Run(ctx, progress)
	close(progress)
	<-done

	if err != nil {
		if result != nil && len(result.Playlists) > 0 {
			r.writePlainln("%s", ui.Failure("Run stopped early. These playlists were created and recorded:"))
			ui.RenderSummary(r.output, result)
		}
		return err
	}

	logger.Info("run complete", "playlists", len(result.Playlists), "tracks", result.Added())
	return ui.RenderSummary(r.output, result)
}

// connect returns the service for a run and the hook that authorizes it.
// A client that cannot be built surfaces its error from the hook, after the pending check.
func (r *Runner) connect(config *shared.Config, path string) (services.Service, tasks.Authorizer) {
	if r.service != nil {
		return r.service, func(ctx context.Context) error {
			return r.service.Authenticate(ctx, tokenCredentials(config.Credentials.Spotify))
		}
	}

	spotify, err := r.newSpotify(config.Credentials.Spotify.Map())
	if err != nil {
		return nil, func(context.Context) error {
			return fmt.Errorf("%w; set SPOTIPY_CLIENT_ID and SPOTIPY_CLIENT_SECRET or [credentials.spotify] in %s", err, path)
		}
	}

	spotify.SetTokenRefreshCallback(func(token *oauth2.Token) {
		if err := config.Credentials.Spotify.Update(token); err != nil {
			r.logger.Warn("failed to update token", "error", err)
			return
		}
		r.saveToken(path, token)
	})

	return spotify, func(ctx context.Context) error {
		if err := spotify.OAuthenticate(ctx, config.Credentials.Spotify.Token()); err != nil {
			if errors.Is(err, shared.ErrNotAuthenticated) {
				return fmt.Errorf("%w; run `spotlists auth` first", err)
			}
			return err
		}
		return nil
	}
}

func tokenCredentials(s shared.SpotifyConfig) map[string]string {
	creds := s.Map()
	creds["access_token"] = s.AccessToken
	creds["refresh_token"] = s.RefreshToken
	return creds
}

func (r *Runner) dryRun(engine *tasks.PlaylistEngine) error {
	defs, err := engine.Pending()
	if err != nil {
		return err
	}

	if len(defs) == 0 {
		return r.writePlainln("%s", tasks.NoNewPlaylistsMessage)
	}

	for _, def := range defs {
		if err := r.writePlainln("Would create playlist: %s (%q, %d tracks)", def.Slug, def.Name(), len(def.Tracks)); err != nil {
			return err
		}
	}
	return nil
}

// List prints every definition with its track count and whether the dedup log holds it.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	config, _, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	created := ledger.New(config.Playlists.LogPath, r.logger).Load()
	defs, err := definitions.NewLoader(config.Playlists.Dir, r.logger).All()
	if err != nil {
		return err
	}

	r.logger.Debug("listing definitions", "dir", config.Playlists.Dir, "count", len(defs))
	if err := r.writePlainln("%s", ui.Title("Definitions in "+config.Playlists.Dir)); err != nil {
		return err
	}
	return ui.RenderDefinitions(r.output, defs, created)
}

// ConfigInit writes the example config to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := configPath(cmd)
	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlainln("%s", ui.Success("Config written to "+path))
}

package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlists/internal/definitions"
	"github.com/desertthunder/spotlists/internal/ledger"
	"github.com/desertthunder/spotlists/internal/services"
	"github.com/desertthunder/spotlists/internal/shared"
	"golang.org/x/time/rate"
)

// NoNewPlaylistsMessage is printed when every definition is already recorded.
const NoNewPlaylistsMessage = "Script executed, no new playlists found."

// BuildResult is the outcome of creating one playlist.
type BuildResult struct {
	Slug       string   // Definition slug
	Name       string   // Display name used remotely and in the log
	PlaylistID string   // Remote playlist ID
	Queries    int      // Number of track queries in the definition
	Added      int      // Tracks added to the playlist
	Unresolved []string // Queries with no search result, in definition order
}

// RunResult contains the outcome of every playlist built in a run.
type RunResult struct {
	Playlists []BuildResult
}

// Added returns the total number of tracks added across the run.
func (r *RunResult) Added() int {
	total := 0
	for _, p := range r.Playlists {
		total += p.Added
	}
	return total
}

// Authorizer prepares the remote service before the first remote call of a run.
type Authorizer func(ctx context.Context) error

// EngineOpts contains dependencies for a [PlaylistEngine].
type EngineOpts struct {
	Service     services.Service
	Ledger      *ledger.Ledger
	Definitions *definitions.Loader
	Output      io.Writer   // Human-readable run report (default: os.Stdout)
	Logger      *log.Logger // Diagnostics
	SearchRate  float64     // Track searches per second, 0 for unlimited
	Authorize   Authorizer  // Optional, called once when there is work to do
}

// PlaylistEngine creates playlists for definitions that are not yet in the dedup log.
// Runs are strictly sequential: one definition, and one remote call, at a time.
type PlaylistEngine struct {
	service     services.Service
	ledger      *ledger.Ledger
	definitions *definitions.Loader
	output      io.Writer
	logger      *log.Logger
	limiter     *rate.Limiter
	authorize   Authorizer
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided dependencies.
func NewPlaylistEngine(opts EngineOpts) *PlaylistEngine {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.SearchRate > 0 {
		limit = rate.Limit(opts.SearchRate)
	}

	return &PlaylistEngine{
		service:     opts.Service,
		ledger:      opts.Ledger,
		definitions: opts.Definitions,
		output:      opts.Output,
		logger:      opts.Logger,
		limiter:     rate.NewLimiter(limit, 1),
		authorize:   opts.Authorize,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Pending loads the dedup log and returns the definitions not yet created.
func (e *PlaylistEngine) Pending() ([]definitions.Definition, error) {
	if e.ledger == nil || e.definitions == nil {
		return nil, fmt.Errorf("%w: ledger and definitions loader are required", shared.ErrInvalidConfig)
	}

	created := e.ledger.Load()
	defs, err := e.definitions.New(created)
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// Run creates a playlist for every pending definition, in definition order.
//
// With nothing pending it prints [NoNewPlaylistsMessage] and makes no remote calls.
// The first error aborts the run; playlists built before it stay created and recorded.
func (e *PlaylistEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	result := &RunResult{}

	defs, err := e.Pending()
	if err != nil {
		return result, err
	}

	e.sendProgress(progress, loadedDefinitionsUpdate(len(defs)))

	if len(defs) == 0 {
		fmt.Fprintln(e.output, NoNewPlaylistsMessage)
		return result, nil
	}

	if e.authorize != nil {
		if err := e.authorize(ctx); err != nil {
			return result, err
		}
	}

	for i, def := range defs {
		e.sendProgress(progress, createPlaylistUpdate(i+1, len(defs), def.Name()))
		fmt.Fprintf(e.output, "Creating playlist: %s\n", def.Slug)

		built, err := e.Build(ctx, def.Name(), def.Description(), def.Tracks, progress)
		if built != nil {
			built.Slug = def.Slug
		}
		if err != nil {
			return result, fmt.Errorf("playlist %s: %w", def.Slug, err)
		}
		result.Playlists = append(result.Playlists, *built)
	}

	return result, nil
}

// Build creates a private playlist, fills it with the first search result of each query,
// reports the outcome, and records name in the dedup log.
//
// Queries without a result are reported as unresolved. If nothing resolves the playlist
// stays created and empty and is still recorded. No remote call is retried.
func (e *PlaylistEngine) Build(ctx context.Context, name, description string, queries []string, progress chan<- ProgressUpdate) (*BuildResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	logger := shared.WithLogger(e.logger, "playlist", name)

	userID, err := e.service.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	playlist, err := e.service.CreatePlaylist(ctx, userID, name, description, false)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, createdPlaylistUpdate(1, 1, playlist))
	logger.Info("created playlist", "id", playlist.ID)

	result := &BuildResult{
		Name:       name,
		PlaylistID: playlist.ID,
		Queries:    len(queries),
	}

	trackIDs := make([]string, 0, len(queries))
	for i, query := range queries {
		if err := e.limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("search %q: %w", query, err)
		}

		track, err := e.service.SearchTrack(ctx, query)
		switch {
		case errors.Is(err, shared.ErrTrackNotFound):
			result.Unresolved = append(result.Unresolved, query)
			e.sendProgress(progress, searchTrackUpdate(i+1, len(queries), query, false))
			logger.Debug("track not found", "query", query)
			continue
		case err != nil:
			return result, err
		}

		trackIDs = append(trackIDs, track.ID)
		e.sendProgress(progress, searchTrackUpdate(i+1, len(queries), query, true))
	}

	if len(trackIDs) > 0 {
		e.sendProgress(progress, addTracksUpdate(len(trackIDs), playlist.ID))
		if err := e.service.AddTracks(ctx, playlist.ID, trackIDs); err != nil {
			return result, err
		}
	}
	result.Added = len(trackIDs)

	e.report(result)

	if e.ledger != nil {
		if err := e.ledger.Append(name); err != nil {
			return result, fmt.Errorf("playlist %s exists remotely but was not recorded: %w", playlist.ID, err)
		}
		e.sendProgress(progress, recordPlaylistUpdate(name, e.ledger.Path()))
	}

	return result, nil
}

func (e *PlaylistEngine) report(r *BuildResult) {
	fmt.Fprintf(e.output, "Playlist '%s' created successfully with %d tracks.\n", r.Name, r.Added)
	if len(r.Unresolved) == 0 {
		return
	}
	fmt.Fprintln(e.output, "The following tracks were not found:")
	for _, query := range r.Unresolved {
		fmt.Fprintf(e.output, "- %s\n", query)
	}
}

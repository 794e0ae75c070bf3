package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlists/internal/services"
	"github.com/desertthunder/spotlists/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const (
	defaultConfigPath  = "config.toml"
	defaultAuthTimeout = 2 * time.Minute
)

// SpotifyFactory builds the Spotify client from configured credentials.
type SpotifyFactory func(credentials map[string]string) (*services.SpotifyService, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	service     services.Service
	newSpotify  SpotifyFactory
	openBrowser func(string) error
	authTimeout time.Duration
	logger      *log.Logger
	output      io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config     // Used instead of reading --config when set
	Service     services.Service   // Used instead of building a Spotify client when set
	NewSpotify  SpotifyFactory     // Defaults to [services.NewSpotifyService]
	OpenBrowser func(string) error // Defaults to [shared.OpenBrowser]
	AuthTimeout time.Duration      // How long `auth` waits for the callback
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided options
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NewSpotify == nil {
		opts.NewSpotify = func(credentials map[string]string) (*services.SpotifyService, error) {
			return services.NewSpotifyService(credentials)
		}
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = defaultAuthTimeout
	}

	return &Runner{
		config:      opts.Config,
		service:     opts.Service,
		newSpotify:  opts.NewSpotify,
		openBrowser: opts.OpenBrowser,
		authTimeout: opts.AuthTimeout,
		logger:      opts.Logger,
		output:      opts.Output,
	}
}

// loadConfig returns the injected config, or resolves the file named by --config with
// .env and environment overrides. Log verbosity is applied from the result.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, string, error) {
	path := configPath(cmd)

	config := r.config
	if config == nil {
		var err error
		if config, err = shared.ResolveConfig(path); err != nil {
			return nil, path, err
		}
	}

	level := shared.ParseLogLevel(config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return config, path, nil
}

// saveToken writes a refreshed token to the config file when the file already exists.
func (r *Runner) saveToken(path string, token *oauth2.Token) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug("config file absent, refreshed token not saved", "path", path)
		return
	}
	if err := shared.SaveToken(path, token); err != nil {
		r.logger.Warn("failed to save refreshed token", "path", path, "error", err)
		return
	}
	r.logger.Debug("saved refreshed token", "path", path)
}

func configPath(cmd *cli.Command) string {
	if path := cmd.String("config"); path != "" {
		return path
	}
	return defaultConfigPath
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}

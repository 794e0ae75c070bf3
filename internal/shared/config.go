package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Playlists   PlaylistsConfig   `toml:"playlists"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and the last saved OAuth token.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenType    string    `toml:"token_type"`
	Expiry       time.Time `toml:"expiry"`
}

// PlaylistsConfig locates playlist definitions and the dedup log.
type PlaylistsConfig struct {
	Dir        string  `toml:"dir"`
	LogPath    string  `toml:"log_path"`
	SearchRate float64 `toml:"search_rate"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `toml:"level"`
}

// Environment variables that override file credentials.
//
// The SPOTIPY_* names match the variables commonly kept in a .env file for Spotify tooling.
var credentialEnv = []struct {
	keys []string
	set  func(*SpotifyConfig, string)
}{
	{keys: []string{"SPOTIPY_CLIENT_ID", "SPOTIFY_ID"}, set: func(s *SpotifyConfig, v string) { s.ClientID = v }},
	{keys: []string{"SPOTIPY_CLIENT_SECRET", "SPOTIFY_SECRET"}, set: func(s *SpotifyConfig, v string) { s.ClientSecret = v }},
	{keys: []string{"SPOTIPY_REDIRECT_URI"}, set: func(s *SpotifyConfig, v string) { s.RedirectURI = v }},
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig loads the config at path when it exists and falls back to defaults otherwise,
// then applies .env and environment overrides.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	if err := config.ApplyEnv(".env"); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv loads dotenv (if the file exists) and overrides credentials from the environment.
//
// Variables already present in the process environment win over the dotenv file.
func (c *Config) ApplyEnv(dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, dotenv, err)
		}
	}

	for _, e := range credentialEnv {
		for _, key := range e.keys {
			if v := os.Getenv(key); v != "" {
				e.set(&c.Credentials.Spotify, v)
				break
			}
		}
	}
	return nil
}

// SaveConfig writes the configuration to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveToken writes token into the config file at path and leaves every other setting as the file has it.
//
// The file is decoded again rather than saved from a resolved [Config], so values merged in from
// .env or the environment are never written. A missing file is created from the defaults.
func SaveToken(path string, token *oauth2.Token) error {
	config, err := LoadConfig(path)
	if errors.Is(err, ErrMissingConfig) {
		config, err = DefaultConfig(), nil
	}
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return err
	}
	return SaveConfig(path, config)
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Map returns the credentials in the form accepted by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Token returns the saved OAuth token, or nil if no token has been saved.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

// Update stores token in the config, keeping the previous refresh token when the new one omits it.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}

	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenType = token.TokenType
	s.Expiry = token.Expiry
	return nil
}

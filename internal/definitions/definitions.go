// package definitions discovers playlist definitions from a directory of TOML files.
//
// A definition file is named after the playlist slug and holds one array keyed by the upper-cased slug:
//
//	# road_trip.toml
//	ROAD_TRIP = [
//	  "Fleetwood Mac - Go Your Own Way",
//	  "Tom Petty - Runnin' Down a Dream",
//	]
//
// Adding a playlist means adding a file.
package definitions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlists/internal/ledger"
	"github.com/desertthunder/spotlists/internal/shared"
)

const fileExt = ".toml"

// Definition is a named, ordered list of track search queries for one playlist.
type Definition struct {
	Slug   string
	Tracks []string
	Path   string
}

// Name returns the display name used for the remote playlist.
func (d Definition) Name() string {
	return ledger.DisplayName(d.Slug)
}

// Description returns the remote playlist description.
func (d Definition) Description() string {
	return Description(d.Slug)
}

// Description builds the playlist description for slug.
func Description(slug string) string {
	return fmt.Sprintf("A curated playlist of %s tracks", strings.ReplaceAll(slug, "_", " "))
}

// Slug derives a definition slug from its file name.
func Slug(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), fileExt)
}

// Key returns the TOML key a definition file must define for slug.
func Key(slug string) string {
	return strings.ToUpper(slug)
}

// Loader reads definitions from a directory.
type Loader struct {
	dir    string
	logger *log.Logger
}

// NewLoader creates a Loader for dir.
func NewLoader(dir string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Loader{dir: dir, logger: logger}
}

// Dir returns the definitions directory.
func (l *Loader) Dir() string {
	return l.dir
}

// All loads every definition in the directory, in file name order.
func (l *Loader) All() ([]Definition, error) {
	return l.load(nil)
}

// New loads the definitions not yet recorded in created, in file name order.
//
// Files for already-created playlists are skipped without being parsed.
// The first malformed definition aborts loading with [shared.ErrInvalidDefinition].
func (l *Loader) New(created ledger.Set) ([]Definition, error) {
	return l.load(created)
}

func (l *Loader) load(created ledger.Set) ([]Definition, error) {
	paths, err := l.files()
	if err != nil {
		return nil, err
	}

	defs := make([]Definition, 0, len(paths))
	for _, path := range paths {
		slug := Slug(path)
		if created != nil && created.Created(slug) {
			l.logger.Debug("skipping created playlist", "slug", slug)
			continue
		}

		def, err := Parse(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}

	return defs, nil
}

// files lists candidate definition files. os.ReadDir returns entries sorted by name.
func (l *Loader) files() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: definitions directory %s", shared.ErrMissingConfig, l.dir)
		}
		return nil, fmt.Errorf("failed to read definitions directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != fileExt {
			continue
		}
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		paths = append(paths, filepath.Join(l.dir, name))
	}
	return paths, nil
}

// Parse reads one definition file.
func Parse(path string) (*Definition, error) {
	slug := Slug(path)
	key := Key(slug)

	var doc map[string]any
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidDefinition, path, err)
	}

	raw, ok := doc[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing %s", shared.ErrInvalidDefinition, path, key)
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %s must be an array of strings", shared.ErrInvalidDefinition, path, key)
	}

	tracks := make([]string, 0, len(items))
	for i, item := range items {
		track, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %s[%d] is not a string", shared.ErrInvalidDefinition, path, key, i)
		}
		tracks = append(tracks, track)
	}

	return &Definition{Slug: slug, Tracks: tracks, Path: path}, nil
}

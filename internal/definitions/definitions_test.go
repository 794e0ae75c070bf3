package definitions

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/desertthunder/spotlists/internal/ledger"
	"github.com/desertthunder/spotlists/internal/shared"
)

func writeDef(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func newLoader(dir string) *Loader {
	return NewLoader(dir, shared.NewLogger(&bytes.Buffer{}))
}

func TestNames(t *testing.T) {
	tc := []struct {
		file        string
		slug        string
		key         string
		name        string
		description string
	}{
		{
			file:        "road_trip.toml",
			slug:        "road_trip",
			key:         "ROAD_TRIP",
			name:        "Road Trip",
			description: "A curated playlist of road trip tracks",
		},
		{
			file:        "/defs/My_Playlist.toml",
			slug:        "My_Playlist",
			key:         "MY_PLAYLIST",
			name:        "My Playlist",
			description: "A curated playlist of My Playlist tracks",
		},
	}

	for _, tt := range tc {
		t.Run(tt.file, func(t *testing.T) {
			def := Definition{Slug: Slug(tt.file)}
			if def.Slug != tt.slug {
				t.Errorf("Slug() = %q, want %q", def.Slug, tt.slug)
			}
			if got := Key(def.Slug); got != tt.key {
				t.Errorf("Key() = %q, want %q", got, tt.key)
			}
			if got := def.Name(); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
			if got := def.Description(); got != tt.description {
				t.Errorf("Description() = %q, want %q", got, tt.description)
			}
		})
	}
}

func TestParse(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid definition keeps order", func(t *testing.T) {
		path := writeDef(t, dir, "road_trip.toml", `ROAD_TRIP = [
  "Song B",
  "Song A",
  "Song C",
]
`)
		def, err := Parse(path)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		want := []string{"Song B", "Song A", "Song C"}
		if !reflect.DeepEqual(def.Tracks, want) {
			t.Errorf("Tracks = %v, want %v", def.Tracks, want)
		}
		if def.Slug != "road_trip" || def.Path != path {
			t.Errorf("unexpected definition %+v", def)
		}
	})

	t.Run("empty array", func(t *testing.T) {
		path := writeDef(t, dir, "empty.toml", "EMPTY = []\n")
		def, err := Parse(path)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(def.Tracks) != 0 {
			t.Errorf("expected no tracks, got %v", def.Tracks)
		}
	})

	invalid := []struct {
		name    string
		file    string
		content string
	}{
		{name: "missing key", file: "focus.toml", content: "tracks = [\"a\"]\n"},
		{name: "wrong key case", file: "chill.toml", content: "chill = [\"a\"]\n"},
		{name: "not an array", file: "gym.toml", content: "GYM = \"a\"\n"},
		{name: "non-string item", file: "mixed.toml", content: "MIXED = [1, 2]\n"},
		{name: "bad toml", file: "broken.toml", content: "BROKEN = [\n"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDef(t, dir, tt.file, tt.content)
			if _, err := Parse(path); !errors.Is(err, shared.ErrInvalidDefinition) {
				t.Errorf("expected ErrInvalidDefinition, got %v", err)
			}
		})
	}
}

func TestLoader(t *testing.T) {
	t.Run("All returns sorted definitions and ignores other files", func(t *testing.T) {
		dir := t.TempDir()
		writeDef(t, dir, "zydeco.toml", "ZYDECO = [\"z\"]\n")
		writeDef(t, dir, "ambient.toml", "AMBIENT = [\"a\"]\n")
		writeDef(t, dir, "README.md", "# notes\n")
		writeDef(t, dir, "_template.toml", "not parsed\n")
		writeDef(t, dir, ".hidden.toml", "not parsed\n")
		if err := os.Mkdir(filepath.Join(dir, "nested.toml"), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}

		defs, err := newLoader(dir).All()
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}

		var slugs []string
		for _, d := range defs {
			slugs = append(slugs, d.Slug)
		}
		if want := []string{"ambient", "zydeco"}; !reflect.DeepEqual(slugs, want) {
			t.Errorf("slugs = %v, want %v", slugs, want)
		}
	})

	t.Run("New skips created definitions without parsing them", func(t *testing.T) {
		dir := t.TempDir()
		writeDef(t, dir, "my_playlist.toml", "this file is malformed but already created\n")
		writeDef(t, dir, "fresh.toml", "FRESH = [\"Song A\"]\n")

		created := ledger.Set{}
		created.Add("my_playlist")
		created.Add("My Playlist")

		defs, err := newLoader(dir).New(created)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if len(defs) != 1 || defs[0].Slug != "fresh" {
			t.Errorf("expected only fresh, got %+v", defs)
		}
	})

	t.Run("New recognizes mixed case file names", func(t *testing.T) {
		dir := t.TempDir()
		writeDef(t, dir, "My_Playlist.toml", "MY_PLAYLIST = [\"a\"]\n")

		created := ledger.Set{}
		created.Add("my_playlist")

		defs, err := newLoader(dir).New(created)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if len(defs) != 0 {
			t.Errorf("expected My_Playlist to be recognized, got %+v", defs)
		}
	})

	t.Run("malformed new definition aborts", func(t *testing.T) {
		dir := t.TempDir()
		writeDef(t, dir, "alpha.toml", "ALPHA = [\"a\"]\n")
		writeDef(t, dir, "beta.toml", "WRONG = [\"b\"]\n")

		defs, err := newLoader(dir).New(ledger.Set{})
		if !errors.Is(err, shared.ErrInvalidDefinition) {
			t.Errorf("expected ErrInvalidDefinition, got %v", err)
		}
		if defs != nil {
			t.Errorf("expected no definitions on error, got %+v", defs)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := newLoader(filepath.Join(t.TempDir(), "nope")).All()
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})
}

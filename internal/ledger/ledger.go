// package ledger records which playlists were already created in an append-only text log.
//
// Each created playlist adds two lines: the name as given and its title-cased form.
// Loading widens every stored line with a lowercase/underscore variant, so both slug-style
// ("road_trip") and display-style ("Road Trip") names match later runs.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlists/internal/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Set holds playlist names considered already created.
type Set map[string]struct{}

// Add inserts name.
func (s Set) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is present verbatim.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Created reports whether the definition with this slug was already created,
// matching either its lowercased slug or its display name.
func (s Set) Created(slug string) bool {
	return s.Has(strings.ToLower(slug)) || s.Has(DisplayName(slug))
}

// Normalize returns the slug form of a stored name: spaces become underscores, then lowercase.
func Normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// DisplayName turns a slug into a human title: underscores become spaces, then each word is title-cased.
func DisplayName(slug string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(slug, "_", " "))
}

// Ledger is a handle on the dedup log file. It is not safe for concurrent runs.
type Ledger struct {
	path   string
	logger *log.Logger
}

// New creates a Ledger for the log at path.
func New(path string, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Ledger{path: path, logger: logger}
}

// Path returns the log file location.
func (l *Ledger) Path() string {
	return l.path
}

// Load reads the log into a [Set].
//
// A missing file yields an empty set. Any other read failure is logged as a warning and also
// yields an empty set, so the run proceeds as if nothing had been created.
func (l *Ledger) Load() Set {
	created := Set{}

	f, err := os.Open(l.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("error reading created playlists log", "path", l.path, "error", err)
		}
		return created
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if name := strings.TrimSpace(line); name != "" {
			created.Add(name)
			created.Add(Normalize(name))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			l.logger.Warn("error reading created playlists log", "path", l.path, "error", err)
			return Set{}
		}
	}

	l.logger.Debug("loaded created playlists", "path", l.path, "entries", len(created))
	return created
}

// Append records name as created by writing it and its display form as two new lines.
//
// The file is opened in append mode, written, and closed on every call. Entries are never rewritten.
func (l *Ledger) Append(name string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLedgerWrite, err)
	}

	if _, err := fmt.Fprintf(f, "%s\n%s\n", name, DisplayName(name)); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", shared.ErrLedgerWrite, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrLedgerWrite, err)
	}
	return nil
}

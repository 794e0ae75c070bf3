package tasks

import (
	"fmt"

	"github.com/desertthunder/spotlists/internal/services"
)

// ProgressUpdate represents a progress event during a run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LoadDefinitions Phase = iota
	CreatePlaylist
	SearchTracks
	AddTracks
	RecordPlaylist
)

func (p Phase) String() string {
	switch p {
	case LoadDefinitions:
		return "load_definitions"
	case CreatePlaylist:
		return "create_playlist"
	case SearchTracks:
		return "search_tracks"
	case AddTracks:
		return "add_tracks"
	case RecordPlaylist:
		return "record_playlist"
	default:
		return ""
	}
}

func loadedDefinitionsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadDefinitions,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d new playlist definitions", count),
	}
}

func createPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Creating playlist %s...", step, total, name),
	}
}

func createdPlaylistUpdate(step, total int, pl *services.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func searchTrackUpdate(step, total int, query string, found bool) ProgressUpdate {
	mark := "✓"
	if !found {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, query),
	}
}

func addTracksUpdate(count int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s...", count, playlistID),
	}
}

func recordPlaylistUpdate(name, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recorded %s in %s", name, path),
	}
}

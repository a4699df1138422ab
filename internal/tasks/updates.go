package tasks

import "fmt"

// ProgressUpdate represents a progress event during a backup run.
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
	ResolveUser Phase = iota
	FetchPlaylists
	WriteIndex
	ExportPlaylist
	FetchFeatures
	Complete
)

func (p Phase) String() string {
	switch p {
	case ResolveUser:
		return "resolve_user"
	case FetchPlaylists:
		return "fetch_playlists"
	case WriteIndex:
		return "write_index"
	case ExportPlaylist:
		return "export_playlist"
	case FetchFeatures:
		return "fetch_features"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func resolveUserUpdate(user string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveUser,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Looking up user %s...", user),
	}
}

func fetchPlaylistsUpdate(user string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlists for %s...", user),
	}
}

func writeIndexUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteIndex,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d playlists, writing index...", count),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func fetchFeaturesUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFeatures,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching audio features: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, name, trackCount),
	}
}

func completedUpdate(result *BackupResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Backup complete: %d playlists, %d tracks", result.PlaylistCount, result.TrackCount),
		Data:    result,
	}
}

// package formatter renders playlist data to the CSV files that make up a backup
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"spotback/internal/models"
)

// IndexFilename is the reserved name of the playlist index CSV within a
// backup directory. Playlist track files must never use this name.
const IndexFilename = "playlists.csv"

// trackHeaders is the column set for per-playlist track CSVs. The basic
// columns always appear; feature columns are appended when audio features
// were fetched for the export.
var trackHeaders = []string{
	"added_at", "uri", "url", "name", "artist", "album", "album_date",
	"duration", "popularity",
}

var featureHeaders = []string{
	"tempo", "time_signature", "key", "mode", "danceability", "energy",
	"speechiness", "acousticness", "instrumentalness", "liveness",
	"loudness", "valence",
}

// indexHeaders is the column set for the playlist index CSV.
var indexHeaders = []string{
	"name", "description", "uri", "url", "owner_name", "owner_uri",
	"track_count", "public",
}

// ExportToCSV renders a playlist's tracks as CSV.
//
// Output is deterministic for a given export: stable column order, rows in
// track order, no timestamps. Feature columns are included only when
// withFeatures is set; tracks lacking features get empty feature cells.
func ExportToCSV(export *models.PlaylistExport, withFeatures bool) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := trackHeaders
	if withFeatures {
		headers = append(append([]string{}, trackHeaders...), featureHeaders...)
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			track.AddedAt,
			track.URI,
			track.URL,
			track.Name,
			track.ArtistList(),
			track.Album,
			track.AlbumDate,
			strconv.Itoa(track.DurationMS),
			strconv.Itoa(track.Popularity),
		}
		if withFeatures {
			record = append(record, featureRecord(track.Features)...)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// featureRecord renders audio feature cells, empty when features are absent.
func featureRecord(af *models.AudioFeatures) []string {
	if af == nil {
		return make([]string, len(featureHeaders))
	}
	return []string{
		formatFloat(af.Tempo),
		strconv.Itoa(af.TimeSignature),
		strconv.Itoa(af.Key),
		strconv.Itoa(af.Mode),
		formatFloat(af.Danceability),
		formatFloat(af.Energy),
		formatFloat(af.Speechiness),
		formatFloat(af.Acousticness),
		formatFloat(af.Instrumentalness),
		formatFloat(af.Liveness),
		formatFloat(af.Loudness),
		formatFloat(af.Valence),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ExportIndexToCSV renders the playlist index as CSV, one row per playlist
// in listing order.
func ExportIndexToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(indexHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, pl := range playlists {
		record := []string{
			pl.Name,
			pl.Description,
			pl.URI,
			pl.URL,
			pl.OwnerName,
			pl.OwnerURI,
			strconv.Itoa(pl.TrackCount),
			strconv.FormatBool(pl.Public),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteCSVExport writes a playlist's track CSV to the given path,
// overwriting any existing file.
func WriteCSVExport(export *models.PlaylistExport, path string, withFeatures bool) error {
	data, err := ExportToCSV(export, withFeatures)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}

	return nil
}

// WriteIndexCSV writes the playlist index CSV to the given path,
// overwriting any existing file.
func WriteIndexCSV(playlists []models.Playlist, path string) error {
	data, err := ExportIndexToCSV(playlists)
	if err != nil {
		return fmt.Errorf("failed to generate index CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}

	return nil
}

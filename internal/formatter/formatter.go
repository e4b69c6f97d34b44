// package formatter renders tracks and playlists as plain text, JSON, CSV or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/desertthunder/waves/internal/models"
	"github.com/desertthunder/waves/internal/shared"
)

// Format is an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts a format name or its short alias ("txt", "md").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// FormatTime renders seconds as m:ss.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatMillis renders milliseconds as m:ss.
func FormatMillis(ms int) string {
	return FormatTime(ms / 1000)
}

// ToJSON marshals v with two-space indentation.
func ToJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// TracksToCSV converts tracks to CSV with columns: ID, URI, Title, Artist, Album, Duration, Preview, Demo
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "URI", "Title", "Artist", "Album", "Duration", "Preview", "Demo"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.URI,
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(track.Duration),
			track.Preview(),
			strconv.FormatBool(track.Demo),
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

// TracksToMarkdown renders tracks as a numbered Markdown list under title.
func TracksToMarkdown(title string, tracks []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	for i, track := range tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]%s\n", i+1, track.Artist, track.Title, albumPart, FormatTime(track.Duration), trackTags(track))
	}

	return buf.Bytes()
}

// TracksToText renders tracks as a numbered plain-text list under title.
func TracksToText(title string, tracks []models.Track) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))

	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]%s\n", i+1, track.Artist, track.Title, FormatTime(track.Duration), trackTags(track))
	}

	return buf.Bytes()
}

// PlaylistsToCSV converts playlists to CSV with columns: ID, Name, Tracks, Owner
func PlaylistsToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Tracks", "Owner"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, p := range playlists {
		if err := writer.Write([]string{p.ID, p.Name, strconv.Itoa(p.TrackCount), p.Owner}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// PlaylistsToMarkdown renders playlists as a Markdown table.
func PlaylistsToMarkdown(playlists []models.Playlist) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Your Playlists\n\n")
	buf.WriteString("| Name | Tracks | Owner | ID |\n")
	buf.WriteString("|------|--------|-------|----|\n")
	for _, p := range playlists {
		fmt.Fprintf(&buf, "| %s | %d | %s | %s |\n", escapeCell(p.Name), p.TrackCount, escapeCell(p.Owner), p.ID)
	}
	return buf.Bytes()
}

// PlaylistsToText renders playlists one per line.
func PlaylistsToText(playlists []models.Playlist) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlists: %d\n\n", len(playlists))
	for i, p := range playlists {
		fmt.Fprintf(&buf, "%d. %s (%d tracks) [%s]\n", i+1, p.Name, p.TrackCount, p.ID)
	}
	return buf.Bytes()
}

// WriteTracks encodes tracks in format to w.
func WriteTracks(w io.Writer, format Format, title string, tracks []models.Track) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatJSON:
		data, err = ToJSON(tracks)
	case FormatCSV:
		data, err = TracksToCSV(tracks)
	case FormatMarkdown:
		data = TracksToMarkdown(title, tracks)
	default:
		data = TracksToText(title, tracks)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

// WritePlaylists encodes playlists in format to w.
func WritePlaylists(w io.Writer, format Format, playlists []models.Playlist) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatJSON:
		data, err = ToJSON(playlists)
	case FormatCSV:
		data, err = PlaylistsToCSV(playlists)
	case FormatMarkdown:
		data = PlaylistsToMarkdown(playlists)
	default:
		data = PlaylistsToText(playlists)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

func trackTags(t models.Track) string {
	var tags []string
	if t.Demo {
		tags = append(tags, "demo")
	}
	if !t.HasPreview() {
		tags = append(tags, "no preview")
	}
	if len(tags) == 0 {
		return ""
	}
	return " (" + strings.Join(tags, ", ") + ")"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

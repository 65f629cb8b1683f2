// package formatter provides functions to export a liked-songs library to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// Format is an export format name.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, CSV, Markdown, Text}

// DefaultTitle heads Markdown and text exports.
const DefaultTitle = "Liked Songs"

// ParseFormat accepts a format name case-insensitively ("md" and "text" are aliases).
func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (must be json, csv, markdown or txt)", shared.ErrInvalidArgument, v)
	}
}

// Extension is the file extension used by [WriteExport] for f.
func (f Format) Extension() string {
	if f == Markdown {
		return "md"
	}
	return string(f)
}

// Export renders items in format.
func Export(items []models.Item, format Format) ([]byte, error) {
	switch format {
	case JSON:
		return ExportToJSON(items)
	case CSV:
		return ExportToCSV(items)
	case Markdown:
		return ExportToMarkdown(DefaultTitle, items)
	case Text:
		return ExportToText(DefaultTitle, items)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToJSON renders items as an indented JSON array. An empty library is "[]".
func ExportToJSON(items []models.Item) ([]byte, error) {
	if items == nil {
		items = []models.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts items to CSV with columns: ID, Name, Artists, Album, URI
func ExportToCSV(items []models.Item) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Artists", "Album", "URI"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		if err := writer.Write([]string{item.ID, item.Name, item.ArtistNames(), item.Album, item.URI}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders a numbered Markdown list under title.
func ExportToMarkdown(title string, items []models.Item) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(items))

	buf.WriteString("## Tracks\n\n")
	for i, item := range items {
		albumPart := ""
		if item.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", item.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, item.ArtistNames(), item.Name, albumPart)
	}
	return buf.Bytes(), nil
}

// ExportToText renders a plain numbered list under title.
func ExportToText(title string, items []models.Item) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(items))

	for i, item := range items {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, item.ArtistNames(), item.Name)
	}
	return buf.Bytes(), nil
}

// WriteExport renders items in format and writes them to path.
//
// Defaults to liked_songs.{ext} as the filename. Returns the path written.
func WriteExport(items []models.Item, format Format, path string) (string, error) {
	data, err := Export(items, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "liked_songs." + format.Extension()
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s export: %w", format, err)
	}
	return path, nil
}

// package formatter renders catalog items as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Formats lists the supported formats in help-text order.
var Formats = []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown}

// ParseFormat converts a flag value ("md" is accepted for markdown) into a [Format].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case FormatJSON, FormatCSV, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Render dispatches to the exporter for format. title heads the Markdown and text outputs.
func Render(format Format, title string, items []models.CatalogItem) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(items, true)
	case FormatCSV:
		return ToCSV(items)
	case FormatMarkdown:
		return ToMarkdown(title, items)
	case FormatText:
		return ToText(title, items)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ToJSON encodes items as a JSON array. A nil slice is written as [].
func ToJSON(items []models.CatalogItem, pretty bool) ([]byte, error) {
	if items == nil {
		items = []models.CatalogItem{}
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(items, "", "  ")
	} else {
		data, err = json.Marshal(items)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ToCSV converts items to CSV with columns: ID, Title, Artist, Album, Kind, Source, Image, URL
func ToCSV(items []models.CatalogItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Kind", "Source", "Image", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.ID,
			item.Title,
			item.Artist,
			item.Album,
			string(item.Kind),
			string(item.Source),
			item.Image(),
			link(item),
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

// ToMarkdown converts items to a Markdown list with links where the item has one
func ToMarkdown(title string, items []models.CatalogItem) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Results**: %d\n", len(items))
	if len(items) > 0 {
		fmt.Fprintf(&buf, "**Source**: %s\n", items[0].Source.Label())
	}
	buf.WriteString("\n## Items\n\n")

	for i, item := range items {
		name := item.Title
		if u := link(item); u != "" {
			name = fmt.Sprintf("[%s](%s)", item.Title, u)
		}
		fmt.Fprintf(&buf, "%d. %s%s\n", i+1, byline(item), name)
		if item.Album != "" && item.Album != item.Title {
			fmt.Fprintf(&buf, "   - Album: %s\n", item.Album)
		}
		if item.Subtitle != "" && item.Subtitle != item.Artist {
			fmt.Fprintf(&buf, "   - %s\n", item.Subtitle)
		}
	}

	return buf.Bytes(), nil
}

// ToText converts items to plain numbered lines
func ToText(title string, items []models.CatalogItem) ([]byte, error) {
	var buf bytes.Buffer

	if title != "" {
		fmt.Fprintf(&buf, "%s\n", title)
	}
	fmt.Fprintf(&buf, "Results: %d\n\n", len(items))

	for i, item := range items {
		fmt.Fprintf(&buf, "%d. %s%s\n", i+1, byline(item), item.Title)
	}

	return buf.Bytes(), nil
}

// WriteFile writes rendered output to path, refusing to replace an existing file unless overwrite is set.
func WriteFile(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", shared.ErrAlreadyExists, path)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// byline returns "Artist - " for items whose artist differs from the title.
func byline(item models.CatalogItem) string {
	if item.Artist == "" || item.Artist == item.Title {
		return ""
	}
	return item.Artist + " - "
}

func link(item models.CatalogItem) string {
	if item.URL != "" {
		return item.URL
	}
	return item.URI
}

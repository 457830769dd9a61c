// Package export renders parsed documents for people and other tools.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/oimdp/internal/openiti"
)

// Format is an output format.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatMarkdown
	FormatHTML
	FormatDOCX
	FormatCSV
)

var formats = []struct {
	name, ext, contentType string
}{
	FormatJSON:     {"json", ".json", "application/json"},
	FormatYAML:     {"yaml", ".yaml", "application/yaml"},
	FormatMarkdown: {"markdown", ".md", "text/markdown; charset=utf-8"},
	FormatHTML:     {"html", ".html", "text/html; charset=utf-8"},
	FormatDOCX:     {"docx", ".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	FormatCSV:      {"csv", ".csv", "text/csv; charset=utf-8"},
}

func (f Format) String() string      { return formats[f].name }
func (f Format) Extension() string   { return formats[f].ext }
func (f Format) ContentType() string { return formats[f].contentType }

// ParseFormat looks a format up by name. "md" and "yml" are accepted as
// aliases; the empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "docx":
		return FormatDOCX, nil
	case "csv":
		return FormatCSV, nil
	}
	return 0, fmt.Errorf("unknown export format: %q", s)
}

// Exporter writes a document in one format.
type Exporter interface {
	Export(w io.Writer, doc *openiti.Document, title string) error
}

// ForFormat returns the exporter for f.
func ForFormat(f Format) Exporter {
	switch f {
	case FormatYAML:
		return &YAMLExporter{}
	case FormatMarkdown:
		return &MarkdownExporter{}
	case FormatHTML:
		return &HTMLExporter{}
	case FormatDOCX:
		return &DOCXExporter{}
	case FormatCSV:
		return &CSVExporter{}
	default:
		return &JSONExporter{}
	}
}

// Write renders doc to w in format f.
func Write(w io.Writer, f Format, doc *openiti.Document, title string) error {
	if err := ForFormat(f).Export(w, doc, title); err != nil {
		return fmt.Errorf("export %s: %w", f, err)
	}
	return nil
}

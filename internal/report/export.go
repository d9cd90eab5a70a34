package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nexhax/nexhax/internal/updater"
)

// Exporter writes a check outcome in one format.
type Exporter interface {
	Export(w io.Writer, out updater.Outcome) error
}

// Format is a report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// ErrUnknownFormat is returned for a format name with no exporter.
var ErrUnknownFormat = errors.New("unknown report format")

// formatAliases maps every accepted --format value and file extension to
// its Format.
var formatAliases = map[string]Format{
	"json": FormatJSON,
	"csv":  FormatCSV,
	"text": FormatText,
	"txt":  FormatText,
}

// Formats lists the accepted format names, for flag help.
func Formats() []string {
	names := make([]string, 0, len(formatAliases))
	for name := range formatAliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFormat resolves a format name or alias, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f, ok := formatAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
	return f, nil
}

// DetectFormat picks the format from the file extension, defaulting to JSON.
func DetectFormat(filename string) Format {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatJSON
}

// NewExporter creates an exporter for a format name or alias.
func NewExporter(format Format) (Exporter, error) {
	f, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatText:
		return NewTextExporter(), nil
	default:
		return NewJSONExporter(), nil
	}
}

// ExportToFile writes out to filename. An empty format is detected from the
// extension. The report is written to a temporary file beside the target
// and renamed into place, so a failed export keeps the previous report.
func ExportToFile(filename string, format Format, out updater.Outcome) error {
	if format == "" {
		format = DetectFormat(filename)
	}
	exporter, err := NewExporter(format)
	if err != nil {
		return err
	}

	if fi, err := os.Stat(filename); err == nil && fi.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := exporter.Export(tmp, out); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

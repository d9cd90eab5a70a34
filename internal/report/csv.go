package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nexhax/nexhax/internal/updater"
)

// CSVExporter exports outcomes as a header and one row.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes out as CSV.
func (e *CSVExporter) Export(w io.Writer, out updater.Outcome) error {
	writer := csv.NewWriter(w)

	header := []string{
		"status", "update_available", "current_version", "latest_version",
		"release_url", "package_url", "checked_at",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	c := Convert(out)
	row := []string{
		c.Status,
		strconv.FormatBool(c.UpdateAvailable),
		c.CurrentVersion,
		c.LatestVersion,
		c.ReleaseURL,
		c.PackageURL,
		c.CheckedAt.UTC().Format(time.RFC3339),
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	writer.Flush()
	return writer.Error()
}

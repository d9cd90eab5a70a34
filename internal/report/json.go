// Package report renders update check outcomes as JSON, CSV or text.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nexhax/nexhax/internal/updater"
)

// ExportedCheck is the serialized form of a check outcome.
type ExportedCheck struct {
	Status          string    `json:"status"`
	UpdateAvailable bool      `json:"updateAvailable"`
	CurrentVersion  string    `json:"currentVersion"`
	LatestVersion   string    `json:"latestVersion,omitempty"`
	ReleaseURL      string    `json:"releaseUrl,omitempty"`
	PackageURL      string    `json:"packageUrl,omitempty"`
	CheckedAt       time.Time `json:"checkedAt"`
}

// Convert flattens an outcome for export.
func Convert(out updater.Outcome) ExportedCheck {
	return ExportedCheck{
		Status:          string(out.Status),
		UpdateAvailable: out.UpdateAvailable(),
		CurrentVersion:  out.CurrentVersion,
		LatestVersion:   out.LatestVersion(),
		ReleaseURL:      out.ReleaseURL(),
		PackageURL:      out.PackageURL(),
		CheckedAt:       out.CheckedAt,
	}
}

// JSONExporter exports outcomes as JSON.
type JSONExporter struct {
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export writes out as a single JSON object.
func (e *JSONExporter) Export(w io.Writer, out updater.Outcome) error {
	encoder := json.NewEncoder(w)
	if e.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(Convert(out))
}

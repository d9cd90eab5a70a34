package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nexhax/nexhax/internal/updater"
)

// TextExporter exports outcomes as human-readable text.
type TextExporter struct{}

// NewTextExporter creates a new text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export writes out as text.
func (e *TextExporter) Export(w io.Writer, out updater.Outcome) error {
	c := Convert(out)

	fmt.Fprintln(w, "Update check")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "Current version: %s\n", orDash(c.CurrentVersion))
	fmt.Fprintf(w, "Latest version:  %s\n", orDash(c.LatestVersion))
	fmt.Fprintf(w, "Status:          %s\n", Summary(out))
	if c.ReleaseURL != "" {
		fmt.Fprintf(w, "Release page:    %s\n", c.ReleaseURL)
	}
	if c.PackageURL != "" {
		fmt.Fprintf(w, "Package:         %s\n", c.PackageURL)
	}
	if !c.CheckedAt.IsZero() {
		fmt.Fprintf(w, "Checked at:      %s\n", c.CheckedAt.Format(time.RFC1123))
	}
	return nil
}

// Summary is a one-line description of out.
func Summary(out updater.Outcome) string {
	switch out.Status {
	case updater.StatusAvailable:
		if !out.Release.HasPackage() {
			return fmt.Sprintf("update available: %s (no installable package)", out.LatestVersion())
		}
		return fmt.Sprintf("update available: %s", out.LatestVersion())
	case updater.StatusUpToDate:
		return "up to date"
	default:
		return "update information unavailable"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

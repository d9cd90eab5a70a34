// Package updater runs the check-then-install update flow.
package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nexhax/nexhax/internal/history"
	"github.com/nexhax/nexhax/internal/logger"
	"github.com/nexhax/nexhax/internal/release"
	"github.com/nexhax/nexhax/internal/version"
)

// Status is the result of a check.
type Status string

const (
	// StatusUnavailable means no release information could be obtained.
	StatusUnavailable Status = "unavailable"
	StatusUpToDate    Status = "up-to-date"
	StatusAvailable   Status = "available"
)

var (
	// ErrNoPackage is returned by Install when the release has no package.
	ErrNoPackage = errors.New("release has no installable package")

	// ErrNoReleasePage is returned by OpenRelease when the release has no page.
	ErrNoReleasePage = errors.New("release has no page")
)

// Outcome is the result of one Check.
type Outcome struct {
	Status         Status        `json:"status"`
	CurrentVersion string        `json:"current_version"`
	Release        *release.Info `json:"-"`
	CheckedAt      time.Time     `json:"checked_at"`
}

// UpdateAvailable reports whether a newer release was found.
func (o Outcome) UpdateAvailable() bool { return o.Status == StatusAvailable }

// LatestVersion returns the normalized release version, or "".
func (o Outcome) LatestVersion() string {
	if o.Release == nil {
		return ""
	}
	return o.Release.LatestVersion
}

// PackageURL returns the package download URL, or "".
func (o Outcome) PackageURL() string { return o.Release.PackageURL() }

// ReleaseURL returns the release page URL, or "".
func (o Outcome) ReleaseURL() string { return o.Release.PageURL() }

// ReleaseSource fetches the latest release. Nil means no information.
type ReleaseSource interface {
	FetchLatest(ctx context.Context) *release.Info
}

// Installer installs a package and opens release pages.
type Installer interface {
	DownloadAndInstall(ctx context.Context, url string) error
	OpenURL(ctx context.Context, url string) error
}

// Recorder stores history entries.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Flow wires a release source, a comparator and an installer together.
// Flows hold no per-check state; concurrent calls are independent.
type Flow struct {
	source     ReleaseSource
	installer  Installer
	comparator version.Comparator
	recorder   Recorder
	now        func() time.Time
}

// Option configures a Flow.
type Option func(*Flow)

// WithComparator sets the version comparator. The default is loose.
func WithComparator(c version.Comparator) Option {
	return func(f *Flow) {
		f.comparator = c
	}
}

// WithRecorder appends every check and install attempt to r.
func WithRecorder(r Recorder) Option {
	return func(f *Flow) {
		f.recorder = r
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

// New returns a Flow.
func New(source ReleaseSource, installer Installer, opts ...Option) *Flow {
	f := &Flow{
		source:     source,
		installer:  installer,
		comparator: version.NewComparator(version.SchemeLoose),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Check fetches the latest release and compares it with current. Every
// call fetches again.
func (f *Flow) Check(ctx context.Context, current string) Outcome {
	info := f.source.FetchLatest(ctx)

	out := Outcome{
		Status:         StatusUnavailable,
		CurrentVersion: current,
		Release:        info,
		CheckedAt:      f.now(),
	}
	if info != nil {
		out.Status = StatusUpToDate
		if f.comparator.IsNewer(info.LatestVersion, current) {
			out.Status = StatusAvailable
		}
	}

	logger.Info("updater: current=%s latest=%s status=%s", current, out.LatestVersion(), out.Status)
	f.record(ctx, history.Entry{
		Kind:           history.KindCheck,
		CurrentVersion: current,
		LatestVersion:  out.LatestVersion(),
		Status:         string(out.Status),
		PackageURL:     out.PackageURL(),
		CreatedAt:      out.CheckedAt,
	})
	return out
}

// Install downloads and launches the package of out's release.
func (f *Flow) Install(ctx context.Context, out Outcome) error {
	err := f.install(ctx, out)

	e := history.Entry{
		Kind:           history.KindInstall,
		CurrentVersion: out.CurrentVersion,
		LatestVersion:  out.LatestVersion(),
		Status:         "ok",
		PackageURL:     out.PackageURL(),
		CreatedAt:      f.now(),
	}
	if err != nil {
		e.Status = "failed"
		e.Error = err.Error()
		logger.Error("updater: install %s: %v", out.LatestVersion(), err)
	}
	f.record(ctx, e)
	return err
}

func (f *Flow) install(ctx context.Context, out Outcome) error {
	if !out.Release.HasPackage() {
		return ErrNoPackage
	}
	if err := f.installer.DownloadAndInstall(ctx, out.PackageURL()); err != nil {
		return fmt.Errorf("install %s: %w", out.LatestVersion(), err)
	}
	return nil
}

// OpenRelease opens the release page of out in the external handler.
func (f *Flow) OpenRelease(ctx context.Context, out Outcome) error {
	u := out.ReleaseURL()
	if u == "" {
		return ErrNoReleasePage
	}
	return f.installer.OpenURL(ctx, u)
}

func (f *Flow) record(ctx context.Context, e history.Entry) {
	if f.recorder == nil {
		return
	}
	if _, err := f.recorder.Record(ctx, e); err != nil {
		logger.Warn("updater: record history: %v", err)
	}
}

// Package install downloads a release package and hands it to the operating
// system's package installer.
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/nexhax/nexhax/internal/logger"
)

const (
	// PackageMIME is the MIME type of an Android package archive.
	PackageMIME = "application/vnd.android.package-archive"

	// ActionView is the intent action used to open the package.
	ActionView = "android.intent.action.VIEW"

	// FlagGrantReadURIPermission lets the installer read the content URI.
	FlagGrantReadURIPermission = 1

	// PackageFileName is the name the downloaded package is saved under.
	PackageFileName = "app-release.apk"

	// CacheSubdir is created under the cache directory for downloads.
	CacheSubdir = "nexhax"

	// DefaultContentAuthority is the file provider authority used to build
	// content:// references.
	DefaultContentAuthority = "com.nexhax.app.fileprovider"

	// DefaultPruneAge is how old a previous download directory must be
	// before Download removes it.
	DefaultPruneAge = time.Hour
)

var (
	// ErrDownloadFailed wraps any failure fetching or storing the package.
	ErrDownloadFailed = errors.New("download failed")

	// ErrLaunchFailed wraps any failure handing the package to the system.
	ErrLaunchFailed = errors.New("launch failed")
)

// Intent is a system request to view data of a given type.
type Intent struct {
	Action string
	Data   string
	MIME   string
	Flags  int
}

// InstallIntent returns the VIEW intent for a package content reference.
func InstallIntent(contentURI string) Intent {
	return Intent{
		Action: ActionView,
		Data:   contentURI,
		MIME:   PackageMIME,
		Flags:  FlagGrantReadURIPermission,
	}
}

// Args renders the intent as arguments for `am start`.
func (i Intent) Args() []string {
	args := []string{"start", "-a", i.Action, "-d", i.Data}
	if i.MIME != "" {
		args = append(args, "-t", i.MIME)
	}
	if i.Flags&FlagGrantReadURIPermission != 0 {
		args = append(args, "--grant-read-uri-permission")
	}
	return args
}

// Launcher starts intents and opens URLs in the external handler.
type Launcher interface {
	Launch(ctx context.Context, intent Intent) error
	Open(ctx context.Context, url string) error
}

// ContentProvider maps a local file to a reference another app can read.
type ContentProvider interface {
	URIFor(path string) (string, error)
}

// FileProvider builds content://<authority>/<rel> references for files
// below Root.
type FileProvider struct {
	Authority string
	Root      string
}

// URIFor returns the content reference for path.
func (p FileProvider) URIFor(path string) (string, error) {
	rel, err := filepath.Rel(p.Root, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", path, p.Root)
	}
	return "content://" + p.Authority + "/" + filepath.ToSlash(rel), nil
}

// ProgressFunc receives bytes written so far and the expected total, which
// is -1 when the server does not send a length.
type ProgressFunc func(written, total int64)

// Installer fetches packages and launches the system installer.
type Installer struct {
	httpClient *http.Client
	cacheDir   string
	fixedPath  bool
	native     bool
	launcher   Launcher
	provider   ContentProvider
	progress   ProgressFunc
	pruneAge   time.Duration
}

// Option configures an Installer.
type Option func(*Installer)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Installer) {
		i.httpClient = client
	}
}

// WithCacheDir sets the directory downloads are written below.
func WithCacheDir(dir string) Option {
	return func(i *Installer) {
		if dir != "" {
			i.cacheDir = dir
		}
	}
}

// WithFixedPath writes every download to <cache>/nexhax/app-release.apk,
// overwriting the previous one.
func WithFixedPath() Option {
	return func(i *Installer) {
		i.fixedPath = true
	}
}

// WithNativeFlow forces the download-and-intent flow on or off regardless
// of the platform.
func WithNativeFlow(native bool) Option {
	return func(i *Installer) {
		i.native = native
	}
}

// WithLauncher replaces the system launcher.
func WithLauncher(l Launcher) Option {
	return func(i *Installer) {
		i.launcher = l
	}
}

// WithContentProvider replaces the content reference provider.
func WithContentProvider(p ContentProvider) Option {
	return func(i *Installer) {
		i.provider = p
	}
}

// WithPruneAge sets how old a previous download directory must be before
// it is removed. Non-positive values are ignored.
func WithPruneAge(d time.Duration) Option {
	return func(i *Installer) {
		if d > 0 {
			i.pruneAge = d
		}
	}
}

// WithProgress registers a download progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(i *Installer) {
		i.progress = fn
	}
}

// New returns an Installer for the running platform.
func New(opts ...Option) *Installer {
	i := &Installer{
		httpClient: http.DefaultClient,
		cacheDir:   os.TempDir(),
		native:     nativeInstall,
		launcher:   systemLauncher{},
		pruneAge:   DefaultPruneAge,
	}
	if dir, err := os.UserCacheDir(); err == nil {
		i.cacheDir = dir
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.provider == nil {
		i.provider = FileProvider{Authority: DefaultContentAuthority, Root: i.cacheDir}
	}
	return i
}

// Native reports whether DownloadAndInstall downloads and launches an
// intent rather than opening the URL.
func (i *Installer) Native() bool {
	return i.native
}

// DownloadAndInstall installs the package at url. Without a native install
// flow the URL is opened in the external handler instead. The first failure
// is returned; nothing is retried or verified.
func (i *Installer) DownloadAndInstall(ctx context.Context, url string) error {
	if !i.native {
		return i.OpenURL(ctx, url)
	}

	path, err := i.Download(ctx, url)
	if err != nil {
		return err
	}

	uri, err := i.provider.URIFor(path)
	if err != nil {
		return fmt.Errorf("%w: content reference for %s: %v", ErrLaunchFailed, path, err)
	}

	intent := InstallIntent(uri)
	logger.Info("install: launching %s for %s", intent.Action, uri)
	if err := i.launcher.Launch(ctx, intent); err != nil {
		return fmt.Errorf("%w: %w", ErrLaunchFailed, err)
	}
	return nil
}

// OpenURL hands url to the external handler.
func (i *Installer) OpenURL(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("%w: empty url", ErrLaunchFailed)
	}
	logger.Debug("install: opening %s", url)
	if err := i.launcher.Open(ctx, url); err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrLaunchFailed, url, err)
	}
	return nil
}

// Destination returns the path the next download will be written to.
func (i *Installer) Destination() string {
	if i.fixedPath {
		return filepath.Join(i.cacheDir, CacheSubdir, PackageFileName)
	}
	return filepath.Join(i.cacheDir, CacheSubdir, uuid.NewString(), PackageFileName)
}

// Download fetches url into the cache and returns the file path. Earlier
// unique download directories older than the prune age are removed first,
// and a failed download leaves nothing behind.
func (i *Installer) Download(ctx context.Context, url string) (string, error) {
	if !i.fixedPath {
		i.pruneDownloads()
	}

	dest := i.Destination()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrDownloadFailed, filepath.Dir(dest), err)
	}

	n, err := i.fetch(ctx, url, dest)
	if err != nil {
		if i.fixedPath {
			os.Remove(dest)
		} else {
			os.RemoveAll(filepath.Dir(dest))
		}
		return "", err
	}

	logger.Info("install: downloaded %s to %s", humanize.Bytes(uint64(n)), dest)
	return dest, nil
}

func (i *Installer) fetch(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: unexpected status %d", ErrDownloadFailed, resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	var dst io.Writer = f
	if i.progress != nil {
		dst = &progressWriter{w: f, total: resp.ContentLength, fn: i.progress}
	}

	n, err := io.Copy(dst, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("%w: write %s: %w", ErrDownloadFailed, dest, err)
	}
	return n, nil
}

// pruneDownloads removes <cache>/nexhax/<uuid> directories last modified
// before the prune age. Newer ones may belong to a download in flight.
func (i *Installer) pruneDownloads() {
	root := filepath.Join(i.cacheDir, CacheSubdir)
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-i.pruneAge)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("install: prune %s: %v", dir, err)
			continue
		}
		logger.Debug("install: pruned %s", dir)
	}
}

type progressWriter struct {
	w       io.Writer
	written int64
	total   int64
	fn      ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	p.fn(p.written, p.total)
	return n, err
}

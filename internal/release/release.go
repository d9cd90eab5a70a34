// Package release resolves the latest published release of the app from
// the GitHub releases API.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nexhax/nexhax/internal/logger"
)

const (
	// DefaultAPIURL is the GitHub REST API root.
	DefaultAPIURL = "https://api.github.com"

	DefaultOwner = "LozanoTH"
	DefaultRepo  = "prueba_react_app"

	// MediaType is sent as the Accept header.
	MediaType = "application/vnd.github+json"

	// DefaultUserAgent identifies the client to the API.
	DefaultUserAgent = "nexhax-app"

	// APIVersion is sent as X-GitHub-Api-Version.
	APIVersion = "2022-11-28"

	// PreferredAsset is picked over any other .apk asset.
	PreferredAsset = "app-release.apk"

	// PackageExt marks an installable package asset.
	PackageExt = ".apk"
)

// Info is the subset of a release the app acts on.
type Info struct {
	LatestVersion string
	HTMLURL       *string
	APKURL        *string
}

// HasPackage reports whether the release carries an installable package.
func (i *Info) HasPackage() bool {
	return i != nil && i.APKURL != nil && *i.APKURL != ""
}

// PackageURL returns the package URL or "".
func (i *Info) PackageURL() string {
	if i == nil || i.APKURL == nil {
		return ""
	}
	return *i.APKURL
}

// PageURL returns the release page URL or "".
func (i *Info) PageURL() string {
	if i == nil || i.HTMLURL == nil {
		return ""
	}
	return *i.HTMLURL
}

// Resolver queries the latest release endpoint of one repository.
type Resolver struct {
	apiURL     string
	owner      string
	repo       string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the HTTP client used for the request.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = client
	}
}

// WithAPIURL overrides the API root, e.g. for GitHub Enterprise or tests.
func WithAPIURL(url string) Option {
	return func(r *Resolver) {
		r.apiURL = strings.TrimRight(url, "/")
	}
}

// WithRepository sets the owner and repository whose releases are read.
func WithRepository(owner, repo string) Option {
	return func(r *Resolver) {
		if owner != "" {
			r.owner = owner
		}
		if repo != "" {
			r.repo = repo
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// NewResolver returns a Resolver for the default repository.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		apiURL:    DefaultAPIURL,
		owner:     DefaultOwner,
		repo:      DefaultRepo,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Endpoint returns the latest-release URL queried by FetchLatest.
func (r *Resolver) Endpoint() string {
	return fmt.Sprintf("%s/repos/%s/%s/releases/latest", r.apiURL, r.owner, r.repo)
}

// RepositoryURL returns the human-facing repository page.
func (r *Resolver) RepositoryURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", r.owner, r.repo)
}

// FetchLatest issues one request for the latest release. It returns nil if
// the request fails, the status is not 2xx, the body cannot be decoded, or
// the release carries no usable version. It never retries or caches.
func (r *Resolver) FetchLatest(ctx context.Context) *Info {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Endpoint(), nil)
	if err != nil {
		logger.Debug("release: build request: %v", err)
		return nil
	}
	r.setHeaders(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		logger.Debug("release: request failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("release: unexpected status %d from %s", resp.StatusCode, r.Endpoint())
		return nil
	}

	var payload releasePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logger.Debug("release: decode response: %v", err)
		return nil
	}

	info := payload.info()
	if info == nil {
		logger.Debug("release: no usable version in tag_name/name")
	}
	return info
}

func (r *Resolver) setHeaders(req *http.Request) {
	req.Header.Set("Accept", MediaType)
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("X-GitHub-Api-Version", APIVersion)
}

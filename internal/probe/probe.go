// Package probe checks whether the remote content host answers.
package probe

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/net/context/ctxhttp"

	"github.com/nexhax/nexhax/internal/logger"
)

const (
	// DefaultURL is the remote page shown when online.
	DefaultURL = "https://lozanoth.xzipser.workers.dev"

	// DefaultTimeout bounds a single probe.
	DefaultTimeout = 3500 * time.Millisecond
)

// Prober issues a single GET and reports whether any response arrived.
type Prober struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Prober.
type Option func(*Prober)

// WithURL sets the probed URL.
func WithURL(url string) Option {
	return func(p *Prober) {
		if url != "" {
			p.url = url
		}
	}
}

// WithTimeout sets the probe deadline. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithHTTPClient sets the client used for the request.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Prober) {
		p.httpClient = client
	}
}

// New returns a Prober for DefaultURL.
func New(opts ...Option) *Prober {
	p := &Prober{
		url:        DefaultURL,
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// URL returns the probed URL.
func (p *Prober) URL() string { return p.url }

// Timeout returns the probe deadline.
func (p *Prober) Timeout() time.Duration { return p.timeout }

// Reachable reports whether the URL produced any HTTP response, whatever the
// status, before the timeout. Errors and timeouts report false.
func (p *Prober) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := ctxhttp.Get(ctx, p.httpClient, p.url)
	if err != nil {
		logger.Debug("probe: %s unreachable after %v: %v", p.url, time.Since(start).Round(time.Millisecond), err)
		return false
	}
	resp.Body.Close()

	logger.Debug("probe: %s answered %d in %v", p.url, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return true
}

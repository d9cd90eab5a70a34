// Package content decides whether the shell shows the remote page or the
// bundled offline page.
package content

import (
	"context"
	"embed"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nexhax/nexhax/internal/logger"
)

//go:embed web/index.html
var bundled embed.FS

const offlinePagePath = "web/index.html"

// UnavailablePage is shown when the bundled page cannot be read.
const UnavailablePage = "<h1>Content not available</h1>"

// Kind tells where the displayed page comes from.
type Kind string

const (
	KindRemote  Kind = "remote"
	KindOffline Kind = "offline"
)

// Source is the page the shell should display.
type Source struct {
	Kind Kind
	// URL is set for remote sources.
	URL string
	// Body is the offline HTML, always loaded so the shell can switch to it.
	Body string
}

// Remote reports whether the remote page was chosen.
func (s Source) Remote() bool { return s.Kind == KindRemote }

// Title returns the title of the offline body, or the URL for remote pages.
func (s Source) Title() string {
	if s.Remote() {
		return s.URL
	}
	if t := Title(s.Body); t != "" {
		return t
	}
	return "offline"
}

// Prober reports reachability of the remote page.
type Prober interface {
	Reachable(ctx context.Context) bool
	URL() string
}

// OfflinePage returns the bundled page, or UnavailablePage if it is missing.
func OfflinePage() string {
	return readPage(bundled, offlinePagePath)
}

type fileReader interface {
	ReadFile(name string) ([]byte, error)
}

func readPage(fsys fileReader, name string) string {
	b, err := fsys.ReadFile(name)
	if err != nil {
		logger.Warn("content: read bundled page: %v", err)
		return UnavailablePage
	}
	return string(b)
}

// Decide loads the offline page and probes the remote one. The remote page
// wins when the probe succeeds.
func Decide(ctx context.Context, p Prober) Source {
	src := Source{Kind: KindOffline, Body: OfflinePage()}
	if p != nil && p.Reachable(ctx) {
		src.Kind = KindRemote
		src.URL = p.URL()
	}
	logger.Info("content: showing %s page", src.Kind)
	return src
}

// Title returns the trimmed text of the first <title> element in page, or
// "" if there is none.
func Title(page string) string {
	z := html.NewTokenizer(strings.NewReader(page))
	inTitle := false
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Title {
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inTitle && atom.Lookup(name) == atom.Title {
				return strings.Join(strings.Fields(b.String()), " ")
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		}
	}
}

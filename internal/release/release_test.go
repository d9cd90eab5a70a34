package release

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// githubRelease mirrors the subset of the GitHub API response we parse.
type githubRelease struct {
	TagName string        `json:"tag_name,omitempty"`
	Name    string        `json:"name,omitempty"`
	HTMLURL string        `json:"html_url,omitempty"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url,omitempty"`
}

func newTestServer(t *testing.T, release githubRelease) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(release); err != nil {
			t.Error(err)
		}
	}))
}

func newRawServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func newTestResolver(srv *httptest.Server) *Resolver {
	return NewResolver(WithAPIURL(srv.URL), WithHTTPClient(srv.Client()), WithRepository("owner", "repo"))
}

func TestResolver_SendsHeadersAndPath(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_ = json.NewEncoder(w).Encode(githubRelease{TagName: "v1.0.0"})
	}))
	defer srv.Close()

	if info := newTestResolver(srv).FetchLatest(context.Background()); info == nil {
		t.Fatal("expected non-nil info")
	}

	if got.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", got.Method)
	}
	if got.URL.Path != "/repos/owner/repo/releases/latest" {
		t.Errorf("path = %q", got.URL.Path)
	}
	if h := got.Header.Get("Accept"); h != "application/vnd.github+json" {
		t.Errorf("Accept = %q", h)
	}
	if h := got.Header.Get("User-Agent"); h != "nexhax-app" {
		t.Errorf("User-Agent = %q", h)
	}
	if h := got.Header.Get("X-GitHub-Api-Version"); h != "2022-11-28" {
		t.Errorf("X-GitHub-Api-Version = %q", h)
	}
}

func TestResolver_NormalizesTag(t *testing.T) {
	srv := newTestServer(t, githubRelease{TagName: "v3.4.5"})
	defer srv.Close()

	info := newTestResolver(srv).FetchLatest(context.Background())
	if info == nil {
		t.Fatal("expected non-nil info")
	}
	if info.LatestVersion != "3.4.5" {
		t.Errorf("LatestVersion = %q, want %q", info.LatestVersion, "3.4.5")
	}
}

func TestResolver_FallsBackToName(t *testing.T) {
	srv := newTestServer(t, githubRelease{Name: "Release v2.1"})
	defer srv.Close()

	info := newTestResolver(srv).FetchLatest(context.Background())
	if info == nil {
		t.Fatal("expected non-nil info")
	}
	if info.LatestVersion != "2.1" {
		t.Errorf("LatestVersion = %q, want %q", info.LatestVersion, "2.1")
	}
}

func TestResolver_NonStringTagFallsBackToName(t *testing.T) {
	srv := newRawServer(t, http.StatusOK, `{"tag_name": 7, "name": "v1.4"}`)
	defer srv.Close()

	info := newTestResolver(srv).FetchLatest(context.Background())
	if info == nil || info.LatestVersion != "1.4" {
		t.Fatalf("expected version 1.4 from name, got %+v", info)
	}
}

func TestResolver_PrefersAppReleaseAsset(t *testing.T) {
	srv := newTestServer(t, githubRelease{
		TagName: "v1.0.0",
		Assets: []githubAsset{
			{Name: "foo.txt"},
			{Name: "other.apk", BrowserDownloadURL: "U0"},
			{Name: "app-release.apk", BrowserDownloadURL: "U1"},
		},
	})
	defer srv.Close()

	info := newTestResolver(srv).FetchLatest(context.Background())
	if info == nil {
		t.Fatal("expected non-nil info")
	}
	if got := info.PackageURL(); got != "U1" {
		t.Errorf("APKURL = %q, want U1", got)
	}
}

func TestResolver_FirstAPKAsset(t *testing.T) {
	srv := newTestServer(t, githubRelease{
		TagName: "v1.0.0",
		Assets: []githubAsset{
			{Name: "notes.txt", BrowserDownloadURL: "T"},
			{Name: "other.apk", BrowserDownloadURL: "U2"},
			{Name: "second.apk", BrowserDownloadURL: "U3"},
		},
	})
	defer srv.Close()

	info := newTestResolver(srv).FetchLatest(context.Background())
	if info == nil {
		t.Fatal("expected non-nil info")
	}
	if got := info.PackageURL(); got != "U2" {
		t.Errorf("APKURL = %q, want U2", got)
	}
}

func TestResolver_NoAPKAsset(t *testing.T) {
	srv := newTestServer(t, githubRelease{
		TagName: "v1.0.0",
		HTMLURL: "https://github.com/owner/repo/releases/tag/v1.0.0",
		Assets:  []githubAsset{{Name: "foo.txt", BrowserDownloadURL: "T"}},
	})
	defer srv.Close()

	info := newTestResolver(srv).FetchLatest(context.Background())
	if info == nil {
		t.Fatal("expected non-nil info")
	}
	if info.APKURL != nil {
		t.Errorf("APKURL = %q, want nil", *info.APKURL)
	}
	if info.HasPackage() {
		t.Error("HasPackage() = true, want false")
	}
	if info.PageURL() != "https://github.com/owner/repo/releases/tag/v1.0.0" {
		t.Errorf("HTMLURL = %q", info.PageURL())
	}
}

func TestResolver_MissingHTMLURL(t *testing.T) {
	srv := newTestServer(t, githubRelease{TagName: "v1.0.0"})
	defer srv.Close()

	info := newTestResolver(srv).FetchLatest(context.Background())
	if info == nil {
		t.Fatal("expected non-nil info")
	}
	if info.HTMLURL != nil {
		t.Errorf("HTMLURL = %q, want nil", *info.HTMLURL)
	}
}

func TestResolver_NotFound_ReturnsNil(t *testing.T) {
	srv := newRawServer(t, http.StatusNotFound, `{"message":"Not Found"}`)
	defer srv.Close()

	if info := newTestResolver(srv).FetchLatest(context.Background()); info != nil {
		t.Errorf("expected nil on 404, got %+v", info)
	}
}

func TestResolver_ServerError_ReturnsNil(t *testing.T) {
	srv := newRawServer(t, http.StatusInternalServerError, "")
	defer srv.Close()

	if info := newTestResolver(srv).FetchLatest(context.Background()); info != nil {
		t.Errorf("expected nil on server error, got %+v", info)
	}
}

func TestResolver_NetworkError_ReturnsNil(t *testing.T) {
	r := NewResolver(WithAPIURL("http://127.0.0.1:1"), WithHTTPClient(http.DefaultClient))
	if info := r.FetchLatest(context.Background()); info != nil {
		t.Errorf("expected nil on network error, got %+v", info)
	}
}

func TestResolver_MalformedBody_ReturnsNil(t *testing.T) {
	srv := newRawServer(t, http.StatusOK, `{not json`)
	defer srv.Close()

	if info := newTestResolver(srv).FetchLatest(context.Background()); info != nil {
		t.Errorf("expected nil on malformed body, got %+v", info)
	}
}

func TestResolver_EmptyVersion_ReturnsNil(t *testing.T) {
	srv := newTestServer(t, githubRelease{TagName: "latest"})
	defer srv.Close()

	if info := newTestResolver(srv).FetchLatest(context.Background()); info != nil {
		t.Errorf("expected nil when tag has no digits, got %+v", info)
	}
}

func TestResolver_AssetsNotAnArray(t *testing.T) {
	srv := newRawServer(t, http.StatusOK, `{"tag_name":"v1.0.0","assets":{"name":"app-release.apk"}}`)
	defer srv.Close()

	info := newTestResolver(srv).FetchLatest(context.Background())
	if info == nil {
		t.Fatal("expected non-nil info")
	}
	if info.APKURL != nil {
		t.Errorf("APKURL = %q, want nil", *info.APKURL)
	}
}

func TestResolver_RefetchesEveryCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(githubRelease{TagName: "v1.0.0"})
	}))
	defer srv.Close()

	r := newTestResolver(srv)
	r.FetchLatest(context.Background())
	r.FetchLatest(context.Background())

	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
}

func TestNewResolver_Defaults(t *testing.T) {
	r := NewResolver()
	want := "https://api.github.com/repos/LozanoTH/prueba_react_app/releases/latest"
	if r.Endpoint() != want {
		t.Errorf("Endpoint() = %q, want %q", r.Endpoint(), want)
	}
	if r.RepositoryURL() != "https://github.com/LozanoTH/prueba_react_app" {
		t.Errorf("RepositoryURL() = %q", r.RepositoryURL())
	}
	if r.httpClient.Timeout != 0 {
		t.Errorf("client timeout = %v, want none", r.httpClient.Timeout)
	}
}

func TestSelectPackage_EmptyURL(t *testing.T) {
	assets := []assetPayload{{Name: json.RawMessage(`"app-release.apk"`)}}
	if got := selectPackage(assets); got != "" {
		t.Errorf("selectPackage() = %q, want empty", got)
	}
}

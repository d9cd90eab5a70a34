package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeRelease struct {
	status  int
	tag     string
	htmlURL string
	assets  []map[string]string
}

// newFakeGitHub serves the latest-release endpoint for owner/repo and
// answers every other path with 200 so it doubles as the remote page.
func newFakeGitHub(t *testing.T, rel fakeRelease) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/o/r/releases/latest" {
			w.Write([]byte("<title>remote</title>"))
			return
		}
		if rel.status != 0 && rel.status != http.StatusOK {
			w.WriteHeader(rel.status)
			return
		}
		assets := rel.assets
		if assets == nil {
			assets = []map[string]string{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tag_name": rel.tag,
			"html_url": rel.htmlURL,
			"assets":   assets,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeTestConfig points every network setting at srv and keeps state in a
// temp dir.
func writeTestConfig(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"release:",
		"  owner: o",
		"  repo: r",
		"  api_url: " + srv.URL,
		"remote_url: " + srv.URL,
		"probe:",
		"  timeout: 2s",
		"install:",
		"  cache_dir: " + filepath.Join(dir, "cache"),
		"history:",
		"  path: " + filepath.Join(dir, "history.db"),
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := SetupCmd("1.0.0")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func withPackage(srvURL string) fakeRelease {
	return fakeRelease{
		tag:     "v1.1.0",
		htmlURL: srvURL + "/release/v1.1.0",
		assets: []map[string]string{
			{"name": "notes.txt", "browser_download_url": srvURL + "/notes.txt"},
			{"name": "app-release.apk", "browser_download_url": srvURL + "/app-release.apk"},
		},
	}
}

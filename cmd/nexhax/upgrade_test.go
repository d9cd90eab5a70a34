package main

import (
	"net/http"
	"strings"
	"testing"
)

func TestUpgradeCommand_AlreadyLatest(t *testing.T) {
	srv := newFakeGitHub(t, fakeRelease{tag: "v1.0.0"})
	cfg := writeTestConfig(t, srv)

	out, err := execute(t, "", "--config", cfg, "upgrade")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "already the latest version") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestUpgradeCommand_Unavailable(t *testing.T) {
	srv := newFakeGitHub(t, fakeRelease{status: http.StatusInternalServerError})
	cfg := writeTestConfig(t, srv)

	if _, err := execute(t, "", "--config", cfg, "upgrade"); err == nil {
		t.Error("expected error when the release cannot be fetched")
	}
}

func TestUpgradeCommand_NoPackage(t *testing.T) {
	srv := newFakeGitHub(t, fakeRelease{tag: "v1.1.0", htmlURL: "https://github.com/o/r/releases/tag/v1.1.0"})
	cfg := writeTestConfig(t, srv)

	out, err := execute(t, "", "--config", cfg, "upgrade")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No app-release.apk") || !strings.Contains(out, "releases/tag/v1.1.0") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestUpgradeCommand_Cancelled(t *testing.T) {
	srv := newFakeGitHub(t, withPackage("https://dl.example"))
	cfg := writeTestConfig(t, srv)

	out, err := execute(t, "n\n", "--config", cfg, "upgrade")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "New version available: 1.0.0 → 1.1.0") {
		t.Errorf("missing version line:\n%s", out)
	}
	if !strings.Contains(out, "Upgrade cancelled.") {
		t.Errorf("expected cancellation:\n%s", out)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var buf strings.Builder
		if got := confirm(&buf, strings.NewReader(tt.input), "? "); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

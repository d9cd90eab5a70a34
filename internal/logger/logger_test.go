package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, INFO)

	l.Debug("hidden %d", 1)
	l.Info("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at INFO, got %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("expected info line, got %q", out)
	}
}

func TestLogger_IncludesLevelAndCaller(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DEBUG)

	l.Error("boom")

	out := buf.String()
	if !strings.Contains(out, "[ERROR]") {
		t.Errorf("expected level tag, got %q", out)
	}
	if !strings.Contains(out, "logger_test.go:") {
		t.Errorf("expected caller file, got %q", out)
	}
}

func TestLogger_ConsoleEcho(t *testing.T) {
	var file, console bytes.Buffer
	l := New(&file, DEBUG)
	l.console = &console

	l.Warn("disk %s", "full")

	if !strings.Contains(console.String(), "disk full") {
		t.Errorf("expected console echo, got %q", console.String())
	}
}

func TestLogger_NilIsSafe(t *testing.T) {
	var l *Logger
	l.Info("nothing")
}

func TestLevel_String(t *testing.T) {
	if DEBUG.String() != "DEBUG" || ERROR.String() != "ERROR" {
		t.Error("unexpected level names")
	}
	if Level(42).String() != "UNKNOWN" {
		t.Error("expected UNKNOWN for out of range level")
	}
}

func TestGet_ConcurrentFirstUse(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*Logger, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Debug("worker %d", i)
			got[i] = Get()
		}(i)
	}
	wg.Wait()

	for i, l := range got {
		if l == nil || l != got[0] {
			t.Fatalf("Get() in worker %d returned %p, want %p", i, l, got[0])
		}
	}
}

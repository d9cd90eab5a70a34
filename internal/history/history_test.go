package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	id1, err := s.Record(ctx, Entry{Kind: KindCheck, CurrentVersion: "1.0.0", LatestVersion: "1.1.0", Status: "available", CreatedAt: base})
	require.NoError(t, err)
	id2, err := s.Record(ctx, Entry{Kind: KindInstall, CurrentVersion: "1.0.0", LatestVersion: "1.1.0", PackageURL: "U1", Error: "boom", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, KindInstall, got[0].Kind)
	assert.Equal(t, "U1", got[0].PackageURL)
	assert.Equal(t, "boom", got[0].Error)
	assert.True(t, got[0].CreatedAt.Equal(base.Add(time.Minute)))

	assert.Equal(t, KindCheck, got[1].Kind)
	assert.Equal(t, "available", got[1].Status)
}

func TestRecent_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, Entry{Kind: KindCheck})
		require.NoError(t, err)
	}

	got, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRecord_RequiresKind(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Record(context.Background(), Entry{})
	assert.Error(t, err)
}

func TestRecord_DefaultsTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	_, err := s.Record(ctx, Entry{Kind: KindCheck})
	require.NoError(t, err)

	got, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].CreatedAt.After(before))
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Entry{Kind: KindCheck, LatestVersion: "2.0"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2.0", got[0].LatestVersion)
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".nexhax", "history.db"), p)

	p, err = ResolvePath("~/x/h.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "h.db"), p)

	p, err = ResolvePath("/tmp/a/../h.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/tmp/h.db"), p)
}

func TestClose_NilSafe(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
}

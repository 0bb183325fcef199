package filesystem

import (
	"context"
	"mindmap-share/core"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) (core.RecordStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "dbs", "mindmaps")
	logger, _ := test.NewNullLogger()
	s := NewRecordStore(dir, logger)
	require.NoError(t, s.Init(context.Background()))
	return s, dir
}

func TestInit_CreatesDirectoryIdempotently(t *testing.T) {
	s, dir := createTestStore(t)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, s.Init(context.Background()))
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s, dir := createTestStore(t)

	require.NoError(t, s.Insert(ctx, "abc-123", []byte(`{"name":"root"}`)))

	got, err := s.Get(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"root"}`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must be cleaned up")
	assert.Equal(t, "abc-123", entries[0].Name())
}

func TestInsert_NeverOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := createTestStore(t)

	require.NoError(t, s.Insert(ctx, "abc", []byte(`1`)))
	assert.ErrorIs(t, s.Insert(ctx, "abc", []byte(`2`)), core.ErrTokenConflict)

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))
}

func TestGet_Missing(t *testing.T) {
	s, _ := createTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGet_RejectsPathTraversal(t *testing.T) {
	s, dir := createTestStore(t)
	outside := filepath.Join(filepath.Dir(dir), "secret")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0644))

	_, err := s.Get(context.Background(), "../secret")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInsert_CancelledContextLeavesNothing(t *testing.T) {
	s, dir := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Insert(ctx, "abc", []byte(`1`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInsert_LogsThroughInjectedLogger(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	s := NewRecordStore(t.TempDir(), logger)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Insert(ctx, "abc", []byte(`1`)))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "abc", entry.Data["document_id"])

	// Below the configured level nothing is emitted.
	hook.Reset()
	logger.SetLevel(logrus.InfoLevel)
	require.NoError(t, s.Insert(ctx, "def", []byte(`2`)))
	assert.Empty(t, hook.AllEntries())
}

//go:build integration

package postgres

import (
	"context"
	"mindmap-share/core"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: MINDMAP_TEST_POSTGRES_DSN=... go test -tags integration ./stores/postgres
func createTestStore(t *testing.T) core.RecordStore {
	t.Helper()
	dsn := os.Getenv("MINDMAP_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MINDMAP_TEST_POSTGRES_DSN not set")
	}
	s := NewRecordStore(dsn)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIntegration_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	id := uuid.NewString()

	require.NoError(t, s.Insert(ctx, id, []byte(`{"nodes":[{"id":1,"label":"root"}]}`)))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[{"id":1,"label":"root"}]}`, string(got))
}

func TestIntegration_DuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	id := uuid.NewString()

	require.NoError(t, s.Insert(ctx, id, []byte(`1`)))
	assert.ErrorIs(t, s.Insert(ctx, id, []byte(`2`)), core.ErrTokenConflict)
}

func TestIntegration_Missing(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestIntegration_InitIdempotent(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.Init(context.Background()))
}

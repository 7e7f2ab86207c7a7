package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skinlens/backend/internal/domain"
)

// exerciseStore runs the behaviour every backend must share
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "skinlens:test:missing")
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "skinlens:test:routine", `{"version":1,"state":{"am":[]}}`))
		got, err := s.Get(ctx, "skinlens:test:routine")
		require.NoError(t, err)
		assert.Equal(t, `{"version":1,"state":{"am":[]}}`, got)
	})

	t.Run("overwrite keeps the last write", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "skinlens:test:products", "a"))
		require.NoError(t, s.Set(ctx, "skinlens:test:products", "b"))
		got, err := s.Get(ctx, "skinlens:test:products")
		require.NoError(t, err)
		assert.Equal(t, "b", got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "skinlens:test:scans", "x"))
		require.NoError(t, s.Delete(ctx, "skinlens:test:scans"))
		_, err := s.Get(ctx, "skinlens:test:scans")
		assert.ErrorIs(t, err, domain.ErrStateNotFound)

		// deleting again is fine
		assert.NoError(t, s.Delete(ctx, "skinlens:test:scans"))
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "skinlens.db")

	first, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "skinlens:routine", "persisted"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "skinlens:routine")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("SKINLENS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SKINLENS_TEST_REDIS_URL not set")
	}

	client, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	s := NewRedisStore(client)
	defer s.Close()

	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory by default", func(t *testing.T) {
		s, err := Open(ctx, Options{})
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := Open(ctx, Options{Type: TypeSQLite, SQLitePath: ":memory:"})
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &SQLiteStore{}, s)
	})

	t.Run("bad redis url", func(t *testing.T) {
		_, err := Open(ctx, Options{Type: TypeRedis, RedisURL: "not a url"})
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := Open(ctx, Options{Type: "etcd"})
		assert.Error(t, err)
	})
}

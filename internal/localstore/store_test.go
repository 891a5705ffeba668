package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreSlots(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "session")
			assert.ErrorIs(t, err, ErrSlotEmpty)

			require.NoError(t, s.Put(ctx, "session", []byte("one")))
			require.NoError(t, s.Put(ctx, "session", []byte("two")))

			data, err := s.Get(ctx, "session")
			require.NoError(t, err)
			assert.Equal(t, "two", string(data))

			require.NoError(t, s.Delete(ctx, "session"))
			_, err = s.Get(ctx, "session")
			assert.ErrorIs(t, err, ErrSlotEmpty)

			// Deleting an empty slot is not an error.
			require.NoError(t, s.Delete(ctx, "session"))
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	type payload struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
	}

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, PutJSON(ctx, s, "userPreferences", payload{Name: "spice", Level: 3}))

			var got payload
			require.NoError(t, GetJSON(ctx, s, "userPreferences", &got))
			assert.Equal(t, payload{Name: "spice", Level: 3}, got)

			require.NoError(t, s.Put(ctx, "broken", []byte("{")))
			assert.Error(t, GetJSON(ctx, s, "broken", &got))
		})
	}
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "session", []byte("token")))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	data, err := second.Get(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, "token", string(data))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", buf))
	buf[0] = 'x'

	data, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

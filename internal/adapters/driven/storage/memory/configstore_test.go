package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_GetSet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("retrieval.generator", "keyword"))
	require.NoError(t, store.Set("retrieval.top_n", int64(15)))
	require.NoError(t, store.Set("retrieval.min_score", 0.25))

	val, ok := store.Get("retrieval.generator")
	assert.True(t, ok)
	assert.Equal(t, "keyword", val)

	assert.Equal(t, "keyword", store.GetString("retrieval.generator"))
	assert.Equal(t, 15, store.GetInt("retrieval.top_n"))
	assert.Equal(t, 15.0, store.GetFloat("retrieval.top_n"))
	assert.Equal(t, 0.25, store.GetFloat("retrieval.min_score"))
}

func TestConfigStore_MissingAndMistyped(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("storage.backend", 3))

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("missing"))
	assert.Empty(t, store.GetString("storage.backend"))
	assert.Zero(t, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("missing"))

	require.NoError(t, store.Set("retrieval.top_n", "twenty"))
	assert.Zero(t, store.GetInt("retrieval.top_n"))
	assert.Zero(t, store.GetFloat("retrieval.top_n"))
}

func TestConfigStore_LoadAndPath(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

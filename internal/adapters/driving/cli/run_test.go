package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunListCmd(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		setupTestServices(t)

		out, err := execute(t, "run", "list")

		require.NoError(t, err)
		assert.Contains(t, out, "No runs recorded.")
	})

	t.Run("lists runs", func(t *testing.T) {
		setupIngested(t)
		result := computeRun(t)

		out, err := execute(t, "run", "list")

		require.NoError(t, err)
		assert.Contains(t, out, "Runs:")
		assert.Contains(t, out, result.Run.ID)
		assert.Contains(t, out, "tfidf_token/tfidf")
		assert.Contains(t, out, "[spring-in-action, spring-boot-up]")
	})
}

func TestRunShowCmd(t *testing.T) {
	setupIngested(t)
	result := computeRun(t, "--min-score", "0", "--min-shared", "1")
	require.Greater(t, len(result.Edges), 1)

	out, err := execute(t, "run", "show", result.Run.ID, "--limit", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Run "+result.Run.ID)
	assert.Contains(t, out, "Books:      spring-in-action, spring-boot-up")
	assert.Contains(t, out, result.Edges[0].From+" -> "+result.Edges[0].To)
	assert.Contains(t, out, "more")
}

func TestRunShowCmd_JSON(t *testing.T) {
	setupIngested(t)
	result := computeRun(t)

	out, err := execute(t, "run", "show", result.Run.ID, "--json")

	require.NoError(t, err)
	var shown computeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, result.Run.ID, shown.Run.ID)
	assert.Equal(t, result.Edges, shown.Edges)
}

func TestRunShowCmd_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "run", "show", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get run")
}

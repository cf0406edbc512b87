package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

func TestGraphCmd(t *testing.T) {
	setupIngested(t)
	result := computeRun(t, "--min-score", "0", "--min-shared", "1")

	out, err := execute(t, "graph", result.Run.ID)

	require.NoError(t, err)
	var graph domain.Graph
	require.NoError(t, json.Unmarshal([]byte(out), &graph))
	assert.Equal(t, result.Run.ID, graph.RunID)
	assert.Len(t, graph.Nodes, 7)
	assert.Len(t, graph.Edges, len(result.Edges))
}

func TestGraphCmd_RequiresRunID(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "graph")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestGraphCmd_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "graph", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

type computeOutput struct {
	Run   domain.Run    `json:"run"`
	Edges []domain.Edge `json:"edges"`
}

func computeRun(t *testing.T, args ...string) computeOutput {
	t.Helper()
	base := []string{"edges", "compute", "--books", "spring-in-action,spring-boot-up", "--json"}
	out, err := execute(t, append(base, args...)...)
	require.NoError(t, err)

	var result computeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	return result
}

func TestEdgesComputeCmd_HasFlags(t *testing.T) {
	for _, name := range []string{
		"books", "generator", "similarity", "enrichment", "min-score", "top-n", "min-shared", "workers", "json",
	} {
		assert.NotNil(t, edgesComputeCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "b", edgesComputeCmd.Flags().Lookup("books").Shorthand)
}

func TestEdgesComputeCmd_RequiresBooks(t *testing.T) {
	setupIngested(t)

	_, err := execute(t, "edges", "compute")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "books" not set`)
}

func TestEdgesComputeCmd_JSON(t *testing.T) {
	setupIngested(t)

	result := computeRun(t, "--min-score", "0", "--min-shared", "1")

	assert.NotEmpty(t, result.Run.ID)
	assert.Equal(t, []string{"spring-in-action", "spring-boot-up"}, result.Run.Config.BookIDs)
	assert.Equal(t, 0.0, result.Run.Config.MinScore)
	assert.Equal(t, 1, result.Run.Config.MinSharedTokens)
	require.NotEmpty(t, result.Edges)
	assert.Equal(t, len(result.Edges), result.Run.EdgeCount)
}

func TestEdgesComputeCmd_Text(t *testing.T) {
	setupIngested(t)

	out, err := execute(t, "edges", "compute", "-b", "spring-in-action",
		"--generator", "keyword", "--similarity", "keyword_overlap", "--min-score", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "keyword/keyword_overlap, min_score 1)")
}

func TestEdgesComputeCmd_MinScoreUnsetUsesSettings(t *testing.T) {
	setupIngested(t)

	result := computeRun(t)

	assert.Equal(t, domain.DefaultRetrievalSettings().MinScore, result.Run.Config.MinScore)
}

func TestEdgesComputeCmd_InvalidConfig(t *testing.T) {
	setupIngested(t)

	_, err := execute(t, "edges", "compute", "-b", "spring-in-action", "--min-score", "3")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestEdgesComputeCmd_UnknownBook(t *testing.T) {
	setupIngested(t)

	_, err := execute(t, "edges", "compute", "-b", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEdgesComputeCmd_ExplicitZeroIsValidated(t *testing.T) {
	for _, flag := range []string{"--top-n", "--min-shared"} {
		t.Run(flag, func(t *testing.T) {
			setupIngested(t)

			_, err := execute(t, "edges", "compute", "-b", "spring-in-action", flag, "0")

			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestEdgesComputeCmd_UnsetThresholdsUseSettings(t *testing.T) {
	setupIngested(t)

	result := computeRun(t)

	defaults := domain.DefaultRetrievalSettings()
	assert.Equal(t, defaults.TopN, result.Run.Config.TopN)
	assert.Equal(t, defaults.MinSharedTokens, result.Run.Config.MinSharedTokens)
}

func TestEdgesComputeCmd_RecordsIngestEnrichment(t *testing.T) {
	setupTestServices(t)
	_, err := execute(t, "book", "ingest", testManifest(), "--enrichment", "v1_bullets")
	require.NoError(t, err)

	result := computeRun(t)
	assert.Equal(t, domain.EnrichmentBullets, result.Run.Config.EnrichmentVersion)

	_, err = execute(t, "edges", "compute", "-b", "spring-in-action", "--enrichment", "v1_bullets+sections")
	assert.ErrorIs(t, err, domain.ErrEnrichmentMismatch)
}

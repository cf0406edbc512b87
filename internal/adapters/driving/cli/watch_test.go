package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chaptergraph/internal/ingestion"
)

func TestWatchCmd_HasDebounceFlag(t *testing.T) {
	flag := watchCmd.Flags().Lookup("debounce")
	require.NotNil(t, flag)
	assert.Equal(t, "500ms", flag.DefValue)
}

func TestWatchCmd_InvalidDebounce(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "watch", "--debounce", "soon", testManifest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --debounce")
}

func TestWatchCmd_MissingManifest(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "watch", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}

func TestReingest(t *testing.T) {
	setupTestServices(t)
	specs, err := ingestion.LoadManifest(testManifest())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, reingest(ctx, versionCmd, specs))

	runs, err := edgeService.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"spring-in-action", "spring-boot-up"}, runs[0].Config.BookIDs)
}

func TestReingest_NoBooks(t *testing.T) {
	setupTestServices(t)

	err := reingest(context.Background(), versionCmd, nil)

	assert.EqualError(t, err, "no books ingested")
}

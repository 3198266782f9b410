package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

func TestIngestCmd_PrintsSummary(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "deep", "learning"})

	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Equal(t, "deep learning", ts.ingest.lastQuery)
	assert.Contains(t, out, "1. residual networks")
	assert.Contains(t, out, "Papers fetched: 1")
	assert.Contains(t, out, "Chunks stored:  4")
	assert.Contains(t, out, "papertrail backfill")
}

func TestIngestCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "--json", "deep learning"})

	require.NoError(t, rootCmd.Execute())

	var res domain.IngestResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.Equal(t, 4, res.Records)
}

func TestIngestCmd_Dump(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "arxiv_results.json")
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"ingest", "--dump", path, "deep learning"})

	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var papers []domain.PaperDescriptor
	require.NoError(t, json.Unmarshal(data, &papers))
	require.Len(t, papers, 1)
	assert.Equal(t, "Deep Residual Learning", papers[0].Title)
}

func TestIngestCmd_DumpsPartialResultOnFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.err = &domain.PersistenceBatchError{Offset: 0, Size: 4, Err: errors.New("disk full")}

	path := filepath.Join(t.TempDir(), "papers.json")
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "--dump", path, "deep learning"})

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistenceBatch)
	assert.FileExists(t, path)
}

func TestIngestCmd_RequiresQuery(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})

	assert.Error(t, rootCmd.Execute())
}

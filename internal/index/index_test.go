// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/usecase-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.IndexConfig{IndexDir: t.TempDir(), MaxResults: 10})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// writeRunTree lays out an output directory the way an analysis run
// does: dated dir, run dir, accepted artifacts, low-confidence dir.
func writeRunTree(t *testing.T, base string) string {
	t.Helper()
	runDir := filepath.Join(base, "usecases-2026-08-25", "AP160_20260825_120000")
	require.NoError(t, os.MkdirAll(filepath.Join(runDir, "LOW_CONFIDENCE"), 0o755))

	write := func(rel, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(runDir, rel), []byte(content), 0o644))
	}
	write("UC-AP160-001-Post-Voucher.md",
		"# Post Voucher\n\n## Description\nPosts approved vouchers to the general ledger.\n")
	write("UC-AP160-002-Void-Payment.md",
		"# Void Payment\n\n## Description\nVoids a payment and reopens the voucher.\n")
	write("SUMMARY.md", "not an artifact in scope\n")
	write(filepath.Join("LOW_CONFIDENCE", "low_conf_chunk_3.md"),
		"## Description\nPartial ledger text that must not be indexed.\n")
	return runDir
}

func TestIngestCountsAndSkipsRepeatPass(t *testing.T) {
	s := newTestStore(t)
	base := t.TempDir()
	writeRunTree(t, base)

	var buf bytes.Buffer
	summary, err := s.Ingest(context.Background(), base, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Indexed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Contains(t, buf.String(), "indexed UC-AP160-001")

	// Second pass over unchanged files touches nothing.
	summary, err = s.Ingest(context.Background(), base, &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Indexed)
	assert.Equal(t, 2, summary.Skipped)
}

func TestIngestReindexesChangedFile(t *testing.T) {
	s := newTestStore(t)
	base := t.TempDir()
	runDir := writeRunTree(t, base)

	var buf bytes.Buffer
	_, err := s.Ingest(context.Background(), base, &buf)
	require.NoError(t, err)

	changed := filepath.Join(runDir, "UC-AP160-001-Post-Voucher.md")
	require.NoError(t, os.WriteFile(changed,
		[]byte("# Post Voucher\n\n## Description\nPosts vouchers and prints a register.\n"), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(changed, future, future))

	summary, err := s.Ingest(context.Background(), base, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)

	results, err := s.Retrieve(context.Background(), QueryOptions{Query: "register"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "UC-AP160-001", results[0].ID)
}

func TestRetrieveFullText(t *testing.T) {
	s := newTestStore(t)
	base := t.TempDir()
	writeRunTree(t, base)

	var buf bytes.Buffer
	_, err := s.Ingest(context.Background(), base, &buf)
	require.NoError(t, err)

	results, err := s.Retrieve(context.Background(), QueryOptions{Query: "ledger"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "UC-AP160-001", results[0].ID)
	assert.Equal(t, "AP160", results[0].ModuleCode)
	assert.Equal(t, "Post Voucher", results[0].Title)
	assert.Contains(t, results[0].Snippet, "ledger")
}

func TestRetrieveListsByModule(t *testing.T) {
	s := newTestStore(t)
	base := t.TempDir()
	writeRunTree(t, base)

	var buf bytes.Buffer
	_, err := s.Ingest(context.Background(), base, &buf)
	require.NoError(t, err)

	results, err := s.Retrieve(context.Background(), QueryOptions{ModuleCode: "AP160"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "UC-AP160-001", results[0].ID)
	assert.Equal(t, "UC-AP160-002", results[1].ID)

	results, err = s.Retrieve(context.Background(), QueryOptions{ModuleCode: "GL200"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExportFormats(t *testing.T) {
	s := newTestStore(t)
	base := t.TempDir()
	writeRunTree(t, base)

	var buf bytes.Buffer
	_, err := s.Ingest(context.Background(), base, &buf)
	require.NoError(t, err)

	var yamlOut bytes.Buffer
	require.NoError(t, s.Export(context.Background(), "yaml", &yamlOut))
	assert.Contains(t, yamlOut.String(), "UC-AP160-001")
	assert.Contains(t, yamlOut.String(), "module_code: AP160")

	var jsonOut bytes.Buffer
	require.NoError(t, s.Export(context.Background(), "json", &jsonOut))
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &docs))
	require.Len(t, docs, 2)
	assert.True(t, strings.HasPrefix(docs[0]["id"].(string), "UC-AP160-"))

	err = s.Export(context.Background(), "xml", &yamlOut)
	assert.Error(t, err)
}

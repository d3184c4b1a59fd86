package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/miroslavbel/test-task-for-zimad/internal/config"
	"github.com/miroslavbel/test-task-for-zimad/internal/export"
)

// setupTags fills a temp directory with fixtures from the pdf package
func setupTags(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, fixture := range files {
		data, err := os.ReadFile(filepath.Join("..", "..", "internal", "pdf", "testdata", fixture))
		require.NoError(t, err)
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	return dir
}

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Directory = dir
	cfg.Workers = 2
	return cfg
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type jsonReport struct {
	RunID     string `json:"run_id"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Documents []struct {
		Path      string         `json:"path"`
		Record    map[string]any `json:"record"`
		ErrorKind string         `json:"error_kind"`
	} `json:"documents"`
}

func TestRun_DefaultDirectoryJSON(t *testing.T) {
	dir := setupTags(t, map[string]string{
		"a.json":     "tag_valid.json",
		"b.json":     "tag_eleven_blocks.json",
		"sub/c.json": "tag_two_pages.json",
		"notes.txt":  "tag_valid.json",
	})

	var stdout bytes.Buffer
	result, err := run(context.Background(), testConfig(dir), discard, &stdout)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)

	var report jsonReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, result.RunID, report.RunID)
	require.Len(t, report.Documents, 3)
	assert.Equal(t, "PN-100", report.Documents[0].Record["pn"])
	assert.Equal(t, "UNSUPPORTED_FORMAT", report.Documents[1].ErrorKind)
	assert.Equal(t, "PAGE_COUNT", report.Documents[2].ErrorKind)
}

func TestRun_SelectedFiles(t *testing.T) {
	dir := setupTags(t, map[string]string{
		"a.json": "tag_valid.json",
		"b.json": "tag_eleven_blocks.json",
	})

	cfg := testConfig(dir)
	cfg.Paths = []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "missing.json")}

	var stdout bytes.Buffer
	result, err := run(context.Background(), cfg, discard, &stdout)
	require.NoError(t, err)
	require.Len(t, result.Documents, 2)
	assert.Nil(t, result.Documents[0].Err)
	assert.Equal(t, "READ_ERROR", result.Documents[1].ErrorKind)
	assert.Equal(t, 1, result.Failed)
}

func TestRun_PathOutsideDirectory(t *testing.T) {
	dir := setupTags(t, nil)
	other := setupTags(t, map[string]string{"a.json": "tag_valid.json"})

	cfg := testConfig(dir)
	cfg.Paths = []string{filepath.Join(other, "a.json")}

	result, err := run(context.Background(), cfg, discard, io.Discard)
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Contains(t, result.Documents[0].Error, "security validation failed")
	assert.Equal(t, "SECURITY", result.Documents[0].ErrorKind)
}

func TestRun_RelativeInputsUseDirectory(t *testing.T) {
	dir := setupTags(t, map[string]string{
		"a.json":     "tag_valid.json",
		"sub/b.json": "tag_valid.json",
	})

	cfg := testConfig(dir)
	cfg.Paths = []string{"a.json", "sub", "../escape.json"}

	result, err := run(context.Background(), cfg, discard, io.Discard)
	require.NoError(t, err)
	require.Len(t, result.Documents, 3)
	assert.Equal(t, filepath.Join(dir, "a.json"), result.Documents[0].Path)
	assert.Nil(t, result.Documents[0].Err)
	assert.Equal(t, filepath.Join(dir, "sub", "b.json"), result.Documents[1].Path)
	assert.Nil(t, result.Documents[1].Err)
	assert.Equal(t, "SECURITY", result.Documents[2].ErrorKind)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
}

func TestRun_JSONToFile(t *testing.T) {
	dir := setupTags(t, map[string]string{"a.json": "tag_valid.json"})
	cfg := testConfig(dir)
	cfg.Output = filepath.Join(t.TempDir(), "report.json")

	var stdout bytes.Buffer
	_, err := run(context.Background(), cfg, discard, &stdout)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	var report jsonReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 1, report.Succeeded)
}

func TestRun_XLSX(t *testing.T) {
	dir := setupTags(t, map[string]string{
		"a.json": "tag_valid.json",
		"b.json": "tag_eleven_blocks.json",
	})
	cfg := testConfig(dir)
	cfg.Format = config.FormatXLSX
	cfg.Output = filepath.Join(t.TempDir(), "report.xlsx")

	result, err := run(context.Background(), cfg, discard, io.Discard)
	require.NoError(t, err)

	f, err := excelize.OpenFile(cfg.Output)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.TagsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Source", rows[0][0])

	runID, err := f.GetCellValue(export.RunSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, result.RunID, runID)
}

func TestRun_XLSXRequiresOutput(t *testing.T) {
	cfg := testConfig(setupTags(t, nil))
	cfg.Format = config.FormatXLSX

	_, err := run(context.Background(), cfg, discard, io.Discard)
	assert.ErrorIs(t, err, errOutputRequired)
}

func TestRun_Cancelled(t *testing.T) {
	dir := setupTags(t, map[string]string{"a.json": "tag_valid.json"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := run(ctx, testConfig(dir), discard, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}

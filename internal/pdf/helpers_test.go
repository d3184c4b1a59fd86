package pdf

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/miroslavbel/test-task-for-zimad/internal/texttree"
)

// copyFixture copies a file from testdata into dir under name
func copyFixture(t *testing.T, fixture, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", fixture))
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// writeDict stores page as a single page dict dump
func writeDict(t *testing.T, dir, name string, page texttree.Page) string {
	t.Helper()
	data, err := json.Marshal(texttree.ToDict(page))
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// fakeRenderer serves a fixed page for every path
type fakeRenderer struct {
	pages     int
	page      texttree.Page
	countErr  error
	renderErr error
}

func (f fakeRenderer) PageCount(string) (int, error) {
	return f.pages, f.countErr
}

func (f fakeRenderer) RenderPage(string, int) (texttree.Page, error) {
	return f.page, f.renderErr
}

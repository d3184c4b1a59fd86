package pdf

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miroslavbel/test-task-for-zimad/internal/tag"
	"github.com/miroslavbel/test-task-for-zimad/internal/texttree"
)

func TestRendererFor(t *testing.T) {
	tests := []struct {
		path    string
		want    Renderer
		wantErr bool
	}{
		{path: "tag.pdf", want: NewPDFRenderer(texttree.DefaultLayoutOptions())},
		{path: "TAG.PDF", want: NewPDFRenderer(texttree.DefaultLayoutOptions())},
		{path: "tag.json", want: DictRenderer{}},
		{path: "tag.txt", wantErr: true},
		{path: "tag", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := RendererFor(tt.path, texttree.DefaultLayoutOptions())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDictRenderer(t *testing.T) {
	r := DictRenderer{}

	n, err := r.PageCount(filepath.Join("testdata", "tag_valid.json"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.PageCount(filepath.Join("testdata", "tag_two_pages.json"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := r.RenderPage(filepath.Join("testdata", "tag_valid.json"), 1)
	require.NoError(t, err)
	assert.Equal(t, 12, page.BlockCount())

	image, ok := page.Block(9)
	require.True(t, ok)
	assert.Empty(t, image.Lines)

	_, err = r.RenderPage(filepath.Join("testdata", "tag_valid.json"), 2)
	assert.Error(t, err)

	_, err = r.PageCount(filepath.Join("testdata", "missing.json"))
	assert.Error(t, err)
}

func TestPDFRenderer_PageCount(t *testing.T) {
	r := NewPDFRenderer(texttree.DefaultLayoutOptions())

	n, err := r.PageCount(filepath.Join("testdata", "single_page.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.PageCount(filepath.Join("testdata", "two_pages.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = r.PageCount(filepath.Join("testdata", "tag_valid.json"))
	assert.Error(t, err)
}

func TestPDFRenderer_RenderPage(t *testing.T) {
	r := NewPDFRenderer(texttree.DefaultLayoutOptions())

	page, err := r.RenderPage(filepath.Join("testdata", "single_page.pdf"), 1)
	require.NoError(t, err)
	require.NotZero(t, page.BlockCount())

	var text []string
	for _, b := range page.Blocks {
		for _, l := range b.Lines {
			for _, run := range l.Runs {
				text = append(text, run.Text)
			}
		}
	}
	assert.Contains(t, strings.Join(text, " "), "Qty")

	_, err = r.RenderPage(filepath.Join("testdata", "single_page.pdf"), 2)
	assert.Error(t, err)

	_, err = r.RenderPage(filepath.Join("testdata", "tag_valid.json"), 1)
	assert.Error(t, err)
}

func TestPDFRenderer_RenderTemplate(t *testing.T) {
	r := NewPDFRenderer(texttree.DefaultLayoutOptions())

	page, err := r.RenderPage(filepath.Join("testdata", "tag_template.pdf"), 1)
	require.NoError(t, err)
	require.Equal(t, tag.BlockCount, page.BlockCount())

	labels, ok := page.Block(1)
	require.True(t, ok)
	require.Len(t, labels.Lines, 2)
	assert.Equal(t, []string{"P/N:", "PN-100"}, runTexts(labels.Lines[0]))
	assert.Equal(t, []string{"S/N:"}, runTexts(labels.Lines[1]))

	fromPDF, err := tag.Extract(page)
	require.NoError(t, err)

	dict, err := DictRenderer{}.RenderPage(filepath.Join("testdata", "tag_valid.json"), 1)
	require.NoError(t, err)
	fromDict, err := tag.Extract(dict)
	require.NoError(t, err)

	assert.Equal(t, fromDict, fromPDF)
}

func runTexts(l texttree.Line) []string {
	out := make([]string, 0, len(l.Runs))
	for _, r := range l.Runs {
		out = append(out, r.Text)
	}
	return out
}

func TestIsSupportedFile(t *testing.T) {
	assert.True(t, IsSupportedFile("a.pdf"))
	assert.True(t, IsSupportedFile("a.JSON"))
	assert.False(t, IsSupportedFile("a.pdf.bak"))
	assert.False(t, IsSupportedFile("pdf"))
}

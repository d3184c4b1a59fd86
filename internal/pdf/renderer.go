package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/miroslavbel/test-task-for-zimad/internal/texttree"
)

// Supported document extensions
const (
	ExtPDF  = ".pdf"
	ExtDict = ".json"
)

// Renderer turns one page of a document into a text tree
type Renderer interface {
	PageCount(path string) (int, error)
	RenderPage(path string, pageNum int) (texttree.Page, error)
}

// PDFRenderer reads PDF files. The page count comes from pdfcpu, the
// positioned glyphs from ledongthuc/pdf.
type PDFRenderer struct {
	layout texttree.LayoutOptions
}

// NewPDFRenderer creates a PDF renderer with the given layout tuning
func NewPDFRenderer(layout texttree.LayoutOptions) *PDFRenderer {
	return &PDFRenderer{layout: layout}
}

// PageCount returns the number of pages in the PDF file
func (r *PDFRenderer) PageCount(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx.PageCount, nil
}

// RenderPage extracts the glyphs of a 1-based page and lays them out
func (r *PDFRenderer) RenderPage(path string, pageNum int) (page texttree.Page, err error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return texttree.Page{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	if pageNum < 1 || pageNum > reader.NumPage() {
		return texttree.Page{}, fmt.Errorf("invalid page number %d (document has %d pages)", pageNum, reader.NumPage())
	}

	// ledongthuc/pdf panics on some malformed content streams
	defer func() {
		if rec := recover(); rec != nil {
			page = texttree.Page{}
			err = fmt.Errorf("panic while reading page %d: %v", pageNum, rec)
		}
	}()

	p := reader.Page(pageNum)
	if p.V.IsNull() {
		return texttree.Page{}, nil
	}

	texts := p.Content().Text
	glyphs := make([]texttree.Glyph, 0, len(texts))
	for _, t := range texts {
		glyphs = append(glyphs, texttree.Glyph{
			Text:     t.S,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
			Font:     t.Font,
		})
	}
	return texttree.FromGlyphs(glyphs, r.layout), nil
}

// DictRenderer reads pre-rendered page dictionaries stored as JSON
type DictRenderer struct{}

// PageCount returns the number of pages in the dictionary file
func (DictRenderer) PageCount(path string) (int, error) {
	pages, err := readDict(path)
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// RenderPage returns the 1-based page of the dictionary file
func (DictRenderer) RenderPage(path string, pageNum int) (texttree.Page, error) {
	pages, err := readDict(path)
	if err != nil {
		return texttree.Page{}, err
	}
	if pageNum < 1 || pageNum > len(pages) {
		return texttree.Page{}, fmt.Errorf("invalid page number %d (document has %d pages)", pageNum, len(pages))
	}
	return texttree.FromDict(pages[pageNum-1]), nil
}

func readDict(path string) ([]texttree.DictPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	pages, err := texttree.DecodeDict(f)
	if err != nil {
		return nil, fmt.Errorf("invalid page dictionary: %w", err)
	}
	return pages, nil
}

// RendererFor picks the renderer for a path by its extension
func RendererFor(path string, layout texttree.LayoutOptions) (Renderer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtPDF:
		return NewPDFRenderer(layout), nil
	case ExtDict:
		return DictRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
}

// IsSupportedFile reports whether the file name has a supported extension
func IsSupportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtPDF, ExtDict:
		return true
	default:
		return false
	}
}

func isDictFile(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ExtDict
}

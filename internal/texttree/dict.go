package texttree

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/unicode/norm"
)

// Block types used by MuPDF-style dict output
const (
	DictBlockText  = 0
	DictBlockImage = 1
)

// DictSpan is a span of a dict dump. Geometry and font fields are decoded so
// dumps round-trip, but only Text reaches the tree.
type DictSpan struct {
	Text  string     `json:"text"`
	Font  string     `json:"font,omitempty"`
	Size  float64    `json:"size,omitempty"`
	Flags int        `json:"flags,omitempty"`
	BBox  [4]float64 `json:"bbox,omitempty"`
}

// DictLine is a line of a dict dump
type DictLine struct {
	Spans []DictSpan `json:"spans"`
	WMode int        `json:"wmode,omitempty"`
	BBox  [4]float64 `json:"bbox,omitempty"`
}

// DictBlock is a block of a dict dump
type DictBlock struct {
	Type  int        `json:"type"`
	Lines []DictLine `json:"lines,omitempty"`
	BBox  [4]float64 `json:"bbox,omitempty"`
}

// DictPage is one page of a dict dump
type DictPage struct {
	Width  float64     `json:"width,omitempty"`
	Height float64     `json:"height,omitempty"`
	Blocks []DictBlock `json:"blocks"`
}

type dictDocument struct {
	Pages  []DictPage  `json:"pages"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Blocks []DictBlock `json:"blocks"`
}

// DecodeDict decodes a JSON dump of either a single page ({"blocks": [...]})
// or a whole document ({"pages": [...]}).
func DecodeDict(r io.Reader) ([]DictPage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dict dump: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode dict dump: %w", err)
	}

	var doc dictDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode dict dump: %w", err)
	}

	if _, ok := raw["pages"]; ok {
		return doc.Pages, nil
	}
	if _, ok := raw["blocks"]; ok {
		return []DictPage{{Width: doc.Width, Height: doc.Height, Blocks: doc.Blocks}}, nil
	}
	return nil, fmt.Errorf("decode dict dump: neither \"pages\" nor \"blocks\" present")
}

// FromDict converts a dict page into a Page. Every block is kept, including
// image blocks which carry no lines, so the block count matches the source.
func FromDict(dp DictPage) Page {
	page := Page{Blocks: make([]Block, 0, len(dp.Blocks))}
	for _, db := range dp.Blocks {
		block := Block{Lines: make([]Line, 0, len(db.Lines))}
		for _, dl := range db.Lines {
			line := Line{Runs: make([]TextRun, 0, len(dl.Spans))}
			for _, ds := range dl.Spans {
				line.Runs = append(line.Runs, TextRun{Text: norm.NFC.String(ds.Text)})
			}
			block.Lines = append(block.Lines, line)
		}
		page.Blocks = append(page.Blocks, block)
	}
	return page
}

// ToDict converts a Page back into a dict page without geometry. Decoding
// the result with FromDict yields the same Page.
func ToDict(p Page) DictPage {
	dp := DictPage{Blocks: make([]DictBlock, 0, len(p.Blocks))}
	for _, b := range p.Blocks {
		db := DictBlock{Type: DictBlockText, Lines: make([]DictLine, 0, len(b.Lines))}
		for _, l := range b.Lines {
			dl := DictLine{Spans: make([]DictSpan, 0, len(l.Runs))}
			for _, r := range l.Runs {
				dl.Spans = append(dl.Spans, DictSpan{Text: r.Text})
			}
			db.Lines = append(db.Lines, dl)
		}
		dp.Blocks = append(dp.Blocks, db)
	}
	return dp
}

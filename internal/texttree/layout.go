package texttree

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const defaultFontSize = 12.0

// Glyph is a positioned piece of text as reported by a PDF text extractor.
// X and Y are the baseline origin in PDF user space (Y grows upwards).
type Glyph struct {
	Text     string
	X        float64
	Y        float64
	W        float64
	FontSize float64
	Font     string
}

// LayoutOptions tunes how glyphs are grouped into lines, runs and blocks.
// Gap factors are relative to the font size of the glyphs involved.
type LayoutOptions struct {
	// LineTolerance is the maximum baseline delta in points for glyphs on the same row
	LineTolerance float64
	// SpaceGapFactor inserts a space inside a run when the gap exceeds it
	SpaceGapFactor float64
	// RunGapFactor starts a new run when the gap exceeds it
	RunGapFactor float64
	// ColumnGapFactor splits a row into separate lines when the gap exceeds it
	ColumnGapFactor float64
	// BlockGapFactor starts a new block when the vertical distance to the
	// previous line exceeds it
	BlockGapFactor float64
	// AlignTolerance is the maximum left-edge delta in points for a line to
	// join an existing block
	AlignTolerance float64
}

// DefaultLayoutOptions returns the options tuned for the receiving tag template
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		LineTolerance:   3.0,
		SpaceGapFactor:  0.15,
		RunGapFactor:    1.0,
		ColumnGapFactor: 4.0,
		BlockGapFactor:  1.6,
		AlignTolerance:  12.0,
	}
}

// fragment is one line of text in one column
type fragment struct {
	x0   float64
	y    float64
	size float64
	line Line
}

type layoutBlock struct {
	top   float64
	left  float64
	frags []fragment
}

// FromGlyphs groups positioned glyphs into a Page. Rows are formed by
// baseline, rows split into column fragments on wide gaps, fragments split
// into runs on font changes or gaps, and vertically adjacent left-aligned
// fragments form blocks. Run text is NFC normalized and edge trimmed.
func FromGlyphs(glyphs []Glyph, opts LayoutOptions) Page {
	rows := groupRows(glyphs, opts.LineTolerance)

	var frags []fragment
	for _, row := range rows {
		for _, seg := range splitColumns(row, opts.ColumnGapFactor) {
			if frag, ok := buildFragment(seg, opts); ok {
				frags = append(frags, frag)
			}
		}
	}

	blocks := groupBlocks(frags, opts)

	page := Page{Blocks: make([]Block, 0, len(blocks))}
	for _, lb := range blocks {
		block := Block{Lines: make([]Line, 0, len(lb.frags))}
		for _, f := range lb.frags {
			block.Lines = append(block.Lines, f.line)
		}
		page.Blocks = append(page.Blocks, block)
	}
	return page
}

// groupRows sorts glyphs top to bottom and groups them by baseline
func groupRows(glyphs []Glyph, tolerance float64) [][]Glyph {
	sorted := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.Text != "" {
			sorted = append(sorted, g)
		}
	}
	if len(sorted) == 0 {
		return nil
	}

	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows [][]Glyph
	current := []Glyph{sorted[0]}
	currentY := sorted[0].Y
	for _, g := range sorted[1:] {
		if math.Abs(g.Y-currentY) <= tolerance {
			current = append(current, g)
			continue
		}
		rows = append(rows, current)
		current = []Glyph{g}
		currentY = g.Y
	}
	rows = append(rows, current)

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

// splitColumns cuts a row wherever the horizontal gap is wide enough to be a
// column boundary
func splitColumns(row []Glyph, factor float64) [][]Glyph {
	var segments [][]Glyph
	start := 0
	for i := 1; i < len(row); i++ {
		if gap(row[i-1], row[i]) > factor*fontSize(row[i-1]) {
			segments = append(segments, row[start:i])
			start = i
		}
	}
	return append(segments, row[start:])
}

func buildFragment(seg []Glyph, opts LayoutOptions) (fragment, bool) {
	frag := fragment{
		x0: seg[0].X,
		y:  seg[0].Y,
	}

	var runs []string
	runFont := ""
	for i, g := range seg {
		frag.size = math.Max(frag.size, fontSize(g))
		blank := strings.TrimSpace(g.Text) == ""

		if i == 0 {
			runs = append(runs, "")
		} else {
			d := gap(seg[i-1], g)
			fontChanged := !blank && runFont != "" && g.Font != runFont
			switch {
			case d > opts.RunGapFactor*fontSize(g) || fontChanged:
				runs = append(runs, "")
				runFont = ""
			case d > opts.SpaceGapFactor*fontSize(g):
				if !strings.HasSuffix(runs[len(runs)-1], " ") && !strings.HasPrefix(g.Text, " ") {
					runs[len(runs)-1] += " "
				}
			}
		}

		if !blank && runFont == "" {
			runFont = g.Font
		}
		runs[len(runs)-1] += g.Text
	}

	for _, run := range runs {
		text := strings.TrimSpace(norm.NFC.String(run))
		if text != "" {
			frag.line.Runs = append(frag.line.Runs, TextRun{Text: text})
		}
	}
	return frag, len(frag.line.Runs) > 0
}

// groupBlocks attaches each fragment to the block directly above it when it
// is close enough and left aligned, otherwise starts a new block
func groupBlocks(frags []fragment, opts LayoutOptions) []*layoutBlock {
	var blocks []*layoutBlock
	for _, f := range frags {
		var best *layoutBlock
		bestDelta := math.MaxFloat64
		for _, b := range blocks {
			last := b.frags[len(b.frags)-1]
			dy := last.y - f.y
			if dy <= opts.LineTolerance || dy > opts.BlockGapFactor*math.Max(last.size, f.size) {
				continue
			}
			dx := math.Abs(b.left - f.x0)
			if dx <= opts.AlignTolerance && dx < bestDelta {
				best, bestDelta = b, dx
			}
		}
		if best == nil {
			blocks = append(blocks, &layoutBlock{top: f.y, left: f.x0, frags: []fragment{f}})
			continue
		}
		best.frags = append(best.frags, f)
		best.left = math.Min(best.left, f.x0)
	}

	orderBlocks(blocks, opts.LineTolerance)
	return blocks
}

// orderBlocks sorts blocks top to bottom, then left to right within each band
// of blocks whose tops lie within tolerance of the band's highest top
func orderBlocks(blocks []*layoutBlock, tolerance float64) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].top != blocks[j].top {
			return blocks[i].top > blocks[j].top
		}
		return blocks[i].left < blocks[j].left
	})

	for start := 0; start < len(blocks); {
		end := start + 1
		for end < len(blocks) && blocks[start].top-blocks[end].top <= tolerance {
			end++
		}
		band := blocks[start:end]
		sort.SliceStable(band, func(i, j int) bool { return band[i].left < band[j].left })
		start = end
	}
}

func gap(prev, next Glyph) float64 {
	return next.X - (prev.X + prev.W)
}

func fontSize(g Glyph) float64 {
	if g.FontSize <= 0 {
		return defaultFontSize
	}
	return g.FontSize
}

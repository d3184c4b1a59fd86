// Package texttree holds the normalized block → line → run tree of a rendered
// page and the adapters that build it from renderer output.
package texttree

// TextRun is one contiguous span of rendered text within a line.
type TextRun struct {
	Text string `json:"text"`
}

// Line is an ordered sequence of runs in reading order.
type Line struct {
	Runs []TextRun `json:"runs"`
}

// Block is an ordered sequence of lines.
type Block struct {
	Lines []Line `json:"lines"`
}

// Page is the ordered sequence of blocks of a single rendered page.
type Page struct {
	Blocks []Block `json:"blocks"`
}

// BlockCount returns the number of blocks on the page
func (p Page) BlockCount() int {
	return len(p.Blocks)
}

// Block returns the block at index i and whether it exists
func (p Page) Block(i int) (Block, bool) {
	if i < 0 || i >= len(p.Blocks) {
		return Block{}, false
	}
	return p.Blocks[i], true
}

// Line returns the line at index i and whether it exists
func (b Block) Line(i int) (Line, bool) {
	if i < 0 || i >= len(b.Lines) {
		return Line{}, false
	}
	return b.Lines[i], true
}

// RunCount returns the number of runs on the line
func (l Line) RunCount() int {
	return len(l.Runs)
}

// Run returns the run at index i and whether it exists
func (l Line) Run(i int) (TextRun, bool) {
	if i < 0 || i >= len(l.Runs) {
		return TextRun{}, false
	}
	return l.Runs[i], true
}

// NewLine builds a line from run texts.
func NewLine(texts ...string) Line {
	runs := make([]TextRun, len(texts))
	for i, t := range texts {
		runs[i] = TextRun{Text: t}
	}
	return Line{Runs: runs}
}

// NewBlock builds a block from lines.
func NewBlock(lines ...Line) Block {
	return Block{Lines: lines}
}

// Package tag turns the text tree of a receiving tag page into a typed Record.
//
// Every field is read from a fixed block/line/run coordinate listed in
// Fields. Optional fields are present only when their line has exactly two
// runs (label and value); a single run means the label stands alone. Any
// other run count, a missing coordinate, a block count other than
// BlockCount or an unparsable value fails the whole extraction with an
// *ExtractionError. Extract is a pure function and safe for concurrent use.
package tag

import (
	"strconv"
	"strings"
	"time"

	"github.com/miroslavbel/test-task-for-zimad/internal/texttree"
)

// Extract reads every field of the template from page. It never returns a
// partial record: on failure the record is nil and the error is an
// *ExtractionError for the first field, in table order, that failed.
func Extract(page texttree.Page) (*Record, error) {
	if page.BlockCount() != BlockCount {
		return nil, unsupportedFormat(page.BlockCount())
	}

	var rec Record
	for _, f := range Fields {
		v, err := f.resolve(page)
		if err != nil {
			return nil, err
		}
		f.set(&rec, v)
	}
	return &rec, nil
}

// HasOptionalValue reports whether a labeled line carries a value: two runs
// mean label and value, one run means the label alone. Any other run count is
// outside the template and yields an AmbiguousPresence error without a field
// name.
func HasOptionalValue(line texttree.Line) (bool, error) {
	switch n := line.RunCount(); n {
	case 2:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, ambiguousPresence("", n)
	}
}

func (f Field) resolve(page texttree.Page) (value, error) {
	block, ok := page.Block(f.Block)
	if !ok {
		return value{}, missingField(f.Name)
	}
	line, ok := block.Line(f.Line)
	if !ok {
		return value{}, missingField(f.Name)
	}

	if f.Kind == KindOptionalString {
		present, err := HasOptionalValue(line)
		if err != nil {
			return value{}, ambiguousPresence(f.Name, line.RunCount())
		}
		if !present {
			return value{opt: None()}, nil
		}
	}

	run, ok := line.Run(f.Run)
	if !ok {
		return value{}, missingField(f.Name)
	}

	switch f.Kind {
	case KindString:
		return value{str: run.Text}, nil
	case KindOptionalString:
		return value{opt: Some(run.Text)}, nil
	case KindInt:
		n, err := f.parseInt(run.Text)
		if err != nil {
			return value{}, err
		}
		return value{num: n}, nil
	case KindDate:
		d, err := time.Parse(DateLayout, run.Text)
		if err != nil {
			return value{}, malformedValue(f.Name, run.Text, f.Kind, err)
		}
		return value{date: d}, nil
	default:
		return value{}, malformedValue(f.Name, run.Text, f.Kind, nil)
	}
}

// parseInt drops the field's prefix characters and parses the rest as a
// base-10 integer, ignoring surrounding whitespace
func (f Field) parseInt(text string) (int, error) {
	digits := text
	if f.Prefix > 0 {
		runes := []rune(text)
		if len(runes) < f.Prefix {
			return 0, malformedValue(f.Name, text, f.Kind, nil)
		}
		digits = string(runes[f.Prefix:])
	}

	n, err := strconv.Atoi(strings.TrimSpace(digits))
	if err != nil {
		return 0, malformedValue(f.Name, text, f.Kind, err)
	}
	return n, nil
}

package tag

import (
	"fmt"
)

// ErrorKind is the closed set of extraction failure categories
type ErrorKind int

const (
	// UnsupportedFormat means the page does not have the template's block count
	UnsupportedFormat ErrorKind = iota + 1
	// MissingField means a field's block, line or run does not exist
	MissingField
	// MalformedValue means a field's text could not be parsed as its kind
	MalformedValue
	// AmbiguousPresence means an optional field's line has neither 1 nor 2 runs
	AmbiguousPresence
)

// String returns a string representation of the ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case UnsupportedFormat:
		return "UNSUPPORTED_FORMAT"
	case MissingField:
		return "MISSING_FIELD"
	case MalformedValue:
		return "MALFORMED_VALUE"
	case AmbiguousPresence:
		return "AMBIGUOUS_PRESENCE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the error kind by name
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Kind sentinels for errors.Is matching.
var (
	ErrUnsupportedFormat = &ExtractionError{Kind: UnsupportedFormat}
	ErrMissingField      = &ExtractionError{Kind: MissingField}
	ErrMalformedValue    = &ExtractionError{Kind: MalformedValue}
	ErrAmbiguousPresence = &ExtractionError{Kind: AmbiguousPresence}
)

// ExtractionError describes why a page could not be turned into a Record.
// Only the fields relevant to Kind are set.
type ExtractionError struct {
	Kind       ErrorKind `json:"kind"`
	Field      string    `json:"field,omitempty"`
	Raw        string    `json:"raw,omitempty"`
	Expected   Kind      `json:"expected,omitempty"`
	RunCount   int       `json:"run_count,omitempty"`
	BlockCount int       `json:"block_count,omitempty"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	switch e.Kind {
	case UnsupportedFormat:
		return fmt.Sprintf("[%s] expected %d blocks, got %d", e.Kind, BlockCount, e.BlockCount)
	case MissingField:
		return fmt.Sprintf("[%s] %s: coordinate not present", e.Kind, e.Field)
	case MalformedValue:
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s: %q is not a valid %s: %v", e.Kind, e.Field, e.Raw, e.Expected, e.Err)
		}
		return fmt.Sprintf("[%s] %s: %q is not a valid %s", e.Kind, e.Field, e.Raw, e.Expected)
	case AmbiguousPresence:
		return fmt.Sprintf("[%s] %s: line has %d runs, want 1 or 2", e.Kind, e.Field, e.RunCount)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, e.Field)
	}
}

// Unwrap returns the underlying parse error, if any
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an ExtractionError of the same kind. A target
// with a Field set also has to match the field.
func (e *ExtractionError) Is(target error) bool {
	t, ok := target.(*ExtractionError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

func unsupportedFormat(blocks int) *ExtractionError {
	return &ExtractionError{Kind: UnsupportedFormat, BlockCount: blocks}
}

func missingField(field string) *ExtractionError {
	return &ExtractionError{Kind: MissingField, Field: field}
}

func malformedValue(field, raw string, expected Kind, err error) *ExtractionError {
	return &ExtractionError{Kind: MalformedValue, Field: field, Raw: raw, Expected: expected, Err: err}
}

func ambiguousPresence(field string, runs int) *ExtractionError {
	return &ExtractionError{Kind: AmbiguousPresence, Field: field, RunCount: runs}
}

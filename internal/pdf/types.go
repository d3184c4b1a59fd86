package pdf

import (
	"errors"

	"github.com/miroslavbel/test-task-for-zimad/internal/pdf/security"
	"github.com/miroslavbel/test-task-for-zimad/internal/tag"
)

var (
	// ErrUnsupportedFile is returned for files that are neither PDF nor page dictionaries
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrPageCount is returned when a document does not have exactly one page
	ErrPageCount = errors.New("document must have exactly one page")
)

// FileInfo represents information about a tag document on disk
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// TagExtractFileRequest represents a request to extract one tag document
type TagExtractFileRequest struct {
	Path string `json:"path"`
}

// TagExtractDirectoryRequest represents a request to extract every tag
// document in a directory
type TagExtractDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// TagValidateFileRequest represents a request to validate a tag document
type TagValidateFileRequest struct {
	Path string `json:"path"`
}

// Response Types

// TagExtractFileResult represents the result of a single extraction
type TagExtractFileResult struct {
	Path   string      `json:"path"`
	Record *tag.Record `json:"record"`
}

// DocumentResult is the outcome for one document of a batch. Exactly one of
// Record and Err is set.
type DocumentResult struct {
	Path      string      `json:"path"`
	Record    *tag.Record `json:"record,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
	Err       error       `json:"-"`
}

// TagExtractDirectoryResult represents the result of a directory extraction
type TagExtractDirectoryResult struct {
	RunID     string           `json:"run_id"`
	Directory string           `json:"directory"`
	Documents []DocumentResult `json:"documents"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

// TagValidateFileResult represents the result of a validation
type TagValidateFileResult struct {
	Valid     bool   `json:"valid"`
	Path      string `json:"path"`
	Pages     int    `json:"pages,omitempty"`
	Message   string `json:"message,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// ErrorKindOf names the failure category of err: the extraction error kind
// when there is one, otherwise a service level category.
func ErrorKindOf(err error) string {
	var xerr *tag.ExtractionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &xerr):
		return xerr.Kind.String()
	case errors.Is(err, security.ErrOutsideDirectory), errors.Is(err, security.ErrInvalidPath):
		return "SECURITY"
	case errors.Is(err, ErrPageCount):
		return "PAGE_COUNT"
	case errors.Is(err, ErrUnsupportedFile):
		return "UNSUPPORTED_FILE"
	default:
		return "READ_ERROR"
	}
}

// NewDocumentResult records the outcome of one document
func NewDocumentResult(path string, rec *tag.Record, err error) DocumentResult {
	if err != nil {
		return DocumentResult{Path: path, Error: err.Error(), ErrorKind: ErrorKindOf(err), Err: err}
	}
	return DocumentResult{Path: path, Record: rec}
}

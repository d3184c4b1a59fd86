package pdf

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/miroslavbel/test-task-for-zimad/internal/texttree"
)

// Validator handles tag document validation
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new validator with the specified size limit
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile checks that a file can be handed to a renderer. Validation
// failures are reported in the result, not as an error.
func (v *Validator) ValidateFile(req TagValidateFileRequest) (*TagValidateFileResult, error) {
	result := &TagValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	if err := v.validateFile(req.Path); err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // validation failure is part of the result
	}

	result.Valid = true
	return result, nil
}

// validateFile checks the file on disk and that its content opens
func (v *Validator) validateFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if err := v.ValidateFileInfo(filePath, fileInfo); err != nil {
		return err
	}

	return v.validateContent(filePath)
}

func (v *Validator) validateContent(filePath string) error {
	if isDictFile(filePath) {
		f, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("cannot open file: %w", err)
		}
		defer f.Close()

		if _, err := texttree.DecodeDict(f); err != nil {
			return fmt.Errorf("invalid page dictionary: %w", err)
		}
		return nil
	}

	f, _, err := pdf.Open(filePath)
	if err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return nil
}

// ValidateFileInfo performs the checks that need no file content
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !IsSupportedFile(filePath) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

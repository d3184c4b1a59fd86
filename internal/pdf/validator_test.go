package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	validator := NewValidator(1024 * 1024) // 1MB limit

	validDict := copyFixture(t, "tag_valid.json", dir, "valid.json")
	validPDF := copyFixture(t, "single_page.pdf", dir, "valid.pdf")

	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		return path
	}
	empty := write("empty.json", nil)
	notPDF := write("fake.pdf", []byte("this is not a PDF"))
	badJSON := write("broken.json", []byte("{\"blocks\": ["))
	noBlocks := write("other.json", []byte(`{"title": "x"}`))
	text := write("notes.txt", []byte("hello"))
	large := write("large.json", make([]byte, 1024*1024+1))

	tests := []struct {
		name        string
		path        string
		expectValid bool
	}{
		{name: "empty path", path: ""},
		{name: "non-existent file", path: "/non/existent/file.pdf"},
		{name: "directory", path: dir},
		{name: "unsupported extension", path: text},
		{name: "empty file", path: empty},
		{name: "too large", path: large},
		{name: "not a PDF", path: notPDF},
		{name: "broken JSON", path: badJSON},
		{name: "JSON without blocks", path: noBlocks},
		{name: "valid dict", path: validDict, expectValid: true},
		{name: "valid PDF", path: validPDF, expectValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.ValidateFile(TagValidateFileRequest{Path: tt.path})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result == nil {
				t.Fatalf("result should not be nil")
			}
			if result.Valid != tt.expectValid {
				t.Errorf("expected Valid=%v but got %v (%s)", tt.expectValid, result.Valid, result.Message)
			}
			if result.Path != tt.path {
				t.Errorf("expected Path=%s but got %s", tt.path, result.Path)
			}
			if !tt.expectValid && result.Message == "" {
				t.Errorf("expected validation message for invalid file")
			}
		})
	}
}

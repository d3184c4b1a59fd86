// Package export writes batch extraction results as a JSON report or an
// XLSX workbook.
package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/xuri/excelize/v2"

	"github.com/miroslavbel/test-task-for-zimad/internal/pdf"
	"github.com/miroslavbel/test-task-for-zimad/internal/tag"
)

//go:embed record.schema.json
var recordSchema []byte

// Sheet names of the workbook
const (
	TagsSheet = "Tags"
	RunSheet  = "Run"
)

// Report is the JSON form of a batch run
type Report struct {
	RunID       string               `json:"run_id"`
	Directory   string               `json:"directory,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
	Succeeded   int                  `json:"succeeded"`
	Failed      int                  `json:"failed"`
	Documents   []pdf.DocumentResult `json:"documents"`
}

// Exporter serializes batch results. It is safe for concurrent use.
type Exporter struct {
	schema *jsonschema.Schema
	logger *slog.Logger
	now    func() time.Time
}

// NewExporter compiles the record schema and returns an exporter
func NewExporter(logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.schema.json", bytes.NewReader(recordSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Exporter{schema: schema, logger: logger, now: time.Now}, nil
}

// ValidateRecord checks the JSON encoding of rec against the record schema
func (e *Exporter) ValidateRecord(rec *tag.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := e.schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}

// NewReport builds the report of a run, validating every record
func (e *Exporter) NewReport(run *pdf.TagExtractDirectoryResult) (*Report, error) {
	for _, doc := range run.Documents {
		if doc.Record == nil {
			continue
		}
		if err := e.ValidateRecord(doc.Record); err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Path, err)
		}
	}

	return &Report{
		RunID:       run.RunID,
		Directory:   run.Directory,
		GeneratedAt: e.now().UTC(),
		Succeeded:   run.Succeeded,
		Failed:      run.Failed,
		Documents:   run.Documents,
	}, nil
}

// WriteJSON writes the run as an indented JSON report
func (e *Exporter) WriteJSON(w io.Writer, run *pdf.TagExtractDirectoryResult) error {
	start := time.Now()

	report, err := e.NewReport(run)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("json write: %w", err)
	}

	e.logger.Info("export.json.ok",
		"run_id", run.RunID,
		"documents", len(run.Documents),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// XLSX returns a workbook (as bytes) with one row per document on the tags
// sheet and the run summary on the run sheet
func (e *Exporter) XLSX(run *pdf.TagExtractDirectoryResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), TagsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(RunSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(TagsSheet)
	f.SetActiveSheet(activeIndex)

	headers := append([]string{"Source"}, tag.FieldNames()...)
	headers = append(headers, "Error Kind", "Error")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(TagsSheet, cell, h)
	}

	for r, doc := range run.Documents {
		row := r + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(TagsSheet, cell, v)
		}

		write(1, doc.Path)
		if doc.Record != nil {
			// absent optionals stay unset, present empty strings are written
			for i, entry := range doc.Record.Entries() {
				if v, ok := entry.Get(); ok {
					write(i+2, cellValue(tag.Fields[i].Kind, v))
				}
			}
		}
		write(len(headers)-1, doc.ErrorKind)
		write(len(headers), doc.Error)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(TagsSheet, "A", "A", 48)
	_ = f.SetColWidth(TagsSheet, "B", lastCol, 16)
	_ = f.SetColWidth(TagsSheet, lastCol, lastCol, 60)

	summary := [][2]any{
		{"Run ID", run.RunID},
		{"Directory", run.Directory},
		{"Generated At", e.now().UTC().Format(time.RFC3339)},
		{"Documents", len(run.Documents)},
		{"Succeeded", run.Succeeded},
		{"Failed", run.Failed},
	}
	for i, kv := range summary {
		_ = f.SetCellValue(RunSheet, fmt.Sprintf("A%d", i+1), kv[0])
		_ = f.SetCellValue(RunSheet, fmt.Sprintf("B%d", i+1), kv[1])
	}
	_ = f.SetColWidth(RunSheet, "A", "A", 16)
	_ = f.SetColWidth(RunSheet, "B", "B", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("export.xlsx.ok",
		"run_id", run.RunID,
		"rows", len(run.Documents),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// cellValue keeps integer fields numeric in the sheet
func cellValue(kind tag.Kind, v string) any {
	if kind == tag.KindInt {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return v
}

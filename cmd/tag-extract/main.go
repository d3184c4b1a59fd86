// Command tag-extract extracts receiving tags from files and directories and
// writes one JSON or XLSX report for the whole run.
//
//	tag-extract --dir ./tags                      # every tag under ./tags, JSON on stdout
//	tag-extract --dir ./tags a.pdf b.json         # selected files
//	tag-extract --format xlsx -o run.xlsx ./tags  # spreadsheet
//
// The exit status is 1 when any document failed and 2 on usage errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"

	"github.com/miroslavbel/test-task-for-zimad/internal/config"
	"github.com/miroslavbel/test-task-for-zimad/internal/export"
	"github.com/miroslavbel/test-task-for-zimad/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

var errOutputRequired = errors.New("xlsx format requires --output")

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		fmt.Printf("tag-extract %s (%s, %s)\n", version, gitCommit, runtime.Version())
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "tag-extract: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := run(ctx, cfg, logger, os.Stdout)
	stop()
	switch {
	case errors.Is(err, errOutputRequired):
		fmt.Fprintf(os.Stderr, "tag-extract: %v\n", err)
		os.Exit(2)
	case err != nil:
		logger.Error("run.failed", "error", err)
		os.Exit(1)
	case result.Failed > 0:
		os.Exit(1)
	}
}

// run extracts every input and writes the report to cfg.Output, or to stdout
// for JSON when no output is set
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) (*pdf.TagExtractDirectoryResult, error) {
	if cfg.Format == config.FormatXLSX && cfg.Output == "" {
		return nil, errOutputRequired
	}

	service, err := pdf.NewService(cfg.MaxFileSize, cfg.Directory,
		pdf.WithWorkers(cfg.Workers),
		pdf.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag service: %w", err)
	}
	exporter, err := export.NewExporter(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	result, err := extractAll(ctx, service, cfg.Directory, cfg.Paths)
	if err != nil {
		return nil, err
	}

	if err := writeReport(exporter, cfg, result, stdout); err != nil {
		return nil, err
	}
	return result, nil
}

// extractAll merges the results of every input into one run. Relative
// inputs are taken from the configured directory. Directories are walked,
// anything else is extracted as a single file. With no inputs the configured
// directory is used.
func extractAll(ctx context.Context, service *pdf.Service, directory string, inputs []string) (*pdf.TagExtractDirectoryResult, error) {
	if len(inputs) == 0 {
		inputs = []string{directory}
	}

	merged := &pdf.TagExtractDirectoryResult{
		RunID:     uuid.NewString(),
		Directory: directory,
	}
	for _, input := range inputs {
		path, err := service.ResolvePath(input)
		if err != nil {
			merged.Documents = append(merged.Documents, pdf.NewDocumentResult(input, nil, err))
			continue
		}

		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			batch, err := service.ExtractDirectory(ctx, pdf.TagExtractDirectoryRequest{Directory: path})
			if err != nil {
				return nil, err
			}
			merged.Documents = append(merged.Documents, batch.Documents...)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var doc pdf.DocumentResult
		if res, err := service.ExtractFile(ctx, pdf.TagExtractFileRequest{Path: path}); err != nil {
			doc = pdf.NewDocumentResult(path, nil, err)
		} else {
			doc = pdf.NewDocumentResult(path, res.Record, nil)
		}
		merged.Documents = append(merged.Documents, doc)
	}

	for _, doc := range merged.Documents {
		if doc.Err != nil {
			merged.Failed++
		} else {
			merged.Succeeded++
		}
	}
	return merged, nil
}

func writeReport(exporter *export.Exporter, cfg *config.Config, result *pdf.TagExtractDirectoryResult, stdout io.Writer) error {
	if cfg.Format == config.FormatXLSX {
		data, err := exporter.XLSX(result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Output, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.Output, err)
		}
		return nil
	}

	if cfg.Output == "" {
		return exporter.WriteJSON(stdout, result)
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cfg.Output, err)
	}
	if err := exporter.WriteJSON(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

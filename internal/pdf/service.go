package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/miroslavbel/test-task-for-zimad/internal/pdf/security"
	"github.com/miroslavbel/test-task-for-zimad/internal/tag"
	"github.com/miroslavbel/test-task-for-zimad/internal/texttree"
)

// RendererFunc picks the renderer for a document path
type RendererFunc func(path string) (Renderer, error)

// Service loads tag documents from disk and runs the field extractor on them
type Service struct {
	maxFileSize   int64
	workers       int
	layout        texttree.LayoutOptions
	validator     *Validator
	search        *Search
	pathValidator *security.PathValidator
	renderer      RendererFunc
	logger        *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger used for per-document and per-batch events
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkers bounds the number of documents extracted concurrently
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLayout sets the glyph layout tuning used by the PDF renderer
func WithLayout(layout texttree.LayoutOptions) Option {
	return func(s *Service) {
		s.layout = layout
	}
}

// WithRenderer replaces extension based renderer selection
func WithRenderer(fn RendererFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.renderer = fn
		}
	}
}

// NewService creates a new service confined to configuredDirectory
func NewService(maxFileSize int64, configuredDirectory string, opts ...Option) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	s := &Service{
		maxFileSize:   maxFileSize,
		workers:       1,
		layout:        texttree.DefaultLayoutOptions(),
		validator:     NewValidator(maxFileSize),
		search:        NewSearch(maxFileSize),
		pathValidator: pathValidator,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		layout := s.layout
		s.renderer = func(path string) (Renderer, error) {
			return RendererFor(path, layout)
		}
	}
	return s, nil
}

// ExtractFile extracts the record of a single tag document
func (s *Service) ExtractFile(ctx context.Context, req TagExtractFileRequest) (*TagExtractFileResult, error) {
	rec, err := s.extract(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	return &TagExtractFileResult{Path: req.Path, Record: rec}, nil
}

// ExtractDirectory extracts every tag document in a directory. Failures of
// individual documents are reported in their results; only cancellation and
// directory errors fail the call. Results keep the path order of the walk.
func (s *Service) ExtractDirectory(ctx context.Context, req TagExtractDirectoryRequest) (*TagExtractDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}
	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	files, err := s.search.FindDocuments(req.Directory, req.Query, 0)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	start := time.Now()
	results := make([]DocumentResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := s.extract(gctx, f.Path)
			results[i] = NewDocumentResult(f.Path, rec, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("directory extraction cancelled: %w", err)
	}

	result := &TagExtractDirectoryResult{
		RunID:     runID,
		Directory: req.Directory,
		Documents: results,
	}
	for _, r := range results {
		if r.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	s.logger.Info("tag.batch.done",
		"run_id", runID,
		"directory", req.Directory,
		"documents", len(results),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// ValidateFile reports whether a document is a readable single page tag
// that extracts cleanly
func (s *Service) ValidateFile(ctx context.Context, req TagValidateFileRequest) (*TagValidateFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	result, err := s.validator.ValidateFile(req)
	if err != nil || !result.Valid {
		return result, err
	}

	renderer, err := s.renderer(req.Path)
	if err != nil {
		return invalid(result, err), nil
	}
	pages, err := renderer.PageCount(req.Path)
	if err != nil {
		return invalid(result, err), nil
	}
	result.Pages = pages

	if _, err := s.extract(ctx, req.Path); err != nil {
		return invalid(result, err), nil
	}
	return result, nil
}

func invalid(result *TagValidateFileResult, err error) *TagValidateFileResult {
	result.Valid = false
	result.Message = err.Error()
	result.ErrorKind = ErrorKindOf(err)
	return result
}

// extract runs the whole pipeline for one file: file checks, page gate,
// rendering and field extraction
func (s *Service) extract(ctx context.Context, path string) (rec *tag.Record, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			s.logger.Warn("tag.extract.failed",
				"path", path,
				"kind", ErrorKindOf(err),
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return
		}
		s.logger.Debug("tag.extract.ok",
			"path", path,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// walked files can be symlinks pointing out of the directory
	if err := s.pathValidator.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := s.validator.ValidateFileInfo(path, info); err != nil {
		return nil, err
	}

	renderer, err := s.renderer(path)
	if err != nil {
		return nil, err
	}

	pages, err := renderer.PageCount(path)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages of %s: %w", path, err)
	}
	if pages != 1 {
		return nil, fmt.Errorf("%w: %s has %d", ErrPageCount, path, pages)
	}

	page, err := renderer.RenderPage(path, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", path, err)
	}

	rec, err = tag.Extract(page)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", path, err)
	}
	return rec, nil
}

// FindDocuments lists the tag documents in a directory inside the
// configured directory
func (s *Service) FindDocuments(directory, query string, limit int) ([]FileInfo, error) {
	if directory == "" {
		directory = s.pathValidator.GetConfiguredDirectory()
	}
	if err := s.pathValidator.ValidateDirectory(directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.search.FindDocuments(directory, query, limit)
}

// ResolvePath resolves a path relative to the configured directory and
// checks that it stays inside it
func (s *Service) ResolvePath(path string) (string, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return resolved, nil
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// ConfiguredDirectory returns the directory the service is confined to
func (s *Service) ConfiguredDirectory() string {
	return s.pathValidator.GetConfiguredDirectory()
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.maxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be greater than 0")
	}

	if s.maxFileSize > 1024*1024*1024 { // 1GB limit
		return fmt.Errorf("maxFileSize cannot exceed 1GB")
	}

	return nil
}

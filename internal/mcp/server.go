package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/miroslavbel/test-task-for-zimad/internal/config"
	"github.com/miroslavbel/test-task-for-zimad/internal/descriptions"
	"github.com/miroslavbel/test-task-for-zimad/internal/export"
	"github.com/miroslavbel/test-task-for-zimad/internal/pdf"
)

// shutdownTimeout bounds the SSE server shutdown
const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *pdf.Service
	exporter  *export.Exporter
	mcpServer *server.MCPServer
	logger    *slog.Logger

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *pdf.Service, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	exporter, err := export.NewExporter(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool list never changes
	)

	s := &Server{
		config:    cfg,
		service:   service,
		exporter:  exporter,
		mcpServer: mcpServer,
		logger:    logger,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolExtractFile,
		mcp.WithDescription(descriptions.TagExtractFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the tag document, absolute or relative to the configured directory"),
		),
	), s.handleExtractFile)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolExtractDirectory,
		mcp.WithDescription(descriptions.TagExtractDirectoryDescription),
		mcp.WithString("directory",
			mcp.Description("Directory to extract (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional fuzzy file name filter"),
		),
	), s.handleExtractDirectory)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolValidateFile,
		mcp.WithDescription(descriptions.TagValidateFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the tag document, absolute or relative to the configured directory"),
		),
	), s.handleValidateFile)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolSearchDirectory,
		mcp.WithDescription(descriptions.TagSearchDirectoryDescription),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	), s.handleSearchDirectory)
}

// Handler functions

func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path, err = s.service.ResolvePath(path)
	if err != nil {
		return mcp.NewToolResultError(formatError(err)), nil
	}

	result, err := s.service.ExtractFile(ctx, pdf.TagExtractFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(formatError(err)), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleExtractDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := pdf.TagExtractDirectoryRequest{
		Directory: optionalString(request, "directory"),
		Query:     optionalString(request, "query"),
	}
	if req.Directory != "" {
		dir, err := s.service.ResolvePath(req.Directory)
		if err != nil {
			return mcp.NewToolResultError(formatError(err)), nil
		}
		req.Directory = dir
	}

	result, err := s.service.ExtractDirectory(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Extracted %d tag document(s) in %s: %d succeeded, %d failed\n\n",
		len(result.Documents), result.Directory, result.Succeeded, result.Failed)
	if err := s.exporter.WriteJSON(&buf, result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path, err = s.service.ResolvePath(path)
	if err != nil {
		return mcp.NewToolResultError(formatError(err)), nil
	}

	result, err := s.service.ValidateFile(ctx, pdf.TagValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if result.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("Tag document %s is valid and extracts cleanly", result.Path)), nil
	}
	text := fmt.Sprintf("Tag validation failed for %s: %s", result.Path, result.Message)
	if result.ErrorKind != "" {
		text += fmt.Sprintf(" (%s)", result.ErrorKind)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSearchDirectory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	directory := optionalString(request, "directory")
	if directory != "" {
		dir, err := s.service.ResolvePath(directory)
		if err != nil {
			return mcp.NewToolResultError(formatError(err)), nil
		}
		directory = dir
	}

	files, err := s.service.FindDocuments(directory, optionalString(request, "query"), 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFiles(files)), nil
}

func optionalString(request mcp.CallToolRequest, key string) string {
	if v, ok := request.GetArguments()[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func formatError(err error) string {
	if kind := pdf.ErrorKindOf(err); kind != "" {
		return fmt.Sprintf("%s: %v", kind, err)
	}
	return err.Error()
}

func formatFiles(files []pdf.FileInfo) string {
	if len(files) == 0 {
		return "No tag documents found"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d tag document(s):\n\n", len(files))
	for i, f := range files {
		fmt.Fprintf(&b, "%d. %s\n   Path: %s\n   Size: %d bytes\n   Modified: %s\n",
			i+1, f.Name, f.Path, f.Size, f.ModifiedTime)
	}
	return b.String()
}

// Run starts the MCP server in the configured mode and blocks until it stops
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout until input ends or ctx is done
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Debug("mcp.stdio.start",
		"directory", s.service.ConfiguredDirectory(),
		"max_file_size", s.service.GetMaxFileSize(),
	)

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, s.stdin, s.stdout)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events until ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mcp.sse.start",
			"addr", addr,
			"directory", s.service.ConfiguredDirectory(),
			"max_file_size", s.service.GetMaxFileSize(),
		)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve sse: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down sse server: %w", err)
		}
		s.logger.Info("mcp.sse.stopped", "addr", addr)
		return nil
	}
}

// MCPServer exposes the underlying server, mainly for in-process clients
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

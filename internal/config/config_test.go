package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Directory = t.TempDir()
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}
	if cfg.ServerName != "mcp-tag-reader" {
		t.Errorf("Expected default server name to be 'mcp-tag-reader', got '%s'", cfg.ServerName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}
	if cfg.Workers != 4 {
		t.Errorf("Expected default workers to be 4, got %d", cfg.Workers)
	}
	if cfg.Format != "json" {
		t.Errorf("Expected default format to be 'json', got '%s'", cfg.Format)
	}

	currentDir, _ := os.Getwd()
	if cfg.Directory != currentDir {
		t.Errorf("Expected default directory to be '%s', got '%s'", currentDir, cfg.Directory)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config - stdio mode", mutate: func(c *Config) {}},
		{name: "valid config - server mode", mutate: func(c *Config) { c.Mode = ModeServer }},
		{name: "invalid mode", mutate: func(c *Config) { c.Mode = "invalid" }, wantErr: true},
		{name: "invalid port in server mode", mutate: func(c *Config) { c.Mode = ModeServer; c.Port = 0 }, wantErr: true},
		{name: "port ignored in stdio mode", mutate: func(c *Config) { c.Port = 0 }},
		{name: "empty directory", mutate: func(c *Config) { c.Directory = "" }, wantErr: true},
		{name: "zero max file size", mutate: func(c *Config) { c.MaxFileSize = 0 }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "too many workers", mutate: func(c *Config) { c.Workers = MaxWorkers + 1 }, wantErr: true},
		{name: "xlsx with output", mutate: func(c *Config) { c.Format = FormatXLSX; c.Output = "r.xlsx"; c.Paths = []string{"a"} }},
		{name: "xlsx without output", mutate: func(c *Config) { c.Format = FormatXLSX; c.Paths = []string{"a"} }, wantErr: true},
		{name: "xlsx in server mode", mutate: func(c *Config) { c.Format = FormatXLSX }},
		{name: "unknown format", mutate: func(c *Config) { c.Format = "csv" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{
		Host: "192.168.1.1",
		Port: 9090,
	}

	expected := "192.168.1.1:9090"
	if got := cfg.Address(); got != expected {
		t.Errorf("Config.Address() = %v, want %v", got, expected)
	}
}

func TestConfigLogLevels(t *testing.T) {
	tests := []struct {
		logLevel string
		debug    bool
		level    slog.Level
	}{
		{logLevel: "debug", debug: true, level: slog.LevelDebug},
		{logLevel: "info", level: slog.LevelInfo},
		{logLevel: "warn", level: slog.LevelWarn},
		{logLevel: "error", level: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.debug {
				t.Errorf("Config.IsDebug() = %v, want %v", got, tt.debug)
			}
			if got := cfg.SlogLevel(); got != tt.level {
				t.Errorf("Config.SlogLevel() = %v, want %v", got, tt.level)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:        "server",
		Host:        "localhost",
		Port:        8080,
		Directory:   "/home/user/tags",
		LogLevel:    "debug",
		MaxFileSize: 1024,
		Workers:     2,
		Format:      "xlsx",
	}

	result := cfg.String()

	expectedSubstrings := []string{
		"Mode: server",
		"Host: localhost",
		"Port: 8080",
		"Directory: /home/user/tags",
		"LogLevel: debug",
		"MaxFileSize: 1024",
		"Workers: 2",
		"Format: xlsx",
	}

	for _, substr := range expectedSubstrings {
		if !strings.Contains(result, substr) {
			t.Errorf("Config.String() result doesn't contain expected substring: %s\nGot: %s", substr, result)
		}
	}
}

func TestConfigValidateDirectoryCreation(t *testing.T) {
	nonExistentDir := filepath.Join(t.TempDir(), "non-existent", "tags")

	cfg := DefaultConfig()
	cfg.Directory = nonExistentDir

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() unexpected error: %v", err)
	}

	info, err := os.Stat(nonExistentDir)
	if err != nil {
		t.Fatalf("Directory should have been created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s should be a directory", nonExistentDir)
	}
}

func TestConfigValidateLogLevels(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error"}
	invalidLevels := []string{"DEBUG", "INFO", "trace", "fatal", ""}

	for _, level := range validLevels {
		t.Run("valid_"+level, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.LogLevel = level
			if err := cfg.Validate(); err != nil {
				t.Errorf("Config.Validate() should accept log level '%s', got error: %v", level, err)
			}
		})
	}

	for _, level := range invalidLevels {
		t.Run("invalid_"+level, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.LogLevel = level
			if err := cfg.Validate(); err == nil {
				t.Errorf("Config.Validate() should reject log level '%s'", level)
			}
		})
	}
}

func TestConfigModes(t *testing.T) {
	tests := []struct {
		mode   string
		server bool
		stdio  bool
	}{
		{mode: "server", server: true},
		{mode: "stdio", stdio: true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode}
			if got := cfg.IsServerMode(); got != tt.server {
				t.Errorf("Config.IsServerMode() = %v, want %v", got, tt.server)
			}
			if got := cfg.IsStdioMode(); got != tt.stdio {
				t.Errorf("Config.IsStdioMode() = %v, want %v", got, tt.stdio)
			}
		})
	}
}

// Package config loads and validates mdpublish configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alnah/go-mdpublish/internal/archive"
	"github.com/alnah/go-mdpublish/internal/fileutil"
	"github.com/alnah/go-mdpublish/internal/pipeline"
	"github.com/alnah/go-mdpublish/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config field")
)

// Field limits.
const (
	MaxPathLength      = 4096
	MaxPrefixLength    = 64
	MaxAddrLength      = 256
	MaxOriginLength    = 2048
	MaxModelLength     = 100
	MaxStyleLength     = 64
	MaxExtensionLength = 16
	MaxListEntries     = 32
	MaxUploadMB        = 1024
	MaxPatternLength   = 256
	MaxUploadRate      = 1000
	MaxUploadBurst     = 1000
)

// Provider names accepted in generate.provider.
var knownProviders = []string{"gemini", "anthropic"}

// routePrefixPattern matches a single URL-safe path segment.
var routePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Config holds all mdpublish settings.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Rewrite  RewriteConfig  `yaml:"rewrite"`
	Preview  PreviewConfig  `yaml:"preview"`
	Server   ServerConfig   `yaml:"server"`
	Generate GenerateConfig `yaml:"generate"`
}

// StorageConfig locates the private upload area and the public tree.
type StorageConfig struct {
	UploadsDir  string `yaml:"uploadsDir"`  // raw uploads and normalized documents
	PublicDir   string `yaml:"publicDir"`   // served tree
	RoutePrefix string `yaml:"routePrefix"` // URL segment before the upload id
}

// RewriteConfig controls reference rewriting and document selection.
type RewriteConfig struct {
	EscapePolicy       string   `yaml:"escapePolicy"` // clamp, keep, skip
	DocumentExtensions []string `yaml:"documentExtensions"`
	PreferredDocuments []string `yaml:"preferredDocuments"`
	IgnorePatterns     []string `yaml:"ignore"` // archive entries to skip, doublestar syntax
}

// PreviewConfig controls the HTML preview written next to published assets.
type PreviewConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Style    string `yaml:"style"`    // style name
	StyleDir string `yaml:"styleDir"` // directory holding styles/<name>.css overrides
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"corsOrigins"` // empty = any origin
	MaxUploadMB int      `yaml:"maxUploadMB"`
	UploadRate  float64  `yaml:"uploadRate"`  // uploads per second per client, 0 = unlimited
	UploadBurst int      `yaml:"uploadBurst"` // 0 = 1 when uploadRate is set
}

// GenerateConfig selects the slide generation provider.
type GenerateConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`  // empty = provider default
	Output   string `yaml:"output"` // slides file path
}

// Validate checks field lengths and enumerations.
// Called by LoadConfig; exported for callers that build a Config in code.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"storage.uploadsDir", c.Storage.UploadsDir, MaxPathLength},
		{"storage.publicDir", c.Storage.PublicDir, MaxPathLength},
		{"storage.routePrefix", c.Storage.RoutePrefix, MaxPrefixLength},
		{"preview.style", c.Preview.Style, MaxStyleLength},
		{"preview.styleDir", c.Preview.StyleDir, MaxPathLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"generate.model", c.Generate.Model, MaxModelLength},
		{"generate.output", c.Generate.Output, MaxPathLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if p := c.Storage.RoutePrefix; p != "" && (!routePrefixPattern.MatchString(p) || strings.Trim(p, ".") == "") {
		return fmt.Errorf("%w: storage.routePrefix %q must be a single path segment", ErrInvalidField, p)
	}

	if c.Rewrite.EscapePolicy != "" {
		if _, err := pipeline.ParseEscapePolicy(c.Rewrite.EscapePolicy); err != nil {
			return fmt.Errorf("%w: rewrite.escapePolicy: %v", ErrInvalidField, err)
		}
	}

	if err := validateList("rewrite.documentExtensions", c.Rewrite.DocumentExtensions, MaxExtensionLength); err != nil {
		return err
	}
	for i, ext := range c.Rewrite.DocumentExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 || strings.ContainsAny(ext, "/\\") {
			return fmt.Errorf("%w: rewrite.documentExtensions[%d] %q must look like .md", ErrInvalidField, i, ext)
		}
	}

	if err := validateList("rewrite.preferredDocuments", c.Rewrite.PreferredDocuments, MaxPathLength); err != nil {
		return err
	}
	if err := validateList("rewrite.ignore", c.Rewrite.IgnorePatterns, MaxPatternLength); err != nil {
		return err
	}
	if err := archive.ValidatePatterns(c.Rewrite.IgnorePatterns); err != nil {
		return fmt.Errorf("%w: rewrite.ignore: %v", ErrInvalidField, err)
	}
	if err := validateList("server.corsOrigins", c.Server.CORSOrigins, MaxOriginLength); err != nil {
		return err
	}

	if c.Server.MaxUploadMB < 0 || c.Server.MaxUploadMB > MaxUploadMB {
		return fmt.Errorf("%w: server.maxUploadMB must be between 0 and %d, got %d", ErrInvalidField, MaxUploadMB, c.Server.MaxUploadMB)
	}

	if c.Server.UploadRate < 0 || c.Server.UploadRate > MaxUploadRate {
		return fmt.Errorf("%w: server.uploadRate must be between 0 and %d, got %g", ErrInvalidField, MaxUploadRate, c.Server.UploadRate)
	}
	if c.Server.UploadBurst < 0 || c.Server.UploadBurst > MaxUploadBurst {
		return fmt.Errorf("%w: server.uploadBurst must be between 0 and %d, got %d", ErrInvalidField, MaxUploadBurst, c.Server.UploadBurst)
	}

	if p := c.Generate.Provider; p != "" && !contains(knownProviders, strings.ToLower(p)) {
		return fmt.Errorf("%w: generate.provider %q (known: %s)", ErrInvalidField, p, strings.Join(knownProviders, ", "))
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateList bounds the entry count and each entry's length.
func validateList(fieldName string, values []string, maxLength int) error {
	if len(values) > MaxListEntries {
		return fmt.Errorf("%w: %s (%d entries, max %d)", ErrFieldTooLong, fieldName, len(values), MaxListEntries)
	}
	for i, v := range values {
		if err := validateFieldLength(fmt.Sprintf("%s[%d]", fieldName, i), v, maxLength); err != nil {
			return err
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			UploadsDir:  "uploads",
			PublicDir:   "public",
			RoutePrefix: "uploads",
		},
		Rewrite: RewriteConfig{
			EscapePolicy:       pipeline.EscapeClamp.String(),
			DocumentExtensions: append([]string(nil), pipeline.DefaultDocumentExtensions...),
			PreferredDocuments: []string{"slides.md", "index.md"},
			IgnorePatterns:     append([]string(nil), archive.DefaultIgnorePatterns...),
		},
		Preview: PreviewConfig{
			Enabled: true,
			Style:   "default",
		},
		Server: ServerConfig{
			Addr:        ":5181",
			MaxUploadMB: 64,
		},
		Generate: GenerateConfig{
			Provider: "gemini",
			Output:   "slides.md",
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := yamlutil.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the candidate files for a config name, in lookup order:
// current directory, then ~/.config/go-mdpublish/, each with .yaml then .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-mdpublish", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths(name).
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

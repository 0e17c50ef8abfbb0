package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-mdpublish/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath  string // MDPUBLISH_CONFIG: config file path
	UploadsDir  string // MDPUBLISH_UPLOADS_DIR: raw uploads directory
	PublicDir   string // MDPUBLISH_PUBLIC_DIR: served tree
	RoutePrefix string // MDPUBLISH_ROUTE_PREFIX: URL segment before the upload id

	// Tier 2 - Server
	Addr        string   // MDPUBLISH_ADDR, or PORT as ":<port>"
	CORSOrigins []string // MDPUBLISH_CORS_ORIGINS: comma-separated origins
	MaxUploadMB int      // MDPUBLISH_MAX_UPLOAD_MB: request size limit
	UploadRate  float64  // MDPUBLISH_UPLOAD_RATE: uploads per second per client

	// Tier 3 - Rewriting, preview and generation
	EscapePolicy string // MDPUBLISH_ESCAPE_POLICY: clamp, keep, skip
	Style        string // MDPUBLISH_STYLE: preview style name
	Preview      *bool  // MDPUBLISH_PREVIEW: enable the HTML preview
	Provider     string // MDPUBLISH_PROVIDER: gemini, anthropic
	Model        string // MDPUBLISH_MODEL: provider model
	Output       string // MDPUBLISH_OUTPUT: slides file path
	Workers      int    // MDPUBLISH_WORKERS: parallel publish workers
}

// knownEnvVars lists valid MDPUBLISH_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"MDPUBLISH_CONFIG":       true,
	"MDPUBLISH_UPLOADS_DIR":  true,
	"MDPUBLISH_PUBLIC_DIR":   true,
	"MDPUBLISH_ROUTE_PREFIX": true,
	// Tier 2 - Server
	"MDPUBLISH_ADDR":          true,
	"MDPUBLISH_CORS_ORIGINS":  true,
	"MDPUBLISH_MAX_UPLOAD_MB": true,
	"MDPUBLISH_UPLOAD_RATE":   true,
	// Tier 3 - Rewriting, preview and generation
	"MDPUBLISH_ESCAPE_POLICY": true,
	"MDPUBLISH_STYLE":         true,
	"MDPUBLISH_PREVIEW":       true,
	"MDPUBLISH_PROVIDER":      true,
	"MDPUBLISH_MODEL":         true,
	"MDPUBLISH_OUTPUT":        true,
	"MDPUBLISH_WORKERS":       true,
	"MDPUBLISH_CONTAINER":     true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and booleans are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:   getenv("MDPUBLISH_CONFIG"),
		UploadsDir:   getenv("MDPUBLISH_UPLOADS_DIR"),
		PublicDir:    getenv("MDPUBLISH_PUBLIC_DIR"),
		RoutePrefix:  getenv("MDPUBLISH_ROUTE_PREFIX"),
		Addr:         getenv("MDPUBLISH_ADDR"),
		EscapePolicy: getenv("MDPUBLISH_ESCAPE_POLICY"),
		Style:        getenv("MDPUBLISH_STYLE"),
		Provider:     getenv("MDPUBLISH_PROVIDER"),
		Model:        getenv("MDPUBLISH_MODEL"),
		Output:       getenv("MDPUBLISH_OUTPUT"),
	}

	// Hosting platforms pass the port alone
	if cfg.Addr == "" {
		if port := strings.TrimSpace(getenv("PORT")); port != "" {
			cfg.Addr = ":" + port
		}
	}

	if origins := getenv("MDPUBLISH_CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if mb := getenv("MDPUBLISH_MAX_UPLOAD_MB"); mb != "" {
		if n, err := strconv.Atoi(mb); err == nil && n > 0 {
			cfg.MaxUploadMB = n
		}
	}

	if r := getenv("MDPUBLISH_UPLOAD_RATE"); r != "" {
		if f, err := strconv.ParseFloat(r, 64); err == nil && f > 0 {
			cfg.UploadRate = f
		}
	}

	if workers := getenv("MDPUBLISH_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if preview := getenv("MDPUBLISH_PREVIEW"); preview != "" {
		if b, err := strconv.ParseBool(preview); err == nil {
			cfg.Preview = &b
		}
	}

	return cfg
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// warnUnknownEnvVars logs warnings for unrecognized MDPUBLISH_* variables.
// Helps catch typos like MDPUBLISH_UPLOAD_DIR instead of MDPUBLISH_UPLOADS_DIR.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, "MDPUBLISH_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// A set variable replaces the config file value.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by each command)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1 - Storage
	if env.UploadsDir != "" {
		cfg.Storage.UploadsDir = env.UploadsDir
	}
	if env.PublicDir != "" {
		cfg.Storage.PublicDir = env.PublicDir
	}
	if env.RoutePrefix != "" {
		cfg.Storage.RoutePrefix = env.RoutePrefix
	}

	// Tier 2 - Server
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if len(env.CORSOrigins) > 0 {
		cfg.Server.CORSOrigins = env.CORSOrigins
	}
	if env.MaxUploadMB > 0 {
		cfg.Server.MaxUploadMB = env.MaxUploadMB
	}
	if env.UploadRate > 0 {
		cfg.Server.UploadRate = env.UploadRate
	}

	// Tier 3 - Rewriting and preview
	if env.EscapePolicy != "" {
		cfg.Rewrite.EscapePolicy = env.EscapePolicy
	}
	if env.Style != "" {
		cfg.Preview.Style = env.Style
	}
	if env.Preview != nil {
		cfg.Preview.Enabled = *env.Preview
	}

	// Tier 3 - Generation
	if env.Provider != "" {
		cfg.Generate.Provider = env.Provider
	}
	if env.Model != "" {
		cfg.Generate.Model = env.Model
	}
	if env.Output != "" {
		cfg.Generate.Output = env.Output
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.Storage.RoutePrefix != "uploads" {
		t.Errorf("Storage.RoutePrefix = %q, want %q", cfg.Storage.RoutePrefix, "uploads")
	}
	if cfg.Rewrite.EscapePolicy != "clamp" {
		t.Errorf("Rewrite.EscapePolicy = %q, want clamp", cfg.Rewrite.EscapePolicy)
	}
	if !cfg.Preview.Enabled {
		t.Error("Preview.Enabled = false, want true")
	}
	if cfg.Generate.Output != "slides.md" {
		t.Errorf("Generate.Output = %q, want slides.md", cfg.Generate.Output)
	}
}

func TestDefaultConfig_ExtensionsNotShared(t *testing.T) {
	t.Parallel()

	a := DefaultConfig()
	a.Rewrite.DocumentExtensions[0] = ".txt"

	if b := DefaultConfig(); b.Rewrite.DocumentExtensions[0] != ".md" {
		t.Errorf("DefaultConfig() shares extension slice: got %q", b.Rewrite.DocumentExtensions[0])
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "empty config", mutate: func(c *Config) { *c = Config{} }},
		{name: "keep policy", mutate: func(c *Config) { c.Rewrite.EscapePolicy = "keep" }},
		{name: "unknown policy", mutate: func(c *Config) { c.Rewrite.EscapePolicy = "wrap" }, wantErr: ErrInvalidField},
		{name: "prefix with slash", mutate: func(c *Config) { c.Storage.RoutePrefix = "a/b" }, wantErr: ErrInvalidField},
		{name: "prefix dot dot", mutate: func(c *Config) { c.Storage.RoutePrefix = ".." }, wantErr: ErrInvalidField},
		{name: "prefix too long", mutate: func(c *Config) { c.Storage.RoutePrefix = strings.Repeat("a", MaxPrefixLength+1) }, wantErr: ErrFieldTooLong},
		{name: "extension without dot", mutate: func(c *Config) { c.Rewrite.DocumentExtensions = []string{"md"} }, wantErr: ErrInvalidField},
		{name: "extension just dot", mutate: func(c *Config) { c.Rewrite.DocumentExtensions = []string{"."} }, wantErr: ErrInvalidField},
		{name: "too many origins", mutate: func(c *Config) { c.Server.CORSOrigins = make([]string, MaxListEntries+1) }, wantErr: ErrFieldTooLong},
		{name: "negative upload size", mutate: func(c *Config) { c.Server.MaxUploadMB = -1 }, wantErr: ErrInvalidField},
		{name: "huge upload size", mutate: func(c *Config) { c.Server.MaxUploadMB = MaxUploadMB + 1 }, wantErr: ErrInvalidField},
		{name: "no ignore patterns", mutate: func(c *Config) { c.Rewrite.IgnorePatterns = []string{} }},
		{name: "bad ignore pattern", mutate: func(c *Config) { c.Rewrite.IgnorePatterns = []string{"[a-"} }, wantErr: ErrInvalidField},
		{name: "upload rate", mutate: func(c *Config) { c.Server.UploadRate = 0.5; c.Server.UploadBurst = 3 }},
		{name: "negative upload rate", mutate: func(c *Config) { c.Server.UploadRate = -1 }, wantErr: ErrInvalidField},
		{name: "huge upload burst", mutate: func(c *Config) { c.Server.UploadBurst = MaxUploadBurst + 1 }, wantErr: ErrInvalidField},
		{name: "anthropic provider", mutate: func(c *Config) { c.Generate.Provider = "Anthropic" }},
		{name: "unknown provider", mutate: func(c *Config) { c.Generate.Provider = "openai" }, wantErr: ErrInvalidField},
		{name: "model too long", mutate: func(c *Config) { c.Generate.Model = strings.Repeat("m", MaxModelLength+1) }, wantErr: ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	if err := validateFieldLength("f", "1234567890", 10); err != nil {
		t.Errorf("value at limit: unexpected error %v", err)
	}
	err := validateFieldLength("f", "12345678901", 10)
	if !errors.Is(err, ErrFieldTooLong) {
		t.Fatalf("value over limit: error = %v, want ErrFieldTooLong", err)
	}
	if !strings.Contains(err.Error(), "f (11 chars, max 10)") {
		t.Errorf("error message = %q", err.Error())
	}
}

func TestLoadConfig_FromPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "team.yaml")
	content := `storage:
  publicDir: /srv/public
rewrite:
  escapePolicy: skip
server:
  corsOrigins:
    - https://slides.example.com
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Storage.PublicDir != "/srv/public" {
		t.Errorf("Storage.PublicDir = %q", cfg.Storage.PublicDir)
	}
	if cfg.Storage.UploadsDir != "uploads" {
		t.Errorf("Storage.UploadsDir = %q, want default kept", cfg.Storage.UploadsDir)
	}
	if cfg.Rewrite.EscapePolicy != "skip" {
		t.Errorf("Rewrite.EscapePolicy = %q, want skip", cfg.Rewrite.EscapePolicy)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://slides.example.com" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.Addr != ":5181" {
		t.Errorf("Server.Addr = %q, want default kept", cfg.Server.Addr)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name       string
		nameOrPath string
		wantErr    error
	}{
		{name: "empty name", nameOrPath: "", wantErr: ErrEmptyConfigName},
		{name: "missing path", nameOrPath: filepath.Join(dir, "missing.yaml"), wantErr: ErrConfigNotFound},
		{name: "missing name", nameOrPath: "mdpublish-no-such-config-name", wantErr: ErrConfigNotFound},
		{name: "unknown field", nameOrPath: write("unknown.yaml", "storage:\n  bucket: x\n"), wantErr: ErrConfigParse},
		{name: "empty file", nameOrPath: write("empty.yaml", ""), wantErr: ErrConfigParse},
		{name: "invalid value", nameOrPath: write("bad.yaml", "rewrite:\n  escapePolicy: wrap\n"), wantErr: ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadConfig(tt.nameOrPath)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig(%q) error = %v, want %v", tt.nameOrPath, err, tt.wantErr)
			}
		})
	}
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("team")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least 2 entries", paths)
	}
	if paths[0] != "team.yaml" || paths[1] != "team.yml" {
		t.Errorf("SearchPaths() local entries = %v", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(filepath.ToSlash(p), "go-mdpublish/team.") {
			t.Errorf("SearchPaths() user entry %q not under go-mdpublish", p)
		}
	}
}

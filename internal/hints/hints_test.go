package hints

// Notes:
// - ForMissingCredentials tests cannot use t.Parallel() because they modify
//   the package-level HasDotEnv variable.
// - ForListen tests use t.Setenv() and cannot run in parallel either.

import (
	"strings"
	"testing"
)

func TestForMissingCredentials_Gemini(t *testing.T) {
	orig := HasDotEnv
	defer func() { HasDotEnv = orig }()
	HasDotEnv = func() bool { return false }

	hint := ForMissingCredentials("gemini")

	if !strings.HasPrefix(hint, "\n  hint: ") {
		t.Errorf("expected hint prefix, got %q", hint)
	}
	if !strings.Contains(hint, "GOOGLE_API_KEY") {
		t.Error("expected GOOGLE_API_KEY suggestion")
	}
	if !strings.Contains(hint, ".env file") {
		t.Error("expected .env suggestion when no .env exists")
	}
}

func TestForMissingCredentials_AnthropicWithDotEnv(t *testing.T) {
	orig := HasDotEnv
	defer func() { HasDotEnv = orig }()
	HasDotEnv = func() bool { return true }

	hint := ForMissingCredentials("anthropic")

	if !strings.Contains(hint, "ANTHROPIC_API_KEY") {
		t.Error("expected ANTHROPIC_API_KEY suggestion")
	}
	if !strings.Contains(hint, "spelled correctly") {
		t.Error("expected spelling check when .env exists")
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	hint := ForConfigNotFound([]string{"team.yaml", "/home/u/.config/go-mdpublish/team.yaml"})

	if !strings.Contains(hint, "--config") {
		t.Error("expected --config suggestion")
	}
	if !strings.Contains(hint, "create /home/u/.config/go-mdpublish/team.yaml") {
		t.Errorf("expected user config suggestion, got %q", hint)
	}
}

func TestListHints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"extensions", ForUnsupportedExtension([]string{".md", ".zip"}), "\n  hint: accepted: .md, .zip"},
		{"no extensions", ForUnsupportedExtension(nil), ""},
		{"styles", ForStyleNotFound([]string{"default", "minimal"}), "\n  hint: available: default, minimal"},
		{"no styles", ForStyleNotFound(nil), ""},
		{"preferred docs", ForNoDocument([]string{"slides.md", "index.md"}), "\n  hint: include a .md file; slides.md or index.md is picked first"},
		{"no preferred docs", ForNoDocument(nil), "\n  hint: include at least one .md file in the archive"},
		{"no upload", ForNoUpload(), "\n  hint: run 'mdpublish publish <file>' first or pass --input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestForListen(t *testing.T) {
	t.Setenv("PORT", "9000")

	hint := ForListen(":5181")
	if !strings.Contains(hint, "PORT=9000") {
		t.Errorf("expected PORT mismatch hint, got %q", hint)
	}

	hint = ForListen(":9000")
	if strings.Contains(hint, "PORT=") {
		t.Errorf("unexpected PORT hint when address matches, got %q", hint)
	}
}

func TestFormatHints_Empty(t *testing.T) {
	t.Parallel()

	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
	if got := format(""); got != "" {
		t.Errorf("format(\"\") = %q, want empty", got)
	}
}

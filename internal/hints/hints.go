// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdpublish/internal/fileutil"
)

// HasDotEnv reports whether a .env file sits in the working directory.
var HasDotEnv = func() bool {
	return fileutil.FileExists(".env")
}

// ForMissingCredentials returns hints for a generation provider without an API key.
func ForMissingCredentials(provider string) string {
	var hints []string

	switch provider {
	case "anthropic":
		hints = append(hints, "export ANTHROPIC_API_KEY")
	default:
		hints = append(hints, "export GOOGLE_API_KEY or GEMINI_API_KEY")
	}

	if HasDotEnv() {
		hints = append(hints, "check the key is spelled correctly in .env")
	} else {
		hints = append(hints, "or put it in a .env file next to the binary")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-mdpublish/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-mdpublish") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForUnsupportedExtension lists the accepted upload extensions.
func ForUnsupportedExtension(accepted []string) string {
	if len(accepted) == 0 {
		return ""
	}
	return format("accepted: " + strings.Join(accepted, ", "))
}

// ForNoDocument explains how the primary document is picked in an archive.
func ForNoDocument(preferred []string) string {
	if len(preferred) == 0 {
		return format("include at least one .md file in the archive")
	}
	return format("include a .md file; " + strings.Join(preferred, " or ") + " is picked first")
}

// ForNoUpload is returned when convert runs before anything was published.
func ForNoUpload() string {
	return format("run 'mdpublish publish <file>' first or pass --input")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForListen returns hints for a server that cannot bind its address.
func ForListen(addr string) string {
	hints := []string{"pick another address with --addr"}
	if port := os.Getenv("PORT"); port != "" && !strings.HasSuffix(addr, ":"+port) {
		hints = append(hints, "PORT="+port+" is set but not used by --addr")
	}
	return formatHints(hints)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

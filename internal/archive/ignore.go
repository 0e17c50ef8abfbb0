package archive

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-mdpublish/internal/pipeline"
)

// ErrInvalidPattern indicates a malformed ignore pattern.
var ErrInvalidPattern = errors.New("invalid ignore pattern")

// DefaultIgnorePatterns drop files that archiving tools add on their own.
// Patterns match slash-separated paths relative to the extraction root.
var DefaultIgnorePatterns = []string{
	"__MACOSX/**",
	"**/.DS_Store",
	"**/._*",
	"**/Thumbs.db",
}

// ValidatePatterns reports the first malformed pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}
	return nil
}

// Filter returns files whose RelPath matches none of patterns, keeping
// their order. Ignored files are neither published nor eligible as the
// primary document.
func Filter(files []pipeline.ExtractedFile, patterns []string) []pipeline.ExtractedFile {
	if len(patterns) == 0 {
		return files
	}
	kept := make([]pipeline.ExtractedFile, 0, len(files))
	for _, f := range files {
		if !matchesAny(patterns, f.RelPath) {
			kept = append(kept, f)
		}
	}
	return kept
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidEscapePolicy indicates an unknown escape policy name.
var ErrInvalidEscapePolicy = errors.New("invalid escape policy")

// Precompiled reference patterns. The two syntaxes are matched in separate
// passes so one syntax's delimiters are never read inside the other.
var (
	// ![alt](path): prefix, path, suffix
	markdownImagePattern = regexp.MustCompile(`(!\[[^\]]*\]\()([^)]+)(\))`)

	// <img src="path": prefix, path, closing quote
	htmlImagePattern = regexp.MustCompile(`(<(?i:img)\s+(?i:src)=")([^"]+)(")`)

	// Absolute URL schemes that are never rewritten.
	remoteSchemePattern = regexp.MustCompile(`(?i)^(https?://|data:)`)
)

// EscapePolicy decides what happens to a reference whose canonical path
// climbs above the root (e.g. "../../etc/passwd" from a root document).
type EscapePolicy int

const (
	// EscapeClamp drops the leading ".." segments and publishes the rest
	// under the base path.
	EscapeClamp EscapePolicy = iota
	// EscapeKeep uses the lexical result as is.
	EscapeKeep
	// EscapeSkip leaves the reference untouched.
	EscapeSkip
)

// String returns the configuration name of the policy.
func (p EscapePolicy) String() string {
	switch p {
	case EscapeKeep:
		return "keep"
	case EscapeSkip:
		return "skip"
	default:
		return "clamp"
	}
}

// ParseEscapePolicy parses "clamp", "keep" or "skip". Empty means clamp.
func ParseEscapePolicy(s string) (EscapePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return EscapeClamp, nil
	case "keep":
		return EscapeKeep, nil
	case "skip":
		return EscapeSkip, nil
	}
	return EscapeClamp, fmt.Errorf("%w: %q (must be clamp, keep, or skip)", ErrInvalidEscapePolicy, s)
}

// Rewriter replaces relative asset references in markdown text with public
// paths. The zero value clamps escaping references.
type Rewriter struct {
	Escape EscapePolicy
}

// NewRewriter creates a Rewriter with the given escape policy.
func NewRewriter(policy EscapePolicy) *Rewriter {
	return &Rewriter{Escape: policy}
}

var defaultRewriter = &Rewriter{}

// Rewrite rewrites text with the default (clamping) Rewriter.
func Rewrite(text, base, docDir string, m Mapping) string {
	return defaultRewriter.Rewrite(text, base, docDir, m)
}

// Rewrite returns text with every relative ![alt](path) and <img src="path">
// reference replaced by base + target, where target comes from m or, when m
// has no entry, from the segment-encoded canonical path.
//
// base is prepended verbatim and should start and end with "/". Remote URLs,
// data URIs and root-absolute paths are left byte-identical, which makes a
// second pass over the output with the same base a no-op. Text outside the
// path portion of a match is never modified.
func (r *Rewriter) Rewrite(text, base, docDir string, m Mapping) string {
	text = replaceReferences(markdownImagePattern, text, func(p string) (string, bool) {
		return r.Resolve(p, base, docDir, m)
	})
	return replaceReferences(htmlImagePattern, text, func(p string) (string, bool) {
		return r.Resolve(p, base, docDir, m)
	})
}

// Resolve computes the public path for a single authored reference.
// It returns false when the reference must be left as written.
func (r *Rewriter) Resolve(authored, base, docDir string, m Mapping) (string, bool) {
	trimmed := strings.TrimSpace(authored)
	if !IsRelativeReference(trimmed) {
		return "", false
	}

	canonical := Canonicalize(docDir, trimmed)
	if escapesRoot(canonical) {
		switch r.Escape {
		case EscapeSkip:
			return "", false
		case EscapeClamp:
			canonical = clampToRoot(canonical)
		}
	}
	if canonical == "" {
		return "", false
	}

	target, ok := m.Lookup(canonical)
	if !ok {
		target = EscapePath(canonical)
	}
	return base + target, true
}

// IsRelativeReference reports whether an authored path is subject to
// rewriting: not empty, not an http(s) URL or data URI, not root-absolute.
func IsRelativeReference(p string) bool {
	p = strings.TrimSpace(p)
	if p == "" {
		return false
	}
	if remoteSchemePattern.MatchString(p) {
		return false
	}
	return !isAbsolutePath(p)
}

// replaceReferences runs one pattern pass. Patterns must capture exactly
// prefix, path and suffix.
func replaceReferences(re *regexp.Regexp, text string, resolve func(string) (string, bool)) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) != 4 {
			return match
		}
		target, ok := resolve(parts[2])
		if !ok {
			return match
		}
		return parts[1] + target + parts[3]
	})
}

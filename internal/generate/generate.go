// Package generate turns a normalized markdown document into slide markup
// by calling an external text-generation service.
package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Sentinel errors for generation.
var (
	ErrMissingCredentials = errors.New("generation service credentials not set")
	ErrEmptyResponse      = errors.New("generation service returned no content")
	ErrUnknownProvider    = errors.New("unknown generation provider")
	ErrGenerate           = errors.New("generation request failed")
)

// Provider names.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Default models per provider.
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultAnthropicModel = "claude-haiku-4-5-20251001"
)

// Generator produces slide markup from a markdown document.
type Generator interface {
	Generate(ctx context.Context, markdown string) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string // "gemini" (default) or "anthropic"
	Model    string // empty = provider default
	APIKey   string // empty = read from the environment
}

// New returns the Generator for cfg.Provider. API keys default to
// GOOGLE_API_KEY or GEMINI_API_KEY for Gemini and ANTHROPIC_API_KEY for
// Anthropic.
func New(ctx context.Context, cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		key := firstNonEmpty(cfg.APIKey, os.Getenv("GOOGLE_API_KEY"), os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("%w: set GOOGLE_API_KEY or GEMINI_API_KEY", ErrMissingCredentials)
		}
		return NewGemini(ctx, key, firstNonEmpty(cfg.Model, os.Getenv("GEMINI_MODEL"), DefaultGeminiModel))
	case ProviderAnthropic:
		key := firstNonEmpty(cfg.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if key == "" {
			return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY", ErrMissingCredentials)
		}
		return NewAnthropic(key, firstNonEmpty(cfg.Model, DefaultAnthropicModel))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
}

// slidePrompt instructs the model; the document is appended after it.
const slidePrompt = `You convert Markdown into a Slidev slides.md file.
Separate slides with --- and start each slide with a short frontmatter block (title, transition).
Output only the slides.md content: no explanations, and do not wrap the whole output in a code fence.

Layout:
1) Cover slide: title and a one-sentence summary, transition: slide-left.
2) Regular slides: 3 to 6 bullet points, or one paragraph plus one code block. Split long code across slides, at most 12 lines per slide.
3) Image slides: keep image links exactly as written, with at most 3 short notes. An image may have its own slide.
4) Keep titles short and avoid stacked heading levels.

Image paths: copy every image path from the input unchanged. Do not shorten, simplify, or drop any directory segment.
Example: ![figure](/uploads/<id>/<dir>/c.png) must stay ![figure](/uploads/<id>/<dir>/c.png).

`

// BuildPrompt returns the full prompt sent for markdown.
func BuildPrompt(markdown string) string {
	return slidePrompt + markdown
}

// Finalize strips a surrounding code fence and rejects empty output.
func Finalize(text string) (string, error) {
	text = StripFence(text)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// StripFence removes a code fence wrapping the whole text, including its
// info string line. Text that is not fully fenced is returned trimmed.
func StripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return t
	}
	nl := strings.IndexByte(t, '\n')
	if nl == -1 {
		return t
	}
	return t[nl+1 : len(t)-3]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package mdpublish

import (
	"io"
	"log/slog"
	"time"

	"github.com/alnah/go-mdpublish/internal/archive"
	"github.com/alnah/go-mdpublish/internal/pipeline"
)

// Option configures a Publisher.
type Option func(*Publisher)

// publisherConfig holds internal configuration for Publisher.
type publisherConfig struct {
	uploadsDir         string
	publicDir          string
	routePrefix        string
	documentName       string
	slidesPath         string
	escape             pipeline.EscapePolicy
	documentExtensions []string
	preferredDocuments []string
	ignorePatterns     []string
	maxUploadBytes     int64
	maxExtractBytes    int64 // 0 = maxUploadBytes * archiveExpansionRatio
}

// Defaults used when no option overrides them.
const (
	defaultUploadsDir     = "uploads"
	defaultPublicDir      = "public"
	defaultRoutePrefix    = "uploads"
	defaultDocumentName   = "input.md"
	defaultSlidesPath     = "slides.md"
	defaultMaxUploadBytes = 64 << 20

	// archiveExpansionRatio bounds decompressed archive content relative to
	// the upload limit when WithMaxExtractedSize is not given.
	archiveExpansionRatio = 16
)

func defaultConfig() publisherConfig {
	return publisherConfig{
		uploadsDir:         defaultUploadsDir,
		publicDir:          defaultPublicDir,
		routePrefix:        defaultRoutePrefix,
		documentName:       defaultDocumentName,
		slidesPath:         defaultSlidesPath,
		escape:             pipeline.EscapeClamp,
		documentExtensions: pipeline.DefaultDocumentExtensions,
		preferredDocuments: []string{"slides.md", "index.md"},
		ignorePatterns:     archive.DefaultIgnorePatterns,
		maxUploadBytes:     defaultMaxUploadBytes,
	}
}

// WithUploadsDir sets the directory holding raw uploads and normalized documents.
func WithUploadsDir(dir string) Option {
	return func(p *Publisher) {
		p.cfg.uploadsDir = dir
	}
}

// WithPublicDir sets the root of the served tree.
func WithPublicDir(dir string) Option {
	return func(p *Publisher) {
		p.cfg.publicDir = dir
	}
}

// WithRoutePrefix sets the URL segment placed before the upload id
// ("uploads" gives "/uploads/<id>/"). Assets are stored under the same
// segment inside the public directory.
func WithRoutePrefix(prefix string) Option {
	return func(p *Publisher) {
		p.cfg.routePrefix = prefix
	}
}

// WithEscapePolicy sets how references climbing above the root are handled.
func WithEscapePolicy(policy EscapePolicy) Option {
	return func(p *Publisher) {
		p.cfg.escape = policy
	}
}

// WithDocumentExtensions sets the extensions treated as documents
// (default ".md" and ".markdown").
func WithDocumentExtensions(exts ...string) Option {
	return func(p *Publisher) {
		if len(exts) > 0 {
			p.cfg.documentExtensions = append([]string(nil), exts...)
		}
	}
}

// WithPreferredDocuments sets the file names picked first inside archives.
func WithPreferredDocuments(names ...string) Option {
	return func(p *Publisher) {
		p.cfg.preferredDocuments = append([]string(nil), names...)
	}
}

// WithIgnorePatterns replaces the patterns of archive entries that are
// skipped entirely. Patterns use doublestar syntax ("**/.DS_Store") and match
// paths relative to the extraction root. No patterns disables filtering.
func WithIgnorePatterns(patterns ...string) Option {
	return func(p *Publisher) {
		p.cfg.ignorePatterns = append([]string(nil), patterns...)
	}
}

// WithSlidesPath sets the file Convert writes.
func WithSlidesPath(path string) Option {
	return func(p *Publisher) {
		p.cfg.slidesPath = path
	}
}

// WithMaxUploadSize limits the bytes read from an upload body.
// Panics if n <= 0 (programmer error).
func WithMaxUploadSize(n int64) Option {
	if n <= 0 {
		panic("mdpublish: WithMaxUploadSize must be positive")
	}
	return func(p *Publisher) {
		p.cfg.maxUploadBytes = n
	}
}

// WithMaxExtractedSize limits the total bytes decompressed from one archive.
// Defaults to 16 times the upload limit.
// Panics if n <= 0 (programmer error).
func WithMaxExtractedSize(n int64) Option {
	if n <= 0 {
		panic("mdpublish: WithMaxExtractedSize must be positive")
	}
	return func(p *Publisher) {
		p.cfg.maxExtractBytes = n
	}
}

// extractLimit returns the decompression budget for one archive.
func (c publisherConfig) extractLimit() int64 {
	if c.maxExtractBytes > 0 {
		return c.maxExtractBytes
	}
	return c.maxUploadBytes * archiveExpansionRatio
}

// WithPreview enables an index.html preview next to each upload's assets,
// styled with css.
func WithPreview(css string) Option {
	return func(p *Publisher) {
		p.preview = pipeline.NewGoldmarkConverter(css)
	}
}

// WithLogger sets the structured logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock sets the time source used for upload ids.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

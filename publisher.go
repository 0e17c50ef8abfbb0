package mdpublish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdpublish/internal/archive"
	"github.com/alnah/go-mdpublish/internal/fileutil"
	"github.com/alnah/go-mdpublish/internal/pipeline"
	"github.com/alnah/go-mdpublish/internal/publish"
)

// Compile-time interface implementation checks.
var _ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)

// Upload kinds reported in IngestResult.Kind.
const (
	KindDocument = "document"
	KindArchive  = "archive"
)

const (
	archiveExtension = ".zip"
	previewName      = "index.html"
	labelSuffix      = "-archive"
	filePermissions  = 0o644
)

// Generator produces slide markup from a markdown document.
type Generator interface {
	Generate(ctx context.Context, markdown string) (string, error)
}

// Publisher ingests uploads into a private uploads area and a public tree.
// Create with NewPublisher. Safe for concurrent use.
type Publisher struct {
	cfg      publisherConfig
	rewriter *pipeline.Rewriter
	preview  pipeline.HTMLConverter // nil when previews are off
	logger   *slog.Logger
	now      func() time.Time
}

// NewPublisher creates a Publisher. Directories are created on first use.
func NewPublisher(opts ...Option) (*Publisher, error) {
	p := &Publisher{
		cfg:    defaultConfig(),
		logger: discardLogger(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := validateRoutePrefix(p.cfg.routePrefix); err != nil {
		return nil, err
	}
	if err := archive.ValidatePatterns(p.cfg.ignorePatterns); err != nil {
		return nil, err
	}
	p.rewriter = pipeline.NewRewriter(p.cfg.escape)

	return p, nil
}

// validateRoutePrefix accepts "" or a single segment that needs no escaping.
func validateRoutePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	if strings.Trim(prefix, ".") == "" || pipeline.EscapeSegment(prefix) != prefix {
		return fmt.Errorf("%w: %q", ErrInvalidRoutePrefix, prefix)
	}
	return nil
}

// UploadsDir returns the directory holding uploads.
func (p *Publisher) UploadsDir() string { return p.cfg.uploadsDir }

// PublicDir returns the root of the served tree.
func (p *Publisher) PublicDir() string { return p.cfg.publicDir }

// RoutePrefix returns the URL segment placed before upload ids.
func (p *Publisher) RoutePrefix() string { return p.cfg.routePrefix }

// SupportedExtensions lists the accepted upload extensions.
func (p *Publisher) SupportedExtensions() []string {
	exts := append([]string(nil), p.cfg.documentExtensions...)
	return append(exts, archiveExtension)
}

// PreferredDocuments lists the names picked first inside archives.
func (p *Publisher) PreferredDocuments() []string {
	return append([]string(nil), p.cfg.preferredDocuments...)
}

// PublicBase returns the URL prefix for an upload id, ending in "/".
func (p *Publisher) PublicBase(id string) string {
	if p.cfg.routePrefix == "" {
		return "/" + id + "/"
	}
	return "/" + p.cfg.routePrefix + "/" + id + "/"
}

// publicationDir returns the directory backing PublicBase(id).
func (p *Publisher) publicationDir(id string) string {
	return filepath.Join(p.cfg.publicDir, p.cfg.routePrefix, id)
}

// OwnsDocument reports whether docPath lies inside the uploads directory.
func (p *Publisher) OwnsDocument(docPath string) bool {
	return fileutil.Contained(p.cfg.uploadsDir, docPath)
}

// Ingest publishes one upload. Documents are rewritten with no directory and
// no mapping. Archives are extracted, their assets copied to the public tree
// and the selected document rewritten relative to its own directory. The
// rewritten text is stored as input.md inside the upload's directory.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (p *Publisher) Ingest(ctx context.Context, up Upload) (result *IngestResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	name, kind, err := p.classify(up.Filename)
	if err != nil {
		return nil, err
	}
	if up.Body == nil {
		return nil, fmt.Errorf("%w: empty body for %q", ErrMissingUploadField, name)
	}

	id := publish.UploadID(p.now())
	uploadDir := filepath.Join(p.cfg.uploadsDir, id)
	pubDir := p.publicationDir(id)
	base := p.PublicBase(id)
	logger := p.logger.With("upload", id, "file", name)

	for _, dir := range []string{uploadDir, pubDir} {
		if err := publish.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}
	// A failed upload leaves nothing behind, published or not.
	defer func() {
		if err != nil {
			_ = os.RemoveAll(pubDir)
			_ = os.RemoveAll(uploadDir)
		}
	}()

	saved := filepath.Join(uploadDir, name)
	if err := p.save(saved, up.Body); err != nil {
		return nil, err
	}

	result = &IngestResult{ID: id, Kind: kind, PublicBase: base, Source: name}

	var text, docDir string
	var mapping pipeline.Mapping

	switch kind {
	case KindArchive:
		text, docDir, mapping, err = p.unpack(ctx, saved, uploadDir, pubDir, result)
		if err != nil {
			return nil, err
		}
	default:
		data, err := os.ReadFile(saved) // #nosec G304 -- path built from a validated base name
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		text = string(data)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rewritten := p.rewriter.Rewrite(text, base, docDir, mapping)

	result.DocumentPath = filepath.Join(uploadDir, p.cfg.documentName)
	if err := fileutil.WriteFileAtomic(result.DocumentPath, []byte(rewritten), filePermissions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	result.Missing = pipeline.UnresolvedReferences(pipeline.CollectReferences(rewritten), base, func(rel string) bool {
		return fileutil.FileExists(filepath.Join(pubDir, filepath.FromSlash(pipeline.EscapePath(rel))))
	})
	for _, ref := range result.Missing {
		logger.Warn("unresolved reference", "kind", ref.Kind.String(), "path", ref.Path)
	}

	if p.preview != nil {
		if err := p.writePreview(ctx, result, pubDir, rewritten); err != nil {
			return nil, err
		}
	}

	logger.Info("upload published",
		"kind", kind,
		"source", result.Source,
		"assets", result.Assets,
		"missing", len(result.Missing),
		"public_base", base,
	)

	return result, nil
}

// classify validates the filename and returns its base name and kind.
func (p *Publisher) classify(filename string) (name, kind string, err error) {
	name, err = fileutil.SafeBaseName(filename)
	if errors.Is(err, fileutil.ErrFilenameEmpty) {
		return "", "", ErrEmptyFilename
	}
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidFilename, err)
	}

	switch {
	case strings.EqualFold(filepath.Ext(name), archiveExtension):
		return name, KindArchive, nil
	case pipeline.IsDocument(name, p.cfg.documentExtensions):
		return name, KindDocument, nil
	}
	return "", "", fmt.Errorf("%w: %q (accepted: %s)", ErrUnsupportedExtension, name, strings.Join(p.SupportedExtensions(), ", "))
}

// save copies body to dst, failing once more than maxUploadBytes arrive.
func (p *Publisher) save(dst string, body io.Reader) error {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions) // #nosec G304 -- path built from a validated base name
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(body, p.cfg.maxUploadBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		return fmt.Errorf("%w: saving upload: %v", ErrStorage, copyErr)
	case closeErr != nil:
		return fmt.Errorf("%w: saving upload: %v", ErrStorage, closeErr)
	case n > p.cfg.maxUploadBytes:
		_ = os.Remove(dst)
		return fmt.Errorf("%w: more than %d bytes", ErrUploadTooLarge, p.cfg.maxUploadBytes)
	}
	return nil
}

// unpack extracts an archive next to it, publishes its assets and returns
// the selected document's text and its directory relative to uploadDir.
func (p *Publisher) unpack(ctx context.Context, zipPath, uploadDir, pubDir string, result *IngestResult) (text, docDir string, mapping pipeline.Mapping, err error) {
	label := p.archiveLabel(filepath.Base(zipPath))
	extractRoot := filepath.Join(uploadDir, label)

	files, err := archive.Extract(ctx, zipPath, extractRoot, p.cfg.extractLimit())
	switch {
	case errors.Is(err, archive.ErrUnsafeEntry):
		return "", "", nil, fmt.Errorf("%w: %v", ErrUnsafeArchive, err)
	case errors.Is(err, archive.ErrOpenArchive):
		return "", "", nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	case errors.Is(err, archive.ErrTooLarge):
		return "", "", nil, fmt.Errorf("%w: %v (max %d bytes)", ErrArchiveTooLarge, err, p.cfg.extractLimit())
	case err != nil:
		return "", "", nil, err
	}
	files = archive.Filter(files, p.cfg.ignorePatterns)

	doc, err := archive.SelectDocument(files, p.cfg.preferredDocuments, p.cfg.documentExtensions)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrNoDocument, err)
	}

	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	builder := &pipeline.MappingBuilder{
		PublicationRoot:    pubDir,
		DocumentExtensions: p.cfg.documentExtensions,
	}
	mapping, plan := builder.Build(files, label)
	if err := publish.CopyAll(ctx, plan); err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	result.Assets = len(plan)

	result.Source = path.Join(label, doc.RelPath)
	docDir = pipeline.Canonicalize(label, path.Dir(doc.RelPath))
	return string(data), docDir, mapping, nil
}

// archiveLabel is the archive's name without extension, used both as the
// extraction directory and as the first segment of every mapping key.
// Labels that would shadow the normalized document in the upload directory
// or the preview in the publication directory get a suffix.
func (p *Publisher) archiveLabel(name string) string {
	label := strings.TrimSuffix(name, filepath.Ext(name))
	if strings.Trim(label, ".") == "" {
		return "archive"
	}
	if strings.EqualFold(label, p.cfg.documentName) || strings.EqualFold(label, previewName) {
		return label + labelSuffix
	}
	return label
}

// writePreview renders the rewritten document as index.html in pubDir.
func (p *Publisher) writePreview(ctx context.Context, result *IngestResult, pubDir, markdown string) error {
	html, err := p.preview.ToHTML(ctx, path.Base(result.Source), markdown)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPreview, err)
	}

	result.PreviewPath = filepath.Join(pubDir, previewName)
	if err := fileutil.WriteFileAtomic(result.PreviewPath, []byte(html), filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	result.PreviewURL = result.PublicBase + previewName
	return nil
}

// Convert sends a document to gen and writes the slides file.
// docPath selects the document; empty means the newest upload's input.md.
func (p *Publisher) Convert(ctx context.Context, gen Generator, docPath string) (*ConvertResult, error) {
	if gen == nil {
		return nil, ErrNoGenerator
	}

	source, err := p.resolveDocument(docPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(source) // #nosec G304 -- caller-selected document
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	p.logger.Info("generating slides", "source", source)
	start := p.now()

	slides, err := gen.Generate(ctx, string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	out := p.cfg.slidesPath
	if dir := filepath.Dir(out); dir != "." {
		if err := publish.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}
	if err := fileutil.WriteFileAtomic(out, []byte(slides), filePermissions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	p.logger.Info("slides written", "source", source, "output", out, "duration", p.now().Sub(start))
	return &ConvertResult{Source: source, Output: out, Slides: slides}, nil
}

// resolveDocument returns docPath when set, else the newest upload's document.
func (p *Publisher) resolveDocument(docPath string) (string, error) {
	if docPath != "" {
		if !fileutil.FileExists(docPath) {
			return "", fmt.Errorf("%w: %s", ErrNoDocument, docPath)
		}
		return docPath, nil
	}

	latest, ok := publish.LatestDocument(p.cfg.uploadsDir, p.cfg.documentName)
	if !ok {
		return "", fmt.Errorf("%w: no upload in %s", ErrNoDocument, p.cfg.uploadsDir)
	}
	return latest, nil
}

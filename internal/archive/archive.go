// Package archive extracts uploaded zip archives and picks the primary
// document inside them.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdpublish/internal/pipeline"
)

// Sentinel errors for archive operations.
var (
	ErrOpenArchive = errors.New("failed to open archive")
	ErrUnsafeEntry = errors.New("archive entry escapes extraction root")
	ErrNoDocument  = errors.New("no document found in archive")
	ErrTooLarge    = errors.New("archive expands beyond size limit")
)

// DefaultPreferredNames are picked first when selecting the primary document.
var DefaultPreferredNames = []string{"slides.md", "index.md"}

// File permission constants.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// Extract unpacks the zip at zipPath into destDir and returns every regular
// file written, ordered by a lexical walk of destDir. At most maxBytes are
// decompressed across all entries; maxBytes <= 0 means no limit. Exceeding it
// fails with ErrTooLarge, leaving partial output for the caller to remove.
func Extract(ctx context.Context, zipPath, destDir string, maxBytes int64) ([]pipeline.ExtractedFile, error) {
	r, err := zip.OpenReader(zipPath)
	if errors.Is(err, zip.ErrInsecurePath) {
		if r != nil {
			_ = r.Close()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnsafeEntry, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenArchive, err)
	}
	defer r.Close()

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absDest, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating extraction root: %w", err)
	}

	budget := &sizeBudget{remaining: maxBytes, limited: maxBytes > 0}
	for _, entry := range r.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := extractEntry(entry, absDest, budget); err != nil {
			return nil, err
		}
	}

	return Walk(absDest)
}

// sizeBudget tracks the decompressed bytes still allowed.
type sizeBudget struct {
	remaining int64
	limited   bool
}

// reader caps src one byte past the budget so overruns are detectable.
func (b *sizeBudget) reader(src io.Reader) io.Reader {
	if !b.limited {
		return src
	}
	return io.LimitReader(src, b.remaining+1)
}

func (b *sizeBudget) spend(name string, n int64) error {
	if !b.limited {
		return nil
	}
	if n > b.remaining {
		return fmt.Errorf("%w: %s", ErrTooLarge, name)
	}
	b.remaining -= n
	return nil
}

// extractEntry writes one archive entry below root.
func extractEntry(entry *zip.File, root string, budget *sizeBudget) error {
	target, err := entryTarget(root, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, dirPermissions)
	}
	if !entry.Mode().IsRegular() {
		// Symlinks and devices are not published.
		return nil
	}
	// Declared sizes can lie; the copy below is capped regardless.
	if budget.limited && entry.UncompressedSize64 > uint64(budget.remaining) {
		return fmt.Errorf("%w: %s", ErrTooLarge, entry.Name)
	}

	if err := os.MkdirAll(filepath.Dir(target), dirPermissions); err != nil {
		return fmt.Errorf("creating directory for %s: %w", entry.Name, err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", entry.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions) // #nosec G304 -- target validated by entryTarget
	if err != nil {
		return fmt.Errorf("creating %s: %w", entry.Name, err)
	}

	n, err := io.Copy(dst, budget.reader(src)) // #nosec G110 -- capped by sizeBudget
	if err != nil {
		_ = dst.Close()
		return fmt.Errorf("writing %s: %w", entry.Name, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", entry.Name, err)
	}
	return budget.spend(entry.Name, n)
}

// entryTarget resolves an archive entry name below root and rejects names
// that would land outside it.
func entryTarget(root, name string) (string, error) {
	clean := filepath.FromSlash(strings.ReplaceAll(name, "\\", "/"))
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntry, name)
	}

	target := filepath.Join(root, clean)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntry, name)
	}
	return target, nil
}

// Walk lists the regular files below root in lexical order.
func Walk(root string) ([]pipeline.ExtractedFile, error) {
	var files []pipeline.ExtractedFile
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, pipeline.ExtractedFile{Path: p, RelPath: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// SelectDocument picks the primary document: the first file, in walk order,
// whose base name matches any of preferred (case-insensitive), else the first
// file with a document extension. ErrNoDocument if there is none.
func SelectDocument(files []pipeline.ExtractedFile, preferred, extensions []string) (pipeline.ExtractedFile, error) {
	if len(preferred) == 0 {
		preferred = DefaultPreferredNames
	}
	if len(extensions) == 0 {
		extensions = pipeline.DefaultDocumentExtensions
	}

	var candidates []pipeline.ExtractedFile
	for _, f := range files {
		if pipeline.IsDocument(f.RelPath, extensions) {
			candidates = append(candidates, f)
		}
	}

	for _, f := range candidates {
		base := baseName(f.RelPath)
		for _, name := range preferred {
			if strings.EqualFold(base, name) {
				return f, nil
			}
		}
	}

	if len(candidates) > 0 {
		return candidates[0], nil
	}
	return pipeline.ExtractedFile{}, ErrNoDocument
}

func baseName(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		return rel[i+1:]
	}
	return rel
}

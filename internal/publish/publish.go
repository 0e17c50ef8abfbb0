// Package publish executes copy plans into the publication tree and manages
// per-upload storage namespaces.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-mdpublish/internal/pipeline"
)

// ErrCopyAsset indicates an asset could not be copied into the publication tree.
var ErrCopyAsset = errors.New("failed to copy asset")

// File permission constants.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// uploadIDLayout formats the timestamp part of an upload id.
const uploadIDLayout = "20060102-150405"

// UploadID returns a new storage namespace name: "up-" followed by the
// timestamp and the first 8 hex digits of a random UUID, so uploads made in
// the same second still get distinct directories.
func UploadID(now time.Time) string {
	return NewUploadID(now, uuid.New())
}

// NewUploadID builds an upload id from explicit parts.
func NewUploadID(now time.Time, id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return "up-" + now.Format(uploadIDLayout) + "-" + hex[:8]
}

// EnsureDir creates dir and its parents. Existing directories are fine.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// CopyAll executes the copy plan in order. Destination directories are
// created as needed; file bytes and modification times are preserved.
func CopyAll(ctx context.Context, plan []pipeline.CopyInstruction) error {
	for _, ci := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := CopyFile(ci.Source, ci.Dest); err != nil {
			return err
		}
	}
	return nil
}

// CopyFile copies src to dst, creating dst's directory first.
func CopyFile(src, dst string) error {
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("%w: %v", ErrCopyAsset, err)
	}

	in, err := os.Open(src) // #nosec G304 -- source comes from the extraction walk
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCopyAsset, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCopyAsset, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions) // #nosec G304 -- destination built by MappingBuilder
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCopyAsset, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: %s: %v", ErrCopyAsset, src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrCopyAsset, err)
	}

	// Best effort, like cp -p: a failure here does not invalidate the copy.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}

// LatestDocument returns the document named name inside the most recently
// modified upload directory under uploadsDir that has one. ok is false when
// no upload holds such a document.
func LatestDocument(uploadsDir, name string) (path string, ok bool) {
	entries, err := os.ReadDir(uploadsDir)
	if err != nil {
		return "", false
	}

	type upload struct {
		dir   string
		mtime time.Time
	}

	uploads := make([]upload, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		var mtime time.Time
		if info, err := e.Info(); err == nil {
			mtime = info.ModTime()
		}
		uploads = append(uploads, upload{dir: filepath.Join(uploadsDir, e.Name()), mtime: mtime})
	}

	// Newest first; equal times fall back to the name, which embeds the timestamp.
	sort.Slice(uploads, func(i, j int) bool {
		if !uploads[i].mtime.Equal(uploads[j].mtime) {
			return uploads[i].mtime.After(uploads[j].mtime)
		}
		return uploads[i].dir > uploads[j].dir
	})

	for _, u := range uploads {
		candidate := filepath.Join(u.dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

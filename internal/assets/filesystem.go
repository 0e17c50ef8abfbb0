package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alnah/go-mdpublish/internal/fileutil"
)

// MaxStyleSize bounds a stylesheet read from disk. Previews inline the whole
// file into every page.
const MaxStyleSize = 512 << 10

// FilesystemLoader loads styles from {styleDir}/styles/{name}.css.
type FilesystemLoader struct {
	styleDir string // absolute, symlinks resolved
}

// NewFilesystemLoader returns ErrInvalidBasePath unless styleDir is an
// existing directory.
func NewFilesystemLoader(styleDir string) (*FilesystemLoader, error) {
	if styleDir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	dir, err := realPath(styleDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !fileutil.DirExists(dir) {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, dir)
	}
	return &FilesystemLoader{styleDir: dir}, nil
}

// LoadStyle reads styles/<name>.css. A symlink leaving the style directory
// is rejected with ErrPathTraversal.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	target, err := realPath(filepath.Join(f.styleDir, "styles", name+".css"))
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}
	if target == f.styleDir || !fileutil.Contained(f.styleDir, target) {
		return "", fmt.Errorf("%w: %q leaves the style directory", ErrPathTraversal, name)
	}

	file, err := os.Open(target) // #nosec G304 -- contained in styleDir
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxStyleSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	if len(data) > MaxStyleSize {
		return "", fmt.Errorf("%w: %q exceeds %d bytes", ErrAssetRead, name, MaxStyleSize)
	}
	return string(data), nil
}

// realPath makes p absolute and resolves symlinks when p exists.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

var _ StyleLoader = (*FilesystemLoader)(nil)

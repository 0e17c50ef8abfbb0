package server

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdpublish/internal/fileutil"
	"github.com/alnah/go-mdpublish/internal/pipeline"
)

// resolvePath maps a decoded URL path below the route prefix to its file.
// Published assets are stored under their percent-encoded names, so each
// segment is encoded again before touching the disk.
func (s *Server) resolvePath(rel string) (string, error) {
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return "", errNotFound
	}

	candidate := filepath.Join(s.uploadsRoot, filepath.FromSlash(pipeline.EscapePath(rel)))
	if candidate == s.uploadsRoot || !fileutil.Contained(s.uploadsRoot, candidate) {
		return "", errNotFound
	}
	return candidate, nil
}

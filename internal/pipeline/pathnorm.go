package pipeline

import (
	"path"
	"strings"
)

// Canonicalize resolves authored, as written inside a document located at
// docDir, into a root-relative path. docDir is itself root-relative and uses
// forward slashes; "" means the root.
//
// Resolution is lexical only: no filesystem access, no symlinks. Leading ".."
// segments that climb above the root are kept; clamping is a caller policy
// (see EscapePolicy).
func Canonicalize(docDir, authored string) string {
	dir := strings.ReplaceAll(docDir, "\\", "/")
	p := strings.TrimSpace(strings.ReplaceAll(authored, "\\", "/"))

	joined := path.Clean(path.Join(dir, p))
	if joined == "." {
		return ""
	}
	return strings.TrimPrefix(joined, "./")
}

// escapesRoot reports whether a canonical path climbs above the root.
func escapesRoot(canonical string) bool {
	return canonical == ".." || strings.HasPrefix(canonical, "../")
}

// clampToRoot drops the leading ".." segments of a canonical path.
func clampToRoot(canonical string) string {
	for escapesRoot(canonical) {
		canonical = strings.TrimPrefix(strings.TrimPrefix(canonical, ".."), "/")
	}
	return canonical
}

// isAbsolutePath reports whether p is rooted at "/" once normalized.
func isAbsolutePath(p string) bool {
	return strings.HasPrefix(strings.ReplaceAll(p, "\\", "/"), "/")
}

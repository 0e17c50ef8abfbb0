package pipeline

import "strings"

const upperHex = "0123456789ABCDEF"

// EscapeSegment percent-encodes a single path segment. ASCII letters, digits,
// '.', '_' and '-' are kept; every other byte, including '/', becomes %XX.
func EscapeSegment(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isSegmentSafe(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSegmentSafe(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

// EscapePath encodes each "/"-separated segment of p independently.
// Separators are never encoded.
func EscapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = EscapeSegment(seg)
	}
	return strings.Join(segments, "/")
}

func isSegmentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '.', c == '_', c == '-':
		return true
	}
	return false
}

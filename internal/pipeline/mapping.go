package pipeline

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultDocumentExtensions lists the extensions treated as documents.
// Documents are consumed as text and never republished as assets.
var DefaultDocumentExtensions = []string{".md", ".markdown"}

// ExtractedFile is one file produced by archive extraction.
type ExtractedFile struct {
	Path    string // location on disk
	RelPath string // path relative to the extraction root, any separator
}

// CopyInstruction asks the publication step to copy Source to Dest.
type CopyInstruction struct {
	Source string
	Dest   string
}

// Mapping maps canonical asset paths to encoded target paths, both
// slash-separated and root-relative. A nil Mapping is empty and valid.
type Mapping map[string]string

// Lookup returns the target recorded for a canonical path.
func (m Mapping) Lookup(canonical string) (string, bool) {
	target, ok := m[canonical]
	return target, ok && target != ""
}

// MappingBuilder computes the Mapping and the copy plan for one archive.
type MappingBuilder struct {
	// PublicationRoot is the directory assets are copied under.
	PublicationRoot string
	// DocumentExtensions overrides DefaultDocumentExtensions when non-empty.
	DocumentExtensions []string
}

// NewMappingBuilder creates a builder publishing under root.
func NewMappingBuilder(root string) *MappingBuilder {
	return &MappingBuilder{PublicationRoot: root}
}

// Build records every non-document file in files under rootLabel.
// The key is Canonicalize(rootLabel, rel); the value is the key with each
// segment percent-encoded. An empty rootLabel keys files by their relative
// path alone.
//
// Later entries with the same key replace earlier ones, both in the Mapping
// and in the copy plan, so each destination is copied exactly once. Entries
// whose key would land outside the root are skipped.
func (b *MappingBuilder) Build(files []ExtractedFile, rootLabel string) (Mapping, []CopyInstruction) {
	mapping := make(Mapping, len(files))
	copies := make([]CopyInstruction, 0, len(files))
	byKey := make(map[string]int, len(files))

	for _, f := range files {
		rel := strings.ReplaceAll(f.RelPath, "\\", "/")
		if IsDocument(rel, b.documentExtensions()) {
			continue
		}

		key := Canonicalize(rootLabel, rel)
		if key == "" || escapesRoot(key) {
			continue
		}

		value := EscapePath(key)
		mapping[key] = value

		ci := CopyInstruction{
			Source: f.Path,
			Dest:   filepath.Join(b.PublicationRoot, filepath.FromSlash(value)),
		}
		if i, ok := byKey[key]; ok {
			copies[i] = ci
			continue
		}
		byKey[key] = len(copies)
		copies = append(copies, ci)
	}

	return mapping, copies
}

func (b *MappingBuilder) documentExtensions() []string {
	if len(b.DocumentExtensions) > 0 {
		return b.DocumentExtensions
	}
	return DefaultDocumentExtensions
}

// IsDocument reports whether name has one of the document extensions.
// The comparison is case-insensitive.
func IsDocument(name string, extensions []string) bool {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(name, "\\", "/")))
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

package mdpublish

import "github.com/alnah/go-mdpublish/internal/pipeline"

// Mapping maps canonical asset paths to their percent-encoded public form.
type Mapping = pipeline.Mapping

// ExtractedFile is one file produced by archive extraction: its location on
// disk and its path relative to the extraction root.
type ExtractedFile = pipeline.ExtractedFile

// CopyInstruction asks for Source to be copied to Dest.
type CopyInstruction = pipeline.CopyInstruction

// Reference is an image reference found in a document.
type Reference = pipeline.Reference

// EscapePolicy decides how references climbing above the root are handled.
type EscapePolicy = pipeline.EscapePolicy

// Escape policies.
const (
	EscapeClamp = pipeline.EscapeClamp
	EscapeKeep  = pipeline.EscapeKeep
	EscapeSkip  = pipeline.EscapeSkip
)

// Rewrite replaces relative image references in text with base-prefixed
// public paths, resolving them against docDir and m. Remote URLs, data URIs
// and root-absolute paths are left as they are. Rewriting the output again
// with the same base changes nothing.
func Rewrite(text, base, docDir string, m Mapping) string {
	return pipeline.Rewrite(text, base, docDir, m)
}

// Canonicalize joins authored onto docDir and resolves "." and ".."
// segments lexically, returning a slash-separated path without a leading "./".
func Canonicalize(docDir, authored string) string {
	return pipeline.Canonicalize(docDir, authored)
}

// BuildMapping maps every non-document file in files to its public form
// under rootLabel and plans one copy per destination below publicationRoot.
// Keys are Canonicalize(rootLabel, RelPath); values are the same path with
// each segment percent-encoded. Later duplicates replace earlier ones. Empty
// documentExtensions means ".md" and ".markdown".
func BuildMapping(publicationRoot string, files []ExtractedFile, rootLabel string, documentExtensions ...string) (Mapping, []CopyInstruction) {
	b := pipeline.MappingBuilder{
		PublicationRoot:    publicationRoot,
		DocumentExtensions: documentExtensions,
	}
	return b.Build(files, rootLabel)
}

// ParseEscapePolicy parses "clamp", "keep" or "skip".
func ParseEscapePolicy(s string) (EscapePolicy, error) {
	return pipeline.ParseEscapePolicy(s)
}

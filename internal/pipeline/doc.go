// Package pipeline implements the asset reference engine.
//
// The engine has three parts that run in order:
//   - Canonicalize turns a reference written inside a document into a
//     root-relative, slash-separated path with "." and ".." resolved.
//   - MappingBuilder walks the files extracted from an archive and records
//     where each asset is republished (the Mapping) and which files to copy.
//   - Rewriter scans markdown text for ![alt](path) and <img src="path">
//     references and replaces relative paths with public ones.
//
// Everything here is pure string processing. Reading archives, copying files
// and serving them belong to the callers (internal/archive, internal/publish).
//
// The package also carries the preview renderer (Goldmark) and a reference
// audit used to report assets that could not be resolved.
package pipeline

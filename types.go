package mdpublish

import "io"

// Upload is a file received for publication.
type Upload struct {
	Filename string    // client-supplied name; only its base name is used
	Body     io.Reader // file content
}

// IngestResult describes a published upload.
type IngestResult struct {
	ID           string      `json:"id"`                     // upload id, e.g. "up-20250101-120000-1a2b3c4d"
	Kind         string      `json:"kind"`                   // "document" or "archive"
	DocumentPath string      `json:"document_path"`          // normalized document on disk
	Source       string      `json:"source"`                 // document the text came from, relative to the upload
	PublicBase   string      `json:"public_base"`            // URL prefix of published assets, ends in "/"
	Assets       int         `json:"assets"`                 // asset files copied to the public tree
	Missing      []Reference `json:"missing,omitempty"`      // rewritten references with no published file
	PreviewPath  string      `json:"preview_path,omitempty"` // HTML preview on disk, empty when previews are off
	PreviewURL   string      `json:"preview_url,omitempty"`  // URL of the preview, empty when previews are off
}

// ConvertResult describes a generated slides file.
type ConvertResult struct {
	Source string // document sent to the generator
	Output string // slides file written
	Slides string // generated content
}

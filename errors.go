package mdpublish

import "errors"

// Sentinel errors for library operations.
var (
	// Upload validation errors.
	ErrEmptyFilename        = errors.New("filename is empty")
	ErrInvalidFilename      = errors.New("invalid filename")
	ErrUnsupportedExtension = errors.New("unsupported file type")
	ErrMissingUploadField   = errors.New("missing upload field")
	ErrUploadTooLarge       = errors.New("upload exceeds size limit")
	ErrInvalidArchive       = errors.New("invalid archive")
	ErrUnsafeArchive        = errors.New("archive entry escapes extraction root")
	ErrArchiveTooLarge      = errors.New("archive expands beyond size limit")

	// Document selection errors.
	ErrNoDocument             = errors.New("no document found")
	ErrDocumentOutsideUploads = errors.New("document is outside the uploads directory")

	// Configuration errors.
	ErrInvalidRoutePrefix = errors.New("invalid route prefix")
	ErrNoGenerator        = errors.New("no generator configured")

	// Internal errors.
	ErrStorage  = errors.New("storage operation failed")
	ErrPreview  = errors.New("preview rendering failed")
	ErrGenerate = errors.New("slide generation failed")
)

// validationErrors are caused by the caller's input rather than by the system.
var validationErrors = []error{
	ErrEmptyFilename,
	ErrInvalidFilename,
	ErrUnsupportedExtension,
	ErrMissingUploadField,
	ErrUploadTooLarge,
	ErrInvalidArchive,
	ErrUnsafeArchive,
	ErrArchiveTooLarge,
	ErrNoDocument,
	ErrDocumentOutsideUploads,
}

// IsValidation reports whether err was caused by invalid input, as opposed
// to an internal failure. HTTP callers map it to 400.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

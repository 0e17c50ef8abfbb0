package assets

import "errors"

// Resolver tries a custom directory first, then the embedded styles.
type Resolver struct {
	custom   StyleLoader // nil without a custom directory
	embedded StyleLoader
}

// NewResolver creates a Resolver. An empty customBasePath uses only the
// embedded styles.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if customBasePath == "" {
		return r, nil
	}

	custom, err := NewFilesystemLoader(customBasePath)
	if err != nil {
		return nil, err
	}
	r.custom = custom
	return r, nil
}

// LoadStyle loads name from the custom directory, falling back to the
// embedded set only when the custom directory has no such style.
func (r *Resolver) LoadStyle(name string) (string, error) {
	if r.custom != nil {
		css, err := r.custom.LoadStyle(name)
		if err == nil {
			return css, nil
		}
		if !errors.Is(err, ErrStyleNotFound) {
			return "", err
		}
	}
	return r.embedded.LoadStyle(name)
}

var _ StyleLoader = (*Resolver)(nil)

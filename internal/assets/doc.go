// Package assets provides the stylesheets embedded in HTML previews.
//
// Styles are looked up by name ("default", "minimal") in the embedded set,
// or in a custom directory laid out as:
//
//	assets/
//	└── styles/
//	    └── custom.css
//
// A Resolver tries the custom directory first and falls back to the
// embedded styles when a name is not found there.
package assets

package pipeline

import "testing"

// ---------------------------------------------------------------------------
// TestCanonicalize - Lexical resolution against the document directory
// ---------------------------------------------------------------------------

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		docDir   string
		authored string
		want     string
	}{
		{name: "root document plain path", docDir: "", authored: "assets/logo.png", want: "assets/logo.png"},
		{name: "root document dot slash", docDir: "", authored: "./assets/logo.png", want: "assets/logo.png"},
		{name: "nested document parent", docDir: "a/b", authored: "../c.png", want: "a/c.png"},
		{name: "same file from shallower dir", docDir: "a", authored: "c.png", want: "a/c.png"},
		{name: "dot segments in the middle", docDir: "docs", authored: "img/./x/../a.png", want: "docs/img/a.png"},
		{name: "backslashes normalized", docDir: `pkg\docs`, authored: `..\img\a.png`, want: "pkg/img/a.png"},
		{name: "whitespace trimmed", docDir: "", authored: "  img/a.png \t", want: "img/a.png"},
		{name: "escaping root kept lexically", docDir: "", authored: "../secret.png", want: "../secret.png"},
		{name: "escaping from nested dir", docDir: "a", authored: "../../x.png", want: "../x.png"},
		{name: "duplicate slashes collapsed", docDir: "", authored: "img//a.png", want: "img/a.png"},
		{name: "current directory is empty", docDir: "", authored: ".", want: ""},
		{name: "dir itself", docDir: "docs", authored: "./", want: "docs"},
		{name: "hidden directory preserved", docDir: "", authored: ".assets/a.png", want: ".assets/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Canonicalize(tt.docDir, tt.authored)
			if got != tt.want {
				t.Errorf("Canonicalize(%q, %q) = %q, want %q", tt.docDir, tt.authored, got, tt.want)
			}
		})
	}
}

func TestCanonicalize_Deterministic(t *testing.T) {
	t.Parallel()

	a := Canonicalize("a/b", "../c.png")
	b := Canonicalize("a", "c.png")
	if a != b || a != "a/c.png" {
		t.Errorf("Canonicalize mismatch: %q vs %q, want both %q", a, b, "a/c.png")
	}

	for i := 0; i < 5; i++ {
		if got := Canonicalize("a/b", "../c.png"); got != a {
			t.Fatalf("call %d returned %q, want %q", i, got, a)
		}
	}
}

// ---------------------------------------------------------------------------
// TestClampToRoot - Leading ".." removal
// ---------------------------------------------------------------------------

func TestClampToRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"../img/a.png", "img/a.png"},
		{"../../img/a.png", "img/a.png"},
		{"..", ""},
		{"img/a.png", "img/a.png"},
		{"..foo/a.png", "..foo/a.png"},
	}

	for _, tt := range tests {
		if got := clampToRoot(tt.in); got != tt.want {
			t.Errorf("clampToRoot(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-mdpublish/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestSafeBaseName - Client filename reduction
// ---------------------------------------------------------------------------

func TestSafeBaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain name", input: "deck.zip", want: "deck.zip"},
		{name: "unix directories dropped", input: "a/b/notes.md", want: "notes.md"},
		{name: "windows directories dropped", input: `C:\Users\me\notes.md`, want: "notes.md"},
		{name: "traversal dropped", input: "../../etc/passwd", want: "passwd"},
		{name: "surrounding space trimmed", input: "  deck.md ", want: "deck.md"},
		{name: "empty", input: "", wantErr: fileutil.ErrFilenameEmpty},
		{name: "trailing slash", input: "dir/", wantErr: fileutil.ErrFilenameEmpty},
		{name: "dot dot", input: "..", wantErr: fileutil.ErrFilenamePathTraversal},
		{name: "null byte", input: "a\x00.md", wantErr: fileutil.ErrFilenamePathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fileutil.SafeBaseName(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SafeBaseName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SafeBaseName(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SafeBaseName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestContained - Root containment
// ---------------------------------------------------------------------------

func TestContained(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "public")

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{name: "root itself", target: root, want: true},
		{name: "child", target: filepath.Join(root, "uploads", "a.png"), want: true},
		{name: "dotdot-prefixed child", target: filepath.Join(root, "..a"), want: true},
		{name: "parent", target: filepath.Dir(root), want: false},
		{name: "sibling", target: root + "-other", want: false},
		{name: "climbs out", target: filepath.Join(root, "..", "secret"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.Contained(root, tt.target); got != tt.want {
				t.Errorf("Contained(%q, %q) = %v, want %v", root, tt.target, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Atomic writes
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "input.md")

	if err := fileutil.WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() overwrite error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (temp file left behind)", len(entries))
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "input.md")
	if err := fileutil.WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Error("WriteFileAtomic() into missing directory should fail")
	}
}

// ---------------------------------------------------------------------------
// TestFileExists / TestDirExists / TestIsFilePath
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Error("FileExists(file) = false, want true")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists(dir) = true, want false")
	}
	if fileutil.FileExists(filepath.Join(dir, "nope")) {
		t.Error("FileExists(missing) = true, want false")
	}
	if !fileutil.DirExists(dir) {
		t.Error("DirExists(dir) = false, want true")
	}
	if fileutil.DirExists(file) {
		t.Error("DirExists(file) = true, want false")
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"minimal", false},
		{"./config.yaml", true},
		{"/etc/mdpublish.yaml", true},
		{`C:\cfg.yaml`, true},
		{"my-config", false},
	}

	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.input); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

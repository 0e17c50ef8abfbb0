package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-mdpublish/internal/generate"
)

// fakeGenerator returns canned slides and records its input.
type fakeGenerator struct {
	output string
	err    error
	got    string
}

func (f *fakeGenerator) Generate(_ context.Context, markdown string) (string, error) {
	f.got = markdown
	return f.output, f.err
}

// newTestEnv returns an Environment reading vars instead of the process
// environment, with captured output.
func newTestEnv(t *testing.T, vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdin:  strings.NewReader(""),
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		NewGenerator: func(context.Context, generate.Config) (generate.Generator, error) {
			return &fakeGenerator{output: "---\ntheme: default\n---\n# Slides\n"}, nil
		},
	}
	return env, stdout, stderr
}

// storageArgs points a command at fresh uploads and public directories.
func storageArgs(t *testing.T) (args []string, uploads, public string) {
	t.Helper()
	root := t.TempDir()
	uploads = filepath.Join(root, "uploads")
	public = filepath.Join(root, "public")
	return []string{"--uploads-dir", uploads, "--public-dir", public}, uploads, public
}

// writeFile creates a file with content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

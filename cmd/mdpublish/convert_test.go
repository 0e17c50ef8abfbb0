package main

// Notes:
// - runConvertCmd: the generation backend is replaced through
//   Environment.NewGenerator, so no network calls are made.
// - Hints: missing credentials and a missing upload carry actionable hints.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdpublish/internal/generate"
)

// ---------------------------------------------------------------------------
// TestRunConvertCmd - Slide generation
// ---------------------------------------------------------------------------

func TestRunConvertCmd(t *testing.T) {
	t.Parallel()

	t.Run("explicit input", func(t *testing.T) {
		t.Parallel()

		args, _, _ := storageArgs(t)
		dir := t.TempDir()
		in := writeFile(t, dir, "input.md", "# Deck\n")
		out := filepath.Join(dir, "deck", "slides.md")

		gen := &fakeGenerator{output: "# Slide 1\n"}
		var gotCfg generate.Config
		env, stdout, stderr := newTestEnv(t, nil)
		env.NewGenerator = func(_ context.Context, cfg generate.Config) (generate.Generator, error) {
			gotCfg = cfg
			return gen, nil
		}

		code := runConvertCmd(context.Background(),
			append(args, "-i", in, "-o", out, "--provider", "anthropic", "--model", "m1"), env)

		if code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
		}
		if gen.got != "# Deck\n" {
			t.Errorf("generator input = %q", gen.got)
		}
		if gotCfg.Provider != "anthropic" || gotCfg.Model != "m1" {
			t.Errorf("generator config = %+v", gotCfg)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "# Slide 1\n" {
			t.Errorf("slides = %q", data)
		}
		if !strings.Contains(stdout.String(), "Created "+out+" from "+in) {
			t.Errorf("stdout = %q", stdout.String())
		}
	})

	t.Run("newest upload", func(t *testing.T) {
		t.Parallel()

		args, uploads, _ := storageArgs(t)
		writeFile(t, uploads, "up-20250101-000000-aaaaaaaa/input.md", "# Latest\n")
		out := filepath.Join(t.TempDir(), "slides.md")

		gen := &fakeGenerator{output: "ok"}
		env, _, stderr := newTestEnv(t, nil)
		env.NewGenerator = func(context.Context, generate.Config) (generate.Generator, error) {
			return gen, nil
		}

		code := runConvertCmd(context.Background(), append(args, "-o", out), env)

		if code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
		}
		if gen.got != "# Latest\n" {
			t.Errorf("generator input = %q", gen.got)
		}
	})

	t.Run("no upload yet", func(t *testing.T) {
		t.Parallel()

		args, _, _ := storageArgs(t)
		env, _, stderr := newTestEnv(t, nil)

		code := runConvertCmd(context.Background(), args, env)

		if code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
		if !strings.Contains(stderr.String(), "mdpublish publish") {
			t.Errorf("stderr = %q, want publish hint", stderr.String())
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		args, _, _ := storageArgs(t)
		env, _, stderr := newTestEnv(t, nil)
		env.NewGenerator = func(context.Context, generate.Config) (generate.Generator, error) {
			return nil, fmt.Errorf("%w: set GOOGLE_API_KEY", generate.ErrMissingCredentials)
		}

		code := runConvertCmd(context.Background(), args, env)

		if code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
		if !strings.Contains(stderr.String(), "hint: export GOOGLE_API_KEY") {
			t.Errorf("stderr = %q, want credentials hint", stderr.String())
		}
	})

	t.Run("generator failure", func(t *testing.T) {
		t.Parallel()

		args, _, _ := storageArgs(t)
		in := writeFile(t, t.TempDir(), "input.md", "# Deck\n")
		env, _, stderr := newTestEnv(t, nil)
		env.NewGenerator = func(context.Context, generate.Config) (generate.Generator, error) {
			return &fakeGenerator{err: errors.New("quota exceeded")}, nil
		}

		code := runConvertCmd(context.Background(),
			append(args, "-i", in, "-o", filepath.Join(t.TempDir(), "s.md")), env)

		if code != ExitGeneral {
			t.Errorf("exit code = %d, want %d", code, ExitGeneral)
		}
		if !strings.Contains(stderr.String(), "quota exceeded") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})

	t.Run("positional argument rejected", func(t *testing.T) {
		t.Parallel()

		env, _, _ := newTestEnv(t, nil)
		if code := runConvertCmd(context.Background(), []string{"doc.md"}, env); code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
	})
}

package main

// Notes:
// - runDoctor: storage checks run against temp directories; credentials are
//   read through the injected getenv. PORT is set so container detection on
//   CI hosts does not add a warning.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunDoctor - Diagnostics
// ---------------------------------------------------------------------------

func TestRunDoctor(t *testing.T) {
	t.Parallel()

	t.Run("ready with credentials and existing dirs", func(t *testing.T) {
		t.Parallel()

		args, uploads, public := storageArgs(t)
		for _, d := range []string{uploads, public} {
			if err := os.MkdirAll(d, 0o750); err != nil {
				t.Fatal(err)
			}
		}
		env, _, _ := newTestEnv(t, map[string]string{"GOOGLE_API_KEY": "k", "PORT": "8080"})
		flags, _, err := parseDoctorFlags(args)
		if err != nil {
			t.Fatal(err)
		}

		r := runDoctor(flags, env)

		if r.Status != "ready" {
			t.Errorf("Status = %q, want ready (warnings %v, errors %v)", r.Status, r.Warnings, r.Errors)
		}
		if !r.Storage.UploadsWritable || !r.Storage.PublicWritable {
			t.Errorf("Storage = %+v, want writable", r.Storage)
		}
		if !r.Generation.Credentials || r.Generation.Provider != "gemini" {
			t.Errorf("Generation = %+v", r.Generation)
		}
		if r.Config.Source != "defaults" || !r.Config.Valid {
			t.Errorf("Config = %+v", r.Config)
		}
	})

	t.Run("missing credentials and dirs are warnings", func(t *testing.T) {
		t.Parallel()

		args, _, _ := storageArgs(t)
		env, _, _ := newTestEnv(t, map[string]string{"PORT": "8080", "MDPUBLISH_PROVIDER": "anthropic"})
		flags, _, _ := parseDoctorFlags(args)

		r := runDoctor(flags, env)

		if r.Status != "warnings" {
			t.Errorf("Status = %q, want warnings (errors %v)", r.Status, r.Errors)
		}
		if r.Generation.Provider != "anthropic" || r.Generation.Credentials {
			t.Errorf("Generation = %+v", r.Generation)
		}
		joined := strings.Join(r.Warnings, "\n")
		if !strings.Contains(joined, "ANTHROPIC_API_KEY") {
			t.Errorf("warnings = %v, want ANTHROPIC_API_KEY", r.Warnings)
		}
		if !strings.Contains(joined, "created on first publish") {
			t.Errorf("warnings = %v, want missing directory note", r.Warnings)
		}
	})

	t.Run("bad config is an error", func(t *testing.T) {
		t.Parallel()

		env, _, _ := newTestEnv(t, map[string]string{"PORT": "8080"})
		flags, _, _ := parseDoctorFlags([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})

		r := runDoctor(flags, env)

		if r.Status != "errors" || r.Config.Valid {
			t.Errorf("Status = %q Config = %+v, want errors", r.Status, r.Config)
		}
	})
}

func TestRunDoctorCmd_JSON(t *testing.T) {
	t.Parallel()

	args, _, _ := storageArgs(t)
	env, stdout, _ := newTestEnv(t, map[string]string{"PORT": "8080"})

	code := runDoctorCmd(append(args, "--json"), env)

	if code != ExitSuccess {
		t.Errorf("exit code = %d, want %d", code, ExitSuccess)
	}
	var got doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout.String(), err)
	}
	if got.System.OS == "" || got.Storage.RoutePrefix != "uploads" {
		t.Errorf("result = %+v", got)
	}
}

func TestRunDoctorCmd_ShowConfig(t *testing.T) {
	t.Parallel()

	t.Run("merged values", func(t *testing.T) {
		t.Parallel()

		args, uploads, _ := storageArgs(t)
		env, stdout, _ := newTestEnv(t, map[string]string{"MDPUBLISH_ROUTE_PREFIX": "files"})

		code := runDoctorCmd(append(args, "--show-config"), env)

		if code != ExitSuccess {
			t.Fatalf("exit code = %d, want %d", code, ExitSuccess)
		}
		out := stdout.String()
		for _, want := range []string{
			"uploadsDir: " + uploads,
			"routePrefix: files",
			"escapePolicy: clamp",
			"__MACOSX/**",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		t.Parallel()

		env, _, stderr := newTestEnv(t, nil)
		code := runDoctorCmd([]string{"--show-config", "--config", filepath.Join(t.TempDir(), "absent.yaml")}, env)

		if code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
		if !strings.Contains(stderr.String(), "config file not found") {
			t.Errorf("stderr = %q", stderr.String())
		}
	})
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	env, stdout, _ := newTestEnv(t, nil)
	printDoctorResult(env.Stdout, &doctorResult{
		Status:   "errors",
		Config:   configInfo{Source: "team.yaml"},
		Storage:  storageInfo{UploadsDir: "u", PublicDir: "p", PublicWritable: true, RoutePrefix: "uploads"},
		Errors:   []string{"Uploads directory not writable: u"},
		Warnings: []string{"No gemini credentials"},
	})

	out := stdout.String()
	for _, want := range []string{
		"[ERROR] Source: team.yaml",
		"[ERROR] Uploads: u",
		"[OK] Public: p",
		"[WARN] Credentials: missing",
		"Status: Not ready",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

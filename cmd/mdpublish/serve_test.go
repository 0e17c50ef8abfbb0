package main

// Notes:
// - runServeCmd: the listener binds 127.0.0.1:0 under an already cancelled
//   context, so the server shuts down as soon as it starts. Request handling
//   is covered by internal/server.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunServeCmd - Startup and validation
// ---------------------------------------------------------------------------

func TestRunServeCmd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		extra      []string
		wantCode   int
		wantStderr string
	}{
		{
			name:     "starts and stops",
			extra:    []string{"--addr", "127.0.0.1:0", "--upload-rate", "2", "--upload-burst", "4", "--no-preview"},
			wantCode: ExitSuccess,
		},
		{
			name:       "positional argument",
			extra:      []string{"extra"},
			wantCode:   ExitUsage,
			wantStderr: `unexpected argument "extra"`,
		},
		{
			name:       "upload rate out of range",
			extra:      []string{"--upload-rate", "5000"},
			wantCode:   ExitUsage,
			wantStderr: "server.uploadRate",
		},
		{
			name:       "unknown flag",
			extra:      []string{"--port", "80"},
			wantCode:   ExitUsage,
			wantStderr: "unknown flag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args, _, _ := storageArgs(t)
			env, _, stderr := newTestEnv(t, nil)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			code := runServeCmd(ctx, append(args, tt.extra...), env)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNewServerLogger - Log format and level
// ---------------------------------------------------------------------------

func TestNewServerLogger(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		env := &Environment{Stderr: &buf}
		logger := newServerLogger(env, &serveFlags{logJSON: true})
		logger.Info("request", "status", 200)

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("log line %q is not JSON: %v", buf.String(), err)
		}
		if line["msg"] != "request" {
			t.Errorf("msg = %v, want request", line["msg"])
		}
	})

	t.Run("quiet drops info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		env := &Environment{Stderr: &buf}
		flags := &serveFlags{}
		flags.common.quiet = true
		newServerLogger(env, flags).Info("request")

		if buf.Len() != 0 {
			t.Errorf("quiet logger wrote %q", buf.String())
		}
	})
}

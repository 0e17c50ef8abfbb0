package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-mdpublish/internal/config"
	"github.com/alnah/go-mdpublish/internal/fileutil"
	"github.com/alnah/go-mdpublish/internal/pipeline"
)

// filePermissions is the mode of files written by the CLI.
const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// runRewriteCmd rewrites the image references of a single document without
// publishing it. Reads stdin when no file (or "-") is given.
func runRewriteCmd(args []string, env *Environment) int {
	flags, positional, err := parseRewriteFlags(args)
	if err != nil {
		return reportFlagError(env, "rewrite", err)
	}
	if len(positional) > 1 {
		return reportFlagError(env, "rewrite", fmt.Errorf("expected at most one input, got %d", len(positional)))
	}

	cfg, err := loadConfig(&flags.common, env, func(cfg *config.Config) {
		if flags.escape != "" {
			cfg.Rewrite.EscapePolicy = flags.escape
		}
	})
	if err != nil {
		return reportError(env, err)
	}

	input := "-"
	if len(positional) == 1 {
		input = positional[0]
	}
	text, err := readInput(input, env.Stdin)
	if err != nil {
		return reportError(env, err)
	}

	if flags.list {
		for _, ref := range pipeline.CollectReferences(text) {
			fmt.Fprintf(env.Stdout, "%s\t%s\n", ref.Kind, ref.Path)
		}
		return ExitSuccess
	}

	policy, err := pipeline.ParseEscapePolicy(cfg.Rewrite.EscapePolicy)
	if err != nil {
		return reportError(env, err)
	}

	out := pipeline.NewRewriter(policy).Rewrite(text, normalizeBase(flags.base), flags.dir, nil)

	if flags.output == "" {
		if _, err := io.WriteString(env.Stdout, out); err != nil {
			return reportError(env, fmt.Errorf("%w: %v", ErrWriteOutput, err))
		}
		return ExitSuccess
	}
	if err := fileutil.WriteFileAtomic(flags.output, []byte(out), filePermissions); err != nil {
		return reportError(env, fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "Created %s\n", flags.output)
	}
	return ExitSuccess
}

// readInput reads a document from path, or from stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- user-selected input
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return string(data), nil
}

// normalizeBase makes base start and end with "/".
func normalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

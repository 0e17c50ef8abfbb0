package main

import (
	"context"
	"errors"
	"fmt"

	mdpublish "github.com/alnah/go-mdpublish"
	"github.com/alnah/go-mdpublish/internal/config"
	"github.com/alnah/go-mdpublish/internal/generate"
	"github.com/alnah/go-mdpublish/internal/hints"
)

// runConvertCmd turns a published document into a slides file.
func runConvertCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		return reportFlagError(env, "convert", err)
	}
	if len(positional) > 0 {
		return reportFlagError(env, "convert", fmt.Errorf("unexpected argument %q (use --input)", positional[0]))
	}

	cfg, err := loadConfig(&flags.common, env, func(cfg *config.Config) {
		applyStorageFlags(&flags.storage, cfg)
		applyGenerateFlags(&flags.generate, cfg)
		if flags.output != "" {
			cfg.Generate.Output = flags.output
		}
		// Convert never writes a preview
		cfg.Preview.Enabled = false
	})
	if err != nil {
		return reportError(env, err)
	}

	logger := newLogger(env.Stderr, &flags.common)
	pub, err := newPublisher(cfg, logger)
	if err != nil {
		return reportError(env, err)
	}

	res, err := convert(ctx, pub, cfg.Generate, flags.input, env)
	if err != nil {
		return reportError(env, err)
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s from %s\n", res.Output, res.Source)
	}
	return ExitSuccess
}

// convert creates the generator and runs the conversion, attaching hints to
// the errors users can fix themselves.
func convert(ctx context.Context, pub *mdpublish.Publisher, gc config.GenerateConfig, input string, env *Environment) (*mdpublish.ConvertResult, error) {
	gen, err := env.NewGenerator(ctx, generate.Config{Provider: gc.Provider, Model: gc.Model})
	if err != nil {
		if errors.Is(err, generate.ErrMissingCredentials) {
			return nil, fmt.Errorf("%w%s", err, hints.ForMissingCredentials(gc.Provider))
		}
		return nil, err
	}

	res, err := pub.Convert(ctx, gen, input)
	if err != nil {
		if input == "" && errors.Is(err, mdpublish.ErrNoDocument) {
			return nil, fmt.Errorf("%w%s", err, hints.ForNoUpload())
		}
		return nil, err
	}
	return res, nil
}

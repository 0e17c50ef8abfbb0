package main

import (
	"context"
	"fmt"
	"log/slog"

	mdpublish "github.com/alnah/go-mdpublish"
	"github.com/alnah/go-mdpublish/internal/config"
	"github.com/alnah/go-mdpublish/internal/generate"
	"github.com/alnah/go-mdpublish/internal/hints"
	"github.com/alnah/go-mdpublish/internal/server"
)

// runServeCmd runs the HTTP upload service until ctx is cancelled.
func runServeCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseServeFlags(args)
	if err != nil {
		return reportFlagError(env, "serve", err)
	}
	if len(positional) > 0 {
		return reportFlagError(env, "serve", fmt.Errorf("unexpected argument %q", positional[0]))
	}

	cfg, err := loadConfig(&flags.common, env, func(cfg *config.Config) {
		applyStorageFlags(&flags.storage, cfg)
		applyPreviewFlags(&flags.preview, cfg)
		applyGenerateFlags(&flags.generate, cfg)
		if flags.escape != "" {
			cfg.Rewrite.EscapePolicy = flags.escape
		}
		if flags.addr != "" {
			cfg.Server.Addr = flags.addr
		}
		if len(flags.cors) > 0 {
			cfg.Server.CORSOrigins = flags.cors
		}
		if flags.maxUploadMB > 0 {
			cfg.Server.MaxUploadMB = flags.maxUploadMB
		}
		if flags.uploadRate > 0 {
			cfg.Server.UploadRate = flags.uploadRate
		}
		if flags.uploadBurst > 0 {
			cfg.Server.UploadBurst = flags.uploadBurst
		}
	})
	if err != nil {
		return reportError(env, err)
	}

	logger := newServerLogger(env, flags)
	pub, err := newPublisher(cfg, logger)
	if err != nil {
		return reportError(env, err)
	}

	srv, err := server.New(pub, generatorFactory(env, cfg.Generate), server.Config{
		Addr:           cfg.Server.Addr,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		Provider:       cfg.Generate.Provider,
		UploadRate:     cfg.Server.UploadRate,
		UploadBurst:    cfg.Server.UploadBurst,
	}, logger)
	if err != nil {
		return reportError(env, err)
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		return reportError(env, fmt.Errorf("%w%s", err, hints.ForListen(cfg.Server.Addr)))
	}
	return ExitSuccess
}

// newServerLogger logs requests at info level, as text or JSON.
func newServerLogger(env *Environment, flags *serveFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case flags.common.quiet:
		level = slog.LevelError
	case flags.common.verbose:
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if flags.logJSON {
		return slog.New(slog.NewJSONHandler(env.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(env.Stderr, opts))
}

// generatorFactory creates a generator per convert request, so a missing
// API key fails the request instead of the server start.
func generatorFactory(env *Environment, gc config.GenerateConfig) server.GeneratorFactory {
	return func(ctx context.Context) (mdpublish.Generator, error) {
		return env.NewGenerator(ctx, generate.Config{Provider: gc.Provider, Model: gc.Model})
	}
}

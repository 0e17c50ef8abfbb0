package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	flag "github.com/spf13/pflag"

	mdpublish "github.com/alnah/go-mdpublish"
	"github.com/alnah/go-mdpublish/internal/assets"
	"github.com/alnah/go-mdpublish/internal/config"
	"github.com/alnah/go-mdpublish/internal/hints"
)

// loadConfig builds the effective configuration for a command.
// Order: defaults, config file (flag or MDPUBLISH_CONFIG), environment,
// then the command's own flags via override.
func loadConfig(common *commonFlags, env *Environment, override func(*config.Config)) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	if !common.quiet {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	if override != nil {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a text logger on w. Quiet keeps errors only, verbose
// enables debug records.
func newLogger(w io.Writer, common *commonFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case common.quiet:
		level = slog.LevelError
	case common.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newPublisher creates a Publisher from the effective configuration.
func newPublisher(cfg *config.Config, logger *slog.Logger) (*mdpublish.Publisher, error) {
	policy, err := mdpublish.ParseEscapePolicy(cfg.Rewrite.EscapePolicy)
	if err != nil {
		return nil, err
	}

	opts := []mdpublish.Option{
		mdpublish.WithUploadsDir(cfg.Storage.UploadsDir),
		mdpublish.WithPublicDir(cfg.Storage.PublicDir),
		mdpublish.WithRoutePrefix(cfg.Storage.RoutePrefix),
		mdpublish.WithEscapePolicy(policy),
		mdpublish.WithDocumentExtensions(cfg.Rewrite.DocumentExtensions...),
		mdpublish.WithPreferredDocuments(cfg.Rewrite.PreferredDocuments...),
		mdpublish.WithIgnorePatterns(cfg.Rewrite.IgnorePatterns...),
		mdpublish.WithLogger(logger),
	}
	if cfg.Generate.Output != "" {
		opts = append(opts, mdpublish.WithSlidesPath(cfg.Generate.Output))
	}
	if cfg.Server.MaxUploadMB > 0 {
		opts = append(opts, mdpublish.WithMaxUploadSize(int64(cfg.Server.MaxUploadMB)<<20))
	}
	if cfg.Preview.Enabled {
		css, err := loadPreviewStyle(cfg.Preview)
		if err != nil {
			return nil, err
		}
		opts = append(opts, mdpublish.WithPreview(css))
	}

	return mdpublish.NewPublisher(opts...)
}

// loadPreviewStyle resolves the preview CSS, preferring styleDir over the
// embedded styles.
func loadPreviewStyle(p config.PreviewConfig) (string, error) {
	resolver, err := assets.NewResolver(p.StyleDir)
	if err != nil {
		return "", err
	}

	name := p.Style
	if name == "" {
		name = assets.DefaultStyleName
	}

	css, err := resolver.LoadStyle(name)
	if err != nil {
		if errors.Is(err, assets.ErrStyleNotFound) {
			return "", fmt.Errorf("%w%s", err, hints.ForStyleNotFound(assets.EmbeddedStyleNames()))
		}
		return "", err
	}
	return css, nil
}

// reportError prints err and returns its exit code.
func reportError(env *Environment, err error) int {
	fmt.Fprintf(env.Stderr, "error: %v\n", err)
	return exitCodeFor(err)
}

// reportFlagError prints a flag parsing failure. Help requests print the
// command usage and succeed.
func reportFlagError(env *Environment, command string, err error) int {
	if errors.Is(err, flag.ErrHelp) {
		runHelp([]string{command}, env)
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v\n", err)
	fmt.Fprintf(env.Stderr, "Run 'mdpublish help %s' for usage.\n", command)
	return ExitUsage
}

package main

import (
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdpublish/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// storageFlags locates the uploads and public trees.
type storageFlags struct {
	uploadsDir  string
	publicDir   string
	routePrefix string
}

// previewFlags controls the HTML preview.
type previewFlags struct {
	style    string
	styleDir string
	disabled bool
}

// generateFlags selects the slide generation backend.
type generateFlags struct {
	provider string
	model    string
}

// publishFlags holds flags for the publish command.
type publishFlags struct {
	common  commonFlags
	storage storageFlags
	preview previewFlags
	escape  string
	workers int
	json    bool
}

// rewriteFlags holds flags for the rewrite command.
type rewriteFlags struct {
	common commonFlags
	base   string
	dir    string
	escape string
	output string
	list   bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common      commonFlags
	storage     storageFlags
	preview     previewFlags
	generate    generateFlags
	escape      string
	addr        string
	cors        []string
	maxUploadMB int
	uploadRate  float64
	uploadBurst int
	logJSON     bool
}

// convertFlags holds flags for the convert command.
type convertFlags struct {
	common   commonFlags
	storage  storageFlags
	generate generateFlags
	input    string
	output   string
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common     commonFlags
	storage    storageFlags
	json       bool
	showConfig bool
}

// newFlagSet creates a FlagSet that reports errors to the caller instead of
// printing them.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addStorageFlags adds storage location flags to a FlagSet.
func addStorageFlags(fs *flag.FlagSet, f *storageFlags) {
	fs.StringVar(&f.uploadsDir, "uploads-dir", "", "directory for raw uploads and documents")
	fs.StringVar(&f.publicDir, "public-dir", "", "root of the served tree")
	fs.StringVar(&f.routePrefix, "route-prefix", "", "URL segment before the upload id")
}

// addPreviewFlags adds preview flags to a FlagSet.
func addPreviewFlags(fs *flag.FlagSet, f *previewFlags) {
	fs.StringVar(&f.style, "style", "", "preview style name")
	fs.StringVar(&f.styleDir, "style-dir", "", "directory holding styles/<name>.css")
	fs.BoolVar(&f.disabled, "no-preview", false, "skip the HTML preview")
}

// addGenerateFlags adds generation backend flags to a FlagSet.
func addGenerateFlags(fs *flag.FlagSet, f *generateFlags) {
	fs.StringVar(&f.provider, "provider", "", "generation provider: gemini, anthropic")
	fs.StringVar(&f.model, "model", "", "provider model (empty = provider default)")
}

// parsePublishFlags parses publish command flags and returns positional args.
func parsePublishFlags(args []string) (*publishFlags, []string, error) {
	fs := newFlagSet("publish")
	f := &publishFlags{}

	fs.StringVar(&f.escape, "escape", "", "escaping references: clamp, keep, skip")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.json, "json", false, "print results as JSON")

	addCommonFlags(fs, &f.common)
	addStorageFlags(fs, &f.storage)
	addPreviewFlags(fs, &f.preview)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseRewriteFlags parses rewrite command flags and returns positional args.
func parseRewriteFlags(args []string) (*rewriteFlags, []string, error) {
	fs := newFlagSet("rewrite")
	f := &rewriteFlags{}

	fs.StringVarP(&f.base, "base", "b", "/", "public base prepended to rewritten paths")
	fs.StringVarP(&f.dir, "dir", "d", "", "document directory inside the published root")
	fs.StringVar(&f.escape, "escape", "", "escaping references: clamp, keep, skip")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fs.BoolVar(&f.list, "list", false, "list image references instead of rewriting")

	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, []string, error) {
	fs := newFlagSet("serve")
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :5181)")
	fs.StringSliceVar(&f.cors, "cors-origin", nil, "allowed CORS origin (repeatable)")
	fs.IntVar(&f.maxUploadMB, "max-upload-mb", 0, "request size limit in MiB")
	fs.Float64Var(&f.uploadRate, "upload-rate", 0, "uploads per second per client (0 = unlimited)")
	fs.IntVar(&f.uploadBurst, "upload-burst", 0, "uploads allowed at once per client")
	fs.StringVar(&f.escape, "escape", "", "escaping references: clamp, keep, skip")
	fs.BoolVar(&f.logJSON, "log-json", false, "write logs as JSON")

	addCommonFlags(fs, &f.common)
	addStorageFlags(fs, &f.storage)
	addPreviewFlags(fs, &f.preview)
	addGenerateFlags(fs, &f.generate)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseConvertFlags parses convert command flags.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := newFlagSet("convert")
	f := &convertFlags{}

	fs.StringVarP(&f.input, "input", "i", "", "document to convert (default: newest upload)")
	fs.StringVarP(&f.output, "output", "o", "", "slides file to write")

	addCommonFlags(fs, &f.common)
	addStorageFlags(fs, &f.storage)
	addGenerateFlags(fs, &f.generate)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string) (*doctorFlags, []string, error) {
	fs := newFlagSet("doctor")
	f := &doctorFlags{}

	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	fs.BoolVar(&f.showConfig, "show-config", false, "print the effective configuration as YAML")

	addCommonFlags(fs, &f.common)
	addStorageFlags(fs, &f.storage)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// applyStorageFlags overrides storage settings with explicitly set flags.
func applyStorageFlags(f *storageFlags, cfg *config.Config) {
	if f.uploadsDir != "" {
		cfg.Storage.UploadsDir = f.uploadsDir
	}
	if f.publicDir != "" {
		cfg.Storage.PublicDir = f.publicDir
	}
	if f.routePrefix != "" {
		cfg.Storage.RoutePrefix = f.routePrefix
	}
}

// applyPreviewFlags overrides preview settings with explicitly set flags.
func applyPreviewFlags(f *previewFlags, cfg *config.Config) {
	if f.style != "" {
		cfg.Preview.Style = f.style
	}
	if f.styleDir != "" {
		cfg.Preview.StyleDir = f.styleDir
	}
	if f.disabled {
		cfg.Preview.Enabled = false
	}
}

// applyGenerateFlags overrides generation settings with explicitly set flags.
func applyGenerateFlags(f *generateFlags, cfg *config.Config) {
	if f.provider != "" {
		cfg.Generate.Provider = f.provider
	}
	if f.model != "" {
		cfg.Generate.Model = f.model
	}
}

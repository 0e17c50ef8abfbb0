package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	mdpublish "github.com/alnah/go-mdpublish"
	"github.com/alnah/go-mdpublish/internal/config"
	"github.com/alnah/go-mdpublish/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// Ingester publishes a single upload.
type Ingester interface {
	Ingest(ctx context.Context, up mdpublish.Upload) (*mdpublish.IngestResult, error)
}

// Compile-time interface implementation check.
var _ Ingester = (*mdpublish.Publisher)(nil)

// PublishResult holds the outcome of a single publish.
type PublishResult struct {
	InputPath string                  `json:"input"`
	Result    *mdpublish.IngestResult `json:"result,omitempty"`
	Err       error                   `json:"-"`
	Error     string                  `json:"error,omitempty"`
	Duration  time.Duration           `json:"-"`
}

// runPublishCmd parses flags and publishes every file argument.
func runPublishCmd(ctx context.Context, args []string, env *Environment) int {
	flags, files, err := parsePublishFlags(args)
	if err != nil {
		return reportFlagError(env, "publish", err)
	}
	if len(files) == 0 {
		return reportError(env, fmt.Errorf("%w: pass one or more .md or .zip files", ErrNoInput))
	}
	if err := validateWorkers(flags.workers); err != nil {
		return reportError(env, err)
	}

	cfg, err := loadConfig(&flags.common, env, func(cfg *config.Config) {
		applyStorageFlags(&flags.storage, cfg)
		applyPreviewFlags(&flags.preview, cfg)
		if flags.escape != "" {
			cfg.Rewrite.EscapePolicy = flags.escape
		}
	})
	if err != nil {
		return reportError(env, err)
	}

	logger := newLogger(env.Stderr, &flags.common)
	pub, err := newPublisher(cfg, logger)
	if err != nil {
		return reportError(env, err)
	}

	workers := resolveWorkers(flags.workers, loadEnvConfig(env.Getenv).Workers)
	logger.Debug("publishing", "files", len(files), "workers", workers)

	results := publishBatch(ctx, pub, files, workers, env.Now)

	if flags.json {
		if err := printResultsJSON(results, env); err != nil {
			return reportError(env, err)
		}
		if countResults(results).Failed > 0 {
			return ExitGeneral
		}
		return ExitSuccess
	}

	failed := printResults(results, pub, flags.common.quiet, flags.common.verbose, env)
	if failed == 0 {
		return ExitSuccess
	}
	if len(results) == 1 {
		return exitCodeFor(results[0].Err)
	}
	return ExitGeneral
}

// publishBatch processes files concurrently with a fixed number of workers.
// Results keep the order of files.
func publishBatch(ctx context.Context, ing Ingester, files []string, workers int, now func() time.Time) []PublishResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := workers
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]PublishResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = PublishResult{InputPath: files[idx], Err: ctx.Err()}
					continue
				}
				results[idx] = publishFile(ctx, ing, files[idx], now)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// publishFile ingests a single file and returns the result.
func publishFile(ctx context.Context, ing Ingester, path string, now func() time.Time) PublishResult {
	start := now()
	result := PublishResult{InputPath: path}

	f, err := os.Open(path) // #nosec G304 -- user-selected input
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadInput, err)
		result.Duration = now().Sub(start)
		return result
	}
	defer func() { _ = f.Close() }()

	res, err := ing.Ingest(ctx, mdpublish.Upload{Filename: filepath.Base(path), Body: f})
	result.Result = res
	result.Err = err
	result.Duration = now().Sub(start)
	return result
}

// ResultSummary holds the count of succeeded and failed publishes.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Missing   int
}

// countResults tallies succeeded and failed publishes and unresolved references.
func countResults(results []PublishResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		if r.Result != nil {
			summary.Missing += len(r.Result.Missing)
		}
	}
	return summary
}

// printResults outputs publish results and returns the number of failures.
func printResults(results []PublishResult, pub *mdpublish.Publisher, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err, pub))
			continue
		}

		res := r.Result
		for _, m := range res.Missing {
			fmt.Fprintf(env.Stderr, "warning: %s: no published file for %s\n", r.InputPath, m.Path)
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%s, %d assets, %v)\n",
				r.InputPath, res.PublicBase, res.Kind, res.Assets, r.Duration.Round(time.Millisecond))
			fmt.Fprintf(env.Stdout, "  document: %s\n", res.DocumentPath)
			if res.PreviewURL != "" {
				fmt.Fprintf(env.Stdout, "  preview:  %s\n", res.PreviewURL)
			}
		} else {
			fmt.Fprintf(env.Stdout, "Published %s -> %s\n", r.InputPath, res.PublicBase)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// printResultsJSON writes results as a JSON array on stdout.
func printResultsJSON(results []PublishResult, env *Environment) error {
	for i := range results {
		if results[i].Err != nil {
			results[i].Error = results[i].Err.Error()
		}
	}
	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// hintFor returns an actionable hint for common ingest failures.
func hintFor(err error, pub *mdpublish.Publisher) string {
	switch {
	case errors.Is(err, mdpublish.ErrUnsupportedExtension):
		return hints.ForUnsupportedExtension(pub.SupportedExtensions())
	case errors.Is(err, mdpublish.ErrNoDocument):
		return hints.ForNoDocument(pub.PreferredDocuments())
	}
	return ""
}

package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-mdpublish/internal/generate"
)

// GeneratorFactory builds the slide generator for a provider configuration.
type GeneratorFactory func(ctx context.Context, cfg generate.Config) (generate.Generator, error)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, process environment, and the generation backend.
type Environment struct {
	Now          func() time.Time
	Stdin        io.Reader
	Stdout       io.Writer
	Stderr       io.Writer
	Getenv       func(string) string
	Environ      func() []string
	NewGenerator GeneratorFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:          time.Now,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Getenv:       os.Getenv,
		Environ:      os.Environ,
		NewGenerator: generate.New,
	}
}

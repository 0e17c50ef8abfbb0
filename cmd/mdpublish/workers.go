package main

import (
	"fmt"
	"runtime"
)

// maxWorkers caps the publish worker pool.
const maxWorkers = 8

// validateWorkers rejects negative or oversized worker counts from flags.
func validateWorkers(n int) error {
	if n < 0 || n > maxWorkers*4 {
		return fmt.Errorf("%w: %d (must be 0-%d)", ErrInvalidWorkerCount, n, maxWorkers*4)
	}
	return nil
}

// resolveWorkers determines the publish worker count.
// Priority: explicit flag > MDPUBLISH_WORKERS > GOMAXPROCS-based calculation.
func resolveWorkers(flagWorkers, envWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}
	if envWorkers > 0 {
		return envWorkers
	}

	// Publishing is mostly disk bound; one worker per available CPU
	// (adjusted by automaxprocs for containers), capped.
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}

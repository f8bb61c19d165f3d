package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that pins the worker count.
const EnvOverride = "RESOLVE_WORKERS"

// Override returns the worker count pinned by RESOLVE_WORKERS, if any.
// Non-numeric and non-positive values are ignored.
func Override() (int, bool) {
	v := os.Getenv(EnvOverride)
	if v == "" {
		return 0, false
	}
	count, err := strconv.Atoi(v)
	if err != nil || count <= 0 {
		return 0, false
	}
	return count, true
}

// Count returns the number of workers for a task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the worker count; use 0 for no limit. A batch of
// n paths never needs more than n workers, so callers usually pass n.
func Count(multiplier float64, limit int) int {
	workers, pinned := Override()
	if !pinned {
		// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
		workers = int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	}

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU). Path
// resolution is I/O-bound: tag parsers open and read files.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

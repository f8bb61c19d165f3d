/*
Package workers sizes worker pools in containerized environments.

Go 1.19+ sets GOMAXPROCS from the container CPU limit, while runtime.NumCPU
still reports the host's CPUs. Sizing from GOMAXPROCS keeps batch resolution
from spawning 64 goroutines in a pod limited to 2 cores.

# Usage

	// Batch resolution reads files: 2 workers per CPU, never more than paths.
	n := workers.ForIO(len(paths))

	// CPU-bound work: 1 worker per CPU, at most 8.
	n := workers.ForCPU(8)

	// Custom ratio, no cap.
	n := workers.Count(3.0, 0)

# Environment Variable Override

RESOLVE_WORKERS pins the count for every helper (still capped by limit):

	env:
	- name: RESOLVE_WORKERS
	  value: "4"

Invalid or non-positive values are ignored and the automatic calculation
applies.
*/
package workers

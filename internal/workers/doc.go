/*
Package workers sizes worker pools in containerized environments.

Worker counts are derived from runtime.GOMAXPROCS(0), which Go sets from
the container CPU limit, rather than runtime.NumCPU(), which reports the
host's CPUs. A pod limited to 2 CPUs on a 64-core node therefore gets 4
I/O workers, not 128.

# Usage

	// Imports of library files: 2 workers per CPU, at most 8
	n := workers.ForIO(8)

	// Custom ratio, no cap
	n := workers.Count(3.0, 0)

# Environment Variable Override

Operators can pin the count with IMPORT_WORKERS:

	env:
	- name: IMPORT_WORKERS
	  value: "4"

The override is still capped by the limit passed to Count or ForIO.
Non-numeric, zero and negative values are ignored.
*/
package workers

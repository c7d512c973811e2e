// Package memory keeps library imports inside the container's memory budget.
//
// [ConfigureFromEnv] derives GOMEMLIMIT from MEMORY_LIMIT, which is usually
// populated from the Kubernetes Downward API:
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//
// An explicit GOMEMLIMIT always wins. MEMORY_RATIO sets the heap share
// (default 0.90).
//
// [Monitor] samples heap usage and implements the importer's gate: while
// usage is above the pause threshold, workers wait before loading the next
// document, and they resume once usage drops below the resume threshold.
package memory

package config

import "time"

// Default runtime limits and guardrails for the leadlens server and CLI.
// Load overlays a YAML file and LEADLENS_* environment variables on top.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenDatasets       = 4
	DefaultReportWorkers         = 4

	// Ingestion and paging bounds
	DefaultMaxRowsPerLoad = 500_000
	DefaultPageSize       = 50
	DefaultMaxPageSize    = 1000
)

const (
	// Timeouts
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second

	// Dataset handle cache
	DefaultDatasetIdleTTL       = 15 * time.Minute
	DefaultDatasetCleanupPeriod = time.Minute

	// Watch mode debounce
	DefaultWatchDebounce = 500 * time.Millisecond
)

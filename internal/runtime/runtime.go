package runtime

import (
	"context"
	"time"

	"github.com/vinodismyname/leadlens/config"
	"golang.org/x/sync/semaphore"
)

// Limits captures the concurrency and dataset guardrails configured for the server.
type Limits struct {
	// Concurrency caps
	MaxConcurrentRequests int `json:"max_concurrent_requests"`
	MaxOpenDatasets       int `json:"max_open_datasets"`
	ReportWorkers         int `json:"report_workers"`

	// Row and page bounds
	MaxRowsPerLoad int `json:"max_rows_per_load"`
	PageSize       int `json:"page_size"`
	MaxPageSize    int `json:"max_page_size"`

	// Timeouts
	OperationTimeout      time.Duration `json:"operation_timeout"`
	AcquireRequestTimeout time.Duration `json:"acquire_request_timeout"`
}

// NewLimits initializes Limits with defaults for everything but the two
// concurrency caps; non-positive caps fall back to defaults as well.
func NewLimits(maxConcurrentRequests, maxOpenDatasets int) Limits {
	cfg := config.Defaults()
	if maxConcurrentRequests > 0 {
		cfg.MaxConcurrentRequests = maxConcurrentRequests
	}
	if maxOpenDatasets > 0 {
		cfg.MaxOpenDatasets = maxOpenDatasets
	}
	return LimitsFromConfig(cfg)
}

// LimitsFromConfig projects the runtime guardrails out of a resolved Config.
func LimitsFromConfig(cfg config.Config) Limits {
	return Limits{
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
		MaxOpenDatasets:       cfg.MaxOpenDatasets,
		ReportWorkers:         cfg.ReportWorkers,
		MaxRowsPerLoad:        cfg.MaxRowsPerLoad,
		PageSize:              cfg.PageSize,
		MaxPageSize:           cfg.MaxPageSize,
		OperationTimeout:      cfg.OperationTimeout,
		AcquireRequestTimeout: cfg.AcquireRequestTimeout,
	}
}

// ClampPageSize bounds a requested page size to (0, MaxPageSize].
func (l Limits) ClampPageSize(n int) int {
	if n <= 0 {
		n = l.PageSize
	}
	if l.MaxPageSize > 0 && n > l.MaxPageSize {
		n = l.MaxPageSize
	}
	return n
}

// Controller coordinates runtime semaphores for request and dataset guardrails.
type Controller struct {
	limits           Limits
	requestSemaphore *semaphore.Weighted
	datasetSemaphore *semaphore.Weighted
}

// NewController constructs a Controller backed by weighted semaphores.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:           limits,
		requestSemaphore: semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
		datasetSemaphore: semaphore.NewWeighted(int64(limits.MaxOpenDatasets)),
	}
}

// AcquireRequest reserves capacity for an incoming request.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired request capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// AcquireDataset reserves an open dataset slot, waiting until ctx is done.
func (c *Controller) AcquireDataset(ctx context.Context) error {
	return c.datasetSemaphore.Acquire(ctx, 1)
}

// TryAcquireDataset reserves a slot only if one is free right now.
func (c *Controller) TryAcquireDataset() bool {
	return c.datasetSemaphore.TryAcquire(1)
}

// ReleaseDataset frees an open dataset slot.
func (c *Controller) ReleaseDataset() {
	c.datasetSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails for telemetry and discovery.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}

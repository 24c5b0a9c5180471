package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
type Config struct {
	MaxConcurrentRequests int           `yaml:"max_concurrent_requests"`
	MaxOpenDatasets       int           `yaml:"max_open_datasets"`
	ReportWorkers         int           `yaml:"report_workers"`
	MaxRowsPerLoad        int           `yaml:"max_rows_per_load"`
	PageSize              int           `yaml:"page_size"`
	MaxPageSize           int           `yaml:"max_page_size"`
	OperationTimeout      time.Duration `yaml:"operation_timeout"`
	AcquireRequestTimeout time.Duration `yaml:"acquire_request_timeout"`
	DatasetIdleTTL        time.Duration `yaml:"dataset_idle_ttl"`
	DatasetCleanupPeriod  time.Duration `yaml:"dataset_cleanup_period"`
	WatchDebounce         time.Duration `yaml:"watch_debounce"`
	LLMModel              string        `yaml:"llm_model"`
}

// Defaults returns the compiled-in configuration.
func Defaults() Config {
	return Config{
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		MaxOpenDatasets:       DefaultMaxOpenDatasets,
		ReportWorkers:         DefaultReportWorkers,
		MaxRowsPerLoad:        DefaultMaxRowsPerLoad,
		PageSize:              DefaultPageSize,
		MaxPageSize:           DefaultMaxPageSize,
		OperationTimeout:      DefaultOperationTimeout,
		AcquireRequestTimeout: DefaultAcquireRequestTimeout,
		DatasetIdleTTL:        DefaultDatasetIdleTTL,
		DatasetCleanupPeriod:  DefaultDatasetCleanupPeriod,
		WatchDebounce:         DefaultWatchDebounce,
	}
}

// Load resolves configuration from defaults, an optional YAML file and
// LEADLENS_* environment variables, in increasing precedence. An empty path
// falls back to LEADLENS_CONFIG; a missing file at that path is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		path = os.Getenv("LEADLENS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.normalize()
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	ints := map[string]*int{
		"LEADLENS_MAX_CONCURRENT_REQUESTS": &cfg.MaxConcurrentRequests,
		"LEADLENS_MAX_OPEN_DATASETS":       &cfg.MaxOpenDatasets,
		"LEADLENS_REPORT_WORKERS":          &cfg.ReportWorkers,
		"LEADLENS_MAX_ROWS_PER_LOAD":       &cfg.MaxRowsPerLoad,
		"LEADLENS_PAGE_SIZE":               &cfg.PageSize,
	}
	for key, dst := range ints {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s=%q: %w", key, v, err)
		}
		*dst = n
	}
	durs := map[string]*time.Duration{
		"LEADLENS_OPERATION_TIMEOUT": &cfg.OperationTimeout,
		"LEADLENS_DATASET_IDLE_TTL":  &cfg.DatasetIdleTTL,
	}
	for key, dst := range durs {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s=%q: %w", key, v, err)
		}
		*dst = d
	}
	if v := strings.TrimSpace(os.Getenv("LEADLENS_LLM_MODEL")); v != "" {
		cfg.LLMModel = v
	}
	return nil
}

// normalize replaces non-positive values with defaults.
func (c *Config) normalize() {
	d := Defaults()
	if c.MaxConcurrentRequests <= 0 {
		c.MaxConcurrentRequests = d.MaxConcurrentRequests
	}
	if c.MaxOpenDatasets <= 0 {
		c.MaxOpenDatasets = d.MaxOpenDatasets
	}
	if c.ReportWorkers <= 0 {
		c.ReportWorkers = d.ReportWorkers
	}
	if c.MaxRowsPerLoad <= 0 {
		c.MaxRowsPerLoad = d.MaxRowsPerLoad
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = d.MaxPageSize
	}
	if c.PageSize <= 0 || c.PageSize > c.MaxPageSize {
		c.PageSize = min(d.PageSize, c.MaxPageSize)
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = d.OperationTimeout
	}
	if c.AcquireRequestTimeout <= 0 {
		c.AcquireRequestTimeout = d.AcquireRequestTimeout
	}
	if c.DatasetIdleTTL <= 0 {
		c.DatasetIdleTTL = d.DatasetIdleTTL
	}
	if c.DatasetCleanupPeriod <= 0 {
		c.DatasetCleanupPeriod = d.DatasetCleanupPeriod
	}
	if c.WatchDebounce <= 0 {
		c.WatchDebounce = d.WatchDebounce
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/vinodismyname/leadlens/config"
	"github.com/vinodismyname/leadlens/internal/advisor"
	"github.com/vinodismyname/leadlens/internal/datasets"
	"github.com/vinodismyname/leadlens/internal/ingest"
	"github.com/vinodismyname/leadlens/internal/registry"
	"github.com/vinodismyname/leadlens/internal/runtime"
	"github.com/vinodismyname/leadlens/internal/security"
	"github.com/vinodismyname/leadlens/internal/telemetry"
	"github.com/vinodismyname/leadlens/pkg/version"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		useStdio        bool
		configPath      string
		shutdownTimeout time.Duration
	)

	flag.BoolVar(&useStdio, "stdio", false, "Run server over stdio transport")
	flag.StringVar(&configPath, "config", "", "YAML config file (defaults to $LEADLENS_CONFIG)")
	flag.DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")
	flag.Parse()

	logger := zlog.With().Str("service", "leadlens-server").Logger()
	ctx := logger.WithContext(context.Background())

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("config: failed to load")
		os.Exit(1)
	}

	secMgr, err := security.NewManagerFromEnv()
	if err != nil {
		logger.Error().Err(err).Msg("security: failed to initialize manager from env")
		fmt.Fprintln(os.Stderr, "invalid security configuration; set LEADLENS_ALLOWED_DIRS")
		os.Exit(1)
	}
	if err := secMgr.ValidateConfig(); err != nil {
		logger.Error().Err(err).Msg("security: invalid allow-list configuration")
		fmt.Fprintln(os.Stderr, "no allowed directories configured; set LEADLENS_ALLOWED_DIRS")
		os.Exit(1)
	}
	logger.Info().Strs("allowed_dirs", secMgr.AllowedDirectories()).Msg("security allow-list configured")

	limits := runtime.LimitsFromConfig(cfg)
	runtimeController := runtime.NewController(limits)
	runtimeMW := runtime.NewMiddleware(runtimeController)

	dsMgr := datasets.NewManager(cfg.DatasetIdleTTL, cfg.DatasetCleanupPeriod, runtimeController, time.Now)
	dsMgr.SetPathValidator(secMgr)
	dsMgr.SetLoadOptions(ingest.Options{MaxRows: limits.MaxRowsPerLoad})
	dsMgr.Start()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := dsMgr.Close(sctx); err != nil {
			logger.Warn().Err(err).Msg("dataset manager shutdown incomplete")
		}
	}()

	toolRegistry := registry.New()
	if model := buildModel(cfg, logger); model != nil {
		toolRegistry.WithModel(model)
	}

	exportFilter := registry.NewExportToolFilterFromEnv()

	srv := server.NewMCPServer(
		"Lead Funnel Analysis Server",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(telemetry.NewHooks(logger)),
		server.WithToolHandlerMiddleware(runtimeMW.ToolMiddleware),
		server.WithToolFilter(func(ctx context.Context, tools []mcp.Tool) []mcp.Tool { return exportFilter.FilterTools(ctx, tools) }),
	)

	registry.RegisterTools(srv, toolRegistry, &registry.Service{
		Limits:   runtimeController.LimitsSnapshot(),
		Datasets: dsMgr,
		Writes:   secMgr,
		Advisor:  advisor.New(toolRegistry.Model()),
	})

	evt := logger.Info().
		Ctx(ctx).
		Str("version", version.Version()).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("max_open_datasets", limits.MaxOpenDatasets).
		Int("max_rows_per_load", limits.MaxRowsPerLoad).
		Bool("exports_enabled", exportFilter.Enabled()).
		Bool("stdio", useStdio)
	if cfg.LLMModel != "" {
		evt = evt.Str("llm_model", cfg.LLMModel).Int("model_context_size", toolRegistry.ModelContextSize(cfg.LLMModel))
	}
	evt.Msg("server bootstrap configured")

	if useStdio {
		if err := server.ServeStdio(srv); err != nil {
			// Use stderr for transport errors so clients don't misinterpret output
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintln(os.Stderr, "no transport selected; use --stdio to run over stdio")
	os.Exit(2)
}

// buildModel returns an OpenAI-backed model when a model name is configured
// and OPENAI_API_KEY is set; otherwise recommendations use the playbook.
func buildModel(cfg config.Config, logger zerolog.Logger) llms.Model {
	if cfg.LLMModel == "" || os.Getenv("OPENAI_API_KEY") == "" {
		return nil
	}
	m, err := openai.New(openai.WithModel(cfg.LLMModel))
	if err != nil {
		logger.Warn().Err(err).Str("llm_model", cfg.LLMModel).Msg("llm unavailable; using playbook recommendations")
		return nil
	}
	return m
}

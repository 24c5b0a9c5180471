package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/vinodismyname/leadlens/config"
	"github.com/vinodismyname/leadlens/internal/advisor"
	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/vinodismyname/leadlens/internal/datasets"
	"github.com/vinodismyname/leadlens/internal/export"
	"github.com/vinodismyname/leadlens/internal/ingest"
	"github.com/vinodismyname/leadlens/internal/watch"
	"github.com/vinodismyname/leadlens/pkg/validation"
	"github.com/vinodismyname/leadlens/pkg/version"
)

type options struct {
	from, to string
	reason   string
	report   string
	out      string
	format   string
	workers  int
	maxRows  int
}

func main() {
	var (
		opts       options
		watchFiles bool
		verbose    bool
		configPath string
		showVer    bool
	)
	flag.StringVar(&opts.from, "from", "", "First day to include (YYYY-MM-DD)")
	flag.StringVar(&opts.to, "to", "", "Last day to include (YYYY-MM-DD)")
	flag.StringVar(&opts.reason, "reason", analysis.DefaultDeepDiveReason, "Lost reason for the deep dive report")
	flag.StringVar(&opts.report, "report", "all", "Report to compute: all or one of "+strings.Join(analysis.ReportNames(), ", "))
	flag.StringVar(&opts.out, "out", "", "Output file, or directory for one file per report (default: print to stdout)")
	flag.StringVar(&opts.format, "format", "", "Output format when -out is a directory: csv, xlsx or png")
	flag.BoolVar(&watchFiles, "watch", false, "Recompute whenever an input file changes")
	flag.BoolVar(&verbose, "v", false, "Debug logging")
	flag.StringVar(&configPath, "config", "", "YAML config file (defaults to $LEADLENS_CONFIG)")
	flag.BoolVar(&showVer, "version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: leadreport [flags] file.csv|file.xlsx ...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVer {
		fmt.Println(version.Version())
		return
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Str("service", "leadreport").Logger()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	opts.workers = cfg.ReportWorkers
	opts.maxRows = cfg.MaxRowsPerLoad

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	if err := run(ctx, opts, paths, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("report failed")
		if !watchFiles {
			os.Exit(1)
		}
	}
	if !watchFiles {
		return
	}

	w, err := watch.New(paths, cfg.WatchDebounce)
	if err != nil {
		logger.Fatal().Err(err).Msg("watch")
	}
	defer w.Close()
	logger.Info().Strs("files", paths).Msg("watching for changes")
	err = w.Run(ctx, func(ctx context.Context) error {
		return run(ctx, opts, paths, os.Stdout)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("watch stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, paths []string, stdout io.Writer) error {
	log := zerolog.Ctx(ctx)
	if opts.report != "all" && !analysis.IsReport(opts.report) {
		return fmt.Errorf("%w: %q", analysis.ErrUnknownReport, opts.report)
	}
	from, to, err := validation.ParseWindow(opts.from, opts.to)
	if err != nil {
		return err
	}

	res, err := ingest.Load(ctx, ingest.Options{MaxRows: opts.maxRows}, paths...)
	if err != nil {
		return err
	}
	records := datasets.Filter(res.Records, from, to)
	log.Info().Int("files", res.Files).Int("rows", res.RowsRead).Int("duplicates", res.DuplicatesDropped).Int("records", len(records)).Msg("campaign loaded")

	params := analysis.Params{Reason: opts.reason}
	var tables []analysis.Table
	if opts.report == "all" {
		tables, err = analysis.BuildAll(ctx, records, params, opts.workers)
	} else {
		var t analysis.Table
		t, err = analysis.Build(opts.report, records, params)
		tables = []analysis.Table{t}
	}
	if err != nil {
		return err
	}

	if opts.out != "" {
		return writeOut(ctx, opts, tables)
	}

	k := analysis.Overview(records)
	fmt.Fprintf(stdout, "Total dials: %d  Unique leads: %d  Conversions: %d  Contact rate: %.2f%%\n\n",
		k.TotalDials, k.UniqueLeads, k.Conversions, k.ContactRatePct)
	for _, t := range tables {
		if err := export.WriteText(stdout, t); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
	}
	if opts.report == "all" {
		adv, err := advisor.New(nil).Recommend(ctx, records)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, "== recommendations ==")
		for _, r := range adv.Recommendations {
			fmt.Fprintf(stdout, "- %s\n", r)
		}
	}
	return nil
}

// writeOut writes to a single file when -out has a known extension, else
// one file per report into the -out directory.
func writeOut(ctx context.Context, opts options, tables []analysis.Table) error {
	log := zerolog.Ctx(ctx)
	ext := strings.ToLower(filepath.Ext(opts.out))
	if ext != "" {
		if len(tables) > 1 {
			if ext != ".xlsx" {
				return fmt.Errorf("multiple reports need an .xlsx file or a directory, got %s", opts.out)
			}
			if err := export.WriteWorkbook(opts.out, tables); err != nil {
				return err
			}
		} else if err := export.Write(opts.out, tables[0]); err != nil {
			return err
		}
		log.Info().Str("path", opts.out).Int("reports", len(tables)).Msg("written")
		return nil
	}

	format := strings.TrimPrefix(strings.ToLower(opts.format), ".")
	if format == "" {
		format = "csv"
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return err
	}
	for _, t := range tables {
		p := filepath.Join(opts.out, t.Name+"."+format)
		if err := export.Write(p, t); err != nil {
			return err
		}
		log.Debug().Str("path", p).Msg("written")
	}
	log.Info().Str("dir", opts.out).Int("reports", len(tables)).Msg("written")
	return nil
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/vinodismyname/leadlens/internal/export"
)

const sampleCSV = `date,mobile_number,name,outcome,notes,duration,bot
2024-03-04 10:15:00,111,Priya,busy,,0,alpha
2024-03-04 11:00:00,222,Rakesh,converted,,120,beta
2024-03-05 12:00:00,333,Anita,lost,price is high,40,alpha
`

func fixture(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "calls.csv")
	require.NoError(t, os.WriteFile(p, []byte(sampleCSV), 0o600))
	return p
}

func TestRun_PrintsAllReports(t *testing.T) {
	var out bytes.Buffer
	opts := options{report: "all", reason: analysis.DefaultDeepDiveReason, workers: 2}
	require.NoError(t, run(context.Background(), opts, []string{fixture(t)}, &out))

	text := out.String()
	require.Contains(t, text, "Total dials: 3")
	for _, name := range analysis.ReportNames() {
		require.Contains(t, text, "== "+name+" ==")
	}
	require.Contains(t, text, "== recommendations ==")
}

func TestRun_WindowAndSingleReport(t *testing.T) {
	var out bytes.Buffer
	opts := options{report: analysis.ReportCallFunnel, from: "2024-03-05"}
	require.NoError(t, run(context.Background(), opts, []string{fixture(t)}, &out))
	require.Contains(t, out.String(), "Total dials: 1")
	require.NotContains(t, out.String(), "== gender ==")
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), options{report: "nope"}, []string{fixture(t)}, &out)
	require.ErrorIs(t, err, analysis.ErrUnknownReport)

	err = run(context.Background(), options{report: "all", from: "2024-03-06", to: "2024-03-01"}, []string{fixture(t)}, &out)
	require.Error(t, err)
}

func TestRun_WritesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	opts := options{report: "all", out: dir, format: "csv"}
	require.NoError(t, run(context.Background(), opts, []string{fixture(t)}, &bytes.Buffer{}))
	for _, name := range analysis.ReportNames() {
		_, err := os.Stat(filepath.Join(dir, name+".csv"))
		require.NoError(t, err, name)
	}
}

func TestRun_WritesSingleFile(t *testing.T) {
	dir := t.TempDir()
	opts := options{report: "all", out: filepath.Join(dir, "all.csv")}
	require.Error(t, run(context.Background(), opts, []string{fixture(t)}, &bytes.Buffer{}))

	opts.report = analysis.ReportGender
	opts.out = filepath.Join(dir, "gender.png")
	require.NoError(t, run(context.Background(), opts, []string{fixture(t)}, &bytes.Buffer{}))

	opts.out = filepath.Join(dir, "gender.pdf")
	require.ErrorIs(t, run(context.Background(), opts, []string{fixture(t)}, &bytes.Buffer{}), export.ErrUnsupportedFormat)
}

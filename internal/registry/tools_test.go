package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/leadlens/internal/advisor"
	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/vinodismyname/leadlens/internal/datasets"
	"github.com/vinodismyname/leadlens/internal/runtime"
	"github.com/vinodismyname/leadlens/internal/security"
	"github.com/xuri/excelize/v2"
)

const campaignCSV = `Date,Mobile Number,Name,Outcome,Notes,Duration,Bot
2024-03-04 10:15:00,111,Priya,Busy,,0,alpha
2024-03-05 10:40:00,111,Priya,No Answer,,0,alpha
2024-03-04 11:00:00,222,Rakesh,Follow-up,,30,beta
2024-03-06 11:30:00,222,Rakesh,Converted,,120,beta
2024-03-04 10:05:00,333,Anita,Lost,price is high,40,alpha
2024-03-04 12:00:00,333,Anita,Lost,wrong number,20,beta
2024-03-05 10:00:00,555,Kiran,agent_assigned,,60,beta
2024-03-05 10:00:00,555,Kiran,agent_assigned,,60,beta
`

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calls.csv"), []byte(campaignCSV), 0o600))

	sec, err := security.NewManager([]string{dir}, nil, nil)
	require.NoError(t, err)
	limits := runtime.NewLimits(4, 2)
	mgr := datasets.NewManager(time.Minute, time.Minute, runtime.NewController(limits), time.Now)
	mgr.SetPathValidator(sec)
	return &Service{Limits: limits, Datasets: mgr, Writes: sec, Advisor: advisor.New(nil)}, dir
}

func load(t *testing.T, svc *Service, dir string) string {
	t.Helper()
	res, err := svc.LoadDataset(context.Background(), mcp.CallToolRequest{}, LoadDatasetInput{Paths: []string{filepath.Join(dir, "calls.csv")}})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	out := res.StructuredContent.(LoadDatasetOutput)
	require.Equal(t, 7, out.Stats.Records)
	require.Equal(t, 1, out.Stats.DuplicatesDropped)
	require.Equal(t, 4, out.UniqueLeads)
	return out.DatasetID
}

func TestLoadAndOverview(t *testing.T) {
	svc, dir := newService(t)
	id := load(t, svc, dir)

	res, err := svc.Overview(context.Background(), mcp.CallToolRequest{}, OverviewInput{DatasetID: id})
	require.NoError(t, err)
	k := res.StructuredContent.(OverviewOutput).KPIs
	require.Equal(t, 7, k.TotalDials)
	require.Equal(t, 1, k.Conversions)

	res, err = svc.Overview(context.Background(), mcp.CallToolRequest{}, OverviewInput{DatasetID: id, From: "2024-03-05", To: "2024-03-05"})
	require.NoError(t, err)
	require.Equal(t, 2, res.StructuredContent.(OverviewOutput).KPIs.TotalDials)
}

func TestLoadErrors(t *testing.T) {
	svc, dir := newService(t)
	ctx := context.Background()

	res, err := svc.LoadDataset(ctx, mcp.CallToolRequest{}, LoadDatasetInput{})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "VALIDATION:"))

	res, err = svc.LoadDataset(ctx, mcp.CallToolRequest{}, LoadDatasetInput{Paths: []string{filepath.Join(dir, "calls.txt")}})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "VALIDATION:"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "nomobile.csv"), []byte("date,outcome\n2024-03-04,busy\n"), 0o600))
	res, err = svc.LoadDataset(ctx, mcp.CallToolRequest{}, LoadDatasetInput{Paths: []string{filepath.Join(dir, "nomobile.csv")}})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "MISSING_COLUMN:"), resultText(t, res))

	outside := filepath.Join(t.TempDir(), "calls.csv")
	require.NoError(t, os.WriteFile(outside, []byte(campaignCSV), 0o600))
	res, err = svc.LoadDataset(ctx, mcp.CallToolRequest{}, LoadDatasetInput{Paths: []string{outside}})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "PERMISSION_DENIED:"), resultText(t, res))
}

func TestRunReport_Pagination(t *testing.T) {
	svc, dir := newService(t)
	id := load(t, svc, dir)
	ctx := context.Background()

	res, err := svc.RunReport(ctx, mcp.CallToolRequest{}, RunReportInput{DatasetID: id, Report: analysis.ReportInitialFunnel, PageSize: 2})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	out := res.StructuredContent.(RunReportOutput)
	require.Equal(t, []any{"Unique Leads", 4, "100%"}, out.Rows[0])
	require.Len(t, out.Rows, 2)
	require.True(t, out.Meta.Truncated)
	require.NotEmpty(t, out.Meta.NextCursor)

	var rows int
	rows += len(out.Rows)
	cursor := out.Meta.NextCursor
	for cursor != "" {
		res, err = svc.RunReport(ctx, mcp.CallToolRequest{}, RunReportInput{DatasetID: id, Cursor: cursor})
		require.NoError(t, err)
		require.False(t, res.IsError, resultText(t, res))
		page := res.StructuredContent.(RunReportOutput)
		require.Equal(t, analysis.ReportInitialFunnel, page.Report)
		rows += len(page.Rows)
		cursor = page.Meta.NextCursor
	}
	require.Equal(t, out.Meta.Total, rows)
}

func TestRunReport_Errors(t *testing.T) {
	svc, dir := newService(t)
	id := load(t, svc, dir)
	ctx := context.Background()

	res, err := svc.RunReport(ctx, mcp.CallToolRequest{}, RunReportInput{DatasetID: id, Report: "nope"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "UNKNOWN_REPORT:"))

	res, err = svc.RunReport(ctx, mcp.CallToolRequest{}, RunReportInput{DatasetID: id, Report: analysis.ReportDeepDive, Reason: "Bad Weather"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "UNKNOWN_REASON:"))

	res, err = svc.RunReport(ctx, mcp.CallToolRequest{}, RunReportInput{DatasetID: "missing", Report: analysis.ReportGender})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "INVALID_HANDLE:"))

	res, err = svc.RunReport(ctx, mcp.CallToolRequest{}, RunReportInput{DatasetID: id})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "VALIDATION:"))

	res, err = svc.RunReport(ctx, mcp.CallToolRequest{}, RunReportInput{DatasetID: id, Report: analysis.ReportGender, From: "2024-03-06", To: "2024-03-04"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "VALIDATION:"))
}

func TestRunReport_DeepDiveDefaultReason(t *testing.T) {
	svc, dir := newService(t)
	id := load(t, svc, dir)

	res, err := svc.RunReport(context.Background(), mcp.CallToolRequest{}, RunReportInput{DatasetID: id, Report: analysis.ReportDeepDive})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	require.Equal(t, analysis.DefaultDeepDiveReason, res.StructuredContent.(RunReportOutput).Reason)
}

func TestRecommendations_Playbook(t *testing.T) {
	svc, dir := newService(t)
	id := load(t, svc, dir)

	res, err := svc.Recommendations(context.Background(), mcp.CallToolRequest{}, RecommendationsInput{DatasetID: id})
	require.NoError(t, err)
	out := res.StructuredContent.(RecommendationsOutput)
	require.Equal(t, advisor.SourcePlaybook, out.Source)
	require.Equal(t, analysis.Recommendations(), out.Recommendations)
}

func TestExportReport(t *testing.T) {
	svc, dir := newService(t)
	id := load(t, svc, dir)
	ctx := context.Background()

	csvPath := filepath.Join(dir, "funnel.csv")
	res, err := svc.ExportReport(ctx, mcp.CallToolRequest{}, ExportReportInput{DatasetID: id, Report: analysis.ReportCallFunnel, Path: csvPath})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "Metric,Count,% of Total\n"))

	xlsxPath := filepath.Join(dir, "all.xlsx")
	res, err = svc.ExportReport(ctx, mcp.CallToolRequest{}, ExportReportInput{DatasetID: id, Report: "all", Path: xlsxPath})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	require.Equal(t, analysis.ReportNames(), f.GetSheetList())
	require.NoError(t, f.Close())

	res, err = svc.ExportReport(ctx, mcp.CallToolRequest{}, ExportReportInput{DatasetID: id, Report: "all", Path: filepath.Join(dir, "all.csv")})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "VALIDATION:"))

	res, err = svc.ExportReport(ctx, mcp.CallToolRequest{}, ExportReportInput{DatasetID: id, Report: analysis.ReportGender, Path: filepath.Join(t.TempDir(), "g.png")})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "PERMISSION_DENIED:"))
}

func TestCloseDataset(t *testing.T) {
	svc, dir := newService(t)
	id := load(t, svc, dir)
	ctx := context.Background()

	res, err := svc.CloseDataset(ctx, mcp.CallToolRequest{}, CloseDatasetInput{DatasetID: id})
	require.NoError(t, err)
	require.True(t, res.StructuredContent.(CloseDatasetOutput).Success)

	res, err = svc.CloseDataset(ctx, mcp.CallToolRequest{}, CloseDatasetInput{DatasetID: id})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(resultText(t, res), "INVALID_HANDLE:"))
}

func TestExportToolFilter(t *testing.T) {
	tools := []mcp.Tool{mcp.NewTool("run_report"), mcp.NewTool("export_report")}

	t.Setenv(EnvEnableExports, "")
	f := NewExportToolFilterFromEnv()
	require.False(t, f.Enabled())
	got := f.FilterTools(context.Background(), tools)
	require.Len(t, got, 1)
	require.Equal(t, "run_report", got[0].Name)

	t.Setenv(EnvEnableExports, "true")
	require.Len(t, NewExportToolFilterFromEnv().FilterTools(context.Background(), tools), 2)
}

func TestRegistryToolsSorted(t *testing.T) {
	reg := New()
	reg.Register(mcp.NewTool("run_report"))
	reg.Register(mcp.NewTool("close_dataset"))
	tools, err := reg.Tools(context.Background())
	require.NoError(t, err)
	require.Equal(t, "close_dataset", tools[0].Name)
	_, ok := reg.Get("run_report")
	require.True(t, ok)
	require.Nil(t, reg.Model())
	require.Positive(t, reg.ModelContextSize("gpt-4o"))
}

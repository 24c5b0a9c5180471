package registry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/leadlens/internal/advisor"
	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/vinodismyname/leadlens/internal/datasets"
	"github.com/vinodismyname/leadlens/internal/export"
	"github.com/vinodismyname/leadlens/internal/runtime"
	"github.com/vinodismyname/leadlens/pkg/mcperr"
	"github.com/vinodismyname/leadlens/pkg/pagination"
	"github.com/vinodismyname/leadlens/pkg/validation"
)

// WritePathValidator checks export destinations.
type WritePathValidator interface {
	ValidateWritePath(path string) (string, error)
}

// Service implements the campaign analysis tools over a dataset manager.
type Service struct {
	Limits   runtime.Limits
	Datasets *datasets.Manager
	Writes   WritePathValidator
	Advisor  *advisor.Advisor
}

// RegisterTools wires every campaign tool into the server and registry.
func RegisterTools(s *server.MCPServer, reg *Registry, svc *Service) {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		s.AddTool(tool, h)
		reg.Register(tool)
	}

	add(mcp.NewTool(
		"load_dataset",
		mcp.WithDescription("Load one or more call-campaign exports (CSV or Excel) as a single cleaned dataset. Headers are normalized, exact duplicate rows dropped and outcomes normalized. Returns a dataset_id for the other tools plus load statistics. Errors include MISSING_COLUMN (no mobile_number), PERMISSION_DENIED, NOT_FOUND, LIMIT_EXCEEDED."),
		mcp.WithInputSchema[LoadDatasetInput](),
		mcp.WithOutputSchema[LoadDatasetOutput](),
	), mcp.NewTypedToolHandler(svc.LoadDataset))

	add(mcp.NewTool(
		"close_dataset",
		mcp.WithDescription("Release a loaded dataset handle"),
		mcp.WithInputSchema[CloseDatasetInput](),
		mcp.WithOutputSchema[CloseDatasetOutput](),
	), mcp.NewTypedToolHandler(svc.CloseDataset))

	add(mcp.NewTool(
		"dataset_overview",
		mcp.WithDescription("Headline KPIs for a dataset (total dials, unique leads, conversions, contact rate), optionally restricted to an inclusive date window."),
		mcp.WithInputSchema[OverviewInput](),
		mcp.WithOutputSchema[OverviewOutput](),
	), mcp.NewTypedToolHandler(svc.Overview))

	add(mcp.NewTool(
		"run_report",
		mcp.WithDescription("Compute one campaign report and return a page of its table. Reports: "+strings.Join(analysis.ReportNames(), ", ")+". deep_dive takes a lost reason ("+strings.Join(analysis.LostReasons(), ", ")+"). Use nextCursor from meta to fetch further pages; the cursor carries the report, window and reason."),
		mcp.WithInputSchema[RunReportInput](),
		mcp.WithOutputSchema[RunReportOutput](),
	), mcp.NewTypedToolHandler(svc.RunReport))

	add(mcp.NewTool(
		"recommendations",
		mcp.WithDescription("Strategic recommendations for the campaign. Uses the configured language model over the key reports when available, otherwise a fixed playbook."),
		mcp.WithInputSchema[RecommendationsInput](),
		mcp.WithOutputSchema[RecommendationsOutput](),
	), mcp.NewTypedToolHandler(svc.Recommendations))

	add(mcp.NewTool(
		"export_report",
		mcp.WithDescription("Write a report to .csv, .xlsx or .png inside the allowed directories. report=all writes every report as sheets of one .xlsx workbook."),
		mcp.WithInputSchema[ExportReportInput](),
		mcp.WithOutputSchema[ExportReportOutput](),
	), mcp.NewTypedToolHandler(svc.ExportReport))
}

// snapshot returns the dataset's records within the window. The returned
// slice is shared and read-only.
func (svc *Service) snapshot(id, from, to string) ([]analysis.CallRecord, error) {
	lo, hi, err := validation.ParseWindow(from, to)
	if err != nil {
		return nil, err
	}
	var recs []analysis.CallRecord
	err = svc.Datasets.WithRead(id, func(d *datasets.Dataset) error {
		recs = datasets.Filter(d.Records, lo, hi)
		return nil
	})
	return recs, err
}

func structured(out any, summary, text string) *mcp.CallToolResult {
	res := mcp.NewToolResultStructured(out, summary)
	res.Content = []mcp.Content{mcp.NewTextContent(text)}
	return res
}

// LoadDataset handles load_dataset.
func (svc *Service) LoadDataset(ctx context.Context, req mcp.CallToolRequest, in LoadDatasetInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	d, err := svc.Datasets.Open(ctx, in.Paths...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return mcperr.New(mcperr.Timeout, ""), nil
		}
		return mcperr.FromError(err, mcperr.LoadFailed), nil
	}
	out := LoadDatasetOutput{
		DatasetID:   d.ID,
		Stats:       d.Stats,
		UniqueLeads: len(analysis.GroupLeads(d.Records)),
	}
	summary := fmt.Sprintf("dataset_id=%s records=%d unique_leads=%d duplicates_dropped=%d", out.DatasetID, out.Stats.Records, out.UniqueLeads, out.Stats.DuplicatesDropped)
	text := summary
	if !out.Stats.MinDate.IsZero() {
		text += fmt.Sprintf("\nspan %s to %s", out.Stats.MinDate.Format(validation.DateLayout), out.Stats.MaxDate.Format(validation.DateLayout))
	}
	return structured(out, summary, text), nil
}

// CloseDataset handles close_dataset.
func (svc *Service) CloseDataset(ctx context.Context, req mcp.CallToolRequest, in CloseDatasetInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	if err := svc.Datasets.CloseHandle(ctx, in.DatasetID); err != nil {
		return mcperr.FromError(err, mcperr.InvalidHandle), nil
	}
	return structured(CloseDatasetOutput{Success: true}, "closed", "closed "+in.DatasetID), nil
}

// Overview handles dataset_overview.
func (svc *Service) Overview(ctx context.Context, req mcp.CallToolRequest, in OverviewInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	recs, err := svc.snapshot(in.DatasetID, in.From, in.To)
	if err != nil {
		return mcperr.FromError(err, mcperr.Validation), nil
	}
	out := OverviewOutput{DatasetID: in.DatasetID, From: in.From, To: in.To, KPIs: analysis.Overview(recs)}
	k := out.KPIs
	summary := fmt.Sprintf("dials=%d unique_leads=%d conversions=%d contact_rate=%.2f%%", k.TotalDials, k.UniqueLeads, k.Conversions, k.ContactRatePct)
	return structured(out, summary, summary), nil
}

// RunReport handles run_report.
func (svc *Service) RunReport(ctx context.Context, req mcp.CallToolRequest, in RunReportInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	report, reason, from, to := in.Report, in.Reason, in.From, in.To
	offset := 0
	pageSize := svc.Limits.ClampPageSize(in.PageSize)
	if in.Cursor != "" {
		c, err := pagination.DecodeCursor(in.Cursor)
		if err != nil {
			return mcperr.New(mcperr.CursorInvalid, err.Error()), nil
		}
		if c.Did != in.DatasetID {
			return mcperr.New(mcperr.CursorInvalid, "cursor belongs to another dataset"), nil
		}
		if !analysis.IsReport(c.Rep) {
			return mcperr.New(mcperr.CursorInvalid, "cursor names an unknown report"), nil
		}
		report, reason, from, to, offset = c.Rep, c.Rs, c.Fr, c.To, c.Off
		pageSize = svc.Limits.ClampPageSize(c.Ps)
	}
	if report == "" {
		return mcperr.New(mcperr.Validation, "report is required"), nil
	}
	if report == analysis.ReportDeepDive && reason == "" {
		reason = analysis.DefaultDeepDiveReason
	}
	if report != analysis.ReportDeepDive {
		reason = ""
	}

	recs, err := svc.snapshot(in.DatasetID, from, to)
	if err != nil {
		return mcperr.FromError(err, mcperr.Validation), nil
	}
	table, err := analysis.Build(report, recs, analysis.Params{Reason: reason})
	if err != nil {
		return mcperr.FromError(err, mcperr.ReportFailed), nil
	}
	if err := ctx.Err(); err != nil {
		return mcperr.New(mcperr.Timeout, ""), nil
	}

	page := table.Slice(offset, pageSize)
	meta := PageMeta{Total: table.Len(), Offset: offset, Returned: page.Len()}
	if next := pagination.NextOffset(offset, page.Len()); next < table.Len() {
		meta.Truncated = true
		tok, err := pagination.EncodeCursor(pagination.Cursor{
			V: 1, Did: in.DatasetID, Rep: report, Rs: reason, Fr: from, To: to,
			Off: next, Ps: pageSize, Iat: time.Now().Unix(),
		})
		if err != nil {
			return mcperr.New(mcperr.ReportFailed, err.Error()), nil
		}
		meta.NextCursor = tok
	}
	out := RunReportOutput{
		DatasetID: in.DatasetID,
		Report:    report,
		Reason:    reason,
		Columns:   page.Columns,
		Rows:      page.Rows,
		Notes:     page.Notes,
		Meta:      meta,
	}

	var b strings.Builder
	if err := export.WriteText(&b, page); err != nil {
		return mcperr.New(mcperr.ReportFailed, err.Error()), nil
	}
	summary := fmt.Sprintf("report=%s total=%d returned=%d truncated=%v", report, meta.Total, meta.Returned, meta.Truncated)
	zerolog.Ctx(ctx).Debug().Str("report", report).Int("records", len(recs)).Int("rows", meta.Total).Msg("report computed")
	return structured(out, summary, summary+"\n"+b.String()), nil
}

// Recommendations handles recommendations.
func (svc *Service) Recommendations(ctx context.Context, req mcp.CallToolRequest, in RecommendationsInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	recs, err := svc.snapshot(in.DatasetID, in.From, in.To)
	if err != nil {
		return mcperr.FromError(err, mcperr.Validation), nil
	}
	adv, err := svc.Advisor.Recommend(ctx, recs)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return mcperr.New(mcperr.Timeout, ""), nil
		}
		return mcperr.FromError(err, mcperr.AdviceFailed), nil
	}
	out := RecommendationsOutput{DatasetID: in.DatasetID, Recommendations: adv.Recommendations, Source: adv.Source}
	summary := fmt.Sprintf("recommendations=%d source=%s", len(out.Recommendations), out.Source)
	lines := []string{summary}
	for _, r := range out.Recommendations {
		lines = append(lines, "- "+r)
	}
	return structured(out, summary, strings.Join(lines, "\n")), nil
}

// ExportReport handles export_report.
func (svc *Service) ExportReport(ctx context.Context, req mcp.CallToolRequest, in ExportReportInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcperr.FromText(msg), nil
	}
	all := strings.TrimSpace(in.Report) == "all"
	if all && strings.ToLower(filepath.Ext(in.Path)) != ".xlsx" {
		return mcperr.New(mcperr.Validation, "report=all requires an .xlsx path"), nil
	}
	if svc.Writes == nil {
		return mcperr.New(mcperr.PermissionDenied, "exports are not configured"), nil
	}
	path, err := svc.Writes.ValidateWritePath(in.Path)
	if err != nil {
		return mcperr.FromError(err, mcperr.PermissionDenied), nil
	}
	recs, err := svc.snapshot(in.DatasetID, in.From, in.To)
	if err != nil {
		return mcperr.FromError(err, mcperr.Validation), nil
	}
	params := analysis.Params{Reason: in.Reason}

	var names []string
	if all {
		tables, err := analysis.BuildAll(ctx, recs, params, svc.Limits.ReportWorkers)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return mcperr.New(mcperr.Timeout, ""), nil
			}
			return mcperr.FromError(err, mcperr.ReportFailed), nil
		}
		if err := export.WriteWorkbook(path, tables); err != nil {
			return mcperr.FromError(err, mcperr.ExportFailed), nil
		}
		names = analysis.ReportNames()
	} else {
		table, err := analysis.Build(in.Report, recs, params)
		if err != nil {
			return mcperr.FromError(err, mcperr.ReportFailed), nil
		}
		if err := export.Write(path, table); err != nil {
			return mcperr.FromError(err, mcperr.ExportFailed), nil
		}
		names = []string{in.Report}
	}
	zerolog.Ctx(ctx).Info().Str("path", path).Strs("reports", names).Msg("report exported")
	out := ExportReportOutput{Path: path, Reports: names}
	summary := fmt.Sprintf("wrote %s (%s)", path, strings.Join(names, ", "))
	return structured(out, summary, summary), nil
}

package registry

import (
	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/vinodismyname/leadlens/internal/datasets"
)

// LoadDatasetInput defines parameters for load_dataset.
type LoadDatasetInput struct {
	Paths []string `json:"paths" validate:"required,min=1,max=32,dive,required,datafile_ext" jsonschema_description:"Campaign export files (.csv, .xlsx, .xlsm) inside the allowed directories; loaded as one dataset"`
}

// LoadDatasetOutput documents the loaded dataset.
type LoadDatasetOutput struct {
	DatasetID   string         `json:"dataset_id" jsonschema_description:"Server-assigned dataset handle ID"`
	Stats       datasets.Stats `json:"stats" jsonschema_description:"Rows read, duplicates dropped and date span"`
	UniqueLeads int            `json:"unique_leads" jsonschema_description:"Distinct mobile numbers"`
}

// CloseDatasetInput defines parameters for close_dataset.
type CloseDatasetInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID to close"`
}

// CloseDatasetOutput documents close_dataset.
type CloseDatasetOutput struct {
	Success bool `json:"success" jsonschema_description:"True when the handle was closed"`
}

// OverviewInput defines parameters for dataset_overview.
type OverviewInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	From      string `json:"from,omitempty" validate:"omitempty,ymd" jsonschema_description:"Optional first day (YYYY-MM-DD), inclusive"`
	To        string `json:"to,omitempty" validate:"omitempty,ymd" jsonschema_description:"Optional last day (YYYY-MM-DD), inclusive"`
}

// OverviewOutput documents headline KPIs.
type OverviewOutput struct {
	DatasetID string        `json:"dataset_id"`
	From      string        `json:"from,omitempty"`
	To        string        `json:"to,omitempty"`
	KPIs      analysis.KPIs `json:"kpis"`
}

// RunReportInput defines parameters for run_report. A cursor carries every
// other parameter and takes precedence over them.
type RunReportInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Report    string `json:"report,omitempty" validate:"omitempty,report_name" jsonschema_description:"Report name: call_funnel, initial_funnel, lost_breakdown, deep_dive, time_by_day, time_by_hour, duration, gender, final_funnel"`
	From      string `json:"from,omitempty" validate:"omitempty,ymd" jsonschema_description:"Optional first day (YYYY-MM-DD), inclusive"`
	To        string `json:"to,omitempty" validate:"omitempty,ymd" jsonschema_description:"Optional last day (YYYY-MM-DD), inclusive"`
	Reason    string `json:"reason,omitempty" validate:"omitempty,lost_reason" jsonschema_description:"Lost reason for deep_dive (default Not Interested)"`
	PageSize  int    `json:"page_size,omitempty" validate:"omitempty,min=1" jsonschema_description:"Rows per page (bounded by server max)"`
	Cursor    string `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page"`
}

// PageMeta captures paging metadata.
type PageMeta struct {
	Total      int    `json:"total"`
	Offset     int    `json:"offset"`
	Returned   int    `json:"returned"`
	Truncated  bool   `json:"truncated"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// RunReportOutput is one page of a report table.
type RunReportOutput struct {
	DatasetID string   `json:"dataset_id"`
	Report    string   `json:"report"`
	Reason    string   `json:"reason,omitempty"`
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Notes     []string `json:"notes,omitempty"`
	Meta      PageMeta `json:"meta"`
}

// RecommendationsInput defines parameters for recommendations.
type RecommendationsInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	From      string `json:"from,omitempty" validate:"omitempty,ymd" jsonschema_description:"Optional first day (YYYY-MM-DD), inclusive"`
	To        string `json:"to,omitempty" validate:"omitempty,ymd" jsonschema_description:"Optional last day (YYYY-MM-DD), inclusive"`
}

// RecommendationsOutput documents the advice list.
type RecommendationsOutput struct {
	DatasetID       string   `json:"dataset_id"`
	Recommendations []string `json:"recommendations"`
	Source          string   `json:"source" jsonschema_description:"model or playbook"`
}

// ExportReportInput defines parameters for export_report.
type ExportReportInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Report    string `json:"report" validate:"required,report_or_all" jsonschema_description:"Report name, or all for a multi-sheet .xlsx"`
	Path      string `json:"path" validate:"required,export_ext" jsonschema_description:"Destination file (.csv, .xlsx, .png) inside the allowed directories"`
	From      string `json:"from,omitempty" validate:"omitempty,ymd" jsonschema_description:"Optional first day (YYYY-MM-DD), inclusive"`
	To        string `json:"to,omitempty" validate:"omitempty,ymd" jsonschema_description:"Optional last day (YYYY-MM-DD), inclusive"`
	Reason    string `json:"reason,omitempty" validate:"omitempty,lost_reason" jsonschema_description:"Lost reason for deep_dive (default Not Interested)"`
}

// ExportReportOutput documents export_report.
type ExportReportOutput struct {
	Path    string   `json:"path"`
	Reports []string `json:"reports"`
}

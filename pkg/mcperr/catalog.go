package mcperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/vinodismyname/leadlens/internal/datasets"
	"github.com/vinodismyname/leadlens/internal/export"
	"github.com/vinodismyname/leadlens/internal/ingest"
	"github.com/vinodismyname/leadlens/internal/security"
)

// Code defines a canonical MCP error code used across tools.
type Code string

const (
	// Validation & Input
	Validation    Code = "VALIDATION"
	InvalidHandle Code = "INVALID_HANDLE"
	UnknownReport Code = "UNKNOWN_REPORT"
	UnknownReason Code = "UNKNOWN_REASON"
	MissingColumn Code = "MISSING_COLUMN"
	CursorInvalid Code = "CURSOR_INVALID"

	// Resource & Limits
	BusyResource  Code = "BUSY_RESOURCE"
	Timeout       Code = "TIMEOUT"
	LimitExceeded Code = "LIMIT_EXCEEDED"

	// IO & Formats
	LoadFailed        Code = "LOAD_FAILED"
	ExportFailed      Code = "EXPORT_FAILED"
	UnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	PermissionDenied  Code = "PERMISSION_DENIED"
	NotFound          Code = "NOT_FOUND"

	// Analysis
	ReportFailed Code = "REPORT_FAILED"
	AdviceFailed Code = "ADVICE_FAILED"
)

// Entry documents a code's standard message, retry semantics, and next steps.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

// catalog maps canonical codes to guidance. Messages can be overridden per error.
var catalog = map[Code]Entry{
	Validation:    {Code: Validation, Message: "invalid inputs", Retryable: true, NextSteps: []string{"Correct the inputs per schema and retry"}},
	InvalidHandle: {Code: InvalidHandle, Message: "dataset handle not found or expired", Retryable: true, NextSteps: []string{"Reload the files with load_dataset and retry"}},
	UnknownReport: {Code: UnknownReport, Message: "unknown report name", Retryable: true, NextSteps: []string{"Use one of: " + strings.Join(analysis.ReportNames(), ", ")}},
	UnknownReason: {Code: UnknownReason, Message: "unknown lost reason", Retryable: true, NextSteps: []string{"Use one of: " + strings.Join(analysis.LostReasons(), ", ")}},
	MissingColumn: {Code: MissingColumn, Message: "required column missing", Retryable: false, NextSteps: []string{"Ensure the export has a mobile_number column"}},
	CursorInvalid: {Code: CursorInvalid, Message: "cursor is invalid for current context", Retryable: true, NextSteps: []string{"Restart pagination from the first page"}},

	BusyResource:  {Code: BusyResource, Message: "concurrent request limit reached", Retryable: true, NextSteps: []string{"Retry after a short delay"}},
	Timeout:       {Code: Timeout, Message: "operation exceeded configured time limit", Retryable: true, NextSteps: []string{"Narrow the date range or load fewer files"}},
	LimitExceeded: {Code: LimitExceeded, Message: "operation exceeded configured limits", Retryable: true, NextSteps: []string{"Close unused datasets or load fewer rows"}},

	LoadFailed:        {Code: LoadFailed, Message: "failed to load campaign files", Retryable: true, NextSteps: []string{"Verify the files are readable CSV or Excel exports"}},
	ExportFailed:      {Code: ExportFailed, Message: "failed to export report", Retryable: false, NextSteps: []string{"Check the output path and format (.csv, .xlsx, .png)"}},
	UnsupportedFormat: {Code: UnsupportedFormat, Message: "unsupported file format", Retryable: false, NextSteps: []string{"Convert to .csv or .xlsx and retry"}},
	PermissionDenied:  {Code: PermissionDenied, Message: "path is outside the allowed directories", Retryable: false, NextSteps: []string{"Choose a path under LEADLENS_ALLOWED_DIRS"}},
	NotFound:          {Code: NotFound, Message: "file not found", Retryable: true, NextSteps: []string{"Verify the path"}},

	ReportFailed: {Code: ReportFailed, Message: "report computation failed", Retryable: true, NextSteps: []string{"Verify the dataset and parameters"}},
	AdviceFailed: {Code: AdviceFailed, Message: "recommendation generation failed", Retryable: true, NextSteps: []string{"Retry; the fixed playbook is used when no model is configured"}},
}

// Lookup returns the catalog entry for code.
func Lookup(code Code) (Entry, bool) {
	e, ok := catalog[code]
	return e, ok
}

// normalize builds "CODE: message | nextSteps: ..." for clients that only
// surface a message string.
func normalize(code Code, msg string) string {
	base := strings.TrimSpace(msg)
	e, ok := catalog[code]
	if !ok {
		if base == "" {
			return string(code)
		}
		return fmt.Sprintf("%s: %s", string(code), base)
	}
	if base == "" {
		base = e.Message
	}
	guidance := ""
	if len(e.NextSteps) > 0 {
		guidance = " | nextSteps: " + strings.Join(e.NextSteps, "; ")
	}
	return fmt.Sprintf("%s: %s%s", e.Code, base, guidance)
}

// FromText parses a "CODE: message" string, enriches it with catalog guidance,
// and returns an MCP tool error result.
func FromText(text string) *mcp.CallToolResult {
	t := strings.TrimSpace(text)
	if t == "" {
		return mcp.NewToolResultError(normalize(Validation, ""))
	}
	parts := strings.SplitN(t, ":", 2)
	code := Code(strings.TrimSpace(parts[0]))
	msg := ""
	if len(parts) > 1 {
		msg = strings.TrimSpace(parts[1])
	}
	return mcp.NewToolResultError(normalize(code, msg))
}

// New returns an MCP error result for a given code and optional message override.
func New(code Code, message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, message))
}

// Wrapf formats details and returns an MCP error result for the code.
func Wrapf(code Code, format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, fmt.Sprintf(format, args...)))
}

// Classify maps a domain error to its catalog code, using fallback for
// anything unrecognized.
func Classify(err error, fallback Code) Code {
	switch {
	case err == nil:
		return fallback
	case errors.Is(err, datasets.ErrHandleNotFound):
		return InvalidHandle
	case errors.Is(err, datasets.ErrCapacity):
		return LimitExceeded
	case errors.Is(err, analysis.ErrUnknownReport):
		return UnknownReport
	case errors.Is(err, analysis.ErrUnknownLostReason):
		return UnknownReason
	case errors.Is(err, ingest.ErrMissingColumn):
		return MissingColumn
	case errors.Is(err, ingest.ErrTooManyRows):
		return LimitExceeded
	case errors.Is(err, ingest.ErrUnsupportedFormat), errors.Is(err, export.ErrUnsupportedFormat), errors.Is(err, security.ErrUnsupportedExtension):
		return UnsupportedFormat
	case errors.Is(err, security.ErrNotAllowed):
		return PermissionDenied
	case errors.Is(err, security.ErrNotFound):
		return NotFound
	}
	return fallback
}

// FromError classifies err and renders it as a tool error result.
func FromError(err error, fallback Code) *mcp.CallToolResult {
	return New(Classify(err, fallback), err.Error())
}

package ingest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrMissingColumn is returned when no input file carries mobile_number.
	ErrMissingColumn = errors.New("ingest: required column mobile_number missing")
	// ErrTooManyRows is returned when a load exceeds Options.MaxRows.
	ErrTooManyRows = errors.New("ingest: row limit exceeded")
)

// Column names after header normalization.
const (
	ColDate     = "date"
	ColMobile   = "mobile_number"
	ColName     = "name"
	ColOutcome  = "outcome"
	ColNotes    = "notes"
	ColDuration = "duration"
	ColBot      = "bot"
)

// UnknownMobile stands in for blank mobile number cells.
const UnknownMobile = "unknown"

// Options bounds a load.
type Options struct {
	// MaxRows caps data rows across all files; 0 means unlimited.
	MaxRows int
}

// Result is a cleaned, typed dataset plus load statistics.
type Result struct {
	Records           []analysis.CallRecord
	Files             int
	RowsRead          int
	DuplicatesDropped int
	UndatedRows       int
	MinDate           time.Time
	MaxDate           time.Time
}

// Load reads every path and cleans the combined rows.
func Load(ctx context.Context, opts Options, paths ...string) (Result, error) {
	sheets := make([]Sheet, 0, len(paths))
	for _, p := range paths {
		s, err := ReadFile(ctx, p)
		if err != nil {
			return Result{}, err
		}
		zerolog.Ctx(ctx).Debug().Str("file", p).Int("rows", len(s.Rows)).Strs("columns", s.Header).Msg("campaign file read")
		sheets = append(sheets, s)
	}
	return Clean(ctx, opts, sheets...)
}

// Clean concatenates sheets, drops exact duplicate rows and maps the
// columns onto call records with defaults for anything absent.
func Clean(ctx context.Context, opts Options, sheets ...Sheet) (Result, error) {
	res := Result{Files: len(sheets)}

	union := map[string]struct{}{}
	for _, s := range sheets {
		for _, h := range s.Header {
			if h != "" {
				union[h] = struct{}{}
			}
		}
		res.RowsRead += len(s.Rows)
	}
	if opts.MaxRows > 0 && res.RowsRead > opts.MaxRows {
		return Result{}, fmt.Errorf("%w: %d rows > %d", ErrTooManyRows, res.RowsRead, opts.MaxRows)
	}
	if res.RowsRead == 0 {
		return res, nil
	}
	if _, ok := union[ColMobile]; !ok {
		return Result{}, ErrMissingColumn
	}
	cols := make([]string, 0, len(union))
	for c := range union {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	seen := make(map[string]struct{}, res.RowsRead)
	res.Records = make([]analysis.CallRecord, 0, res.RowsRead)
	var b strings.Builder
	for _, s := range sheets {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		pos := map[string]int{}
		for i, h := range s.Header {
			if _, dup := pos[h]; !dup && h != "" {
				pos[h] = i
			}
		}
		for _, row := range s.Rows {
			cell := func(col string) string {
				i, ok := pos[col]
				if !ok || i >= len(row) {
					return ""
				}
				return strings.TrimSpace(row[i])
			}

			b.Reset()
			for _, c := range cols {
				b.WriteString(cell(c))
				b.WriteByte(0x1f)
			}
			key := b.String()
			if _, dup := seen[key]; dup {
				res.DuplicatesDropped++
				continue
			}
			seen[key] = struct{}{}

			rec := analysis.CallRecord{
				MobileNumber: normalizeMobile(cell(ColMobile)),
				Name:         cell(ColName),
				Outcome:      cell(ColOutcome),
				Notes:        cell(ColNotes),
				Bot:          cell(ColBot),
				Duration:     parseNumber(cell(ColDuration)),
			}
			rec.OutcomeNorm = analysis.NormalizeOutcome(rec.Outcome)
			if d, ok := ParseDate(cell(ColDate)); ok {
				rec.Date = d
				if res.MinDate.IsZero() || d.Before(res.MinDate) {
					res.MinDate = d
				}
				if d.After(res.MaxDate) {
					res.MaxDate = d
				}
			} else {
				res.UndatedRows++
			}
			res.Records = append(res.Records, rec)
		}
	}
	if res.DuplicatesDropped > 0 {
		zerolog.Ctx(ctx).Info().Int("dropped", res.DuplicatesDropped).Msg("duplicate rows dropped")
	}
	return res, nil
}

// normalizeMobile keeps identifiers as text but undoes spreadsheet float
// rendering such as "9876543210.0" or "9.87654321E9".
func normalizeMobile(s string) string {
	if s == "" {
		return UnknownMobile
	}
	if strings.ContainsAny(s, "eE.") {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1e18 {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return s
}

func parseNumber(s string) float64 {
	clean := strings.ReplaceAll(s, ",", "")
	if clean == "" {
		return 0
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06 15:04",
	"1/2/06",
	"02-Jan-2006",
	"02-Jan-2006 15:04",
	"Jan 2, 2006 3:04 PM",
	"20060102",
}

// maxExcelSerial is 9999-12-31.
const maxExcelSerial = 2958465

// ParseDate accepts Excel serial dates and a set of common layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= maxExcelSerial {
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return t, true
		}
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor Excel.
var ErrUnsupportedFormat = errors.New("ingest: unsupported file format")

// Sheet is one file's raw cells with normalized header names.
type Sheet struct {
	Source string
	Header []string
	Rows   [][]string
}

// NormalizeHeader trims, lower-cases and replaces spaces with underscores.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

func blank(vals []string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func newSheet(source string, header []string) Sheet {
	s := Sheet{Source: source, Header: make([]string, len(header))}
	for i, h := range header {
		s.Header[i] = NormalizeHeader(h)
	}
	return s
}

// ReadFile reads a CSV or Excel campaign export.
func ReadFile(ctx context.Context, path string) (Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return Sheet{}, err
		}
		defer f.Close()
		return ReadCSV(ctx, f, path)
	case ".xlsx", ".xlsm":
		return ReadXLSX(ctx, path)
	default:
		return Sheet{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadCSV reads a header row followed by data rows. Blank lines are skipped.
func ReadCSV(ctx context.Context, r io.Reader, source string) (Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Sheet{Source: source}, nil
	}
	if err != nil {
		return Sheet{}, fmt.Errorf("ingest: read %s header: %w", source, err)
	}
	s := newSheet(source, header)
	for n := 0; ; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return Sheet{}, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Sheet{}, fmt.Errorf("ingest: read %s: %w", source, err)
		}
		if blank(rec) {
			continue
		}
		s.Rows = append(s.Rows, rec)
	}
	return s, nil
}

// ReadXLSX streams the first worksheet of an Excel workbook. Cell values are
// read raw so dates arrive as serial numbers and long numeric identifiers
// are not reformatted.
func ReadXLSX(ctx context.Context, path string) (Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{Source: path}, nil
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		return Sheet{}, fmt.Errorf("ingest: rows %s: %w", path, err)
	}
	defer rows.Close()

	var s Sheet
	haveHeader := false
	for n := 0; rows.Next(); n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return Sheet{}, err
			}
		}
		vals, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return Sheet{}, fmt.Errorf("ingest: read %s: %w", path, err)
		}
		if blank(vals) {
			continue
		}
		if !haveHeader {
			s = newSheet(path, vals)
			haveHeader = true
			continue
		}
		s.Rows = append(s.Rows, vals)
	}
	if err := rows.Error(); err != nil {
		return Sheet{}, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	if !haveHeader {
		s.Source = path
	}
	return s, nil
}

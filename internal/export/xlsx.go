package export

import (
	"fmt"
	"strings"

	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/xuri/excelize/v2"
)

// DataSheet is the sheet name used for single-table workbooks.
const DataSheet = "Data"

// WriteXLSX saves t as a workbook with one sheet named Data.
func WriteXLSX(path string, t analysis.Table) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), DataSheet); err != nil {
		return err
	}
	if err := fillSheet(f, DataSheet, t); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// WriteWorkbook saves one sheet per table, named after the report.
func WriteWorkbook(path string, tables []analysis.Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("export: no tables")
	}
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	used := map[string]bool{}
	for i, t := range tables {
		name := uniqueSheetName(t.Name, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := fillSheet(f, name, t); err != nil {
			return fmt.Errorf("export: sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

func fillSheet(f *excelize.File, sheet string, t analysis.Table) error {
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if len(t.Columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		vals := append([]any(nil), row...)
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	for i := range t.Columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(columnChars(t, i)+2)); err != nil {
			return err
		}
	}
	return nil
}

// Excel rejects these in sheet names and caps names at 31 characters.
var sheetNameReplacer = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")")

func uniqueSheetName(name string, used map[string]bool) string {
	base := strings.Trim(sheetNameReplacer.Replace(name), "'")
	if base == "" {
		base = "Sheet"
	}
	if len(base) > 31 {
		base = base[:31]
	}
	out := base
	for n := 2; used[strings.ToLower(out)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		cut := min(len(base), 31-len(suffix))
		out = base[:cut] + suffix
	}
	used[strings.ToLower(out)] = true
	return out
}

// columnChars is the widest rendered cell in column i, header included,
// capped at 60.
func columnChars(t analysis.Table, i int) int {
	w := 0
	if i < len(t.Columns) {
		w = len(t.Columns[i])
	}
	for _, row := range t.Rows {
		if i < len(row) {
			w = max(w, len(analysis.FormatCell(row[i])))
		}
	}
	return min(w, 60)
}

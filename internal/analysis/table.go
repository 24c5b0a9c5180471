package analysis

import (
	"math"
	"strconv"
)

// Table is the tabular result every report returns. Cells hold string
// labels, int counts, percentage strings or float64 durations.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Notes   []string `json:"notes,omitempty"`
}

func newTable(name string, cols ...string) Table {
	return Table{Name: name, Columns: cols, Rows: [][]any{}}
}

func (t *Table) add(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Column returns the values of the named column, or nil when absent.
func (t Table) Column(name string) []any {
	at := -1
	for i, c := range t.Columns {
		if c == name {
			at = i
			break
		}
	}
	if at < 0 {
		return nil
	}
	out := make([]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		if at < len(r) {
			out = append(out, r[at])
		}
	}
	return out
}

// Slice returns a copy of the table restricted to rows [off, off+n).
func (t Table) Slice(off, n int) Table {
	out := t
	out.Rows = [][]any{}
	if off < 0 {
		off = 0
	}
	if off >= len(t.Rows) || n <= 0 {
		return out
	}
	end := off + n
	if end > len(t.Rows) {
		end = len(t.Rows)
	}
	out.Rows = append(out.Rows, t.Rows[off:end]...)
	return out
}

// FormatCell renders a cell the way text and CSV outputs show it.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// percent renders part/whole*100 rounded to two decimals with a trailing %.
// A zero whole renders as 0%.
func percent(part, whole int) string {
	if whole <= 0 {
		return "0%"
	}
	return strconv.FormatFloat(round2(float64(part)/float64(whole)*100), 'f', -1, 64) + "%"
}

package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vinodismyname/leadlens/internal/analysis"
)

// WriteText prints t as an aligned plain-text table under a title line.
func WriteText(w io.Writer, t analysis.Table) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", t.Name); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	cells := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = analysis.FormatCell(row[i])
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, n := range t.Notes {
		if _, err := fmt.Fprintf(w, "note: %s\n", n); err != nil {
			return err
		}
	}
	return nil
}

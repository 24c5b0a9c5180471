package export

import (
	"encoding/csv"
	"io"

	"github.com/vinodismyname/leadlens/internal/analysis"
)

// WriteCSV writes the header row then every data row.
func WriteCSV(w io.Writer, t analysis.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range rec {
			rec[i] = ""
			if i < len(row) {
				rec[i] = analysis.FormatCell(row[i])
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

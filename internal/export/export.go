package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vinodismyname/leadlens/internal/analysis"
)

// ErrUnsupportedFormat is returned for destinations other than .csv, .xlsx or .png.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// Formats lists the accepted destination extensions.
func Formats() []string { return []string{".csv", ".xlsx", ".png"} }

// Write renders t to path, choosing the encoder from the extension.
func Write(path string, t analysis.Table) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx":
		return WriteXLSX(path, t)
	case ".csv", ".png":
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if ext == ".csv" {
		err = WriteCSV(f, t)
	} else {
		err = WritePNG(f, t)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

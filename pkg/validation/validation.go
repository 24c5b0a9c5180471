package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/vinodismyname/leadlens/internal/export"
	"github.com/vinodismyname/leadlens/pkg/pagination"
)

// DateLayout is the calendar-day format accepted for date window bounds.
const DateLayout = "2006-01-02"

var (
	v    *validator.Validate
	once sync.Once
)

func hasExt(s string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(s)))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		// Campaign exports: CSV or Excel workbooks
		_ = v.RegisterValidation("datafile_ext", func(fl validator.FieldLevel) bool {
			return hasExt(fl.Field().String(), ".csv", ".xlsx", ".xlsm")
		})
		_ = v.RegisterValidation("export_ext", func(fl validator.FieldLevel) bool {
			return hasExt(fl.Field().String(), export.Formats()...)
		})
		_ = v.RegisterValidation("report_name", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			return analysis.IsReport(s)
		})
		// Export accepts "all" on top of the catalog
		_ = v.RegisterValidation("report_or_all", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			return s == "all" || analysis.IsReport(s)
		})
		_ = v.RegisterValidation("lost_reason", func(fl validator.FieldLevel) bool {
			return analysis.IsLostReason(fl.Field().String())
		})
		_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, strings.TrimSpace(fl.Field().String()))
			return err == nil
		})
		_ = v.RegisterValidation("cursor", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if s == "" {
				return true // use omitempty with this tag
			}
			_, err := pagination.DecodeCursor(s)
			return err == nil
		})
	})
	return v
}

// ValidateStruct validates a struct and returns a user-friendly error string
// suitable for MCP tool errors. Returns empty string when valid.
func ValidateStruct(s any) string {
	err := Validator().Struct(s)
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "VALIDATION: invalid inputs"
	}
	fe := ve[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("VALIDATION: %s is required", field)
	case "datafile_ext":
		return "VALIDATION: paths must be campaign exports (.csv, .xlsx, .xlsm)"
	case "export_ext":
		return "VALIDATION: path must end in .csv, .xlsx or .png"
	case "report_name", "report_or_all":
		return fmt.Sprintf("UNKNOWN_REPORT: %q; use one of %s", fe.Value(), strings.Join(analysis.ReportNames(), ", "))
	case "lost_reason":
		return fmt.Sprintf("UNKNOWN_REASON: %q", fe.Value())
	case "ymd":
		return fmt.Sprintf("VALIDATION: %s must be a date like 2024-03-31", field)
	case "cursor":
		return "CURSOR_INVALID: failed to decode cursor; restart pagination"
	case "min", "max", "gte", "lte":
		return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("VALIDATION: invalid %s", field)
}

// ParseWindow parses optional from/to calendar days. Empty strings leave the
// corresponding bound open.
func ParseWindow(from, to string) (time.Time, time.Time, error) {
	var f, t time.Time
	var err error
	if s := strings.TrimSpace(from); s != "" {
		if f, err = time.Parse(DateLayout, s); err != nil {
			return f, t, fmt.Errorf("invalid from date %q: %w", s, err)
		}
	}
	if s := strings.TrimSpace(to); s != "" {
		if t, err = time.Parse(DateLayout, s); err != nil {
			return f, t, fmt.Errorf("invalid to date %q: %w", s, err)
		}
	}
	if !f.IsZero() && !t.IsZero() && t.Before(f) {
		return f, t, fmt.Errorf("to date %s is before from date %s", to, from)
	}
	return f, t, nil
}

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/leadlens/internal/export"
)

type reportInput struct {
	DatasetID string   `validate:"required"`
	Report    string   `validate:"required,report_name"`
	Reason    string   `validate:"omitempty,lost_reason"`
	From      string   `validate:"omitempty,ymd"`
	Paths     []string `validate:"required,min=1,dive,datafile_ext"`
	Out       string   `validate:"omitempty,export_ext"`
}

func valid() reportInput {
	return reportInput{DatasetID: "d1", Report: "deep_dive", Reason: "Not Interested", From: "2024-03-01", Paths: []string{"a.csv", "b.XLSX"}}
}

func TestValidateStruct_OK(t *testing.T) {
	require.Empty(t, ValidateStruct(valid()))
}

func TestValidateStruct_Messages(t *testing.T) {
	in := valid()
	in.DatasetID = ""
	require.Equal(t, "VALIDATION: datasetid is required", ValidateStruct(in))

	in = valid()
	in.Report = "pie_chart"
	require.True(t, strings.HasPrefix(ValidateStruct(in), "UNKNOWN_REPORT:"))

	in = valid()
	in.Reason = "bored"
	require.True(t, strings.HasPrefix(ValidateStruct(in), "UNKNOWN_REASON:"))

	in = valid()
	in.From = "03/01/2024"
	require.True(t, strings.HasPrefix(ValidateStruct(in), "VALIDATION: from must be a date"))

	in = valid()
	in.Paths = []string{"notes.txt"}
	require.Contains(t, ValidateStruct(in), ".csv")

	in = valid()
	in.Out = "report.pdf"
	require.Contains(t, ValidateStruct(in), ".png")
}

func TestValidateStruct_ExportFormats(t *testing.T) {
	for _, ext := range export.Formats() {
		in := valid()
		in.Out = "report" + ext
		require.Empty(t, ValidateStruct(in), ext)
	}
}

func TestParseWindow(t *testing.T) {
	f, to, err := ParseWindow("2024-03-01", "")
	require.NoError(t, err)
	require.Equal(t, 2024, f.Year())
	require.True(t, to.IsZero())

	_, _, err = ParseWindow("2024-03-05", "2024-03-01")
	require.Error(t, err)

	_, _, err = ParseWindow("yesterday", "")
	require.Error(t, err)
}

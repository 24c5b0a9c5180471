package mcperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/leadlens/internal/analysis"
	"github.com/vinodismyname/leadlens/internal/datasets"
	"github.com/vinodismyname/leadlens/internal/export"
	"github.com/vinodismyname/leadlens/internal/ingest"
	"github.com/vinodismyname/leadlens/internal/security"
)

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestNew_AppendsGuidance(t *testing.T) {
	res := New(InvalidHandle, "")
	require.True(t, res.IsError)
	require.True(t, strings.HasPrefix(text(res), "INVALID_HANDLE: dataset handle not found or expired | nextSteps: "))
}

func TestFromText_UnknownCodePreserved(t *testing.T) {
	require.Equal(t, "WEIRD: thing", text(FromText("WEIRD: thing")))
	require.True(t, strings.HasPrefix(text(FromText("")), "VALIDATION: invalid inputs"))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{fmt.Errorf("wrap: %w", datasets.ErrHandleNotFound), InvalidHandle},
		{analysis.ErrUnknownReport, UnknownReport},
		{fmt.Errorf("deep_dive: %w", analysis.ErrUnknownLostReason), UnknownReason},
		{ingest.ErrMissingColumn, MissingColumn},
		{ingest.ErrTooManyRows, LimitExceeded},
		{security.ErrNotAllowed, PermissionDenied},
		{security.ErrUnsupportedExtension, UnsupportedFormat},
		{fmt.Errorf("%w: \".pdf\"", export.ErrUnsupportedFormat), UnsupportedFormat},
		{fmt.Errorf("%w: context deadline exceeded", datasets.ErrCapacity), LimitExceeded},
		{errors.New("boom"), ReportFailed},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Classify(c.err, ReportFailed), c.err.Error())
	}
}

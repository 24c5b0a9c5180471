package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewHooks_ToolCallLogging(t *testing.T) {
	var buf bytes.Buffer
	hooks := NewHooks(zerolog.New(&buf))
	ctx := context.Background()

	req := &mcp.CallToolRequest{}
	req.Params.Name = "run_report"
	for _, fn := range hooks.OnBeforeCallTool {
		fn(ctx, 1, req)
	}
	for _, fn := range hooks.OnAfterCallTool {
		fn(ctx, 1, req, mcp.NewToolResultError("UNKNOWN_REPORT: nope"))
	}
	out := buf.String()
	require.Contains(t, out, `"tool":"run_report"`)
	require.Contains(t, out, `"duration"`)
	require.Contains(t, out, `"is_error":true`)

	buf.Reset()
	for _, fn := range hooks.OnError {
		fn(ctx, 2, mcp.MethodToolsCall, nil, errors.New("boom"))
	}
	require.Contains(t, buf.String(), `"error":"boom"`)
}

package runtime

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
)

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestMiddleware_AllowsWhenCapacity(t *testing.T) {
	limits := NewLimits(1, 1)
	limits.OperationTimeout = 200 * time.Millisecond
	limits.AcquireRequestTimeout = 50 * time.Millisecond

	mw := NewMiddleware(NewController(limits))
	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}

	res, err := mw.ToolMiddleware(server.ToolHandlerFunc(next))(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, res.IsError)
}

func TestMiddleware_BusyWhenSaturated(t *testing.T) {
	limits := NewLimits(1, 1)
	limits.AcquireRequestTimeout = 10 * time.Millisecond

	ctrl := NewController(limits)
	require.NoError(t, ctrl.AcquireRequest(context.Background()))
	defer ctrl.ReleaseRequest()

	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t.Fatal("next should not be called when saturated")
		return nil, nil
	}

	res, err := NewMiddleware(ctrl).ToolMiddleware(server.ToolHandlerFunc(next))(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.True(t, strings.HasPrefix(resultText(t, res), "BUSY_RESOURCE:"))
}

func TestMiddleware_TimeoutApplied(t *testing.T) {
	limits := NewLimits(1, 1)
	limits.OperationTimeout = 20 * time.Millisecond
	limits.AcquireRequestTimeout = 20 * time.Millisecond

	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	res, err := NewMiddleware(NewController(limits)).ToolMiddleware(server.ToolHandlerFunc(next))(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.True(t, strings.HasPrefix(resultText(t, res), "TIMEOUT:"))
}

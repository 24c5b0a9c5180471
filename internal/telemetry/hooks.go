package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// NewHooks builds mcp-go lifecycle hooks that log sessions, discovery and
// tool calls with their latency.
func NewHooks(logger zerolog.Logger) *server.Hooks {
	hooks := &server.Hooks{}
	var started sync.Map // request id -> time.Time

	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session_id", session.SessionID()).Msg("session registered")
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		logger.Info().Str("session_id", session.SessionID()).Msg("session unregistered")
	})

	hooks.AddAfterListTools(func(ctx context.Context, id any, req *mcp.ListToolsRequest, res *mcp.ListToolsResult) {
		logger.Info().Int("tools", len(res.Tools)).Msg("list_tools served")
	})

	hooks.AddBeforeCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest) {
		if id != nil {
			started.Store(id, time.Now())
		}
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, res *mcp.CallToolResult) {
		evt := logger.Info().Str("tool", req.Params.Name)
		if id != nil {
			if t, ok := started.LoadAndDelete(id); ok {
				evt = evt.Dur("duration", time.Since(t.(time.Time)))
			}
		}
		if res != nil && res.IsError {
			evt = evt.Bool("is_error", true)
		}
		evt.Msg("tool call served")
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		if id != nil {
			started.Delete(id)
		}
		logger.Error().Str("method", string(method)).Err(err).Msg("request error")
	})

	return hooks
}

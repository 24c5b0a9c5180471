package registry

import (
	"context"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// EnvEnableExports names the variable that exposes file-writing tools.
const EnvEnableExports = "LEADLENS_ENABLE_EXPORTS"

// ExportToolFilter hides tools that write files unless explicitly enabled.
type ExportToolFilter struct {
	allowExports bool
}

// NewExportToolFilterFromEnv constructs a filter using LEADLENS_ENABLE_EXPORTS.
func NewExportToolFilterFromEnv() *ExportToolFilter {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvEnableExports)))
	return &ExportToolFilter{allowExports: v == "1" || v == "true" || v == "yes"}
}

// Enabled reports whether export tools are visible.
func (f *ExportToolFilter) Enabled() bool { return f.allowExports }

// FilterTools drops export_ tools from discovery when exports are disabled.
func (f *ExportToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	if f.allowExports {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if strings.HasPrefix(strings.ToLower(t.Name), "export_") {
			continue
		}
		out = append(out, t)
	}
	return out
}

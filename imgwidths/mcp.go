// CLAUDE:SUMMARY Registers imgwidths_select, imgwidths_aggregate and imgwidths_runs MCP tools via kit.RegisterMCPTool.
package imgwidths

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/rwd/kit"
)

// RegisterMCP registers imgwidths tools on an MCP server. The runs tool is
// only registered when st is non-nil.
func RegisterMCP(srv *mcp.Server, st *Store, logger *slog.Logger) {
	registerSelectTool(srv, logger)
	registerAggregateTool(srv, logger)
	if st != nil {
		registerRunsTool(srv, st, logger)
	}
}

// Instrument is the middleware stack shared by every imgwidths endpoint,
// over MCP and HTTP alike: logging outermost, panic recovery inside.
func Instrument(logger *slog.Logger, name string) kit.Middleware {
	return kit.Chain(kit.Logging(logger, name), kit.Recover())
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

var (
	widthsNumberProp = map[string]any{
		"type":        "integer",
		"minimum":     1,
		"description": "How many widths to select (default 5)",
	}
	patternProp = map[string]any{
		"type":        "string",
		"description": "Image URL pattern; {width} is replaced by each width",
	}
)

func registerSelectTool(srv *mcp.Server, logger *slog.Logger) {
	tool := &mcp.Tool{
		Name:        "imgwidths_select",
		Description: "Select the srcset widths minimising expected wasted pixels for a demand distribution.",
		InputSchema: inputSchema(map[string]any{
			"entries": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"width": map[string]any{"type": "integer"},
						"views": map[string]any{"type": "integer"},
						"share": map[string]any{"type": "number"},
					},
					"required": []string{"width"},
				},
				"description": "Perfect widths with their views (or relative shares)",
			},
			"widths_number": widthsNumberProp,
			"pattern":       patternProp,
		}, []string{"entries"}),
	}
	endpoint := Instrument(logger, "imgwidths_select")(SelectEndpoint())
	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeJSON[SelectRequest]())
}

func registerAggregateTool(srv *mcp.Server, logger *slog.Logger) {
	tool := &mcp.Tool{
		Name:        "imgwidths_aggregate",
		Description: "Aggregate visitor records against measured element widths and select srcset widths.",
		InputSchema: inputSchema(map[string]any{
			"samples": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"viewport": map[string]any{"type": "integer"},
						"width":    map[string]any{"type": "integer"},
					},
					"required": []string{"viewport", "width"},
				},
				"description": "Rendered element width per viewport width",
			},
			"records": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"viewport": map[string]any{"type": "integer"},
						"density":  map[string]any{"type": "number"},
						"views":    map[string]any{"type": "integer"},
					},
					"required": []string{"viewport", "density", "views"},
				},
				"description": "Visitor contexts: viewport, pixel density, views",
			},
			"widths_number": widthsNumberProp,
			"pattern":       patternProp,
		}, []string{"samples", "records"}),
	}
	endpoint := Instrument(logger, "imgwidths_aggregate")(AggregateEndpoint())
	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeJSON[AggregateRequest]())
}

func registerRunsTool(srv *mcp.Server, st *Store, logger *slog.Logger) {
	tool := &mcp.Tool{
		Name:        "imgwidths_runs",
		Description: "List recent imgwidths runs, or fetch one full report by id.",
		InputSchema: inputSchema(map[string]any{
			"id":    map[string]any{"type": "string", "description": "Run id; omit to list"},
			"limit": map[string]any{"type": "integer", "description": "Max runs to list (default 50)"},
		}, nil),
	}
	endpoint := Instrument(logger, "imgwidths_runs")(RunsEndpoint(st))
	kit.RegisterMCPTool(srv, tool, endpoint, kit.DecodeJSON[RunsRequest]())
}

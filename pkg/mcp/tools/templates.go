package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cohortiq/cohort-engine/pkg/dispatch"
)

// RegisterTemplateTools registers the deterministic template tools. Only the
// preset path is exposed over MCP; the model-backed path would have the
// calling model pay for a second model.
func RegisterTemplateTools(s *server.MCPServer) {
	registerListTemplatesTool(s)
	registerGenerateSQLTool(s)
}

func registerListTemplatesTool(s *server.MCPServer) {
	tool := mcp.NewTool(
		"list_templates",
		mcp.WithDescription(
			"List the preset query templates in matching priority order. "+
				"Each entry has an id, a title, and an example request phrase "+
				"that generate_sql will recognize.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rules := dispatch.Rules()
		result := struct {
			Templates []dispatch.RuleInfo `json:"templates"`
			Count     int                 `json:"count"`
		}{
			Templates: rules,
			Count:     len(rules),
		}

		jsonResult, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

func registerGenerateSQLTool(s *server.MCPServer) {
	tool := mcp.NewTool(
		"generate_sql",
		mcp.WithDescription(
			"Map a natural-language request onto a preset SQL template. "+
				"Matching is deterministic substring dispatch; a request that "+
				"matches no template returns the fallback bundle, never an error. "+
				"The result carries the SQL plus example input and output tables.",
		),
		mcp.WithString(
			"request",
			mcp.Required(),
			mcp.Description("Natural-language query request, e.g. 'number of patients'"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawRequest, err := req.RequireString("request")
		if err != nil {
			return nil, err
		}

		bundle := dispatch.Dispatch(dispatch.Normalize(rawRequest))

		jsonResult, err := json.Marshal(bundle)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

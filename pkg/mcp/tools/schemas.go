package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cohortiq/cohort-engine/pkg/apperrors"
	"github.com/cohortiq/cohort-engine/pkg/schema"
)

// RegisterSchemaTools registers the schema registry tools.
func RegisterSchemaTools(s *server.MCPServer) {
	registerListSchemasTool(s)
	registerDescribeSchemaTool(s)
}

func registerListSchemasTool(s *server.MCPServer) {
	tool := mcp.NewTool(
		"list_schemas",
		mcp.WithDescription(
			"List the clinical data schemas this server knows. "+
				"Returns schema identifiers to pass to describe_schema.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := struct {
			Schemas []string `json:"schemas"`
		}{
			Schemas: schema.IDs(),
		}

		jsonResult, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

func registerDescribeSchemaTool(s *server.MCPServer) {
	tool := mcp.NewTool(
		"describe_schema",
		mcp.WithDescription(
			"Describe a clinical schema as one line per table with its columns. "+
				"The text is the same table inventory the SQL assistant works from. "+
				"Use list_schemas to discover valid identifiers.",
		),
		mcp.WithString(
			"schema",
			mcp.Required(),
			mcp.Description("Schema identifier, e.g. 'i2b2' or 'OMOP'"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("schema")
		if err != nil {
			return nil, err
		}

		description, err := schema.DescribeID(id)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnknownSchema) {
				return NewErrorResultWithDetails(
					"unknown_schema",
					err.Error(),
					map[string]any{"known_schemas": schema.IDs()},
				), nil
			}
			return nil, fmt.Errorf("failed to describe schema: %w", err)
		}

		result := struct {
			Schema      string `json:"schema"`
			Description string `json:"description"`
		}{
			Schema:      id,
			Description: description,
		}

		jsonResult, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		return mcp.NewToolResultText(string(jsonResult)), nil
	})
}

// Package mcpadapter exposes the query pipeline and the guardrail
// engine as MCP tools.
package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/text2sql-agent/internal/guardrails"
	"github.com/povarna/text2sql-agent/internal/text2sql"
)

// QueryInput is the MCP tool input schema (matches HTTP API field names).
type QueryInput struct {
	Query     string `json:"query" jsonschema:"the natural language question to answer"`
	SessionID string `json:"session_id,omitempty" jsonschema:"optional session id to continue a conversation"`
}

// ValidateInput is the MCP tool input schema for SQL validation.
type ValidateInput struct {
	SQL string `json:"sql" jsonschema:"the SQL statement to validate"`
}

// NewQueryHandler returns a tool handler that runs the full pipeline.
// Pass the returned function to mcp.AddTool.
func NewQueryHandler(service *text2sql.Service) func(context.Context, *mcp.CallToolRequest, QueryInput) (*mcp.CallToolResult, text2sql.Response, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input QueryInput) (*mcp.CallToolResult, text2sql.Response, error) {
		return Query(ctx, service, req, input)
	}
}

// Query answers one natural language question and returns the pipeline
// response with its per-statement execution records.
func Query(
	ctx context.Context,
	service *text2sql.Service,
	req *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, text2sql.Response, error) {
	response, err := service.ProcessQuery(ctx, text2sql.Request{
		Query:     input.Query,
		SessionID: input.SessionID,
	})
	if err != nil {
		return nil, text2sql.Response{}, err
	}

	return nil, response, nil
}

// NewValidateHandler returns a tool handler that validates SQL with the
// given guardrail engine. Pass the returned function to mcp.AddTool.
func NewValidateHandler(engine *guardrails.Engine) func(context.Context, *mcp.CallToolRequest, ValidateInput) (*mcp.CallToolResult, guardrails.Report, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ValidateInput) (*mcp.CallToolResult, guardrails.Report, error) {
		return Validate(ctx, engine, req, input)
	}
}

// Validate runs the guardrail engine over one SQL statement. Unsafe SQL
// is a successful call returning is_safe=false, not a tool error.
func Validate(
	ctx context.Context,
	engine *guardrails.Engine,
	req *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, guardrails.Report, error) {
	return nil, engine.Validate(input.SQL).Report(), nil
}

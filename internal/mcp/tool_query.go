package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/docvault/internal/query"
)

// AddQueryTool registers the query_vault tool.
func AddQueryTool(s *server.MCPServer, db *sql.DB) {
	tool := mcp.NewTool(
		"query_vault",
		mcp.WithDescription(`Query vault statistics with JSON queries. Use for counting and listing
questions: records per language, files that failed to parse, recent runs.

Tables: `+strings.Join(query.Tables(), ", ")+`

Supports:
- fields to select (default: all)
- where conditions with =, !=, >, >=, <, <=, LIKE, NOT LIKE, IN, NOT IN, IS NULL, IS NOT NULL, BETWEEN
- and / or / not combinations: {"and": [...]}, {"not": {...}}
- groupBy with aggregations (COUNT, SUM, AVG, MIN, MAX) and having
- orderBy with ASC/DESC, limit (default 100, max 1000) and offset

Examples:
- Records per language: {"from": "records", "groupBy": ["language"], "aggregations": [{"function": "COUNT", "alias": "n"}], "orderBy": [{"field": "n", "direction": "DESC"}]}
- Broken files: {"from": "files", "fields": ["file_path", "error"], "where": {"field": "status", "operator": "=", "value": "parse_error"}}`),
		mcp.WithObject("query",
			mcp.Required(),
			mcp.Description(`Query definition: {"from": "records", "fields": [...], "where": {...}, "groupBy": [...], "aggregations": [...], "having": {...}, "orderBy": [...], "limit": 100, "offset": 0}`)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createQueryHandler(query.NewExecutor(db)))
}

func createQueryHandler(executor *query.Executor) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := toolArguments(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		raw, ok := args["query"]
		if !ok {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		// Clients may send the query as an object or as a JSON string.
		var data []byte
		if s, isString := raw.(string); isString {
			data = []byte(s)
		} else if data, err = json.Marshal(raw); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read query: %v", err)), nil
		}

		q, err := query.Parse(data)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := executor.Execute(ctx, q)
		if err != nil {
			var verrs query.ValidationErrors
			if errors.As(err, &verrs) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, fmt.Errorf("query failed: %w", err)
		}
		return jsonResult(result)
	}
}

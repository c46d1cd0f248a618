package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/docvault/internal/search"
)

// AddSearchTool registers the search_docstrings tool.
func AddSearchTool(s *server.MCPServer, vault *Vault) {
	tool := mcp.NewTool(
		"search_docstrings",
		mcp.WithDescription(`Full-text search over mined records using bleve query syntax.

Supports:
- Field scoping: docstring:retry, identifier:connect, code:mutex, path:db
- Boolean operators: AND, OR, NOT, +required, -excluded
- Phrase search: "database connection"
- Wildcards: conn* (prefix matching)
- Fuzzy: conection~1 (edit distance)

Filter with language (python, java, ...) and kind (function or class).`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Bleve query string")),
		mcp.WithString("language",
			mcp.Description("Only records of this language")),
		mcp.WithString("kind",
			mcp.Description("function or class"),
			mcp.Enum("function", "class")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchHandler(vault))
}

// SearchResponse is the JSON result of search_docstrings.
type SearchResponse struct {
	Query         string           `json:"query"`
	Results       []*search.Hit    `json:"results"`
	TotalReturned int              `json:"total_returned"`
	Metadata      ResponseMetadata `json:"metadata"`
}

func createSearchHandler(vault *Vault) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		args, err := toolArguments(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		query, err := args.str("query", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts := &search.Options{Limit: args.clampedInt("limit", 15, 1, 100)}
		if opts.Language, err = args.str("language", false); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if opts.Kind, err = args.str("kind", false); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		hits, err := vault.Search(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		return jsonResult(&SearchResponse{
			Query:         query,
			Results:       hits,
			TotalReturned: len(hits),
			Metadata:      ResponseMetadata{TookMs: int(time.Since(startTime).Milliseconds()), Source: "search"},
		})
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/docvault/internal/miner"
	"github.com/mvp-joe/docvault/internal/miner/extraction"
	"github.com/mvp-joe/docvault/internal/syntax"
)

// Extraction modes of the extract_docstrings tool.
const (
	ModeDocstrings = "docstrings"
	ModeLines      = "lines"
)

// AddExtractTool registers the extract_docstrings tool.
func AddExtractTool(s *server.MCPServer, pipeline *miner.Pipeline) {
	tool := mcp.NewTool(
		"extract_docstrings",
		mcp.WithDescription(`Extract documented functions and classes from a source snippet.

Mode "docstrings" (default) returns one record per documented function and,
unless classes is false, per documented class. Mode "lines" returns the
comments inside function bodies paired with the surrounding code.`),
		mcp.WithString("language",
			mcp.Required(),
			mcp.Description("Source language, e.g. python, java, go, c#, c++")),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Complete source text of one file")),
		mcp.WithString("mode",
			mcp.Description("docstrings or lines (default: docstrings)"),
			mcp.Enum(ModeDocstrings, ModeLines)),
		mcp.WithBoolean("classes",
			mcp.Description("Include class records in docstrings mode (default: true)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createExtractHandler(pipeline))
}

// ExtractResponse is the JSON result of extract_docstrings.
type ExtractResponse struct {
	Language  syntax.Language                   `json:"language"`
	Functions []extraction.OutputRecord         `json:"functions"`
	Classes   []extraction.OutputRecord         `json:"classes"`
	Lines     []extraction.CommentContextRecord `json:"lines"`
	Skips     map[string]int                    `json:"skips"`
	Metadata  ResponseMetadata                  `json:"metadata"`
}

// ResponseMetadata contains timing and source information.
type ResponseMetadata struct {
	TookMs int    `json:"took_ms"`
	Source string `json:"source"`
}

func createExtractHandler(pipeline *miner.Pipeline) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		args, err := toolArguments(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		langName, err := args.str("language", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		source, err := args.str("source", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		mode, err := args.str("mode", false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		lang, err := syntax.ParseLanguage(langName)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var opts extraction.Options
		switch mode {
		case "", ModeDocstrings:
			opts.Classes = args.boolean("classes", true)
		case ModeLines:
			opts.LineComments = true
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown mode %q", mode)), nil
		}

		res, err := pipeline.ExtractWith(lang, "", []byte(source), opts)
		if err != nil {
			// Malformed input is the caller's problem, not a server failure.
			return mcp.NewToolResultError(err.Error()), nil
		}

		response := &ExtractResponse{
			Language:  lang,
			Functions: res.Functions,
			Classes:   res.Classes,
			Lines:     res.Lines,
			Skips:     res.Skips,
			Metadata:  ResponseMetadata{TookMs: int(time.Since(startTime).Milliseconds()), Source: "extract"},
		}
		if mode == ModeLines {
			response.Functions = []extraction.OutputRecord{}
		}
		return jsonResult(response)
	}
}

// jsonResult marshals v as a text result (mcp-go convention).
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

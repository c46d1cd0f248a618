package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/docvault/internal/docstring"
	"github.com/mvp-joe/docvault/internal/quality"
	"github.com/mvp-joe/docvault/internal/syntax"
)

// Normalizer is the part of docstring.Normalizer the tool needs.
type Normalizer interface {
	Normalize(raw string, declared []string, lang syntax.Language) *docstring.Record
}

// AddNormalizeTool registers the normalize_docstring tool.
func AddNormalizeTool(s *server.MCPServer, normalizer Normalizer) {
	tool := mcp.NewTool(
		"normalize_docstring",
		mcp.WithDescription(`Parse a raw documentation comment into a structured record.

The best-matching style (google, numpydoc, rest, epydoc, javadoc, jsdoc,
phpdoc, rdoc, xmldoc, rustdoc) is detected automatically. Text that
starts with a comment delimiter such as /**, /// or # is stripped first.`),
		mcp.WithString("language",
			mcp.Required(),
			mcp.Description("Language the comment was written for")),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Raw docstring or comment text")),
		mcp.WithArray("parameters",
			mcp.Description("Declared parameter names of the documented function"),
			mcp.WithStringItems()),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createNormalizeHandler(normalizer))
}

func createNormalizeHandler(normalizer Normalizer) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := toolArguments(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		langName, err := args.str("language", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := args.str("text", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		lang, err := syntax.ParseLanguage(langName)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		rec := normalizer.Normalize(stripComment(text), args.strings("parameters"), lang)
		if rec == nil {
			return mcp.NewToolResultError("text holds no documentation"), nil
		}
		return jsonResult(rec)
	}
}

// stripComment removes comment delimiters when text is still a raw comment.
// Docstring bodies are passed through so their indentation survives.
func stripComment(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, opener := range []string{"/*", "//", "#"} {
		if strings.HasPrefix(trimmed, opener) {
			return quality.StripDelimiters(trimmed)
		}
	}
	return text
}

package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/docvault/internal/graph"
)

// Hierarchy directions.
const (
	DirectionAncestors   = "ancestors"
	DirectionDescendants = "descendants"
)

// AddHierarchyTool registers the class_hierarchy tool.
func AddHierarchyTool(s *server.MCPServer, vault *Vault) {
	tool := mcp.NewTool(
		"class_hierarchy",
		mcp.WithDescription(`Walk the inheritance hierarchy of mined classes.

The class may be given as an identifier (Outer.Inner), a simple name, or a
language-qualified id such as python:Dog.`),
		mcp.WithString("class",
			mcp.Required(),
			mcp.Description("Class to start from")),
		mcp.WithString("direction",
			mcp.Description("ancestors or descendants (default: ancestors)"),
			mcp.Enum(DirectionAncestors, DirectionDescendants)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createHierarchyHandler(vault))
}

// HierarchyResponse is the JSON result of class_hierarchy.
type HierarchyResponse struct {
	Class     string          `json:"class"`
	Direction string          `json:"direction"`
	Results   []graph.Related `json:"results"`
}

func createHierarchyHandler(vault *Vault) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := toolArguments(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		class, err := args.str("class", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		direction, err := args.str("direction", false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if direction == "" {
			direction = DirectionAncestors
		}

		h, err := vault.Hierarchy(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load hierarchy: %w", err)
		}

		var related []graph.Related
		switch direction {
		case DirectionAncestors:
			related, err = h.Ancestors(class)
		case DirectionDescendants:
			related, err = h.Descendants(class)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown direction %q", direction)), nil
		}
		if errors.Is(err, graph.ErrClassNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err != nil {
			return nil, err
		}

		return jsonResult(&HierarchyResponse{Class: class, Direction: direction, Results: related})
	}
}

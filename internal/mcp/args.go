package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// arguments wraps the argument map of a tool call.
type arguments map[string]interface{}

// toolArguments extracts the argument map, failing on any other shape.
func toolArguments(request mcp.CallToolRequest) (arguments, error) {
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid arguments format")
	}
	return arguments(argsMap), nil
}

// str extracts a string argument.
// Returns an error if the argument is required but missing or invalid.
func (a arguments) str(key string, required bool) (string, error) {
	val, ok := a[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}

	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if required && s == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return s, nil
}

// boolean extracts a bool argument, or defaultVal when missing or invalid.
func (a arguments) boolean(key string, defaultVal bool) bool {
	if b, ok := a[key].(bool); ok {
		return b
	}
	return defaultVal
}

// clampedInt extracts an integer clamped to [lo, hi]. MCP sends numbers as
// float64. Returns defaultVal if the argument is missing or invalid.
func (a arguments) clampedInt(key string, defaultVal, lo, hi int) int {
	val := defaultVal
	if f, ok := a[key].(float64); ok {
		val = int(f)
	}
	return max(lo, min(val, hi))
}

// strings extracts a string array argument, skipping non-string elements.
// Returns nil if the argument is missing.
func (a arguments) strings(key string) []string {
	arr, ok := a[key].([]interface{})
	if !ok {
		return nil
	}

	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArguments(t *testing.T) {
	t.Parallel()

	t.Run("invalid shape", func(t *testing.T) {
		_, err := toolArguments(mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: "nope"}})
		assert.Error(t, err)
	})

	a := arguments{
		"name":   "value",
		"empty":  "",
		"number": float64(42),
		"flag":   true,
		"list":   []interface{}{"a", 1, "b"},
	}

	t.Run("str", func(t *testing.T) {
		s, err := a.str("name", true)
		require.NoError(t, err)
		assert.Equal(t, "value", s)

		_, err = a.str("missing", true)
		assert.ErrorContains(t, err, "missing parameter is required")

		_, err = a.str("empty", true)
		assert.ErrorContains(t, err, "empty cannot be empty")

		s, err = a.str("missing", false)
		require.NoError(t, err)
		assert.Empty(t, s)

		_, err = a.str("number", false)
		assert.ErrorContains(t, err, "number must be a string")
	})

	t.Run("boolean", func(t *testing.T) {
		assert.True(t, a.boolean("flag", false))
		assert.True(t, a.boolean("missing", true))
		assert.False(t, a.boolean("name", false))
	})

	t.Run("clampedInt", func(t *testing.T) {
		assert.Equal(t, 42, a.clampedInt("number", 10, 1, 100))
		assert.Equal(t, 20, a.clampedInt("number", 10, 1, 20))
		assert.Equal(t, 10, a.clampedInt("missing", 10, 1, 100))
		assert.Equal(t, 10, a.clampedInt("name", 10, 1, 100))
	})

	t.Run("strings", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, a.strings("list"))
		assert.Nil(t, a.strings("missing"))
	})
}

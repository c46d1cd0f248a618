package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docvault/internal/config"
	"github.com/mvp-joe/docvault/internal/docstring"
	"github.com/mvp-joe/docvault/internal/miner"
	"github.com/mvp-joe/docvault/internal/query"
	"github.com/mvp-joe/docvault/internal/storage"
)

// Test Plan for MCP tools:
// - extract_docstrings returns function records for a snippet
// - extract_docstrings in lines mode returns comment context records
// - Invalid arguments, unknown languages and malformed source are tool errors
// - normalize_docstring parses a Google docstring and strips comment delimiters
// - search_docstrings finds vault records and sees a newer run
// - class_hierarchy walks descendants and reports unknown classes
// - query_vault accepts object and string queries and reports invalid ones
// - NewMCPServer registers extraction tools without a database

const pySource = `def add(a, b):
    """Adds two numbers together.

    Args:
        a: The first operand value.
        b: The second operand value.
    """
    return a + b
`

func newPipeline(t *testing.T) *miner.Pipeline {
	t.Helper()
	p, err := miner.NewPipeline(config.Default())
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args interface{}) (*mcp.CallToolResult, string) {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}})
	require.NoError(t, err, "should not return system error")
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return result, text.Text
}

func TestExtractTool(t *testing.T) {
	t.Parallel()
	handler := createExtractHandler(newPipeline(t))

	result, text := call(t, handler, map[string]interface{}{"language": "python", "source": pySource})
	require.False(t, result.IsError, text)

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Len(t, resp.Functions, 1)
	assert.Equal(t, "add", resp.Functions[0].Identifier)
	assert.Equal(t, "Adds two numbers together.", resp.Functions[0].Docstring)
	assert.Empty(t, resp.Lines)
	assert.Equal(t, "extract", resp.Metadata.Source)
}

func TestExtractTool_Lines(t *testing.T) {
	t.Parallel()
	handler := createExtractHandler(newPipeline(t))

	src := "def walk(items):\n    total = 0\n    # Sum every item in the list.\n    for item in items:\n        total += item\n    return total\n"
	result, text := call(t, handler, map[string]interface{}{"language": "python", "source": src, "mode": ModeLines})
	require.False(t, result.IsError, text)

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Empty(t, resp.Functions)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "Sum every item in the list.", resp.Lines[0].Comment)
}

func TestExtractTool_Errors(t *testing.T) {
	t.Parallel()
	handler := createExtractHandler(newPipeline(t))

	cases := map[string]interface{}{
		"invalid shape":    "not a map",
		"missing source":   map[string]interface{}{"language": "python"},
		"unknown language": map[string]interface{}{"language": "cobol", "source": "x"},
		"unknown mode":     map[string]interface{}{"language": "python", "source": pySource, "mode": "all"},
		"malformed source": map[string]interface{}{"language": "python", "source": "def broken(:\n    pass\n"},
	}
	for name, args := range cases {
		result, _ := call(t, handler, args)
		assert.True(t, result.IsError, name)
	}
}

func TestNormalizeTool(t *testing.T) {
	t.Parallel()
	handler := createNormalizeHandler(newPipeline(t).Normalizer)

	result, text := call(t, handler, map[string]interface{}{
		"language":   "python",
		"text":       "Adds two numbers together.\n\nArgs:\n    a: The first operand value.\n    b: The second operand value.\n",
		"parameters": []interface{}{"a", "b"},
	})
	require.False(t, result.IsError, text)

	var rec docstring.Record
	require.NoError(t, json.Unmarshal([]byte(text), &rec))
	assert.Equal(t, "google", rec.Style)
	require.Contains(t, rec.Parameters, "a")
	require.NotNil(t, rec.Parameters["a"].Docstring)
	assert.Equal(t, "The first operand value.", *rec.Parameters["a"].Docstring)

	result, text = call(t, handler, map[string]interface{}{
		"language": "java",
		"text":     "/**\n * Opens the stream for reading.\n * @param path the file to open\n */",
	})
	require.False(t, result.IsError, text)
	require.NoError(t, json.Unmarshal([]byte(text), &rec))
	assert.Equal(t, "javadoc", rec.Style)
	assert.Contains(t, rec.OtherParams, "path")

	result, _ = call(t, handler, map[string]interface{}{"language": "python", "text": "   "})
	assert.True(t, result.IsError)

	assert.Equal(t, "Args:\n    a: x", stripComment("Args:\n    a: x"))
	assert.Equal(t, "Frees memory.", stripComment("/* Frees memory. */"))
}

func seedVault(t *testing.T) (*Vault, *sql.DB) {
	t.Helper()
	db := storage.NewTestDB(t)
	writer := storage.NewRecordWriter(db)
	require.NoError(t, writer.ReplaceFile(&storage.FileEntry{
		FilePath: "zoo.py", Language: "python", FileHash: "h1", Status: storage.FileStatusMined,
	}, []storage.StoredRecord{
		{Kind: "class", Language: "python", Identifier: "Animal", Docstring: "Any living creature in the zoo.", Payload: []byte(`{"superclasses":[]}`)},
		{Kind: "class", Language: "python", Identifier: "Dog", Docstring: "A loyal animal that barks.", Payload: []byte(`{"superclasses":["Animal"]}`)},
		{Kind: "function", Language: "python", Identifier: "Dog.bark", Docstring: "Makes a loud noise.", Payload: []byte(`{"code":"def bark(self): pass"}`)},
	}, nil))
	require.NoError(t, writer.WriteRun(&storage.Run{ID: "run-1", RootDir: "/zoo", StartedAt: time.Now()}))

	v := NewVault(db)
	t.Cleanup(func() { v.Close() })
	return v, db
}

func TestSearchTool(t *testing.T) {
	t.Parallel()
	v, db := seedVault(t)
	handler := createSearchHandler(v)

	result, text := call(t, handler, map[string]interface{}{"query": "noise"})
	require.False(t, result.IsError, text)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Equal(t, 1, resp.TotalReturned)
	assert.Equal(t, "Dog.bark", resp.Results[0].Identifier)

	result, text = call(t, handler, map[string]interface{}{"query": "zoo OR loyal", "kind": "class", "limit": float64(5)})
	require.False(t, result.IsError, text)
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, 2, resp.TotalReturned)

	// A newer run triggers a rebuild.
	writer := storage.NewRecordWriter(db)
	require.NoError(t, writer.ReplaceFile(&storage.FileEntry{
		FilePath: "cat.py", Language: "python", FileHash: "h2", Status: storage.FileStatusMined,
	}, []storage.StoredRecord{
		{Kind: "function", Language: "python", Identifier: "purr", Docstring: "Makes a soft noise.", Payload: []byte(`{}`)},
	}, nil))
	require.NoError(t, writer.WriteRun(&storage.Run{ID: "run-2", RootDir: "/zoo", StartedAt: time.Now().Add(time.Second)}))

	_, text = call(t, handler, map[string]interface{}{"query": "noise"})
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, 2, resp.TotalReturned)

	result, _ = call(t, handler, map[string]interface{}{})
	assert.True(t, result.IsError)
}

func TestHierarchyTool(t *testing.T) {
	t.Parallel()
	v, _ := seedVault(t)
	handler := createHierarchyHandler(v)

	result, text := call(t, handler, map[string]interface{}{"class": "Animal", "direction": DirectionDescendants})
	require.False(t, result.IsError, text)

	var resp HierarchyResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "python:Dog", resp.Results[0].Class.ID)

	result, text = call(t, handler, map[string]interface{}{"class": "Dog"})
	require.False(t, result.IsError, text)
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, DirectionAncestors, resp.Direction)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "python:Animal", resp.Results[0].Class.ID)

	result, _ = call(t, handler, map[string]interface{}{"class": "Unicorn"})
	assert.True(t, result.IsError)
}

func TestQueryTool(t *testing.T) {
	t.Parallel()
	_, db := seedVault(t)
	handler := createQueryHandler(query.NewExecutor(db))

	result, text := call(t, handler, map[string]interface{}{"query": map[string]interface{}{
		"from":         "records",
		"groupBy":      []interface{}{"kind"},
		"aggregations": []interface{}{map[string]interface{}{"function": "COUNT", "alias": "n"}},
		"orderBy":      []interface{}{map[string]interface{}{"field": "kind"}},
	}})
	require.False(t, result.IsError, text)

	var res query.Result
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.Equal(t, []string{"kind", "n"}, res.Columns)
	assert.Equal(t, [][]interface{}{{"class", float64(2)}, {"function", float64(1)}}, res.Rows)

	result, text = call(t, handler, map[string]interface{}{
		"query": `{"from":"records","fields":["identifier"],"where":{"field":"kind","operator":"=","value":"function"}}`,
	})
	require.False(t, result.IsError, text)
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.Equal(t, [][]interface{}{{"Dog.bark"}}, res.Rows)

	result, text = call(t, handler, map[string]interface{}{"query": map[string]interface{}{"from": "secrets"}})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "unknown table")

	result, _ = call(t, handler, map[string]interface{}{"query": "{not json"})
	assert.True(t, result.IsError)

	result, _ = call(t, handler, map[string]interface{}{})
	assert.True(t, result.IsError)
}

func TestNewMCPServer(t *testing.T) {
	t.Parallel()

	s := NewMCPServer("test", newPipeline(t), nil)
	require.NotNil(t, s)
	assert.Nil(t, s.vault)
	assert.NoError(t, s.Close())
}

package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docvault/internal/storage"
)

// Test Plan for query:
// - Conditions round-trip through JSON in all four shapes
// - Build emits placeholders for values and applies the default limit
// - Aggregations render COUNT(*), DISTINCT and aliases with group by
// - IN, BETWEEN, NOT and null checks translate to SQL
// - Validate reports unknown tables, columns, aliases, operators and values
// - Injection attempts through identifiers are rejected before SQL is built
// - Executor runs grouped counts against a seeded vault

func TestCondition_JSON(t *testing.T) {
	t.Parallel()

	raw := `{"and":[{"field":"kind","operator":"=","value":"class"},{"or":[{"field":"language","operator":"IN","value":["python","ruby"]},{"not":{"field":"docstring","operator":"IS NULL"}}]}]}`

	var c Condition
	require.NoError(t, c.UnmarshalJSON([]byte(raw)))
	require.Len(t, c.And, 2)
	assert.Equal(t, "kind", c.And[0].Compare.Field)
	require.Len(t, c.And[1].Or, 2)
	require.NotNil(t, c.And[1].Or[1].Not)
	assert.Equal(t, OpIsNull, c.And[1].Or[1].Not.Compare.Operator)

	out, err := c.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	_, err = Condition{}.MarshalJSON()
	require.Error(t, err)
}

func TestBuild_Simple(t *testing.T) {
	t.Parallel()

	where := Field("language", OpEqual, "python")
	sql, args, err := Build(&Query{
		From:    "records",
		Fields:  []string{"identifier", "file_path"},
		Where:   &where,
		OrderBy: []Order{{Field: "identifier"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT identifier, file_path FROM records WHERE language = ? ORDER BY identifier ASC LIMIT 100", sql)
	assert.Equal(t, []interface{}{"python"}, args)
}

func TestBuild_Aggregations(t *testing.T) {
	t.Parallel()

	having := Field("n", OpGreater, 1)
	sql, args, err := Build(&Query{
		From:    "records",
		GroupBy: []string{"language", "kind"},
		Aggregations: []Aggregation{
			{Function: FuncCount, Alias: "n"},
			{Function: FuncCount, Field: "file_path", Alias: "files", Distinct: true},
			{Function: FuncMax, Field: "end_row", Alias: "last_row", Distinct: true},
		},
		Having:  &having,
		OrderBy: []Order{{Field: "n", Direction: Desc}},
		Limit:   5,
		Offset:  10,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT language, kind, COUNT(*) AS n, COUNT(DISTINCT file_path) AS files, MAX(end_row) AS last_row "+
			"FROM records GROUP BY language, kind HAVING n > ? ORDER BY n DESC LIMIT 5 OFFSET 10", sql)
	assert.Equal(t, []interface{}{1}, args)
}

func TestBuild_Operators(t *testing.T) {
	t.Parallel()

	where := All(
		Field("language", OpIn, []string{"go", "rust"}),
		Field("start_row", OpBetween, []interface{}{10, 20}),
		Negate(Field("identifier", OpLike, "test%")),
		Field("docstring", OpIsNotNull, nil),
	)
	sql, args, err := Build(&Query{From: "records", Where: &where, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM records WHERE (language IN (?,?) AND (start_row >= ? AND start_row <= ?) "+
			"AND NOT (identifier LIKE ?) AND docstring IS NOT NULL) LIMIT 1", sql)
	assert.Equal(t, []interface{}{"go", "rust", 10, 20, "test%"}, args)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	var verrs ValidationErrors

	err := Validate(&Query{})
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "from", verrs[0].Field)

	err = Validate(&Query{From: "chunks"})
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs[0].Hint, "line_records")

	empty := All()
	bad := Any(
		Field("nope", OpEqual, 1),
		Field("kind", Operator("~"), "x"),
		Field("kind", OpEqual, nil),
		Field("kind", OpIsNull, "x"),
		Field("start_row", OpBetween, []interface{}{1}),
		Field("kind", OpIn, []interface{}{}),
		empty,
	)
	err = Validate(&Query{
		From:         "records",
		Fields:       []string{"payload"},
		Where:        &bad,
		Aggregations: []Aggregation{{Function: "MEDIAN", Field: "start_row", Alias: "kind"}, {Function: FuncSum, Alias: "total"}},
		OrderBy:      []Order{{Field: "missing", Direction: "SIDEWAYS"}},
		Limit:        5000,
		Offset:       -1,
	})
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, len(verrs))
	for i := range verrs {
		fields[i] = verrs[i].Field
	}
	assert.ElementsMatch(t, []string{
		"fields[0]",
		"aggregations[0].function",
		"aggregations[0].alias",
		"aggregations[1].field",
		"where.or[0].field",
		"where.or[1].operator",
		"where.or[2].value",
		"where.or[3].value",
		"where.or[4].value",
		"where.or[5].value",
		"where.or[6]",
		"orderBy[0].direction",
		"orderBy[0].field",
		"limit",
		"offset",
	}, fields)
	assert.Contains(t, err.Error(), "15 validation errors")
}

func TestValidate_Having(t *testing.T) {
	t.Parallel()

	having := Field("n", OpGreater, 1)
	err := Validate(&Query{From: "files", Having: &having})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "having needs groupBy")

	err = Validate(&Query{
		From:         "files",
		GroupBy:      []string{"status"},
		Aggregations: []Aggregation{{Function: FuncCount, Alias: "n"}},
		Having:       &having,
	})
	require.NoError(t, err)
}

func TestValidate_RejectsInjection(t *testing.T) {
	t.Parallel()

	attempts := []*Query{
		{From: "records; DROP TABLE files"},
		{From: "records", Fields: []string{"identifier FROM files --"}},
		{From: "records", GroupBy: []string{"1=1"}},
		{From: "records", Aggregations: []Aggregation{{Function: FuncCount, Alias: "n FROM files --"}}},
		{From: "records", Aggregations: []Aggregation{{Function: FuncSum, Field: "start_row) FROM files --", Alias: "n"}}},
		{From: "records", OrderBy: []Order{{Field: "(SELECT 1)"}}},
		{From: "records", Aggregations: []Aggregation{{Function: FuncCount, Alias: "ñ"}}},
	}
	for i, q := range attempts {
		_, _, err := Build(q)
		assert.Error(t, err, "attempt %d", i)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	q, err := Parse([]byte(`{"from":"files","where":{"field":"status","operator":"=","value":"parse_error"},"limit":3}`))
	require.NoError(t, err)
	assert.Equal(t, "files", q.From)
	assert.Equal(t, 3, q.Limit)
	require.NotNil(t, q.Where)
	assert.Equal(t, "parse_error", q.Where.Compare.Value)

	_, err = Parse([]byte(`{"from":`))
	require.Error(t, err)
}

func TestExecutor(t *testing.T) {
	t.Parallel()

	db := storage.NewTestDB(t)
	writer := storage.NewRecordWriter(db)
	require.NoError(t, writer.ReplaceFile(&storage.FileEntry{
		FilePath: "a.py", Language: "python", FileHash: "h1", Status: storage.FileStatusMined, MinedAt: time.Now(),
	}, []storage.StoredRecord{
		{Kind: "function", Language: "python", Identifier: "f", Docstring: "Does f things.", Payload: []byte(`{}`)},
		{Kind: "function", Language: "python", Identifier: "g", Docstring: "Does g things.", Payload: []byte(`{}`)},
		{Kind: "class", Language: "python", Identifier: "C", Docstring: "Holds state.", Payload: []byte(`{}`)},
	}, nil))
	require.NoError(t, writer.ReplaceFile(&storage.FileEntry{
		FilePath: "b.rb", Language: "ruby", FileHash: "h2", Status: storage.FileStatusMined, MinedAt: time.Now(),
	}, []storage.StoredRecord{
		{Kind: "function", Language: "ruby", Identifier: "h", Docstring: "Does h things.", Payload: []byte(`{}`)},
	}, nil))

	exec := NewExecutor(db)
	res, err := exec.Execute(context.Background(), &Query{
		From:         "records",
		GroupBy:      []string{"language", "kind"},
		Aggregations: []Aggregation{{Function: FuncCount, Alias: "n"}},
		OrderBy:      []Order{{Field: "n", Direction: Desc}, {Field: "language"}, {Field: "kind"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"language", "kind", "n"}, res.Columns)
	require.Equal(t, 3, res.RowCount)
	assert.Equal(t, []interface{}{"python", "function", int64(2)}, res.Rows[0])
	assert.Equal(t, []interface{}{"python", "class", int64(1)}, res.Rows[1])
	assert.Equal(t, []interface{}{"ruby", "function", int64(1)}, res.Rows[2])
	assert.Contains(t, res.Metadata.SQL, "GROUP BY language, kind")

	where := Field("identifier", OpIn, []string{"f", "h"})
	res, err = exec.Execute(context.Background(), &Query{From: "records", Fields: []string{"identifier"}, Where: &where, OrderBy: []Order{{Field: "identifier"}}})
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"f"}, {"h"}}, res.Rows)

	_, err = exec.Execute(context.Background(), &Query{From: "nowhere"})
	require.Error(t, err)
}

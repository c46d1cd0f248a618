package query

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Result holds the rows of one query.
type Result struct {
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"row_count"`
	Metadata Metadata        `json:"metadata"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	TookMs int64  `json:"took_ms"`
	SQL    string `json:"sql"`
}

// Executor runs queries against a vault connection it does not own.
type Executor struct {
	db *sql.DB
}

// NewExecutor creates an Executor over db.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// Execute builds and runs q. TEXT values are returned as strings.
func (e *Executor) Execute(ctx context.Context, q *Query) (*Result, error) {
	query, args, err := Build(q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get column names: %w", err)
	}

	data := make([][]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &Result{
		Columns:  columns,
		Rows:     data,
		RowCount: len(data),
		Metadata: Metadata{
			TookMs: time.Since(start).Milliseconds(),
			SQL:    query,
		},
	}, nil
}

// Package query runs JSON-described statistics queries against the vault.
// A Query names one vault table and optionally filters, groups, aggregates
// and orders its rows; Build turns it into parameterized SQL with squirrel
// after checking every identifier against the vault schema.
package query

import (
	"encoding/json"
	"fmt"
)

// Operator is a comparison in a field condition.
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpLike         Operator = "LIKE"
	OpNotLike      Operator = "NOT LIKE"
	OpIn           Operator = "IN"
	OpNotIn        Operator = "NOT IN"
	OpIsNull       Operator = "IS NULL"
	OpIsNotNull    Operator = "IS NOT NULL"
	OpBetween      Operator = "BETWEEN"
)

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
		OpLike, OpNotLike, OpIn, OpNotIn, OpIsNull, OpIsNotNull, OpBetween:
		return true
	}
	return false
}

// TakesValue is false for the null checks.
func (op Operator) TakesValue() bool {
	return op != OpIsNull && op != OpIsNotNull
}

// Function is an aggregate function.
type Function string

const (
	FuncCount Function = "COUNT"
	FuncSum   Function = "SUM"
	FuncAvg   Function = "AVG"
	FuncMin   Function = "MIN"
	FuncMax   Function = "MAX"
)

// Valid reports whether f is a known aggregate.
func (f Function) Valid() bool {
	switch f {
	case FuncCount, FuncSum, FuncAvg, FuncMin, FuncMax:
		return true
	}
	return false
}

// Direction is a sort order.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Valid reports whether d is ASC or DESC. An empty direction means ASC.
func (d Direction) Valid() bool {
	return d == "" || d == Asc || d == Desc
}

// Comparison tests one column.
type Comparison struct {
	Field    string      `json:"field"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value,omitempty"`
}

// Condition is a comparison or a logical combination of conditions.
// Exactly one of its members is set.
type Condition struct {
	Compare *Comparison `json:"-"`
	And     []Condition `json:"-"`
	Or      []Condition `json:"-"`
	Not     *Condition  `json:"-"`
}

// Field builds a comparison condition.
func Field(field string, op Operator, value interface{}) Condition {
	return Condition{Compare: &Comparison{Field: field, Operator: op, Value: value}}
}

// All joins conditions with AND.
func All(conds ...Condition) Condition { return Condition{And: conds} }

// Any joins conditions with OR.
func Any(conds ...Condition) Condition { return Condition{Or: conds} }

// Negate wraps a condition in NOT.
func Negate(cond Condition) Condition { return Condition{Not: &cond} }

func (c Condition) MarshalJSON() ([]byte, error) {
	switch {
	case c.Compare != nil:
		return json.Marshal(c.Compare)
	case c.And != nil:
		return json.Marshal(map[string][]Condition{"and": c.And})
	case c.Or != nil:
		return json.Marshal(map[string][]Condition{"or": c.Or})
	case c.Not != nil:
		return json.Marshal(map[string]*Condition{"not": c.Not})
	}
	return nil, fmt.Errorf("empty condition")
}

// UnmarshalJSON picks the member from the object's keys: "and", "or" and
// "not" are logical, anything else is a comparison.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("condition must be a JSON object: %w", err)
	}

	if raw, ok := keys["and"]; ok {
		return unmarshalList(raw, &c.And, "and")
	}
	if raw, ok := keys["or"]; ok {
		return unmarshalList(raw, &c.Or, "or")
	}
	if raw, ok := keys["not"]; ok {
		var inner Condition
		if err := json.Unmarshal(raw, &inner); err != nil {
			return fmt.Errorf("invalid not condition: %w", err)
		}
		c.Not = &inner
		return nil
	}

	var cmp Comparison
	if err := json.Unmarshal(data, &cmp); err != nil {
		return fmt.Errorf("invalid comparison: %w", err)
	}
	c.Compare = &cmp
	return nil
}

func unmarshalList(raw json.RawMessage, dst *[]Condition, name string) error {
	var list []Condition
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("invalid %s condition: %w", name, err)
	}
	if list == nil {
		list = []Condition{}
	}
	*dst = list
	return nil
}

// Aggregation computes one aggregate column.
type Aggregation struct {
	Function Function `json:"function"`
	Field    string   `json:"field,omitempty"` // empty only for COUNT(*)
	Alias    string   `json:"alias"`
	Distinct bool     `json:"distinct,omitempty"`
}

// Order sorts by a column, group-by field or aggregation alias.
type Order struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction,omitempty"`
}

// Query is a single-table SELECT.
type Query struct {
	From         string        `json:"from"`
	Fields       []string      `json:"fields,omitempty"` // ignored when aggregating
	Where        *Condition    `json:"where,omitempty"`
	GroupBy      []string      `json:"groupBy,omitempty"`
	Aggregations []Aggregation `json:"aggregations,omitempty"`
	Having       *Condition    `json:"having,omitempty"`
	OrderBy      []Order       `json:"orderBy,omitempty"`
	Limit        int           `json:"limit,omitempty"`
	Offset       int           `json:"offset,omitempty"`
}

// Parse decodes a JSON query.
func Parse(data []byte) (*Query, error) {
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	return &q, nil
}

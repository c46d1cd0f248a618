package query

import (
	"fmt"
	"reflect"

	sq "github.com/Masterminds/squirrel"
)

// Build validates q and translates it into SQL with ? placeholders.
func Build(q *Query) (string, []interface{}, error) {
	if err := Validate(q); err != nil {
		return "", nil, fmt.Errorf("query validation failed: %w", err)
	}

	columns := q.Fields
	if len(q.Aggregations) > 0 {
		columns = append([]string{}, q.GroupBy...)
		for _, agg := range q.Aggregations {
			columns = append(columns, aggregateExpr(agg))
		}
	}
	if len(columns) == 0 {
		columns = []string{"*"}
	}

	builder := sq.Select(columns...).From(q.From)

	if q.Where != nil {
		where, err := condition(*q.Where)
		if err != nil {
			return "", nil, fmt.Errorf("failed to build WHERE clause: %w", err)
		}
		builder = builder.Where(where)
	}
	if len(q.GroupBy) > 0 {
		builder = builder.GroupBy(q.GroupBy...)
	}
	if q.Having != nil {
		having, err := condition(*q.Having)
		if err != nil {
			return "", nil, fmt.Errorf("failed to build HAVING clause: %w", err)
		}
		builder = builder.Having(having)
	}
	for _, o := range q.OrderBy {
		dir := o.Direction
		if dir == "" {
			dir = Asc
		}
		builder = builder.OrderBy(fmt.Sprintf("%s %s", o.Field, dir))
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	builder = builder.Limit(uint64(limit))
	if q.Offset > 0 {
		builder = builder.Offset(uint64(q.Offset))
	}

	sql, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate SQL: %w", err)
	}
	return sql, args, nil
}

func condition(c Condition) (sq.Sqlizer, error) {
	switch {
	case c.Compare != nil:
		return comparison(c.Compare)
	case c.And != nil:
		parts, err := conditions(c.And)
		return sq.And(parts), err
	case c.Or != nil:
		parts, err := conditions(c.Or)
		return sq.Or(parts), err
	case c.Not != nil:
		inner, err := condition(*c.Not)
		if err != nil {
			return nil, err
		}
		return sq.Expr("NOT (?)", inner), nil
	}
	return nil, fmt.Errorf("empty condition")
}

func conditions(list []Condition) ([]sq.Sqlizer, error) {
	out := make([]sq.Sqlizer, 0, len(list))
	for _, c := range list {
		part, err := condition(c)
		if err != nil {
			return nil, err
		}
		out = append(out, part)
	}
	return out, nil
}

func comparison(c *Comparison) (sq.Sqlizer, error) {
	field, value := c.Field, c.Value

	switch c.Operator {
	case OpEqual:
		return sq.Eq{field: value}, nil
	case OpNotEqual:
		return sq.NotEq{field: value}, nil
	case OpGreater:
		return sq.Gt{field: value}, nil
	case OpGreaterEqual:
		return sq.GtOrEq{field: value}, nil
	case OpLess:
		return sq.Lt{field: value}, nil
	case OpLessEqual:
		return sq.LtOrEq{field: value}, nil
	case OpLike:
		return sq.Like{field: value}, nil
	case OpNotLike:
		return sq.NotLike{field: value}, nil
	case OpIn, OpNotIn:
		vals, ok := asList(value)
		if !ok {
			return nil, fmt.Errorf("%s requires an array", c.Operator)
		}
		if c.Operator == OpIn {
			return sq.Eq{field: vals}, nil
		}
		return sq.NotEq{field: vals}, nil
	case OpIsNull:
		return sq.Eq{field: nil}, nil
	case OpIsNotNull:
		return sq.NotEq{field: nil}, nil
	case OpBetween:
		vals, ok := asList(value)
		if !ok || len(vals) != 2 {
			return nil, fmt.Errorf("BETWEEN requires an array of two values")
		}
		return sq.And{sq.GtOrEq{field: vals[0]}, sq.LtOrEq{field: vals[1]}}, nil
	}
	return nil, fmt.Errorf("unknown operator: %s", c.Operator)
}

// aggregateExpr renders "FUNC(field) AS alias". Field and alias have been
// checked by Validate.
func aggregateExpr(agg Aggregation) string {
	arg := agg.Field
	if arg == "" {
		arg = "*"
	} else if agg.Distinct && agg.Function != FuncMin && agg.Function != FuncMax {
		arg = "DISTINCT " + arg
	}
	return fmt.Sprintf("%s(%s) AS %s", agg.Function, arg, agg.Alias)
}

// asList accepts any slice, so Go callers need not build []interface{}.
func asList(v interface{}) ([]interface{}, bool) {
	if list, ok := v.([]interface{}); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

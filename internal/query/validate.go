package query

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// DefaultLimit applies when a query sets no limit.
	DefaultLimit = 100
	// MaxLimit bounds the rows a query may return.
	MaxLimit = 1000
)

// ValidationError describes one invalid part of a query.
type ValidationError struct {
	Field   string // path within the query, e.g. "where.field"
	Value   string
	Message string
	Hint    string
}

func (e *ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (value: %q). %s", e.Field, e.Message, e.Value, e.Hint)
	}
	return fmt.Sprintf("%s: %s (value: %q)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every problem found in a query.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 1 {
		return ve[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(ve))
	for i := range ve {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, ve[i].Error())
	}
	return sb.String()
}

func (ve *ValidationErrors) add(field, value, message, hint string) {
	*ve = append(*ve, ValidationError{Field: field, Value: value, Message: message, Hint: hint})
}

// Validate checks every table, column, alias and operator in q. Build
// relies on it: identifiers are interpolated into SQL only after passing.
func Validate(q *Query) error {
	var errs ValidationErrors

	if q.From == "" {
		errs.add("from", "", "table is required", tableHint())
		return errs
	}
	if Columns(q.From) == nil {
		errs.add("from", q.From, "unknown table", tableHint())
		return errs
	}

	column := func(path, name string) {
		if !hasColumn(q.From, name) {
			errs.add(path, name, "unknown column in table "+q.From, columnHint(q.From))
		}
	}

	for i, f := range q.Fields {
		if f != "*" {
			column(fmt.Sprintf("fields[%d]", i), f)
		}
	}
	for i, f := range q.GroupBy {
		column(fmt.Sprintf("groupBy[%d]", i), f)
	}

	// HAVING and ORDER BY may also name aggregation aliases.
	available := make(map[string]bool)
	for _, c := range Columns(q.From) {
		available[c] = true
	}

	aliases := make(map[string]bool)
	for i, agg := range q.Aggregations {
		path := fmt.Sprintf("aggregations[%d]", i)
		if !agg.Function.Valid() {
			errs.add(path+".function", string(agg.Function), "invalid aggregate function", "Valid functions: COUNT, SUM, AVG, MIN, MAX")
		}
		if agg.Field == "" {
			if agg.Function != FuncCount {
				errs.add(path+".field", "", fmt.Sprintf("%s requires a field", agg.Function), columnHint(q.From))
			}
		} else {
			column(path+".field", agg.Field)
		}
		switch {
		case !isIdentifier(agg.Alias):
			errs.add(path+".alias", agg.Alias, "alias must be a plain identifier", "Use letters, digits and underscores")
		case aliases[agg.Alias] || hasColumn(q.From, agg.Alias):
			errs.add(path+".alias", agg.Alias, "alias collides with another column", "Pick a unique alias")
		default:
			aliases[agg.Alias] = true
			available[agg.Alias] = true
		}
	}

	if q.Where != nil {
		validateCondition(*q.Where, "where", func(name string) bool { return hasColumn(q.From, name) }, q.From, &errs)
	}
	if q.Having != nil {
		if len(q.GroupBy) == 0 && len(q.Aggregations) == 0 {
			errs.add("having", "", "having needs groupBy or aggregations", "Use where to filter rows")
		}
		validateCondition(*q.Having, "having", func(name string) bool { return available[name] }, q.From, &errs)
	}

	for i, o := range q.OrderBy {
		path := fmt.Sprintf("orderBy[%d]", i)
		if !o.Direction.Valid() {
			errs.add(path+".direction", string(o.Direction), "invalid sort direction", "Valid directions: ASC, DESC")
		}
		if !available[o.Field] {
			errs.add(path+".field", o.Field, "unknown column or alias", columnHint(q.From))
		}
	}

	if q.Limit < 0 || q.Limit > MaxLimit {
		errs.add("limit", fmt.Sprint(q.Limit), fmt.Sprintf("limit must be between 1 and %d", MaxLimit), "Omit limit for the default")
	}
	if q.Offset < 0 {
		errs.add("offset", fmt.Sprint(q.Offset), "offset must be non-negative", "")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateCondition(c Condition, path string, known func(string) bool, table string, errs *ValidationErrors) {
	switch {
	case c.Compare != nil:
		cmp := c.Compare
		if !cmp.Operator.Valid() {
			errs.add(path+".operator", string(cmp.Operator), "invalid comparison operator",
				"Valid operators: =, !=, >, >=, <, <=, LIKE, NOT LIKE, IN, NOT IN, IS NULL, IS NOT NULL, BETWEEN")
			return
		}
		if !known(cmp.Field) {
			errs.add(path+".field", cmp.Field, "unknown column in table "+table, columnHint(table))
		}
		switch {
		case cmp.Operator.TakesValue() && cmp.Value == nil:
			errs.add(path+".value", "", fmt.Sprintf("operator %s requires a value", cmp.Operator), "")
		case !cmp.Operator.TakesValue() && cmp.Value != nil:
			errs.add(path+".value", fmt.Sprint(cmp.Value), fmt.Sprintf("operator %s does not take a value", cmp.Operator), "Remove the value")
		case cmp.Operator == OpBetween:
			if vals, ok := asList(cmp.Value); !ok || len(vals) != 2 {
				errs.add(path+".value", fmt.Sprint(cmp.Value), "BETWEEN requires an array of two values", "")
			}
		case cmp.Operator == OpIn || cmp.Operator == OpNotIn:
			if vals, ok := asList(cmp.Value); !ok || len(vals) == 0 {
				errs.add(path+".value", fmt.Sprint(cmp.Value), fmt.Sprintf("%s requires a non-empty array", cmp.Operator), "")
			}
		}
	case c.And != nil:
		validateList(c.And, path+".and", known, table, errs)
	case c.Or != nil:
		validateList(c.Or, path+".or", known, table, errs)
	case c.Not != nil:
		validateCondition(*c.Not, path+".not", known, table, errs)
	default:
		errs.add(path, "", "empty condition", "Use a comparison or and/or/not")
	}
}

func validateList(list []Condition, path string, known func(string) bool, table string, errs *ValidationErrors) {
	if len(list) == 0 {
		errs.add(path, "", "logical condition needs at least one member", "")
		return
	}
	for i, c := range list {
		validateCondition(c, fmt.Sprintf("%s[%d]", path, i), known, table, errs)
	}
}

// isIdentifier accepts an ASCII letter or underscore followed by letters,
// digits and underscores.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

package kuery

import (
	"fmt"
	"strings"
)

// RangeOp is a KQL comparison operator.
type RangeOp string

const (
	OpLess         RangeOp = "<"
	OpLessEqual    RangeOp = "<="
	OpGreater      RangeOp = ">"
	OpGreaterEqual RangeOp = ">="
)

// rangeOps maps accepted operator spellings to RangeOp constants.
var rangeOps = map[string]RangeOp{
	"<":   OpLess,
	"lt":  OpLess,
	"<=":  OpLessEqual,
	"lte": OpLessEqual,
	">":   OpGreater,
	"gt":  OpGreater,
	">=":  OpGreaterEqual,
	"gte": OpGreaterEqual,
}

// OpError reports an operator that cannot be rendered.
type OpError struct {
	Op string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("unknown range operator %q", e.Op)
}

// ParseRangeOp accepts both symbolic (<, >=) and named (lt, gte) operators.
func ParseRangeOp(s string) (RangeOp, error) {
	if op, ok := rangeOps[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return "", &OpError{Op: s}
}

// Match returns a "field:value" clause with the value escaped as a bare literal.
func Match(field, value string) string {
	return field + ":" + EscapeKuery(value)
}

// MatchPhrase returns a "field:"value"" clause with the value quoted.
func MatchPhrase(field, value string) string {
	return field + `:"` + EscapeQuotes(value) + `"`
}

// Exists returns a clause matching documents where field has any value.
func Exists(field string) string {
	return field + ":*"
}

// AnyOf returns a clause matching any of values in field, e.g. "field:(a or b)".
// A single value is rendered as Match; no values render an empty clause.
func AnyOf(field string, values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return Match(field, values[0])
	}

	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeKuery(v)
	}
	return field + ":(" + strings.Join(escaped, " or ") + ")"
}

// Range returns a comparison clause such as "field >= value".
func Range(field string, op RangeOp, value string) string {
	return field + " " + string(op) + " " + EscapeKuery(value)
}

// And joins non-empty clauses with "and".
func And(clauses ...string) string {
	return join("and", clauses)
}

// Or joins non-empty clauses with "or".
func Or(clauses ...string) string {
	return join("or", clauses)
}

// Not negates a clause. An empty clause stays empty.
func Not(clause string) string {
	if clause == "" {
		return ""
	}
	return "not (" + clause + ")"
}

// join wraps each clause in parentheses when more than one is present so
// that mixed and/or groups keep their precedence.
func join(op string, clauses []string) string {
	nonEmpty := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}

	switch len(nonEmpty) {
	case 0:
		return ""
	case 1:
		return nonEmpty[0]
	}

	var sb strings.Builder
	for i, c := range nonEmpty {
		if i > 0 {
			sb.WriteString(" ")
			sb.WriteString(op)
			sb.WriteString(" ")
		}
		sb.WriteString("(")
		sb.WriteString(c)
		sb.WriteString(")")
	}
	return sb.String()
}

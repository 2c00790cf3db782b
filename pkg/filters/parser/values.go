package parser

import (
	"fmt"
	"strings"

	"github.com/controlplane-com/kuery/pkg/filters/config"
)

// valueSeparator splits multi-valued cells for is, one_of and phrase rows.
const valueSeparator = "|"

// ParseError represents an error that occurred while converting a row.
type ParseError struct {
	Line   int
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("line %d: field %q: %s (value: %q)", e.Line, e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("line %d: field %q: %s", e.Line, e.Field, e.Reason)
}

// ConvertRow converts a "field,value[,op]" record to a KQL clause.
// The op defaults to "is". Range ops take the value verbatim; other ops split
// it on "|" into several values.
func ConvertRow(record []string, lineNum int) (string, error) {
	if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
		return "", &ParseError{Line: lineNum, Reason: "empty record"}
	}

	if len(record) > 3 {
		return "", &ParseError{
			Line:   lineNum,
			Field:  strings.TrimSpace(record[0]),
			Reason: fmt.Sprintf("expected at most 3 columns (field, value, op), got %d", len(record)),
		}
	}

	field := strings.TrimSpace(record[0])
	if field == "" {
		return "", &ParseError{Line: lineNum, Reason: "missing field name"}
	}

	op := config.OpIs
	if len(record) == 3 && strings.TrimSpace(record[2]) != "" {
		raw := strings.ToLower(strings.TrimSpace(record[2]))
		parsed, ok := config.ValidOps[raw]
		if !ok {
			return "", &ParseError{
				Line:   lineNum,
				Field:  field,
				Value:  record[2],
				Reason: "unknown op",
			}
		}
		op = parsed
	}

	var value string
	if len(record) >= 2 {
		value = record[1]
	}

	cond := config.Condition{Field: field, Op: op}
	if op.TakesValues() {
		cond.Values = splitValues(value, op)
		if len(cond.Values) == 0 {
			return "", &ParseError{
				Line:   lineNum,
				Field:  field,
				Reason: fmt.Sprintf("op %q needs a value", op),
			}
		}
	}

	return cond.Clause(), nil
}

func splitValues(value string, op config.Op) []string {
	if op.IsRange() {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
		return []string{value}
	}

	var values []string
	for _, v := range strings.Split(value, valueSeparator) {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

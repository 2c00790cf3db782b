// Package kuery escapes values for KQL (Kibana Query Language) expressions and
// assembles simple query clauses from them.
package kuery

import (
	"regexp"
	"strings"
)

// whitespace mirrors the JavaScript \s class: ASCII whitespace, vertical tab,
// Unicode separators and the byte order mark.
const whitespace = `[\s\v\p{Z}\x{FEFF}]`

var (
	quoteChars   = regexp.MustCompile(`[\\"]`)
	specialChars = regexp.MustCompile(`[\\():<>"*]`)
	keywords     = regexp.MustCompile(`(?i)(` + whitespace + `+)(and|or)(` + whitespace + `+)`)
	negation     = regexp.MustCompile(`(?i)not` + whitespace + `+`)
)

// EscapeQuotes backslash-escapes every backslash and double quote so the
// result can be placed between two double quotes.
func EscapeQuotes(value string) string {
	return quoteChars.ReplaceAllString(value, `\${0}`)
}

// EscapeKuery escapes a value so it can be used as a bare (unquoted) KQL
// literal. The passes run in a fixed order and each one works on the output
// of the previous pass.
//
// Keywords are only escaped when surrounded by whitespace, so a leading or
// trailing "and"/"or" is left as is. The function is not idempotent.
func EscapeKuery(value string) string {
	return escapeWhitespace(escapeNot(escapeKeywords(escapeSpecialCharacters(value))))
}

func escapeSpecialCharacters(value string) string {
	return specialChars.ReplaceAllString(value, `\${0}`)
}

// escapeKeywords keeps the original whitespace runs and keyword casing.
func escapeKeywords(value string) string {
	return keywords.ReplaceAllString(value, `${1}\${2}${3}`)
}

func escapeNot(value string) string {
	return negation.ReplaceAllString(value, `\${0}`)
}

func escapeWhitespace(value string) string {
	value = strings.ReplaceAll(value, "\t", `\t`)
	value = strings.ReplaceAll(value, "\r", `\r`)
	return strings.ReplaceAll(value, "\n", `\n`)
}

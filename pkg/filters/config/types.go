package config

// Op represents how a condition's values are matched against its field.
type Op string

const (
	OpIs     Op = "is"
	OpPhrase Op = "phrase"
	OpExists Op = "exists"
	OpOneOf  Op = "one_of"
	OpLt     Op = "lt"
	OpLte    Op = "lte"
	OpGt     Op = "gt"
	OpGte    Op = "gte"
)

// ValidOps maps op strings to Op constants.
var ValidOps = map[string]Op{
	"is":     OpIs,
	"phrase": OpPhrase,
	"exists": OpExists,
	"one_of": OpOneOf,
	"lt":     OpLt,
	"lte":    OpLte,
	"gt":     OpGt,
	"gte":    OpGte,
}

// IsRange returns true if the op is a comparison.
func (o Op) IsRange() bool {
	switch o {
	case OpLt, OpLte, OpGt, OpGte:
		return true
	default:
		return false
	}
}

// TakesValues returns true if the op needs at least one value.
func (o Op) TakesValues() bool {
	return o != OpExists
}

// Combinator joins the conditions of a filter.
type Combinator string

const (
	MatchAny Combinator = "any"
	MatchAll Combinator = "all"
)

// Condition is a single field test within a filter.
type Condition struct {
	Field  string   `yaml:"field" json:"field"`
	Op     Op       `yaml:"op" json:"op"`
	Values []string `yaml:"values" json:"values"`
}

// Filter is a named set of conditions rendered to one KQL query.
type Filter struct {
	Name       string      `yaml:"-" json:"name"`
	Match      Combinator  `yaml:"match" json:"match"`           // "any" (default) or "all"
	Negate     bool        `yaml:"negate" json:"negate"`         // wrap the whole filter in not (...)
	Conditions []Condition `yaml:"conditions" json:"conditions"` // at least one
}

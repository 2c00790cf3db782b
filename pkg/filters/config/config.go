package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/controlplane-com/kuery/pkg/kuery"
	"gopkg.in/yaml.v3"
)

// Registry holds filters keyed by name
type Registry struct {
	filters map[string]*Filter
}

// NewRegistry creates a new empty filter registry
func NewRegistry() *Registry {
	return &Registry{filters: make(map[string]*Filter)}
}

// LoadFromFile parses a YAML file containing named filters
func (r *Registry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read filter file: %w", err)
	}
	return r.Load(data)
}

// Load parses YAML filter definitions and adds them to the registry.
// Nothing is added if any filter is invalid.
func (r *Registry) Load(data []byte) error {
	var filters map[string]*Filter
	if err := yaml.Unmarshal(data, &filters); err != nil {
		return fmt.Errorf("failed to parse filter YAML: %w", err)
	}

	for name, f := range filters {
		if f == nil {
			return fmt.Errorf("filter %q: empty definition", name)
		}
		f.Name = name

		// Apply defaults
		if f.Match == "" {
			f.Match = MatchAny
		}

		if err := f.Validate(); err != nil {
			return err
		}
	}

	for name, f := range filters {
		r.filters[name] = f
	}
	return nil
}

// Get retrieves a filter by name
func (r *Registry) Get(name string) (*Filter, bool) {
	f, ok := r.filters[name]
	return f, ok
}

// List returns a sorted list of filter names in the registry
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the filter can be rendered.
func (f *Filter) Validate() error {
	if f.Match != MatchAny && f.Match != MatchAll {
		return fmt.Errorf("filter %q: unknown match %q (want any or all)", f.Name, f.Match)
	}

	if len(f.Conditions) == 0 {
		return fmt.Errorf("filter %q: no conditions defined", f.Name)
	}

	for i, c := range f.Conditions {
		if c.Field == "" {
			return fmt.Errorf("filter %q: condition %d has empty field", f.Name, i)
		}

		if _, ok := ValidOps[string(c.Op)]; !ok {
			return fmt.Errorf("filter %q: condition %q has unknown op %q", f.Name, c.Field, c.Op)
		}

		if c.Op.TakesValues() && len(c.Values) == 0 {
			return fmt.Errorf("filter %q: condition %q needs at least one value", f.Name, c.Field)
		}

		if c.Op.IsRange() && len(c.Values) != 1 {
			return fmt.Errorf("filter %q: condition %q takes exactly one value, got %d", f.Name, c.Field, len(c.Values))
		}
	}

	return nil
}

// Query renders the filter as a KQL expression.
func (f *Filter) Query() string {
	clauses := make([]string, len(f.Conditions))
	for i, c := range f.Conditions {
		clauses[i] = c.Clause()
	}

	var q string
	if f.Match == MatchAll {
		q = kuery.And(clauses...)
	} else {
		q = kuery.Or(clauses...)
	}

	if f.Negate {
		return kuery.Not(q)
	}
	return q
}

// Clause renders a single condition. The condition is assumed to be valid.
func (c Condition) Clause() string {
	switch c.Op {
	case OpExists:
		return kuery.Exists(c.Field)

	case OpPhrase:
		phrases := make([]string, len(c.Values))
		for i, v := range c.Values {
			phrases[i] = kuery.MatchPhrase(c.Field, v)
		}
		return kuery.Or(phrases...)

	case OpIs, OpOneOf:
		return kuery.AnyOf(c.Field, c.Values)

	default:
		op, err := kuery.ParseRangeOp(string(c.Op))
		if err != nil || len(c.Values) == 0 {
			return ""
		}
		return kuery.Range(c.Field, op, c.Values[0])
	}
}

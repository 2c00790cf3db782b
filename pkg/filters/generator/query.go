package generator

import (
	"github.com/controlplane-com/kuery/pkg/kuery"
)

// QueryGenerator combines clauses into KQL queries with optional batching.
type QueryGenerator struct {
	combinator string
	batchSize  int
	batch      []string
}

// NewQueryGenerator creates a new query generator.
// If batchSize is 1 or less, each clause is emitted on its own.
// If batchSize is greater than 1, clauses are joined with the combinator
// ("and" or anything else for "or") into one query per batch.
func NewQueryGenerator(combinator string, batchSize int) *QueryGenerator {
	if batchSize < 1 {
		batchSize = 1
	}
	if combinator != "and" {
		combinator = "or"
	}

	return &QueryGenerator{
		combinator: combinator,
		batchSize:  batchSize,
		batch:      make([]string, 0, batchSize),
	}
}

// AddClause adds a clause to the generator.
// Returns a query if the batch is full, otherwise returns empty string.
func (g *QueryGenerator) AddClause(clause string) string {
	if clause == "" {
		return ""
	}

	g.batch = append(g.batch, clause)

	if len(g.batch) >= g.batchSize {
		return g.flushBatch()
	}

	return ""
}

// Flush returns any remaining clauses as a query.
// Returns empty string if there are no pending clauses.
func (g *QueryGenerator) Flush() string {
	if len(g.batch) == 0 {
		return ""
	}
	return g.flushBatch()
}

// Count returns the number of clauses currently in the batch.
func (g *QueryGenerator) Count() int {
	return len(g.batch)
}

// Combinator returns the operator used to join clauses.
func (g *QueryGenerator) Combinator() string {
	return g.combinator
}

func (g *QueryGenerator) flushBatch() string {
	var q string
	if g.combinator == "and" {
		q = kuery.And(g.batch...)
	} else {
		q = kuery.Or(g.batch...)
	}

	// Clear the batch
	g.batch = g.batch[:0]

	return q
}

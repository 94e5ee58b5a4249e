// Package vectorstore is the similarity-search capability consumed by the
// retriever. Adapters embed the query text themselves.
package vectorstore

import (
	"context"

	"food-rag-be/pkg/rag/filter"
)

// Query asks for the Limit nearest items to Text that satisfy Where.
type Query struct {
	Text  string
	Where filter.Predicate
	Limit int
}

// Match is one candidate. Distance is store-native: lower is closer.
type Match struct {
	ID       string
	Document string
	Metadata map[string]interface{}
	Distance float64
}

// Record is an item to index.
type Record struct {
	ID       string
	Document string
	Metadata map[string]interface{}
}

type Store interface {
	Query(ctx context.Context, q Query) ([]Match, error)
	// Get returns nil, nil when id is unknown.
	Get(ctx context.Context, id string) (*Match, error)
	Upsert(ctx context.Context, records []Record) error
}

// PredicateSupporter is implemented by stores whose predicate language cannot
// express every atom. Unsupported atoms are evaluated after retrieval.
type PredicateSupporter interface {
	Supports(p filter.Predicate) bool
}

// Split separates p into the part the store can evaluate and the residue
// that must be checked locally.
func Split(s Store, p filter.Predicate) (pushed, residual filter.Predicate) {
	supporter, ok := s.(PredicateSupporter)
	if !ok {
		return p, nil
	}
	if supporter.Supports(p) {
		return p, nil
	}

	var in, out []filter.Predicate
	for _, atom := range filter.Atoms(p) {
		if supporter.Supports(atom) {
			in = append(in, atom)
		} else {
			out = append(out, atom)
		}
	}
	return filter.All(in...), filter.All(out...)
}

// Package filter turns user preferences into the predicate tree understood by
// the vector store query API, and evaluates the same tree locally.
package filter

import (
	"encoding/json"
	"strings"

	"food-rag-be/pkg/store"
)

// Predicate is one node of a conjunctive predicate tree.
// A nil Predicate means "no filter", never "match nothing".
type Predicate interface {
	predicate()
}

// Eq matches when the scalar metadata field equals Value.
type Eq struct {
	Field string
	Value string
}

// Contains matches when the list metadata field holds Value.
type Contains struct {
	Field string
	Value string
}

// Not negates Term.
type Not struct {
	Term Predicate
}

// And holds two or more conjuncts.
type And struct {
	Terms []Predicate
}

func (Eq) predicate()       {}
func (Contains) predicate() {}
func (Not) predicate()      {}
func (And) predicate()      {}

// Criteria is the subset of preferences (plus the request meal type) that
// constrains retrieval. Cuisines and health goals only shape the prompt.
type Criteria struct {
	DietaryType string
	SpiceLevel  string
	MealType    string
	Allergies   []string
}

func FromPreferences(p store.Preferences) Criteria {
	return Criteria{
		DietaryType: p.DietaryType,
		SpiceLevel:  p.SpiceLevel,
		Allergies:   p.Allergies,
	}
}

// ExcludedAllergens returns the normalized, de-duplicated allergen exclusion set.
func (c Criteria) ExcludedAllergens() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(c.Allergies))
	for _, a := range store.CleanList(c.Allergies) {
		key := strings.ToLower(a)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

// Build produces the predicate for c. Constraints are only added for set fields.
// Equality values are normalized the way ingest stores them, so stores that
// compare exactly still match regardless of the caller's casing.
func Build(c Criteria) Predicate {
	var terms []Predicate

	for _, allergen := range c.ExcludedAllergens() {
		terms = append(terms, Not{Term: Contains{Field: store.MetaAllergens, Value: allergen}})
	}
	if dietary := strings.TrimSpace(c.DietaryType); dietary != "" {
		terms = append(terms, Contains{Field: store.MetaTags, Value: dietary})
	}
	if spice := store.NormalizeScalar(c.SpiceLevel); spice != "" {
		terms = append(terms, Eq{Field: store.MetaSpiceLevel, Value: spice})
	}
	if meal := store.NormalizeScalar(c.MealType); meal != "" {
		terms = append(terms, Eq{Field: store.MetaMealType, Value: meal})
	}

	return All(terms...)
}

// All normalizes a list of conjuncts: none is no filter, one is returned bare,
// more are wrapped in And. Nested And terms are flattened.
func All(terms ...Predicate) Predicate {
	flat := make([]Predicate, 0, len(terms))
	for _, t := range terms {
		flat = append(flat, Atoms(t)...)
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return And{Terms: flat}
	}
}

// Atoms returns the top-level conjuncts of p.
func Atoms(p Predicate) []Predicate {
	switch v := p.(type) {
	case nil:
		return nil
	case And:
		var out []Predicate
		for _, t := range v.Terms {
			out = append(out, Atoms(t)...)
		}
		return out
	default:
		return []Predicate{p}
	}
}

// Document renders p in the operator-document form used by Chroma-style
// `where` clauses ({"$and": [...]}, {"field": {"$eq": v}}, ...).
func Document(p Predicate) map[string]interface{} {
	switch v := p.(type) {
	case Eq:
		return map[string]interface{}{v.Field: map[string]interface{}{"$eq": v.Value}}
	case Contains:
		return map[string]interface{}{v.Field: map[string]interface{}{"$contains": v.Value}}
	case Not:
		return map[string]interface{}{"$not": Document(v.Term)}
	case And:
		terms := make([]interface{}, 0, len(v.Terms))
		for _, t := range v.Terms {
			terms = append(terms, Document(t))
		}
		return map[string]interface{}{"$and": terms}
	default:
		return nil
	}
}

// String is handy for logs.
func String(p Predicate) string {
	if p == nil {
		return "<none>"
	}
	b, _ := json.Marshal(Document(p))
	return string(b)
}

package specification

import (
	"food-rag-be/pkg/rag/filter"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchesPredicate restricts food items to those whose metadata satisfies Predicate.
// Comparisons are case-insensitive, like filter.Match.
type MatchesPredicate struct {
	Predicate filter.Predicate
}

func (s MatchesPredicate) Apply(db *gorm.DB) *gorm.DB {
	if s.Predicate == nil {
		return db
	}
	return db.Where(PredicateExpression(s.Predicate))
}

// NearestTo orders by cosine distance to Vector and exposes it as "distance".
type NearestTo struct {
	Vector []float32
}

func (s NearestTo) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Select("id, document, metadata, embedding <=> ? AS distance", pgvector.NewVector(s.Vector)).
		Order("distance ASC")
}

// PredicateExpression translates a predicate tree into a SQL expression over
// the jsonb "metadata" column.
func PredicateExpression(p filter.Predicate) clause.Expression {
	switch v := p.(type) {
	case filter.Eq:
		return clause.Expr{
			SQL:  "LOWER(?) = LOWER(?)",
			Vars: []interface{}{datatypes.JSONQuery("metadata").Extract(v.Field), v.Value},
		}
	case filter.Contains:
		return clause.Expr{
			SQL: "EXISTS (SELECT 1 FROM jsonb_array_elements_text(" +
				"CASE WHEN jsonb_typeof(metadata -> ?) = 'array' THEN metadata -> ? ELSE '[]'::jsonb END" +
				") AS elem WHERE LOWER(elem) = LOWER(?))",
			Vars: []interface{}{v.Field, v.Field, v.Value},
		}
	case filter.Not:
		return clause.Expr{SQL: "NOT (?)", Vars: []interface{}{PredicateExpression(v.Term)}}
	case filter.And:
		exprs := make([]clause.Expression, 0, len(v.Terms))
		for _, t := range v.Terms {
			exprs = append(exprs, PredicateExpression(t))
		}
		return clause.And(exprs...)
	default:
		return clause.Expr{SQL: "TRUE"}
	}
}

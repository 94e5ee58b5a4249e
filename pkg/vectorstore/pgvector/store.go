// Package pgvector stores food items in Postgres and searches them with the
// pgvector cosine distance operator.
package pgvector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"food-rag-be/internal/model"
	"food-rag-be/internal/repository/specification"
	"food-rag-be/pkg/embedding"
	"food-rag-be/pkg/vectorstore"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db       *gorm.DB
	embedder embedding.Provider
}

var _ vectorstore.Store = (*Store)(nil)

func NewStore(db *gorm.DB, embedder embedding.Provider) *Store {
	return &Store{db: db, embedder: embedder}
}

type scoredRow struct {
	Id       string
	Document string
	Metadata datatypes.JSON
	Distance float64
}

func (s *Store) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Query pushes every predicate atom into SQL, so it needs no PredicateSupporter.
func (s *Store) Query(ctx context.Context, q vectorstore.Query) ([]vectorstore.Match, error) {
	vector, err := s.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var rows []scoredRow
	err = s.searchQuery(s.db.WithContext(ctx), vector, q).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	matches := make([]vectorstore.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, vectorstore.Match{
			ID:       row.Id,
			Document: row.Document,
			Metadata: decodeMetadata(row.Metadata),
			Distance: row.Distance,
		})
	}
	return matches, nil
}

func (s *Store) searchQuery(db *gorm.DB, vector []float32, q vectorstore.Query) *gorm.DB {
	return s.applySpecifications(db.Model(&model.FoodItem{}),
		specification.NearestTo{Vector: vector},
		specification.MatchesPredicate{Predicate: q.Where},
		specification.Pagination{Limit: q.Limit},
	)
}

func (s *Store) Get(ctx context.Context, id string) (*vectorstore.Match, error) {
	var m model.FoodItem
	if err := s.applySpecifications(s.db.WithContext(ctx), specification.ByID{ID: id}).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vectorstore.Match{
		ID:       m.Id,
		Document: m.Document,
		Metadata: decodeMetadata(m.Metadata),
	}, nil
}

func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]*model.FoodItem, 0, len(records))
	for _, r := range records {
		vector, err := s.embedder.Embed(ctx, r.Document)
		if err != nil {
			return fmt.Errorf("embed %s: %w", r.ID, err)
		}
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", r.ID, err)
		}
		models = append(models, &model.FoodItem{
			Id:        r.ID,
			Document:  r.Document,
			Metadata:  datatypes.JSON(meta),
			Embedding: pgvector.NewVector(vector),
		})
	}

	return upsertFoodItems(s.db.WithContext(ctx), models).Error
}

// upsertFoodItems replaces the stored copy of an id on conflict.
func upsertFoodItems(db *gorm.DB, models []*model.FoodItem) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "metadata", "embedding", "updated_at"}),
	}).Create(&models)
}

func decodeMetadata(raw datatypes.JSON) map[string]interface{} {
	out := map[string]interface{}{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"food-rag-be/internal/dto"
	"food-rag-be/internal/entity"
	"food-rag-be/internal/mapper"
	"food-rag-be/pkg/vectorstore"

	"github.com/google/uuid"
)

// IFoodIndexer embeds catalogue entries and writes them to the vector store.
type IFoodIndexer interface {
	Index(ctx context.Context, foods ...dto.CreateFoodRequest) ([]string, error)
}

type foodIndexer struct {
	store  vectorstore.Store
	mapper *mapper.FoodItemMapper
	now    func() time.Time
}

func NewFoodIndexer(items vectorstore.Store) IFoodIndexer {
	return &foodIndexer{
		store:  items,
		mapper: mapper.NewFoodItemMapper(),
		now:    time.Now,
	}
}

// Index upserts foods in one batch and returns their ids. Entries without an
// id get a generated one.
func (fi *foodIndexer) Index(ctx context.Context, foods ...dto.CreateFoodRequest) ([]string, error) {
	if len(foods) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(foods))
	records := make([]vectorstore.Record, 0, len(foods))
	for _, f := range foods {
		item := toFoodEntity(f, fi.now())
		ids = append(ids, item.Id)
		records = append(records, fi.mapper.ToRecord(item))
	}

	if err := fi.store.Upsert(ctx, records); err != nil {
		return nil, fmt.Errorf("index %d food items: %w", len(records), err)
	}
	return ids, nil
}

func toFoodEntity(f dto.CreateFoodRequest, now time.Time) *entity.FoodItem {
	id := strings.TrimSpace(f.Id)
	if id == "" {
		id = uuid.NewString()
	}
	return &entity.FoodItem{
		Id:          id,
		Name:        f.Name,
		Description: f.Description,
		Cuisine:     f.Cuisine,
		Region:      f.Region,
		SpiceLevel:  f.SpiceLevel,
		MealType:    f.MealType,
		Tags:        f.Tags,
		Allergens:   f.Allergens,
		CreatedAt:   now,
	}
}

package service

import (
	"context"
	"encoding/json"
	"strings"

	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/serverutils"
	"food-rag-be/pkg/rag/filter"
	"food-rag-be/pkg/rag/session"
	"food-rag-be/pkg/store"
	"food-rag-be/pkg/vectorstore"

	"github.com/google/uuid"
)

type IFoodService interface {
	Search(ctx context.Context, req dto.SearchFoodRequest) (*dto.SearchFoodResponse, error)
	Get(ctx context.Context, id string) (*dto.FoodItemResponse, error)
	// Create queues the item for embedding and indexing.
	Create(ctx context.Context, req dto.CreateFoodRequest) (*dto.CreateFoodResponse, error)
}

type foodService struct {
	searcher  session.Searcher
	items     vectorstore.Store
	publisher IPublisherService
}

func NewFoodService(searcher session.Searcher, items vectorstore.Store, publisher IPublisherService) IFoodService {
	return &foodService{searcher: searcher, items: items, publisher: publisher}
}

func (s *foodService) Search(ctx context.Context, req dto.SearchFoodRequest) (*dto.SearchFoodResponse, error) {
	criteria := filter.Criteria{
		DietaryType: req.DietaryType,
		SpiceLevel:  req.SpiceLevel,
		MealType:    req.MealType,
		Allergies:   splitList(req.Allergies),
	}

	res := s.searcher.Search(ctx, strings.TrimSpace(req.Query), criteria, req.Limit)
	return &dto.SearchFoodResponse{
		Items:    dto.NewFoodItemResponses(res.Items),
		Degraded: res.Degraded(),
	}, nil
}

func (s *foodService) Get(ctx context.Context, id string) (*dto.FoodItemResponse, error) {
	m, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, serverutils.NewNotFoundError("food item", id)
	}

	res := dto.NewFoodItemResponse(store.FoodItem{ID: m.ID, Content: m.Document, Metadata: m.Metadata})
	return &res, nil
}

func (s *foodService) Create(ctx context.Context, req dto.CreateFoodRequest) (*dto.CreateFoodResponse, error) {
	if strings.TrimSpace(req.Id) == "" {
		req.Id = uuid.NewString()
	}

	payload, err := json.Marshal(dto.IngestFoodMessage{Food: req})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		return nil, err
	}

	return &dto.CreateFoodResponse{Id: req.Id, Status: "queued"}, nil
}

// splitList accepts both repeated parameters and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

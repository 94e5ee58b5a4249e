package dto

import "food-rag-be/pkg/store"

type SearchFoodRequest struct {
	Query       string   `query:"q" validate:"notblank,max=500"`
	Allergies   []string `query:"allergies" validate:"omitempty,max=30,dive,max=50"`
	SpiceLevel  string   `query:"spice_level" validate:"omitempty,max=20"`
	DietaryType string   `query:"dietary_type" validate:"omitempty,max=50"`
	MealType    string   `query:"meal_type" validate:"omitempty,oneof=breakfast lunch dinner snack dessert"`
	Limit       int      `query:"limit" validate:"omitempty,min=1,max=50"`
}

type FoodItemResponse struct {
	Id       string                 `json:"id"`
	Name     string                 `json:"name"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Score    float64                `json:"score"`
}

func NewFoodItemResponse(f store.FoodItem) FoodItemResponse {
	return FoodItemResponse{
		Id:       f.ID,
		Name:     f.Name(),
		Content:  f.Content,
		Metadata: f.Metadata,
		Score:    f.Score,
	}
}

func NewFoodItemResponses(items []store.FoodItem) []FoodItemResponse {
	out := make([]FoodItemResponse, 0, len(items))
	for _, f := range items {
		out = append(out, NewFoodItemResponse(f))
	}
	return out
}

type SearchFoodResponse struct {
	Items    []FoodItemResponse `json:"items"`
	Degraded bool               `json:"degraded"`
}

type CreateFoodRequest struct {
	Id          string   `json:"id" yaml:"id" validate:"omitempty,max=128"`
	Name        string   `json:"name" yaml:"name" validate:"notblank,max=200"`
	Description string   `json:"description" yaml:"description" validate:"max=4000"`
	Cuisine     string   `json:"cuisine" yaml:"cuisine" validate:"max=100"`
	Region      string   `json:"region" yaml:"region" validate:"max=100"`
	SpiceLevel  string   `json:"spice_level" yaml:"spice_level" validate:"max=20"`
	MealType    string   `json:"meal_type" yaml:"meal_type" validate:"omitempty,oneof=breakfast lunch dinner snack dessert"`
	Tags        []string `json:"tags" yaml:"tags" validate:"omitempty,max=30,dive,max=50"`
	Allergens   []string `json:"allergens" yaml:"allergens" validate:"omitempty,max=30,dive,max=50"`
}

type CreateFoodResponse struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

// IngestFoodMessage is the payload published on the ingest topic.
type IngestFoodMessage struct {
	Food CreateFoodRequest `json:"food"`
}

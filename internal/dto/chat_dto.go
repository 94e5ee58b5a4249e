package dto

import "food-rag-be/pkg/store"

type ChatRequest struct {
	Message     string          `json:"message" validate:"notblank,max=4000"`
	Preferences *PreferencesDTO `json:"preferences,omitempty"`
	UserId      string          `json:"user_id,omitempty" validate:"omitempty,max=128"`
	SessionId   string          `json:"session_id,omitempty" validate:"omitempty,max=128"`
	MealType    string          `json:"meal_type,omitempty" validate:"omitempty,oneof=breakfast lunch dinner snack dessert"`
	Limit       int             `json:"limit,omitempty" validate:"omitempty,min=1,max=20"`
}

type ChatResponse struct {
	SessionId string             `json:"session_id"`
	Reply     string             `json:"reply"`
	Items     []FoodItemResponse `json:"items"`
	Degraded  bool               `json:"degraded"`
}

type ChatHistoryResponse struct {
	SessionId string          `json:"session_id"`
	Messages  []store.Message `json:"messages"`
}

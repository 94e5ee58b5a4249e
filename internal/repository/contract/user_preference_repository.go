package contract

import (
	"context"

	"food-rag-be/internal/entity"
	"food-rag-be/internal/repository/specification"
)

type UserPreferenceRepository interface {
	// Save replaces the stored preferences of the user wholesale.
	Save(ctx context.Context, pref *entity.UserPreference) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserPreference, error)
	Delete(ctx context.Context, userId string) error
}

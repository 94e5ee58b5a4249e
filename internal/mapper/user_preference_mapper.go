package mapper

import (
	"time"

	"food-rag-be/internal/entity"
	"food-rag-be/internal/model"
	"food-rag-be/pkg/store"

	"gorm.io/datatypes"
)

type UserPreferenceMapper struct{}

func NewUserPreferenceMapper() *UserPreferenceMapper {
	return &UserPreferenceMapper{}
}

func (m *UserPreferenceMapper) ToEntity(p *model.UserPreference) *entity.UserPreference {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.UserPreference{
		UserId: p.UserId,
		Preferences: store.Preferences{
			DietaryType:       p.DietaryType,
			SpiceLevel:        p.SpiceLevel,
			Allergies:         []string(p.Allergies),
			PreferredCuisines: []string(p.PreferredCuisines),
			HealthGoals:       []string(p.HealthGoals),
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

// ToModel normalizes list entries so stored preferences never hold blanks.
func (m *UserPreferenceMapper) ToModel(p *entity.UserPreference) *model.UserPreference {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.UserPreference{
		UserId:            p.UserId,
		DietaryType:       p.Preferences.DietaryType,
		SpiceLevel:        p.Preferences.SpiceLevel,
		Allergies:         datatypes.NewJSONSlice(store.CleanList(p.Preferences.Allergies)),
		PreferredCuisines: datatypes.NewJSONSlice(store.CleanList(p.Preferences.PreferredCuisines)),
		HealthGoals:       datatypes.NewJSONSlice(store.CleanList(p.Preferences.HealthGoals)),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

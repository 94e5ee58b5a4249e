package dto

import (
	"time"

	"food-rag-be/pkg/store"
)

type PreferencesDTO struct {
	DietaryType       string   `json:"dietary_type" validate:"omitempty,max=50"`
	SpiceLevel        string   `json:"spice_level" validate:"omitempty,max=20"`
	Allergies         []string `json:"allergies" validate:"omitempty,max=30,dive,max=50"`
	PreferredCuisines []string `json:"preferred_cuisines" validate:"omitempty,max=30,dive,max=50"`
	HealthGoals       []string `json:"health_goals" validate:"omitempty,max=30,dive,max=100"`
}

func (p PreferencesDTO) ToStore() store.Preferences {
	return store.Preferences{
		DietaryType:       p.DietaryType,
		SpiceLevel:        p.SpiceLevel,
		Allergies:         store.CleanList(p.Allergies),
		PreferredCuisines: store.CleanList(p.PreferredCuisines),
		HealthGoals:       store.CleanList(p.HealthGoals),
	}
}

// NewPreferencesDTO never returns nil lists, so clients always see arrays.
func NewPreferencesDTO(p store.Preferences) PreferencesDTO {
	return PreferencesDTO{
		DietaryType:       p.DietaryType,
		SpiceLevel:        p.SpiceLevel,
		Allergies:         store.CleanList(p.Allergies),
		PreferredCuisines: store.CleanList(p.PreferredCuisines),
		HealthGoals:       store.CleanList(p.HealthGoals),
	}
}

type PreferencesResponse struct {
	UserId      string         `json:"user_id"`
	Preferences PreferencesDTO `json:"preferences"`
	UpdatedAt   *time.Time     `json:"updated_at"`
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserPreference stores the dietary profile of one user. Lists are jsonb arrays.
type UserPreference struct {
	UserId            string                      `gorm:"type:varchar(128);primaryKey"`
	DietaryType       string                      `gorm:"type:varchar(50)"`
	SpiceLevel        string                      `gorm:"type:varchar(20)"`
	Allergies         datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	PreferredCuisines datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	HealthGoals       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt         time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt         time.Time                   `gorm:"autoUpdateTime"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}

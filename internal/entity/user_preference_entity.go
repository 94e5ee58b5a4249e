package entity

import (
	"time"

	"food-rag-be/pkg/store"
)

type UserPreference struct {
	UserId      string
	Preferences store.Preferences
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

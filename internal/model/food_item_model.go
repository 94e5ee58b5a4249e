package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// FoodItem is one catalogue dish indexed for similarity search.
type FoodItem struct {
	Id        string          `gorm:"type:text;primaryKey"`
	Document  string          `gorm:"type:text;not null"`
	Metadata  datatypes.JSON  `gorm:"type:jsonb"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text / text-embedding-004 both use 768 dimensions
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (FoodItem) TableName() string {
	return "food_items"
}

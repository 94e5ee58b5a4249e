package entity

import "time"

// FoodItem is a catalogue entry before it is embedded and indexed.
type FoodItem struct {
	Id          string
	Name        string
	Description string
	Cuisine     string
	Region      string
	SpiceLevel  string
	MealType    string
	Tags        []string
	Allergens   []string
	CreatedAt   time.Time
}

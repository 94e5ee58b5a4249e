package mapper

import (
	"fmt"
	"strings"

	"food-rag-be/internal/entity"
	"food-rag-be/pkg/store"
	"food-rag-be/pkg/vectorstore"
)

type FoodItemMapper struct{}

func NewFoodItemMapper() *FoodItemMapper {
	return &FoodItemMapper{}
}

// Document renders the text that gets embedded:
// "<name>. <description> Cuisine: <cuisine>. Tags: <a, b>."
func (m *FoodItemMapper) Document(f *entity.FoodItem) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(f.Name))
	b.WriteString(".")
	if d := strings.TrimSpace(f.Description); d != "" {
		b.WriteString(" ")
		b.WriteString(d)
	}
	if c := strings.TrimSpace(f.Cuisine); c != "" {
		fmt.Fprintf(&b, " Cuisine: %s.", c)
	}
	if tags := store.CleanList(f.Tags); len(tags) > 0 {
		fmt.Fprintf(&b, " Tags: %s.", strings.Join(tags, ", "))
	}
	return b.String()
}

// ToRecord builds the vector-store record. Empty scalar fields are left out
// so equality filters never match a blank value.
func (m *FoodItemMapper) ToRecord(f *entity.FoodItem) vectorstore.Record {
	metadata := map[string]interface{}{
		store.MetaName:      strings.TrimSpace(f.Name),
		store.MetaTags:      store.CleanList(f.Tags),
		store.MetaAllergens: store.CleanList(f.Allergens),
	}
	for key, value := range map[string]string{
		store.MetaCuisine: strings.TrimSpace(f.Cuisine),
		store.MetaRegion:  strings.TrimSpace(f.Region),
		// Filterable by equality, stored normalized.
		store.MetaSpiceLevel: store.NormalizeScalar(f.SpiceLevel),
		store.MetaMealType:   store.NormalizeScalar(f.MealType),
	} {
		if value != "" {
			metadata[key] = value
		}
	}

	return vectorstore.Record{
		ID:       f.Id,
		Document: m.Document(f),
		Metadata: metadata,
	}
}

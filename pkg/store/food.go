package store

import (
	"strings"
	"time"
)

// FoodItem is a candidate returned by the vector store for one request.
//
// Score is 1 minus the cosine distance reported by the store. Cosine distance
// lies in [0, 2], so Score lies in [-1, 1]: 1 for an identical direction, 0
// for orthogonal vectors, -1 for opposite ones. Higher is more relevant.
type FoodItem struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Score    float64                `json:"score"`
}

// Metadata keys shared by the ingest pipeline, the filter builder and the formatter.
const (
	MetaName       = "name"
	MetaCuisine    = "cuisine"
	MetaSpiceLevel = "spice_level"
	MetaAllergens  = "allergens"
	MetaTags       = "tags"
	MetaMealType   = "meal_type"
	MetaRegion     = "region"
)

// Name returns the display name stored in metadata, or "" when absent.
func (f FoodItem) Name() string {
	if v, ok := f.Metadata[MetaName].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Preferences is replaced wholesale on update and never mutated mid-request.
// Empty string / nil slice means "not set".
type Preferences struct {
	DietaryType       string   `json:"dietary_type,omitempty"`
	SpiceLevel        string   `json:"spice_level,omitempty"`
	Allergies         []string `json:"allergies,omitempty"`
	PreferredCuisines []string `json:"preferred_cuisines,omitempty"`
	HealthGoals       []string `json:"health_goals,omitempty"`
}

// IsEmpty reports whether no field is set.
func (p Preferences) IsEmpty() bool {
	return strings.TrimSpace(p.DietaryType) == "" &&
		strings.TrimSpace(p.SpiceLevel) == "" &&
		len(CleanList(p.Allergies)) == 0 &&
		len(CleanList(p.PreferredCuisines)) == 0 &&
		len(CleanList(p.HealthGoals)) == 0
}

// NormalizeScalar is the stored form of metadata values matched by equality:
// trimmed and lower-cased.
func NormalizeScalar(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// CleanList trims entries and drops blanks, keeping order.
func CleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one client-visible chat turn.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Streaming bool      `json:"streaming,omitempty"`
	Failed    bool      `json:"failed,omitempty"`
}

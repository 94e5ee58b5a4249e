package prompt

import (
	"strings"

	"food-rag-be/internal/constant"
	"food-rag-be/pkg/llm"
	"food-rag-be/pkg/store"
)

const (
	// Delimiter separates the blocks of the user turn.
	Delimiter = "\n\n---\n\n"
	// NoPreferences replaces the preferences block when nothing is set.
	NoPreferences = "No preferences set."

	preferencesHeader = "User preferences:"
	contextHeader     = "Relevant dishes:"
)

// Assemble returns the system turn followed by a single user turn holding,
// in order, the preferences summary, the context block and the raw query.
func Assemble(query, context string, prefs store.Preferences) []llm.Message {
	var user strings.Builder

	user.WriteString(Summary(prefs))
	user.WriteString(Delimiter)

	user.WriteString(contextHeader)
	user.WriteString("\n")
	user.WriteString(context)
	user.WriteString(Delimiter)

	user.WriteString(query)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: constant.FoodAssistantSystemPrompt},
		{Role: llm.RoleUser, Content: user.String()},
	}
}

// Summary renders the preferences block alone. Empty fields are omitted.
func Summary(prefs store.Preferences) string {
	if prefs.IsEmpty() {
		return NoPreferences
	}

	var b strings.Builder
	b.WriteString(preferencesHeader)
	writeField(&b, "Dietary type", strings.TrimSpace(prefs.DietaryType))
	writeField(&b, "Spice level", strings.TrimSpace(prefs.SpiceLevel))
	writeField(&b, "Allergies (must avoid)", strings.Join(store.CleanList(prefs.Allergies), ", "))
	writeField(&b, "Preferred cuisines", strings.Join(store.CleanList(prefs.PreferredCuisines), ", "))
	writeField(&b, "Health goals", strings.Join(store.CleanList(prefs.HealthGoals), ", "))
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString("\n- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
}

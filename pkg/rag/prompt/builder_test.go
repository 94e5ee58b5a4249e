package prompt

import (
	"strings"
	"testing"

	"food-rag-be/internal/constant"
	"food-rag-be/pkg/llm"
	"food-rag-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	prefs := store.Preferences{
		SpiceLevel: "hot",
		Allergies:  []string{"dairy", " ", "peanuts"},
	}

	msgs := Assemble("spicy breakfast", "Pesarattu: Green gram crepe", prefs)
	require.Len(t, msgs, 2)

	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, constant.FoodAssistantSystemPrompt, msgs[0].Content)
	assert.Equal(t, llm.RoleUser, msgs[1].Role)

	blocks := strings.Split(msgs[1].Content, Delimiter)
	require.Len(t, blocks, 3)
	assert.Equal(t, "User preferences:\n- Spice level: hot\n- Allergies (must avoid): dairy, peanuts", blocks[0])
	assert.Equal(t, "Relevant dishes:\nPesarattu: Green gram crepe", blocks[1])
	assert.Equal(t, "spicy breakfast", blocks[2])
}

func TestAssembleNoPreferences(t *testing.T) {
	msgs := Assemble("dinner ideas", "No matching dishes found in the database.", store.Preferences{Allergies: []string{""}})

	blocks := strings.Split(msgs[1].Content, Delimiter)
	require.Len(t, blocks, 3)
	assert.Equal(t, NoPreferences, blocks[0])
	assert.Equal(t, "dinner ideas", blocks[2])
}

func TestSummaryAllFields(t *testing.T) {
	got := Summary(store.Preferences{
		DietaryType:       "vegan",
		SpiceLevel:        "mild",
		Allergies:         []string{"gluten"},
		PreferredCuisines: []string{"Gujarati", "Bengali"},
		HealthGoals:       []string{"high protein"},
	})

	assert.Equal(t, "User preferences:"+
		"\n- Dietary type: vegan"+
		"\n- Spice level: mild"+
		"\n- Allergies (must avoid): gluten"+
		"\n- Preferred cuisines: Gujarati, Bengali"+
		"\n- Health goals: high protein", got)
}

func TestAssembleIsDeterministic(t *testing.T) {
	prefs := store.Preferences{DietaryType: "jain"}
	assert.Equal(t, Assemble("q", "ctx", prefs), Assemble("q", "ctx", prefs))
}

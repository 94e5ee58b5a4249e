package implementation

import (
	"context"
	"testing"

	"food-rag-be/internal/entity"
	"food-rag-be/internal/model"
	"food-rag-be/internal/repository/specification"
	"food-rag-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test password=test dbname=test port=5432 sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db
}

func TestUpsertPreferenceSQL(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return upsertPreference(tx, &model.UserPreference{
			UserId:    "u1",
			Allergies: datatypes.NewJSONSlice([]string{"dairy"}),
		})
	})

	assert.Contains(t, sql, `INSERT INTO "user_preferences"`)
	assert.Contains(t, sql, `ON CONFLICT ("user_id") DO UPDATE SET`)
	assert.Contains(t, sql, `"allergies"="excluded"."allergies"`)
	assert.Contains(t, sql, `'["dairy"]'`)
}

func TestFindPreferenceByUserSQL(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var m model.UserPreference
		return specification.ByUserID{UserID: "u1"}.Apply(tx).First(&m)
	})

	assert.Contains(t, sql, `WHERE user_id = 'u1'`)
	assert.Contains(t, sql, `LIMIT 1`)
}

func TestSaveKeepsEntityInSync(t *testing.T) {
	repo := NewUserPreferenceRepository(dryRunDB(t))
	pref := &entity.UserPreference{
		UserId:      "u1",
		Preferences: store.Preferences{DietaryType: "vegan", HealthGoals: []string{" ", "low sugar"}},
	}

	require.NoError(t, repo.Save(context.Background(), pref))
	assert.Equal(t, "vegan", pref.Preferences.DietaryType)
	assert.Equal(t, []string{"low sugar"}, pref.Preferences.HealthGoals)
}

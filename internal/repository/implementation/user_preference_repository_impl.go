package implementation

import (
	"context"
	"errors"

	"food-rag-be/internal/entity"
	"food-rag-be/internal/mapper"
	"food-rag-be/internal/model"
	"food-rag-be/internal/repository/contract"
	"food-rag-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserPreferenceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserPreferenceMapper
}

func NewUserPreferenceRepository(db *gorm.DB) contract.UserPreferenceRepository {
	return &UserPreferenceRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserPreferenceMapper(),
	}
}

func (r *UserPreferenceRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserPreferenceRepositoryImpl) Save(ctx context.Context, pref *entity.UserPreference) error {
	m := r.mapper.ToModel(pref)
	if err := upsertPreference(r.db.WithContext(ctx), m).Error; err != nil {
		return err
	}
	*pref = *r.mapper.ToEntity(m)
	return nil
}

func upsertPreference(db *gorm.DB, m *model.UserPreference) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"dietary_type", "spice_level", "allergies", "preferred_cuisines", "health_goals", "updated_at",
		}),
	}).Create(m)
}

func (r *UserPreferenceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserPreference, error) {
	var m model.UserPreference
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserPreferenceRepositoryImpl) Delete(ctx context.Context, userId string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userId).Delete(&model.UserPreference{}).Error
}

package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsGormRepository struct {
	db *gorm.DB
}

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

func (r *SettingsGormRepository) Get(ctx context.Context) (model.SiteSettings, error) {
	var s model.SiteSettings
	err := r.db.WithContext(ctx).First(&s, model.SiteSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SiteSettings{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SiteSettings{}, err
	}
	return s, nil
}

// INSERT ... ON CONFLICT DO NOTHING なので何度呼んでも1行
func (r *SettingsGormRepository) EnsureDefault(ctx context.Context, s model.SiteSettings) error {
	s.ID = model.SiteSettingsID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&s).Error
}

func (r *SettingsGormRepository) Save(ctx context.Context, s model.SiteSettings) error {
	s.ID = model.SiteSettingsID
	return r.db.WithContext(ctx).Save(&s).Error
}

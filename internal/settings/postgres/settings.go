package postgres

import (
	"context"
	"errors"
	"time"

	settingsDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/settings"
	"github.com/frahmantamala/moola-sync/internal/settings"
	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) settings.RepositoryAPI {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetSingleton(ctx context.Context) (*settingsDatamodel.Settings, error) {
	var s settingsDatamodel.Settings
	err := r.db.WithContext(ctx).Order("id ASC").First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) GetCategoryRows(ctx context.Context) ([]*settingsDatamodel.CategoryMapRow, error) {
	var rows []*settingsDatamodel.CategoryMapRow
	err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *SettingsRepository) GetCardRows(ctx context.Context) ([]*settingsDatamodel.CardMapRow, error) {
	var rows []*settingsDatamodel.CardMapRow
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *SettingsRepository) GetBranchRows(ctx context.Context) ([]*settingsDatamodel.BranchMapRow, error) {
	var rows []*settingsDatamodel.BranchMapRow
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *SettingsRepository) GetTagDimensionRows(ctx context.Context) ([]*settingsDatamodel.TagDimensionMapRow, error) {
	var rows []*settingsDatamodel.TagDimensionMapRow
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *SettingsRepository) SaveLastSuccessTime(ctx context.Context, t time.Time) error {
	return r.db.WithContext(ctx).
		Model(&settingsDatamodel.Settings{}).
		Where("1 = 1").
		Updates(map[string]interface{}{
			"last_success_time": t,
			"updated_at":        time.Now(),
		}).Error
}

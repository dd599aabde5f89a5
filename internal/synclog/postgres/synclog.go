package postgres

import (
	"context"

	"gorm.io/gorm"

	synclogDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/synclog"
)

type SyncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

func (r *SyncLogRepository) Create(ctx context.Context, log *synclogDatamodel.SyncRunLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Finalize writes the closing fields of a run row. It touches only the
// run being closed and only fields that are empty until the run ends.
func (r *SyncLogRepository) Finalize(ctx context.Context, log *synclogDatamodel.SyncRunLog) error {
	return r.db.WithContext(ctx).
		Model(&synclogDatamodel.SyncRunLog{}).
		Where("id = ?", log.ID).
		Updates(map[string]any{
			"run_finished_at":  log.RunFinishedAt,
			"status":           log.Status,
			"fetched_count":    log.FetchedCount,
			"created_je_count": log.CreatedCount,
			"skipped_count":    log.SkippedCount,
			"message":          log.Message,
		}).Error
}

func (r *SyncLogRepository) Recent(ctx context.Context, limit int) ([]synclogDatamodel.SyncRunLog, error) {
	var logs []synclogDatamodel.SyncRunLog
	err := r.db.WithContext(ctx).
		Order("run_started_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

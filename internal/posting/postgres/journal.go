package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	journalDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/journal"
)

type JournalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// ExistsByMoolaID reports whether a journal entry already carries this
// Moola transaction id. This is the idempotency check for the whole
// pipeline.
func (r *JournalRepository) ExistsByMoolaID(ctx context.Context, moolaID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&journalDatamodel.Entry{}).
		Where("moola_transaction_id = ?", moolaID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateSubmitted persists the entry and its lines in one transaction and
// stamps it submitted. A unique violation on moola_transaction_id surfaces
// as an error so the caller can decide how to report it.
func (r *JournalRepository) CreateSubmitted(ctx context.Context, entry *journalDatamodel.Entry) error {
	now := time.Now().UTC()
	entry.SubmittedAt = &now

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	})
}

// Exists reports whether an attachment with this filename is already
// stored against the entry.
func (r *JournalRepository) Exists(ctx context.Context, entryID, filename string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&journalDatamodel.Attachment{}).
		Where("entry_id = ? AND filename = ?", entryID, filename).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *JournalRepository) Save(ctx context.Context, attachment *journalDatamodel.Attachment) error {
	err := r.db.WithContext(ctx).Create(attachment).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

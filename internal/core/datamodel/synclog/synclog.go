package synclog

import (
	"time"
	"unicode/utf8"
)

const (
	StatusSuccess = "Success"
	StatusPartial = "Partial"
)

// MaxMessageLen bounds the free-text message on a run log record.
const MaxMessageLen = 1400

// SyncRunLog records one sync invocation. Created when the run starts,
// finalized once when it ends, never mutated afterwards.
type SyncRunLog struct {
	ID            string     `gorm:"primaryKey" json:"id"`
	RunStartedAt  time.Time  `gorm:"column:run_started_at" json:"run_started_at"`
	RunFinishedAt *time.Time `gorm:"column:run_finished_at" json:"run_finished_at,omitempty"`
	Status        string     `gorm:"column:status" json:"status"`
	FetchedCount  int        `gorm:"column:fetched_count" json:"fetched_count"`
	CreatedCount  int        `gorm:"column:created_je_count" json:"created_je_count"`
	SkippedCount  int        `gorm:"column:skipped_count" json:"skipped_count"`
	Message       string     `gorm:"column:message" json:"message"`
}

func (SyncRunLog) TableName() string {
	return "moola_sync_logs"
}

// Truncate clamps a run summary to MaxMessageLen without splitting a rune.
func Truncate(message string) string {
	if len(message) <= MaxMessageLen {
		return message
	}
	cut := MaxMessageLen
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut]
}

package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	synclogDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/synclog"
	synclogPostgres "github.com/frahmantamala/moola-sync/internal/synclog/postgres"
)

func TestSyncLogPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SyncLog Postgres Suite")
}

var _ = Describe("SyncLog Repository", func() {
	var (
		db   *gorm.DB
		repo *synclogPostgres.SyncLogRepository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.AutoMigrate(&synclogDatamodel.SyncRunLog{})).To(Succeed())

		repo = synclogPostgres.NewSyncLogRepository(db)
		ctx = context.Background()
	})

	It("should create and finalize a run log", func() {
		run := &synclogDatamodel.SyncRunLog{
			ID:           "run-1",
			RunStartedAt: time.Now().UTC(),
			Status:       synclogDatamodel.StatusPartial,
		}
		Expect(repo.Create(ctx, run)).To(Succeed())

		finished := time.Now().UTC()
		run.RunFinishedAt = &finished
		run.Status = synclogDatamodel.StatusSuccess
		run.FetchedCount = 5
		run.CreatedCount = 3
		run.SkippedCount = 2
		run.Message = "Fetched 5, Created JE 3, Skipped 2"
		Expect(repo.Finalize(ctx, run)).To(Succeed())

		var stored synclogDatamodel.SyncRunLog
		Expect(db.First(&stored, "id = ?", "run-1").Error).To(Succeed())
		Expect(stored.Status).To(Equal(synclogDatamodel.StatusSuccess))
		Expect(stored.FetchedCount).To(Equal(5))
		Expect(stored.CreatedCount).To(Equal(3))
		Expect(stored.SkippedCount).To(Equal(2))
		Expect(stored.RunFinishedAt).NotTo(BeNil())
	})

	It("should list recent runs newest first with a limit", func() {
		base := time.Now().UTC().Add(-time.Hour)
		for i := 0; i < 5; i++ {
			run := &synclogDatamodel.SyncRunLog{
				ID:           string(rune('a' + i)),
				RunStartedAt: base.Add(time.Duration(i) * time.Minute),
				Status:       synclogDatamodel.StatusSuccess,
			}
			Expect(repo.Create(ctx, run)).To(Succeed())
		}

		runs, err := repo.Recent(ctx, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(3))
		Expect(runs[0].ID).To(Equal("e"))
		Expect(runs[1].ID).To(Equal("d"))
		Expect(runs[2].ID).To(Equal("c"))
	})
})

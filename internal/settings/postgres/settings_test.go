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

	settingsDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/settings"
	"github.com/frahmantamala/moola-sync/internal/settings"
	settingsPostgres "github.com/frahmantamala/moola-sync/internal/settings/postgres"
)

func TestSettingsPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Settings Postgres Suite")
}

var _ = Describe("Settings Repository", func() {
	var (
		db   *gorm.DB
		repo settings.RepositoryAPI
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&settingsDatamodel.Settings{},
			&settingsDatamodel.CategoryMapRow{},
			&settingsDatamodel.CardMapRow{},
			&settingsDatamodel.BranchMapRow{},
			&settingsDatamodel.TagDimensionMapRow{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = settingsPostgres.NewSettingsRepository(db)
		ctx = context.Background()
	})

	Describe("GetSingleton", func() {
		It("should return nil without error when no row exists", func() {
			s, err := repo.GetSingleton(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(BeNil())
		})

		It("should return the lowest-id row", func() {
			Expect(db.Create(&settingsDatamodel.Settings{ID: 1, Enabled: true, Company: "Acme Co"}).Error).To(Succeed())
			Expect(db.Create(&settingsDatamodel.Settings{ID: 2, Company: "Other Co"}).Error).To(Succeed())

			s, err := repo.GetSingleton(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Company).To(Equal("Acme Co"))
		})
	})

	Describe("GetCategoryRows", func() {
		It("should return rows in position order", func() {
			Expect(db.Create(&settingsDatamodel.CategoryMapRow{Position: 2, MoolaCategoryKey: "second"}).Error).To(Succeed())
			Expect(db.Create(&settingsDatamodel.CategoryMapRow{Position: 1, MoolaCategoryKey: "first"}).Error).To(Succeed())

			rows, err := repo.GetCategoryRows(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].MoolaCategoryKey).To(Equal("first"))
			Expect(rows[1].MoolaCategoryKey).To(Equal("second"))
		})
	})

	Describe("SaveLastSuccessTime", func() {
		It("should update the cursor on the singleton", func() {
			Expect(db.Create(&settingsDatamodel.Settings{ID: 1, Enabled: true}).Error).To(Succeed())

			cursor := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
			Expect(repo.SaveLastSuccessTime(ctx, cursor)).To(Succeed())

			s, err := repo.GetSingleton(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.LastSuccessTime).NotTo(BeNil())
			Expect(s.LastSuccessTime.UTC()).To(Equal(cursor))
		})
	})
})

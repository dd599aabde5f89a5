package postgres_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	journalDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/journal"
	postingPostgres "github.com/frahmantamala/moola-sync/internal/posting/postgres"
)

func TestJournalPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Journal Postgres Suite")
}

func testEntry(id, moolaID string) *journalDatamodel.Entry {
	return &journalDatamodel.Entry{
		ID:                 id,
		VoucherType:        "Journal Entry",
		Company:            "Acme Co",
		Branch:             "Head Office",
		MoolaTransactionID: moolaID,
		TotalDebit:         decimal.NewFromInt(100),
		TotalCredit:        decimal.NewFromInt(100),
		Lines: []journalDatamodel.Line{
			{Account: "Expense - CO", Debit: decimal.NewFromInt(100), Branch: "Head Office"},
			{Account: "Card - CO", Credit: decimal.NewFromInt(100), Branch: "Head Office"},
		},
	}
}

var _ = Describe("Journal Repository", func() {
	var (
		db   *gorm.DB
		repo *postingPostgres.JournalRepository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&journalDatamodel.Entry{},
			&journalDatamodel.Line{},
			&journalDatamodel.Attachment{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = postingPostgres.NewJournalRepository(db)
		ctx = context.Background()
	})

	Describe("CreateSubmitted", func() {
		It("should persist the entry with its lines and a submit timestamp", func() {
			err := repo.CreateSubmitted(ctx, testEntry("je-1", "exp-1"))
			Expect(err).NotTo(HaveOccurred())

			var stored journalDatamodel.Entry
			err = db.Preload("Lines").First(&stored, "id = ?", "je-1").Error
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.SubmittedAt).NotTo(BeNil())
			Expect(stored.Lines).To(HaveLen(2))
			Expect(stored.Balanced()).To(BeTrue())
		})

		It("should reject a second entry for the same expense", func() {
			Expect(repo.CreateSubmitted(ctx, testEntry("je-1", "exp-1"))).To(Succeed())
			err := repo.CreateSubmitted(ctx, testEntry("je-2", "exp-1"))
			Expect(err).To(HaveOccurred())
		})

		It("should round-trip line dimensions", func() {
			entry := testEntry("je-1", "exp-1")
			entry.Lines[0].Dimensions = journalDatamodel.DimensionMap{"department": "Engineering - CO"}

			Expect(repo.CreateSubmitted(ctx, entry)).To(Succeed())

			var stored journalDatamodel.Entry
			Expect(db.Preload("Lines").First(&stored, "id = ?", "je-1").Error).To(Succeed())
			Expect(stored.Lines[0].Dimensions).To(HaveKeyWithValue("department", "Engineering - CO"))
		})
	})

	Describe("ExistsByMoolaID", func() {
		It("should report false before and true after posting", func() {
			exists, err := repo.ExistsByMoolaID(ctx, "exp-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())

			Expect(repo.CreateSubmitted(ctx, testEntry("je-1", "exp-1"))).To(Succeed())

			exists, err = repo.ExistsByMoolaID(ctx, "exp-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})
	})

	Describe("Attachments", func() {
		BeforeEach(func() {
			Expect(repo.CreateSubmitted(ctx, testEntry("je-1", "exp-1"))).To(Succeed())
		})

		It("should save and detect attachments per entry and filename", func() {
			att := &journalDatamodel.Attachment{
				EntryID:     "je-1",
				Filename:    "receipt.pdf",
				ContentType: "application/pdf",
				SizeBytes:   3,
				Data:        []byte("pdf"),
			}
			Expect(repo.Save(ctx, att)).To(Succeed())

			exists, err := repo.Exists(ctx, "je-1", "receipt.pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())

			exists, err = repo.Exists(ctx, "je-1", "other.pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})
})

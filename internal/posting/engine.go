package posting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/moola-sync/internal"
	journalDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/journal"
	"github.com/frahmantamala/moola-sync/internal/mapping"
	"github.com/frahmantamala/moola-sync/internal/moola"
	"github.com/frahmantamala/moola-sync/internal/settings"
)

// SkipReason classifies the expected no-op outcomes of a posting attempt.
// These are not errors: the orchestrator counts them as skipped and moves on.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipNoID        SkipReason = "no-id"
	SkipDuplicate   SkipReason = "duplicate"
	SkipNotApproved SkipReason = "not-approved"
	SkipZeroAmount  SkipReason = "zero-amount"
)

// JournalRepository is the accounting store surface the engine needs:
// duplicate detection via the idempotency tag and atomic insert+submit.
type JournalRepository interface {
	ExistsByMoolaID(ctx context.Context, moolaID string) (bool, error)
	CreateSubmitted(ctx context.Context, entry *journalDatamodel.Entry) error
}

// AttachmentsAPI is the best-effort receipt fetcher invoked after a
// successful post. Implementations never return an error.
type AttachmentsAPI interface {
	FetchAndStore(ctx context.Context, s *settings.Settings, rec moola.Record, entryID string)
}

// Engine assembles and commits balanced journal entries, one per approved
// expense record.
type Engine struct {
	repo        JournalRepository
	attachments AttachmentsAPI
	logger      *slog.Logger
	now         func() time.Time
}

func NewEngine(repo JournalRepository, attachments AttachmentsAPI, logger *slog.Logger) *Engine {
	return &Engine{
		repo:        repo,
		attachments: attachments,
		logger:      logger,
		now:         time.Now,
	}
}

// PostExpense posts one expense record as a submitted journal entry.
// Returns the new entry id on success, a skip reason for expected no-ops,
// or an error attributed to this record alone.
func (e *Engine) PostExpense(ctx context.Context, s *settings.Settings, rec moola.Record) (string, SkipReason, error) {
	expID := rec.ID()
	if expID == "" {
		return "", SkipNoID, nil
	}

	exists, err := e.repo.ExistsByMoolaID(ctx, expID)
	if err != nil {
		return "", SkipNone, internal.NewRecordError("duplicate check failed", internal.ErrCodePostingFailed).WithCause(err)
	}
	if exists {
		e.logger.Debug("expense already posted", "expense_id", expID)
		return "", SkipDuplicate, nil
	}

	if !Approved(s, rec) {
		return "", SkipNotApproved, nil
	}

	debit, extraVAT, credit := SplitAmounts(s, rec)
	if !credit.IsPositive() {
		return "", SkipZeroAmount, nil
	}

	res, err := mapping.Resolve(s, rec)
	if err != nil {
		return "", SkipNone, err
	}

	entry := e.assembleEntry(s, rec, res, debit, extraVAT, credit)
	if err := e.repo.CreateSubmitted(ctx, entry); err != nil {
		return "", SkipNone, internal.NewRecordError(
			fmt.Sprintf("journal entry for expense %s could not be posted", expID),
			internal.ErrCodePostingFailed,
		).WithCause(err)
	}

	e.logger.Info("journal entry posted",
		"run_id", internal.RunIDFromContext(ctx),
		"entry_id", entry.ID,
		"expense_id", expID,
		"debit", debit,
		"vat", extraVAT,
		"credit", credit,
		"branch", res.Branch)

	if e.attachments != nil {
		e.attachments.FetchAndStore(ctx, s, rec, entry.ID)
	}

	return entry.ID, SkipNone, nil
}

func (e *Engine) assembleEntry(s *settings.Settings, rec moola.Record, res *mapping.Resolution, debit, extraVAT, credit decimal.Decimal) *journalDatamodel.Entry {
	expID := rec.ID()

	remark := strings.TrimSpace(rec.Str("note"))
	if remark == "" {
		remark = strings.TrimSpace(fmt.Sprintf("Moola expense %s - %s", expID, rec.Str("merchant")))
	}

	lines := []journalDatamodel.Line{
		{
			Account:    res.ExpenseAccount,
			Debit:      debit,
			Credit:     decimal.Zero,
			CostCenter: res.CostCenter,
			Branch:     res.Branch,
		},
	}
	if extraVAT.IsPositive() {
		lines = append(lines, journalDatamodel.Line{
			Account:    s.VATAccount,
			Debit:      extraVAT,
			Credit:     decimal.Zero,
			CostCenter: res.CostCenter,
			Branch:     res.Branch,
		})
	}
	// Single credit line on the card account, no cost center.
	lines = append(lines, journalDatamodel.Line{
		Account: res.CardAccount,
		Debit:   decimal.Zero,
		Credit:  credit,
		Branch:  res.Branch,
	})

	if len(res.Dimensions) > 0 {
		for i := range lines {
			dims := make(journalDatamodel.DimensionMap, len(res.Dimensions))
			for k, v := range res.Dimensions {
				dims[k] = v
			}
			lines[i].Dimensions = dims
		}
	}

	return &journalDatamodel.Entry{
		ID:                 uuid.NewString(),
		VoucherType:        "Journal Entry",
		PostingDate:        e.postingDate(s, rec),
		Company:            s.Company,
		Branch:             res.Branch,
		Remark:             remark,
		MoolaTransactionID: expID,
		TotalDebit:         debit.Add(extraVAT),
		TotalCredit:        credit,
		Lines:              lines,
	}
}

// postingDate applies the posting-date policy: the record's own date when
// configured (time part stripped, today on parse failure), today otherwise.
func (e *Engine) postingDate(s *settings.Settings, rec moola.Record) time.Time {
	today := dateOnly(e.now())
	if s.PostingDatePolicy != settings.PostingDateExpenseDate {
		return today
	}

	raw := strings.TrimSpace(rec.Str("date"))
	if raw == "" {
		return today
	}
	if idx := strings.Index(raw, "T"); idx > 0 {
		raw = raw[:idx]
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return today
	}
	return parsed
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/moola-sync/internal"
	synclogDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/synclog"
	"github.com/frahmantamala/moola-sync/internal/moola"
	"github.com/frahmantamala/moola-sync/internal/posting"
	"github.com/frahmantamala/moola-sync/internal/settings"
	"github.com/frahmantamala/moola-sync/internal/synclog"
)

// maxPages bounds a single run so a remote that keeps reporting another
// page can never spin the poller forever.
const maxPages = 10000

type SettingsLoader interface {
	Load(ctx context.Context) (*settings.Settings, error)
	AdvanceCursor(ctx context.Context, t time.Time) error
}

type FetchClient interface {
	FetchPage(ctx context.Context, pageNumber, pageSize int, from *time.Time) (*moola.Page, error)
}

type Poster interface {
	PostExpense(ctx context.Context, s *settings.Settings, rec moola.Record) (string, posting.SkipReason, error)
}

// Stats summarizes one sync run.
type Stats struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

func (st Stats) Summary() string {
	return fmt.Sprintf("Fetched %d, Created JE %d, Skipped %d", st.Fetched, st.Created, st.Skipped)
}

// Service orchestrates a sync run: load settings, page through remote
// expenses, post each one, write the run log and move the success cursor.
type Service struct {
	settings  SettingsLoader
	newClient func(s *settings.Settings) FetchClient
	poster    Poster
	logs      synclog.RepositoryAPI
	lock      *RunLock
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	settingsLoader SettingsLoader,
	newClient func(s *settings.Settings) FetchClient,
	poster Poster,
	logs synclog.RepositoryAPI,
	lock *RunLock,
	logger *slog.Logger,
) *Service {
	return &Service{
		settings:  settingsLoader,
		newClient: newClient,
		poster:    poster,
		logs:      logs,
		lock:      lock,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes an incremental sync: the effective from date is the
// earlier of the success cursor and the rolling look-back window, so a
// late-arriving approval inside the window is still picked up. The
// cursor advances only when the run finishes without a single error.
func (s *Service) Run(ctx context.Context) (*Stats, error) {
	if !s.lock.Acquire() {
		return nil, internal.ErrSyncAlreadyRunning
	}
	defer s.lock.Release()

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	from := s.effectiveFromDate(cfg)
	stats, runErr := s.execute(ctx, cfg, from)

	if runErr == nil && stats.Errors == 0 {
		if err := s.settings.AdvanceCursor(ctx, s.now().UTC()); err != nil {
			s.logger.Error("moola sync: cursor advance failed", "error", err)
		}
	}

	return stats, runErr
}

// RunFrom executes a manual backfill from an explicit date. The rolling
// look-back does not apply; the cursor moves only when the caller asks
// for it and the run is clean.
func (s *Service) RunFrom(ctx context.Context, from time.Time, advanceCursor bool) (*Stats, error) {
	if !s.lock.Acquire() {
		return nil, internal.ErrSyncAlreadyRunning
	}
	defer s.lock.Release()

	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	fromDate := dateOnly(from)
	stats, runErr := s.execute(ctx, cfg, &fromDate)

	if runErr == nil && stats.Errors == 0 && advanceCursor {
		if err := s.settings.AdvanceCursor(ctx, s.now().UTC()); err != nil {
			s.logger.Error("moola sync: cursor advance failed", "error", err)
		}
	}

	return stats, runErr
}

// effectiveFromDate picks the incremental window start. Without a cursor
// the configured start date (possibly unset) is used as-is. With a cursor
// the earlier of cursor date and look-back boundary wins when a look-back
// is configured, clamped to the configured start date when one exists. A
// look-back of zero disables the window and the cursor is used directly.
func (s *Service) effectiveFromDate(cfg *settings.Settings) *time.Time {
	if cfg.LastSuccessTime == nil {
		if cfg.FromDate == nil {
			return nil
		}
		d := dateOnly(*cfg.FromDate)
		return &d
	}

	cursor := dateOnly(*cfg.LastSuccessTime)

	effective := cursor
	if cfg.ResyncLookbackDays > 0 {
		lookback := dateOnly(s.now().UTC()).AddDate(0, 0, -cfg.ResyncLookbackDays)
		if lookback.Before(effective) {
			effective = lookback
		}
	}
	if cfg.FromDate != nil {
		floor := dateOnly(*cfg.FromDate)
		if effective.Before(floor) {
			effective = floor
		}
	}
	return &effective
}

func (s *Service) execute(ctx context.Context, cfg *settings.Settings, from *time.Time) (*Stats, error) {
	runLog := &synclogDatamodel.SyncRunLog{
		ID:           uuid.NewString(),
		RunStartedAt: s.now().UTC(),
		Status:       synclogDatamodel.StatusPartial,
	}
	if err := s.logs.Create(ctx, runLog); err != nil {
		return nil, internal.NewInternalError("could not create sync run log", err)
	}
	ctx = internal.ContextWithRunID(ctx, runLog.ID)

	stats := &Stats{}
	var errorLines []string
	client := s.newClient(cfg)
	pageSize := cfg.PageSizeOrDefault()

	var fetchErr error

pageLoop:
	for pageNumber := 1; ; pageNumber++ {
		if pageNumber > maxPages {
			errorLines = append(errorLines, "Safety stop: too many pages")
			stats.Errors++
			break
		}

		page, err := client.FetchPage(ctx, pageNumber, pageSize, from)
		if err != nil {
			errorLines = append(errorLines, fmt.Sprintf("fetch page %d: %v", pageNumber, err))
			stats.Errors++
			fetchErr = err
			break
		}

		stats.Fetched += len(page.Items)

		for _, rec := range page.Items {
			select {
			case <-ctx.Done():
				errorLines = append(errorLines, "run canceled: "+ctx.Err().Error())
				stats.Errors++
				break pageLoop
			default:
			}

			_, skip, err := s.poster.PostExpense(ctx, cfg, rec)
			switch {
			case err != nil:
				stats.Errors++
				errorLines = append(errorLines, fmt.Sprintf("expense %s: %v", recordRef(rec), err))
				s.logger.Error("moola sync: expense failed", "moola_id", rec.ID(), "error", err)
			case skip != posting.SkipNone:
				stats.Skipped++
				s.logger.Debug("moola sync: expense skipped", "moola_id", rec.ID(), "reason", string(skip))
			default:
				stats.Created++
			}
		}

		if !page.HasNextPage {
			break
		}
	}

	s.finalize(ctx, runLog, stats, errorLines)

	s.logger.Info("moola sync: run finished",
		"run_id", runLog.ID,
		"status", runLog.Status,
		"fetched", stats.Fetched,
		"created", stats.Created,
		"skipped", stats.Skipped,
		"errors", stats.Errors)

	if fetchErr != nil {
		return stats, fetchErr
	}
	return stats, nil
}

func (s *Service) finalize(ctx context.Context, runLog *synclogDatamodel.SyncRunLog, stats *Stats, errorLines []string) {
	finished := s.now().UTC()
	runLog.RunFinishedAt = &finished
	runLog.FetchedCount = stats.Fetched
	runLog.CreatedCount = stats.Created
	runLog.SkippedCount = stats.Skipped

	if stats.Errors == 0 {
		runLog.Status = synclogDatamodel.StatusSuccess
	} else {
		runLog.Status = synclogDatamodel.StatusPartial
	}

	message := stats.Summary()
	if len(errorLines) > 0 {
		message += "\nErrors:\n" + strings.Join(errorLines, "\n")
	}
	runLog.Message = synclogDatamodel.Truncate(message)

	if err := s.logs.Finalize(ctx, runLog); err != nil {
		s.logger.Error("moola sync: run log finalize failed", "run_id", runLog.ID, "error", err)
	}
}

func recordRef(rec moola.Record) string {
	if id := rec.ID(); id != "" {
		return id
	}
	return "<no id>"
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

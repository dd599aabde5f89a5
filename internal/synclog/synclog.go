package synclog

import (
	"context"

	synclogDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/synclog"
)

// RepositoryAPI is the append-only run log store. Rows are created when a
// run starts and finalized exactly once when it ends; nothing updates or
// deletes them afterwards.
type RepositoryAPI interface {
	Create(ctx context.Context, log *synclogDatamodel.SyncRunLog) error
	Finalize(ctx context.Context, log *synclogDatamodel.SyncRunLog) error
	Recent(ctx context.Context, limit int) ([]synclogDatamodel.SyncRunLog, error)
}

const DefaultRecentLimit = 20

type Service struct {
	repo RepositoryAPI
}

func NewService(repo RepositoryAPI) *Service {
	return &Service{repo: repo}
}

func (s *Service) Recent(ctx context.Context, limit int) ([]synclogDatamodel.SyncRunLog, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultRecentLimit
	}
	return s.repo.Recent(ctx, limit)
}

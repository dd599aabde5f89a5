package sync

import (
	synclogDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/synclog"
)

type SyncFromDateRequest struct {
	FromDate      string `json:"from_date"`
	AdvanceCursor bool   `json:"advance_cursor"`
}

type SyncRunResponse struct {
	Message string `json:"message"`
	Fetched int    `json:"fetched"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
}

func NewSyncRunResponse(stats *Stats) SyncRunResponse {
	return SyncRunResponse{
		Message: stats.Summary(),
		Fetched: stats.Fetched,
		Created: stats.Created,
		Skipped: stats.Skipped,
		Errors:  stats.Errors,
	}
}

type SyncRunsResponse struct {
	Runs []synclogDatamodel.SyncRunLog `json:"runs"`
}

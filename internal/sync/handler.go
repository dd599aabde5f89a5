package sync

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/moola-sync/internal"
	synclogDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/synclog"
	"github.com/frahmantamala/moola-sync/internal/transport"
)

type ServiceAPI interface {
	Run(ctx context.Context) (*Stats, error)
	RunFrom(ctx context.Context, from time.Time, advanceCursor bool) (*Stats, error)
}

type RunLogAPI interface {
	Recent(ctx context.Context, limit int) ([]synclogDatamodel.SyncRunLog, error)
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
	runLogs RunLogAPI
}

func NewHandler(service ServiceAPI, runLogs RunLogAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
		runLogs:     runLogs,
	}
}

// SyncNow triggers an incremental run and reports its outcome.
func (h *Handler) SyncNow(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Run(r.Context())
	if err != nil && stats == nil {
		h.WriteError(w, err)
		return
	}
	if err != nil {
		// the run partially completed; the caller still needs the counts
		h.Logger.Warn("sync run finished with a fetch error", "error", err)
	}

	h.WriteJSON(w, http.StatusOK, NewSyncRunResponse(stats))
}

// SyncFromDate triggers a manual backfill from an explicit date.
func (h *Handler) SyncFromDate(w http.ResponseWriter, r *http.Request) {
	var req SyncFromDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, internal.NewValidationError("invalid request body", internal.ErrCodeInvalidFromDate).WithCause(err))
		return
	}

	from, err := time.Parse("2006-01-02", req.FromDate)
	if err != nil {
		h.WriteError(w, internal.NewValidationError("from_date must be formatted YYYY-MM-DD", internal.ErrCodeInvalidFromDate).WithCause(err))
		return
	}

	stats, err := h.service.RunFrom(r.Context(), from, req.AdvanceCursor)
	if err != nil && stats == nil {
		h.WriteError(w, err)
		return
	}
	if err != nil {
		h.Logger.Warn("backfill run finished with a fetch error", "error", err)
	}

	h.WriteJSON(w, http.StatusOK, NewSyncRunResponse(stats))
}

// Runs lists recent sync run logs, newest first.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.WriteError(w, internal.NewValidationError("limit must be an integer", "INVALID_LIMIT").WithCause(err))
			return
		}
		limit = parsed
	}

	ctx, cancel := internal.WithTimeout(r.Context(), 0)
	defer cancel()

	runs, err := h.runLogs.Recent(ctx, limit)
	if err != nil {
		h.WriteError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SyncRunsResponse{Runs: runs})
}

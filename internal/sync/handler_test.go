package sync_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/moola-sync/internal"
	synclogDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/synclog"
	syncpkg "github.com/frahmantamala/moola-sync/internal/sync"
)

// MockService scripts sync run outcomes for handler tests
type MockService struct {
	stats       *syncpkg.Stats
	err         error
	lastFrom    time.Time
	lastAdvance bool
}

func (m *MockService) Run(ctx context.Context) (*syncpkg.Stats, error) {
	return m.stats, m.err
}

func (m *MockService) RunFrom(ctx context.Context, from time.Time, advanceCursor bool) (*syncpkg.Stats, error) {
	m.lastFrom = from
	m.lastAdvance = advanceCursor
	return m.stats, m.err
}

// MockRunLogs serves canned run log rows
type MockRunLogs struct {
	runs      []synclogDatamodel.SyncRunLog
	lastLimit int
}

func (m *MockRunLogs) Recent(ctx context.Context, limit int) ([]synclogDatamodel.SyncRunLog, error) {
	m.lastLimit = limit
	return m.runs, nil
}

var _ = Describe("Sync Handler", func() {
	var (
		mockService *MockService
		mockLogs    *MockRunLogs
		handler     *syncpkg.Handler
		recorder    *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		mockService = &MockService{stats: &syncpkg.Stats{Fetched: 5, Created: 3, Skipped: 2}}
		mockLogs = &MockRunLogs{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = syncpkg.NewHandler(mockService, mockLogs, logger)
		recorder = httptest.NewRecorder()
	})

	Describe("SyncNow", func() {
		It("should report the run counts", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/now", nil)
			handler.SyncNow(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var resp syncpkg.SyncRunResponse
			Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Message).To(Equal("Fetched 5, Created JE 3, Skipped 2"))
			Expect(resp.Created).To(Equal(3))
		})

		It("should return 409 when a run is already in progress", func() {
			mockService.stats = nil
			mockService.err = internal.ErrSyncAlreadyRunning

			req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/now", nil)
			handler.SyncNow(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusConflict))
		})

		It("should return 503 when the integration is disabled", func() {
			mockService.stats = nil
			mockService.err = internal.ErrIntegrationDisabled

			req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/now", nil)
			handler.SyncNow(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("SyncFromDate", func() {
		It("should pass the parsed date and cursor flag to the service", func() {
			body := bytes.NewBufferString(`{"from_date":"2026-08-01","advance_cursor":true}`)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/from-date", body)
			handler.SyncFromDate(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastFrom).To(Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
			Expect(mockService.lastAdvance).To(BeTrue())
		})

		It("should reject a malformed date", func() {
			body := bytes.NewBufferString(`{"from_date":"01-08-2026"}`)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/from-date", body)
			handler.SyncFromDate(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject a malformed body", func() {
			body := bytes.NewBufferString(`not-json`)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/from-date", body)
			handler.SyncFromDate(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Runs", func() {
		It("should list recent runs", func() {
			mockLogs.runs = []synclogDatamodel.SyncRunLog{
				{ID: "run-1", Status: synclogDatamodel.StatusSuccess},
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs", nil)
			handler.Runs(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var resp syncpkg.SyncRunsResponse
			Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Runs).To(HaveLen(1))
			Expect(resp.Runs[0].ID).To(Equal("run-1"))
		})

		It("should pass the limit through", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs?limit=5", nil)
			handler.Runs(recorder, req)
			Expect(mockLogs.lastLimit).To(Equal(5))
		})

		It("should reject a non-numeric limit", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs?limit=abc", nil)
			handler.Runs(recorder, req)
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})
	})
})

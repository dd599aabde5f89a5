package posting_test

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	journalDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/journal"
	"github.com/frahmantamala/moola-sync/internal/moola"
	"github.com/frahmantamala/moola-sync/internal/posting"
	"github.com/frahmantamala/moola-sync/internal/settings"
)

// MockBlobStore implements posting.BlobStore for testing
type MockBlobStore struct {
	saved     []*journalDatamodel.Attachment
	saveError error
}

func (m *MockBlobStore) Exists(ctx context.Context, entryID, filename string) (bool, error) {
	for _, att := range m.saved {
		if att.EntryID == entryID && att.Filename == filename {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBlobStore) Save(ctx context.Context, att *journalDatamodel.Attachment) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.saved = append(m.saved, att)
	return nil
}

var _ = Describe("Attachment Fetcher", func() {
	var (
		store      *MockBlobStore
		fetcher    *posting.Fetcher
		server     *httptest.Server
		lastHeader http.Header
		s          *settings.Settings
		ctx        context.Context
	)

	BeforeEach(func() {
		store = &MockBlobStore{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		fetcher = posting.NewFetcher(store, posting.FetcherConfig{
			MaxBytes: 64,
			Timeout:  5 * time.Second,
		}, logger)
		s = &settings.Settings{AuthType: moola.AuthTypeAPIKey, APIKey: "key-123"}
		ctx = context.Background()

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastHeader = r.Header.Clone()
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("pdf-bytes"))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("should download a flat receipt URL and store it", func() {
		rec := moola.Record{"id": "exp-1", "receiptUrl": server.URL + "/files/receipt.pdf"}
		fetcher.FetchAndStore(ctx, s, rec, "je-1")

		Expect(store.saved).To(HaveLen(1))
		Expect(store.saved[0].EntryID).To(Equal("je-1"))
		Expect(store.saved[0].Filename).To(Equal("receipt.pdf"))
		Expect(store.saved[0].Data).To(Equal([]byte("pdf-bytes")))
	})

	It("should authenticate the download with the configured header only", func() {
		rec := moola.Record{"id": "exp-1", "receiptUrl": server.URL + "/r.pdf"}
		fetcher.FetchAndStore(ctx, s, rec, "je-1")

		Expect(lastHeader.Get("x-api-key")).To(Equal("key-123"))
		Expect(lastHeader.Get("Authorization")).To(BeEmpty())
	})

	It("should decode inline base64 attachments", func() {
		rec := moola.Record{
			"id":            "exp-1",
			"receiptBase64": base64.StdEncoding.EncodeToString([]byte("inline-bytes")),
		}
		fetcher.FetchAndStore(ctx, s, rec, "je-1")

		Expect(store.saved).To(HaveLen(1))
		Expect(store.saved[0].Data).To(Equal([]byte("inline-bytes")))
		Expect(store.saved[0].Filename).To(HavePrefix("moola-exp-1-"))
	})

	It("should walk the attachments array with filename hints", func() {
		rec := moola.Record{
			"id": "exp-1",
			"attachments": []any{
				map[string]any{"url": server.URL + "/blob", "fileName": "invoice-42.pdf"},
			},
		}
		fetcher.FetchAndStore(ctx, s, rec, "je-1")

		Expect(store.saved).To(HaveLen(1))
		Expect(store.saved[0].Filename).To(Equal("invoice-42.pdf"))
	})

	It("should skip oversized payloads", func() {
		big := strings.Repeat("x", 100)
		rec := moola.Record{
			"id":            "exp-1",
			"receiptBase64": base64.StdEncoding.EncodeToString([]byte(big)),
		}
		fetcher.FetchAndStore(ctx, s, rec, "je-1")
		Expect(store.saved).To(BeEmpty())
	})

	It("should skip duplicate filenames for the same entry", func() {
		rec := moola.Record{"id": "exp-1", "receiptUrl": server.URL + "/files/receipt.pdf"}
		fetcher.FetchAndStore(ctx, s, rec, "je-1")
		fetcher.FetchAndStore(ctx, s, rec, "je-1")
		Expect(store.saved).To(HaveLen(1))
	})

	It("should reject non-http URLs", func() {
		rec := moola.Record{"id": "exp-1", "receiptUrl": "ftp://example.com/receipt.pdf"}
		fetcher.FetchAndStore(ctx, s, rec, "je-1")
		Expect(store.saved).To(BeEmpty())
	})

	It("should swallow storage failures", func() {
		store.saveError = context.DeadlineExceeded
		rec := moola.Record{"id": "exp-1", "receiptUrl": server.URL + "/r.pdf"}
		Expect(func() {
			fetcher.FetchAndStore(ctx, s, rec, "je-1")
		}).NotTo(Panic())
		Expect(store.saved).To(BeEmpty())
	})

	It("should do nothing for records without attachments", func() {
		fetcher.FetchAndStore(ctx, s, moola.Record{"id": "exp-1"}, "je-1")
		Expect(store.saved).To(BeEmpty())
	})
})

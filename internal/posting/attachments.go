package posting

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	journalDatamodel "github.com/frahmantamala/moola-sync/internal/core/datamodel/journal"
	"github.com/frahmantamala/moola-sync/internal/moola"
	"github.com/frahmantamala/moola-sync/internal/settings"
)

// BlobStore persists receipt documents against their owning journal entry.
type BlobStore interface {
	Exists(ctx context.Context, entryID, filename string) (bool, error)
	Save(ctx context.Context, attachment *journalDatamodel.Attachment) error
}

type FetcherConfig struct {
	MaxBytes int64
	Timeout  time.Duration
}

// Fetcher retrieves receipt documents for a posted entry. Everything here
// is best effort: failures are logged and swallowed, a missing receipt
// never rolls back or fails the posting.
type Fetcher struct {
	store  BlobStore
	cfg    FetcherConfig
	http   *http.Client
	logger *slog.Logger
}

func NewFetcher(store BlobStore, cfg FetcherConfig, logger *slog.Logger) *Fetcher {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 20 << 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Fetcher{
		store:  store,
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type attachmentCandidate struct {
	url          string
	base64Data   string
	filenameHint string
	contentType  string
}

// FetchAndStore scans rec for attachment candidates and stores every usable
// one against entryID.
func (f *Fetcher) FetchAndStore(ctx context.Context, s *settings.Settings, rec moola.Record, entryID string) {
	candidates := collectCandidates(rec)
	if len(candidates) == 0 {
		return
	}

	for i, cand := range candidates {
		var (
			data        []byte
			contentType string
		)

		switch {
		case cand.base64Data != "":
			decoded, err := base64.StdEncoding.DecodeString(cand.base64Data)
			if err != nil {
				f.logger.Warn("attachment base64 decode failed", "entry_id", entryID, "error", err)
				continue
			}
			data, contentType = decoded, cand.contentType
		case cand.url != "":
			var ok bool
			data, contentType, ok = f.download(ctx, s, cand.url, entryID)
			if !ok {
				continue
			}
		default:
			continue
		}

		if int64(len(data)) > f.cfg.MaxBytes {
			f.logger.Warn("attachment exceeds size cap, skipped",
				"entry_id", entryID,
				"size", len(data),
				"max_bytes", f.cfg.MaxBytes)
			continue
		}
		if len(data) == 0 {
			f.logger.Warn("attachment payload empty, skipped", "entry_id", entryID, "url", cand.url)
			continue
		}

		filename := deriveFilename(cand, contentType, rec.ID(), i)

		exists, err := f.store.Exists(ctx, entryID, filename)
		if err != nil {
			f.logger.Warn("attachment existence check failed", "entry_id", entryID, "filename", filename, "error", err)
			continue
		}
		if exists {
			f.logger.Debug("attachment already stored", "entry_id", entryID, "filename", filename)
			continue
		}

		att := &journalDatamodel.Attachment{
			EntryID:     entryID,
			Filename:    filename,
			ContentType: contentType,
			SizeBytes:   int64(len(data)),
			Data:        data,
		}
		if err := f.store.Save(ctx, att); err != nil {
			f.logger.Warn("attachment store failed", "entry_id", entryID, "filename", filename, "error", err)
			continue
		}

		f.logger.Info("attachment stored", "entry_id", entryID, "filename", filename, "size", len(data))
	}
}

// download GETs an attachment URL sending only the configured auth header.
// Only http/https URLs are honored.
func (f *Fetcher) download(ctx context.Context, s *settings.Settings, rawURL, entryID string) (data []byte, contentType string, ok bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		f.logger.Warn("attachment url rejected", "entry_id", entryID, "url", rawURL)
		return nil, "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.logger.Warn("attachment request build failed", "entry_id", entryID, "error", err)
		return nil, "", false
	}
	if name, value := moola.AuthHeader(authConfig(s)); name != "" {
		req.Header.Set(name, value)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		f.logger.Warn("attachment download failed", "entry_id", entryID, "url", rawURL, "error", err)
		return nil, "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		f.logger.Warn("attachment download rejected", "entry_id", entryID, "url", rawURL, "status", resp.StatusCode)
		return nil, "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		f.logger.Warn("attachment read failed", "entry_id", entryID, "url", rawURL, "error", err)
		return nil, "", false
	}

	return body, resp.Header.Get("Content-Type"), true
}

func authConfig(s *settings.Settings) moola.Config {
	return moola.Config{
		AuthType:      s.AuthType,
		BasicUsername: s.BasicUsername,
		BasicPassword: s.BasicPassword,
		APIKey:        s.APIKey,
	}
}

// collectCandidates gathers attachment references from the shapes Moola
// payloads have been seen to carry: an explicit attachments array, flat
// URL fields and flat inline-base64 fields.
func collectCandidates(rec moola.Record) []attachmentCandidate {
	var candidates []attachmentCandidate

	if raw, ok := rec["attachments"].([]any); ok {
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			att := moola.Record(m)
			cand := attachmentCandidate{
				url:          pickFirst(att, "url", "fileUrl", "downloadUrl"),
				base64Data:   pickFirst(att, "base64", "content"),
				filenameHint: pickFirst(att, "fileName", "filename", "name"),
				contentType:  pickFirst(att, "contentType", "mimeType"),
			}
			if cand.url != "" || cand.base64Data != "" {
				candidates = append(candidates, cand)
			}
		}
	}

	for _, field := range []string{"receiptUrl", "invoiceUrl", "attachmentUrl"} {
		if u := strings.TrimSpace(rec.Str(field)); u != "" {
			candidates = append(candidates, attachmentCandidate{url: u})
		}
	}

	for _, field := range []string{"receiptBase64", "attachmentBase64"} {
		if b := strings.TrimSpace(rec.Str(field)); b != "" {
			candidates = append(candidates, attachmentCandidate{base64Data: b})
		}
	}

	return candidates
}

func pickFirst(rec moola.Record, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(rec.Str(key)); v != "" {
			return v
		}
	}
	return ""
}

// deriveFilename picks the stored filename: explicit hint, then the URL
// path basename, then a synthesized name from content type and record id.
func deriveFilename(cand attachmentCandidate, contentType, recordID string, index int) string {
	if cand.filenameHint != "" {
		return cand.filenameHint
	}

	if cand.url != "" {
		if parsed, err := url.Parse(cand.url); err == nil {
			base := path.Base(parsed.Path)
			if base != "" && base != "." && base != "/" {
				return base
			}
		}
	}

	ext := extensionFor(contentType)
	if recordID == "" {
		recordID = "unknown"
	}
	return "moola-" + recordID + "-" + strconv.Itoa(index) + ext
}

func extensionFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/jpeg"):
		return ".jpg"
	case strings.HasPrefix(contentType, "image/png"):
		return ".png"
	case strings.HasPrefix(contentType, "application/pdf"):
		return ".pdf"
	default:
		return ".bin"
	}
}


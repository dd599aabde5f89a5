package moola

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/moola-sync/internal"
)

const (
	AuthTypeBasic  = "Basic"
	AuthTypeBearer = "Bearer"
	AuthTypeAPIKey = "ApiKey"

	// maxErrorBodyLen bounds the response body captured into transport
	// error details.
	maxErrorBodyLen = 5000
)

type Config struct {
	BaseURL       string
	ListEndpoint  string
	AuthType      string
	BasicUsername string
	BasicPassword string
	APIKey        string
	Timeout       time.Duration
}

// AuthHeader builds the single auth header for the configured scheme. At
// most one scheme is ever applied per request. Returns empty strings when
// no credentials are configured.
func AuthHeader(cfg Config) (name, value string) {
	switch cfg.AuthType {
	case AuthTypeBasic:
		if cfg.BasicUsername != "" {
			token := base64.StdEncoding.EncodeToString(
				[]byte(strings.TrimSpace(cfg.BasicUsername) + ":" + strings.TrimSpace(cfg.BasicPassword)))
			return "Authorization", "Basic " + token
		}
	case AuthTypeBearer:
		if cfg.APIKey != "" {
			return "Authorization", "Bearer " + strings.TrimSpace(cfg.APIKey)
		}
	case AuthTypeAPIKey:
		if cfg.APIKey != "" {
			return "x-api-key", strings.TrimSpace(cfg.APIKey)
		}
	}
	return "", ""
}

// Page is one page of the expense listing.
type Page struct {
	Items       []Record `json:"data"`
	HasNextPage bool     `json:"hasNextPage"`
}

// TransportErrorDetail captures full request/response context for
// postmortem, logged to the operator error log.
type TransportErrorDetail struct {
	URL             string            `json:"url"`
	StatusCode      int               `json:"status_code"`
	ResponseBody    string            `json:"response_text"`
	ResponseHeaders map[string]string `json:"response_headers"`
	SentHeaders     map[string]string `json:"sent_headers"`
	SentParams      map[string]string `json:"sent_params"`
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// FetchPage performs one authenticated GET against the expense listing.
// Query parameters are exactly pageNumber and pageSize, plus FromDate and
// ToDate (date-only ISO, ToDate=today) when from is given.
func (c *Client) FetchPage(ctx context.Context, pageNumber, pageSize int, from *time.Time) (*Page, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(c.cfg.ListEndpoint, "/")

	params := url.Values{}
	params.Set("pageNumber", strconv.Itoa(pageNumber))
	params.Set("pageSize", strconv.Itoa(pageSize))
	if from != nil {
		params.Set("FromDate", from.Format("2006-01-02"))
		params.Set("ToDate", time.Now().Format("2006-01-02"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, internal.NewTransportError("failed to build expense list request", internal.ErrCodeNetworkError).WithCause(err)
	}

	sentHeaders := map[string]string{}
	if name, value := AuthHeader(c.cfg); name != "" {
		req.Header.Set(name, value)
		sentHeaders[name] = value
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("moola sync: network error",
			"url", endpoint,
			"page", pageNumber,
			"error", err)
		return nil, internal.NewTransportError("remote API unreachable", internal.ErrCodeNetworkError).WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("moola sync: network error", "url", endpoint, "error", err)
		return nil, internal.NewTransportError("failed to read remote response", internal.ErrCodeNetworkError).WithCause(err)
	}

	if resp.StatusCode >= 400 {
		detail := c.errorDetail(resp, body, sentHeaders, params)
		c.logger.Error("moola sync: http error",
			"url", detail.URL,
			"status_code", detail.StatusCode,
			"response_text", detail.ResponseBody,
			"response_headers", detail.ResponseHeaders,
			"sent_headers", redactHeaders(detail.SentHeaders),
			"sent_params", detail.SentParams)
		return nil, internal.NewTransportError(
			fmt.Sprintf("remote API error %d, see error log 'moola sync: http error'", resp.StatusCode),
			internal.ErrCodeHTTPError,
		).WithDetails(detail)
	}

	// The server sometimes sends JSON under a non-JSON content type, so the
	// body is parsed regardless and only a parse failure is fatal.
	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		c.logger.Error("moola sync: invalid json",
			"url", endpoint,
			"body", truncate(string(body), maxErrorBodyLen))
		return nil, internal.NewTransportError("remote API returned non-JSON response", internal.ErrCodeInvalidJSON).WithCause(err)
	}

	return &page, nil
}

func (c *Client) errorDetail(resp *http.Response, body []byte, sentHeaders map[string]string, params url.Values) *TransportErrorDetail {
	respHeaders := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		respHeaders[name] = resp.Header.Get(name)
	}
	sentParams := make(map[string]string, len(params))
	for name := range params {
		sentParams[name] = params.Get(name)
	}
	return &TransportErrorDetail{
		URL:             resp.Request.URL.String(),
		StatusCode:      resp.StatusCode,
		ResponseBody:    truncate(string(body), maxErrorBodyLen),
		ResponseHeaders: respHeaders,
		SentHeaders:     sentHeaders,
		SentParams:      sentParams,
	}
}

func redactHeaders(headers map[string]string) map[string]string {
	redacted := make(map[string]string, len(headers))
	for name := range headers {
		redacted[name] = "[FILTERED]"
	}
	return redacted
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

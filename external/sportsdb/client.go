package sportsdb

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/acewatch/acewatch/internal/platform/logging"
	"github.com/acewatch/acewatch/internal/platform/resilience"
	"github.com/acewatch/acewatch/internal/usecase"
)

const (
	defaultV1BaseURL = "https://www.thesportsdb.com/api/v1/json/3"
	defaultV2BaseURL = "https://www.thesportsdb.com/api/v2/json"
	defaultLeagueID  = "4464"
	sportTennis      = "Tennis"
	maxResponseBytes = 6 << 20
)

var apiKeyHeaderRegex = regexp.MustCompile(`(?i)x-api-key[:=]\s*[^&\s"']+`)
var errSportsDBTransient = crerr.New("sportsdb transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	V1BaseURL      string
	V2BaseURL      string
	APIKey         string
	LeagueID       string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to TheSportsDB. The v1 API keys requests through the URL
// path while v2 expects an X-API-KEY header; both shapes are handled here
// so callers only see usecase.EventProvider.
type Client struct {
	httpClient     *http.Client
	v1BaseURL      string
	v2BaseURL      string
	apiKey         string
	leagueID       string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	v1BaseURL := strings.TrimRight(strings.TrimSpace(cfg.V1BaseURL), "/")
	if v1BaseURL == "" {
		v1BaseURL = defaultV1BaseURL
	}
	v2BaseURL := strings.TrimRight(strings.TrimSpace(cfg.V2BaseURL), "/")
	if v2BaseURL == "" {
		v2BaseURL = defaultV2BaseURL
	}
	leagueID := strings.TrimSpace(cfg.LeagueID)
	if leagueID == "" {
		leagueID = defaultLeagueID
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		v1BaseURL:      v1BaseURL,
		v2BaseURL:      v2BaseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		leagueID:       leagueID,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.MaxProbes),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchEventsForDate lists tennis events scheduled on the given day.
// Date must already be formatted as YYYY-MM-DD.
func (c *Client) FetchEventsForDate(ctx context.Context, date string) ([]usecase.RawRecord, error) {
	query := url.Values{}
	query.Set("d", date)
	query.Set("s", sportTennis)
	return c.fetchRecords(ctx, c.v1BaseURL+"/eventsday.php?"+query.Encode(), false)
}

func (c *Client) FetchLiveEvents(ctx context.Context) ([]usecase.RawRecord, error) {
	return c.fetchRecords(ctx, c.v2BaseURL+"/livescore/"+sportTennis, true)
}

func (c *Client) FetchUpcomingEvents(ctx context.Context, leagueID string) ([]usecase.RawRecord, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		leagueID = c.leagueID
	}
	return c.fetchRecords(ctx, c.v2BaseURL+"/schedule/next/league/"+url.PathEscape(leagueID), true)
}

func (c *Client) FetchRecentEvents(ctx context.Context) ([]usecase.RawRecord, error) {
	return c.fetchRecords(ctx, c.v2BaseURL+"/schedule/previous/league/"+url.PathEscape(c.leagueID), true)
}

// FetchEventByID returns nil, nil when the provider has no event for the id.
func (c *Client) FetchEventByID(ctx context.Context, eventID string) (usecase.RawRecord, error) {
	query := url.Values{}
	query.Set("id", eventID)
	records, err := c.fetchRecords(ctx, c.v1BaseURL+"/lookupevent.php?"+query.Encode(), false)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

type eventsEnvelope struct {
	Events    []map[string]any `json:"events"`
	Schedule  []map[string]any `json:"schedule"`
	Livescore []map[string]any `json:"livescore"`
}

func (e eventsEnvelope) records() []map[string]any {
	switch {
	case e.Events != nil:
		return e.Events
	case e.Schedule != nil:
		return e.Schedule
	default:
		return e.Livescore
	}
}

func (c *Client) fetchRecords(ctx context.Context, fullURL string, keyHeader bool) ([]usecase.RawRecord, error) {
	var envelope eventsEnvelope
	if err := c.doJSON(ctx, fullURL, keyHeader, &envelope); err != nil {
		return nil, err
	}

	items := envelope.records()
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]usecase.RawRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, usecase.RawRecord(item))
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, fullURL string, keyHeader bool, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sportsdb circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: tennis data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL, keyHeader)
		if c.circuitEnabled {
			if reqErr != nil && isSportsDBCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string, keyHeader bool) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if keyHeader && c.apiKey != "" {
			req.Header.Set("X-API-KEY", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errSportsDBTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errSportsDBTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errSportsDBTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "sportsdb request failed", "url", redactAPIURL(fullURL, c.apiKey), "error", lastErr)
	return nil, lastErr
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	value = apiKeyHeaderRegex.ReplaceAllString(value, "X-API-KEY: REDACTED")
	return value
}

func isSportsDBCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errSportsDBTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// redactAPIURL hides the key when a caller configured a keyed v1 base URL.
func redactAPIURL(rawURL, apiKey string) string {
	if apiKey == "" {
		return rawURL
	}
	return strings.ReplaceAll(rawURL, "/"+apiKey+"/", "/REDACTED/")
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

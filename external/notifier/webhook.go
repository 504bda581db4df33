package notifier

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/acewatch/acewatch/internal/domain/alert"
	"github.com/acewatch/acewatch/internal/platform/logging"
	"github.com/acewatch/acewatch/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("alert webhook transient failure")

type WebhookPublisherConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookPublisher delivers fired alert notifications to a configured
// HTTP endpoint. Delivery is best effort: the caller decides whether a
// failed publish aborts or just logs.
type WebhookPublisher struct {
	client         *fasthttp.Client
	url            string
	token          string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *logging.Logger) (*WebhookPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	endpoint, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid alert webhook URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookPublisher{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:            endpoint,
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.MaxProbes),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

type webhookPayload struct {
	AlertID    string `json:"alertId"`
	UserID     string `json:"userId"`
	EventID    string `json:"eventId"`
	Trigger    string `json:"trigger"`
	HomePlayer string `json:"homePlayer"`
	AwayPlayer string `json:"awayPlayer"`
	Status     string `json:"status"`
	FiredAt    string `json:"firedAt"`
}

func (p *WebhookPublisher) Publish(ctx context.Context, notification alert.Notification) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "alert webhook circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("alert webhook is temporarily unavailable: %w", err)
		}
	}

	body, err := sonic.Marshal(webhookPayload{
		AlertID:    notification.AlertID,
		UserID:     notification.UserID,
		EventID:    notification.EventID,
		Trigger:    notification.Trigger,
		HomePlayer: notification.HomePlayer,
		AwayPlayer: notification.AwayPlayer,
		Status:     notification.Status,
		FiredAt:    notification.FiredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return crerr.Wrap(err, "marshal alert notification")
	}

	callErr := p.deliver(ctx, body)
	p.recordCircuitResult(callErr)
	if callErr != nil {
		p.logger.WarnContext(ctx, "alert webhook delivery failed",
			"alert_id", notification.AlertID,
			"trigger", notification.Trigger,
			"request", buildWebhookPreview(p.url, notification.Trigger, len(body)),
			"error", callErr,
		)
		return callErr
	}

	p.logger.InfoContext(ctx, "alert webhook delivered", "alert_id", notification.AlertID, "trigger", notification.Trigger)
	return nil
}

func (p *WebhookPublisher) deliver(ctx context.Context, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()

		req.SetRequestURI(p.url)
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		if p.token != "" {
			req.Header.Set("Authorization", "Bearer "+p.token)
		}
		req.SetBody(body)

		err := p.client.DoTimeout(req, resp, p.timeout)
		status := resp.StatusCode()
		respBody := strings.TrimSpace(string(resp.Body()))
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send webhook request: %v", errWebhookTransient, err)
		case status/100 == 2:
			return nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: webhook status=%d body=%s", errWebhookTransient, status, respBody)
		default:
			return fmt.Errorf("webhook status=%d body=%s", status, respBody)
		}

		if attempt == p.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("webhook request failed")
	}
	return lastErr
}

func (p *WebhookPublisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errWebhookTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}

func buildWebhookPreview(endpoint, trigger string, bodyLen int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("POST ")
	_, _ = buf.WriteString(endpoint)
	_, _ = buf.WriteString(" trigger=")
	_, _ = buf.WriteString(trigger)
	_, _ = buf.WriteString(fmt.Sprintf(" body_bytes=%d", bodyLen))

	return buf.String()
}

package sportsdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/acewatch/acewatch/internal/platform/logging"
	"github.com/acewatch/acewatch/internal/platform/resilience"
	"github.com/acewatch/acewatch/internal/usecase"
)

func newTestClient(t *testing.T, v1URL, v2URL string) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		V1BaseURL: v1URL,
		V2BaseURL: v2URL,
		APIKey:    "test-key",
		LeagueID:  "4464",
		Timeout:   2 * time.Second,
		Logger:    logging.NewNop(),
	})
}

func TestClient_FetchEventsForDate_DecodesEventsEnvelope(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("d"); got != "2024-07-01" {
			t.Errorf("expected d=2024-07-01, got=%q", got)
		}
		if got := r.URL.Query().Get("s"); got != "Tennis" {
			t.Errorf("expected s=Tennis, got=%q", got)
		}
		if r.Header.Get("X-API-KEY") != "" {
			t.Errorf("v1 request must not carry the key header")
		}
		_, _ = w.Write([]byte(`{"events":[{"idEvent":"101","strEvent":"Sinner vs Alcaraz"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	records, err := client.FetchEventsForDate(context.Background(), "2024-07-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got=%d", len(records))
	}
	if got := records[0]["idEvent"]; got != "101" {
		t.Fatalf("expected idEvent=101, got=%v", got)
	}
}

func TestClient_FetchLiveEvents_UsesKeyHeaderAndLivescoreKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("expected X-API-KEY=test-key, got=%q", got)
		}
		if r.URL.Path != "/livescore/Tennis" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"livescore":[{"idEvent":"7"},{"idEvent":"8"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	records, err := client.FetchLiveEvents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected two records, got=%d", len(records))
	}
}

func TestClient_FetchUpcomingEvents_FallsBackToConfiguredLeague(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedule/next/league/4464" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"schedule":[{"idEvent":"55"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	records, err := client.FetchUpcomingEvents(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got=%d", len(records))
	}
}

func TestClient_FetchEventByID_ReturnsNilForUnknownEvent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events":null}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	record, err := client.FetchEventByID(context.Background(), "999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil record, got=%v", record)
	}
}

func TestClient_ExecuteRequest_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"events":[{"idEvent":"1"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	client.maxRetries = 1

	records, err := client.FetchEventsForDate(context.Background(), "2024-07-01")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got=%d", len(records))
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected two attempts, got=%d", got)
	}
}

func TestClient_ExecuteRequest_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	client.maxRetries = 2

	if _, err := client.FetchEventsForDate(context.Background(), "2024-07-01"); err == nil {
		t.Fatalf("expected an error for status 404")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got=%d", got)
	}
}

func TestClient_CircuitOpen_ReturnsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		V1BaseURL: server.URL,
		V2BaseURL: server.URL,
		APIKey:    "test-key",
		Timeout:   2 * time.Second,
		Logger:    logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			MaxProbes:        1,
		},
	})

	if _, err := client.FetchLiveEvents(context.Background()); err == nil {
		t.Fatalf("expected the first request to fail")
	}
	_, err := client.FetchLiveEvents(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got=%v", err)
	}
}

func TestSanitizeSensitiveText_RedactsKey(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText("dial failed for key secret-key via X-API-KEY: secret-key", "secret-key")
	if strings.Contains(got, "secret-key") {
		t.Fatalf("expected key to be redacted, got=%q", got)
	}
}

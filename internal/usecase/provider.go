package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// RawRecord is one untyped event payload as decoded from the upstream
// feed. Keys and value types vary between endpoints and seasons, so all
// access goes through the coercion helpers below.
type RawRecord map[string]any

// EventProvider fetches raw tennis events. Implementations return a nil
// slice and nil error when the feed has no rows for the query, and a
// nil record from FetchEventByID when the event is unknown upstream.
type EventProvider interface {
	FetchEventsForDate(ctx context.Context, date string) ([]RawRecord, error)
	FetchLiveEvents(ctx context.Context) ([]RawRecord, error)
	FetchUpcomingEvents(ctx context.Context, leagueID string) ([]RawRecord, error)
	FetchRecentEvents(ctx context.Context) ([]RawRecord, error)
	FetchEventByID(ctx context.Context, eventID string) (RawRecord, error)
}

// rawString renders a scalar field as a trimmed string. Missing keys,
// nils and unsupported types come back empty.
func rawString(r RawRecord, key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}

	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// firstRawString returns the first key that yields a non-empty value.
func firstRawString(r RawRecord, keys ...string) string {
	for _, key := range keys {
		if v := rawString(r, key); v != "" {
			return v
		}
	}
	return ""
}

// rawInt coerces numeric strings and JSON numbers to int.
func rawInt(r RawRecord, key string) (int, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}

	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// firstRawInt returns the first key that parses as an int.
func firstRawInt(r RawRecord, keys ...string) (int, bool) {
	for _, key := range keys {
		if n, ok := rawInt(r, key); ok {
			return n, true
		}
	}
	return 0, false
}

func rawHasValue(r RawRecord, keys ...string) bool {
	for _, key := range keys {
		if rawString(r, key) != "" {
			return true
		}
	}
	return false
}

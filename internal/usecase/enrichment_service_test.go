package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/acewatch/acewatch/internal/domain/event"
	"github.com/acewatch/acewatch/internal/platform/logging"
)

func basicEvents(n int) []event.Event {
	out := make([]event.Event, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, event.Event{
			ID:         fmt.Sprintf("%d", i+1),
			HomePlayer: fmt.Sprintf("Home %d", i+1),
			AwayPlayer: fmt.Sprintf("Away %d", i+1),
			League:     "Wimbledon",
			Status:     event.StatusScheduled,
		})
	}
	return out
}

func newEnrichment(fetch DetailFetcher, maxInFlight int) *EnrichmentService {
	return NewEnrichmentService(fetch, NewNormalizer(logging.NewNop()), NewDemoEnhancer(&scriptedRand{values: []int{1}}), maxInFlight, logging.NewNop())
}

func TestEnrichmentService_Enrich_PreservesOrder(t *testing.T) {
	t.Parallel()

	fetch := func(ctx context.Context, eventID string) (RawRecord, error) {
		return RawRecord{"idEvent": eventID, "strLeague": "Detail League " + eventID}, nil
	}

	for _, workers := range []int{1, 3, 10} {
		got := newEnrichment(fetch, workers).Enrich(context.Background(), basicEvents(7))
		if len(got) != 7 {
			t.Fatalf("workers=%d: expected 7 events, got=%d", workers, len(got))
		}
		for i, ev := range got {
			wantID := fmt.Sprintf("%d", i+1)
			if ev.ID != wantID {
				t.Fatalf("workers=%d: slot %d holds id=%q, want=%q", workers, i, ev.ID, wantID)
			}
			if ev.League != "Detail League "+wantID {
				t.Fatalf("workers=%d: slot %d not enriched: %+v", workers, i, ev)
			}
		}
	}
}

func TestEnrichmentService_Enrich_FailedFetchKeepsBasicEvent(t *testing.T) {
	t.Parallel()

	fetch := func(ctx context.Context, eventID string) (RawRecord, error) {
		if eventID == "2" {
			return nil, crerr.New("detail endpoint down")
		}
		return RawRecord{"idEvent": eventID, "strRound": "Final"}, nil
	}

	got := newEnrichment(fetch, 4).Enrich(context.Background(), basicEvents(3))
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got=%d", len(got))
	}
	if got[1].Round != "" {
		t.Fatalf("failed slot must keep the basic event, got=%+v", got[1])
	}
	if got[0].Round != "Final" || got[2].Round != "Final" {
		t.Fatalf("healthy slots must be enriched, got=%+v", got)
	}
}

func TestEnrichmentService_Enrich_NilDetailTriggersDemoEnhancement(t *testing.T) {
	t.Parallel()

	fetch := func(ctx context.Context, eventID string) (RawRecord, error) {
		return nil, nil
	}

	basics := basicEvents(2)
	basics[0].League = defaultLeague
	got := newEnrichment(fetch, 2).Enrich(context.Background(), basics)

	if got[0].League == defaultLeague {
		t.Fatalf("expected placeholder league replaced, got=%q", got[0].League)
	}
	if got[0].Venue == "" {
		t.Fatalf("expected demo venue filled, got=%+v", got[0])
	}
	if got[1].League != "Wimbledon" {
		t.Fatalf("expected real league kept, got=%q", got[1].League)
	}
}

func TestEnrichmentService_Enrich_IDMismatchKeepsBasicEvent(t *testing.T) {
	t.Parallel()

	fetch := func(ctx context.Context, eventID string) (RawRecord, error) {
		return RawRecord{"idEvent": "unrelated", "strRound": "Final"}, nil
	}

	got := newEnrichment(fetch, 2).Enrich(context.Background(), basicEvents(1))
	if got[0].Round != "" {
		t.Fatalf("mismatched detail must not merge, got=%+v", got[0])
	}
}

func TestEnrichmentService_Enrich_PanicInFetcherKeepsBasicEvent(t *testing.T) {
	t.Parallel()

	fetch := func(ctx context.Context, eventID string) (RawRecord, error) {
		if eventID == "1" {
			panic("fetcher bug")
		}
		return RawRecord{"idEvent": eventID, "strRound": "Final"}, nil
	}

	got := newEnrichment(fetch, 2).Enrich(context.Background(), basicEvents(2))
	if got[0].Round != "" {
		t.Fatalf("panicked slot must keep the basic event, got=%+v", got[0])
	}
	if got[1].Round != "Final" {
		t.Fatalf("other slots must still enrich, got=%+v", got[1])
	}
}

func TestEnrichmentService_Enrich_CancelledContextSkipsLookups(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	fetch := func(ctx context.Context, eventID string) (RawRecord, error) {
		calls.Add(1)
		return RawRecord{"idEvent": eventID, "strRound": "Final"}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	basics := basicEvents(5)
	got := newEnrichment(fetch, 2).Enrich(ctx, basics)
	if len(got) != 5 {
		t.Fatalf("expected all slots present, got=%d", len(got))
	}
	for i := range got {
		if got[i].Round != "" {
			t.Fatalf("cancelled run must not merge details, got=%+v", got[i])
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no detail fetches after cancellation, got=%d", calls.Load())
	}
}

func TestEnrichmentService_Enrich_MergeRules(t *testing.T) {
	t.Parallel()

	now := time.Now()
	fetch := func(ctx context.Context, eventID string) (RawRecord, error) {
		return RawRecord{
			"idEvent":      "1",
			"strHomeTeam":  "Detail Home",
			"strStatus":    "1st Set",
			"strHomeGoals": "1",
			"strAwayGoals": "0",
			"strVenue":     "Rod Laver Arena",
		}, nil
	}

	basics := []event.Event{{
		ID:         "1",
		HomePlayer: "Basic Home",
		AwayPlayer: "Basic Away",
		League:     "Australian Open",
		Status:     event.StatusScheduled,
		StartTime:  now,
	}}
	got := newEnrichment(fetch, 1).Enrich(context.Background(), basics)[0]

	if got.HomePlayer != "Detail Home" {
		t.Fatalf("expected detail player, got=%q", got.HomePlayer)
	}
	if got.AwayPlayer != "Basic Away" {
		t.Fatalf("expected basic away kept when detail lacks it, got=%q", got.AwayPlayer)
	}
	if got.Status != event.StatusInPlay {
		t.Fatalf("expected status upgraded to In Play, got=%q", got.Status)
	}
	if got.Score == nil || !got.Score.HasSets() || *got.Score.HomeSets != 1 {
		t.Fatalf("expected detail score merged, got=%+v", got.Score)
	}
	if got.Venue != "Rod Laver Arena" {
		t.Fatalf("expected detail venue, got=%q", got.Venue)
	}
}

func TestEnrichmentService_Enrich_ScheduledDetailNeverDowngrades(t *testing.T) {
	t.Parallel()

	fetch := func(ctx context.Context, eventID string) (RawRecord, error) {
		// No status fields and a future timestamp, so inference says Scheduled.
		return RawRecord{
			"idEvent":      "1",
			"strTimestamp": time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		}, nil
	}

	basics := []event.Event{{ID: "1", Status: event.StatusInPlay}}
	got := newEnrichment(fetch, 1).Enrich(context.Background(), basics)[0]
	if got.Status != event.StatusInPlay {
		t.Fatalf("expected In Play preserved, got=%q", got.Status)
	}
}

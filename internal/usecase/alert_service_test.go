package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/acewatch/acewatch/internal/domain/alert"
	"github.com/acewatch/acewatch/internal/domain/event"
	"github.com/acewatch/acewatch/internal/infrastructure/repository/memory"
	"github.com/acewatch/acewatch/internal/platform/logging"
)

type capturingDispatcher struct {
	mu            sync.Mutex
	notifications []alert.Notification
	err           error
}

func (d *capturingDispatcher) Publish(_ context.Context, n alert.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.notifications = append(d.notifications, n)
	return nil
}

func (d *capturingDispatcher) all() []alert.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]alert.Notification, len(d.notifications))
	copy(out, d.notifications)
	return out
}

// alertFixture wires an alert service whose live snapshot is swappable
// between evaluation rounds.
type alertFixture struct {
	service    *AlertService
	provider   *stubProvider
	dispatcher *capturingDispatcher
}

func newAlertFixture() *alertFixture {
	provider := &stubProvider{}
	events := newEventService(provider, nil)
	dispatcher := &capturingDispatcher{}
	service := NewAlertService(memory.NewAlertRepository(), events, dispatcher, nil, logging.NewNop())
	return &alertFixture{service: service, provider: provider, dispatcher: dispatcher}
}

func liveRecord(id, status string) RawRecord {
	return RawRecord{
		"idEvent":      id,
		"strEvent":     "Sinner vs Alcaraz",
		"strStatus":    status,
		"strHomeGoals": "1",
		"strAwayGoals": "0",
	}
}

func TestAlertService_Create_ValidatesInput(t *testing.T) {
	f := newAlertFixture()

	if _, err := f.service.Create(t.Context(), "user-1", "", alert.TriggerMatchStarted); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing event, got=%v", err)
	}
	if _, err := f.service.Create(t.Context(), "user-1", "event-1", "rain_delay"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown trigger, got=%v", err)
	}

	a, err := f.service.Create(t.Context(), "user-1", "event-1", "  MATCH_STARTED  ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if a.Trigger != alert.TriggerMatchStarted || !a.Active {
		t.Fatalf("unexpected alert %+v", a)
	}
}

func TestAlertService_SetActiveAndDelete_ScopedToOwner(t *testing.T) {
	f := newAlertFixture()

	a, err := f.service.Create(t.Context(), "user-1", "event-1", alert.TriggerMatchFinished)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.service.SetActive(t.Context(), a.ID, "user-2", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got=%v", err)
	}
	updated, err := f.service.SetActive(t.Context(), a.ID, "user-1", false)
	if err != nil {
		t.Fatalf("set active failed: %v", err)
	}
	if updated.Active {
		t.Fatalf("expected alert deactivated")
	}

	if err := f.service.Delete(t.Context(), a.ID, "user-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting foreign alert, got=%v", err)
	}
	if err := f.service.Delete(t.Context(), a.ID, "user-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}

func TestAlertService_EvaluateLive_FiresOnStartTransition(t *testing.T) {
	f := newAlertFixture()

	if _, err := f.service.Create(t.Context(), "user-1", "event-1", alert.TriggerMatchStarted); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// First sighting is already in play; the baseline is Scheduled so
	// the start trigger fires immediately.
	f.provider.liveRecords = []RawRecord{liveRecord("event-1", "1st Set")}
	fired, err := f.service.EvaluateLive(t.Context())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected one notification, got=%d", fired)
	}

	// Same snapshot again: no transition, nothing fires.
	fired, err = f.service.EvaluateLive(t.Context())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if fired != 0 {
		t.Fatalf("expected no repeat notifications, got=%d", fired)
	}

	got := f.dispatcher.all()
	if len(got) != 1 {
		t.Fatalf("expected one dispatched notification, got=%d", len(got))
	}
	if got[0].Trigger != alert.TriggerMatchStarted || got[0].EventID != "event-1" {
		t.Fatalf("unexpected notification %+v", got[0])
	}
	if got[0].HomePlayer != "Sinner" || got[0].Status != event.StatusInPlay {
		t.Fatalf("expected event context in notification, got=%+v", got[0])
	}
}

func TestAlertService_EvaluateLive_FinishedAndPhaseTriggers(t *testing.T) {
	f := newAlertFixture()

	if _, err := f.service.Create(t.Context(), "user-1", "event-1", alert.TriggerMatchFinished); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.service.Create(t.Context(), "user-1", "event-1", alert.TriggerTieBreak); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.service.Create(t.Context(), "user-1", "event-1", alert.TriggerThirdSet); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Round 1: match starts without any subscribed phase.
	f.provider.liveRecords = []RawRecord{liveRecord("event-1", "1st Set")}
	if fired, err := f.service.EvaluateLive(t.Context()); err != nil || fired != 0 {
		t.Fatalf("round 1: fired=%d err=%v", fired, err)
	}

	// Round 2: tie break phase entered.
	f.provider.liveRecords = []RawRecord{liveRecord("event-1", "Tie Break")}
	if fired, err := f.service.EvaluateLive(t.Context()); err != nil || fired != 1 {
		t.Fatalf("round 2: fired=%d err=%v", fired, err)
	}

	// Round 3: still in the tie break, no re-fire.
	if fired, err := f.service.EvaluateLive(t.Context()); err != nil || fired != 0 {
		t.Fatalf("round 3: fired=%d err=%v", fired, err)
	}

	// Round 4: third set begins.
	f.provider.liveRecords = []RawRecord{liveRecord("event-1", "3rd Set")}
	if fired, err := f.service.EvaluateLive(t.Context()); err != nil || fired != 1 {
		t.Fatalf("round 4: fired=%d err=%v", fired, err)
	}

	// Round 5: match over.
	f.provider.liveRecords = []RawRecord{liveRecord("event-1", "Finished")}
	if fired, err := f.service.EvaluateLive(t.Context()); err != nil || fired != 1 {
		t.Fatalf("round 5: fired=%d err=%v", fired, err)
	}

	triggers := make([]string, 0)
	for _, n := range f.dispatcher.all() {
		triggers = append(triggers, n.Trigger)
	}
	want := []string{alert.TriggerTieBreak, alert.TriggerThirdSet, alert.TriggerMatchFinished}
	if len(triggers) != len(want) {
		t.Fatalf("expected triggers %v, got=%v", want, triggers)
	}
	for i := range want {
		if triggers[i] != want[i] {
			t.Fatalf("expected triggers %v, got=%v", want, triggers)
		}
	}
}

func TestAlertService_EvaluateLive_SkipsInactiveAndForeignAlerts(t *testing.T) {
	f := newAlertFixture()

	a, err := f.service.Create(t.Context(), "user-1", "event-1", alert.TriggerMatchStarted)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.service.SetActive(t.Context(), a.ID, "user-1", false); err != nil {
		t.Fatalf("set active failed: %v", err)
	}
	if _, err := f.service.Create(t.Context(), "user-2", "other-event", alert.TriggerMatchStarted); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	f.provider.liveRecords = []RawRecord{liveRecord("event-1", "1st Set")}
	fired, err := f.service.EvaluateLive(t.Context())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if fired != 0 {
		t.Fatalf("expected no notifications, got=%d", fired)
	}
}

func TestAlertService_EvaluateLive_CountsLogOnlyFiringsWithoutDispatcher(t *testing.T) {
	provider := &stubProvider{liveRecords: []RawRecord{liveRecord("event-1", "1st Set")}}
	service := NewAlertService(memory.NewAlertRepository(), newEventService(provider, nil), nil, nil, logging.NewNop())

	if _, err := service.Create(t.Context(), "user-1", "event-1", alert.TriggerMatchStarted); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	fired, err := service.EvaluateLive(t.Context())
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected one log-only firing, got=%d", fired)
	}
}

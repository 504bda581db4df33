package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/acewatch/acewatch/internal/domain/alert"
	"github.com/acewatch/acewatch/internal/domain/event"
	"github.com/acewatch/acewatch/internal/platform/id"
	"github.com/acewatch/acewatch/internal/platform/logging"
)

// AlertDispatcher delivers fired notifications to the outside world.
type AlertDispatcher interface {
	Publish(ctx context.Context, n alert.Notification) error
}

// AlertService manages alert subscriptions and evaluates them against
// consecutive live snapshots. Triggers fire on transitions only, so a
// match stuck in a tie break does not spam its subscribers.
type AlertService struct {
	alerts     alert.Repository
	events     *EventService
	dispatcher AlertDispatcher
	ids        id.Generator
	logger     *logging.Logger
	now        func() time.Time

	mu       sync.Mutex
	lastSeen map[string]eventState
}

type eventState struct {
	Status string
	Phase  string
}

func NewAlertService(
	alerts alert.Repository,
	events *EventService,
	dispatcher AlertDispatcher,
	ids id.Generator,
	logger *logging.Logger,
) *AlertService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}

	return &AlertService{
		alerts:     alerts,
		events:     events,
		dispatcher: dispatcher,
		ids:        ids,
		logger:     logger,
		now:        time.Now,
		lastSeen:   make(map[string]eventState),
	}
}

func (s *AlertService) Create(ctx context.Context, userID, eventID, trigger string) (alert.Alert, error) {
	ctx, span := startUsecaseSpan(ctx, "AlertService.Create")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return alert.Alert{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	trigger = strings.ToLower(strings.TrimSpace(trigger))
	if !alert.IsValidTrigger(trigger) {
		return alert.Alert{}, fmt.Errorf("%w: unknown trigger %q", ErrInvalidInput, trigger)
	}

	alertID, err := s.ids.NewID()
	if err != nil {
		return alert.Alert{}, fmt.Errorf("generate alert id: %w", err)
	}

	a := alert.Alert{
		ID:        alertID,
		UserID:    userID,
		EventID:   eventID,
		Trigger:   trigger,
		Active:    true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		return alert.Alert{}, fmt.Errorf("create alert: %w", err)
	}
	return a, nil
}

func (s *AlertService) List(ctx context.Context, userID string) ([]alert.Alert, error) {
	ctx, span := startUsecaseSpan(ctx, "AlertService.List")
	defer span.End()

	items, err := s.alerts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return items, nil
}

func (s *AlertService) SetActive(ctx context.Context, alertID, userID string, active bool) (alert.Alert, error) {
	ctx, span := startUsecaseSpan(ctx, "AlertService.SetActive")
	defer span.End()

	a, exists, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return alert.Alert{}, fmt.Errorf("get alert: %w", err)
	}
	if !exists || a.UserID != userID {
		return alert.Alert{}, fmt.Errorf("%w: alert %s", ErrNotFound, alertID)
	}

	a.Active = active
	updated, err := s.alerts.Update(ctx, a)
	if err != nil {
		return alert.Alert{}, fmt.Errorf("update alert: %w", err)
	}
	if !updated {
		return alert.Alert{}, fmt.Errorf("%w: alert %s", ErrNotFound, alertID)
	}
	return a, nil
}

func (s *AlertService) Delete(ctx context.Context, alertID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "AlertService.Delete")
	defer span.End()

	deleted, err := s.alerts.Delete(ctx, alertID, userID)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: alert %s", ErrNotFound, alertID)
	}
	return nil
}

// EvaluateLive pulls the current live snapshot, diffs it against the
// previous one and dispatches notifications for every active
// subscription whose trigger fired. It returns the number of
// notifications dispatched.
func (s *AlertService) EvaluateLive(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "AlertService.EvaluateLive")
	defer span.End()

	current, err := s.events.Live(ctx)
	if err != nil {
		return 0, fmt.Errorf("load live events: %w", err)
	}

	active, err := s.alerts.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active alerts: %w", err)
	}

	byEvent := make(map[string][]alert.Alert, len(active))
	for _, a := range active {
		byEvent[a.EventID] = append(byEvent[a.EventID], a)
	}

	fired := 0
	for _, ev := range current {
		cur := stateOf(ev)

		s.mu.Lock()
		prev, seen := s.lastSeen[ev.ID]
		s.lastSeen[ev.ID] = cur
		s.mu.Unlock()

		if !seen {
			prev = eventState{Status: event.StatusScheduled}
		}

		triggers := firedTriggers(prev, cur)
		if len(triggers) == 0 {
			continue
		}

		for _, trigger := range triggers {
			for _, a := range byEvent[ev.ID] {
				if a.Trigger != trigger {
					continue
				}
				n := alert.Notification{
					AlertID:    a.ID,
					UserID:     a.UserID,
					EventID:    ev.ID,
					Trigger:    trigger,
					HomePlayer: ev.HomePlayer,
					AwayPlayer: ev.AwayPlayer,
					Status:     ev.Status,
					FiredAt:    s.now().UTC(),
				}
				if s.dispatcher == nil {
					s.logger.InfoContext(ctx, "alert fired without dispatcher",
						"alert_id", a.ID,
						"trigger", trigger,
						"event_id", ev.ID,
					)
					fired++
					continue
				}
				if err := s.dispatcher.Publish(ctx, n); err != nil {
					s.logger.WarnContext(ctx, "alert dispatch failed",
						"alert_id", a.ID,
						"trigger", trigger,
						"event_id", ev.ID,
						"error", err,
					)
					continue
				}
				fired++
			}
		}
	}

	return fired, nil
}

func stateOf(ev event.Event) eventState {
	phase := ""
	if ev.Score != nil {
		phase = strings.ToLower(ev.Score.MatchStatus)
	}
	return eventState{Status: ev.Status, Phase: phase}
}

// firedTriggers diffs two snapshots of the same event.
func firedTriggers(prev, cur eventState) []string {
	var out []string

	if prev.Status != event.StatusInPlay && cur.Status == event.StatusInPlay {
		out = append(out, alert.TriggerMatchStarted)
	}
	if prev.Status != event.StatusFinished && cur.Status == event.StatusFinished {
		out = append(out, alert.TriggerMatchFinished)
	}

	if cur.Status == event.StatusInPlay {
		if inTieBreak(cur.Phase) && !inTieBreak(prev.Phase) {
			out = append(out, alert.TriggerTieBreak)
		}
		if inThirdSet(cur.Phase) && !inThirdSet(prev.Phase) {
			out = append(out, alert.TriggerThirdSet)
		}
	}

	return out
}

func inTieBreak(phase string) bool {
	return strings.Contains(phase, "tie break")
}

func inThirdSet(phase string) bool {
	return strings.Contains(phase, "3rd set") || strings.Contains(phase, "set 3")
}

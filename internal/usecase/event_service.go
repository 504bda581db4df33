package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/acewatch/acewatch/internal/domain/event"
	"github.com/acewatch/acewatch/internal/platform/cache"
	"github.com/acewatch/acewatch/internal/platform/logging"
)

const recentEventsLimit = 20

// EventService is the read path for tennis events. List endpoints
// degrade to empty output when the feed is down; only the single-event
// lookup surfaces dependency errors.
type EventService struct {
	provider        EventProvider
	normalizer      *Normalizer
	enricher        *EnrichmentService
	cache           *cache.Store
	defaultLeagueID string
	logger          *logging.Logger
}

func NewEventService(
	provider EventProvider,
	normalizer *Normalizer,
	enricher *EnrichmentService,
	cacheStore *cache.Store,
	defaultLeagueID string,
	logger *logging.Logger,
) *EventService {
	if logger == nil {
		logger = logging.Default()
	}
	if normalizer == nil {
		normalizer = NewNormalizer(logger)
	}

	return &EventService{
		provider:        provider,
		normalizer:      normalizer,
		enricher:        enricher,
		cache:           cacheStore,
		defaultLeagueID: defaultLeagueID,
		logger:          logger,
	}
}

// Live returns in-play matches with basic normalization.
func (s *EventService) Live(ctx context.Context) ([]event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "EventService.Live")
	defer span.End()

	events, err := s.listCached(ctx, "tennis:live", func(ctx context.Context) ([]event.Event, error) {
		records, err := s.provider.FetchLiveEvents(ctx)
		if err != nil {
			return nil, err
		}
		return s.normalizer.NormalizeBatch(records), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "live events unavailable, serving empty list", "error", err)
		return []event.Event{}, nil
	}
	return events, nil
}

// Upcoming returns the next scheduled matches for a league, falling
// back to recent results when the schedule endpoint has nothing.
func (s *EventService) Upcoming(ctx context.Context, leagueID string) ([]event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "EventService.Upcoming")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		leagueID = s.defaultLeagueID
	}

	events, err := s.listCached(ctx, "tennis:upcoming:"+leagueID, func(ctx context.Context) ([]event.Event, error) {
		records, err := s.provider.FetchUpcomingEvents(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			records, err = s.provider.FetchRecentEvents(ctx)
			if err != nil {
				return nil, err
			}
		}
		return s.normalizer.NormalizeBatch(records), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "upcoming events unavailable, serving empty list",
			"league_id", leagueID,
			"error", err,
		)
		return []event.Event{}, nil
	}
	return events, nil
}

// Recent returns the last finished matches, capped to a fixed window.
func (s *EventService) Recent(ctx context.Context) ([]event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "EventService.Recent")
	defer span.End()

	events, err := s.listCached(ctx, "tennis:recent", func(ctx context.Context) ([]event.Event, error) {
		records, err := s.provider.FetchRecentEvents(ctx)
		if err != nil {
			return nil, err
		}
		normalized := s.normalizer.NormalizeBatch(records)
		if len(normalized) > recentEventsLimit {
			normalized = normalized[:recentEventsLimit]
		}
		return normalized, nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "recent events unavailable, serving empty list", "error", err)
		return []event.Event{}, nil
	}
	return events, nil
}

// EventsForDate runs the full pipeline for one day: list, normalize,
// then enrich each event with its detail record.
func (s *EventService) EventsForDate(ctx context.Context, date string) ([]event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "EventService.EventsForDate")
	defer span.End()

	date = strings.TrimSpace(date)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	events, err := s.listCached(ctx, "tennis:date:"+date, func(ctx context.Context) ([]event.Event, error) {
		records, err := s.provider.FetchEventsForDate(ctx, date)
		if err != nil {
			return nil, err
		}
		basics := s.normalizer.NormalizeBatch(records)
		if s.enricher == nil {
			return basics, nil
		}
		return s.enricher.Enrich(ctx, basics), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "events for date unavailable, serving empty list",
			"date", date,
			"error", err,
		)
		return []event.Event{}, nil
	}
	return events, nil
}

// EventByID looks up and normalizes a single event.
func (s *EventService) EventByID(ctx context.Context, eventID string) (event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "EventService.EventByID")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return event.Event{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	detail, err := s.provider.FetchEventByID(ctx, eventID)
	if err != nil {
		return event.Event{}, fmt.Errorf("%w: fetch event %s: %v", ErrDependencyUnavailable, eventID, err)
	}
	if detail == nil {
		return event.Event{}, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
	}

	return s.normalizer.Normalize(detail), nil
}

func (s *EventService) listCached(ctx context.Context, key string, load func(context.Context) ([]event.Event, error)) ([]event.Event, error) {
	if s.cache == nil {
		return load(ctx)
	}

	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		return nil, err
	}

	events, ok := value.([]event.Event)
	if !ok {
		return load(ctx)
	}
	return events, nil
}

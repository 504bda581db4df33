package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/panics"

	"github.com/acewatch/acewatch/internal/domain/event"
	"github.com/acewatch/acewatch/internal/platform/logging"
)

// DetailFetcher loads the detail payload for one event id. A nil record
// with a nil error means the feed knows nothing about the id.
type DetailFetcher func(ctx context.Context, eventID string) (RawRecord, error)

// EnrichmentService upgrades basic events with per-event detail
// lookups. Lookups run concurrently with bounded parallelism; each
// result lands in its input slot so output order always matches input
// order.
type EnrichmentService struct {
	fetchDetail DetailFetcher
	normalizer  *Normalizer
	enhancer    *DemoEnhancer
	maxInFlight int
	logger      *logging.Logger
	now         func() time.Time
}

func NewEnrichmentService(
	fetchDetail DetailFetcher,
	normalizer *Normalizer,
	enhancer *DemoEnhancer,
	maxInFlight int,
	logger *logging.Logger,
) *EnrichmentService {
	if logger == nil {
		logger = logging.Default()
	}
	if normalizer == nil {
		normalizer = NewNormalizer(logger)
	}
	if enhancer == nil {
		enhancer = NewDemoEnhancer(nil)
	}
	if maxInFlight < 1 {
		maxInFlight = 1
	}

	return &EnrichmentService{
		fetchDetail: fetchDetail,
		normalizer:  normalizer,
		enhancer:    enhancer,
		maxInFlight: maxInFlight,
		logger:      logger,
		now:         time.Now,
	}
}

// Enrich never fails. A fetch error, id mismatch or panic leaves that
// slot's basic event untouched; cancellation returns the slots finished
// so far plus the remaining basics as they were.
func (s *EnrichmentService) Enrich(ctx context.Context, basics []event.Event) []event.Event {
	ctx, span := startUsecaseSpan(ctx, "EnrichmentService.Enrich")
	defer span.End()

	out := make([]event.Event, len(basics))
	copy(out, basics)
	if len(basics) == 0 {
		return out
	}

	workers := s.maxInFlight
	if workers > len(basics) {
		workers = len(basics)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		s.logger.WarnContext(ctx, "enrichment pool unavailable, running sequentially", "error", err)
		for i := range basics {
			out[i] = s.enrichOne(ctx, basics[i])
		}
		return out
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range basics {
		idx := i
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			out[idx] = s.enrichOne(ctx, basics[idx])
		}); submitErr != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "enrichment task rejected",
				"event_id", basics[idx].ID,
				"error", submitErr,
			)
		}
	}
	wg.Wait()

	return out
}

func (s *EnrichmentService) enrichOne(ctx context.Context, basic event.Event) event.Event {
	if ctx.Err() != nil {
		return basic
	}

	out := basic
	recovered := panics.Try(func() {
		out = s.enrich(ctx, basic)
	})
	if recovered != nil {
		s.logger.WarnContext(ctx, "event enrichment panicked",
			"event_id", basic.ID,
			"error", recovered.AsError(),
		)
		return basic
	}
	return out
}

func (s *EnrichmentService) enrich(ctx context.Context, basic event.Event) event.Event {
	detail, err := s.fetchDetail(ctx, basic.ID)
	if err != nil {
		s.logger.DebugContext(ctx, "detail fetch failed, keeping basic event",
			"event_id", basic.ID,
			"error", err,
		)
		return basic
	}
	if detail == nil {
		return s.enhancer.Enhance(basic)
	}

	if detailID := extractEventID(detail); detailID != basic.ID {
		s.logger.DebugContext(ctx, "detail record id mismatch, keeping basic event",
			"event_id", basic.ID,
			"detail_id", detailID,
		)
		return basic
	}

	return s.mergeDetail(basic, detail)
}

// mergeDetail overwrites basic fields with detail values where the
// detail record actually carries them. Status is recomputed from the
// detail payload but a Scheduled result never downgrades the basic
// status.
func (s *EnrichmentService) mergeDetail(basic event.Event, detail RawRecord) event.Event {
	out := basic

	if home := firstRawString(detail, homePlayerKeys...); home != "" {
		out.HomePlayer = home
	}
	if away := firstRawString(detail, awayPlayerKeys...); away != "" {
		out.AwayPlayer = away
	}
	if league := firstRawString(detail, leagueKeys...); league != "" {
		out.League = league
	}
	if round := extractRound(detail); round != "" {
		out.Round = round
	}

	if ts := rawString(detail, "strTimestamp"); ts != "" {
		if parsed, ok := parseEventTimestamp(ts); ok {
			out.StartTime = parsed
		}
	} else if date := rawString(detail, "dateEvent"); date != "" {
		if clock := rawString(detail, "strTime"); clock != "" {
			if parsed, ok := parseEventTimestamp(date + "T" + clock); ok {
				out.StartTime = parsed
			}
		}
	}

	if status := inferStatus(detail, s.now()); status != event.StatusScheduled {
		out.Status = status
	}

	if score := extractScore(detail); score != nil {
		out.Score = score
	}

	if venue := rawString(detail, "strVenue"); venue != "" {
		out.Venue = venue
	}
	if city := rawString(detail, "strCity"); city != "" {
		out.City = city
	}
	if description := rawString(detail, "strDescriptionEN"); description != "" {
		out.Description = description
	}

	return out
}

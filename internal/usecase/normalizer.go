package usecase

import (
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/acewatch/acewatch/internal/domain/event"
	"github.com/acewatch/acewatch/internal/platform/logging"
)

// Normalizer turns raw provider payloads into canonical events. It
// never fails: malformed input degrades to a fallback record and the
// caller always gets something renderable.
type Normalizer struct {
	logger *logging.Logger
	now    func() time.Time
}

func NewNormalizer(logger *logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{
		logger: logger,
		now:    time.Now,
	}
}

func (n *Normalizer) Normalize(r RawRecord) event.Event {
	var out event.Event
	recovered := panics.Try(func() {
		out = n.normalize(r)
	})
	if recovered != nil {
		n.logger.Warn("event normalization panicked",
			"event_id", safeEventID(r),
			"error", recovered.AsError(),
		)
		return n.fallbackEvent(r)
	}
	return out
}

// NormalizeBatch normalizes each record that carries an event id.
// Records without one are dropped, matching the upstream feed's habit
// of padding result sets with placeholder rows.
func (n *Normalizer) NormalizeBatch(records []RawRecord) []event.Event {
	out := make([]event.Event, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if extractEventID(r) == "" {
			n.logger.Debug("skipping record without event id")
			continue
		}
		out = append(out, n.Normalize(r))
	}
	return out
}

func (n *Normalizer) normalize(r RawRecord) event.Event {
	now := n.now()

	id := extractEventID(r)
	if id == "" {
		id = "unknown"
	}

	home, away := extractPlayers(r)

	return event.Event{
		ID:          id,
		HomePlayer:  home,
		AwayPlayer:  away,
		League:      extractLeague(r),
		Round:       extractRound(r),
		StartTime:   extractStartTime(r, now),
		Status:      inferStatus(r, now),
		Score:       extractScore(r),
		Venue:       rawString(r, "strVenue"),
		City:        rawString(r, "strCity"),
		Description: rawString(r, "strDescriptionEN"),
	}
}

func (n *Normalizer) fallbackEvent(r RawRecord) event.Event {
	id := "unknown"
	if v := safeEventID(r); v != "" {
		id = v
	}

	return event.Event{
		ID:         id,
		HomePlayer: defaultPlayerName,
		AwayPlayer: defaultPlayerName,
		League:     defaultLeague,
		StartTime:  n.now(),
		Status:     event.StatusScheduled,
	}
}

func safeEventID(r RawRecord) string {
	var id string
	panics.Try(func() {
		id = extractEventID(r)
	})
	return id
}

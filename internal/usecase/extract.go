package usecase

import (
	"strings"
	"time"

	"github.com/acewatch/acewatch/internal/domain/event"
)

const (
	defaultPlayerName = "Unknown Player"
	defaultLeague     = "ATP Tour"
)

var (
	eventIDKeys    = []string{"idEvent", "id"}
	homePlayerKeys = []string{"strHomeTeam", "strPlayer", "strHomePlayer"}
	awayPlayerKeys = []string{"strAwayTeam", "strOpponent", "strAwayPlayer"}
	leagueKeys     = []string{"strLeague", "strSeason", "strTournament", "strCompetition"}
	roundKeys      = []string{"strRound", "intRound", "strStage"}
	startTimeKeys  = []string{"strTimestamp", "dateEvent", "strDate", "strTime"}
	statusKeys     = []string{"strStatus", "strProgress", "strGameStatus"}

	// Seasons are inconsistent about separator casing, so all variants
	// are matched in order.
	titleSeparators = []string{" vs ", " VS ", " v ", " V "}

	inPlayKeywords = []string{
		"live", "playing", "in play", "in progress",
		"1st set", "2nd set", "3rd set", "final set",
		"set 1", "set 2", "set 3", "tie break",
	}
	finishedKeywords = []string{
		"finished", "ft", "final", "completed", "ended", "won", "lost",
	}

	resultKeys = []string{"strHomeGoals", "strAwayGoals", "strResult", "strScore"}
)

func extractEventID(r RawRecord) string {
	return firstRawString(r, eventIDKeys...)
}

// extractPlayers resolves the two player names. Explicit fields win;
// otherwise the event title is split on a vs separator. A title side
// with more than two words drops the leading two, which strips
// tournament prefixes like "US Open Sinner vs Alcaraz".
func extractPlayers(r RawRecord) (string, string) {
	home := firstRawString(r, homePlayerKeys...)
	away := firstRawString(r, awayPlayerKeys...)
	if home != "" && away != "" {
		return home, away
	}

	titleHome, titleAway := splitEventTitle(rawString(r, "strEvent"))
	if home == "" {
		home = titleHome
	}
	if away == "" {
		away = titleAway
	}

	if home == "" {
		home = defaultPlayerName
	}
	if away == "" {
		away = defaultPlayerName
	}
	return home, away
}

func splitEventTitle(title string) (string, string) {
	for _, sep := range titleSeparators {
		idx := strings.Index(title, sep)
		if idx < 0 {
			continue
		}

		home := strings.TrimSpace(title[:idx])
		away := strings.TrimSpace(title[idx+len(sep):])

		words := strings.Fields(home)
		if len(words) > 2 {
			home = strings.Join(words[2:], " ")
		}
		return home, away
	}
	return "", ""
}

// extractLeague takes the first two words of the event title whenever
// the title has at least two, so "Smith vs Jones" yields "Smith vs".
// Explicit league-ish fields are only consulted for shorter titles,
// then the tour default.
func extractLeague(r RawRecord) string {
	words := strings.Fields(rawString(r, "strEvent"))
	if len(words) >= 2 {
		return strings.Join(words[:2], " ")
	}

	if league := firstRawString(r, leagueKeys...); league != "" {
		return league
	}
	return defaultLeague
}

func extractRound(r RawRecord) string {
	return firstRawString(r, roundKeys...)
}

// extractStartTime walks the timestamp candidates in priority order and
// returns now when none of them parse.
func extractStartTime(r RawRecord, now time.Time) time.Time {
	for _, key := range startTimeKeys {
		value := rawString(r, key)
		if value == "" {
			continue
		}
		if ts, ok := parseEventTimestamp(value); ok {
			return ts
		}
	}
	return now
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

var plainLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseEventTimestamp(value string) (time.Time, bool) {
	if strings.Contains(value, "T") {
		for _, layout := range isoLayouts {
			if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	}

	// A bare date means the feed only knows the day; pin it to noon so
	// the status date heuristics stay stable across the day.
	if len(value) == 10 && strings.Count(value, "-") == 2 {
		ts, err := time.ParseInLocation("2006-01-02", value, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return ts.Add(12 * time.Hour), true
	}

	for _, layout := range plainLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// inferStatus maps free-text status fields to a canonical status via
// keyword matching, falling back to date inference when no field
// matches either keyword set.
func inferStatus(r RawRecord, now time.Time) string {
	for _, key := range statusKeys {
		text := strings.ToLower(rawString(r, key))
		if text == "" {
			continue
		}
		if containsAnyKeyword(text, inPlayKeywords) {
			return event.StatusInPlay
		}
		if containsAnyKeyword(text, finishedKeywords) {
			return event.StatusFinished
		}
	}
	return inferStatusFromStartTime(r, now)
}

// inferStatusFromStartTime treats anything older than four hours as
// over, and anything between one and four hours old as over only when
// the payload already carries a result.
func inferStatusFromStartTime(r RawRecord, now time.Time) string {
	startTime := extractStartTime(r, now)
	elapsed := now.Sub(startTime)

	if elapsed > 4*time.Hour {
		return event.StatusFinished
	}
	if elapsed > time.Hour && rawHasValue(r, resultKeys...) {
		return event.StatusFinished
	}
	return event.StatusScheduled
}

// extractScore prefers structured set counts, then falls back to the
// raw score string. Records with neither yield nil.
func extractScore(r RawRecord) *event.Score {
	matchStatus := firstRawString(r, "strStatus", "strProgress")

	homeSets, homeOK := firstRawInt(r, "strHomeGoals", "intHomeScore")
	awaySets, awayOK := firstRawInt(r, "strAwayGoals", "intAwayScore")
	if homeOK && awayOK {
		return &event.Score{
			HomeSets:    &homeSets,
			AwaySets:    &awaySets,
			MatchStatus: matchStatus,
		}
	}

	if raw := firstRawString(r, "strScore", "strResult"); raw != "" {
		return &event.Score{
			Raw:         raw,
			MatchStatus: matchStatus,
		}
	}
	return nil
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

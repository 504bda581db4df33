package event

import "time"

const (
	StatusScheduled = "Scheduled"
	StatusInPlay    = "In Play"
	StatusFinished  = "Finished"
)

// Event is one tennis match in canonical form. Every field is always
// populated except Score, Venue, City and Description, which stay empty
// when the upstream payload carries nothing usable.
type Event struct {
	ID          string
	HomePlayer  string
	AwayPlayer  string
	League      string
	Round       string
	StartTime   time.Time
	Status      string
	Score       *Score
	Venue       string
	City        string
	Description string
}

// Score carries either a structured set count (HomeSets/AwaySets) or an
// unparsed Raw string, never both.
type Score struct {
	HomeSets    *int
	AwaySets    *int
	SetScores   []string
	Raw         string
	MatchStatus string
}

func (s *Score) HasSets() bool {
	return s != nil && s.HomeSets != nil && s.AwaySets != nil
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusScheduled, StatusInPlay, StatusFinished:
		return true
	default:
		return false
	}
}

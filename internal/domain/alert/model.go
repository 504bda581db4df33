package alert

import "time"

const (
	TriggerMatchStarted  = "match_started"
	TriggerMatchFinished = "match_finished"
	TriggerTieBreak      = "tie_break"
	TriggerThirdSet      = "third_set"
)

// Alert subscribes a user to one trigger on one external event.
type Alert struct {
	ID        string
	UserID    string
	EventID   string
	Trigger   string
	Active    bool
	CreatedAt time.Time
}

// Notification is one fired alert ready for delivery.
type Notification struct {
	AlertID    string
	UserID     string
	EventID    string
	Trigger    string
	HomePlayer string
	AwayPlayer string
	Status     string
	FiredAt    time.Time
}

func IsValidTrigger(t string) bool {
	switch t {
	case TriggerMatchStarted, TriggerMatchFinished, TriggerTieBreak, TriggerThirdSet:
		return true
	default:
		return false
	}
}

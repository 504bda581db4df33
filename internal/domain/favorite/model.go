package favorite

import "time"

const (
	TypePlayer = "player"
	TypeMatch  = "match"
)

// Favorite marks a player name or an external event a user follows.
type Favorite struct {
	ID        string
	UserID    string
	Type      string
	Target    string
	CreatedAt time.Time
}

func IsValidType(t string) bool {
	return t == TypePlayer || t == TypeMatch
}

package user

import "time"

// User is a registered account. PasswordHash holds a bcrypt digest and
// never leaves the persistence boundary.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is an opaque bearer session. TokenHash is the SHA-256 hex of
// the token handed to the client.
type Session struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Principal identifies the authenticated caller inside request handling.
type Principal struct {
	UserID string
	Email  string
}

package domain

import "time"

type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Admin        bool
	CreatedAt    time.Time
}

// Caller identifies the authenticated account behind a request. It is passed
// explicitly into every operation that needs identity; nothing reads it from
// ambient state.
type Caller struct {
	AccountID int64
	Username  string
	Admin     bool
}

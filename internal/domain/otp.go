package domain

import (
	"errors"
	"time"
)

var (
	ErrCodeInvalid    = errors.New("code is invalid or expired")
	ErrCodeExpired    = errors.New("code has expired")
	ErrTicketInvalid  = errors.New("reset ticket is invalid or expired")
	ErrDeliveryFailed = errors.New("could not deliver the code")
)

// OneTimeCode is a pending password-reset challenge. At most one exists
// per email; sending a new code replaces it.
type OneTimeCode struct {
	Email     string
	CodeHash  string
	Attempts  int
	CreatedAt time.Time
}

// ResetTicket proves a recent successful code verification. It is
// single-use: claiming it removes it.
type ResetTicket struct {
	ID        string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

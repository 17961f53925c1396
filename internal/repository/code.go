package repository

import (
	"context"
	"time"

	"github.com/prepinterview/backend/internal/domain"
)

type CodeRepository interface {
	// Upsert atomically replaces any existing code for the email,
	// resetting created_at and the attempt counter.
	Upsert(ctx context.Context, email, codeHash string, createdAt time.Time) error
	FindByEmail(ctx context.Context, email string) (*domain.OneTimeCode, error)
	Delete(ctx context.Context, email string) error
	// IncrementAttempts bumps the failure counter and returns the new value.
	IncrementAttempts(ctx context.Context, email string) (int, error)
	// DeleteExpired removes codes created before the cutoff and returns
	// how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type TicketRepository interface {
	Create(ctx context.Context, t *domain.ResetTicket) error
	// Claim removes the ticket and returns it in one statement, so a
	// ticket can never be presented twice. Expired tickets are not
	// claimable. Returns domain.ErrTicketInvalid when nothing matches.
	Claim(ctx context.Context, id string, now time.Time) (*domain.ResetTicket, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

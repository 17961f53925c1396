package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepinterview/backend/internal/domain"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.ResetTicket) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reset_tickets (id, email, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`,
		t.ID, t.Email, t.ExpiresAt, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// Claim deletes and returns the ticket in a single statement, which is
// what makes it single-use even under concurrent presentations.
func (r *TicketRepository) Claim(ctx context.Context, id string, now time.Time) (*domain.ResetTicket, error) {
	var t domain.ResetTicket
	err := r.pool.QueryRow(ctx, `
		DELETE FROM reset_tickets
		WHERE id = $1 AND expires_at > $2
		RETURNING id, email, expires_at, created_at`,
		id, now,
	).Scan(&t.ID, &t.Email, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketInvalid
		}
		return nil, fmt.Errorf("claim ticket: %w", err)
	}
	return &t, nil
}

func (r *TicketRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reset_tickets WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired tickets: %w", err)
	}
	return tag.RowsAffected(), nil
}

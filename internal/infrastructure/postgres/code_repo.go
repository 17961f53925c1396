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

type CodeRepository struct {
	pool *pgxpool.Pool
}

func NewCodeRepository(pool *pgxpool.Pool) *CodeRepository {
	return &CodeRepository{pool: pool}
}

// Upsert relies on ON CONFLICT so two concurrent sends for the same email
// cannot leave two valid codes; the last write wins.
func (r *CodeRepository) Upsert(ctx context.Context, email, codeHash string, createdAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO one_time_codes (email, code_hash, attempts, created_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (email) DO UPDATE
		SET code_hash = EXCLUDED.code_hash, attempts = 0, created_at = EXCLUDED.created_at`,
		email, codeHash, createdAt,
	)
	if err != nil {
		return fmt.Errorf("upsert code: %w", err)
	}
	return nil
}

func (r *CodeRepository) FindByEmail(ctx context.Context, email string) (*domain.OneTimeCode, error) {
	var c domain.OneTimeCode
	err := r.pool.QueryRow(ctx, `
		SELECT email, code_hash, attempts, created_at
		FROM one_time_codes WHERE email = $1`,
		email,
	).Scan(&c.Email, &c.CodeHash, &c.Attempts, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCodeInvalid
		}
		return nil, fmt.Errorf("find code: %w", err)
	}
	return &c, nil
}

func (r *CodeRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM one_time_codes WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	return nil
}

func (r *CodeRepository) IncrementAttempts(ctx context.Context, email string) (int, error) {
	var attempts int
	err := r.pool.QueryRow(ctx, `
		UPDATE one_time_codes SET attempts = attempts + 1
		WHERE email = $1
		RETURNING attempts`,
		email,
	).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrCodeInvalid
		}
		return 0, fmt.Errorf("increment attempts: %w", err)
	}
	return attempts, nil
}

func (r *CodeRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM one_time_codes WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired codes: %w", err)
	}
	return tag.RowsAffected(), nil
}

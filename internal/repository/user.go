package repository

import (
	"context"

	"github.com/prepinterview/backend/internal/domain"
)

type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrEmailTaken if the
	// email is already registered.
	Create(ctx context.Context, name, email, phone, passwordHash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prepinterview/backend/internal/domain"
	"github.com/prepinterview/backend/internal/metrics"
	"github.com/prepinterview/backend/internal/password"
	"github.com/prepinterview/backend/internal/repository"
)

// Session tokens live for a week, matching the length of a typical
// interview-prep cycle.
const defaultJWTTTL = 7 * 24 * time.Hour

type AuthUsecase struct {
	users  repository.UserRepository
	jwtKey []byte
	jwtTTL time.Duration
}

func NewAuthUsecase(users repository.UserRepository, jwtKey []byte) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		jwtKey: jwtKey,
		jwtTTL: defaultJWTTTL,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Register hashes the password and creates the account. Field shape
// (non-empty, email format, password length) is enforced at the
// transport boundary; uniqueness is enforced here via the store.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, in.Name, NormalizeEmail(in.Email), in.Phone, hash)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return user, nil
}

type LoginResult struct {
	Token string
	User  *domain.User
}

// Login verifies credentials and issues a signed session token. Unknown
// email and wrong password are indistinguishable to the caller so the
// endpoint cannot be used to probe which addresses are registered.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, pass string) (*LoginResult, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !password.Verify(pass, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(u.jwtTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return nil, fmt.Errorf("sign jwt: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &LoginResult{Token: signed, User: user}, nil
}

// FindUser backs the authenticated profile endpoint.
func (u *AuthUsecase) FindUser(ctx context.Context, id string) (*domain.User, error) {
	return u.users.FindByID(ctx, id)
}

// NormalizeEmail is applied before every store lookup or write, so email
// uniqueness and OTP lookups are case-insensitive regardless of the
// store's collation.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

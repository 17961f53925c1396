package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/prepinterview/backend/internal/domain"
	"github.com/prepinterview/backend/internal/email"
	"github.com/prepinterview/backend/internal/metrics"
	"github.com/prepinterview/backend/internal/password"
	"github.com/prepinterview/backend/internal/repository"
)

type OTPConfig struct {
	CodeTTL     time.Duration
	MaxAttempts int
	TicketTTL   time.Duration
}

type OTPUsecase struct {
	users   repository.UserRepository
	codes   repository.CodeRepository
	tickets repository.TicketRepository
	email   email.Sender
	cfg     OTPConfig
}

func NewOTPUsecase(
	users repository.UserRepository,
	codes repository.CodeRepository,
	tickets repository.TicketRepository,
	emailSender email.Sender,
	cfg OTPConfig,
) *OTPUsecase {
	return &OTPUsecase{
		users:   users,
		codes:   codes,
		tickets: tickets,
		email:   emailSender,
		cfg:     cfg,
	}
}

// SendCode generates a fresh 6-digit code for the account, stores its
// hash (replacing any previous code for the email), and emails the
// plaintext. The plaintext never exists outside this call.
func (u *OTPUsecase) SendCode(ctx context.Context, emailAddr string) error {
	addr := NormalizeEmail(emailAddr)

	if _, err := u.users.FindByEmail(ctx, addr); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := password.Hash(code)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	if err := u.codes.Upsert(ctx, addr, hash, time.Now()); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	subject := "Your PrepInterview password reset code"
	body := fmt.Sprintf(
		`<p>Your password reset code is <strong>%s</strong>.</p><p>It expires in %d minutes. If you did not request it, you can ignore this email.</p>`,
		code, int(u.cfg.CodeTTL.Minutes()),
	)
	if err := u.email.Send(ctx, addr, subject, body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}

	metrics.OTPSentTotal.Inc()
	return nil
}

// VerifyCode checks the submitted code against the stored hash. Expiry
// is evaluated lazily here, not by a timer: a stale row is removed on
// discovery. A wrong code keeps the row so the user can retry within the
// window, up to MaxAttempts failures. A correct code consumes the row
// and returns a single-use reset ticket.
func (u *OTPUsecase) VerifyCode(ctx context.Context, emailAddr, code string) (*domain.ResetTicket, error) {
	addr := NormalizeEmail(emailAddr)

	rec, err := u.codes.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrCodeInvalid) {
			metrics.OTPVerifiedTotal.WithLabelValues("invalid").Inc()
			return nil, domain.ErrCodeInvalid
		}
		return nil, fmt.Errorf("find code: %w", err)
	}

	if time.Since(rec.CreatedAt) > u.cfg.CodeTTL {
		if err := u.codes.Delete(ctx, addr); err != nil {
			return nil, fmt.Errorf("delete expired code: %w", err)
		}
		metrics.OTPVerifiedTotal.WithLabelValues("expired").Inc()
		return nil, domain.ErrCodeExpired
	}

	if !password.Verify(code, rec.CodeHash) {
		attempts, err := u.codes.IncrementAttempts(ctx, addr)
		if err == nil && attempts >= u.cfg.MaxAttempts {
			// Cap reached: burn the code so it cannot be brute-forced
			// within the window.
			if err := u.codes.Delete(ctx, addr); err != nil {
				return nil, fmt.Errorf("delete exhausted code: %w", err)
			}
		}
		metrics.OTPVerifiedTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrCodeInvalid
	}

	if err := u.codes.Delete(ctx, addr); err != nil {
		return nil, fmt.Errorf("consume code: %w", err)
	}

	now := time.Now()
	ticket := &domain.ResetTicket{
		ID:        uuid.NewString(),
		Email:     addr,
		ExpiresAt: now.Add(u.cfg.TicketTTL),
		CreatedAt: now,
	}
	if err := u.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("store ticket: %w", err)
	}

	metrics.OTPVerifiedTotal.WithLabelValues("verified").Inc()
	return ticket, nil
}

// ResetPassword claims the ticket issued by VerifyCode and overwrites
// the account's password hash. The claim is atomic, so a ticket grants
// exactly one reset and only while it is fresh.
func (u *OTPUsecase) ResetPassword(ctx context.Context, ticketID, newPassword string) error {
	ticket, err := u.tickets.Claim(ctx, ticketID, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrTicketInvalid) {
			metrics.PasswordResetsTotal.WithLabelValues("rejected").Inc()
			return domain.ErrTicketInvalid
		}
		return fmt.Errorf("claim ticket: %w", err)
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := u.users.UpdatePassword(ctx, ticket.Email, hash); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	metrics.PasswordResetsTotal.WithLabelValues("success").Inc()
	return nil
}

// generateCode draws 6 digits uniformly from 000000–999999; leading
// zeros are valid.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prepinterview/backend/internal/domain"
	"github.com/prepinterview/backend/internal/transport/http/handler"
)

type fakeOTPUsecase struct {
	sendCode      func(ctx context.Context, email string) error
	verifyCode    func(ctx context.Context, email, code string) (*domain.ResetTicket, error)
	resetPassword func(ctx context.Context, ticketID, newPassword string) error
}

func (f *fakeOTPUsecase) SendCode(ctx context.Context, email string) error {
	return f.sendCode(ctx, email)
}

func (f *fakeOTPUsecase) VerifyCode(ctx context.Context, email, code string) (*domain.ResetTicket, error) {
	return f.verifyCode(ctx, email, code)
}

func (f *fakeOTPUsecase) ResetPassword(ctx context.Context, ticketID, newPassword string) error {
	return f.resetPassword(ctx, ticketID, newPassword)
}

func newOTPEngine(uc *fakeOTPUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewOTPHandler(uc, logger)

	r := gin.New()
	r.POST("/otp/send", h.SendCode)
	r.POST("/otp/verify", h.VerifyCode)
	r.POST("/otp/reset-password", h.ResetPassword)
	return r
}

// ---- SendCode ----

func TestSendCode_UnknownEmail_Returns404(t *testing.T) {
	uc := &fakeOTPUsecase{
		sendCode: func(_ context.Context, _ string) error { return domain.ErrUserNotFound },
	}
	w := postJSON(newOTPEngine(uc), "/otp/send", `{"email":"nobody@x.com"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSendCode_DeliveryFailure_Returns502(t *testing.T) {
	uc := &fakeOTPUsecase{
		sendCode: func(_ context.Context, _ string) error {
			return domain.ErrDeliveryFailed
		},
	}
	w := postJSON(newOTPEngine(uc), "/otp/send", `{"email":"a@x.com"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestSendCode_Success_DoesNotLeakCode(t *testing.T) {
	uc := &fakeOTPUsecase{
		sendCode: func(_ context.Context, _ string) error { return nil },
	}
	w := postJSON(newOTPEngine(uc), "/otp/send", `{"email":"a@x.com"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestSendCode_MalformedEmail_Returns400(t *testing.T) {
	w := postJSON(newOTPEngine(&fakeOTPUsecase{}), "/otp/send", `{"email":"not-an-email"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- VerifyCode ----

func TestVerifyCode_WrongShape_Returns400WithoutUsecaseCall(t *testing.T) {
	called := false
	uc := &fakeOTPUsecase{
		verifyCode: func(_ context.Context, _, _ string) (*domain.ResetTicket, error) {
			called = true
			return nil, nil
		},
	}
	// 5 digits, then non-numeric
	for _, body := range []string{
		`{"email":"a@x.com","code":"12345"}`,
		`{"email":"a@x.com","code":"12345a"}`,
	} {
		w := postJSON(newOTPEngine(uc), "/otp/verify", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
	if called {
		t.Error("usecase was called for a malformed code")
	}
}

func TestVerifyCode_Invalid_Returns400(t *testing.T) {
	uc := &fakeOTPUsecase{
		verifyCode: func(_ context.Context, _, _ string) (*domain.ResetTicket, error) {
			return nil, domain.ErrCodeInvalid
		},
	}
	w := postJSON(newOTPEngine(uc), "/otp/verify", `{"email":"a@x.com","code":"123456"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestVerifyCode_Expired_Returns410(t *testing.T) {
	uc := &fakeOTPUsecase{
		verifyCode: func(_ context.Context, _, _ string) (*domain.ResetTicket, error) {
			return nil, domain.ErrCodeExpired
		},
	}
	w := postJSON(newOTPEngine(uc), "/otp/verify", `{"email":"a@x.com","code":"123456"}`)
	if w.Code != http.StatusGone {
		t.Errorf("status = %d, want 410", w.Code)
	}
}

func TestVerifyCode_Success_ReturnsTicket(t *testing.T) {
	ticket := &domain.ResetTicket{
		ID:        "ticket-1",
		Email:     "a@x.com",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	uc := &fakeOTPUsecase{
		verifyCode: func(_ context.Context, _, _ string) (*domain.ResetTicket, error) {
			return ticket, nil
		},
	}
	w := postJSON(newOTPEngine(uc), "/otp/verify", `{"email":"a@x.com","code":"123456"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"reset_ticket":"ticket-1"`) {
		t.Errorf("body %q does not contain the reset ticket", w.Body.String())
	}
}

// ---- ResetPassword ----

func TestResetPassword_BadTicket_Returns401(t *testing.T) {
	uc := &fakeOTPUsecase{
		resetPassword: func(_ context.Context, _, _ string) error {
			return domain.ErrTicketInvalid
		},
	}
	w := postJSON(newOTPEngine(uc), "/otp/reset-password",
		`{"reset_ticket":"bad","new_password":"password1"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestResetPassword_ShortPassword_Returns400(t *testing.T) {
	w := postJSON(newOTPEngine(&fakeOTPUsecase{}), "/otp/reset-password",
		`{"reset_ticket":"ticket-1","new_password":"short"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResetPassword_InternalError_Returns500(t *testing.T) {
	uc := &fakeOTPUsecase{
		resetPassword: func(_ context.Context, _, _ string) error {
			return errors.New("db down")
		},
	}
	w := postJSON(newOTPEngine(uc), "/otp/reset-password",
		`{"reset_ticket":"ticket-1","new_password":"password1"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestResetPassword_Success_Returns200(t *testing.T) {
	uc := &fakeOTPUsecase{
		resetPassword: func(_ context.Context, _, _ string) error { return nil },
	}
	w := postJSON(newOTPEngine(uc), "/otp/reset-password",
		`{"reset_ticket":"ticket-1","new_password":"password1"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

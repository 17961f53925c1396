package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prepinterview/backend/internal/domain"
)

type otpUsecaser interface {
	SendCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*domain.ResetTicket, error)
	ResetPassword(ctx context.Context, ticketID, newPassword string) error
}

type OTPHandler struct {
	otpUsecase otpUsecaser
	logger     *slog.Logger
}

func NewOTPHandler(otpUsecase otpUsecaser, logger *slog.Logger) *OTPHandler {
	return &OTPHandler{
		otpUsecase: otpUsecase,
		logger:     logger.With("component", "otp_handler"),
	}
}

type sendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /otp/send
func (h *OTPHandler) SendCode(c *gin.Context) {
	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.otpUsecase.SendCode(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		case errors.Is(err, domain.ErrDeliveryFailed):
			h.logger.Error("send code", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": errDeliveryFailed})
		default:
			h.logger.Error("send code", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code sent to your email"})
}

type verifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code"  binding:"required,len=6,numeric"`
}

type verifyCodeResponse struct {
	ResetTicket string    `json:"reset_ticket"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// POST /otp/verify
// Success consumes the code and returns a single-use reset ticket.
func (h *OTPHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.otpUsecase.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCodeExpired):
			c.JSON(http.StatusGone, gin.H{"error": errCodeExpired})
		case errors.Is(err, domain.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": errCodeInvalid})
		default:
			h.logger.Error("verify code", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, verifyCodeResponse{
		ResetTicket: ticket.ID,
		ExpiresAt:   ticket.ExpiresAt,
	})
}

type resetPasswordRequest struct {
	ResetTicket string `json:"reset_ticket" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// POST /otp/reset-password
// Requires the ticket from a successful verification; there is no
// unauthenticated reset path.
func (h *OTPHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.otpUsecase.ResetPassword(c.Request.Context(), req.ResetTicket, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errTicketInvalid})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		default:
			h.logger.Error("reset password", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prepinterview/backend/internal/transport/http/handler"
	"github.com/prepinterview/backend/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, otpHandler *handler.OTPHandler, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	auth := r.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.Auth(jwtKey), authHandler.Me)

	otp := r.Group("/otp")
	otp.POST("/send", otpHandler.SendCode)
	otp.POST("/verify", otpHandler.VerifyCode)
	otp.POST("/reset-password", otpHandler.ResetPassword)

	return r
}

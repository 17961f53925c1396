package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prepinterview/backend/internal/domain"
	"github.com/prepinterview/backend/internal/transport/http/handler"
	"github.com/prepinterview/backend/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	register func(ctx context.Context, in usecase.RegisterInput) (*domain.User, error)
	login    func(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	findUser func(ctx context.Context, id string) (*domain.User, error)
}

func (f *fakeAuthUsecase) Register(ctx context.Context, in usecase.RegisterInput) (*domain.User, error) {
	return f.register(ctx, in)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (*usecase.LoginResult, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) FindUser(ctx context.Context, id string) (*domain.User, error) {
	return f.findUser(ctx, id)
}

func newAuthEngine(uc *fakeAuthUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewAuthHandler(uc, logger)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/auth/me", func(c *gin.Context) { c.Set("userID", "user-1") }, h.Me)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

var testUser = &domain.User{ID: "user-1", Name: "A", Email: "a@x.com", Phone: "123", PasswordHash: "$2a$10$secret"}

// ---- Register ----

func TestRegister_InvalidJSON_Returns400(t *testing.T) {
	w := postJSON(newAuthEngine(&fakeAuthUsecase{}), "/auth/register", `{bad json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_ShortPassword_Returns400(t *testing.T) {
	w := postJSON(newAuthEngine(&fakeAuthUsecase{}), "/auth/register",
		`{"name":"A","email":"a@x.com","phone":"123","password":"short"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_MissingPhone_Returns400(t *testing.T) {
	w := postJSON(newAuthEngine(&fakeAuthUsecase{}), "/auth/register",
		`{"name":"A","email":"a@x.com","password":"password1"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_DuplicateEmail_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _ usecase.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/register",
		`{"name":"A","email":"a@x.com","phone":"123","password":"password1"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestRegister_Success_Returns201WithoutSensitiveData(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _ usecase.RegisterInput) (*domain.User, error) {
			return testUser, nil
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/register",
		`{"name":"A","email":"a@x.com","phone":"123","password":"password1"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if strings.Contains(w.Body.String(), "password") || strings.Contains(w.Body.String(), "$2a$") {
		t.Errorf("response %q echoes sensitive data", w.Body.String())
	}
}

// ---- Login ----

func TestLogin_InvalidCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*usecase.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/login",
		`{"email":"a@x.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if strings.Contains(strings.ToLower(w.Body.String()), "not found") {
		t.Errorf("response %q reveals whether the account exists", w.Body.String())
	}
}

func TestLogin_InternalError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*usecase.LoginResult, error) {
			return nil, errors.New("db down")
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/login",
		`{"email":"a@x.com","password":"password1"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestLogin_Success_ReturnsTokenAndSanitizedUser(t *testing.T) {
	const fakeJWT = "header.payload.signature"
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*usecase.LoginResult, error) {
			return &usecase.LoginResult{Token: fakeJWT, User: testUser}, nil
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/login",
		`{"email":"a@x.com","password":"password1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, fakeJWT) {
		t.Errorf("body %q does not contain the token", body)
	}
	if !strings.Contains(body, `"email":"a@x.com"`) {
		t.Errorf("body %q does not contain the sanitized user", body)
	}
	if strings.Contains(body, "$2a$") {
		t.Errorf("body %q leaks the password hash", body)
	}
}

// ---- Me ----

func TestMe_ReturnsProfile(t *testing.T) {
	uc := &fakeAuthUsecase{
		findUser: func(_ context.Context, id string) (*domain.User, error) {
			if id != "user-1" {
				return nil, domain.ErrUserNotFound
			}
			return testUser, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	newAuthEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if strings.Contains(w.Body.String(), "$2a$") {
		t.Errorf("body %q leaks the password hash", w.Body.String())
	}
}

func TestMe_UnknownUser_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		findUser: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	newAuthEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

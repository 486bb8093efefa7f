package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/dentalclinic-backend/internal/auth"
	"github.com/angelmondragon/dentalclinic-backend/internal/users"
	pkgerrors "github.com/angelmondragon/dentalclinic-backend/pkg/errors"
)

type stubRegisterService struct {
	got  auth.RegisterRequest
	user *users.UserDTO
	err  error
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	s.got = req
	return s.user, s.err
}

type stubAuthService struct {
	token  string
	login  *auth.LoginResponse
	pair   *auth.TokenPair
	verify *auth.VerifyResponse
	err    error
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.login, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken string, req auth.RefreshRequest) (*auth.TokenPair, error) {
	s.token = accessToken
	return s.pair, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.token = accessToken
	return s.err
}

func (s *stubAuthService) Verify(ctx context.Context, accessToken string) (*auth.VerifyResponse, error) {
	s.token = accessToken
	return s.verify, s.err
}

func TestAuthRegisterCreated(t *testing.T) {
	roleID := 2
	reg := &stubRegisterService{user: &users.UserDTO{ID: uuid.New(), Email: "ana@example.com", RoleID: &roleID}}
	body := `{"firstName":"Ana","lastName":"Lopez","email":"ana@example.com","password":"Secret123!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	AuthRegister(reg, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if reg.got.FirstName != "Ana" || reg.got.RoleID != nil {
		t.Fatalf("unexpected request %+v", reg.got)
	}
	var envelope struct {
		Data struct {
			RoleID int `json:"roleId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RoleID != 2 {
		t.Fatalf("expected role id 2 got %d", envelope.Data.RoleID)
	}
}

func TestAuthRegisterConflictIsBadRequest(t *testing.T) {
	reg := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	body := `{"firstName":"Ana","lastName":"Lopez","email":"ana@example.com","password":"Secret123!"}`
	rec := httptest.NewRecorder()

	AuthRegister(reg, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email already registered") {
		t.Fatalf("expected conflict message, got %s", rec.Body.String())
	}
}

func TestAuthRegisterValidatesBody(t *testing.T) {
	reg := &stubRegisterService{}
	rec := httptest.NewRecorder()
	AuthRegister(reg, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"not-an-email"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if reg.got.Email != "" {
		t.Fatal("service should not be called for an invalid body")
	}
}

func TestAuthLoginReturnsTokens(t *testing.T) {
	svc := &stubAuthService{login: &auth.LoginResponse{
		User:   &users.UserDTO{ID: uuid.New()},
		Tokens: auth.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600},
	}}
	body := `{"email":"ana@example.com","password":"Secret123!"}`
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Tokens struct {
				AccessToken string `json:"accessToken"`
				ExpiresIn   int64  `json:"expiresIn"`
			} `json:"tokens"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Tokens.AccessToken != "access" || envelope.Data.Tokens.ExpiresIn != 3600 {
		t.Fatalf("unexpected tokens %+v", envelope.Data.Tokens)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	body := `{"email":"ana@example.com","password":"wrong"}`
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRefreshForwardsBearer(t *testing.T) {
	svc := &stubAuthService{pair: &auth.TokenPair{AccessToken: "next", RefreshToken: "rotated"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refreshToken":"old"}`))
	req.Header.Set("Authorization", "Bearer expired-access")
	rec := httptest.NewRecorder()

	AuthRefresh(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.token != "expired-access" {
		t.Fatalf("expected bearer forwarded, got %q", svc.token)
	}
}

func TestAuthRefreshRequiresBearer(t *testing.T) {
	svc := &stubAuthService{}
	rec := httptest.NewRecorder()
	AuthRefresh(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refreshToken":"old"}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthLogout(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer access")
	rec := httptest.NewRecorder()

	AuthLogout(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.token != "access" {
		t.Fatalf("expected token forwarded, got %q", svc.token)
	}
}

func TestAuthVerifyToken(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{verify: &auth.VerifyResponse{Valid: true, UserID: userID, Role: "dentist"}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer access")
	rec := httptest.NewRecorder()

	AuthVerifyToken(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data auth.VerifyResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Valid || envelope.Data.UserID != userID || envelope.Data.Role != "dentist" {
		t.Fatalf("unexpected verify payload %+v", envelope.Data)
	}
}

func TestAuthVerifyTokenRejectsInvalid(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token")}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	rec := httptest.NewRecorder()

	AuthVerifyToken(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

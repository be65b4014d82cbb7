package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lexora/lexora/internal/apperr"
	"github.com/lexora/lexora/internal/models"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	signUpUser  *models.User
	signUpErr   error
	signInToken string
	signInUser  *models.User
	signInErr   error
	signOutErr  error
	currentUser *models.User
	currentErr  error
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password, name string) (*models.User, error) {
	return f.signUpUser, f.signUpErr
}

func (f *fakeAuthService) SignIn(ctx context.Context, email, password string) (string, *models.User, error) {
	return f.signInToken, f.signInUser, f.signInErr
}

func (f *fakeAuthService) SignOut(ctx context.Context, token string) error {
	return f.signOutErr
}

func (f *fakeAuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	return f.currentUser, f.currentErr
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		service    *fakeAuthService
		wantStatus int
	}{
		{
			name:       "success",
			body:       `{"email":"jane@firm.com","password":"password123"}`,
			service:    &fakeAuthService{signUpUser: &models.User{ID: "u1", Email: "jane@firm.com"}},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid json",
			body:       `{`,
			service:    &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation failure",
			body:       `{"email":"","password":""}`,
			service:    &fakeAuthService{signUpErr: apperr.Validation(map[string]string{"email": "a valid email is required"})},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "duplicate email",
			body:       `{"email":"jane@firm.com","password":"password123"}`,
			service:    &fakeAuthService{signUpErr: apperr.Conflict("email taken")},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &AuthHandler{Auth: tt.service}
			req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			h.Register(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	h := &AuthHandler{Auth: &fakeAuthService{
		signInToken: "tok-1",
		signInUser:  &models.User{ID: "u1", Email: "jane@firm.com"},
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		bytes.NewBufferString(`{"email":"jane@firm.com","password":"password123"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Token != "tok-1" || body.User.Email != "jane@firm.com" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestAuthHandler_LoginFailure(t *testing.T) {
	h := &AuthHandler{Auth: &fakeAuthService{signInErr: apperr.NotFound("invalid email or password")}}
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		bytes.NewBufferString(`{"email":"jane@firm.com","password":"nope"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_LoginBackendFault(t *testing.T) {
	// A session store outage must not read as bad credentials.
	h := &AuthHandler{Auth: &fakeAuthService{signInErr: apperr.Backend("save session", errors.New("redis down"))}}
	req := httptest.NewRequest(http.MethodPost, "/api/login",
		bytes.NewBufferString(`{"email":"jane@firm.com","password":"password123"}`))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := &AuthHandler{Auth: &fakeAuthService{currentUser: &models.User{ID: "u1", Email: "jane@firm.com"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	h.Me(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	// Without a token the handler must refuse before calling the service.
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_MeExpiredSession(t *testing.T) {
	h := &AuthHandler{Auth: &fakeAuthService{currentUser: nil}}
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

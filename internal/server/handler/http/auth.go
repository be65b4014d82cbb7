package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lexora/lexora/internal/apperr"
	"github.com/lexora/lexora/internal/models"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// SignUp registers a new account.
	SignUp(ctx context.Context, email, password, name string) (*models.User, error)
	// SignIn verifies credentials and issues a session token.
	SignIn(ctx context.Context, email, password string) (string, *models.User, error)
	// SignOut revokes a session token.
	SignOut(ctx context.Context, token string) error
	// CurrentUser resolves a session token; (nil, nil) when unauthenticated.
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// AuthHandler handles HTTP requests for registration, login, logout, and
// session lookup.
type AuthHandler struct {
	// Auth performs the underlying authentication operations.
	Auth AuthService
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register handles POST /api/register. It expects a JSON body with email
// and password and responds with the created account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Auth.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/login. On success it responds with the session
// token and the account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	tok, user, err := h.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		// Credential failures always read the same from outside; anything
		// else, like a session store outage, keeps its own status.
		if apperr.IsKind(err, apperr.KindNotFound) {
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "user": user})
}

// Logout handles POST /api/logout, revoking the presented bearer token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tok := requestToken(r)
	if tok == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}
	if err := h.Auth.SignOut(r.Context(), tok); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me handles GET /api/me, resolving the presented bearer token to its
// account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	tok := requestToken(r)
	if tok == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}
	user, err := h.Auth.CurrentUser(r.Context(), tok)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		http.Error(w, "invalid or expired session", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func requestToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

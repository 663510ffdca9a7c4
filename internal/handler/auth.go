package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/case-runner/internal/apperror"
	"github.com/sakif/case-runner/internal/auth"
	"github.com/sakif/case-runner/internal/service"
)

// cookieMaxAge matches the token lifetime: the browser drops the cookie
// when the token would expire anyway.
const cookieMaxAge = int(auth.TokenTTL / time.Second)

// AuthHandler serves registration, login, logout, and the profile route.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
// 201 with the password-redacted user; 409 when the email is taken.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("invalid JSON body"))
		return
	}

	user, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "user", user)
}

// HandleLogin verifies credentials and issues the session token.
//
// HTTP: POST /api/auth/login
// The token is set as an HttpOnly, SameSite=Lax cookie AND returned in the
// body — browser clients rely on the cookie, API clients on the body.
// Bad credentials are a 400 with a deliberately uniform message.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("invalid JSON body"))
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"token":  result.Token,
	})
}

// HandleLogout clears the token cookie.
//
// HTTP: GET /api/auth/logout (auth required)
// Stateless tokens cannot be revoked server-side; the negative max-age
// tells the browser to delete the cookie immediately.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleMe returns the authenticated caller's profile.
//
// HTTP: GET /api/users/me (auth required)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but don't panic if miswired.
		writeError(w, apperror.Unauthorized("You are not logged in"))
		return
	}

	writeData(w, http.StatusOK, "user", user)
}

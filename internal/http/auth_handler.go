package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/backend"
)

type AuthHandler struct {
	backendFor BackendFunc
	timeout    time.Duration
	logger     *zap.Logger
}

func NewAuthHandler(backendFor BackendFunc, timeout time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		backendFor: backendFor,
		timeout:    timeout,
		logger:     logger,
	}
}

type LoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type SessionResponseDTO struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_credentials", "username and password are required")
		return
	}

	session, err := h.backendFor(backend.Anonymous).Login(ctx, req.Username, req.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	username := session.Username
	if username == "" {
		username = req.Username
	}
	setCookie(w, UsernameCookie, username, false)
	if session.Token != "" {
		setCookie(w, backend.SessionCookieName, session.Token, true)
	}

	respondJSON(w, http.StatusOK, SessionResponseDTO{Username: username, Role: string(session.Role)})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if id, ok := getIdentityFromContext(r.Context()); ok {
		if err := h.backendFor(id.Credentials).Logout(ctx); err != nil {
			h.logger.Warn("backend logout failed", zap.String("username", id.Username), zap.Error(err))
		}
	}

	clearCookie(w, UsernameCookie)
	clearCookie(w, backend.SessionCookieName)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := getIdentityFromContext(r.Context())
	if !ok {
		respondUnauthorized(w)
		return
	}

	session, err := h.backendFor(id.Credentials).VerifySession(ctx)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SessionResponseDTO{Username: session.Username, Role: string(session.Role)})
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || !strings.Contains(req.Email, "@") || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_registration", "username, email and password are required")
		return
	}

	role := backend.Role(strings.ToUpper(req.Role))
	switch role {
	case "":
		role = backend.RoleCustomer
	case backend.RoleCustomer, backend.RoleAdmin:
	default:
		respondError(w, http.StatusBadRequest, "invalid_role", "role must be CUSTOMER or ADMIN")
		return
	}

	err := h.backendFor(backend.Anonymous).Register(ctx, backend.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SessionResponseDTO{Username: req.Username, Role: string(role)})
}

func setCookie(w http.ResponseWriter, name, value string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

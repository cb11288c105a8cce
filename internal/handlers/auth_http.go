package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"design-pro/internal/middleware"
	"design-pro/internal/models"
	"design-pro/internal/service"
	"design-pro/internal/utils"
)

type AuthHTTP struct {
	svc    *service.AuthService
	log    zerolog.Logger
	ttl    time.Duration
	secure bool
}

// NewAuthHTTP builds the auth endpoints. secure marks the session cookie as
// HTTPS-only.
func NewAuthHTTP(s *service.AuthService, log zerolog.Logger, ttl time.Duration, secure bool) *AuthHTTP {
	return &AuthHTTP{svc: s, log: log, ttl: ttl, secure: secure}
}

func (h *AuthHTTP) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secure,
		Expires:  time.Now().Add(h.ttl),
	})
}

type sessionView struct {
	User    *models.User `json:"user"`
	IsAdmin bool         `json:"isAdmin"`
	Token   string       `json:"token,omitempty"`
}

// POST /api/auth/register
// Registers and signs the new user in.
func (h *AuthHTTP) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in service.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := h.svc.Register(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		token, err := h.svc.Issue(u)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		h.setSession(w, token)
		utils.JSON(w, http.StatusCreated, sessionView{User: u, IsAdmin: u.Identity().IsAdmin(), Token: token})
	}
}

// POST /api/auth/login
func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		token, u, err := h.svc.Login(r.Context(), in.Username, in.Password)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		h.setSession(w, token)
		utils.JSON(w, http.StatusOK, sessionView{User: u, IsAdmin: u.Identity().IsAdmin(), Token: token})
	}
}

// POST /api/auth/logout
func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   h.secure,
			MaxAge:   -1,              // expire immediately
			Expires:  time.Unix(0, 0), // for older browsers
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/auth/me
func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.IdentityFrom(r.Context())
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		u, err := h.svc.Me(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, sessionView{User: u, IsAdmin: u.Identity().IsAdmin()})
	}
}

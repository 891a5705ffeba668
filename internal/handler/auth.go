package handler

import (
	"errors"
	"net/http"

	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/middleware"
	"github.com/flavourfinder/flavourfinder-go/internal/model"
	"github.com/flavourfinder/flavourfinder-go/internal/service"
)

// AuthHandler handles HTTP requests for the identity endpoints.
type AuthHandler struct {
	service *service.AuthService
	log     *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{service: svc, log: log.With("handler", "AuthHandler")}
}

// HandleSignUp handles POST /auth/signup requests.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	resp, err := h.service.SignUp(r.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired), errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrPasswordRequired), errors.Is(err, service.ErrPasswordTooShort):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			h.log.Error("sign up failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleSignIn handles POST /auth/signin requests.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}

	session, err := h.service.SignIn(r.Context(), creds)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
			return
		}
		h.log.Error("sign in failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// HandleSignOut handles POST /auth/signout requests.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	if err := h.service.SignOut(r.Context(), claims); err != nil {
		h.log.Error("sign out failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// HandleSession handles GET /auth/session requests.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	h.respondSession(w, r, false)
}

// HandleRefresh handles POST /auth/refresh requests.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.respondSession(w, r, true)
}

func (h *AuthHandler) respondSession(w http.ResponseWriter, r *http.Request, refresh bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	token, hasToken := middleware.TokenFromContext(r.Context())
	if !ok || !hasToken {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var (
		session model.Session
		err     error
	)
	if refresh {
		session, err = h.service.Refresh(r.Context(), claims)
	} else {
		session, err = h.service.CurrentSession(r.Context(), token, claims)
	}
	if err != nil {
		if errors.Is(err, service.ErrUnknownUser) {
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
			return
		}
		h.log.Error("session lookup failed", "refresh", refresh, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, session)
}

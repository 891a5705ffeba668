package handler

import (
	"net/http"

	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/middleware"
	"github.com/flavourfinder/flavourfinder-go/internal/model"
	"github.com/flavourfinder/flavourfinder-go/internal/service"
)

// PreferencesHandler handles HTTP requests for the user's preferences.
type PreferencesHandler struct {
	service *service.PreferencesService
	log     *logger.Logger
}

func NewPreferencesHandler(svc *service.PreferencesService, log *logger.Logger) *PreferencesHandler {
	return &PreferencesHandler{service: svc, log: log.With("handler", "PreferencesHandler")}
}

// HandleGet handles GET /preferences requests.
func (h *PreferencesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	prefs, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.log.Error("get preferences failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, prefs)
}

// HandleUpdate handles PUT /preferences requests.
func (h *PreferencesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	prefs := model.DefaultPreferences()
	if !decodeBody(w, r, &prefs) {
		return
	}

	stored, err := h.service.Update(r.Context(), userID, prefs)
	if err != nil {
		h.log.Error("update preferences failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/middleware"
	"github.com/flavourfinder/flavourfinder-go/internal/model"
	"github.com/flavourfinder/flavourfinder-go/internal/repository"
	"github.com/flavourfinder/flavourfinder-go/internal/service"
)

// RecipeHandler handles HTTP requests for recipe generation and saving.
type RecipeHandler struct {
	service *service.RecipeService
	log     *logger.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc *service.RecipeService, log *logger.Logger) *RecipeHandler {
	return &RecipeHandler{service: svc, log: log.With("handler", "RecipeHandler")}
}

// HandleGenerate handles POST /recipes/generate requests.
func (h *RecipeHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRecipeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	recipe, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.log.Error("generate failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// HandleModify handles POST /recipes/modify requests.
func (h *RecipeHandler) HandleModify(w http.ResponseWriter, r *http.Request) {
	var req model.ModifyRecipeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	recipe, err := h.service.Modify(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecipeIDRequired), errors.Is(err, service.ErrModificationRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			h.log.Error("modify failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		}
		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// HandleSave handles POST /recipes/save requests.
func (h *RecipeHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var recipe model.Recipe
	if !decodeBody(w, r, &recipe) {
		return
	}

	rec, err := h.service.Save(r.Context(), userID, recipe)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecipeIDRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, repository.ErrAlreadySaved):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			h.log.Error("save failed", "user_id", userID, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// HandleUnsave handles DELETE /recipes/save/{recipe_id} requests.
func (h *RecipeHandler) HandleUnsave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	recipeID := chi.URLParam(r, "recipe_id")
	if err := h.service.Unsave(r.Context(), userID, recipeID); err != nil {
		switch {
		case errors.Is(err, service.ErrRecipeIDRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, repository.ErrSavedRecipeNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			h.log.Error("unsave failed", "user_id", userID, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// HandleListSaved handles GET /recipes/saved requests.
func (h *RecipeHandler) HandleListSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	records, err := h.service.ListSaved(r.Context(), userID)
	if err != nil {
		h.log.Error("list saved failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, model.SavedRecipesResponse{Recipes: records})
}

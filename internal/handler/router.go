package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/middleware"
	"github.com/flavourfinder/flavourfinder-go/internal/service"
)

// Services bundles what the router needs to serve the API.
type Services struct {
	Auth        *service.AuthService
	Recipes     *service.RecipeService
	Preferences *service.PreferencesService
	AuthRPS     float64
	AuthBurst   int
}

// NewRouter wires every route of the backend.
func NewRouter(svc Services, log *logger.Logger) http.Handler {
	authHandler := NewAuthHandler(svc.Auth, log)
	recipeHandler := NewRecipeHandler(svc.Recipes, log)
	prefsHandler := NewPreferencesHandler(svc.Preferences, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", HandleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(svc.AuthRPS, svc.AuthBurst, log))
		r.Post("/auth/signup", authHandler.HandleSignUp)
		r.Post("/auth/signin", authHandler.HandleSignIn)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(svc.Auth))

		r.Post("/auth/signout", authHandler.HandleSignOut)
		r.Get("/auth/session", authHandler.HandleSession)
		r.Post("/auth/refresh", authHandler.HandleRefresh)

		r.Post("/recipes/generate", recipeHandler.HandleGenerate)
		r.Post("/recipes/modify", recipeHandler.HandleModify)
		r.Post("/recipes/save", recipeHandler.HandleSave)
		r.Delete("/recipes/save/{recipe_id}", recipeHandler.HandleUnsave)
		r.Get("/recipes/saved", recipeHandler.HandleListSaved)

		r.Get("/preferences", prefsHandler.HandleGet)
		r.Put("/preferences", prefsHandler.HandleUpdate)
	})

	return r
}

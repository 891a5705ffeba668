package service

import (
	"context"
	"errors"
	"strings"

	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

var (
	ErrRecipeIDRequired     = errors.New("recipe id is required")
	ErrModificationRequired = errors.New("modification is required")
)

// RecipeService handles recipe generation and the user's saved collection.
type RecipeService struct {
	saved SavedRecipeStore
	gen   Generator
	log   *logger.Logger
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(saved SavedRecipeStore, gen Generator, log *logger.Logger) *RecipeService {
	return &RecipeService{saved: saved, gen: gen, log: log.With("service", "RecipeService")}
}

// Generate produces a recipe for the given preferences, avoiding the titles
// the caller already has.
func (s *RecipeService) Generate(ctx context.Context, req model.GenerateRecipeRequest) (model.Recipe, error) {
	recipe, err := s.gen.Generate(ctx, clampPreferences(req.Preferences), req.ExistingRecipes)
	if err != nil {
		return model.Recipe{}, err
	}
	s.log.Debug("recipe generated", "recipe_id", recipe.ID, "existing", len(req.ExistingRecipes))
	return recipe, nil
}

// Modify revises a recipe according to a free-text instruction.
func (s *RecipeService) Modify(ctx context.Context, req model.ModifyRecipeRequest) (model.Recipe, error) {
	if req.OriginalRecipe.ID == "" {
		return model.Recipe{}, ErrRecipeIDRequired
	}
	if strings.TrimSpace(req.Modification) == "" {
		return model.Recipe{}, ErrModificationRequired
	}
	return s.gen.Modify(ctx, req.OriginalRecipe, req.Modification)
}

// Save stores a recipe in the user's collection. A duplicate returns
// repository.ErrAlreadySaved.
func (s *RecipeService) Save(ctx context.Context, userID string, recipe model.Recipe) (*model.SavedRecipeRecord, error) {
	if recipe.ID == "" {
		return nil, ErrRecipeIDRequired
	}
	rec, err := s.saved.Insert(ctx, userID, recipe)
	if err != nil {
		return nil, err
	}
	s.log.Info("recipe saved", "user_id", userID, "recipe_id", recipe.ID)
	return rec, nil
}

// Unsave removes a recipe from the user's collection. A recipe that was never
// saved returns repository.ErrSavedRecipeNotFound.
func (s *RecipeService) Unsave(ctx context.Context, userID, recipeID string) error {
	if recipeID == "" {
		return ErrRecipeIDRequired
	}
	if err := s.saved.Delete(ctx, userID, recipeID); err != nil {
		return err
	}
	s.log.Info("recipe unsaved", "user_id", userID, "recipe_id", recipeID)
	return nil
}

// ListSaved returns the user's saved recipes, newest first.
func (s *RecipeService) ListSaved(ctx context.Context, userID string) ([]model.SavedRecipeRecord, error) {
	records, err := s.saved.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.SavedRecipeRecord{}
	}
	return records, nil
}

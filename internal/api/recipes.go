package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

// GenerateRecipe asks the backend for a new recipe. existingTitles is a hint
// that lets the generator avoid repeats.
func (c *Client) GenerateRecipe(ctx context.Context, prefs model.UserPreferences, existingTitles []string) (model.Recipe, error) {
	if existingTitles == nil {
		existingTitles = []string{}
	}
	req := model.GenerateRecipeRequest{Preferences: prefs, ExistingRecipes: existingTitles}

	var recipe model.Recipe
	if err := c.post(ctx, "/recipes/generate", req, &recipe); err != nil {
		return model.Recipe{}, err
	}
	if err := validateRecipe(recipe); err != nil {
		return model.Recipe{}, err
	}
	return recipe, nil
}

// ModifyRecipe asks the backend to revise original according to modification.
// The full original recipe is sent.
func (c *Client) ModifyRecipe(ctx context.Context, original model.Recipe, modification string) (model.Recipe, error) {
	req := model.ModifyRecipeRequest{OriginalRecipe: original, Modification: modification}

	var recipe model.Recipe
	if err := c.post(ctx, "/recipes/modify", req, &recipe); err != nil {
		return model.Recipe{}, err
	}
	if err := validateRecipe(recipe); err != nil {
		return model.Recipe{}, err
	}
	return recipe, nil
}

// SaveRecipe adds a recipe to the user's saved collection. A duplicate save
// fails with an error for which IsAlreadySaved reports true.
func (c *Client) SaveRecipe(ctx context.Context, recipe model.Recipe) error {
	if recipe.ID == "" {
		return invalidRequest(errors.New("recipe has no id"))
	}
	return c.post(ctx, "/recipes/save", recipe, nil)
}

// UnsaveRecipe removes a recipe from the saved collection. Removing a recipe
// that is not saved (404) succeeds, so repeated calls are idempotent.
func (c *Client) UnsaveRecipe(ctx context.Context, recipeID string) error {
	if recipeID == "" {
		return invalidRequest(errors.New("recipe id is empty"))
	}
	err := c.delete(ctx, "/recipes/save/"+url.PathEscape(recipeID))
	if KindOf(err) == KindServer && StatusCode(err) == http.StatusNotFound {
		c.t.log.Debug("unsave of absent recipe treated as success", "recipe_id", recipeID)
		return nil
	}
	return err
}

// ListSavedRecipes returns the user's saved recipes. Records without recipe
// data are dropped.
func (c *Client) ListSavedRecipes(ctx context.Context) ([]model.SavedRecipeRecord, error) {
	var resp struct {
		Recipes *[]model.SavedRecipeRecord `json:"recipes"`
	}
	if err := c.get(ctx, "/recipes/saved", &resp); err != nil {
		return nil, err
	}
	if resp.Recipes == nil {
		return nil, decodingError(errors.New(`missing "recipes" field`))
	}

	records := make([]model.SavedRecipeRecord, 0, len(*resp.Recipes))
	for _, rec := range *resp.Recipes {
		if rec.RecipeData == nil {
			continue
		}
		if err := validateRecipe(*rec.RecipeData); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func validateRecipe(r model.Recipe) error {
	if r.ID == "" {
		return decodingError(errors.New("recipe has no id"))
	}
	if r.Title == "" {
		return decodingError(fmt.Errorf("recipe %s has no title", r.ID))
	}
	if r.AttachedPreferences != nil {
		if err := r.AttachedPreferences.Validate(); err != nil {
			return decodingError(err)
		}
	}
	return nil
}

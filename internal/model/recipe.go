package model

// Macros holds the nutritional totals for a recipe.
type Macros struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// RecipeStep is a single numbered cooking instruction.
type RecipeStep struct {
	StepNumber  int    `json:"step_number"`
	Instruction string `json:"instruction"`
}

// Recipe is a generated or modified cooking result. Values are treated as
// immutable: use Clone and WithPreferences instead of mutating fields.
type Recipe struct {
	ID          string       `json:"id"`
	ImageURL    string       `json:"image_url"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CookTime    int          `json:"cook_time"` // minutes
	Tags        []string     `json:"tags"`
	Ingredients []string     `json:"ingredients"`
	Steps       []RecipeStep `json:"steps"`
	Macros      Macros       `json:"macros"`

	// AttachedPreferences records the preferences in effect when the recipe
	// was generated. The backend does not always echo it back.
	AttachedPreferences *UserPreferences `json:"preferences,omitempty"`
}

// Clone returns a deep copy of r.
func (r Recipe) Clone() Recipe {
	out := r
	out.Tags = append([]string(nil), r.Tags...)
	out.Ingredients = append([]string(nil), r.Ingredients...)
	out.Steps = append([]RecipeStep(nil), r.Steps...)
	if r.AttachedPreferences != nil {
		p := *r.AttachedPreferences
		out.AttachedPreferences = &p
	}
	return out
}

// WithPreferences returns a copy of r annotated with p.
func (r Recipe) WithPreferences(p UserPreferences) Recipe {
	out := r.Clone()
	out.AttachedPreferences = &p
	return out
}

// SavedRecipeRecord wraps a recipe persisted against a user's account.
type SavedRecipeRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	RecipeID   string    `json:"recipe_id"`
	RecipeData *Recipe   `json:"recipe_data"`
	CreatedAt  Timestamp `json:"created_at"`
}

// GenerateRecipeRequest is the body of POST /recipes/generate.
type GenerateRecipeRequest struct {
	Preferences     UserPreferences `json:"preferences"`
	ExistingRecipes []string        `json:"existing_recipes"`
}

// ModifyRecipeRequest is the body of POST /recipes/modify.
type ModifyRecipeRequest struct {
	OriginalRecipe Recipe `json:"original_recipe"`
	Modification   string `json:"modification"`
}

// SavedRecipesResponse is the body of GET /recipes/saved.
type SavedRecipesResponse struct {
	Recipes []SavedRecipeRecord `json:"recipes"`
}

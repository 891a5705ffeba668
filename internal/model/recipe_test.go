package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecipe() Recipe {
	return Recipe{
		ID:          "r-1",
		ImageURL:    "https://images.example.com/r-1.jpg",
		Title:       "Lemon Chicken",
		Description: "Bright and quick.",
		CookTime:    25,
		Tags:        []string{"chicken", "quick"},
		Ingredients: []string{"2 chicken breasts", "1 lemon"},
		Steps:       []RecipeStep{{StepNumber: 1, Instruction: "Sear the chicken."}},
		Macros:      Macros{Calories: 420, Protein: 38, Carbs: 6, Fat: 22},
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := sampleRecipe().WithPreferences(DefaultPreferences())
	c := r.Clone()

	c.Tags[0] = "changed"
	c.Steps[0].Instruction = "changed"
	c.AttachedPreferences.SpiceLevel = 3

	assert.Equal(t, "chicken", r.Tags[0])
	assert.Equal(t, "Sear the chicken.", r.Steps[0].Instruction)
	assert.Equal(t, LevelMedium, r.AttachedPreferences.SpiceLevel)
}

func TestWithPreferencesLeavesOriginalUntouched(t *testing.T) {
	r := sampleRecipe()
	p := DefaultPreferences().With(AxisSkill, 3)

	stamped := r.WithPreferences(p)

	assert.Nil(t, r.AttachedPreferences)
	require.NotNil(t, stamped.AttachedPreferences)
	assert.Equal(t, p, *stamped.AttachedPreferences)
}

func TestRecipeWireNames(t *testing.T) {
	data, err := json.Marshal(sampleRecipe())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"id", "image_url", "title", "description", "cook_time", "tags", "ingredients", "steps", "macros"} {
		assert.Contains(t, fields, key)
	}
	assert.NotContains(t, fields, "preferences")
}

func TestSavedRecipeRecordDecodesAbsentRecipe(t *testing.T) {
	raw := `{"id":"s-1","user_id":"u-1","recipe_id":"r-1","recipe_data":null,"created_at":"2026-01-02T03:04:05Z"}`

	var rec SavedRecipeRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Nil(t, rec.RecipeData)
	assert.Equal(t, "r-1", rec.RecipeID)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), rec.CreatedAt.Time)
}

func TestSavedRecipeRecordTimestampLayouts(t *testing.T) {
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2026-01-02T03:04:05Z"`, want},
		{"offset", `"2026-01-02T03:04:05+00:00"`, want},
		{"no zone", `"2026-01-02T03:04:05.000123"`, want.Add(123 * time.Microsecond)},
		{"space separator", `"2026-01-02 03:04:05"`, want},
		{"garbage", `"last tuesday"`, time.Time{}},
		{"null", `null`, time.Time{}},
		{"number", `1767323045`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"id":"s-1","recipe_id":"r-1","recipe_data":{"id":"r-1"},"created_at":` + tt.raw + `}`

			var rec SavedRecipeRecord
			require.NoError(t, json.Unmarshal([]byte(raw), &rec))
			assert.True(t, tt.want.Equal(rec.CreatedAt.Time), "got %v", rec.CreatedAt.Time)
			require.NotNil(t, rec.RecipeData)
		})
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, Session{}.Expired(now))
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
}

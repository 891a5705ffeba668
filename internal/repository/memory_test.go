package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	u := &model.User{Email: "Cook@Example.com", AuthHash: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	err := repo.Create(ctx, &model.User{Email: "cook@example.com", AuthHash: "other"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	got, err := repo.GetByEmail(ctx, "cook@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", got.AuthHash)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryPreferencesRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPreferencesRepository()

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrPreferencesNotFound)

	p := model.DefaultPreferences().With(model.AxisSpice, model.LevelHigh)
	require.NoError(t, repo.Upsert(ctx, "u1", p))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestMemorySavedRecipeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySavedRecipeRepository()
	recipe := model.Recipe{ID: "r1", Title: "Shakshuka", Tags: []string{"eggs"}}

	rec, err := repo.Insert(ctx, "u1", recipe)
	require.NoError(t, err)
	assert.Equal(t, "r1", rec.RecipeID)

	_, err = repo.Insert(ctx, "u1", recipe)
	assert.ErrorIs(t, err, ErrAlreadySaved)

	// Another user may save the same recipe.
	_, err = repo.Insert(ctx, "u2", recipe)
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Shakshuka", list[0].RecipeData.Title)

	list[0].RecipeData.Tags[0] = "mutated"
	again, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "eggs", again[0].RecipeData.Tags[0])

	require.NoError(t, repo.Delete(ctx, "u1", "r1"))
	assert.ErrorIs(t, repo.Delete(ctx, "u1", "r1"), ErrSavedRecipeNotFound)
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-2", time.Now().Add(-time.Second)))
	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

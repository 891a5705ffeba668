package service

import (
	"context"
	"time"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
	"github.com/flavourfinder/flavourfinder-go/internal/repository"
)

// UserStore persists identity-provider accounts.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// RevocationStore is the signed-out token denylist.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// PreferencesStore persists one preferences value per user.
type PreferencesStore interface {
	Get(ctx context.Context, userID string) (model.UserPreferences, error)
	Upsert(ctx context.Context, userID string, p model.UserPreferences) error
}

// SavedRecipeStore persists the recipes a user saved.
type SavedRecipeStore interface {
	Insert(ctx context.Context, userID string, recipe model.Recipe) (*model.SavedRecipeRecord, error)
	ListByUser(ctx context.Context, userID string) ([]model.SavedRecipeRecord, error)
	Delete(ctx context.Context, userID, recipeID string) error
}

var (
	_ UserStore        = (*repository.UserRepository)(nil)
	_ UserStore        = (*repository.MemoryUserRepository)(nil)
	_ RevocationStore  = (*repository.RevocationRepository)(nil)
	_ RevocationStore  = (*repository.RedisRevocationStore)(nil)
	_ RevocationStore  = (*repository.MemoryRevocationStore)(nil)
	_ PreferencesStore = (*repository.PreferencesRepository)(nil)
	_ PreferencesStore = (*repository.MemoryPreferencesRepository)(nil)
	_ SavedRecipeStore = (*repository.SavedRecipeRepository)(nil)
	_ SavedRecipeStore = (*repository.MemorySavedRecipeRepository)(nil)
)

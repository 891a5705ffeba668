package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

// The in-memory repositories back STORAGE=memory and the tests. They mirror
// the MySQL repositories' sentinel errors. Safe for concurrent access.

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := r.byEmail[key]; ok {
		return ErrDuplicateEmail
	}

	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[key] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *stored
	return &u, nil
}

// MemoryPreferencesRepository is an in-memory PreferencesRepository.
type MemoryPreferencesRepository struct {
	mu    sync.RWMutex
	prefs map[string]model.UserPreferences
}

func NewMemoryPreferencesRepository() *MemoryPreferencesRepository {
	return &MemoryPreferencesRepository{prefs: make(map[string]model.UserPreferences)}
}

func (r *MemoryPreferencesRepository) Get(ctx context.Context, userID string) (model.UserPreferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prefs[userID]
	if !ok {
		return model.UserPreferences{}, ErrPreferencesNotFound
	}
	return p, nil
}

func (r *MemoryPreferencesRepository) Upsert(ctx context.Context, userID string, p model.UserPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs[userID] = p
	return nil
}

// MemorySavedRecipeRepository is an in-memory SavedRecipeRepository.
type MemorySavedRecipeRepository struct {
	mu     sync.RWMutex
	byUser map[string]map[string]model.SavedRecipeRecord
}

func NewMemorySavedRecipeRepository() *MemorySavedRecipeRepository {
	return &MemorySavedRecipeRepository{byUser: make(map[string]map[string]model.SavedRecipeRecord)}
}

func (r *MemorySavedRecipeRepository) Insert(ctx context.Context, userID string, recipe model.Recipe) (*model.SavedRecipeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved, ok := r.byUser[userID]
	if !ok {
		saved = make(map[string]model.SavedRecipeRecord)
		r.byUser[userID] = saved
	}
	if _, exists := saved[recipe.ID]; exists {
		return nil, ErrAlreadySaved
	}

	data := recipe.Clone()
	rec := model.SavedRecipeRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		RecipeID:   recipe.ID,
		RecipeData: &data,
		CreatedAt:  model.NewTimestamp(time.Now().UTC()),
	}
	saved[recipe.ID] = rec

	out := rec
	return &out, nil
}

func (r *MemorySavedRecipeRepository) ListByUser(ctx context.Context, userID string) ([]model.SavedRecipeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]model.SavedRecipeRecord, 0, len(r.byUser[userID]))
	for _, rec := range r.byUser[userID] {
		if rec.RecipeData != nil {
			data := rec.RecipeData.Clone()
			rec.RecipeData = &data
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt.Time)
	})
	return records, nil
}

func (r *MemorySavedRecipeRepository) Delete(ctx context.Context, userID, recipeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUser[userID][recipeID]; !ok {
		return ErrSavedRecipeNotFound
	}
	delete(r.byUser[userID], recipeID)
	return nil
}

// MemoryRevocationStore is an in-memory jti denylist.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *MemoryRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revoked[jti] = expiresAt
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[jti]
	if !ok {
		return false, nil
	}
	if !time.Now().Before(exp) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}

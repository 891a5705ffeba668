package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

var (
	ErrAlreadySaved        = errors.New("recipe already saved")
	ErrSavedRecipeNotFound = errors.New("saved recipe not found")
)

// SavedRecipeRepository handles saved recipe persistence operations.
type SavedRecipeRepository struct {
	db *sql.DB
}

// NewSavedRecipeRepository creates a new SavedRecipeRepository.
func NewSavedRecipeRepository(db *sql.DB) *SavedRecipeRepository {
	return &SavedRecipeRepository{db: db}
}

// Insert stores a recipe for a user. The (user_id, recipe_id) pair is unique;
// a second insert returns ErrAlreadySaved.
func (r *SavedRecipeRepository) Insert(ctx context.Context, userID string, recipe model.Recipe) (*model.SavedRecipeRecord, error) {
	data, err := json.Marshal(recipe)
	if err != nil {
		return nil, err
	}

	rec := &model.SavedRecipeRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		RecipeID:   recipe.ID,
		RecipeData: &recipe,
		CreatedAt:  model.NewTimestamp(time.Now().UTC()),
	}

	query := `INSERT INTO saved_recipes (id, user_id, recipe_id, recipe_data, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, rec.ID, rec.UserID, rec.RecipeID, data, rec.CreatedAt); err != nil {
		if isDuplicateEntryError(err) {
			return nil, ErrAlreadySaved
		}
		return nil, err
	}

	return rec, nil
}

// ListByUser retrieves every saved recipe for a user, newest first.
func (r *SavedRecipeRepository) ListByUser(ctx context.Context, userID string) ([]model.SavedRecipeRecord, error) {
	query := `SELECT id, user_id, recipe_id, recipe_data, created_at
		FROM saved_recipes WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.SavedRecipeRecord
	for rows.Next() {
		var (
			rec  model.SavedRecipeRecord
			data []byte
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.RecipeID, &data, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			var recipe model.Recipe
			if err := json.Unmarshal(data, &recipe); err == nil {
				rec.RecipeData = &recipe
			}
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Delete removes a saved recipe. It returns ErrSavedRecipeNotFound when the
// user never saved it.
func (r *SavedRecipeRepository) Delete(ctx context.Context, userID, recipeID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM saved_recipes WHERE user_id = ? AND recipe_id = ?`, userID, recipeID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrSavedRecipeNotFound
	}

	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

var ErrPreferencesNotFound = errors.New("preferences not found")

// PreferencesRepository stores one preferences row per user.
type PreferencesRepository struct {
	db *sql.DB
}

// NewPreferencesRepository creates a new PreferencesRepository.
func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns the stored preferences for a user.
func (r *PreferencesRepository) Get(ctx context.Context, userID string) (model.UserPreferences, error) {
	query := `SELECT effort_level, skill_level, calorie_consciousness, protein_preference, spice_level
		FROM user_preferences WHERE user_id = ?`

	var p model.UserPreferences
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.EffortLevel, &p.SkillLevel, &p.CalorieConsciousness, &p.ProteinPreference, &p.SpiceLevel,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserPreferences{}, ErrPreferencesNotFound
		}
		return model.UserPreferences{}, err
	}
	return p, nil
}

// Upsert inserts or replaces the preferences row for a user.
func (r *PreferencesRepository) Upsert(ctx context.Context, userID string, p model.UserPreferences) error {
	query := `
		INSERT INTO user_preferences (user_id, effort_level, skill_level, calorie_consciousness, protein_preference, spice_level)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			effort_level          = VALUES(effort_level),
			skill_level           = VALUES(skill_level),
			calorie_consciousness = VALUES(calorie_consciousness),
			protein_preference    = VALUES(protein_preference),
			spice_level           = VALUES(spice_level)`

	_, err := r.db.ExecContext(ctx, query,
		userID, p.EffortLevel, p.SkillLevel, p.CalorieConsciousness, p.ProteinPreference, p.SpiceLevel,
	)
	return err
}

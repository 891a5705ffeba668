package service

import (
	"context"
	"errors"

	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/model"
	"github.com/flavourfinder/flavourfinder-go/internal/repository"
)

// PreferencesService handles the per-user preference record.
type PreferencesService struct {
	repo PreferencesStore
	log  *logger.Logger
}

// NewPreferencesService creates a new PreferencesService.
func NewPreferencesService(repo PreferencesStore, log *logger.Logger) *PreferencesService {
	return &PreferencesService{repo: repo, log: log.With("service", "PreferencesService")}
}

// Get returns the user's stored preferences, or the defaults when none exist.
func (s *PreferencesService) Get(ctx context.Context, userID string) (model.UserPreferences, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrPreferencesNotFound) {
		return model.DefaultPreferences(), nil
	}
	return p, err
}

// Update stores the preferences, clamping each axis into 1..3, and returns
// the stored value.
func (s *PreferencesService) Update(ctx context.Context, userID string, p model.UserPreferences) (model.UserPreferences, error) {
	stored := clampPreferences(p)
	if err := s.repo.Upsert(ctx, userID, stored); err != nil {
		return model.UserPreferences{}, err
	}
	s.log.Debug("preferences updated", "user_id", userID)
	return stored, nil
}

func clampPreferences(p model.UserPreferences) model.UserPreferences {
	for _, axis := range model.Axes {
		switch l := p.Get(axis); {
		case l < model.LevelLow:
			p = p.With(axis, model.LevelLow)
		case l > model.LevelHigh:
			p = p.With(axis, model.LevelHigh)
		}
	}
	return p
}

package pipeline

import (
	"context"

	"github.com/flavourfinder/flavourfinder-go/internal/api"
	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

// SavedList is the user's saved recipes as last fetched.
type SavedList struct {
	p *Pipeline
}

// SavedList returns the saved list backed by p.
func (p *Pipeline) SavedList() *SavedList {
	return &SavedList{p: p}
}

// Recipes returns a copy of the list.
func (s *SavedList) Recipes() []model.Recipe {
	s.p.view.RLock()
	defer s.p.view.RUnlock()
	return cloneAll(s.p.saved)
}

// Refresh replaces the list with the backend's. Recipes the backend returns
// without preferences get the ones this process generated them with, and
// every listed recipe is marked saved.
func (s *SavedList) Refresh(ctx context.Context) error {
	p := s.p
	epoch := p.currentEpoch()
	records, err := p.api.ListSavedRecipes(ctx)
	if err != nil {
		p.log.Warn("failed to load saved recipes", "error", err)
		return &api.OperationError{Op: "load saved recipes", Err: err}
	}

	p.mutateIn(context.WithoutCancel(ctx), epoch, func() {
		list := make([]model.Recipe, 0, len(records))
		for _, rec := range records {
			if rec.RecipeData == nil {
				continue
			}
			r := rec.RecipeData.Clone()
			if r.AttachedPreferences == nil {
				if prefs, ok := p.annotations[r.ID]; ok {
					r = r.WithPreferences(prefs)
				}
			}
			list = append(list, r)
			p.setOverlay(r.ID, func(o *Overlay) { o.Saved = true })
		}
		p.saved = list
	})
	p.log.Debug("saved recipes refreshed", "count", len(records))
	return nil
}

// Unsave removes recipeID from the backend and, once that is confirmed,
// from the list. On failure the entry stays and the error is returned.
func (s *SavedList) Unsave(ctx context.Context, recipeID string) error {
	if err := s.p.Unsave(ctx, recipeID); err != nil {
		s.p.log.Warn("failed to remove saved recipe", "recipe_id", recipeID, "error", err)
		return err
	}
	return nil
}

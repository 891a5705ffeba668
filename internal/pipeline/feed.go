package pipeline

import (
	"context"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

// Feed is the home list of generated recipes, newest first.
type Feed struct {
	p *Pipeline
}

// Feed returns the home list backed by p.
func (p *Pipeline) Feed() *Feed {
	return &Feed{p: p}
}

// Recipes returns a copy of the list.
func (f *Feed) Recipes() []model.Recipe {
	f.p.view.RLock()
	defer f.p.view.RUnlock()
	return cloneAll(f.p.feed)
}

// Titles returns the titles currently shown, for the generator to avoid.
func (f *Feed) Titles() []string {
	f.p.view.RLock()
	defer f.p.view.RUnlock()

	titles := make([]string, len(f.p.feed))
	for i, r := range f.p.feed {
		titles[i] = r.Title
	}
	return titles
}

// Generating reports whether a generation is in flight.
func (f *Feed) Generating() bool {
	f.p.view.RLock()
	defer f.p.view.RUnlock()
	return f.p.generating
}

// Generate requests a new recipe for prefs, stamps it with prefs and puts it
// at the top of the list. Only one generation runs at a time; a second call
// returns ErrBusy. On failure the list is untouched.
func (f *Feed) Generate(ctx context.Context, prefs model.UserPreferences) (model.Recipe, error) {
	p := f.p
	if err := prefs.Validate(); err != nil {
		return model.Recipe{}, err
	}

	epoch := p.currentEpoch()
	busy := false
	p.mutateIn(ctx, epoch, func() {
		if p.generating {
			busy = true
			return
		}
		p.generating = true
	})
	if busy {
		return model.Recipe{}, ErrBusy
	}

	applyCtx := context.WithoutCancel(ctx)
	recipe, err := p.generate(ctx, prefs, f.Titles())

	p.mutateIn(applyCtx, epoch, func() {
		p.generating = false
		if err != nil {
			return
		}
		p.feed = append([]model.Recipe{recipe}, p.feed...)
		p.annotations[recipe.ID] = prefs
	})
	if err != nil {
		p.log.Warn("generate failed", "error", err)
		return model.Recipe{}, err
	}
	p.log.Info("recipe generated", "recipe_id", recipe.ID)
	return recipe.Clone(), nil
}

// Modify revises the recipe recipeID with instruction and replaces it in
// place. On failure the original entry is untouched.
func (f *Feed) Modify(ctx context.Context, recipeID, instruction string) (model.Recipe, error) {
	epoch := f.p.currentEpoch()
	original, ok := f.find(recipeID)
	if !ok {
		return model.Recipe{}, ErrRecipeNotFound
	}

	revised, err := f.p.Modify(ctx, original, instruction)
	if err != nil {
		return model.Recipe{}, err
	}

	f.p.mutateIn(context.WithoutCancel(ctx), epoch, func() {
		if i := indexOf(f.p.feed, recipeID); i >= 0 {
			f.p.feed[i] = revised.Clone()
		}
	})
	return revised, nil
}

// Save saves the recipe recipeID from the list.
func (f *Feed) Save(ctx context.Context, recipeID string) error {
	recipe, ok := f.find(recipeID)
	if !ok {
		return ErrRecipeNotFound
	}
	return f.p.Save(ctx, recipe)
}

func (f *Feed) find(recipeID string) (model.Recipe, bool) {
	f.p.view.RLock()
	defer f.p.view.RUnlock()

	i := indexOf(f.p.feed, recipeID)
	if i < 0 {
		return model.Recipe{}, false
	}
	return f.p.feed[i].Clone(), true
}

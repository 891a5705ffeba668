// Package pipeline drives the recipe life-cycle operations: generate,
// modify, save and unsave. Recipe values are never mutated; per-recipe view
// state lives in overlays keyed by recipe id, and every completion is
// applied on the UI-state goroutine.
package pipeline

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/flavourfinder/flavourfinder-go/internal/api"
	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/model"
	"github.com/flavourfinder/flavourfinder-go/internal/uistate"
)

var (
	// ErrBusy is returned when a different operation is already in flight
	// for the same recipe, or a generation is already running.
	ErrBusy = errors.New("an operation is already in progress for this recipe")

	ErrRecipeNotFound       = errors.New("recipe not found in list")
	ErrModificationRequired = errors.New("modification instruction is required")
)

// RecipeAPI is the subset of the backend client the pipeline drives.
type RecipeAPI interface {
	GenerateRecipe(ctx context.Context, prefs model.UserPreferences, existingTitles []string) (model.Recipe, error)
	ModifyRecipe(ctx context.Context, original model.Recipe, modification string) (model.Recipe, error)
	SaveRecipe(ctx context.Context, recipe model.Recipe) error
	UnsaveRecipe(ctx context.Context, recipeID string) error
	ListSavedRecipes(ctx context.Context) ([]model.SavedRecipeRecord, error)
}

// Overlay is the view state of one recipe.
type Overlay struct {
	Saving    bool
	Saved     bool
	Unsaving  bool
	Modifying bool
}

// Pipeline holds the state shared by a Feed and a SavedList.
type Pipeline struct {
	api RecipeAPI
	ui  *uistate.Dispatcher
	log *logger.Logger

	flights singleflight.Group

	// gate maps a recipe id to the key of its running flight.
	gateMu sync.Mutex
	gate   map[string]string

	// view guards everything below. Writers run on the UI-state goroutine.
	view        sync.RWMutex
	// epoch advances on every Reset. Completions started under an older
	// epoch are dropped.
	epoch       uint64
	overlays    map[string]Overlay
	annotations map[string]model.UserPreferences
	feed        []model.Recipe
	generating  bool
	saved       []model.Recipe
}

// New creates a pipeline. ui must be started before any operation runs.
func New(recipes RecipeAPI, ui *uistate.Dispatcher, log *logger.Logger) *Pipeline {
	return &Pipeline{
		api:         recipes,
		ui:          ui,
		log:         log.With("component", "pipeline.Pipeline"),
		gate:        make(map[string]string),
		overlays:    make(map[string]Overlay),
		annotations: make(map[string]model.UserPreferences),
	}
}

// Reset drops all view state, typically because the account changed.
// Operations still in flight finish against the backend but no longer touch
// the view, and cannot be joined by callers arriving after the reset.
func (p *Pipeline) Reset(ctx context.Context) error {
	err := p.ui.Do(ctx, func() {
		p.view.Lock()
		defer p.view.Unlock()

		p.epoch++
		p.overlays = make(map[string]Overlay)
		p.annotations = make(map[string]model.UserPreferences)
		p.feed = nil
		p.saved = nil
		p.generating = false
	})
	if err != nil {
		return err
	}
	p.log.Info("view state reset")
	return nil
}

// Overlay returns the view state of recipeID.
func (p *Pipeline) Overlay(recipeID string) Overlay {
	p.view.RLock()
	defer p.view.RUnlock()
	return p.overlays[recipeID]
}

// Save adds recipe to the saved collection. Saved is a terminal state: once
// set it is never cleared by a failed save, and a recipe already saved is not
// sent again. A conflict reporting the recipe as already saved counts as
// success. Concurrent saves of the same recipe share one request.
func (p *Pipeline) Save(ctx context.Context, recipe model.Recipe) error {
	id := recipe.ID
	if p.Overlay(id).Saved {
		return nil
	}

	_, err := p.gated(ctx, id, "save", func(ctx context.Context, epoch uint64) (any, error) {
		p.mutateIn(ctx, epoch, func() { p.setOverlay(id, func(o *Overlay) { o.Saving = true }) })

		err := p.api.SaveRecipe(ctx, recipe)
		if api.IsAlreadySaved(err) {
			p.log.Debug("recipe already saved", "recipe_id", id)
			err = nil
		}

		p.mutateIn(ctx, epoch, func() {
			p.setOverlay(id, func(o *Overlay) {
				o.Saving = false
				if err == nil {
					o.Saved = true
				}
			})
			if err == nil && recipe.AttachedPreferences != nil {
				p.annotations[id] = *recipe.AttachedPreferences
			}
		})
		if err != nil {
			return nil, &api.OperationError{Op: "save recipe", Err: err}
		}
		return nil, nil
	})
	return err
}

// Unsave removes recipeID from the saved collection and clears its Saved
// flag once the backend confirms. Removing a recipe that is not saved
// succeeds.
func (p *Pipeline) Unsave(ctx context.Context, recipeID string) error {
	_, err := p.gated(ctx, recipeID, "unsave", func(ctx context.Context, epoch uint64) (any, error) {
		p.mutateIn(ctx, epoch, func() { p.setOverlay(recipeID, func(o *Overlay) { o.Unsaving = true }) })

		err := p.api.UnsaveRecipe(ctx, recipeID)

		p.mutateIn(ctx, epoch, func() {
			p.setOverlay(recipeID, func(o *Overlay) {
				o.Unsaving = false
				if err == nil {
					o.Saved = false
				}
			})
			if err == nil {
				p.saved = removeRecipe(p.saved, recipeID)
			}
		})
		if err != nil {
			return nil, &api.OperationError{Op: "remove saved recipe", Err: err}
		}
		return nil, nil
	})
	return err
}

// Modify asks the backend to revise original. The result carries the
// original's preferences, whatever the backend returned.
func (p *Pipeline) Modify(ctx context.Context, original model.Recipe, instruction string) (model.Recipe, error) {
	if instruction == "" {
		return model.Recipe{}, ErrModificationRequired
	}
	id := original.ID

	v, err := p.gated(ctx, id, "modify\x00"+instruction, func(ctx context.Context, epoch uint64) (any, error) {
		p.mutateIn(ctx, epoch, func() { p.setOverlay(id, func(o *Overlay) { o.Modifying = true }) })

		revised, err := p.api.ModifyRecipe(ctx, original, instruction)
		if err == nil {
			revised = stamp(revised, original.AttachedPreferences)
		}

		p.mutateIn(ctx, epoch, func() {
			p.setOverlay(id, func(o *Overlay) { o.Modifying = false })
			if err == nil && revised.AttachedPreferences != nil {
				p.annotations[revised.ID] = *revised.AttachedPreferences
			}
		})
		if err != nil {
			return nil, &api.OperationError{Op: "modify recipe", Err: err}
		}
		return revised, nil
	})
	if err != nil {
		return model.Recipe{}, err
	}
	return v.(model.Recipe).Clone(), nil
}

// generate requests a recipe and stamps it with prefs.
func (p *Pipeline) generate(ctx context.Context, prefs model.UserPreferences, titles []string) (model.Recipe, error) {
	recipe, err := p.api.GenerateRecipe(ctx, prefs, titles)
	if err != nil {
		return model.Recipe{}, &api.OperationError{Op: "generate recipe", Err: err}
	}
	return recipe.WithPreferences(prefs), nil
}

// gated runs fn as the single in-flight operation of kind on recipeID.
// A caller asking for the same kind in the same epoch joins the running
// flight; anything else gets ErrBusy. fn runs detached from ctx cancellation
// so its completion is always applied; a caller whose ctx ends stops waiting
// and gets ctx.Err().
func (p *Pipeline) gated(ctx context.Context, recipeID, kind string, fn func(context.Context, uint64) (any, error)) (any, error) {
	if recipeID == "" {
		return nil, ErrRecipeNotFound
	}
	epoch := p.currentEpoch()
	key := strconv.FormatUint(epoch, 10) + "\x00" + kind + "\x00" + recipeID
	detached := context.WithoutCancel(ctx)

	p.gateMu.Lock()
	if running, ok := p.gate[recipeID]; ok && running != key {
		p.gateMu.Unlock()
		return nil, ErrBusy
	}
	p.gate[recipeID] = key
	ch := p.flights.DoChan(key, func() (any, error) {
		defer p.release(recipeID, key)
		return fn(detached, epoch)
	})
	p.gateMu.Unlock()

	select {
	case res := <-ch:
		if res.Shared {
			p.log.Debug("joined in-flight operation", "recipe_id", recipeID)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// release opens the gate for recipeID. Forgetting the key makes later
// callers start a new flight rather than join the finishing one.
func (p *Pipeline) release(recipeID, key string) {
	p.gateMu.Lock()
	defer p.gateMu.Unlock()

	delete(p.gate, recipeID)
	p.flights.Forget(key)
}

// mutate applies fn to the view state on the UI-state goroutine.
func (p *Pipeline) mutate(ctx context.Context, fn func()) {
	err := p.ui.Do(ctx, func() {
		p.view.Lock()
		defer p.view.Unlock()
		fn()
	})
	if err != nil {
		p.log.Warn("dropped view update", "error", err)
	}
}

func (p *Pipeline) currentEpoch() uint64 {
	p.view.RLock()
	defer p.view.RUnlock()
	return p.epoch
}

// mutateIn is mutate, dropped if a Reset happened since epoch was read.
func (p *Pipeline) mutateIn(ctx context.Context, epoch uint64, fn func()) {
	p.mutate(ctx, func() {
		if p.epoch != epoch {
			p.log.Debug("dropping completion from before reset")
			return
		}
		fn()
	})
}

// setOverlay must run under p.view.
func (p *Pipeline) setOverlay(recipeID string, update func(*Overlay)) {
	o := p.overlays[recipeID]
	update(&o)
	if o == (Overlay{}) {
		delete(p.overlays, recipeID)
		return
	}
	p.overlays[recipeID] = o
}

// stamp returns a copy of r whose attached preferences are exactly prefs.
func stamp(r model.Recipe, prefs *model.UserPreferences) model.Recipe {
	if prefs == nil {
		out := r.Clone()
		out.AttachedPreferences = nil
		return out
	}
	return r.WithPreferences(*prefs)
}

func indexOf(list []model.Recipe, recipeID string) int {
	for i, r := range list {
		if r.ID == recipeID {
			return i
		}
	}
	return -1
}

func removeRecipe(list []model.Recipe, recipeID string) []model.Recipe {
	i := indexOf(list, recipeID)
	if i < 0 {
		return list
	}
	out := make([]model.Recipe, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

func cloneAll(list []model.Recipe) []model.Recipe {
	out := make([]model.Recipe, len(list))
	for i, r := range list {
		out[i] = r.Clone()
	}
	return out
}

// Package prefsync keeps the user's preferences converged between the local
// cache and the backend. Loads favour the remote copy; saves go local first
// and are pushed to the remote on request.
package prefsync

import (
	"context"
	"errors"
	"sync"

	"github.com/flavourfinder/flavourfinder-go/internal/api"
	"github.com/flavourfinder/flavourfinder-go/internal/localstore"
	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/model"
	"github.com/flavourfinder/flavourfinder-go/internal/uistate"
)

// slotPreferences is the local slot holding the serialized preferences.
const slotPreferences = "userPreferences"

// Remote is the backend copy of the preferences.
type Remote interface {
	GetPreferences(ctx context.Context) (model.UserPreferences, error)
	UpdatePreferences(ctx context.Context, prefs model.UserPreferences) (model.UserPreferences, error)
}

// Synchronizer owns the authoritative in-memory preferences.
type Synchronizer struct {
	local  localstore.Store
	remote Remote
	ui     *uistate.Dispatcher
	log    *logger.Logger

	mu      sync.RWMutex
	current model.UserPreferences
	// epoch advances on every Reset; fetches started before it are dropped.
	epoch   uint64
	subs    map[int]chan model.UserPreferences
	nextSub int

	// persistMu serializes PersistRemote.
	persistMu sync.Mutex
}

// New creates a synchronizer holding the default preferences. ui must be
// started before any method that changes the value is called.
func New(local localstore.Store, remote Remote, ui *uistate.Dispatcher, log *logger.Logger) *Synchronizer {
	return &Synchronizer{
		local:   local,
		remote:  remote,
		ui:      ui,
		log:     log.With("component", "prefsync.Synchronizer"),
		current: model.DefaultPreferences(),
		subs:    make(map[int]chan model.UserPreferences),
	}
}

// Current returns the in-memory preferences.
func (s *Synchronizer) Current() model.UserPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LoadLocal reads the cached preferences, falling back to the defaults when
// nothing usable is cached.
func (s *Synchronizer) LoadLocal(ctx context.Context) error {
	prefs := model.DefaultPreferences()

	var cached model.UserPreferences
	err := localstore.GetJSON(ctx, s.local, slotPreferences, &cached)
	switch {
	case errors.Is(err, localstore.ErrSlotEmpty):
		s.log.Debug("no cached preferences, using defaults")
	case err != nil:
		s.log.Warn("unreadable cached preferences, using defaults", "error", err)
	case cached.Validate() != nil:
		s.log.Warn("cached preferences out of range, using defaults", "error", cached.Validate())
	default:
		prefs = cached
	}

	_, err = s.apply(ctx, prefs, false, nil)
	return err
}

// Refresh fetches the remote copy and, on success, replaces the in-memory
// and cached values with it. Failures are logged and the current value is
// kept.
func (s *Synchronizer) Refresh(ctx context.Context) {
	epoch := s.currentEpoch()
	remote, err := s.remote.GetPreferences(ctx)
	if err != nil {
		if errors.Is(err, api.ErrNotAuthenticated) {
			s.log.Debug("skipping preference refresh, not signed in")
		} else {
			s.log.Warn("failed to fetch remote preferences, keeping local value", "error", err)
		}
		return
	}

	applied, err := s.apply(ctx, remote, true, func() bool { return s.epoch == epoch })
	if err != nil {
		s.log.Warn("failed to apply remote preferences", "error", err)
	} else if !applied {
		s.log.Debug("dropping remote preferences fetched before reset")
	}
}

// Load applies the cached value immediately and reconciles with the remote
// in the background. The returned channel is closed once reconciliation has
// finished.
func (s *Synchronizer) Load(ctx context.Context) <-chan struct{} {
	if err := s.LoadLocal(ctx); err != nil {
		s.log.Warn("failed to apply cached preferences", "error", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Refresh(ctx)
	}()
	return done
}

// Update replaces the in-memory value and writes it to the local cache. It
// fails only when prefs is out of range.
func (s *Synchronizer) Update(ctx context.Context, prefs model.UserPreferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	_, err := s.apply(ctx, prefs, true, nil)
	return err
}

// PersistRemote pushes the current value to the backend. On success the
// value the backend stored replaces the in-memory and cached copies, unless
// the value was changed again while the request was in flight. On failure
// neither copy is touched and an *api.OperationError is returned.
func (s *Synchronizer) PersistRemote(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	pushed, epoch := s.current, s.epoch
	s.mu.RUnlock()

	stored, err := s.remote.UpdatePreferences(ctx, pushed)
	if err != nil {
		s.log.Warn("failed to save preferences", "error", err)
		return &api.OperationError{Op: "save preferences", Err: err}
	}

	if stored != pushed {
		s.log.Info("backend normalized preferences")
	}
	applied, err := s.apply(ctx, stored, true, func() bool {
		return s.epoch == epoch && s.current == pushed
	})
	if err != nil {
		return err
	}
	if !applied {
		s.log.Info("preferences changed while saving, keeping the newer local value")
	}
	return nil
}

// Reset returns to the defaults and forgets the cached value, typically
// because the account changed. Fetches and saves still in flight no longer
// apply their results.
func (s *Synchronizer) Reset(ctx context.Context) error {
	err := s.ui.Do(ctx, func() {
		if err := s.local.Delete(ctx, slotPreferences); err != nil {
			s.log.Warn("failed to remove cached preferences", "error", err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.epoch++
		s.install(model.DefaultPreferences())
	})
	if err != nil {
		return err
	}
	s.log.Info("preferences reset to defaults")
	return nil
}

func (s *Synchronizer) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Subscribe registers an observer of preference changes. A slow reader
// receives only the latest value.
func (s *Synchronizer) Subscribe() (<-chan model.UserPreferences, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan model.UserPreferences, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// apply installs prefs on the UI-state goroutine, writing them to the local
// slot first when cache is set. A non-nil guard runs on that goroutine and
// can veto the install. It reports whether prefs were installed.
func (s *Synchronizer) apply(ctx context.Context, prefs model.UserPreferences, cache bool, guard func() bool) (bool, error) {
	applied := false
	err := s.ui.Do(ctx, func() {
		// Writers only run on this goroutine, so guard may read without s.mu.
		if guard != nil && !guard() {
			return
		}
		if cache {
			s.writeLocal(ctx, prefs)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.install(prefs)
		applied = true
	})
	return applied, err
}

// install sets the value and notifies subscribers. Callers hold s.mu.
func (s *Synchronizer) install(prefs model.UserPreferences) {
	s.current = prefs
	for _, ch := range s.subs {
		select {
		case ch <- prefs:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		ch <- prefs
	}
}

func (s *Synchronizer) writeLocal(ctx context.Context, prefs model.UserPreferences) {
	if err := localstore.PutJSON(ctx, s.local, slotPreferences, prefs); err != nil {
		s.log.Warn("failed to cache preferences", "error", err)
	}
}

// Package app wires the client core together: local cache, session store,
// backend clients, preference synchronizer and recipe pipeline.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flavourfinder/flavourfinder-go/internal/api"
	"github.com/flavourfinder/flavourfinder-go/internal/config"
	"github.com/flavourfinder/flavourfinder-go/internal/localstore"
	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/pipeline"
	"github.com/flavourfinder/flavourfinder-go/internal/prefsync"
	"github.com/flavourfinder/flavourfinder-go/internal/session"
	"github.com/flavourfinder/flavourfinder-go/internal/uistate"
)

const defaultRefreshInterval = time.Minute

// App is one client process.
type App struct {
	UI          *uistate.Dispatcher
	Identity    *api.IdentityClient
	Session     *session.Store
	API         *api.Client
	Preferences *prefsync.Synchronizer
	Recipes     *pipeline.Pipeline
	Feed        *pipeline.Feed
	Saved       *pipeline.SavedList

	cfg        config.Client
	log        *logger.Logger
	closeLocal func() error

	// account is the user the view state and cached preferences belong to.
	accountMu sync.Mutex
	account   string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds the client. With an empty cfg.CachePath the cache lives in
// memory only.
func New(cfg config.Client, log *logger.Logger) (*App, error) {
	var (
		local      localstore.Store
		closeLocal = func() error { return nil }
	)
	if cfg.CachePath == "" {
		local = localstore.NewMemoryStore()
	} else {
		sqlite, err := localstore.NewSQLiteStore(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open local cache: %w", err)
		}
		local = sqlite
		closeLocal = sqlite.Close
	}

	opts := []api.Option{
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithLogger(log),
	}

	ui := uistate.NewDispatcher(log)
	identity := api.NewIdentityClient(opts...)
	sessions := session.New(identity, local, log)
	client := api.NewClient(sessions, opts...)
	recipes := pipeline.New(client, ui, log)

	return &App{
		UI:          ui,
		Identity:    identity,
		Session:     sessions,
		API:         client,
		Preferences: prefsync.New(local, client, ui, log),
		Recipes:     recipes,
		Feed:        recipes.Feed(),
		Saved:       recipes.SavedList(),
		cfg:         cfg,
		log:         log.With("component", "app"),
		closeLocal:  closeLocal,
	}, nil
}

// Start brings the client up: it starts the UI-state goroutine and the
// identity feed, restores any previous session and, when that succeeds,
// loads preferences and the saved list. Start returns the state the
// session was restored to.
func (a *App) Start(ctx context.Context) (session.State, error) {
	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.UI.Start(runCtx)

	interval := a.cfg.RefreshInterval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	feed := a.Identity.Watch(runCtx, a.Session.Current, interval)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.Session.Run(runCtx, feed)
	}()

	changes, unsubscribe := a.Session.Subscribe()
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer unsubscribe()
		a.followAccount(runCtx, changes)
	}()

	state := a.Session.Restore(ctx)
	a.log.Info("session restored", "state", state.String())
	a.claimAccount(ctx)

	if err := a.Preferences.LoadLocal(ctx); err != nil {
		return state, fmt.Errorf("load cached preferences: %w", err)
	}

	if state == session.StateAuthenticated {
		if err := a.sync(ctx); err != nil {
			a.log.Warn("initial sync incomplete", "error", err)
		}
	}
	return state, nil
}

// SignUp creates an account and, when it comes with a session, syncs the
// new user's data.
func (a *App) SignUp(ctx context.Context, email, password string) error {
	if err := a.Session.SignUp(ctx, email, password); err != nil {
		return err
	}
	a.claimAccount(ctx)
	if a.Session.State() == session.StateAuthenticated {
		a.syncAfterSignIn(ctx)
	}
	return nil
}

// SignIn signs in and syncs preferences and the saved list.
func (a *App) SignIn(ctx context.Context, email, password string) error {
	if err := a.Session.SignIn(ctx, email, password); err != nil {
		return err
	}
	a.claimAccount(ctx)
	a.syncAfterSignIn(ctx)
	return nil
}

// SignOut ends the session and drops the account's recipes and
// preferences. Local state is cleared even if the backend cannot be reached.
func (a *App) SignOut(ctx context.Context) {
	a.Session.SignOut(ctx)
	a.claimAccount(ctx)
}

// followAccount claims the view state for whoever the session belongs to
// after every change, covering sign-outs driven by the identity provider.
func (a *App) followAccount(ctx context.Context, changes <-chan session.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			a.claimAccount(ctx)
		}
	}
}

// claimAccount resets the pipeline and preferences when the signed-in user
// differs from the one they were loaded for. Going from signed out to signed
// in keeps what was there, so edits made before signing in carry over. The
// session is read under accountMu, so a stale notification cannot undo a
// newer claim.
func (a *App) claimAccount(ctx context.Context) {
	a.accountMu.Lock()
	defer a.accountMu.Unlock()

	userID := ""
	if sess, ok := a.Session.Current(); ok {
		userID = sess.User.ID
	}
	if userID == a.account {
		return
	}
	if a.account != "" {
		a.log.Info("account changed, resetting view state", "user_id", userID)
		if err := a.Recipes.Reset(ctx); err != nil {
			a.log.Warn("failed to reset recipes", "error", err)
		}
		if err := a.Preferences.Reset(ctx); err != nil {
			a.log.Warn("failed to reset preferences", "error", err)
		}
	}
	a.account = userID
}

func (a *App) syncAfterSignIn(ctx context.Context) {
	if err := a.sync(ctx); err != nil {
		a.log.Warn("sync after sign-in incomplete", "error", err)
	}
}

// sync reconciles preferences and refreshes the saved list concurrently.
func (a *App) sync(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		a.Preferences.Refresh(ctx)
		return nil
	})
	g.Go(func() error {
		return a.Saved.Refresh(ctx)
	})
	return g.Wait()
}

// Close stops background work and releases the local cache.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	a.UI.Stop()
	return a.closeLocal()
}

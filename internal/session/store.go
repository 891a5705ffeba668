// Package session owns the process's authentication state. Every change to
// the canonical session, whether from an explicit sign-in or from the
// identity provider's feed, goes through one apply path.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/flavourfinder/flavourfinder-go/internal/api"
	"github.com/flavourfinder/flavourfinder-go/internal/crypto"
	"github.com/flavourfinder/flavourfinder-go/internal/localstore"
	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

// slotSession is the local slot holding the persisted session handle.
const slotSession = "session"

// State is the authentication state of the process.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "invalid"
	}
}

// Provider is the identity provider the store signs in against.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*model.Session, error)
	SignIn(ctx context.Context, email, password string) (model.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (model.Session, error)
}

// Change is delivered to subscribers after every transition.
type Change struct {
	State State
	// UserID is empty unless State is StateAuthenticated.
	UserID string
}

// Store is the single source of truth for the current session.
type Store struct {
	provider Provider
	local    localstore.Store
	log      *logger.Logger
	now      func() time.Time

	mu      sync.RWMutex
	state   State
	session *model.Session
	subs    map[int]chan Change
	nextSub int
}

// New creates a store in StateUnknown. Call Restore to leave it.
func New(provider Provider, local localstore.Store, log *logger.Logger) *Store {
	return &Store{
		provider: provider,
		local:    local,
		log:      log.With("component", "session.Store"),
		now:      time.Now,
		state:    StateUnknown,
		subs:     make(map[int]chan Change),
	}
}

// Restore loads the persisted session and validates it with the provider.
// A missing, unreadable, expired or rejected handle ends in
// StateUnauthenticated and is discarded. When the provider cannot be reached
// the unexpired handle is restored unconfirmed. A sign-in that completes
// while Restore is running takes precedence.
func (s *Store) Restore(ctx context.Context) State {
	fromUnknown := func(state State, _ *model.Session) bool { return state == StateUnknown }

	var saved model.Session
	if err := localstore.GetJSON(ctx, s.local, slotSession, &saved); err != nil {
		if !errors.Is(err, localstore.ErrSlotEmpty) {
			s.log.Warn("discarding unreadable session handle", "error", err)
		}
		s.apply(ctx, nil, fromUnknown)
		return s.State()
	}

	if s.expired(saved) {
		s.log.Info("persisted session expired")
		s.apply(ctx, nil, fromUnknown)
		return s.State()
	}

	fresh, err := s.provider.CurrentSession(ctx, saved.AccessToken)
	switch {
	case err == nil:
		s.apply(ctx, &fresh, fromUnknown)
	case api.IsUnauthorized(err):
		s.log.Info("persisted session rejected", "error", err)
		s.apply(ctx, nil, fromUnknown)
	default:
		// Unexpired and not rejected: keep it. The identity feed signs out
		// later if the provider turns it down.
		s.log.Warn("could not confirm persisted session, restoring it as is", "error", err)
		s.apply(ctx, &saved, fromUnknown)
	}
	return s.State()
}

// expired checks both the stored expiry and, when the token is a JWT we can
// read, its exp claim.
func (s *Store) expired(sess model.Session) bool {
	now := s.now()
	if sess.AccessToken == "" || sess.Expired(now) {
		return true
	}
	claims, err := crypto.PeekClaims(sess.AccessToken)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// SignUp creates an account. When the provider returns a session the store
// becomes authenticated; when confirmation is required it stays signed out.
func (s *Store) SignUp(ctx context.Context, email, password string) error {
	sess, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	if sess == nil {
		s.log.Info("sign-up requires confirmation")
		s.apply(ctx, nil, func(state State, _ *model.Session) bool { return state != StateAuthenticated })
		return nil
	}
	s.apply(ctx, sess, always)
	return nil
}

// SignIn authenticates and stores the returned session. On failure the state
// is left unchanged.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s.apply(ctx, &sess, always)
	return nil
}

// SignOut revokes the session remotely if possible and always clears it
// locally.
func (s *Store) SignOut(ctx context.Context) {
	if token, ok := s.CurrentToken(); ok {
		if err := s.provider.SignOut(ctx, token); err != nil {
			s.log.Warn("remote sign-out failed, clearing local session anyway", "error", err)
		}
	}
	s.apply(ctx, nil, always)
}

// CurrentToken returns the bearer credential while authenticated.
func (s *Store) CurrentToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateAuthenticated || s.session == nil {
		return "", false
	}
	return s.session.AccessToken, true
}

// Current returns a copy of the session while authenticated.
func (s *Store) Current() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateAuthenticated || s.session == nil {
		return model.Session{}, false
	}
	return *s.session, true
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers an observer. The channel holds at most one pending
// change; a slow reader skips intermediate changes but always receives the
// latest. Call the returned function to unsubscribe.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Change, 1)
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

// Run applies identity-provider events until ctx is done or feed closes.
func (s *Store) Run(ctx context.Context, feed <-chan model.AuthEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-feed:
			if !ok {
				return
			}
			s.handleEvent(ctx, ev)
		}
	}
}

func (s *Store) handleEvent(ctx context.Context, ev model.AuthEvent) {
	switch ev.Kind {
	case model.AuthSignedIn:
		if ev.Session == nil {
			return
		}
		s.apply(ctx, ev.Session, always)

	case model.AuthSignedOut:
		// Ignore the end of a session we have already replaced.
		applied := s.apply(ctx, nil, func(state State, cur *model.Session) bool {
			if state != StateAuthenticated {
				return false
			}
			return ev.Session == nil || cur.AccessToken == ev.Session.AccessToken
		})
		if applied {
			s.log.Info("session ended by identity provider")
		}

	case model.AuthTokenRefreshed:
		if ev.Session == nil {
			return
		}
		s.apply(ctx, ev.Session, func(state State, cur *model.Session) bool {
			return state == StateAuthenticated && cur.User.ID == ev.Session.User.ID
		})

	default:
		s.log.Warn("ignoring unknown auth event", "kind", ev.Kind)
	}
}

func always(State, *model.Session) bool { return true }

// apply installs next (nil signs out) if allow accepts the current state,
// persists the handle and notifies subscribers. It reports whether the
// transition happened.
func (s *Store) apply(ctx context.Context, next *model.Session, allow func(State, *model.Session) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !allow(s.state, s.session) {
		return false
	}

	change := Change{State: StateUnauthenticated}
	if next != nil {
		cp := *next
		s.session = &cp
		s.state = StateAuthenticated
		change = Change{State: StateAuthenticated, UserID: cp.User.ID}
		if err := localstore.PutJSON(ctx, s.local, slotSession, cp); err != nil {
			s.log.Warn("failed to persist session", "error", err)
		}
	} else {
		s.session = nil
		s.state = StateUnauthenticated
		if err := s.local.Delete(ctx, slotSession); err != nil {
			s.log.Warn("failed to remove persisted session", "error", err)
		}
	}

	s.log.Debug("session transition", "state", change.State.String(), "user_id", change.UserID)
	for _, ch := range s.subs {
		publishLatest(ch, change)
	}
	return true
}

// publishLatest replaces any pending change with c. Callers hold s.mu, so
// this is the only sender.
func publishLatest(ch chan Change, c Change) {
	select {
	case ch <- c:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- c
}

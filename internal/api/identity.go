package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flavourfinder/flavourfinder-go/internal/model"
)

// refreshWindow is how close to expiry a token must be before Watch
// exchanges it for a fresh one.
const refreshWindow = 5 * time.Minute

// IdentityClient talks to the identity endpoints: account creation, sign-in,
// sign-out and session validation.
type IdentityClient struct {
	t   *transport
	now func() time.Time
}

// NewIdentityClient creates a new identity provider client.
func NewIdentityClient(opts ...Option) *IdentityClient {
	return &IdentityClient{t: newTransport("api.IdentityClient", opts), now: time.Now}
}

// SignUp creates an account. The returned session is nil when the account
// must be confirmed before it can sign in.
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (*model.Session, error) {
	var resp model.SignUpResponse
	creds := model.Credentials{Email: email, Password: password}
	if err := c.t.doRequest(ctx, http.MethodPost, "/auth/signup", "", creds, &resp); err != nil {
		return nil, err
	}
	if resp.Session == nil {
		return nil, nil
	}
	if err := validateSession(*resp.Session); err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// SignIn authenticates with email and password.
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (model.Session, error) {
	creds := model.Credentials{Email: email, Password: password}
	return c.sessionCall(ctx, http.MethodPost, "/auth/signin", "", creds)
}

// SignOut revokes token on the server.
func (c *IdentityClient) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	return c.t.doRequest(ctx, http.MethodPost, "/auth/signout", token, nil, nil)
}

// CurrentSession validates token and returns the session it belongs to.
func (c *IdentityClient) CurrentSession(ctx context.Context, token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, ErrNotAuthenticated
	}
	return c.sessionCall(ctx, http.MethodGet, "/auth/session", token, nil)
}

// Refresh exchanges token for a new one. The old token is revoked.
func (c *IdentityClient) Refresh(ctx context.Context, token string) (model.Session, error) {
	if token == "" {
		return model.Session{}, ErrNotAuthenticated
	}
	return c.sessionCall(ctx, http.MethodPost, "/auth/refresh", token, nil)
}

func (c *IdentityClient) sessionCall(ctx context.Context, method, path, token string, body any) (model.Session, error) {
	var session model.Session
	if err := c.t.doRequest(ctx, method, path, token, body, &session); err != nil {
		return model.Session{}, err
	}
	if err := validateSession(session); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// Watch polls the identity provider every interval on behalf of the session
// returned by current. It emits AuthTokenRefreshed after exchanging a token
// close to expiry and AuthSignedOut when the server no longer accepts the
// token. Transient failures are logged and retried on the next tick. The
// channel is closed when ctx is done.
func (c *IdentityClient) Watch(ctx context.Context, current func() (model.Session, bool), interval time.Duration) <-chan model.AuthEvent {
	events := make(chan model.AuthEvent, 1)

	go func() {
		defer close(events)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			ev, ok := c.check(ctx, current)
			if !ok {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events
}

func (c *IdentityClient) check(ctx context.Context, current func() (model.Session, bool)) (model.AuthEvent, bool) {
	session, ok := current()
	if !ok {
		return model.AuthEvent{}, false
	}
	ended := model.AuthEvent{Kind: model.AuthSignedOut, Session: &session}

	now := c.now()
	if session.Expired(now) {
		return ended, true
	}

	if !session.ExpiresAt.IsZero() && session.ExpiresAt.Sub(now) < refreshWindow {
		fresh, err := c.Refresh(ctx, session.AccessToken)
		switch {
		case err == nil:
			return model.AuthEvent{Kind: model.AuthTokenRefreshed, Session: &fresh}, true
		case IsUnauthorized(err):
			return ended, true
		default:
			c.t.log.Warn("token refresh failed", "error", err)
			return model.AuthEvent{}, false
		}
	}

	_, err := c.CurrentSession(ctx, session.AccessToken)
	switch {
	case err == nil:
		return model.AuthEvent{}, false
	case IsUnauthorized(err):
		return ended, true
	default:
		c.t.log.Debug("session check failed", "error", err)
		return model.AuthEvent{}, false
	}
}

func validateSession(s model.Session) error {
	if s.AccessToken == "" {
		return decodingError(errors.New("session has no access token"))
	}
	if s.User.ID == "" {
		return decodingError(errors.New("session has no user id"))
	}
	return nil
}

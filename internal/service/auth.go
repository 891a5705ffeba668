package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/flavourfinder/flavourfinder-go/internal/crypto"
	"github.com/flavourfinder/flavourfinder-go/internal/logger"
	"github.com/flavourfinder/flavourfinder-go/internal/model"
	"github.com/flavourfinder/flavourfinder-go/internal/repository"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("email is not valid")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("email already taken")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUnknownUser        = errors.New("user no longer exists")
)

// AuthService implements the identity provider: accounts, sessions and
// token revocation.
type AuthService struct {
	users     UserStore
	revoked   RevocationStore
	jwtSecret string
	jwtExpiry time.Duration
	log       *logger.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, revoked RevocationStore, secret string, expiry time.Duration, log *logger.Logger) *AuthService {
	return &AuthService{
		users:     users,
		revoked:   revoked,
		jwtSecret: secret,
		jwtExpiry: expiry,
		log:       log.With("service", "AuthService"),
	}
}

// SignUp creates an account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, creds model.Credentials) (model.SignUpResponse, error) {
	email, err := normalizeEmail(creds.Email)
	if err != nil {
		return model.SignUpResponse{}, err
	}
	if creds.Password == "" {
		return model.SignUpResponse{}, ErrPasswordRequired
	}
	if len(creds.Password) < minPasswordLength {
		return model.SignUpResponse{}, ErrPasswordTooShort
	}

	hash, err := crypto.HashPassword(creds.Password)
	if err != nil {
		return model.SignUpResponse{}, err
	}

	user := &model.User{Email: email, AuthHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.SignUpResponse{}, ErrEmailTaken
		}
		return model.SignUpResponse{}, err
	}

	session, err := s.issue(user.ID, user.Email)
	if err != nil {
		return model.SignUpResponse{}, err
	}

	s.log.Info("account created", "user_id", user.ID)
	return model.SignUpResponse{User: session.User, Session: &session}, nil
}

// SignIn authenticates credentials and returns a new session.
func (s *AuthService) SignIn(ctx context.Context, creds model.Credentials) (model.Session, error) {
	email, err := normalizeEmail(creds.Email)
	if err != nil {
		return model.Session{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Session{}, ErrInvalidCredentials
		}
		return model.Session{}, err
	}

	match, err := crypto.VerifyPassword(creds.Password, user.AuthHash)
	if err != nil {
		return model.Session{}, err
	}
	if !match {
		return model.Session{}, ErrInvalidCredentials
	}

	return s.issue(user.ID, user.Email)
}

// Authenticate validates a bearer token and checks it has not been revoked.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*crypto.Claims, error) {
	claims, err := crypto.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// SignOut revokes the token identified by claims.
func (s *AuthService) SignOut(ctx context.Context, claims *crypto.Claims) error {
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	s.log.Info("signed out", "user_id", claims.UserID())
	return nil
}

// CurrentSession describes the session that token belongs to.
func (s *AuthService) CurrentSession(ctx context.Context, token string, claims *crypto.Claims) (model.Session, error) {
	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Session{}, ErrUnknownUser
		}
		return model.Session{}, err
	}

	return model.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        model.Identity{ID: user.ID, Email: user.Email},
	}, nil
}

// Refresh exchanges a valid token for a fresh one and revokes the old token.
func (s *AuthService) Refresh(ctx context.Context, claims *crypto.Claims) (model.Session, error) {
	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Session{}, ErrUnknownUser
		}
		return model.Session{}, err
	}

	session, err := s.issue(user.ID, user.Email)
	if err != nil {
		return model.Session{}, err
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.log.Warn("revoking refreshed token failed", "user_id", user.ID, "error", err)
	}
	return session, nil
}

func (s *AuthService) issue(userID, email string) (model.Session, error) {
	issued, err := crypto.GenerateToken(userID, email, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{
		AccessToken: issued.Token,
		TokenType:   "bearer",
		ExpiresAt:   issued.Claims.ExpiresAt.Time,
		User:        model.Identity{ID: userID, Email: email},
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmailRequired
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return "", ErrInvalidEmail
	}
	return email, nil
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/flavourfinder/flavourfinder-go/internal/crypto"
	"github.com/flavourfinder/flavourfinder-go/internal/logger"
)

type fakeVerifier struct {
	claims *crypto.Claims
	err    error
	got    string
}

func (f *fakeVerifier) Authenticate(ctx context.Context, token string) (*crypto.Claims, error) {
	f.got = token
	return f.claims, f.err
}

func echoUserID(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromContext(r.Context())
	token, _ := TokenFromContext(r.Context())
	w.Write([]byte(id + "|" + token))
}

func TestJWTAuth(t *testing.T) {
	claims := &crypto.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ID: "jti-1"}}

	tests := []struct {
		name       string
		header     string
		verifier   *fakeVerifier
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", &fakeVerifier{claims: claims}, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", &fakeVerifier{claims: claims}, http.StatusUnauthorized, ""},
		{"rejected token", "Bearer bad", &fakeVerifier{err: errors.New("revoked")}, http.StatusUnauthorized, ""},
		{"valid token", "Bearer good", &fakeVerifier{claims: claims}, http.StatusOK, "user-1|good"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := JWTAuth(tt.verifier)(http.HandlerFunc(echoUserID))
			req := httptest.NewRequest(http.MethodGet, "/recipes/saved", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestUserIDFromContextEmpty(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(1, 2, logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterEvict(t *testing.T) {
	rl := newIPRateLimiter(1, 1)
	rl.getLimiter("10.0.0.1")

	rl.evict(time.Now())
	assert.Len(t, rl.visitors, 1)

	rl.evict(time.Now().Add(visitorTTL + time.Second))
	assert.Empty(t, rl.visitors)
}

func TestLoggerPassesThrough(t *testing.T) {
	h := Logger(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "6f0c3b8e-3f7a-4a53-8c2e-0d1b9a7e5c11"

func TestGenerateToken(t *testing.T) {
	issued, err := GenerateToken(testUserID, "cook@example.com", "test-secret", time.Hour)
	require.NoError(t, err)

	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, testUserID, issued.Claims.UserID())
	assert.NotEmpty(t, issued.Claims.ID)
}

func TestGenerateTokenUniqueIDs(t *testing.T) {
	a, err := GenerateToken(testUserID, "", "test-secret", time.Hour)
	require.NoError(t, err)
	b, err := GenerateToken(testUserID, "", "test-secret", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a.Claims.ID, b.Claims.ID)
}

func TestValidateTokenValid(t *testing.T) {
	issued, err := GenerateToken(testUserID, "cook@example.com", "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(issued.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID())
	assert.Equal(t, "cook@example.com", claims.Email)
	assert.Equal(t, issued.Claims.ID, claims.ID)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("not-a-valid-token", "test-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issued, err := GenerateToken(testUserID, "", "correct-secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(issued.Token, "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	issued, err := GenerateToken(testUserID, "", "test-secret", time.Millisecond)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = ValidateToken(issued.Token, "test-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWrongAudience(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   testUserID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{"anon"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateToken(signed, "test-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenMissingSubject(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateToken(signed, "test-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPeekClaimsIgnoresSignature(t *testing.T) {
	issued, err := GenerateToken(testUserID, "", "server-only-secret", time.Hour)
	require.NoError(t, err)

	claims, err := PeekClaims(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.Subject)
	assert.WithinDuration(t, issued.Claims.ExpiresAt.Time, claims.ExpiresAt.Time, time.Second)

	_, err = PeekClaims("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(ttl time.Duration) *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", SessionTTL: ttl, TokenIssuer: "wizard-api"})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := newTestService(time.Minute)
	id := NewSessionID()

	tok, err := svc.GenerateSessionToken(id, "edit")
	require.NoError(t, err)
	assert.Equal(t, 60, tok.ExpiresIn)
	assert.Equal(t, id, tok.SessionID)

	claims, err := svc.ValidateAndExtractClaims(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.SessionID)
	assert.Equal(t, "edit", claims.Mode)
	assert.Equal(t, "wizard-api", claims.Issuer)
}

func TestValidateTokenFailures(t *testing.T) {
	svc := newTestService(time.Minute)

	t.Run("empty", func(t *testing.T) {
		_, err := svc.ValidateAndExtractClaims("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "other", SessionTTL: time.Minute})
		tok, err := other.GenerateSessionToken(NewSessionID(), "create")
		require.NoError(t, err)
		_, err = svc.ValidateAndExtractClaims(tok.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		claims := &Claims{
			SessionID: "s",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "s",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = svc.ValidateAndExtractClaims(signed)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("missing session", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = svc.ValidateAndExtractClaims(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	tok, err = ExtractBearerToken("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestGenerateRejectsEmptySession(t *testing.T) {
	_, err := newTestService(0).GenerateSessionToken("", "create")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

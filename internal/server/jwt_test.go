package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/commuter-advisor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:          testSecret,
		ExpirationHours: expirationHours,
	})
}

func TestJWTService_GenerateToken(t *testing.T) {
	service := setupTestJWTService(t, 24)
	sessionID := uuid.New()

	token, err := service.GenerateToken(sessionID)
	require.NoError(t, err)

	// header.payload.signature
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, sessionID, claims.GetSessionID())
	assert.Equal(t, sessionID.String(), claims.Subject)
}

func TestJWTService_DifferentSessionsDifferentTokens(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token1, err := service.GenerateToken(uuid.New())
	require.NoError(t, err)
	token2, err := service.GenerateToken(uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2)
}

func TestJWTService_ValidateToken_InvalidSignature(t *testing.T) {
	issuer := setupTestJWTService(t, 24)
	other := NewJWTService(&config.JWTConfig{Secret: "a-different-secret", ExpirationHours: 24})

	token, err := issuer.GenerateToken(uuid.New())
	require.NoError(t, err)

	claims, err := other.ValidateToken(token)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_ValidateToken_Malformed(t *testing.T) {
	service := setupTestJWTService(t, 24)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		claims, err := service.ValidateToken(token)
		assert.Error(t, err, "token %q", token)
		assert.Nil(t, claims)
	}
}

func TestJWTService_TokenExpiration(t *testing.T) {
	service := setupTestJWTService(t, 1)
	now := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	token, err := service.GenerateToken(uuid.New())
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = service.ValidateToken(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_RejectsOtherSigningMethod(t *testing.T) {
	service := setupTestJWTService(t, 24)

	claims := &Claims{SessionID: uuid.New()}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateToken(signed)
	assert.Error(t, err)
}

func TestJWTService_RejectsTokenWithoutSession(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = service.ValidateToken(signed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session")
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, 24)
	sessionID := uuid.New()

	token, err := service.GenerateToken(sessionID)
	require.NoError(t, err)

	got, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got.GetSessionID())

	_, err = service.AsTokenValidator().ValidateToken("garbage")
	assert.Error(t, err)
}

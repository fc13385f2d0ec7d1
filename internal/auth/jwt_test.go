package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager(t *testing.T, secret string) *JWTManager {
	t.Helper()
	manager, err := NewJWTManager(secret)
	require.NoError(t, err)
	return manager
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestGenerateAndValidate(t *testing.T) {
	manager := newTestJWTManager(t, "test-secret")

	token, err := manager.GenerateAccessJWT("alice@example.com", DefaultAccessTokenDuration)
	require.NoError(t, err)

	subject, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestGenerateAccessJWT_ClaimsShape(t *testing.T) {
	manager := newTestJWTManager(t, "test-secret")
	issuedAt := time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issuedAt }

	token, err := manager.GenerateAccessJWT("alice@example.com", 30*time.Minute)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.True(t, issuedAt.Add(30*time.Minute).Equal(claims.ExpiresAt.Time))
	assert.True(t, issuedAt.Equal(claims.IssuedAt.Time))
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateAccessJWT_RejectsNonPositiveDuration(t *testing.T) {
	manager := newTestJWTManager(t, "test-secret")

	_, err := manager.GenerateAccessJWT("alice@example.com", 0)
	assert.ErrorIs(t, err, ErrInvalidTokenDuration)

	_, err = manager.GenerateAccessJWT("alice@example.com", -time.Minute)
	assert.ErrorIs(t, err, ErrInvalidTokenDuration)

	_, err = manager.GenerateAccessJWT("", time.Minute)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	manager := newTestJWTManager(t, "test-secret")
	start := time.Now()
	manager.now = func() time.Time { return start }

	token, err := manager.GenerateAccessJWT("alice@example.com", 30*time.Minute)
	require.NoError(t, err)

	manager.now = func() time.Time { return start.Add(29 * time.Minute) }
	_, err = manager.ValidateAccessToken(token)
	assert.NoError(t, err)

	manager.now = func() time.Time { return start.Add(31 * time.Minute) }
	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestValidateAccessToken_DifferentSecret(t *testing.T) {
	issuer := newTestJWTManager(t, "secret-a")
	verifier := newTestJWTManager(t, "secret-b")

	token, err := issuer.GenerateAccessJWT("alice@example.com", time.Minute)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestValidateAccessToken_Malformed(t *testing.T) {
	manager := newTestJWTManager(t, "test-secret")

	for _, token := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidJWTToken, "token %q", token)
	}
}

func TestValidateAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	manager := newTestJWTManager(t, "test-secret")
	claims := jwt.RegisteredClaims{
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = manager.ValidateAccessToken(hs512)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = manager.ValidateAccessToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestValidateAccessToken_RequiresSubjectAndExpiry(t *testing.T) {
	manager := newTestJWTManager(t, "test-secret")
	secret := []byte("test-secret")

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = manager.ValidateAccessToken(noSubject)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice@example.com",
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = manager.ValidateAccessToken(noExpiry)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

package services_test

import (
	"strings"
	"testing"
	"time"

	"bookshelf/internal/config"
	"bookshelf/internal/models"
	"bookshelf/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "test_session_secret_0123456789abcdef"

var alice = models.Identity{ID: "user-123", Email: "alice@example.com", Name: "Alice", Image: "https://img/a.png"}

func signClaims(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestSessionManager_RoundTrip(t *testing.T) {
	sessions := services.NewSessionManager(config.Session{Secret: testSessionSecret})

	token, expiresAt, err := sessions.Issue(alice)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), expiresAt, time.Minute)

	identity, ok := sessions.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, alice, identity)
}

func TestSessionManager_ClaimsAreSigned(t *testing.T) {
	sessions := services.NewSessionManager(config.Session{Secret: testSessionSecret})
	token, _, err := sessions.Issue(alice)
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSessionSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "HS256", parsed.Header["alg"])
	assert.Equal(t, alice.ID, claims["sub"])
	assert.Equal(t, alice.Email, claims["email"])
	assert.NotEmpty(t, claims["jti"])

	iat := int64(claims["iat"].(float64))
	exp := int64(claims["exp"].(float64))
	assert.Equal(t, int64(services.SessionTTL/time.Second), exp-iat)
}

func TestSessionManager_Resolve_Rejects(t *testing.T) {
	sessions := services.NewSessionManager(config.Session{Secret: testSessionSecret})
	valid, _, err := sessions.Issue(alice)
	require.NoError(t, err)

	now := time.Now()
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":   alice.ID,
			"email": alice.Email,
			"iat":   now.Unix(),
			"exp":   now.Add(time.Hour).Unix(),
		}
	}

	expired := base()
	expired["iat"] = now.Add(-31 * 24 * time.Hour).Unix()
	expired["exp"] = now.Add(-24 * time.Hour).Unix()

	noExp := base()
	delete(noExp, "exp")

	noSubject := base()
	delete(noSubject, "sub")

	parts := strings.Split(valid, ".")
	tamperedClaims := signClaims(t, jwt.SigningMethodHS256, []byte(testSessionSecret), jwt.MapClaims{"sub": "someone-else"})
	forged := parts[0] + "." + strings.Split(tamperedClaims, ".")[1] + "." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "invalid.token.string"},
		{"wrong secret", signClaims(t, jwt.SigningMethodHS256, []byte("another-secret"), base())},
		{"expired", signClaims(t, jwt.SigningMethodHS256, []byte(testSessionSecret), expired)},
		{"missing exp", signClaims(t, jwt.SigningMethodHS256, []byte(testSessionSecret), noExp)},
		{"missing subject", signClaims(t, jwt.SigningMethodHS256, []byte(testSessionSecret), noSubject)},
		{"alg none", signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, base())},
		{"claims swapped under old signature", forged},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			identity, ok := sessions.Resolve(tc.token)
			assert.False(t, ok)
			assert.True(t, identity.IsAnonymous())
		})
	}
}

func TestSessionManager_Issue_RequiresIdentity(t *testing.T) {
	sessions := services.NewSessionManager(config.Session{Secret: testSessionSecret})
	_, _, err := sessions.Issue(models.Identity{Email: "x@y.z"})
	assert.Error(t, err)
}

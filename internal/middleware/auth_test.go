package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthApp(auth *AuthMiddleware) *fiber.App {
	app := fiber.New()
	app.Get("/me", auth.Authenticate(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userId": GetUserID(c), "email": GetUserEmail(c)})
	})
	return app
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	auth := NewAuthMiddleware(testSecret, 1)
	token, err := auth.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := newAuthApp(auth).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestAuthenticateRejects(t *testing.T) {
	auth := NewAuthMiddleware(testSecret, 1)
	other, err := NewAuthMiddleware("other-secret", 1).GenerateToken("user-1", "")
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"no token":     "Bearer",
		"garbage":      "Bearer not-a-jwt",
		"wrong secret": "Bearer " + other,
		"expired":      "Bearer " + expiredToken,
	}

	app := newAuthApp(auth)
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestGenerateTokenWithoutExpiry(t *testing.T) {
	auth := NewAuthMiddleware(testSecret, 0)
	token, err := auth.GenerateToken("user-2", "")
	require.NoError(t, err)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func newTestJWKS(t *testing.T) (*rsa.PrivateKey, keyfunc.Keyfunc) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	set := fmt.Sprintf(`{"keys":[{"kty":"RSA","kid":"test-key","alg":"RS256","use":"sig","n":%q,"e":%q}]}`,
		base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	)
	k, err := keyfunc.NewJWKSetJSON(json.RawMessage(set))
	require.NoError(t, err)
	return key, k
}

func signRS256(t *testing.T, key *rsa.PrivateKey, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestParseTokenWithJWKS(t *testing.T) {
	key, k := newTestJWKS(t)
	auth := NewAuthMiddleware(testSecret, 1)

	valid := signRS256(t, key, jwt.RegisteredClaims{
		Subject:   "idp-user",
		Issuer:    "https://id.example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	_, err := auth.ParseToken(valid)
	assert.Error(t, err, "asymmetric tokens need a JWKS")

	auth.UseJWKS(k, "https://id.example.com")
	claims, err := auth.ParseToken(valid)
	require.NoError(t, err)
	assert.Equal(t, "idp-user", claims.UserID)

	wrongIssuer := signRS256(t, key, jwt.RegisteredClaims{
		Subject:   "idp-user",
		Issuer:    "https://other.example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	_, err = auth.ParseToken(wrongIssuer)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	noExpiry := signRS256(t, key, jwt.RegisteredClaims{
		Subject: "idp-user",
		Issuer:  "https://id.example.com",
	})
	_, err = auth.ParseToken(noExpiry)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)

	// HMAC tokens keep working alongside the JWKS
	hmacToken, err := auth.GenerateToken("local-user", "")
	require.NoError(t, err)
	claims, err = auth.ParseToken(hmacToken)
	require.NoError(t, err)
	assert.Equal(t, "local-user", claims.UserID)
}

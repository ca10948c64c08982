package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/makeasinger/scales/pkg/response"
)

const tokenIssuer = "scales-api"

type AuthMiddleware struct {
	jwtSecret  string
	expiration time.Duration

	// optional identity-provider keys for RS/ES tokens
	jwks       keyfunc.Keyfunc
	jwksIssuer string
}

type UserClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// NewAuthMiddleware validates HS256 tokens signed with jwtSecret. Tokens it
// issues expire after expirationHours; zero disables expiry.
func NewAuthMiddleware(jwtSecret string, expirationHours int) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:  jwtSecret,
		expiration: time.Duration(expirationHours) * time.Hour,
	}
}

// NewJWKS fetches signing keys from a JWKS endpoint and keeps them refreshed
func NewJWKS(ctx context.Context, jwksURL string) (keyfunc.Keyfunc, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS keyfunc: %w", err)
	}
	return k, nil
}

// UseJWKS also accepts asymmetric tokens verified against k. When issuer is
// set those tokens must carry it.
func (m *AuthMiddleware) UseJWKS(k keyfunc.Keyfunc, issuer string) {
	m.jwks = k
	m.jwksIssuer = issuer
}

// Authenticate validates JWT token from Authorization header
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		claims, err := m.ParseToken(parts[1])
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		c.Locals("userId", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// ParseToken verifies a token and returns its claims
func (m *AuthMiddleware) ParseToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, m.keyFor)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	if _, hmac := token.Method.(*jwt.SigningMethodHMAC); !hmac {
		if m.jwksIssuer != "" && claims.Issuer != m.jwksIssuer {
			return nil, jwt.ErrTokenInvalidIssuer
		}
		if claims.ExpiresAt == nil {
			return nil, jwt.ErrTokenRequiredClaimMissing
		}
	}

	// identity providers put the user in sub
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

func (m *AuthMiddleware) keyFor(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
		return []byte(m.jwtSecret), nil
	}
	if m.jwks != nil {
		return m.jwks.Keyfunc(token)
	}
	return nil, jwt.ErrSignatureInvalid
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals("userId").(string); ok {
		return userID
	}
	return ""
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *fiber.Ctx) string {
	if email, ok := c.Locals("email").(string); ok {
		return email
	}
	return ""
}

// GenerateToken creates a signed token for a user
func (m *AuthMiddleware) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.expiration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.expiration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.jwtSecret))
}

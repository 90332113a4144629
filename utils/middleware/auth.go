package middleware

import (
	"errors"
	"strings"

	"github.com/edemy/lms-server/utils/response"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by a frontend session token. The
// subject is the identity-provider user id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// AuthConfig configures the session token middleware.
type AuthConfig struct {
	JWTSecret string
}

var errMissingToken = errors.New("missing bearer token")

func extractToken(c *fiber.Ctx) (string, error) {
	header := c.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errMissingToken
	}
	return token, nil
}

func parseToken(tokenStr, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid session token and stores the
// authenticated user id in locals.
func RequireAuth(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, err := extractToken(c)
		if err != nil {
			return response.Unauthorized(c, "Authentication required")
		}

		claims, err := parseToken(tokenStr, cfg.JWTSecret)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		c.Locals("user_id", claims.Subject)
		return c.Next()
	}
}

// OptionalAuth stores the user id when a valid token is present but never
// rejects the request.
func OptionalAuth(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, err := extractToken(c)
		if err != nil {
			return c.Next()
		}

		if claims, err := parseToken(tokenStr, cfg.JWTSecret); err == nil {
			c.Locals("user_id", claims.Subject)
		}
		return c.Next()
	}
}

// GetUserID returns the authenticated user id set by RequireAuth.
func GetUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

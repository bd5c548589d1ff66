// Package middleware provides the HTTP middleware chain: authentication, rate limiting,
// request logging, metrics and tracing.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"sapp/internal/config"
	"sapp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// UserLookup resolves the user a token's subject refers to.
type UserLookup func(ctx context.Context, id uint) (*models.User, error)

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

// AuthRequired enforces a bearer JWT whose "sub" claim names an existing, enabled user.
// The user id is stored in c.Locals("userID") and in the request context.
func AuthRequired(lookup UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return unauthorized(c, "Invalid authorization header format")
		}

		userID, err := ParseToken(parts[1])
		if err != nil {
			return unauthorized(c, err.Error())
		}

		ctx := c.UserContext()
		if lookup != nil {
			user, err := lookup(ctx, userID)
			if err != nil {
				if models.HasCode(err, models.CodeNotFound) {
					return unauthorized(c, "User no longer exists")
				}
				Logger.ErrorContext(ctx, "failed to resolve token subject", "user_id", userID, "error", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to authenticate"})
			}
			if !user.Enabled {
				return unauthorized(c, "User account is disabled")
			}
		}

		c.Locals("userID", userID)
		c.SetUserContext(context.WithValue(ctx, UserIDKey, userID))
		return c.Next()
	}
}

// ParseToken validates an HMAC-signed token and returns the user id in its subject claim.
func ParseToken(tokenString string) (uint, error) {
	if cfg == nil {
		return 0, errors.New("Authentication is not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("Invalid token claims")
	}

	// "sub" holds the user id as a decimal string (RFC 7519 subject).
	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, errors.New("Invalid token structure - missing subject")
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil || userIDVal == 0 {
		return 0, errors.New("Invalid user ID in token")
	}
	return uint(userIDVal), nil
}

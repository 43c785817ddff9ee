// Package middleware provides the HTTP cross-cutting layers: JWT
// authentication, request logging, tracing, and Redis-backed rate limits.
package middleware

import (
	"context"
	"errors"
	"strings"

	"threadloom/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired enforces a valid bearer token, stores the external user id
// from the "sub" claim in c.Locals("userID"), and enriches the request
// context with it for downstream logging.
func AuthRequired(c *fiber.Ctx) error {
	claims, err := parseBearer(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid token structure - missing subject",
		})
	}

	c.Locals("userID", sub)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, sub))
	if onboarded, ok := claims["onboarded"].(bool); ok {
		c.Locals("onboarded", onboarded)
	}
	return c.Next()
}

// OnboardedRequired rejects tokens whose profile has not been completed.
// Must run after AuthRequired. The profile-save route stays outside this
// gate so first-time users can finish onboarding.
func OnboardedRequired(c *fiber.Ctx) error {
	if onboarded, ok := c.Locals("onboarded").(bool); !ok || !onboarded {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Profile onboarding required",
		})
	}
	return c.Next()
}

// parseBearer extracts and validates the bearer token. It never writes to
// the response; the returned error carries the message for the 401 body.
func parseBearer(c *fiber.Ctx) (jwt.MapClaims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("Authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("Invalid token claims")
	}
	return claims, nil
}

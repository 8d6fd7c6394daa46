package server

import (
	"crypto/subtle"
	"strings"

	"acp-checkout/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// BearerAuth rejects requests whose Authorization header does not carry apiKey
// as a bearer token.
func BearerAuth(apiKey string) fiber.Handler {
	expected := []byte(apiKey)

	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok || len(expected) == 0 || subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			logger.WithRequestID(RayID(c)).Warn("Rejected unauthenticated request",
				zap.String("path", c.Path()),
				zap.Bool("header_present", ok),
			)
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "unauthorized",
				Message: "missing or invalid bearer token",
				RayID:   RayID(c),
			})
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

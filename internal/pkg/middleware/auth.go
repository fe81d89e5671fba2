package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/medihub/medihub/app/models"
	"github.com/medihub/medihub/internal/pkg/auth"
	"github.com/medihub/medihub/internal/pkg/usercontext"
)

// BearerAuth resolves the request principal from an "Authorization: Bearer" token.
// Requests without a token continue as anonymous; a malformed or expired token is rejected.
func BearerAuth(issuer *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractBearerToken(c)
		if raw == "" {
			usercontext.SetUserContext(c, usercontext.UserContext{})
			return c.Next()
		}

		claims, err := issuer.Parse(raw)
		if err != nil {
			log.Debugf("[Auth] Rejected token from %s: %v", c.IP(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "인증 토큰이 유효하지 않습니다."})
		}
		profileID, err := claims.ProfileID()
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "인증 토큰이 유효하지 않습니다."})
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			ProfileID:  profileID,
			Name:       claims.Name,
			Role:       claims.Role,
			IsLoggedIn: true,
			IsAdmin:    claims.Role == models.ROLE_ADMIN,
		})
		c.Locals(usercontext.KeyAuthMethod, "bearer")
		return c.Next()
	}
}

// RequireAuth rejects anonymous requests with JSON 401.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "로그인이 필요합니다.",
		})
	}
	return c.Next()
}

// RequireAdmin allows only admin principals.
func RequireAdmin(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "로그인이 필요합니다.",
		})
	}
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "관리자 권한이 필요합니다.",
		})
	}
	return c.Next()
}

func extractBearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

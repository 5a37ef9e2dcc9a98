package middleware

import (
	"unihub/internal/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

const principalKey = "principal"

// AuthenticatedSession resolves the session's user into a Principal and puts
// it in the request locals. Requests without a valid session get a 401.
func AuthenticatedSession(sessionStore *session.Store, resolver identity.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := sessionStore.Get(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session error"})
		}

		rawUserID, ok := sess.Get("user_id").(string)
		if !ok || rawUserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}

		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}

		principal, err := resolver.Resolve(c.Context(), userID)
		if err != nil {
			sess.Delete("user_id")
			sess.Save()
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// Principal returns the authenticated principal set by AuthenticatedSession.
func Principal(c *fiber.Ctx) (identity.Principal, bool) {
	principal, ok := c.Locals(principalKey).(identity.Principal)
	return principal, ok
}

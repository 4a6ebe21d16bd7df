package middleware

import (
	"github.com/gofiber/fiber/v2"

	"stepwise/backend/config"
	"stepwise/backend/utils"
)

// AuthMiddleware rejects requests without a valid token and stores the
// caller's id under utils.UserIDKey.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(utils.UserIDKey, userID)
		return c.Next()
	}
}

package middleware

import (
	"github.com/gofiber/fiber/v2"

	"coleta-seletiva/internal/domain"
)

func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := GetCaller(c)
		if !ok {
			return Unauthorized("Account not found")
		}

		for _, role := range roles {
			if caller.Is(role) {
				return c.Next()
			}
		}

		return Forbidden("Insufficient permissions for this operation")
	}
}

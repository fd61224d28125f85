package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/service/auth"
)

const (
	AccountContextKey = "account"
	CallerContextKey  = "caller"
)

func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Unauthorized("Invalid authorization header format")
		}

		claims, err := authService.ValidateAccessToken(parts[1])
		if err != nil {
			return Unauthorized("Invalid or expired token")
		}

		account, err := authService.GetAccount(c.Context(), claims.AccountID)
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInactiveAccount) {
			return Unauthorized("Account not found or inactive")
		}
		if err != nil {
			return err
		}

		c.Locals(AccountContextKey, account)
		c.Locals(CallerContextKey, domain.Caller{AccountID: account.ID, Role: account.Role})

		return c.Next()
	}
}

func GetCurrentAccount(c *fiber.Ctx) *domain.Account {
	account, ok := c.Locals(AccountContextKey).(*domain.Account)
	if !ok {
		return nil
	}
	return account
}

// GetCaller returns the authenticated caller. Handlers behind AuthRequired
// can rely on ok being true.
func GetCaller(c *fiber.Ctx) (domain.Caller, bool) {
	caller, ok := c.Locals(CallerContextKey).(domain.Caller)
	return caller, ok
}

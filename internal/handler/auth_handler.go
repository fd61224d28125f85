package handler

import (
	"github.com/gofiber/fiber/v2"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/middleware"
	"coleta-seletiva/internal/service/account"
	"coleta-seletiva/internal/service/auth"
)

type AuthHandler struct {
	authService    auth.Service
	accountService account.Service
}

func NewAuthHandler(authService auth.Service, accountService account.Service) *AuthHandler {
	return &AuthHandler{authService: authService, accountService: accountService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input domain.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.accountService.Register(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    created.View(),
		"message": "Registration successful",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if input.Role != nil && !input.Role.IsValid() {
		return middleware.BadRequest("Invalid role")
	}

	user, tokens, err := h.authService.Login(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":         user.View(),
		"access_token": tokens.AccessToken,
		"expires_in":   tokens.ExpiresIn,
	})
}

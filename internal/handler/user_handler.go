package handler

import (
	"github.com/gofiber/fiber/v2"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/middleware"
	"coleta-seletiva/internal/service/account"
)

const maxPhotoSize = 5 * 1024 * 1024

type UserHandler struct {
	accountService account.Service
}

func NewUserHandler(accountService account.Service) *UserHandler {
	return &UserHandler{accountService: accountService}
}

func views(accounts []domain.Account) []domain.AccountView {
	out := make([]domain.AccountView, 0, len(accounts))
	for i := range accounts {
		out = append(out, accounts[i].View())
	}
	return out
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	profile, err := h.accountService.Profile(c.Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(profile.View())
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var patch domain.AccountPatch
	if err := c.BodyParser(&patch); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.accountService.UpdateProfile(c.Context(), caller, patch)
	if err != nil {
		return err
	}
	return c.JSON(updated.View())
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var input domain.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if err := h.accountService.ChangePassword(c.Context(), caller, input); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *UserHandler) UploadPhoto(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return middleware.BadRequest("Photo is required")
	}
	if file.Size > maxPhotoSize {
		return middleware.BadRequest("Photo must be smaller than 5MB")
	}

	src, err := file.Open()
	if err != nil {
		return middleware.BadRequest("Could not read photo")
	}
	defer src.Close()

	updated, err := h.accountService.UploadPhoto(c.Context(), caller, file.Filename, src, file.Size)
	if err != nil {
		return err
	}
	return c.JSON(updated.View())
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var role *domain.Role
	if r := c.Query("role"); r != "" {
		parsed := domain.Role(r)
		role = &parsed
	}

	accounts, err := h.accountService.List(c.Context(), caller, role)
	if err != nil {
		return err
	}
	return c.JSON(views(accounts))
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var input domain.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	created, err := h.accountService.CreateAccount(c.Context(), caller, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created.View())
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var patch domain.AccountPatch
	if err := c.BodyParser(&patch); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.accountService.UpdateAccount(c.Context(), caller, id, patch)
	if err != nil {
		return err
	}
	return c.JSON(updated.View())
}

func (h *UserHandler) SetStatus(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var input struct {
		Active *bool `json:"active"`
	}
	if err := c.BodyParser(&input); err != nil || input.Active == nil {
		return middleware.BadRequest("Field active is required")
	}

	if err := h.accountService.SetActive(c.Context(), caller, id, *input.Active); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.accountService.Delete(c.Context(), caller, id); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}

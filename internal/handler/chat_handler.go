package handler

import (
	"github.com/gofiber/fiber/v2"

	"coleta-seletiva/internal/middleware"
	"coleta-seletiva/internal/service/notification"
)

type ChatHandler struct {
	notifService notification.Service
}

func NewChatHandler(notifService notification.Service) *ChatHandler {
	return &ChatHandler{notifService: notifService}
}

func (h *ChatHandler) Transcript(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	requestID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	messages, err := h.notifService.Transcript(c.Context(), caller, requestID)
	if err != nil {
		return err
	}
	return c.JSON(messages)
}

func (h *ChatHandler) Send(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	requestID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var input struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	msg, err := h.notifService.SendChat(c.Context(), caller, requestID, input.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

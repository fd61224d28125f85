package handler

import (
	"github.com/gofiber/fiber/v2"

	"coleta-seletiva/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	inbox, err := h.notifService.Inbox(c.Context(), caller)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(inbox)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	count, err := h.notifService.UnreadCount(c.Context(), caller)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifService.MarkRead(c.Context(), caller, id); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	marked, err := h.notifService.MarkAllRead(c.Context(), caller)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"marked": marked,
	})
}

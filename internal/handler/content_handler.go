package handler

import (
	"github.com/gofiber/fiber/v2"

	"coleta-seletiva/internal/service/content"
)

type ContentHandler struct {
	contentService content.Service
}

func NewContentHandler(contentService content.Service) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

func (h *ContentHandler) Articles(c *fiber.Ctx) error {
	articles, err := h.contentService.Articles(c.Context(), c.Query("category"))
	if err != nil {
		return err
	}
	return c.JSON(articles)
}

func (h *ContentHandler) Tips(c *fiber.Ctx) error {
	tips, err := h.contentService.Tips(c.Context(), c.Query("category"))
	if err != nil {
		return err
	}
	return c.JSON(tips)
}

func (h *ContentHandler) Materials(c *fiber.Ctx) error {
	materials, err := h.contentService.Materials(c.Context(), c.Query("material"))
	if err != nil {
		return err
	}
	return c.JSON(materials)
}

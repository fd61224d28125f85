package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/middleware"
	"coleta-seletiva/internal/service/collection"
)

type RequestHandler struct {
	collectionService collection.Service
}

func NewRequestHandler(collectionService collection.Service) *RequestHandler {
	return &RequestHandler{collectionService: collectionService}
}

func (h *RequestHandler) Create(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var input domain.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.collectionService.Create(c.Context(), caller, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *RequestHandler) Get(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	req, err := h.collectionService.Get(c.Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(req)
}

func (h *RequestHandler) Mine(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	reqs, err := h.collectionService.Mine(c.Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(reqs)
}

// Available accepts ?neighborhoods=Centro,Vila%20Nova to override the
// collector's service areas.
func (h *RequestHandler) Available(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var neighborhoods []string
	for _, n := range strings.Split(c.Query("neighborhoods"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			neighborhoods = append(neighborhoods, n)
		}
	}

	reqs, err := h.collectionService.Available(c.Context(), caller, neighborhoods)
	if err != nil {
		return err
	}
	return c.JSON(reqs)
}

func (h *RequestHandler) List(c *fiber.Ctx) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}

	var status *domain.RequestStatus
	if s := c.Query("status"); s != "" {
		parsed := domain.RequestStatus(s)
		status = &parsed
	}

	reqs, err := h.collectionService.List(c.Context(), caller, status)
	if err != nil {
		return err
	}
	return c.JSON(reqs)
}

type transitionFunc func(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error)

func (h *RequestHandler) transition(c *fiber.Ctx, apply transitionFunc) error {
	caller, err := currentCaller(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	req, err := apply(c.Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(req)
}

func (h *RequestHandler) Accept(c *fiber.Ctx) error {
	return h.transition(c, h.collectionService.Accept)
}

func (h *RequestHandler) AcceptAndComplete(c *fiber.Ctx) error {
	return h.transition(c, h.collectionService.AcceptAndComplete)
}

func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, h.collectionService.Reject)
}

func (h *RequestHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, h.collectionService.Complete)
}

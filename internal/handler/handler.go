package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/middleware"
	"coleta-seletiva/internal/service"
)

type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Request      *RequestHandler
	Chat         *ChatHandler
	Notification *NotificationHandler
	Content      *ContentHandler
	Dashboard    *DashboardHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth, services.Account),
		User:         NewUserHandler(services.Account),
		Request:      NewRequestHandler(services.Collection),
		Chat:         NewChatHandler(services.Notification),
		Notification: NewNotificationHandler(services.Notification),
		Content:      NewContentHandler(services.Content),
		Dashboard:    NewDashboardHandler(services.Dashboard),
	}
}

func currentCaller(c *fiber.Ctx) (domain.Caller, error) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		return domain.Caller{}, middleware.Unauthorized("Account not authenticated")
	}
	return caller, nil
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, middleware.BadRequest("Invalid " + name)
	}
	return id, nil
}

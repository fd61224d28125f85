package handler

import (
	"github.com/gofiber/fiber/v2"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/middleware"
	"coleta-seletiva/internal/service/auth"
)

func SetupRoutes(app *fiber.App, h *Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)

	content := v1.Group("/content")
	content.Get("/articles", h.Content.Articles)
	content.Get("/tips", h.Content.Tips)
	content.Get("/materials", h.Content.Materials)

	protected := v1.Group("", middleware.AuthRequired(authService))

	users := protected.Group("/users")
	users.Get("/me", h.User.GetProfile)
	users.Put("/me", h.User.UpdateProfile)
	users.Put("/me/password", h.User.ChangePassword)
	users.Post("/me/photo", h.User.UploadPhoto)
	users.Get("/", middleware.RequireRole(domain.RoleAdmin), h.User.List)
	users.Post("/", middleware.RequireRole(domain.RoleAdmin), h.User.Create)
	users.Put("/:id", middleware.RequireRole(domain.RoleAdmin), h.User.Update)
	users.Patch("/:id/status", middleware.RequireRole(domain.RoleAdmin), h.User.SetStatus)
	users.Delete("/:id", middleware.RequireRole(domain.RoleAdmin), h.User.Delete)

	collector := middleware.RequireRole(domain.RoleCollector)

	requests := protected.Group("/requests")
	requests.Post("/", middleware.RequireRole(domain.RoleResident), h.Request.Create)
	requests.Get("/", middleware.RequireRole(domain.RoleAdmin), h.Request.List)
	requests.Get("/mine", h.Request.Mine)
	requests.Get("/available", middleware.RequireRole(domain.RoleCollector, domain.RoleAdmin), h.Request.Available)
	requests.Get("/:id", h.Request.Get)
	requests.Post("/:id/accept", collector, h.Request.Accept)
	requests.Post("/:id/accept-complete", collector, h.Request.AcceptAndComplete)
	requests.Post("/:id/reject", collector, h.Request.Reject)
	requests.Post("/:id/complete", collector, h.Request.Complete)
	requests.Get("/:id/chat", h.Chat.Transcript)
	requests.Post("/:id/chat", h.Chat.Send)

	protected.Get("/dashboard/stats", middleware.RequireRole(domain.RoleAdmin), h.Dashboard.GetStats)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
}

package service

import (
	"github.com/redis/go-redis/v9"

	"coleta-seletiva/internal/config"
	"coleta-seletiva/internal/pkg/logger"
	"coleta-seletiva/internal/repository"
	"coleta-seletiva/internal/service/account"
	"coleta-seletiva/internal/service/auth"
	"coleta-seletiva/internal/service/collection"
	"coleta-seletiva/internal/service/content"
	"coleta-seletiva/internal/service/dashboard"
	"coleta-seletiva/internal/service/email"
	"coleta-seletiva/internal/service/events"
	"coleta-seletiva/internal/service/notification"
	"coleta-seletiva/internal/service/photo"
)

type Services struct {
	Auth         auth.Service
	Account      account.Service
	Collection   collection.Service
	Notification notification.Service
	Content      content.Service
	Dashboard    dashboard.Service
	Email        email.Service
}

func NewServices(
	repos *repository.Repositories,
	photos photo.Storage,
	publisher events.Publisher,
	cache *redis.Client,
	cfg *config.Config,
	log *logger.Logger,
) *Services {
	emailService := email.NewService(cfg.ResendAPIKey, cfg.FromEmail, cfg.Locale)
	authService := auth.NewService(repos.User, auth.Config{
		Secret:    cfg.JWTSecret,
		AccessTTL: cfg.JWTAccessExpiry,
		Issuer:    cfg.JWTIssuer,
	}, log)
	var statsCache dashboard.Cache
	if cache != nil {
		statsCache = cache
	}
	dashboardService := dashboard.NewService(repos.User, repos.Request, statsCache)
	notificationService := notification.NewService(repos.Notification, repos.Request, repos.User, emailService, cfg.Locale, log)
	collectionService := collection.NewService(repos.Request, repos.User, notificationService, publisher, dashboardService, log)
	accountService := account.NewService(repos.User, repos.Notification, photos, emailService, dashboardService, cfg.Locale, log)
	contentService := content.NewService(repos.Content)

	return &Services{
		Auth:         authService,
		Account:      accountService,
		Collection:   collectionService,
		Notification: notificationService,
		Content:      contentService,
		Dashboard:    dashboardService,
		Email:        emailService,
	}
}

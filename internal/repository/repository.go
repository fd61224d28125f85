package repository

import (
	"embed"
	"time"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/pkg/i18n"
	"coleta-seletiva/internal/table"
)

//go:embed seed/*.yaml
var seedFS embed.FS

const (
	AccountsTable      = "accounts"
	RequestsTable      = "requests"
	NotificationsTable = "notifications"
)

type Options struct {
	ChatMaxLength int
	Locale        string
	// Seed materializes the default dataset on first access. Disabled in tests
	// that need empty tables.
	Seed bool
	Now  func() time.Time
}

func DefaultOptions() Options {
	return Options{
		ChatMaxLength: domain.DefaultChatMaxLength,
		Locale:        i18n.DefaultLocale,
		Seed:          true,
		Now:           time.Now,
	}
}

type Repositories struct {
	User         UserRepository
	Request      RequestRepository
	Notification NotificationRepository
	Content      ContentRepository
}

func NewRepositories(backend table.Backend, opts Options) *Repositories {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ChatMaxLength <= 0 {
		opts.ChatMaxLength = domain.DefaultChatMaxLength
	}
	if opts.Locale == "" {
		opts.Locale = i18n.DefaultLocale
	}

	var (
		accountSeed      table.SeedFunc[*domain.Account]
		requestSeed      table.SeedFunc[*domain.CollectionRequest]
		notificationSeed table.SeedFunc[*domain.Notification]
	)
	if opts.Seed {
		accountSeed = table.YAMLSeed[*domain.Account](seedFS, "seed/accounts.yaml")
		requestSeed = table.YAMLSeed[*domain.CollectionRequest](seedFS, "seed/requests.yaml")
		notificationSeed = table.YAMLSeed[*domain.Notification](seedFS, "seed/notifications.yaml")
	}

	return &Repositories{
		User:         NewUserRepository(table.New(backend, AccountsTable, accountSeed), opts.Now),
		Request:      NewRequestRepository(table.New(backend, RequestsTable, requestSeed), opts.Now),
		Notification: NewNotificationRepository(table.New(backend, NotificationsTable, notificationSeed), opts),
		Content:      NewContentRepository(seedFS, "seed/content.yaml"),
	}
}

package repository

import (
	"context"
	"sort"
	"time"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/pkg/i18n"
	"coleta-seletiva/internal/table"
)

// NotificationRepository is an append-only inbox per account. Chat messages
// are notifications of kind chat tied to a collection request.
type NotificationRepository interface {
	Send(ctx context.Context, notif *domain.Notification) (*domain.Notification, error)
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int, error)
	CountUnread(ctx context.Context, userID int64, role *domain.Role) (int64, error)
	ListForUser(ctx context.Context, userID int64, role *domain.Role) ([]domain.Notification, error)
	SendChatMessage(ctx context.Context, input domain.ChatMessageInput) (*domain.Notification, error)
	ListChatMessages(ctx context.Context, requestID int64) ([]domain.Notification, error)
}

type notificationRepository struct {
	table         *table.Table[*domain.Notification]
	now           func() time.Time
	chatMaxLength int
	locale        string
}

func NewNotificationRepository(tbl *table.Table[*domain.Notification], opts Options) NotificationRepository {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &notificationRepository{
		table:         tbl,
		now:           opts.Now,
		chatMaxLength: opts.ChatMaxLength,
		locale:        opts.Locale,
	}
}

func (r *notificationRepository) Send(ctx context.Context, notif *domain.Notification) (*domain.Notification, error) {
	if notif.RecipientID <= 0 {
		return nil, domain.Validationf("recipient is required")
	}
	if notif.Kind == "" {
		notif.Kind = domain.KindPlain
	}
	if !notif.Kind.IsValid() {
		return nil, domain.Validationf("unknown notification kind %q", notif.Kind)
	}
	if notif.IsChat() && (notif.RequestID == nil || notif.SenderID == nil || notif.SenderRole == nil) {
		return nil, domain.Validationf("chat messages need request and sender")
	}
	if !notif.IsChat() {
		notif.RequestID, notif.SenderID, notif.SenderRole = nil, nil, nil
	}

	var stored domain.Notification
	err := r.table.Mutate(ctx, func(rows []*domain.Notification, ids *table.Allocator) ([]*domain.Notification, error) {
		notif.Read = false
		if notif.CreatedAt.IsZero() {
			notif.CreatedAt = r.now().UTC()
		}
		ids.Assign(notif)

		stored = *notif
		row := stored
		return append(rows, &row), nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	rows, err := r.table.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, domain.NotFoundf("notification %d", id)
}

// MarkRead is idempotent: an already read notification stays read.
func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	return r.table.Mutate(ctx, func(rows []*domain.Notification, _ *table.Allocator) ([]*domain.Notification, error) {
		for _, row := range rows {
			if row.ID == id {
				row.Read = true
				return rows, nil
			}
		}
		return nil, domain.NotFoundf("notification %d", id)
	})
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	marked := 0
	err := r.table.Mutate(ctx, func(rows []*domain.Notification, _ *table.Allocator) ([]*domain.Notification, error) {
		for _, row := range rows {
			if row.RecipientID == userID && !row.Read {
				row.Read = true
				marked++
			}
		}
		return rows, nil
	})
	if err != nil {
		return 0, err
	}
	return marked, nil
}

// CountUnread applies the same role filter as ListForUser, so a badge never
// counts notifications the inbox would hide.
func (r *notificationRepository) CountUnread(ctx context.Context, userID int64, role *domain.Role) (int64, error) {
	rows, err := r.table.LoadAll(ctx)
	if err != nil {
		return 0, err
	}

	var n int64
	for _, row := range rows {
		if row.RecipientID != userID || row.Read {
			continue
		}
		if role != nil && row.RecipientRole != *role {
			continue
		}
		n++
	}
	return n, nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID int64, role *domain.Role) ([]domain.Notification, error) {
	rows, err := r.table.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Notification, 0)
	for _, row := range rows {
		if row.RecipientID != userID {
			continue
		}
		if role != nil && row.RecipientRole != *role {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (r *notificationRepository) SendChatMessage(ctx context.Context, input domain.ChatMessageInput) (*domain.Notification, error) {
	if err := domain.ValidateChatBody(input.Body, r.chatMaxLength); err != nil {
		return nil, err
	}
	if input.RequestID <= 0 || input.SenderID <= 0 {
		return nil, domain.Validationf("chat messages need request and sender")
	}

	requestID, senderID, senderRole := input.RequestID, input.SenderID, input.SenderRole
	return r.Send(ctx, &domain.Notification{
		RecipientID:   input.RecipientID,
		RecipientRole: input.RecipientRole,
		Kind:          domain.KindChat,
		Title:         i18n.Format(r.locale, "CHAT_TITLE", input.RequestID),
		Body:          input.Body,
		RequestID:     &requestID,
		SenderID:      &senderID,
		SenderRole:    &senderRole,
	})
}

// ListChatMessages returns the conversation for a request, oldest first.
func (r *notificationRepository) ListChatMessages(ctx context.Context, requestID int64) ([]domain.Notification, error) {
	rows, err := r.table.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Notification, 0)
	for _, row := range rows {
		if row.IsChat() && row.RequestID != nil && *row.RequestID == requestID {
			out = append(out, *row)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

package notification

import (
	"context"
	"sort"
	"strings"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/pkg/i18n"
	"coleta-seletiva/internal/pkg/logger"
	"coleta-seletiva/internal/repository"
	"coleta-seletiva/internal/service/email"
)

type Service interface {
	Inbox(ctx context.Context, caller domain.Caller) (*domain.Inbox, error)
	UnreadCount(ctx context.Context, caller domain.Caller) (int64, error)
	MarkRead(ctx context.Context, caller domain.Caller, id int64) error
	MarkAllRead(ctx context.Context, caller domain.Caller) (int, error)

	SendChat(ctx context.Context, caller domain.Caller, requestID int64, body string) (*domain.Notification, error)
	Transcript(ctx context.Context, caller domain.Caller, requestID int64) ([]domain.Notification, error)

	NotifyNewRequest(ctx context.Context, req *domain.CollectionRequest, resident *domain.Account, collectorID int64) error
	NotifyRequestStatus(ctx context.Context, req *domain.CollectionRequest, collector *domain.Account) error
}

type service struct {
	notifRepo   repository.NotificationRepository
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	emailSvc    email.Service
	locale      string
	log         *logger.Logger
}

func NewService(
	notifRepo repository.NotificationRepository,
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	emailSvc email.Service,
	locale string,
	log *logger.Logger,
) Service {
	if log == nil {
		log = logger.Nop()
	}
	return &service{
		notifRepo:   notifRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
		locale:      locale,
		log:         log.Named("notification"),
	}
}

func newestFirst(list []domain.Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}

func (s *service) Inbox(ctx context.Context, caller domain.Caller) (*domain.Inbox, error) {
	all, err := s.notifRepo.ListForUser(ctx, caller.AccountID, &caller.Role)
	if err != nil {
		return nil, err
	}

	inbox := &domain.Inbox{Unread: []domain.Notification{}, Read: []domain.Notification{}}
	for _, n := range all {
		if n.Read {
			inbox.Read = append(inbox.Read, n)
		} else {
			inbox.Unread = append(inbox.Unread, n)
		}
	}
	newestFirst(inbox.Unread)
	newestFirst(inbox.Read)
	return inbox, nil
}

func (s *service) UnreadCount(ctx context.Context, caller domain.Caller) (int64, error) {
	return s.notifRepo.CountUnread(ctx, caller.AccountID, &caller.Role)
}

func (s *service) MarkRead(ctx context.Context, caller domain.Caller, id int64) error {
	n, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != caller.AccountID {
		return domain.ErrForbidden
	}
	return s.notifRepo.MarkRead(ctx, id)
}

func (s *service) MarkAllRead(ctx context.Context, caller domain.Caller) (int, error) {
	return s.notifRepo.MarkAllRead(ctx, caller.AccountID)
}

// Only the request's resident and its assigned collector take part in its conversation.
func participant(req *domain.CollectionRequest, caller domain.Caller) bool {
	switch caller.Role {
	case domain.RoleResident:
		return req.ResidentID == caller.AccountID
	case domain.RoleCollector:
		return req.AssignedTo(caller.AccountID)
	default:
		return false
	}
}

// counterpart returns the other participant of a request's conversation.
func counterpart(req *domain.CollectionRequest, caller domain.Caller) (int64, domain.Role, error) {
	if !participant(req, caller) {
		return 0, "", domain.ErrForbidden
	}
	if caller.Is(domain.RoleCollector) {
		return req.ResidentID, domain.RoleResident, nil
	}
	if req.Unassigned() {
		return 0, "", domain.Validationf("request %d has no collector yet", req.ID)
	}
	return *req.CollectorID, domain.RoleCollector, nil
}

func (s *service) SendChat(ctx context.Context, caller domain.Caller, requestID int64, body string) (*domain.Notification, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	recipientID, recipientRole, err := counterpart(req, caller)
	if err != nil {
		return nil, err
	}

	return s.notifRepo.SendChatMessage(ctx, domain.ChatMessageInput{
		RequestID:     req.ID,
		SenderID:      caller.AccountID,
		SenderRole:    caller.Role,
		RecipientID:   recipientID,
		RecipientRole: recipientRole,
		Body:          body,
	})
}

func (s *service) Transcript(ctx context.Context, caller domain.Caller, requestID int64) ([]domain.Notification, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !caller.Is(domain.RoleAdmin) && !participant(req, caller) {
		return nil, domain.ErrForbidden
	}
	return s.notifRepo.ListChatMessages(ctx, req.ID)
}

func (s *service) NotifyNewRequest(ctx context.Context, req *domain.CollectionRequest, resident *domain.Account, collectorID int64) error {
	_, err := s.notifRepo.Send(ctx, &domain.Notification{
		RecipientID:   collectorID,
		RecipientRole: domain.RoleCollector,
		Kind:          domain.KindPlain,
		Title:         i18n.Translate(s.locale, "REQUEST_NEW_TITLE"),
		Body: i18n.Format(s.locale, "REQUEST_NEW_BODY",
			resident.Name, req.Neighborhood, strings.Join(req.Materials, ", ")),
	})
	return err
}

// NotifyRequestStatus tells the resident that their request changed state.
// The in-app notification is the result; the email copy is best-effort.
func (s *service) NotifyRequestStatus(ctx context.Context, req *domain.CollectionRequest, collector *domain.Account) error {
	var prefix string
	switch req.Status {
	case domain.RequestScheduled:
		prefix = "REQUEST_SCHEDULED"
	case domain.RequestCompleted:
		prefix = "REQUEST_COMPLETED"
	case domain.RequestRejected:
		prefix = "REQUEST_REJECTED"
	default:
		return nil
	}

	collectorName := ""
	if collector != nil {
		collectorName = collector.Name
	}
	body := i18n.Format(s.locale, prefix+"_BODY", collectorName, req.ID)

	_, err := s.notifRepo.Send(ctx, &domain.Notification{
		RecipientID:   req.ResidentID,
		RecipientRole: domain.RoleResident,
		Kind:          domain.KindPlain,
		Title:         i18n.Translate(s.locale, prefix+"_TITLE"),
		Body:          body,
	})
	if err != nil {
		return err
	}

	resident, err := s.userRepo.GetByID(ctx, req.ResidentID)
	if err != nil {
		s.log.Warn().Err(err).Int64("request_id", req.ID).Int64("recipient_id", req.ResidentID).Msg("resident not found for email copy")
		return nil
	}
	if err := s.emailSvc.SendRequestStatusEmail(ctx, resident.Email, resident.Name, req, body); err != nil {
		s.log.Warn().Err(err).Int64("request_id", req.ID).Int64("recipient_id", resident.ID).Msg("failed to send status email")
	}
	return nil
}

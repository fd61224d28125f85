package collection

import (
	"context"
	"strings"
	"time"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/pkg/logger"
	"coleta-seletiva/internal/repository"
	"coleta-seletiva/internal/service/dashboard"
	"coleta-seletiva/internal/service/events"
	"coleta-seletiva/internal/service/notification"
)

// Service runs the collection request workflow. Each operation commits its
// own record first; notifications, emails and events that follow are
// best-effort and only logged when they fail.
type Service interface {
	Create(ctx context.Context, caller domain.Caller, input domain.CreateRequestInput) (*domain.CollectionRequest, error)
	Get(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error)
	Mine(ctx context.Context, caller domain.Caller) ([]domain.CollectionRequest, error)
	Available(ctx context.Context, caller domain.Caller, neighborhoods []string) ([]domain.CollectionRequest, error)
	List(ctx context.Context, caller domain.Caller, status *domain.RequestStatus) ([]domain.CollectionRequest, error)

	Accept(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error)
	AcceptAndComplete(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error)
	Reject(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error)
	Complete(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error)
}

type service struct {
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	notifSvc    notification.Service
	publisher   events.Publisher
	stats       dashboard.Invalidator
	log         *logger.Logger
	now         func() time.Time
}

func NewService(
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	notifSvc notification.Service,
	publisher events.Publisher,
	stats dashboard.Invalidator,
	log *logger.Logger,
) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &service{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		notifSvc:    notifSvc,
		publisher:   publisher,
		stats:       stats,
		log:         log.Named("collection"),
		now:         time.Now,
	}
}

func (s *service) activeAccount(ctx context.Context, caller domain.Caller, role domain.Role) (*domain.Account, error) {
	if !caller.Is(role) {
		return nil, domain.ErrForbidden
	}
	account, err := s.userRepo.GetByID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, domain.ErrInactiveAccount
	}
	return account, nil
}

func (s *service) Create(ctx context.Context, caller domain.Caller, input domain.CreateRequestInput) (*domain.CollectionRequest, error) {
	resident, err := s.activeAccount(ctx, caller, domain.RoleResident)
	if err != nil {
		return nil, err
	}

	req := &domain.CollectionRequest{
		ResidentID:          resident.ID,
		RequestedDate:       input.RequestedDate,
		RequestedWindow:     input.RequestedWindow,
		Address:             strings.TrimSpace(input.Address),
		Neighborhood:        resident.Neighborhood,
		Materials:           input.Materials,
		EstimatedQuantityKg: input.EstimatedQuantityKg,
		Observations:        input.Observations,
	}
	if req.Address == "" {
		req.Address = resident.Address
	}
	if req.Neighborhood == "" {
		req.Neighborhood = strings.TrimSpace(input.Neighborhood)
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	if input.PreferredCollectorID != nil {
		s.notifyPreferredCollector(ctx, req, resident, *input.PreferredCollectorID)
	}
	s.publish(ctx, req)

	return req, nil
}

func (s *service) notifyPreferredCollector(ctx context.Context, req *domain.CollectionRequest, resident *domain.Account, collectorID int64) {
	collector, err := s.userRepo.GetByID(ctx, collectorID)
	if err == nil && collector.Role != domain.RoleCollector {
		err = domain.Validationf("account %d is not a collector", collectorID)
	}
	if err == nil {
		err = s.notifSvc.NotifyNewRequest(ctx, req, resident, collector.ID)
	}
	if err != nil {
		s.log.Warn().Err(err).
			Int64("request_id", req.ID).
			Int64("recipient_id", collectorID).
			Msg("failed to notify preferred collector")
	}
}

// Get shows a request to its resident, its collector, admins, and to any
// collector while it is still open.
func (s *service) Get(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case domain.RoleAdmin:
		return req, nil
	case domain.RoleResident:
		if req.ResidentID == caller.AccountID {
			return req, nil
		}
	case domain.RoleCollector:
		if req.AssignedTo(caller.AccountID) || req.Status == domain.RequestPending {
			return req, nil
		}
	}
	return nil, domain.ErrForbidden
}

func (s *service) Mine(ctx context.Context, caller domain.Caller) ([]domain.CollectionRequest, error) {
	switch caller.Role {
	case domain.RoleResident:
		return s.requestRepo.ListByResident(ctx, caller.AccountID)
	case domain.RoleCollector:
		return s.requestRepo.ListByCollector(ctx, caller.AccountID)
	default:
		return nil, domain.ErrForbidden
	}
}

// Available lists open requests. A collector sees their service areas unless
// neighborhoods is given; an admin sees everything unless it is given.
func (s *service) Available(ctx context.Context, caller domain.Caller, neighborhoods []string) ([]domain.CollectionRequest, error) {
	switch caller.Role {
	case domain.RoleAdmin:
		return s.requestRepo.ListAvailable(ctx, neighborhoods)
	case domain.RoleCollector:
		if len(neighborhoods) == 0 {
			collector, err := s.userRepo.GetByID(ctx, caller.AccountID)
			if err != nil {
				return nil, err
			}
			if len(collector.ServiceAreas) == 0 {
				return []domain.CollectionRequest{}, nil
			}
			neighborhoods = collector.ServiceAreas
		}
		return s.requestRepo.ListAvailable(ctx, neighborhoods)
	default:
		return nil, domain.ErrForbidden
	}
}

func (s *service) List(ctx context.Context, caller domain.Caller, status *domain.RequestStatus) ([]domain.CollectionRequest, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	if status != nil && !status.IsValid() {
		return nil, domain.Validationf("unknown status %q", *status)
	}
	return s.requestRepo.List(ctx, status)
}

func (s *service) Accept(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error) {
	return s.transition(ctx, caller, func(collectorID int64) (*domain.CollectionRequest, error) {
		return s.requestRepo.Accept(ctx, id, collectorID)
	})
}

func (s *service) AcceptAndComplete(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error) {
	return s.transition(ctx, caller, func(collectorID int64) (*domain.CollectionRequest, error) {
		return s.requestRepo.AcceptAndComplete(ctx, id, collectorID)
	})
}

func (s *service) Reject(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error) {
	return s.transition(ctx, caller, func(int64) (*domain.CollectionRequest, error) {
		return s.requestRepo.Reject(ctx, id)
	})
}

func (s *service) Complete(ctx context.Context, caller domain.Caller, id int64) (*domain.CollectionRequest, error) {
	return s.transition(ctx, caller, func(collectorID int64) (*domain.CollectionRequest, error) {
		return s.requestRepo.Complete(ctx, id, collectorID)
	})
}

func (s *service) transition(ctx context.Context, caller domain.Caller, apply func(collectorID int64) (*domain.CollectionRequest, error)) (*domain.CollectionRequest, error) {
	collector, err := s.activeAccount(ctx, caller, domain.RoleCollector)
	if err != nil {
		return nil, err
	}

	req, err := apply(collector.ID)
	if err != nil {
		return nil, err
	}

	if err := s.notifSvc.NotifyRequestStatus(ctx, req, collector); err != nil {
		s.log.Warn().Err(err).
			Int64("request_id", req.ID).
			Int64("recipient_id", req.ResidentID).
			Str("status", string(req.Status)).
			Msg("failed to notify resident")
	}
	s.publish(ctx, req)

	return req, nil
}

func (s *service) publish(ctx context.Context, req *domain.CollectionRequest) {
	if s.stats != nil {
		if err := s.stats.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Int64("request_id", req.ID).Msg("failed to invalidate dashboard stats")
		}
	}
	if err := s.publisher.Publish(ctx, domain.NewRequestEvent(req, s.now().UTC())); err != nil {
		s.log.Warn().Err(err).Int64("request_id", req.ID).Str("status", string(req.Status)).Msg("failed to publish request event")
	}
}

package repository

import (
	"context"
	"strings"
	"time"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/table"
)

// RequestRepository stores collection requests and owns their lifecycle:
//
//	pending -> scheduled -> completed
//	pending -> completed   (accept and complete in one step)
//	pending -> rejected
//
// A transition attempted from any other state fails with a
// *domain.TransitionError and leaves the record untouched.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.CollectionRequest) error
	GetByID(ctx context.Context, id int64) (*domain.CollectionRequest, error)
	List(ctx context.Context, status *domain.RequestStatus) ([]domain.CollectionRequest, error)
	ListAvailable(ctx context.Context, neighborhoods []string) ([]domain.CollectionRequest, error)
	ListByResident(ctx context.Context, residentID int64) ([]domain.CollectionRequest, error)
	ListByCollector(ctx context.Context, collectorID int64) ([]domain.CollectionRequest, error)

	Accept(ctx context.Context, id, collectorID int64) (*domain.CollectionRequest, error)
	AcceptAndComplete(ctx context.Context, id, collectorID int64) (*domain.CollectionRequest, error)
	Reject(ctx context.Context, id int64) (*domain.CollectionRequest, error)
	Complete(ctx context.Context, id, collectorID int64) (*domain.CollectionRequest, error)
}

type requestRepository struct {
	table *table.Table[*domain.CollectionRequest]
	now   func() time.Time
}

func NewRequestRepository(tbl *table.Table[*domain.CollectionRequest], now func() time.Time) RequestRepository {
	if now == nil {
		now = time.Now
	}
	return &requestRepository{table: tbl, now: now}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.CollectionRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return r.table.Mutate(ctx, func(rows []*domain.CollectionRequest, ids *table.Allocator) ([]*domain.CollectionRequest, error) {
		req.Status = domain.RequestPending
		req.CollectorID = nil
		req.CompletedAt = nil
		req.CreatedAt = r.now().UTC()
		ids.Assign(req)

		stored := *req
		stored.Materials = append([]string(nil), req.Materials...)
		return append(rows, &stored), nil
	})
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.CollectionRequest, error) {
	rows, err := r.table.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, domain.NotFoundf("request %d", id)
}

func (r *requestRepository) filter(ctx context.Context, keep func(*domain.CollectionRequest) bool) ([]domain.CollectionRequest, error) {
	rows, err := r.table.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CollectionRequest, 0)
	for _, row := range rows {
		if keep(row) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *requestRepository) List(ctx context.Context, status *domain.RequestStatus) ([]domain.CollectionRequest, error) {
	return r.filter(ctx, func(req *domain.CollectionRequest) bool {
		return status == nil || req.Status == *status
	})
}

// ListAvailable returns unassigned pending requests, limited to the given
// neighborhoods when any are supplied.
func (r *requestRepository) ListAvailable(ctx context.Context, neighborhoods []string) ([]domain.CollectionRequest, error) {
	return r.filter(ctx, func(req *domain.CollectionRequest) bool {
		if !req.Unassigned() || req.Status != domain.RequestPending {
			return false
		}
		if len(neighborhoods) == 0 {
			return true
		}
		for _, n := range neighborhoods {
			if strings.EqualFold(strings.TrimSpace(n), req.Neighborhood) {
				return true
			}
		}
		return false
	})
}

func (r *requestRepository) ListByResident(ctx context.Context, residentID int64) ([]domain.CollectionRequest, error) {
	return r.filter(ctx, func(req *domain.CollectionRequest) bool {
		return req.ResidentID == residentID
	})
}

func (r *requestRepository) ListByCollector(ctx context.Context, collectorID int64) ([]domain.CollectionRequest, error) {
	return r.filter(ctx, func(req *domain.CollectionRequest) bool {
		return req.AssignedTo(collectorID)
	})
}

func (r *requestRepository) transition(
	ctx context.Context,
	id int64,
	action string,
	from domain.RequestStatus,
	apply func(req *domain.CollectionRequest) error,
) (*domain.CollectionRequest, error) {
	var updated domain.CollectionRequest

	err := r.table.Mutate(ctx, func(rows []*domain.CollectionRequest, _ *table.Allocator) ([]*domain.CollectionRequest, error) {
		var req *domain.CollectionRequest
		for _, row := range rows {
			if row.ID == id {
				req = row
				break
			}
		}
		if req == nil {
			return nil, domain.NotFoundf("request %d", id)
		}
		if req.Status != from {
			return nil, &domain.TransitionError{RequestID: id, From: req.Status, Action: action}
		}
		if err := apply(req); err != nil {
			return nil, err
		}

		updated = *req
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *requestRepository) Accept(ctx context.Context, id, collectorID int64) (*domain.CollectionRequest, error) {
	return r.transition(ctx, id, "accept", domain.RequestPending, func(req *domain.CollectionRequest) error {
		if collectorID <= 0 {
			return domain.Validationf("collector is required")
		}
		req.CollectorID = &collectorID
		req.Status = domain.RequestScheduled
		return nil
	})
}

func (r *requestRepository) AcceptAndComplete(ctx context.Context, id, collectorID int64) (*domain.CollectionRequest, error) {
	return r.transition(ctx, id, "accept and complete", domain.RequestPending, func(req *domain.CollectionRequest) error {
		if collectorID <= 0 {
			return domain.Validationf("collector is required")
		}
		now := r.now().UTC()
		req.CollectorID = &collectorID
		req.Status = domain.RequestCompleted
		req.CompletedAt = &now
		return nil
	})
}

func (r *requestRepository) Reject(ctx context.Context, id int64) (*domain.CollectionRequest, error) {
	return r.transition(ctx, id, "reject", domain.RequestPending, func(req *domain.CollectionRequest) error {
		req.Status = domain.RequestRejected
		return nil
	})
}

func (r *requestRepository) Complete(ctx context.Context, id, collectorID int64) (*domain.CollectionRequest, error) {
	return r.transition(ctx, id, "complete", domain.RequestScheduled, func(req *domain.CollectionRequest) error {
		if !req.AssignedTo(collectorID) {
			return domain.ErrForbidden
		}
		now := r.now().UTC()
		req.Status = domain.RequestCompleted
		req.CompletedAt = &now
		return nil
	})
}

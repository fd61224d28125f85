package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/repository"
)

const (
	cacheKey = "dashboard:stats"
	cacheTTL = time.Minute
)

type Stats struct {
	TotalAccounts    int64                          `json:"total_accounts"`
	AccountsByRole   map[domain.Role]int64          `json:"accounts_by_role"`
	InactiveAccounts int64                          `json:"inactive_accounts"`
	TotalRequests    int64                          `json:"total_requests"`
	RequestsByStatus map[domain.RequestStatus]int64 `json:"requests_by_status"`
	CollectedKg      float64                        `json:"collected_kg"`
	LastRequestAt    *time.Time                     `json:"last_request_at"`
	LastCompletionAt *time.Time                     `json:"last_completion_at"`
}

// Invalidator is implemented by the dashboard and called by services whose
// writes change the stats.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Service interface {
	Invalidator
	GetStats(ctx context.Context, caller domain.Caller) (*Stats, error)
}

// Cache is the part of go-redis the dashboard needs. *redis.Client
// satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type service struct {
	userRepo    repository.UserRepository
	requestRepo repository.RequestRepository
	redis       Cache
}

// NewService builds the admin dashboard. cache may be nil, in which case
// every call reads the tables.
func NewService(userRepo repository.UserRepository, requestRepo repository.RequestRepository, cache Cache) Service {
	return &service{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		redis:       cache,
	}
}

func (s *service) Invalidate(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, cacheKey).Err()
}

func (s *service) GetStats(ctx context.Context, caller domain.Caller) (*Stats, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	accounts, err := s.userRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalAccounts:    int64(len(accounts)),
		AccountsByRole:   map[domain.Role]int64{},
		TotalRequests:    int64(len(requests)),
		RequestsByStatus: map[domain.RequestStatus]int64{},
	}
	for _, a := range accounts {
		stats.AccountsByRole[a.Role]++
		if !a.IsActive() {
			stats.InactiveAccounts++
		}
	}
	for i := range requests {
		r := &requests[i]
		stats.RequestsByStatus[r.Status]++
		if stats.LastRequestAt == nil || r.CreatedAt.After(*stats.LastRequestAt) {
			created := r.CreatedAt
			stats.LastRequestAt = &created
		}
		if r.Status != domain.RequestCompleted {
			continue
		}
		stats.CollectedKg += r.EstimatedQuantityKg
		if r.CompletedAt != nil && (stats.LastCompletionAt == nil || r.CompletedAt.After(*stats.LastCompletionAt)) {
			stats.LastCompletionAt = r.CompletedAt
		}
	}

	if s.redis != nil {
		if statsJSON, err := json.Marshal(stats); err == nil {
			_ = s.redis.Set(ctx, cacheKey, statsJSON, cacheTTL).Err()
		}
	}

	return stats, nil
}

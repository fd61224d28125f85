package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/table"
)

// tickingClock advances one second per call so ordering by time is deterministic.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{now: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestRepositories(t *testing.T, seed bool) *Repositories {
	t.Helper()

	backend, err := table.NewFileBackend(t.TempDir(), nil)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Seed = seed
	opts.Now = newTickingClock().Now
	return NewRepositories(backend, opts)
}

func mustCreateAccount(t *testing.T, repos *Repositories, role domain.Role, email, neighborhood string, areas ...string) *domain.Account {
	t.Helper()

	acc := &domain.Account{
		Role:         role,
		Name:         email,
		Email:        email,
		PasswordHash: "hash",
		Neighborhood: neighborhood,
		ServiceAreas: areas,
	}
	require.NoError(t, repos.User.Create(context.Background(), acc))
	return acc
}

func mustCreateRequest(t *testing.T, repos *Repositories, residentID int64, neighborhood string) *domain.CollectionRequest {
	t.Helper()

	req := &domain.CollectionRequest{
		ResidentID:          residentID,
		Address:             "Rua A, 10",
		Neighborhood:        neighborhood,
		Materials:           []string{"paper"},
		EstimatedQuantityKg: 3.0,
	}
	require.NoError(t, repos.Request.Create(context.Background(), req))
	return req
}

func int64Ptr(v int64) *int64 { return &v }

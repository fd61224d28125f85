package repository

import (
	"context"
	"strings"
	"time"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/table"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, role *domain.Role) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, id int64, patch domain.AccountPatch) error
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type userRepository struct {
	table *table.Table[*domain.Account]
	now   func() time.Time
}

func NewUserRepository(tbl *table.Table[*domain.Account], now func() time.Time) UserRepository {
	if now == nil {
		now = time.Now
	}
	return &userRepository{table: tbl, now: now}
}

func findAccount(rows []*domain.Account, id int64) *domain.Account {
	for _, row := range rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func findAccountByEmail(rows []*domain.Account, email string) *domain.Account {
	for _, row := range rows {
		if row.Email == email {
			return row
		}
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	rows, err := r.table.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if acc := findAccount(rows, id); acc != nil {
		return acc, nil
	}
	return nil, domain.NotFoundf("account %d", id)
}

// FindByEmail returns nil without error when no account uses email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	rows, err := r.table.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return findAccountByEmail(rows, email), nil
}

func (r *userRepository) List(ctx context.Context, role *domain.Role) ([]domain.Account, error) {
	rows, err := r.table.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		if role != nil && row.Role != *role {
			continue
		}
		accounts = append(accounts, *row)
	}
	return accounts, nil
}

func (r *userRepository) Create(ctx context.Context, account *domain.Account) error {
	if strings.TrimSpace(account.Email) == "" {
		return domain.Validationf("email is required")
	}
	if !account.Role.IsValid() {
		return domain.Validationf("unknown role %q", account.Role)
	}
	if account.PasswordHash == "" {
		return domain.Validationf("password hash is required")
	}

	return r.table.Mutate(ctx, func(rows []*domain.Account, ids *table.Allocator) ([]*domain.Account, error) {
		if findAccountByEmail(rows, account.Email) != nil {
			return nil, domain.ErrDuplicateEmail
		}

		if account.Status == "" {
			account.Status = domain.StatusActive
		}
		if account.CreatedAt.IsZero() {
			account.CreatedAt = r.now().UTC()
		}
		if account.Role != domain.RoleCollector {
			account.ServiceAreas = nil
		}
		ids.Assign(account)

		stored := *account
		return append(rows, &stored), nil
	})
}

func (r *userRepository) Update(ctx context.Context, id int64, patch domain.AccountPatch) error {
	return r.table.Mutate(ctx, func(rows []*domain.Account, _ *table.Allocator) ([]*domain.Account, error) {
		acc := findAccount(rows, id)
		if acc == nil {
			return nil, domain.NotFoundf("account %d", id)
		}

		if patch.Email != nil && *patch.Email != acc.Email {
			if strings.TrimSpace(*patch.Email) == "" {
				return nil, domain.Validationf("email cannot be blank")
			}
			if findAccountByEmail(rows, *patch.Email) != nil {
				return nil, domain.ErrDuplicateEmail
			}
		}

		patch.Apply(acc)
		return rows, nil
	})
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.table.Mutate(ctx, func(rows []*domain.Account, _ *table.Allocator) ([]*domain.Account, error) {
		for i, row := range rows {
			if row.ID == id {
				return append(rows[:i], rows[i+1:]...), nil
			}
		}
		return nil, domain.NotFoundf("account %d", id)
	})
}

func (r *userRepository) SetActive(ctx context.Context, id int64, active bool) error {
	status := domain.StatusInactive
	if active {
		status = domain.StatusActive
	}
	return r.Update(ctx, id, domain.AccountPatch{Status: &status})
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	at = at.UTC()
	return r.Update(ctx, id, domain.AccountPatch{LastLogin: &at})
}

package account_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/mocks"
	"coleta-seletiva/internal/pkg/logger"
	"coleta-seletiva/internal/repository"
	"coleta-seletiva/internal/service/account"
	"coleta-seletiva/internal/service/auth"
	"coleta-seletiva/internal/table"
)

type fixture struct {
	svc    account.Service
	repos  *repository.Repositories
	users  repository.UserRepository
	email  *mocks.EmailService
	photos *mocks.PhotoStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend, err := table.NewFileBackend(t.TempDir(), nil)
	require.NoError(t, err)

	opts := repository.DefaultOptions()
	opts.Seed = false
	repos := repository.NewRepositories(backend, opts)

	f := &fixture{repos: repos, users: repos.User, email: new(mocks.EmailService), photos: new(mocks.PhotoStorage)}
	f.email.On("SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.svc = account.NewService(repos.User, repos.Notification, f.photos, f.email, nil, "pt-BR", logger.Nop())
	return f
}

func (f *fixture) register(t *testing.T, role domain.Role, name, email string) *domain.Account {
	t.Helper()
	acc, err := f.svc.Register(context.Background(), domain.RegisterInput{
		Role:     role,
		Name:     name,
		Email:    email,
		Password: "segredo",
	})
	require.NoError(t, err)
	return acc
}

func callerOf(a *domain.Account) domain.Caller {
	return domain.Caller{AccountID: a.ID, Role: a.Role}
}

func TestAccountService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		acc, err := f.svc.Register(ctx, domain.RegisterInput{
			Role:         domain.RoleCollector,
			Name:         "  João  ",
			Email:        "joao@email.com",
			Password:     "segredo",
			ServiceAreas: []string{" Centro ", "", "Zona Norte"},
		})
		require.NoError(t, err)
		assert.Equal(t, "João", acc.Name)
		assert.Equal(t, []string{"Centro", "Zona Norte"}, acc.ServiceAreas)
		assert.True(t, acc.IsActive())
		assert.True(t, strings.HasPrefix(acc.PasswordHash, "$2"))
		assert.True(t, auth.ComparePassword(acc.PasswordHash, "segredo"))
		f.email.AssertCalled(t, "SendWelcomeEmail", mock.Anything, "joao@email.com", "João")
	})

	t.Run("Welcome email failure does not fail registration", func(t *testing.T) {
		backend, err := table.NewFileBackend(t.TempDir(), nil)
		require.NoError(t, err)
		opts := repository.DefaultOptions()
		opts.Seed = false
		repos := repository.NewRepositories(backend, opts)

		emailSvc := new(mocks.EmailService)
		emailSvc.On("SendWelcomeEmail", mock.Anything, "maria@email.com", "Maria").Return(errors.New("quota exceeded")).Once()
		svc := account.NewService(repos.User, repos.Notification, new(mocks.PhotoStorage), emailSvc, nil, "pt-BR", logger.Nop())

		acc, err := svc.Register(ctx, domain.RegisterInput{Role: domain.RoleResident, Name: "Maria", Email: "maria@email.com", Password: "segredo"})
		require.NoError(t, err)
		assert.NotZero(t, acc.ID)
		emailSvc.AssertExpectations(t)
	})

	tests := []struct {
		name  string
		input domain.RegisterInput
		want  error
	}{
		{"admin role", domain.RegisterInput{Role: domain.RoleAdmin, Name: "A", Email: "a@email.com", Password: "segredo"}, domain.ErrValidation},
		{"missing name", domain.RegisterInput{Role: domain.RoleResident, Name: " ", Email: "a@email.com", Password: "segredo"}, domain.ErrValidation},
		{"bad email", domain.RegisterInput{Role: domain.RoleResident, Name: "A", Email: "not-an-email", Password: "segredo"}, domain.ErrValidation},
		{"short password", domain.RegisterInput{Role: domain.RoleResident, Name: "A", Email: "a@email.com", Password: "123"}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Register(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
			f.email.AssertNotCalled(t, "SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("Duplicate email", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, domain.RoleResident, "Maria", "maria@email.com")

		_, err := f.svc.Register(ctx, domain.RegisterInput{Role: domain.RoleCollector, Name: "Outra", Email: "maria@email.com", Password: "segredo"})
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}

func TestAccountService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	maria := f.register(t, domain.RoleResident, "Maria", "maria@email.com")
	joao := f.register(t, domain.RoleCollector, "João", "joao@email.com")

	phone := "11 99999-0000"
	inactive := domain.StatusInactive
	forged := "forged"
	admin := domain.RoleAdmin
	updated, err := f.svc.UpdateProfile(ctx, callerOf(maria), domain.AccountPatch{
		Phone:        &phone,
		Status:       &inactive,
		PasswordHash: &forged,
		Role:         &admin,
	})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.True(t, updated.IsActive(), "status is not self-editable")
	assert.Equal(t, domain.RoleResident, updated.Role, "role is not self-editable")
	assert.Equal(t, maria.PasswordHash, updated.PasswordHash)

	areas := []string{"Vila Nova", " "}
	_, err = f.svc.UpdateProfile(ctx, callerOf(maria), domain.AccountPatch{ServiceAreas: &areas})
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err = f.svc.UpdateProfile(ctx, callerOf(joao), domain.AccountPatch{ServiceAreas: &areas})
	require.NoError(t, err)
	assert.Equal(t, []string{"Vila Nova"}, updated.ServiceAreas)

	taken := "joao@email.com"
	_, err = f.svc.UpdateProfile(ctx, callerOf(maria), domain.AccountPatch{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	blank := "  "
	_, err = f.svc.UpdateProfile(ctx, callerOf(maria), domain.AccountPatch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAccountService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	maria := f.register(t, domain.RoleResident, "Maria", "maria@email.com")

	err := f.svc.ChangePassword(ctx, callerOf(maria), domain.ChangePasswordInput{CurrentPassword: "errada", NewPassword: "novasenha"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = f.svc.ChangePassword(ctx, callerOf(maria), domain.ChangePasswordInput{CurrentPassword: "segredo", NewPassword: "123"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.svc.ChangePassword(ctx, callerOf(maria), domain.ChangePasswordInput{CurrentPassword: "segredo", NewPassword: "novasenha"}))

	stored, err := f.users.GetByID(ctx, maria.ID)
	require.NoError(t, err)
	assert.True(t, auth.ComparePassword(stored.PasswordHash, "novasenha"))
	assert.False(t, auth.ComparePassword(stored.PasswordHash, "segredo"))
}

func TestAccountService_UploadPhoto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	maria := f.register(t, domain.RoleResident, "Maria", "maria@email.com")

	f.photos.On("Save", ctx, maria.ID, "eu.png", mock.Anything, int64(4)).
		Return("uploads/fotos_perfil/user_1_foto_perfil.png", nil).Once()
	f.photos.On("Save", ctx, maria.ID, "eu.bmp", mock.Anything, int64(4)).
		Return("", domain.ErrInvalidImageType).Once()

	updated, err := f.svc.UploadPhoto(ctx, callerOf(maria), "eu.png", strings.NewReader("\x89PNG"), 4)
	require.NoError(t, err)
	assert.Equal(t, "uploads/fotos_perfil/user_1_foto_perfil.png", updated.ProfilePhotoPath)

	_, err = f.svc.UploadPhoto(ctx, callerOf(maria), "eu.bmp", strings.NewReader("BMP!"), 4)
	assert.ErrorIs(t, err, domain.ErrInvalidImageType)

	stored, err := f.users.GetByID(ctx, maria.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/fotos_perfil/user_1_foto_perfil.png", stored.ProfilePhotoPath)

	f.photos.AssertExpectations(t)
}

func TestAccountService_AdminOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	maria := f.register(t, domain.RoleResident, "Maria", "maria@email.com")
	joao := f.register(t, domain.RoleCollector, "João", "joao@email.com")
	admin := domain.Caller{AccountID: 99, Role: domain.RoleAdmin}

	_, err := f.svc.List(ctx, callerOf(maria), nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.svc.SetActive(ctx, callerOf(joao), maria.ID, false), domain.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, callerOf(joao), maria.ID), domain.ErrForbidden)

	collectors := domain.RoleCollector
	list, err := f.svc.List(ctx, admin, &collectors)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, joao.ID, list[0].ID)

	bogus := domain.Role("gerente")
	_, err = f.svc.List(ctx, admin, &bogus)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.svc.SetActive(ctx, admin, joao.ID, false))
	stored, err := f.users.GetByID(ctx, joao.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive())

	assert.ErrorIs(t, f.svc.SetActive(ctx, admin, admin.AccountID, false), domain.ErrValidation)
	assert.ErrorIs(t, f.svc.Delete(ctx, admin, admin.AccountID), domain.ErrValidation)

	require.NoError(t, f.svc.Delete(ctx, admin, maria.ID))
	_, err = f.users.GetByID(ctx, maria.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, admin, maria.ID), domain.ErrNotFound)
}

func TestAccountService_CreateAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	maria := f.register(t, domain.RoleResident, "Maria", "maria@email.com")
	admin := domain.Caller{AccountID: 99, Role: domain.RoleAdmin}

	input := domain.RegisterInput{Role: domain.RoleAdmin, Name: " Carla ", Email: "carla@prefeitura.gov.br", Password: "segredo"}
	_, err := f.svc.CreateAccount(ctx, callerOf(maria), input)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	created, err := f.svc.CreateAccount(ctx, admin, input)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, created.Role)
	assert.Equal(t, "Carla", created.Name)
	assert.True(t, auth.ComparePassword(created.PasswordHash, "segredo"))

	inbox, err := f.repos.Notification.ListForUser(ctx, created.ID, &created.Role)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Bem-vindo ao Sistema de Coleta Seletiva Conectada", inbox[0].Title)
	assert.Contains(t, inbox[0].Body, "Carla")
	assert.False(t, inbox[0].Read)

	_, err = f.svc.CreateAccount(ctx, admin, domain.RegisterInput{Role: "gerente", Name: "X", Email: "x@email.com", Password: "segredo"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.CreateAccount(ctx, admin, domain.RegisterInput{Role: domain.RoleCollector, Name: "Outra", Email: "maria@email.com", Password: "segredo"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAccountService_CreateAccountWelcomeIsBestEffort(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend, err := table.NewFileBackend(dir, nil)
	require.NoError(t, err)
	opts := repository.DefaultOptions()
	opts.Seed = false
	repos := repository.NewRepositories(backend, opts)

	// Notifications become unreadable; accounts stay writable.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notifications.json"), []byte("{not json"), 0o644))

	emailSvc := new(mocks.EmailService)
	emailSvc.On("SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	var logs bytes.Buffer
	svc := account.NewService(repos.User, repos.Notification, new(mocks.PhotoStorage), emailSvc, nil, "pt-BR", logger.NewWithWriter(&logs))

	created, err := svc.CreateAccount(ctx, domain.Caller{AccountID: 99, Role: domain.RoleAdmin},
		domain.RegisterInput{Role: domain.RoleCollector, Name: "João", Email: "joao@email.com", Password: "segredo"})
	require.NoError(t, err)

	stored, err := repos.User.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "João", stored.Name)
	assert.Contains(t, logs.String(), "failed to send welcome notification")
}

func TestAccountService_UpdateAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	maria := f.register(t, domain.RoleResident, "Maria", "maria@email.com")
	joao := f.register(t, domain.RoleCollector, "João", "joao@email.com")
	admin := domain.Caller{AccountID: 99, Role: domain.RoleAdmin}

	areas := []string{"Centro", " "}
	updated, err := f.svc.UpdateAccount(ctx, admin, joao.ID, domain.AccountPatch{ServiceAreas: &areas})
	require.NoError(t, err)
	assert.Equal(t, []string{"Centro"}, updated.ServiceAreas)

	name := "  João Silva "
	resident := domain.RoleResident
	forged := "forged"
	updated, err = f.svc.UpdateAccount(ctx, admin, joao.ID, domain.AccountPatch{Role: &resident, Name: &name, PasswordHash: &forged})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleResident, updated.Role)
	assert.Equal(t, "João Silva", updated.Name)
	assert.Empty(t, updated.ServiceAreas, "leaving the collector role drops service areas")
	assert.Equal(t, joao.PasswordHash, updated.PasswordHash)

	_, err = f.svc.UpdateAccount(ctx, callerOf(maria), joao.ID, domain.AccountPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.UpdateAccount(ctx, admin, maria.ID, domain.AccountPatch{ServiceAreas: &areas})
	assert.ErrorIs(t, err, domain.ErrValidation, "residents have no service areas")

	collector := domain.RoleCollector
	updated, err = f.svc.UpdateAccount(ctx, admin, maria.ID, domain.AccountPatch{Role: &collector, ServiceAreas: &areas})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCollector, updated.Role)
	assert.Equal(t, []string{"Centro"}, updated.ServiceAreas)

	bogus := domain.Role("gerente")
	_, err = f.svc.UpdateAccount(ctx, admin, maria.ID, domain.AccountPatch{Role: &bogus})
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad := "sem-arroba"
	_, err = f.svc.UpdateAccount(ctx, admin, maria.ID, domain.AccountPatch{Email: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	taken := "joao@email.com"
	_, err = f.svc.UpdateAccount(ctx, admin, maria.ID, domain.AccountPatch{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	_, err = f.svc.UpdateAccount(ctx, admin, 404, domain.AccountPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type statsInvalidator struct {
	mock.Mock
}

func (m *statsInvalidator) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestAccountService_AdminWritesInvalidateDashboardStats(t *testing.T) {
	ctx := context.Background()
	backend, err := table.NewFileBackend(t.TempDir(), nil)
	require.NoError(t, err)
	opts := repository.DefaultOptions()
	opts.Seed = false
	repos := repository.NewRepositories(backend, opts)

	emailSvc := new(mocks.EmailService)
	emailSvc.On("SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	stats := new(statsInvalidator)
	stats.On("Invalidate", mock.Anything).Return(nil)
	svc := account.NewService(repos.User, repos.Notification, new(mocks.PhotoStorage), emailSvc, stats, "pt-BR", logger.Nop())
	admin := domain.Caller{AccountID: 99, Role: domain.RoleAdmin}

	maria, err := svc.CreateAccount(ctx, admin, domain.RegisterInput{Role: domain.RoleResident, Name: "Maria", Email: "maria@email.com", Password: "segredo"})
	require.NoError(t, err)

	phone := "11 90000-0000"
	_, err = svc.UpdateAccount(ctx, admin, maria.ID, domain.AccountPatch{Phone: &phone})
	require.NoError(t, err)
	stats.AssertNumberOfCalls(t, "Invalidate", 1)

	collector := domain.RoleCollector
	_, err = svc.UpdateAccount(ctx, admin, maria.ID, domain.AccountPatch{Role: &collector})
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, admin, maria.ID, false))
	require.NoError(t, svc.Delete(ctx, admin, maria.ID))
	stats.AssertNumberOfCalls(t, "Invalidate", 4)
}

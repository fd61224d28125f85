package account

import (
	"context"
	"io"
	"net/mail"
	"strings"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/pkg/i18n"
	"coleta-seletiva/internal/pkg/logger"
	"coleta-seletiva/internal/repository"
	"coleta-seletiva/internal/service/auth"
	"coleta-seletiva/internal/service/dashboard"
	"coleta-seletiva/internal/service/email"
	"coleta-seletiva/internal/service/photo"
)

const minPasswordLength = 6

type Service interface {
	Register(ctx context.Context, input domain.RegisterInput) (*domain.Account, error)
	Profile(ctx context.Context, caller domain.Caller) (*domain.Account, error)
	UpdateProfile(ctx context.Context, caller domain.Caller, patch domain.AccountPatch) (*domain.Account, error)
	ChangePassword(ctx context.Context, caller domain.Caller, input domain.ChangePasswordInput) error
	UploadPhoto(ctx context.Context, caller domain.Caller, filename string, r io.Reader, size int64) (*domain.Account, error)

	List(ctx context.Context, caller domain.Caller, role *domain.Role) ([]domain.Account, error)
	CreateAccount(ctx context.Context, caller domain.Caller, input domain.RegisterInput) (*domain.Account, error)
	UpdateAccount(ctx context.Context, caller domain.Caller, id int64, patch domain.AccountPatch) (*domain.Account, error)
	SetActive(ctx context.Context, caller domain.Caller, id int64, active bool) error
	Delete(ctx context.Context, caller domain.Caller, id int64) error
}

type service struct {
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	photos    photo.Storage
	emailSvc  email.Service
	stats     dashboard.Invalidator
	locale    string
	log       *logger.Logger
}

// NewService builds the account service. stats may be nil.
func NewService(
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	photos photo.Storage,
	emailSvc email.Service,
	stats dashboard.Invalidator,
	locale string,
	log *logger.Logger,
) Service {
	if log == nil {
		log = logger.Nop()
	}
	if locale == "" {
		locale = i18n.DefaultLocale
	}
	return &service{
		userRepo:  userRepo,
		notifRepo: notifRepo,
		photos:    photos,
		emailSvc:  emailSvc,
		stats:     stats,
		locale:    locale,
		log:       log.Named("account"),
	}
}

func validEmail(address string) bool {
	parsed, err := mail.ParseAddress(address)
	return err == nil && parsed.Address == address
}

// Register creates a resident or collector account. Admin accounts come from
// CreateAccount or the seed.
func (s *service) Register(ctx context.Context, input domain.RegisterInput) (*domain.Account, error) {
	if input.Role != domain.RoleResident && input.Role != domain.RoleCollector {
		return nil, domain.Validationf("role must be %q or %q", domain.RoleResident, domain.RoleCollector)
	}
	return s.create(ctx, input)
}

// CreateAccount lets an admin create an account of any role. The new user
// also gets a welcome notification in the app.
func (s *service) CreateAccount(ctx context.Context, caller domain.Caller, input domain.RegisterInput) (*domain.Account, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	if !input.Role.IsValid() {
		return nil, domain.Validationf("unknown role %q", input.Role)
	}

	account, err := s.create(ctx, input)
	if err != nil {
		return nil, err
	}

	_, err = s.notifRepo.Send(ctx, &domain.Notification{
		RecipientID:   account.ID,
		RecipientRole: account.Role,
		Kind:          domain.KindPlain,
		Title:         i18n.Translate(s.locale, "WELCOME_TITLE"),
		Body:          i18n.Format(s.locale, "WELCOME_BODY", account.Name),
	})
	if err != nil {
		s.log.Warn().Err(err).Int64("recipient_id", account.ID).Msg("failed to send welcome notification")
	}
	return account, nil
}

func (s *service) create(ctx context.Context, input domain.RegisterInput) (*domain.Account, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Name = strings.TrimSpace(input.Name)

	if input.Name == "" {
		return nil, domain.Validationf("name is required")
	}
	if !validEmail(input.Email) {
		return nil, domain.Validationf("invalid email address")
	}
	if len(input.Password) < minPasswordLength {
		return nil, domain.Validationf("password must have at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Role:         input.Role,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Phone:        input.Phone,
		Address:      input.Address,
		Neighborhood: strings.TrimSpace(input.Neighborhood),
		ServiceAreas: cleanAreas(input.ServiceAreas),
	}
	if err := s.userRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if err := s.emailSvc.SendWelcomeEmail(ctx, account.Email, account.Name); err != nil {
		s.log.Warn().Err(err).Int64("recipient_id", account.ID).Msg("failed to send welcome email")
	}
	s.invalidateStats(ctx, account.ID)
	return account, nil
}

func (s *service) invalidateStats(ctx context.Context, accountID int64) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Int64("account_id", accountID).Msg("failed to invalidate dashboard stats")
	}
}

func cleanAreas(areas []string) []string {
	out := make([]string, 0, len(areas))
	for _, a := range areas {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func (s *service) Profile(ctx context.Context, caller domain.Caller) (*domain.Account, error) {
	return s.userRepo.GetByID(ctx, caller.AccountID)
}

// UpdateProfile merges the contact fields a user may edit themselves.
func (s *service) UpdateProfile(ctx context.Context, caller domain.Caller, patch domain.AccountPatch) (*domain.Account, error) {
	patch.Role = nil
	patch.PasswordHash = nil
	patch.Status = nil
	patch.LastLogin = nil
	patch.ProfilePhotoPath = nil

	if patch.Email != nil {
		address := strings.TrimSpace(*patch.Email)
		if !validEmail(address) {
			return nil, domain.Validationf("invalid email address")
		}
		patch.Email = &address
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, domain.Validationf("name cannot be empty")
	}
	if patch.ServiceAreas != nil {
		if !caller.Is(domain.RoleCollector) {
			return nil, domain.Validationf("only collectors have service areas")
		}
		areas := cleanAreas(*patch.ServiceAreas)
		patch.ServiceAreas = &areas
	}

	if err := s.userRepo.Update(ctx, caller.AccountID, patch); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, caller.AccountID)
}

func (s *service) ChangePassword(ctx context.Context, caller domain.Caller, input domain.ChangePasswordInput) error {
	account, err := s.userRepo.GetByID(ctx, caller.AccountID)
	if err != nil {
		return err
	}
	if !auth.ComparePassword(account.PasswordHash, input.CurrentPassword) {
		return domain.ErrInvalidCredentials
	}
	if len(input.NewPassword) < minPasswordLength {
		return domain.Validationf("password must have at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return s.userRepo.Update(ctx, account.ID, domain.AccountPatch{PasswordHash: &hash})
}

func (s *service) UploadPhoto(ctx context.Context, caller domain.Caller, filename string, r io.Reader, size int64) (*domain.Account, error) {
	if _, err := s.userRepo.GetByID(ctx, caller.AccountID); err != nil {
		return nil, err
	}

	rel, err := s.photos.Save(ctx, caller.AccountID, filename, r, size)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, caller.AccountID, domain.AccountPatch{ProfilePhotoPath: &rel}); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, caller.AccountID)
}

func (s *service) List(ctx context.Context, caller domain.Caller, role *domain.Role) ([]domain.Account, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	if role != nil && !role.IsValid() {
		return nil, domain.Validationf("unknown role %q", *role)
	}
	return s.userRepo.List(ctx, role)
}

// UpdateAccount lets an admin edit another account, role included. Moving an
// account out of the collector role drops its service areas.
func (s *service) UpdateAccount(ctx context.Context, caller domain.Caller, id int64, patch domain.AccountPatch) (*domain.Account, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	patch.PasswordHash = nil
	patch.Status = nil
	patch.LastLogin = nil
	patch.ProfilePhotoPath = nil

	current, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role := current.Role
	if patch.Role != nil {
		if !patch.Role.IsValid() {
			return nil, domain.Validationf("unknown role %q", *patch.Role)
		}
		if id == caller.AccountID && *patch.Role != domain.RoleAdmin {
			return nil, domain.Validationf("admins cannot change their own role")
		}
		role = *patch.Role
	}
	if patch.Email != nil {
		address := strings.TrimSpace(*patch.Email)
		if !validEmail(address) {
			return nil, domain.Validationf("invalid email address")
		}
		patch.Email = &address
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.Validationf("name cannot be empty")
		}
		patch.Name = &name
	}
	if patch.ServiceAreas != nil {
		if role != domain.RoleCollector {
			return nil, domain.Validationf("only collectors have service areas")
		}
		areas := cleanAreas(*patch.ServiceAreas)
		patch.ServiceAreas = &areas
	}

	if err := s.userRepo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	if patch.Role != nil && *patch.Role != current.Role {
		s.invalidateStats(ctx, id)
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *service) SetActive(ctx context.Context, caller domain.Caller, id int64, active bool) error {
	if !caller.Is(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	if id == caller.AccountID && !active {
		return domain.Validationf("admins cannot deactivate themselves")
	}
	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidateStats(ctx, id)
	return nil
}

func (s *service) Delete(ctx context.Context, caller domain.Caller, id int64) error {
	if !caller.Is(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	if id == caller.AccountID {
		return domain.Validationf("admins cannot delete themselves")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateStats(ctx, id)
	return nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/pkg/logger"
	"coleta-seletiva/internal/repository"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Service interface {
	Login(ctx context.Context, input domain.LoginInput) (*domain.Account, *domain.TokenPair, error)
	Authenticate(ctx context.Context, email, password string, role *domain.Role) (*domain.Account, error)
	IssueToken(account *domain.Account) (*domain.TokenPair, error)
	ValidateAccessToken(token string) (*Claims, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
}

type Claims struct {
	AccountID int64       `json:"account_id"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Caller() domain.Caller {
	return domain.Caller{AccountID: c.AccountID, Role: c.Role}
}

type Config struct {
	Secret    string
	AccessTTL time.Duration
	Issuer    string
}

type service struct {
	userRepo repository.UserRepository
	cfg      Config
	log      *logger.Logger
	now      func() time.Time
}

func NewService(userRepo repository.UserRepository, cfg Config, log *logger.Logger) Service {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &service{userRepo: userRepo, cfg: cfg, log: log.Named("auth"), now: time.Now}
}

func (s *service) Login(ctx context.Context, input domain.LoginInput) (*domain.Account, *domain.TokenPair, error) {
	account, err := s.Authenticate(ctx, input.Email, input.Password, input.Role)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.IssueToken(account)
	if err != nil {
		return nil, nil, err
	}
	return account, tokens, nil
}

// Authenticate checks the credentials and, when role is given, that the
// account holds it. A successful login records the time and upgrades a
// legacy password digest to bcrypt.
func (s *service) Authenticate(ctx context.Context, email, password string, role *domain.Role) (*domain.Account, error) {
	account, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil || !ComparePassword(account.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	if role != nil && account.Role != *role {
		return nil, domain.ErrInvalidCredentials
	}
	if !account.IsActive() {
		return nil, domain.ErrInactiveAccount
	}

	now := s.now().UTC()
	patch := domain.AccountPatch{LastLogin: &now}
	if IsLegacyHash(account.PasswordHash) {
		if upgraded, err := HashPassword(password); err == nil {
			patch.PasswordHash = &upgraded
		}
	}
	if err := s.userRepo.Update(ctx, account.ID, patch); err != nil {
		s.log.Warn().Err(err).Int64("account_id", account.ID).Msg("failed to record login")
	} else {
		patch.Apply(account)
	}

	return account, nil
}

func (s *service) IssueToken(account *domain.Account) (*domain.TokenPair, error) {
	now := s.now()
	claims := Claims{
		AccountID: account.ID,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(account.ID, 10),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken: token,
		ExpiresIn:   int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetAccount loads the account behind a token. Inactive accounts are refused.
func (s *service) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, domain.ErrInactiveAccount
	}
	return account, nil
}

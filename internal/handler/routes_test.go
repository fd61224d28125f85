package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coleta-seletiva/internal/config"
	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/handler"
	"coleta-seletiva/internal/middleware"
	"coleta-seletiva/internal/pkg/logger"
	"coleta-seletiva/internal/repository"
	"coleta-seletiva/internal/service"
	"coleta-seletiva/internal/service/auth"
	"coleta-seletiva/internal/service/events"
	"coleta-seletiva/internal/service/photo"
	"coleta-seletiva/internal/table"
)

type client struct {
	t     *testing.T
	app   *fiber.App
	repos *repository.Repositories
}

func newClient(t *testing.T) *client {
	t.Helper()
	backend, err := table.NewFileBackend(t.TempDir(), nil)
	require.NoError(t, err)

	opts := repository.DefaultOptions()
	opts.Seed = false
	repos := repository.NewRepositories(backend, opts)

	cfg := &config.Config{JWTSecret: "routes-secret", JWTAccessExpiry: time.Hour, Locale: "pt-BR", ChatMaxLength: 500}
	services := service.NewServices(repos, photo.NewLocalStorage(t.TempDir()), events.Nop{}, nil, cfg, logger.Nop())

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	handler.SetupRoutes(app, handler.NewHandlers(services), services.Auth)
	return &client{t: t, app: app, repos: repos}
}

func (c *client) do(method, path, token string, body any, out any) int {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (c *client) signup(input domain.RegisterInput) string {
	c.t.Helper()
	require.Equal(c.t, http.StatusCreated, c.do("POST", "/api/v1/auth/register", "", input, nil))

	var login struct {
		AccessToken string             `json:"access_token"`
		User        domain.AccountView `json:"user"`
	}
	status := c.do("POST", "/api/v1/auth/login", "", domain.LoginInput{Email: input.Email, Password: input.Password}, &login)
	require.Equal(c.t, http.StatusOK, status)
	require.NotEmpty(c.t, login.AccessToken)
	assert.Equal(c.t, input.Role, login.User.Role)
	return login.AccessToken
}

// admin stores an admin account directly, since the API never lets one sign
// up, and logs it in.
func (c *client) admin() string {
	c.t.Helper()
	hash, err := auth.HashPassword("admin123")
	require.NoError(c.t, err)
	require.NoError(c.t, c.repos.User.Create(context.Background(), &domain.Account{
		Role: domain.RoleAdmin, Name: "Admin", Email: "admin@coleta.com", PasswordHash: hash,
	}))

	var login struct {
		AccessToken string `json:"access_token"`
	}
	status := c.do("POST", "/api/v1/auth/login", "", domain.LoginInput{Email: "admin@coleta.com", Password: "admin123"}, &login)
	require.Equal(c.t, http.StatusOK, status)
	return login.AccessToken
}

func TestRoutes_RequestLifecycle(t *testing.T) {
	c := newClient(t)

	assert.Equal(t, http.StatusOK, c.do("GET", "/health", "", nil, nil))

	resident := c.signup(domain.RegisterInput{
		Role: domain.RoleResident, Name: "Maria", Email: "maria@email.com", Password: "segredo",
		Address: "Rua das Flores, 10", Neighborhood: "Centro",
	})
	collector := c.signup(domain.RegisterInput{
		Role: domain.RoleCollector, Name: "João", Email: "joao@email.com", Password: "segredo",
		ServiceAreas: []string{"Centro"},
	})

	var created domain.CollectionRequest
	status := c.do("POST", "/api/v1/requests/", resident, domain.CreateRequestInput{
		Materials: []string{"Papel", "Vidro"}, EstimatedQuantityKg: 3.5, RequestedDate: "2025-07-10",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, domain.RequestPending, created.Status)
	assert.Equal(t, "Rua das Flores, 10", created.Address)

	var available []domain.CollectionRequest
	require.Equal(t, http.StatusOK, c.do("GET", "/api/v1/requests/available", collector, nil, &available))
	require.Len(t, available, 1)

	path := fmt.Sprintf("/api/v1/requests/%d", created.ID)
	assert.Equal(t, http.StatusForbidden, c.do("POST", path+"/accept", resident, nil, nil))

	var scheduled domain.CollectionRequest
	require.Equal(t, http.StatusOK, c.do("POST", path+"/accept", collector, nil, &scheduled))
	assert.Equal(t, domain.RequestScheduled, scheduled.Status)

	var conflict middleware.ErrorResponse
	assert.Equal(t, http.StatusConflict, c.do("POST", path+"/accept", collector, nil, &conflict))
	assert.Equal(t, "CONFLICT", conflict.Code)

	var unread struct {
		Count int64 `json:"count"`
	}
	require.Equal(t, http.StatusOK, c.do("GET", "/api/v1/notifications/unread-count", resident, nil, &unread))
	assert.Equal(t, int64(1), unread.Count)

	require.Equal(t, http.StatusCreated, c.do("POST", path+"/chat", resident, map[string]string{"body": "Estarei em casa"}, nil))

	var transcript []domain.Notification
	require.Equal(t, http.StatusOK, c.do("GET", path+"/chat", collector, nil, &transcript))
	require.Len(t, transcript, 1)
	assert.Equal(t, "Estarei em casa", transcript[0].Body)

	var mine []domain.CollectionRequest
	require.Equal(t, http.StatusOK, c.do("GET", "/api/v1/requests/mine", collector, nil, &mine))
	assert.Len(t, mine, 1)
}

func TestRoutes_Guards(t *testing.T) {
	c := newClient(t)
	resident := c.signup(domain.RegisterInput{Role: domain.RoleResident, Name: "Maria", Email: "maria@email.com", Password: "segredo"})

	assert.Equal(t, http.StatusUnauthorized, c.do("GET", "/api/v1/users/me", "", nil, nil))
	assert.Equal(t, http.StatusForbidden, c.do("GET", "/api/v1/users/", resident, nil, nil))
	assert.Equal(t, http.StatusBadRequest, c.do("GET", "/api/v1/requests/abc", resident, nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do("GET", "/api/v1/requests/99", resident, nil, nil))

	var bad middleware.ErrorResponse
	status := c.do("POST", "/api/v1/auth/login", "", domain.LoginInput{Email: "maria@email.com", Password: "errada"}, &bad)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", bad.Code)

	var articles []domain.Article
	assert.Equal(t, http.StatusOK, c.do("GET", "/api/v1/content/articles", "", nil, &articles))
	assert.NotNil(t, articles)
}

func TestRoutes_AdminManagesAccounts(t *testing.T) {
	c := newClient(t)
	admin := c.admin()
	resident := c.signup(domain.RegisterInput{Role: domain.RoleResident, Name: "Maria", Email: "maria@email.com", Password: "segredo"})

	input := domain.RegisterInput{
		Role: domain.RoleCollector, Name: "João", Email: "joao@email.com", Password: "segredo",
		ServiceAreas: []string{"Centro", "Vila Nova"},
	}
	assert.Equal(t, http.StatusForbidden, c.do("POST", "/api/v1/users/", resident, input, nil))

	var created domain.AccountView
	require.Equal(t, http.StatusCreated, c.do("POST", "/api/v1/users/", admin, input, &created))
	assert.Equal(t, domain.RoleCollector, created.Role)
	assert.Equal(t, []string{"Centro", "Vila Nova"}, created.ServiceAreas)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.Equal(t, http.StatusOK, c.do("POST", "/api/v1/auth/login", "", domain.LoginInput{Email: "joao@email.com", Password: "segredo"}, &login))

	var inbox domain.Inbox
	require.Equal(t, http.StatusOK, c.do("GET", "/api/v1/notifications/", login.AccessToken, nil, &inbox))
	require.Len(t, inbox.Unread, 1)
	assert.Contains(t, inbox.Unread[0].Body, "João")

	path := fmt.Sprintf("/api/v1/users/%d", created.ID)
	assert.Equal(t, http.StatusForbidden, c.do("PUT", path, resident, map[string]any{"name": "Hacker"}, nil))

	var updated domain.AccountView
	require.Equal(t, http.StatusOK, c.do("PUT", path, admin, map[string]any{"role": "resident", "phone": "11 98888-7777"}, &updated))
	assert.Equal(t, domain.RoleResident, updated.Role)
	assert.Equal(t, "11 98888-7777", updated.Phone)
	assert.Empty(t, updated.ServiceAreas)

	assert.Equal(t, http.StatusBadRequest, c.do("PUT", path, admin, map[string]any{"role": "gerente"}, nil))
	assert.Equal(t, http.StatusConflict, c.do("PUT", path, admin, map[string]any{"email": "maria@email.com"}, nil))
	assert.Equal(t, http.StatusNotFound, c.do("PUT", "/api/v1/users/404", admin, map[string]any{"name": "X"}, nil))
}

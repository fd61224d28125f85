package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"coleta-seletiva/internal/domain"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	args := m.Called(ctx, toEmail, name)
	return args.Error(0)
}

func (m *EmailService) SendRequestStatusEmail(ctx context.Context, toEmail, name string, req *domain.CollectionRequest, message string) error {
	args := m.Called(ctx, toEmail, name, req, message)
	return args.Error(0)
}

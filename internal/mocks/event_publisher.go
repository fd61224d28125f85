package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"coleta-seletiva/internal/domain"
)

type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) Publish(ctx context.Context, event domain.RequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"coleta-seletiva/internal/domain"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) Inbox(ctx context.Context, caller domain.Caller) (*domain.Inbox, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inbox), args.Error(1)
}

func (m *NotificationService) UnreadCount(ctx context.Context, caller domain.Caller) (int64, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) MarkRead(ctx context.Context, caller domain.Caller, id int64) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *NotificationService) MarkAllRead(ctx context.Context, caller domain.Caller) (int, error) {
	args := m.Called(ctx, caller)
	return args.Int(0), args.Error(1)
}

func (m *NotificationService) SendChat(ctx context.Context, caller domain.Caller, requestID int64, body string) (*domain.Notification, error) {
	args := m.Called(ctx, caller, requestID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationService) Transcript(ctx context.Context, caller domain.Caller, requestID int64) ([]domain.Notification, error) {
	args := m.Called(ctx, caller, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *NotificationService) NotifyNewRequest(ctx context.Context, req *domain.CollectionRequest, resident *domain.Account, collectorID int64) error {
	args := m.Called(ctx, req, resident, collectorID)
	return args.Error(0)
}

func (m *NotificationService) NotifyRequestStatus(ctx context.Context, req *domain.CollectionRequest, collector *domain.Account) error {
	args := m.Called(ctx, req, collector)
	return args.Error(0)
}

package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type PhotoStorage struct {
	mock.Mock
}

func (m *PhotoStorage) Save(ctx context.Context, accountID int64, originalName string, r io.Reader, size int64) (string, error) {
	args := m.Called(ctx, accountID, originalName, r, size)
	return args.String(0), args.Error(1)
}

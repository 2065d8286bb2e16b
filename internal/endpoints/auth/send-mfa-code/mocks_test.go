package sendmfacode

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"partner-dashboard/internal/common/auth"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	return m.Called(ctx, userID, code, expiresAt).Error(0)
}

type MockCooldown struct {
	mock.Mock
}

func (m *MockCooldown) Acquire(ctx context.Context, userID string, window time.Duration) (bool, time.Duration, error) {
	args := m.Called(ctx, userID, window)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}

func (m *MockCooldown) Release(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func (m *MockMailer) Provider() string { return "MOCK" }

type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) Resolve(ctx context.Context, token string) (*auth.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/deliverzler/functions/internal/domain"
	"github.com/deliverzler/functions/internal/identity"
)

// --- Mock Repositories ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) ListByStore(ctx context.Context, storeID string) ([]domain.Review, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

type mockStoreRepository struct {
	mock.Mock
}

func (m *mockStoreRepository) UpdateRating(ctx context.Context, storeID string, summary domain.RatingSummary) error {
	return m.Called(ctx, storeID, summary).Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Set(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Create(ctx context.Context, adminID string, n *domain.AdminNotification) error {
	return m.Called(ctx, adminID, n).Error(0)
}

type mockMarkerRepository struct {
	mock.Mock
}

func (m *mockMarkerRepository) Claim(ctx context.Context, uid string) (bool, error) {
	args := m.Called(ctx, uid)
	return args.Bool(0), args.Error(1)
}

func (m *mockMarkerRepository) Release(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockMarkerRepository) Get(ctx context.Context) (*domain.BootstrapMarker, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BootstrapMarker), args.Error(1)
}

// --- Mock Identity Provider ---

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateAccount(ctx context.Context, in domain.NewAccount) (*domain.Account, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockProvider) DeleteAccount(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockProvider) GetAccount(ctx context.Context, uid string) (*domain.Account, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockProvider) ListAccounts(ctx context.Context, pageToken string) (*identity.Page, error) {
	args := m.Called(ctx, pageToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Page), args.Error(1)
}

func (m *mockProvider) SetClaims(ctx context.Context, uid string, claims domain.Claims) error {
	return m.Called(ctx, uid, claims).Error(0)
}

func (m *mockProvider) VerifyToken(ctx context.Context, token string) (*domain.Caller, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caller), args.Error(1)
}

// --- Mock Topic Sender ---

type mockTopicSender struct {
	mock.Mock
}

func (m *mockTopicSender) SendToTopic(ctx context.Context, topic string, msg domain.TopicMessage) error {
	return m.Called(ctx, topic, msg).Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func rating(v float64) *float64 { return &v }

func superAdminCaller() *domain.Caller {
	return &domain.Caller{UID: "super-1", Email: "root@example.com", Claims: domain.SuperAdminClaims()}
}

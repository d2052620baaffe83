package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/phenrril/newmobile/internal/domain"
)

type mockPurchaseRepo struct{ mock.Mock }

func (m *mockPurchaseRepo) Create(ctx context.Context, p *domain.Purchase) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPurchaseRepo) ListRecent(ctx context.Context, limit int) ([]domain.Purchase, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]domain.Purchase)
	return list, args.Error(1)
}

func (m *mockPurchaseRepo) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Purchase, error) {
	args := m.Called(ctx, from, to)
	list, _ := args.Get(0).([]domain.Purchase)
	return list, args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.User)
	return list, args.Error(1)
}

type notifierFunc func(ctx context.Context, p *domain.Purchase) error

func (f notifierFunc) PurchaseRecorded(ctx context.Context, p *domain.Purchase) error {
	return f(ctx, p)
}

package mocks

import (
	"context"

	"github.com/you/authgate/domain"
)

// MockAccountRepository implements domain.AccountRepository for testing
type MockAccountRepository struct {
	CreateFunc         func(ctx context.Context, account *domain.Account) error
	FindByUserFunc     func(ctx context.Context, userID string) ([]*domain.Account, error)
	FindByProviderFunc func(ctx context.Context, providerID, accountID string) (*domain.Account, error)
	UpdatePasswordFunc func(ctx context.Context, id, passwordHash string) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil
}

func (m *MockAccountRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockAccountRepository) FindByProvider(ctx context.Context, providerID, accountID string) (*domain.Account, error) {
	if m.FindByProviderFunc != nil {
		return m.FindByProviderFunc(ctx, providerID, accountID)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

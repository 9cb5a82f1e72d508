package mocks

import (
	"context"

	"github.com/you/authgate/domain"
)

// MockSessionRepository implements domain.SessionRepository for testing
type MockSessionRepository struct {
	CreateFunc       func(ctx context.Context, session *domain.Session) error
	FindByIDFunc     func(ctx context.Context, sessionID string) (*domain.Session, error)
	FindByUserFunc   func(ctx context.Context, userID string, limit int) ([]*domain.Session, error)
	DeleteFunc       func(ctx context.Context, sessionID string) error
	DeleteByUserFunc func(ctx context.Context, userID string) error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) FindByUser(ctx context.Context, userID string, limit int) ([]*domain.Session, error) {
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockSessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	if m.DeleteByUserFunc != nil {
		return m.DeleteByUserFunc(ctx, userID)
	}
	return nil
}

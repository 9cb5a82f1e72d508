package mocks

import (
	"context"
	"time"

	"github.com/you/authgate/domain"
)

// MockPasswordService implements domain.PasswordService for testing
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool
}

func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	return hashedPassword == "hashed:"+password
}

// MockTokenService implements domain.TokenService for testing
type MockTokenService struct {
	GenerateSessionTokenFunc func(userID, sessionID string, ttl time.Duration) (string, error)
	ValidateSessionTokenFunc func(token string) (*domain.SessionTokenClaims, error)
}

func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) GenerateSessionToken(userID, sessionID string, ttl time.Duration) (string, error) {
	if m.GenerateSessionTokenFunc != nil {
		return m.GenerateSessionTokenFunc(userID, sessionID, ttl)
	}
	return "token:" + userID + ":" + sessionID, nil
}

func (m *MockTokenService) ValidateSessionToken(token string) (*domain.SessionTokenClaims, error) {
	if m.ValidateSessionTokenFunc != nil {
		return m.ValidateSessionTokenFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

// MockNotificationService implements domain.NotificationService for testing
type MockNotificationService struct {
	SendEmailFunc func(ctx context.Context, to, subject, html string) error
	Sent          []string
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) SendEmail(ctx context.Context, to, subject, html string) error {
	m.Sent = append(m.Sent, to)
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, to, subject, html)
	}
	return nil
}

// MockTransientStore implements domain.TransientStore for testing
type MockTransientStore struct {
	PutFunc  func(ctx context.Context, key, value string, ttl time.Duration) error
	TakeFunc func(ctx context.Context, key string) (string, error)
	values   map[string]string
}

func NewMockTransientStore() *MockTransientStore {
	return &MockTransientStore{values: make(map[string]string)}
}

func (m *MockTransientStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, value, ttl)
	}
	m.values[key] = value
	return nil
}

func (m *MockTransientStore) Take(ctx context.Context, key string) (string, error) {
	if m.TakeFunc != nil {
		return m.TakeFunc(ctx, key)
	}
	value, ok := m.values[key]
	if !ok {
		return "", domain.ErrResetTokenInvalid
	}
	delete(m.values, key)
	return value, nil
}

// MockSocialGateway implements domain.SocialGateway for testing
type MockSocialGateway struct {
	AuthCodeURLFunc  func(provider domain.SocialProvider, state string) (string, error)
	FetchProfileFunc func(ctx context.Context, provider domain.SocialProvider, code string) (*domain.SocialProfile, error)
}

func NewMockSocialGateway() *MockSocialGateway {
	return &MockSocialGateway{}
}

func (m *MockSocialGateway) AuthCodeURL(provider domain.SocialProvider, state string) (string, error) {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(provider, state)
	}
	return "https://provider.example/authorize?state=" + state, nil
}

func (m *MockSocialGateway) FetchProfile(ctx context.Context, provider domain.SocialProvider, code string) (*domain.SocialProfile, error) {
	if m.FetchProfileFunc != nil {
		return m.FetchProfileFunc(ctx, provider, code)
	}
	return nil, domain.ErrUnknownProvider
}

package mocks

import (
	"context"

	"github.com/you/authgate/domain"
)

// MockAuthService implements domain.AuthService for handler testing
type MockAuthService struct {
	RegisterFunc             func(ctx context.Context, email, password, name string) (*domain.User, error)
	SignInFunc               func(ctx context.Context, email, password, ip, userAgent string) (*domain.AuthResult, error)
	SignOutFunc              func(ctx context.Context, token string) error
	GetSessionFunc           func(ctx context.Context, token string) (*domain.SessionContext, error)
	SocialRedirectFunc       func(ctx context.Context, provider domain.SocialProvider, callbackURL string) (string, error)
	CompleteSocialSignInFunc func(ctx context.Context, provider domain.SocialProvider, state, code, ip, userAgent string) (*domain.AuthResult, string, error)
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ResetPasswordFunc        func(ctx context.Context, token, password string) error
	ListUsersFunc            func(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, name)
	}
	return &domain.User{ID: "user-mock", Email: email, Name: name, Role: domain.RoleUser}, nil
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password, ip, userAgent string) (*domain.AuthResult, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password, ip, userAgent)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, token)
	}
	return nil
}

func (m *MockAuthService) GetSession(ctx context.Context, token string) (*domain.SessionContext, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, token)
	}
	return nil, nil
}

func (m *MockAuthService) SocialRedirect(ctx context.Context, provider domain.SocialProvider, callbackURL string) (string, error) {
	if m.SocialRedirectFunc != nil {
		return m.SocialRedirectFunc(ctx, provider, callbackURL)
	}
	return "", domain.ErrUnknownProvider
}

func (m *MockAuthService) CompleteSocialSignIn(ctx context.Context, provider domain.SocialProvider, state, code, ip, userAgent string) (*domain.AuthResult, string, error) {
	if m.CompleteSocialSignInFunc != nil {
		return m.CompleteSocialSignInFunc(ctx, provider, state, code, ip, userAgent)
	}
	return nil, "", domain.ErrStateMismatch
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, password string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, password)
	}
	return nil
}

func (m *MockAuthService) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, limit, offset)
	}
	return nil, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/authgate/domain"
	"github.com/you/authgate/internal/mocks"
)

type authServiceFixture struct {
	userRepo    *mocks.MockUserRepository
	accountRepo *mocks.MockAccountRepository
	sessionRepo *mocks.MockSessionRepository
	passwordSvc *mocks.MockPasswordService
	tokenSvc    *mocks.MockTokenService
	notifySvc   *mocks.MockNotificationService
	social      *mocks.MockSocialGateway
	transient   *mocks.MockTransientStore
	svc         domain.AuthService
}

func newAuthServiceFixture() *authServiceFixture {
	f := &authServiceFixture{
		userRepo:    mocks.NewMockUserRepository(),
		accountRepo: mocks.NewMockAccountRepository(),
		sessionRepo: mocks.NewMockSessionRepository(),
		passwordSvc: mocks.NewMockPasswordService(),
		tokenSvc:    mocks.NewMockTokenService(),
		notifySvc:   mocks.NewMockNotificationService(),
		social:      mocks.NewMockSocialGateway(),
		transient:   mocks.NewMockTransientStore(),
	}
	f.svc = NewAuthService(
		AuthConfig{SessionTTL: time.Hour, BaseURL: "http://localhost:8080"},
		f.userRepo, f.accountRepo, f.sessionRepo,
		f.passwordSvc, f.tokenSvc, f.notifySvc,
		f.social, f.transient,
	)
	return f
}

func TestRegister_Success(t *testing.T) {
	f := newAuthServiceFixture()

	var gotAccount *domain.Account
	f.userRepo.CreateWithAccountFunc = func(ctx context.Context, user *domain.User, account *domain.Account) error {
		user.ID = "user-1"
		gotAccount = account
		return nil
	}

	user, err := f.svc.Register(context.Background(), "new@example.com", "Secret123!", "New User")

	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	require.NotNil(t, gotAccount)
	assert.Equal(t, domain.ProviderCredentials, gotAccount.ProviderID)
	assert.Equal(t, "new@example.com", gotAccount.AccountID)
	assert.Equal(t, "hashed:Secret123!", gotAccount.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthServiceFixture()
	f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		return &domain.User{ID: "user-1", Email: email}, nil
	}

	user, err := f.svc.Register(context.Background(), "taken@example.com", "Secret123!", "")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestRegister_DuplicateDetectedAtInsert(t *testing.T) {
	// Two concurrent registrations can both pass the pre-check; the unique
	// index decides, and its error surfaces unchanged.
	f := newAuthServiceFixture()
	f.userRepo.CreateWithAccountFunc = func(ctx context.Context, user *domain.User, account *domain.Account) error {
		return domain.ErrUserAlreadyExists
	}

	_, err := f.svc.Register(context.Background(), "raced@example.com", "Secret123!", "")

	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestSignIn_Success(t *testing.T) {
	f := newAuthServiceFixture()
	f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		return &domain.User{ID: "user-1", Email: email, Role: domain.RoleUser}, nil
	}
	f.accountRepo.FindByProviderFunc = func(ctx context.Context, providerID, accountID string) (*domain.Account, error) {
		return &domain.Account{ID: "acc-1", UserID: "user-1", PasswordHash: "hashed:Secret123!"}, nil
	}

	var created *domain.Session
	f.sessionRepo.CreateFunc = func(ctx context.Context, session *domain.Session) error {
		created = session
		return nil
	}

	result, err := f.svc.SignIn(context.Background(), "user@example.com", "Secret123!", "10.0.0.1", "test-agent")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "user-1", created.UserID)
	assert.Equal(t, "10.0.0.1", created.IPAddress)
	assert.Equal(t, "token:user-1:"+created.ID, result.Token)
	assert.Equal(t, int64(3600), result.ExpiresIn)
}

func TestSignIn_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *authServiceFixture)
	}{
		{
			name:  "unknown email",
			setup: func(f *authServiceFixture) {},
		},
		{
			name: "wrong password",
			setup: func(f *authServiceFixture) {
				f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return &domain.User{ID: "user-1", Email: email}, nil
				}
				f.accountRepo.FindByProviderFunc = func(ctx context.Context, providerID, accountID string) (*domain.Account, error) {
					return &domain.Account{PasswordHash: "hashed:other"}, nil
				}
			},
		},
		{
			name: "social-only user without credentials account",
			setup: func(f *authServiceFixture) {
				f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return &domain.User{ID: "user-1", Email: email}, nil
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthServiceFixture()
			tt.setup(f)

			result, err := f.svc.SignIn(context.Background(), "user@example.com", "Secret123!", "", "")

			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}

func TestSignOut_RevokesSession(t *testing.T) {
	f := newAuthServiceFixture()
	f.tokenSvc.ValidateSessionTokenFunc = func(token string) (*domain.SessionTokenClaims, error) {
		return &domain.SessionTokenClaims{UserID: "user-1", SessionID: "sess-1"}, nil
	}

	var deleted string
	f.sessionRepo.DeleteFunc = func(ctx context.Context, sessionID string) error {
		deleted = sessionID
		return nil
	}

	err := f.svc.SignOut(context.Background(), "some-token")

	require.NoError(t, err)
	assert.Equal(t, "sess-1", deleted)
}

func TestSignOut_AlreadySatisfied(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "invalid token", token: "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthServiceFixture()
			called := false
			f.sessionRepo.DeleteFunc = func(ctx context.Context, sessionID string) error {
				called = true
				return nil
			}

			err := f.svc.SignOut(context.Background(), tt.token)

			assert.NoError(t, err)
			assert.False(t, called)
		})
	}
}

func TestSignOut_StoreFailure(t *testing.T) {
	f := newAuthServiceFixture()
	f.tokenSvc.ValidateSessionTokenFunc = func(token string) (*domain.SessionTokenClaims, error) {
		return &domain.SessionTokenClaims{SessionID: "sess-1"}, nil
	}
	f.sessionRepo.DeleteFunc = func(ctx context.Context, sessionID string) error {
		return errors.New("redis down")
	}

	err := f.svc.SignOut(context.Background(), "some-token")

	assert.Error(t, err)
}

func TestGetSession_Anonymous(t *testing.T) {
	tests := []struct {
		name  string
		token string
		setup func(f *authServiceFixture)
	}{
		{
			name:  "empty token",
			token: "",
			setup: func(f *authServiceFixture) {},
		},
		{
			name:  "invalid token",
			token: "garbage",
			setup: func(f *authServiceFixture) {},
		},
		{
			name:  "session revoked",
			token: "valid-token",
			setup: func(f *authServiceFixture) {
				f.tokenSvc.ValidateSessionTokenFunc = func(token string) (*domain.SessionTokenClaims, error) {
					return &domain.SessionTokenClaims{UserID: "user-1", SessionID: "sess-1"}, nil
				}
				// default FindByID returns ErrSessionNotFound
			},
		},
		{
			name:  "session expired in store",
			token: "valid-token",
			setup: func(f *authServiceFixture) {
				f.tokenSvc.ValidateSessionTokenFunc = func(token string) (*domain.SessionTokenClaims, error) {
					return &domain.SessionTokenClaims{UserID: "user-1", SessionID: "sess-1"}, nil
				}
				f.sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
					return nil, domain.ErrSessionExpired
				}
			},
		},
		{
			name:  "session past its expiry",
			token: "valid-token",
			setup: func(f *authServiceFixture) {
				f.tokenSvc.ValidateSessionTokenFunc = func(token string) (*domain.SessionTokenClaims, error) {
					return &domain.SessionTokenClaims{UserID: "user-1", SessionID: "sess-1"}, nil
				}
				f.sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
					return &domain.Session{ID: sessionID, UserID: "user-1", ExpiresAt: time.Now().Add(-time.Minute)}, nil
				}
			},
		},
		{
			name:  "token and session user mismatch",
			token: "valid-token",
			setup: func(f *authServiceFixture) {
				f.tokenSvc.ValidateSessionTokenFunc = func(token string) (*domain.SessionTokenClaims, error) {
					return &domain.SessionTokenClaims{UserID: "user-2", SessionID: "sess-1"}, nil
				}
				f.sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
					return &domain.Session{ID: sessionID, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
				}
			},
		},
		{
			name:  "user deleted after session creation",
			token: "valid-token",
			setup: func(f *authServiceFixture) {
				f.tokenSvc.ValidateSessionTokenFunc = func(token string) (*domain.SessionTokenClaims, error) {
					return &domain.SessionTokenClaims{UserID: "user-1", SessionID: "sess-1"}, nil
				}
				f.sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
					return &domain.Session{ID: sessionID, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
				}
				// default FindByID on users returns ErrUserNotFound
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthServiceFixture()
			tt.setup(f)

			sc, err := f.svc.GetSession(context.Background(), tt.token)

			assert.Nil(t, sc)
			assert.NoError(t, err)
		})
	}
}

func TestGetSession_StoreUnavailable(t *testing.T) {
	f := newAuthServiceFixture()
	f.tokenSvc.ValidateSessionTokenFunc = func(token string) (*domain.SessionTokenClaims, error) {
		return &domain.SessionTokenClaims{UserID: "user-1", SessionID: "sess-1"}, nil
	}
	f.sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return nil, errors.New("redis connection refused")
	}

	sc, err := f.svc.GetSession(context.Background(), "valid-token")

	assert.Nil(t, sc)
	assert.Error(t, err)
}

func TestGetSession_Success(t *testing.T) {
	f := newAuthServiceFixture()
	f.tokenSvc.ValidateSessionTokenFunc = func(token string) (*domain.SessionTokenClaims, error) {
		return &domain.SessionTokenClaims{UserID: "user-1", SessionID: "sess-1"}, nil
	}
	f.sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return &domain.Session{ID: sessionID, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	f.userRepo.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
		return &domain.User{ID: id, Email: "user@example.com", Role: domain.RoleUser}, nil
	}
	f.accountRepo.FindByUserFunc = func(ctx context.Context, userID string) ([]*domain.Account, error) {
		return []*domain.Account{{ID: "acc-1", UserID: userID, ProviderID: domain.ProviderCredentials}}, nil
	}
	f.sessionRepo.FindByUserFunc = func(ctx context.Context, userID string, limit int) ([]*domain.Session, error) {
		assert.Equal(t, 5, limit)
		return []*domain.Session{{ID: "sess-1", UserID: userID}}, nil
	}

	sc, err := f.svc.GetSession(context.Background(), "valid-token")

	require.NoError(t, err)
	require.NotNil(t, sc)
	assert.Equal(t, "user-1", sc.User.ID)
	assert.Equal(t, "sess-1", sc.Session.ID)
	assert.Len(t, sc.Accounts, 1)
	assert.Len(t, sc.RecentSessions, 1)
}

func TestSocialRedirect_StoresStateWithDestination(t *testing.T) {
	f := newAuthServiceFixture()

	var storedKey, storedValue string
	f.transient.PutFunc = func(ctx context.Context, key, value string, ttl time.Duration) error {
		storedKey, storedValue = key, value
		return nil
	}

	url, err := f.svc.SocialRedirect(context.Background(), domain.SocialGoogle, "/user/settings")

	require.NoError(t, err)
	assert.Contains(t, url, "state=")
	assert.Contains(t, storedKey, "oauth_state:")
	assert.Equal(t, "/user/settings", storedValue)
}

func TestSocialRedirect_DefaultDestination(t *testing.T) {
	f := newAuthServiceFixture()

	var storedValue string
	f.transient.PutFunc = func(ctx context.Context, key, value string, ttl time.Duration) error {
		storedValue = value
		return nil
	}

	_, err := f.svc.SocialRedirect(context.Background(), domain.SocialGoogle, "")

	require.NoError(t, err)
	assert.Equal(t, "/user/dashboard", storedValue)
}

func TestCompleteSocialSignIn_StateMismatch(t *testing.T) {
	f := newAuthServiceFixture()

	result, _, err := f.svc.CompleteSocialSignIn(context.Background(), domain.SocialGoogle, "never-stored", "code", "", "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrStateMismatch)
}

func TestCompleteSocialSignIn_NewUser(t *testing.T) {
	f := newAuthServiceFixture()
	require.NoError(t, f.transient.Put(context.Background(), "oauth_state:state-1", "/user/dashboard", time.Minute))

	f.social.FetchProfileFunc = func(ctx context.Context, provider domain.SocialProvider, code string) (*domain.SocialProfile, error) {
		return &domain.SocialProfile{
			AccountID:     "google-123",
			Email:         "social@example.com",
			Name:          "Social User",
			EmailVerified: true,
		}, nil
	}

	var createdUser *domain.User
	var createdAccount *domain.Account
	f.userRepo.CreateWithAccountFunc = func(ctx context.Context, user *domain.User, account *domain.Account) error {
		user.ID = "user-1"
		createdUser, createdAccount = user, account
		return nil
	}

	result, callbackURL, err := f.svc.CompleteSocialSignIn(context.Background(), domain.SocialGoogle, "state-1", "code", "10.0.0.1", "agent")

	require.NoError(t, err)
	assert.Equal(t, "/user/dashboard", callbackURL)
	assert.Equal(t, "user-1", result.User.ID)
	require.NotNil(t, createdUser)
	assert.True(t, createdUser.EmailVerified)
	assert.Equal(t, "google", createdAccount.ProviderID)
	assert.Equal(t, "google-123", createdAccount.AccountID)
}

func TestCompleteSocialSignIn_LinksExistingEmail(t *testing.T) {
	f := newAuthServiceFixture()
	require.NoError(t, f.transient.Put(context.Background(), "oauth_state:state-1", "/user/dashboard", time.Minute))

	f.social.FetchProfileFunc = func(ctx context.Context, provider domain.SocialProvider, code string) (*domain.SocialProfile, error) {
		return &domain.SocialProfile{AccountID: "google-123", Email: "existing@example.com"}, nil
	}
	f.userRepo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		return &domain.User{ID: "user-1", Email: email}, nil
	}

	var linked *domain.Account
	f.accountRepo.CreateFunc = func(ctx context.Context, account *domain.Account) error {
		linked = account
		return nil
	}

	result, _, err := f.svc.CompleteSocialSignIn(context.Background(), domain.SocialGoogle, "state-1", "code", "", "")

	require.NoError(t, err)
	assert.Equal(t, "user-1", result.User.ID)
	require.NotNil(t, linked)
	assert.Equal(t, "user-1", linked.UserID)
}

func TestRequestPasswordReset_UnknownEmailSucceeds(t *testing.T) {
	f := newAuthServiceFixture()

	err := f.svc.RequestPasswordReset(context.Background(), "unknown@example.com")

	assert.NoError(t, err)
	assert.Empty(t, f.notifySvc.Sent)
}

func TestRequestPasswordReset_SendsLink(t *testing.T) {
	f := newAuthServiceFixture()
	f.accountRepo.FindByProviderFunc = func(ctx context.Context, providerID, accountID string) (*domain.Account, error) {
		return &domain.Account{ID: "acc-1", UserID: "user-1"}, nil
	}

	var sentHTML string
	f.notifySvc.SendEmailFunc = func(ctx context.Context, to, subject, html string) error {
		sentHTML = html
		return nil
	}

	err := f.svc.RequestPasswordReset(context.Background(), "user@example.com")

	require.NoError(t, err)
	assert.Contains(t, sentHTML, "/auth/reset-password?token=")
}

func TestResetPassword_RoundTrip(t *testing.T) {
	f := newAuthServiceFixture()
	f.accountRepo.FindByProviderFunc = func(ctx context.Context, providerID, accountID string) (*domain.Account, error) {
		return &domain.Account{ID: "acc-1", UserID: "user-1"}, nil
	}

	var sentHTML string
	f.notifySvc.SendEmailFunc = func(ctx context.Context, to, subject, html string) error {
		sentHTML = html
		return nil
	}
	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "user@example.com"))

	// Pull the token back out of the mailed link.
	start := strings.Index(sentHTML, "token=")
	require.GreaterOrEqual(t, start, 0)
	start += len("token=")
	end := strings.IndexByte(sentHTML[start:], '"')
	require.GreaterOrEqual(t, end, 0)
	token := sentHTML[start : start+end]
	require.NotEmpty(t, token)

	var updatedID, updatedHash string
	f.accountRepo.UpdatePasswordFunc = func(ctx context.Context, id, passwordHash string) error {
		updatedID, updatedHash = id, passwordHash
		return nil
	}

	var revokedUser string
	f.sessionRepo.DeleteByUserFunc = func(ctx context.Context, userID string) error {
		revokedUser = userID
		return nil
	}

	require.NoError(t, f.svc.ResetPassword(context.Background(), token, "NewSecret123!"))
	assert.Equal(t, "acc-1", updatedID)
	assert.Equal(t, "hashed:NewSecret123!", updatedHash)
	assert.Equal(t, "user-1", revokedUser)

	// Token is single use.
	err := f.svc.ResetPassword(context.Background(), token, "NewSecret123!")
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	f := newAuthServiceFixture()

	err := f.svc.ResetPassword(context.Background(), "never-issued", "NewSecret123!")

	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func TestResetPassword_StoreUnavailable(t *testing.T) {
	// A store outage is not an invalid token: the sentinel must not swallow
	// it, or the handler would answer an outage with a 400.
	f := newAuthServiceFixture()
	f.transient.TakeFunc = func(ctx context.Context, key string) (string, error) {
		return "", errors.New("redis connection refused")
	}

	updated := false
	f.accountRepo.UpdatePasswordFunc = func(ctx context.Context, id, passwordHash string) error {
		updated = true
		return nil
	}

	err := f.svc.ResetPassword(context.Background(), "some-token", "NewSecret123!")

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrResetTokenInvalid)
	assert.False(t, updated)
}

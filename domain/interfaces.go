package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	// CreateWithAccount persists a user and its first linked account in one
	// transaction so a failed account insert never leaves an orphan user.
	CreateWithAccount(ctx context.Context, user *User, account *Account) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, limit, offset int) ([]*User, error)
	// Delete removes the user and cascades to its accounts.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// AccountRepository defines linked-credential data access operations
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByUser(ctx context.Context, userID string) ([]*Account, error)
	FindByProvider(ctx context.Context, providerID, accountID string) (*Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// SessionRepository defines session store operations. Delete is idempotent:
// removing an absent session is success.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	FindByUser(ctx context.Context, userID string, limit int) ([]*Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// AuthService defines the authentication business logic
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*User, error)
	SignIn(ctx context.Context, email, password, ip, userAgent string) (*AuthResult, error)
	// SignOut revokes the session behind the given cookie token. Revoking an
	// already-invalid or absent session is not an error.
	SignOut(ctx context.Context, token string) error
	// GetSession is the authoritative session check. It returns (nil, nil)
	// for an absent, malformed, expired or revoked token, and a non-nil
	// error only for infrastructure failures, so callers can fail closed.
	GetSession(ctx context.Context, token string) (*SessionContext, error)
	SocialRedirect(ctx context.Context, provider SocialProvider, callbackURL string) (string, error)
	CompleteSocialSignIn(ctx context.Context, provider SocialProvider, state, code, ip, userAgent string) (*AuthResult, string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	ListUsers(ctx context.Context, limit, offset int) ([]*User, error)
}

// PasswordService defines password hashing operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService signs and verifies session cookie tokens
type TokenService interface {
	GenerateSessionToken(userID, sessionID string, ttl time.Duration) (string, error)
	ValidateSessionToken(token string) (*SessionTokenClaims, error)
}

// NotificationService defines outbound mail operations
type NotificationService interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

// TransientStore holds short-lived single-use values (oauth state, password
// reset tokens). Take returns the value and consumes it.
type TransientStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Take(ctx context.Context, key string) (string, error)
}

// SocialProfile is the provider-verified identity returned after an OAuth
// code exchange.
type SocialProfile struct {
	AccountID     string
	Email         string
	Name          string
	Image         string
	EmailVerified bool
	AccessToken   string
	RefreshToken  string
	Scope         string
}

// SocialGateway wraps the per-provider OAuth metadata: building the
// authorize redirect and exchanging the callback code for a profile.
type SocialGateway interface {
	AuthCodeURL(provider SocialProvider, state string) (string, error)
	FetchProfile(ctx context.Context, provider SocialProvider, code string) (*SocialProfile, error)
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer is the subset of the Casbin enforcer the policy service needs
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}

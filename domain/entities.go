package domain

import "time"

// User represents an identity in the system. The credential material itself
// lives on the linked Account rows, never on the user.
type User struct {
	ID            string
	Name          string
	Email         string
	EmailVerified bool
	Image         string
	Role          string
	Locale        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Account is one credential binding attached to a user: either the local
// "credentials" provider (with a password hash) or a social provider
// (with provider-issued tokens). (ProviderID, AccountID) is unique.
type Account struct {
	ID           string
	UserID       string
	ProviderID   string
	AccountID    string
	PasswordHash string
	AccessToken  string
	RefreshToken string
	Scope        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents one authenticated browser/device context.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Valid reports whether the session is still live at the given instant.
// A revoked session never reaches this check because the store deletes it.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// SessionContext is the fully verified result of the page-level session
// check: the session, its owner, and the surrounding records the dashboard
// renders.
type SessionContext struct {
	Session        *Session
	User           *User
	Accounts       []*Account
	RecentSessions []*Session
}

// AuthResult represents a successful sign-in: the created session plus the
// signed token that goes into the session cookie.
type AuthResult struct {
	User      *User
	Session   *Session
	Token     string
	ExpiresIn int64
}

// SessionTokenClaims are the verified claims of a session cookie token.
type SessionTokenClaims struct {
	UserID    string `json:"sub"`
	SessionID string `json:"sid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Provider identifier for locally stored passwords.
const ProviderCredentials = "credentials"

// Roles assignable to users.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

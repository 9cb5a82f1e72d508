package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/you/authgate/domain"
)

const (
	recentSessionLimit = 5
	oauthStateTTL      = 10 * time.Minute
	resetTokenTTL      = time.Hour
)

// AuthConfig carries the tunables the auth service needs from configuration.
type AuthConfig struct {
	SessionTTL time.Duration
	BaseURL    string
}

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	cfg         AuthConfig
	userRepo    domain.UserRepository
	accountRepo domain.AccountRepository
	sessionRepo domain.SessionRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	notifySvc   domain.NotificationService
	social      domain.SocialGateway
	transient   domain.TransientStore
}

// NewAuthService creates a new auth service
func NewAuthService(
	cfg AuthConfig,
	userRepo domain.UserRepository,
	accountRepo domain.AccountRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	notifySvc domain.NotificationService,
	social domain.SocialGateway,
	transient domain.TransientStore,
) domain.AuthService {
	return &AuthServiceImpl{
		cfg:         cfg,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		notifySvc:   notifySvc,
		social:      social,
		transient:   transient,
	}
}

// Register implements domain.AuthService: creates the user and its
// credentials account atomically. The account id for the credentials
// provider is the email itself.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Name:      name,
		Email:     email,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	account := &domain.Account{
		ProviderID:   domain.ProviderCredentials,
		AccountID:    email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateWithAccount(ctx, user, account); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// SignIn implements domain.AuthService
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password, ip, userAgent string) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	account, err := s.accountRepo.FindByProvider(ctx, domain.ProviderCredentials, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Social-only user; same generic failure as a wrong password.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.passwordSvc.Verify(account.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.createSession(ctx, user, ip, userAgent)
}

// createSession persists a new session and signs its cookie token.
func (s *AuthServiceImpl) createSession(ctx context.Context, user *domain.User, ip, userAgent string) (*domain.AuthResult, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokenSvc.GenerateSessionToken(user.ID, session.ID, s.cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return &domain.AuthResult{
		User:      user,
		Session:   session,
		Token:     token,
		ExpiresIn: int64(s.cfg.SessionTTL.Seconds()),
	}, nil
}

// SignOut implements domain.AuthService. An unverifiable token means the
// session is already gone from the client's point of view, so it resolves
// as already-satisfied rather than an error.
func (s *AuthServiceImpl) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokenSvc.ValidateSessionToken(token)
	if err != nil {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// GetSession implements domain.AuthService. It is the authoritative gate:
// (nil, nil) means "no session" and must redirect, a non-nil error means the
// store could not answer and the caller fails closed.
func (s *AuthServiceImpl) GetSession(ctx context.Context, token string) (*domain.SessionContext, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.tokenSvc.ValidateSessionToken(token)
	if err != nil {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired) {
			return nil, nil
		}
		return nil, fmt.Errorf("session store lookup failed: %w", err)
	}

	if session.UserID != claims.UserID || !session.Valid(time.Now()) {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	accounts, err := s.accountRepo.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("account lookup failed: %w", err)
	}

	recent, err := s.sessionRepo.FindByUser(ctx, user.ID, recentSessionLimit)
	if err != nil {
		return nil, fmt.Errorf("session listing failed: %w", err)
	}

	return &domain.SessionContext{
		Session:        session,
		User:           user,
		Accounts:       accounts,
		RecentSessions: recent,
	}, nil
}

// SocialRedirect implements domain.AuthService: stores a single-use CSRF
// state bound to the post-login destination and returns the provider's
// authorize URL.
func (s *AuthServiceImpl) SocialRedirect(ctx context.Context, provider domain.SocialProvider, callbackURL string) (string, error) {
	if callbackURL == "" {
		callbackURL = "/user/dashboard"
	}

	state := uuid.NewString()
	if err := s.transient.Put(ctx, "oauth_state:"+state, callbackURL, oauthStateTTL); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	return s.social.AuthCodeURL(provider, state)
}

// CompleteSocialSignIn implements domain.AuthService: verifies the callback
// state, resolves the provider profile and signs the user in, creating the
// user and linked account on first contact.
func (s *AuthServiceImpl) CompleteSocialSignIn(ctx context.Context, provider domain.SocialProvider, state, code, ip, userAgent string) (*domain.AuthResult, string, error) {
	callbackURL, err := s.transient.Take(ctx, "oauth_state:"+state)
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return nil, "", domain.ErrStateMismatch
		}
		return nil, "", err
	}

	profile, err := s.social.FetchProfile(ctx, provider, code)
	if err != nil {
		return nil, "", err
	}

	user, err := s.resolveSocialUser(ctx, provider, profile)
	if err != nil {
		return nil, "", err
	}

	result, err := s.createSession(ctx, user, ip, userAgent)
	if err != nil {
		return nil, "", err
	}
	return result, callbackURL, nil
}

// resolveSocialUser finds the user behind a provider profile, linking the
// account to an existing user with the same email or creating both records.
func (s *AuthServiceImpl) resolveSocialUser(ctx context.Context, provider domain.SocialProvider, profile *domain.SocialProfile) (*domain.User, error) {
	account, err := s.accountRepo.FindByProvider(ctx, provider.String(), profile.AccountID)
	if err == nil {
		return s.userRepo.FindByID(ctx, account.UserID)
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	now := time.Now()
	newAccount := &domain.Account{
		ProviderID:   provider.String(),
		AccountID:    profile.AccountID,
		AccessToken:  profile.AccessToken,
		RefreshToken: profile.RefreshToken,
		Scope:        profile.Scope,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	user, err := s.userRepo.FindByEmail(ctx, profile.Email)
	if err == nil {
		newAccount.UserID = user.ID
		if err := s.accountRepo.Create(ctx, newAccount); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user = &domain.User{
		Name:          profile.Name,
		Email:         profile.Email,
		EmailVerified: profile.EmailVerified,
		Image:         profile.Image,
		Role:          domain.RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.userRepo.CreateWithAccount(ctx, user, newAccount); err != nil {
		return nil, err
	}
	return user, nil
}

// resetClaim is the payload behind an outstanding reset token: which account
// gets the new hash and which user's sessions are revoked afterwards.
type resetClaim struct {
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
}

// RequestPasswordReset implements domain.AuthService. It always succeeds
// from the caller's point of view so the endpoint cannot be used to probe
// which emails are registered.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accountRepo.FindByProvider(ctx, domain.ProviderCredentials, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil
		}
		return err
	}

	claim, err := json.Marshal(resetClaim{AccountID: account.ID, UserID: account.UserID})
	if err != nil {
		return fmt.Errorf("failed to encode reset claim: %w", err)
	}

	token := uuid.NewString()
	if err := s.transient.Put(ctx, "pw_reset:"+token, string(claim), resetTokenTTL); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := s.cfg.BaseURL + "/auth/reset-password?token=" + token
	html := `<p>Click the link to reset your password:</p><p><a href="` + resetURL + `">Reset password</a></p>`
	if err := s.notifySvc.SendEmail(ctx, email, "Reset your password", html); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	log.Printf("PASSWORD_RESET_REQUESTED: email=%s timestamp=%s", email, time.Now().UTC().Format(time.RFC3339))
	return nil
}

// ResetPassword implements domain.AuthService. An unknown or replayed token
// is an invalid-token error; a store failure stays distinguishable so the
// handler can fail with a 5xx instead of blaming the token. A successful
// reset revokes every session of the user, so sessions stolen before the
// reset die with the old password.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, password string) error {
	value, err := s.transient.Take(ctx, "pw_reset:"+token)
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("reset token lookup failed: %w", err)
	}

	var claim resetClaim
	if err := json.Unmarshal([]byte(value), &claim); err != nil {
		return domain.ErrResetTokenInvalid
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePassword(ctx, claim.AccountID, hashedPassword); err != nil {
		return err
	}

	if err := s.sessionRepo.DeleteByUser(ctx, claim.UserID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// ListUsers implements domain.AuthService
func (s *AuthServiceImpl) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

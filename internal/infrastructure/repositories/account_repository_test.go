package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/authgate/domain"
)

func TestAccountRepository_FindByProvider(t *testing.T) {
	db := openTestDB(t)
	userRepo := NewUserRepository(db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	user := newTestUser("provider@example.com")
	require.NoError(t, userRepo.CreateWithAccount(ctx, user, newCredentialsAccount("provider@example.com")))

	found, err := repo.FindByProvider(ctx, domain.ProviderCredentials, "provider@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)
	assert.Equal(t, "hashed", found.PasswordHash)

	_, err = repo.FindByProvider(ctx, "google", "provider@example.com")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_LinkSecondProvider(t *testing.T) {
	db := openTestDB(t)
	userRepo := NewUserRepository(db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	user := newTestUser("linked@example.com")
	require.NoError(t, userRepo.CreateWithAccount(ctx, user, newCredentialsAccount("linked@example.com")))

	social := &domain.Account{
		UserID:     user.ID,
		ProviderID: "google",
		AccountID:  "google-123",
		Scope:      "openid email profile",
	}
	require.NoError(t, repo.Create(ctx, social))
	assert.NotEmpty(t, social.ID)

	accounts, err := repo.FindByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}

func TestAccountRepository_DuplicateProviderAccount(t *testing.T) {
	db := openTestDB(t)
	userRepo := NewUserRepository(db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	user := newTestUser("dupacc@example.com")
	require.NoError(t, userRepo.CreateWithAccount(ctx, user, newCredentialsAccount("dupacc@example.com")))

	err := repo.Create(ctx, &domain.Account{
		UserID:     user.ID,
		ProviderID: domain.ProviderCredentials,
		AccountID:  "dupacc@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestAccountRepository_UpdatePassword(t *testing.T) {
	db := openTestDB(t)
	userRepo := NewUserRepository(db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	user := newTestUser("rotate@example.com")
	account := newCredentialsAccount("rotate@example.com")
	require.NoError(t, userRepo.CreateWithAccount(ctx, user, account))

	require.NoError(t, repo.UpdatePassword(ctx, account.ID, "rehashed"))

	found, err := repo.FindByProvider(ctx, domain.ProviderCredentials, "rotate@example.com")
	require.NoError(t, err)
	assert.Equal(t, "rehashed", found.PasswordHash)
}

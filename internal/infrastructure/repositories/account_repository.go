package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/you/authgate/domain"
)

// AccountRepositoryImpl implements domain.AccountRepository using GORM
type AccountRepositoryImpl struct {
	db *gorm.DB
}

// DBAccount represents the database model for Account (with GORM tags)
type DBAccount struct {
	ID           string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"index;size:36"`
	ProviderID   string `gorm:"uniqueIndex:idx_provider_account;size:64"`
	AccountID    string `gorm:"uniqueIndex:idx_provider_account;size:255"`
	PasswordHash string `gorm:"column:password;size:255"`
	AccessToken  string `gorm:"size:2048"`
	RefreshToken string `gorm:"size:2048"`
	Scope        string `gorm:"size:512"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (DBAccount) TableName() string {
	return "accounts"
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

// Create implements domain.AccountRepository
func (r *AccountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	dbAccount := accountToDB(account)
	if err := r.db.WithContext(ctx).Create(dbAccount).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	account.ID = dbAccount.ID
	return nil
}

// FindByUser implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	var dbAccounts []DBAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&dbAccounts).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(dbAccounts))
	for i := range dbAccounts {
		accounts = append(accounts, accountToDomain(&dbAccounts[i]))
	}
	return accounts, nil
}

// FindByProvider implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByProvider(ctx context.Context, providerID, accountID string) (*domain.Account, error) {
	var dbAccount DBAccount
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND account_id = ?", providerID, accountID).
		First(&dbAccount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return accountToDomain(&dbAccount), nil
}

// UpdatePassword implements domain.AccountRepository
func (r *AccountRepositoryImpl) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&DBAccount{}).
		Where("id = ?", id).
		Update("password", passwordHash).Error
}

func accountToDB(account *domain.Account) *DBAccount {
	id := account.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &DBAccount{
		ID:           id,
		UserID:       account.UserID,
		ProviderID:   account.ProviderID,
		AccountID:    account.AccountID,
		PasswordHash: account.PasswordHash,
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		Scope:        account.Scope,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}

func accountToDomain(dbAccount *DBAccount) *domain.Account {
	return &domain.Account{
		ID:           dbAccount.ID,
		UserID:       dbAccount.UserID,
		ProviderID:   dbAccount.ProviderID,
		AccountID:    dbAccount.AccountID,
		PasswordHash: dbAccount.PasswordHash,
		AccessToken:  dbAccount.AccessToken,
		RefreshToken: dbAccount.RefreshToken,
		Scope:        dbAccount.Scope,
		CreatedAt:    dbAccount.CreatedAt,
		UpdatedAt:    dbAccount.UpdatedAt,
	}
}

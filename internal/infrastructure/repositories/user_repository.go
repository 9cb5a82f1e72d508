package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/you/authgate/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID            string `gorm:"primaryKey;size:36"`
	Name          string `gorm:"size:255"`
	Email         string `gorm:"uniqueIndex;size:255"`
	EmailVerified bool
	Image         string `gorm:"size:512"`
	Role          string `gorm:"index;size:64"`
	Locale        string `gorm:"size:16"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Accounts []DBAccount `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID"`
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := userToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		return translateUserErr(err)
	}
	user.ID = dbUser.ID
	return nil
}

// CreateWithAccount implements domain.UserRepository. The user row and its
// first account row are written in one transaction so a constraint failure
// on either leaves no partial state behind.
func (r *UserRepositoryImpl) CreateWithAccount(ctx context.Context, user *domain.User, account *domain.Account) error {
	dbUser := userToDB(user)
	dbAccount := accountToDB(account)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dbUser).Error; err != nil {
			return err
		}
		dbAccount.UserID = dbUser.ID
		return tx.Create(dbAccount).Error
	})
	if err != nil {
		return translateUserErr(err)
	}

	user.ID = dbUser.ID
	account.ID = dbAccount.ID
	account.UserID = dbUser.ID
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userToDomain(&dbUser), nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userToDomain(&dbUser), nil
}

// Update implements domain.UserRepository
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(userToDB(user)).Error
}

// List implements domain.UserRepository
func (r *UserRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	var dbUsers []DBUser
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&dbUsers).Error
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, userToDomain(&dbUsers[i]))
	}
	return users, nil
}

// Delete implements domain.UserRepository. Account rows cascade at the
// database level; sessions live in the session store and are revoked by the
// caller.
func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Select("Accounts").Delete(&DBUser{ID: id}).Error
}

// Count implements domain.UserRepository
func (r *UserRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&DBUser{}).Count(&n).Error
	return n, err
}

// translateUserErr maps unique-constraint violations onto the generic
// duplicate-user error so callers never learn which constraint fired.
func translateUserErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrUserAlreadyExists
	}
	return err
}

func userToDB(user *domain.User) *DBUser {
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &DBUser{
		ID:            id,
		Name:          user.Name,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Image:         user.Image,
		Role:          user.Role,
		Locale:        user.Locale,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

func userToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:            dbUser.ID,
		Name:          dbUser.Name,
		Email:         dbUser.Email,
		EmailVerified: dbUser.EmailVerified,
		Image:         dbUser.Image,
		Role:          dbUser.Role,
		Locale:        dbUser.Locale,
		CreatedAt:     dbUser.CreatedAt,
		UpdatedAt:     dbUser.UpdatedAt,
	}
}

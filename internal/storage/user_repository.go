package storage

import (
	"context"

	"gorm.io/gorm"

	"friendly/internal/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// ListByZipcodes returns every user whose zip code is in the given set,
	// excluding the named user. This is the candidate-selection query.
	ListByZipcodes(ctx context.Context, zipcodes []string, excludeUsername string) ([]models.User, error)
	// GetManyByUsernames resolves a username set to user records.
	GetManyByUsernames(ctx context.Context, usernames []string) ([]models.User, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create creates a new user record in the database.
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByUsername retrieves a user by their username.
func (r *gormUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err // Handles gorm.ErrRecordNotFound as well
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email.
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates an existing user record in the database.
func (r *gormUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(user).Error
}

// ListByZipcodes returns users located in any of the given zip codes,
// excluding the named user. An empty zip set yields an empty result.
func (r *gormUserRepository) ListByZipcodes(ctx context.Context, zipcodes []string, excludeUsername string) ([]models.User, error) {
	var users []models.User
	if len(zipcodes) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("zipcode IN ? AND username != ?", zipcodes, excludeUsername).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetManyByUsernames resolves usernames to user records. Missing usernames
// are silently absent from the result.
func (r *gormUserRepository) GetManyByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	var users []models.User
	if len(usernames) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("username IN ?", usernames).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

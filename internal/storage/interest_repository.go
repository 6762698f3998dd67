package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"friendly/internal/models"
)

// InterestRepository defines the interface for interest-record operations.
type InterestRepository interface {
	// Upsert inserts the directional record if the ordered pair has no
	// record yet. A recorded decision is never flipped: re-recording is a
	// no-op and Upsert reports created=false.
	Upsert(ctx context.Context, interest *models.Interest) (created bool, err error)
	// GetPair returns the record from one user about another, or nil when
	// that direction is unresolved.
	GetPair(ctx context.Context, userMatching, userBeingMatched string) (*models.Interest, error)
	// ListInvolving returns the snapshot of every record the user appears
	// in, on either side.
	ListInvolving(ctx context.Context, username string) ([]models.Interest, error)
}

type gormInterestRepository struct {
	db *gorm.DB
}

// NewGormInterestRepository creates a new GORM-based InterestRepository.
func NewGormInterestRepository(db *gorm.DB) InterestRepository {
	return &gormInterestRepository{db: db}
}

// Upsert inserts with ON CONFLICT DO NOTHING on the pair's unique index.
func (r *gormInterestRepository) Upsert(ctx context.Context, interest *models.Interest) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_matching"}, {Name: "user_being_matched"}},
			DoNothing: true,
		}).
		Create(interest)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetPair returns the directional record for (userMatching, userBeingMatched).
func (r *gormInterestRepository) GetPair(ctx context.Context, userMatching, userBeingMatched string) (*models.Interest, error) {
	var interest models.Interest
	err := r.db.WithContext(ctx).
		Where("user_matching = ? AND user_being_matched = ?", userMatching, userBeingMatched).
		First(&interest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // unresolved direction, not an error
		}
		return nil, err
	}
	return &interest, nil
}

// ListInvolving returns every record where the user is on either side.
func (r *gormInterestRepository) ListInvolving(ctx context.Context, username string) ([]models.Interest, error) {
	var interests []models.Interest
	err := r.db.WithContext(ctx).
		Where("user_matching = ? OR user_being_matched = ?", username, username).
		Find(&interests).Error
	return interests, err
}

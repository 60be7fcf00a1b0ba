package persistence

import (
	"context"
	"errors"

	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTokenRepository implements identity.TokenRepository using GORM
type GormTokenRepository struct {
	db *gorm.DB
}

// NewGormTokenRepository creates a new GormTokenRepository
func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

// Replace stores token in place of the user's previous one for the same purpose
func (r *GormTokenRepository) Replace(ctx context.Context, token *identity.OneTimeToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND purpose = ?", token.UserID, token.Purpose).
			Delete(&identity.OneTimeToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

// Find loads the user's token for purpose
func (r *GormTokenRepository) Find(ctx context.Context, userID uint64, purpose identity.TokenPurpose) (*identity.OneTimeToken, error) {
	var token identity.OneTimeToken
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

// Delete removes the user's token for purpose
func (r *GormTokenRepository) Delete(ctx context.Context, userID uint64, purpose identity.TokenPurpose) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Delete(&identity.OneTimeToken{}).Error
}

var _ identity.TokenRepository = (*GormTokenRepository)(nil)

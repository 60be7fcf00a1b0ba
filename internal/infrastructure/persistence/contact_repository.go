package persistence

import (
	"context"
	"errors"

	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormContactRepository implements trade.ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// FindByUser lists a user's contacts ordered by id
func (r *GormContactRepository) FindByUser(ctx context.Context, userID uint64) ([]trade.Contact, error) {
	var contacts []trade.Contact
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// FindByIDForUser loads a contact owned by the user
func (r *GormContactRepository) FindByIDForUser(ctx context.Context, userID, id uint64) (*trade.Contact, error) {
	var contact trade.Contact
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *trade.Contact) error {
	if contact.IsNew() {
		return r.db.WithContext(ctx).Create(contact).Error
	}
	return r.db.WithContext(ctx).Save(contact).Error
}

// DeleteForUser deletes the user's contacts with the given ids
func (r *GormContactRepository) DeleteForUser(ctx context.Context, userID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&trade.Contact{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

var _ trade.ContactRepository = (*GormContactRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormShopRepository implements catalog.ShopRepository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// FindByID finds a shop by its ID
func (r *GormShopRepository) FindByID(ctx context.Context, id uint64) (*catalog.Shop, error) {
	var shop catalog.Shop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shop, nil
}

// FindByOwner finds the shop owned by a user
func (r *GormShopRepository) FindByOwner(ctx context.Context, userID uint64) (*catalog.Shop, error) {
	var shop catalog.Shop
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shop, nil
}

// FindAll lists shops ordered and paginated by filter
func (r *GormShopRepository) FindAll(ctx context.Context, onlyOpen bool, filter shared.Filter) ([]catalog.Shop, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Shop{})
	if onlyOpen {
		query = query.Where("state = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shops []catalog.Shop
	if err := query.Order(orderClause(filter, ShopSortFields)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&shops).Error; err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

// Save persists shop changes
func (r *GormShopRepository) Save(ctx context.Context, shop *catalog.Shop) error {
	if err := r.db.WithContext(ctx).Save(shop).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

// Ensure GormShopRepository implements catalog.ShopRepository
var _ catalog.ShopRepository = (*GormShopRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// withVariantDetails preloads what a variant renders with: product,
// category, shop and parameter names
func withVariantDetails(db *gorm.DB, prefix string) *gorm.DB {
	return db.
		Preload(prefix + "Product.Category").
		Preload(prefix + "Shop").
		Preload(prefix+"Parameters", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_variant_parameters.id ASC")
		}).
		Preload(prefix + "Parameters.Parameter")
}

// FindByID loads a variant with its product, category and parameters
func (r *GormVariantRepository) FindByID(ctx context.Context, id uint64) (*catalog.ProductVariant, error) {
	var variant catalog.ProductVariant
	if err := withVariantDetails(r.db.WithContext(ctx), "").First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// Find lists variants matching filter, ordered by id
func (r *GormVariantRepository) Find(ctx context.Context, filter catalog.VariantFilter) ([]catalog.ProductVariant, error) {
	query := withVariantDetails(r.db.WithContext(ctx).Model(&catalog.ProductVariant{}), "")

	if filter.ShopID != nil {
		query = query.Where("product_variants.shop_id = ?", *filter.ShopID)
	}
	if filter.CategoryID != nil {
		query = query.Where("product_variants.product_id IN (?)",
			r.db.Model(&catalog.Product{}).Select("id").Where("category_id = ?", *filter.CategoryID))
	}
	if filter.OnlyOpenShops {
		query = query.Where("product_variants.shop_id IN (?)",
			r.db.Model(&catalog.Shop{}).Select("id").Where("state = ?", true))
	}

	var variants []catalog.ProductVariant
	if err := query.Order("product_variants.id ASC").Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

var _ catalog.VariantRepository = (*GormVariantRepository)(nil)

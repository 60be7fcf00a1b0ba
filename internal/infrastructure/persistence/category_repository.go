package persistence

import (
	"context"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindAll lists categories ordered and paginated by filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&catalog.Category{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var categories []catalog.Category
	if err := r.db.WithContext(ctx).
		Order(orderClause(filter, CategorySortFields)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)

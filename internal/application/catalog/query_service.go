package catalog

import (
	"context"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
)

// QueryService serves the public catalog
type QueryService struct {
	categories catalog.CategoryRepository
	shops      catalog.ShopRepository
	variants   catalog.VariantRepository
}

// NewQueryService creates a new catalog query service
func NewQueryService(
	categories catalog.CategoryRepository,
	shops catalog.ShopRepository,
	variants catalog.VariantRepository,
) *QueryService {
	return &QueryService{
		categories: categories,
		shops:      shops,
		variants:   variants,
	}
}

// ListCategories returns a page of categories
func (s *QueryService) ListCategories(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Category], error) {
	items, total, err := s.categories.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[catalog.Category]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListShops returns a page of shops accepting orders
func (s *QueryService) ListShops(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Shop], error) {
	items, total, err := s.shops.FindAll(ctx, true, filter)
	if err != nil {
		return shared.Paginated[catalog.Shop]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListProducts returns the listings of open shops, optionally narrowed to a shop and a category
func (s *QueryService) ListProducts(ctx context.Context, shopID, categoryID *uint64) ([]catalog.ProductVariant, error) {
	return s.variants.Find(ctx, catalog.VariantFilter{
		ShopID:        shopID,
		CategoryID:    categoryID,
		OnlyOpenShops: true,
	})
}

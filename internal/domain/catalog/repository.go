package catalog

import (
	"context"

	"github.com/orders/backend/internal/domain/shared"
)

// ImportSummary reports what one committed feed import did
type ImportSummary struct {
	ShopID            uint64 `json:"shop_id"`
	ShopName          string `json:"shop_name"`
	ShopCreated       bool   `json:"shop_created"`
	Categories        int    `json:"categories"`
	CategoriesCreated int    `json:"categories_created"`
	ProductsCreated   int    `json:"products_created"`
	ParametersCreated int    `json:"parameters_created"`
	VariantsDeleted   int64  `json:"variants_deleted"`
	VariantsCreated   int    `json:"variants_created"`
}

// VariantFilter narrows a variant listing
type VariantFilter struct {
	ShopID        *uint64
	CategoryID    *uint64
	// OnlyOpenShops excludes variants of shops that do not accept orders
	OnlyOpenShops bool
}

// ShopRepository defines the interface for shop persistence
type ShopRepository interface {
	// FindByID finds a shop by its ID
	FindByID(ctx context.Context, id uint64) (*Shop, error)

	// FindByOwner finds the shop owned by a user
	FindByOwner(ctx context.Context, userID uint64) (*Shop, error)

	// FindAll lists shops; onlyOpen restricts the list to shops accepting orders
	FindAll(ctx context.Context, onlyOpen bool, filter shared.Filter) ([]Shop, int64, error)

	// Save persists shop changes
	Save(ctx context.Context, shop *Shop) error
}

// CategoryRepository defines the interface for category queries
type CategoryRepository interface {
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, int64, error)
}

// VariantRepository defines the interface for product variant queries
type VariantRepository interface {
	// FindByID loads a variant with its product, category and parameters
	FindByID(ctx context.Context, id uint64) (*ProductVariant, error)

	// Find lists variants with product, category and parameters preloaded
	Find(ctx context.Context, filter VariantFilter) ([]ProductVariant, error)
}

// CatalogWriter applies feeds to the catalog store
type CatalogWriter interface {
	// ReplaceShopCatalog resolves the owner's shop, upserts categories,
	// products and parameters, and replaces every variant of the shop with
	// the feed's goods. It runs as one transaction serialized per shop.
	ReplaceShopCatalog(ctx context.Context, ownerID uint64, feed *Feed) (*ImportSummary, error)
}

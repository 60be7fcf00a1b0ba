package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// categoryShop is a row of the category/shop many-to-many table
type categoryShop struct {
	CategoryID uint64 `gorm:"primaryKey"`
	ShopID     uint64 `gorm:"primaryKey"`
}

func (categoryShop) TableName() string {
	return "category_shops"
}

// GormCatalogWriter implements catalog.CatalogWriter using GORM
type GormCatalogWriter struct {
	db *gorm.DB
}

// NewGormCatalogWriter creates a new GormCatalogWriter
func NewGormCatalogWriter(db *gorm.DB) *GormCatalogWriter {
	return &GormCatalogWriter{db: db}
}

// ReplaceShopCatalog applies feed for ownerID in a single transaction.
// On PostgreSQL the transaction also holds an advisory lock on the shop
// name, so concurrent runs for one shop serialize across processes.
func (w *GormCatalogWriter) ReplaceShopCatalog(ctx context.Context, ownerID uint64, feed *catalog.Feed) (*catalog.ImportSummary, error) {
	summary := &catalog.ImportSummary{ShopName: feed.Shop}

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isPostgres(tx) {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", feed.Shop).Error; err != nil {
				return fmt.Errorf("lock shop %q: %w", feed.Shop, err)
			}
		}

		shop, created, err := resolveShop(tx, ownerID, feed.Shop)
		if err != nil {
			return err
		}
		summary.ShopID = shop.ID
		summary.ShopCreated = created

		if err := upsertCategories(tx, shop.ID, feed.Categories, summary); err != nil {
			return err
		}

		// Parameter rows go first so the replace does not depend on FK cascades.
		if err := tx.Where("variant_id IN (?)",
			tx.Model(&catalog.ProductVariant{}).Select("id").Where("shop_id = ?", shop.ID),
		).Delete(&catalog.VariantParameter{}).Error; err != nil {
			return fmt.Errorf("delete variant parameters: %w", err)
		}
		res := tx.Where("shop_id = ?", shop.ID).Delete(&catalog.ProductVariant{})
		if res.Error != nil {
			return fmt.Errorf("delete variants: %w", res.Error)
		}
		summary.VariantsDeleted = res.RowsAffected

		return insertGoods(tx, shop.ID, feed.Goods, summary)
	})
	if err != nil {
		return nil, translateWriteError(err)
	}
	return summary, nil
}

// resolveShop finds the shop named name or creates it for ownerID.
// A shop without owner is claimed; a shop of another user is a conflict,
// and so is a second shop for the same user.
func resolveShop(tx *gorm.DB, ownerID uint64, name string) (*catalog.Shop, bool, error) {
	var shop catalog.Shop
	err := tx.Where("name = ?", name).First(&shop).Error
	switch {
	case err == nil:
		if shop.IsOwnedBy(ownerID) {
			return &shop, false, nil
		}
		if shop.UserID != nil {
			return nil, false, shared.NewDomainError(shared.ErrConflict.Code,
				fmt.Sprintf("Shop %q belongs to another user", name))
		}
		if err := ensureNoOtherShop(tx, ownerID, name); err != nil {
			return nil, false, err
		}
		owner := ownerID
		shop.UserID = &owner
		if err := tx.Model(&shop).Update("user_id", owner).Error; err != nil {
			return nil, false, err
		}
		return &shop, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	if err := ensureNoOtherShop(tx, ownerID, name); err != nil {
		return nil, false, err
	}
	newShop, err := catalog.NewShop(name, ownerID)
	if err != nil {
		return nil, false, err
	}
	if err := tx.Create(newShop).Error; err != nil {
		return nil, false, err
	}
	return newShop, true, nil
}

func ensureNoOtherShop(tx *gorm.DB, ownerID uint64, name string) error {
	var existing catalog.Shop
	err := tx.Where("user_id = ?", ownerID).First(&existing).Error
	if err == nil {
		return shared.NewDomainError(shared.ErrConflict.Code,
			fmt.Sprintf("User already owns shop %q and cannot import %q", existing.Name, name))
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// upsertCategories inserts missing categories by feed id and links them to
// the shop. An existing id with a different name violates the catalog.
func upsertCategories(tx *gorm.DB, shopID uint64, categories []catalog.FeedCategory, summary *catalog.ImportSummary) error {
	now := time.Now()
	for _, fc := range categories {
		category := catalog.Category{
			BaseEntity: shared.BaseEntity{ID: fc.ID, CreatedAt: now, UpdatedAt: now},
			Name:       fc.Name,
		}
		res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&category)
		if res.Error != nil {
			return fmt.Errorf("insert category %d: %w", fc.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			var existing catalog.Category
			if err := tx.First(&existing, fc.ID).Error; err != nil {
				return fmt.Errorf("load category %d: %w", fc.ID, err)
			}
			if existing.Name != fc.Name {
				return shared.NewDomainError(shared.ErrConstraintViolation.Code,
					fmt.Sprintf("Category %d already exists with name %q", fc.ID, existing.Name))
			}
		} else {
			summary.CategoriesCreated++
		}

		link := categoryShop{CategoryID: fc.ID, ShopID: shopID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return fmt.Errorf("link category %d: %w", fc.ID, err)
		}
		summary.Categories++
	}
	return nil
}

// insertGoods creates one variant per good, resolving products and
// parameters by their natural keys. A good may use any category of the
// catalog, declared by this feed or by an earlier import.
func insertGoods(tx *gorm.DB, shopID uint64, goods []catalog.FeedGood, summary *catalog.ImportSummary) error {
	products := make(map[productKey]uint64)
	parameters := make(map[string]uint64)
	categories := make(map[uint64]bool)

	for i, good := range goods {
		exists, err := categoryExists(tx, categories, good.Category)
		if err != nil {
			return fmt.Errorf("goods[%d]: %w", i, err)
		}
		if !exists {
			return shared.NewDomainError(shared.ErrConstraintViolation.Code,
				fmt.Sprintf("goods[%d].category: category %d does not exist", i, good.Category))
		}
		productID, err := resolveProduct(tx, products, good.Name, good.Category, summary)
		if err != nil {
			return fmt.Errorf("goods[%d]: %w", i, err)
		}

		variant := catalog.ProductVariant{
			BaseEntity: shared.NewBaseEntity(),
			Model:      good.Model,
			ExternalID: good.ID,
			ProductID:  productID,
			ShopID:     shopID,
			Quantity:   int(good.Quantity),
			Price:      decimal.NewFromInt(good.Price),
			PriceRRC:   decimal.NewFromInt(good.PriceRRC),
		}
		if err := tx.Omit(clause.Associations).Create(&variant).Error; err != nil {
			return fmt.Errorf("goods[%d]: %w", i, err)
		}
		summary.VariantsCreated++

		if len(good.Parameters) == 0 {
			continue
		}
		rows := make([]catalog.VariantParameter, 0, len(good.Parameters))
		for _, p := range good.Parameters {
			parameterID, err := resolveParameter(tx, parameters, p.Name, summary)
			if err != nil {
				return fmt.Errorf("goods[%d].parameters: %w", i, err)
			}
			rows = append(rows, catalog.VariantParameter{
				BaseEntity:  shared.NewBaseEntity(),
				VariantID:   variant.ID,
				ParameterID: parameterID,
				Value:       p.Value,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return fmt.Errorf("goods[%d].parameters: %w", i, err)
		}
	}
	return nil
}

func categoryExists(tx *gorm.DB, known map[uint64]bool, id uint64) (bool, error) {
	if known[id] {
		return true, nil
	}
	var count int64
	if err := tx.Model(&catalog.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	known[id] = count > 0
	return known[id], nil
}

type productKey struct {
	name       string
	categoryID uint64
}

func resolveProduct(tx *gorm.DB, cache map[productKey]uint64, name string, categoryID uint64, summary *catalog.ImportSummary) (uint64, error) {
	key := productKey{name: name, categoryID: categoryID}
	if id, ok := cache[key]; ok {
		return id, nil
	}

	product := catalog.Product{BaseEntity: shared.NewBaseEntity(), Name: name, CategoryID: categoryID}
	res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "category_id"}},
		DoNothing: true,
	}).Create(&product)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		summary.ProductsCreated++
	} else {
		if err := tx.Where("name = ? AND category_id = ?", name, categoryID).First(&product).Error; err != nil {
			return 0, err
		}
	}
	cache[key] = product.ID
	return product.ID, nil
}

func resolveParameter(tx *gorm.DB, cache map[string]uint64, name string, summary *catalog.ImportSummary) (uint64, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}

	parameter := catalog.Parameter{BaseEntity: shared.NewBaseEntity(), Name: name}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&parameter)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		summary.ParametersCreated++
	} else {
		if err := tx.Where("name = ?", name).First(&parameter).Error; err != nil {
			return 0, err
		}
	}
	cache[name] = parameter.ID
	return parameter.ID, nil
}

// translateWriteError maps constraint errors to domain errors and keeps
// domain errors as they are. Translated constraint errors carry no driver
// text, so the wrapped path such as "goods[3]" is safe to render.
func translateWriteError(err error) error {
	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr):
		return domainErr
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.ErrConstraintViolation.Code, "Feed violates a uniqueness constraint: "+err.Error())
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewDomainError(shared.ErrConstraintViolation.Code, "Feed references a missing record: "+err.Error())
	}
	return err
}

var _ catalog.CatalogWriter = (*GormCatalogWriter)(nil)

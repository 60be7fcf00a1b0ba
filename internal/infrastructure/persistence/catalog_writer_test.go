package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCatalogWriter_ReplaceShopCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("imports a new shop with its category, product and parameters", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createUser(t, db, "partner@example.com", identity.UserTypeShop)
		writer := NewGormCatalogWriter(db)

		summary, err := writer.ReplaceShopCatalog(ctx, owner.ID, smartphoneFeed("Связной"))
		require.NoError(t, err)

		assert.True(t, summary.ShopCreated)
		assert.Equal(t, "Связной", summary.ShopName)
		assert.Equal(t, 1, summary.CategoriesCreated)
		assert.Equal(t, 1, summary.ProductsCreated)
		assert.Equal(t, 4, summary.ParametersCreated)
		assert.Equal(t, 1, summary.VariantsCreated)
		assert.Equal(t, int64(0), summary.VariantsDeleted)

		variants, err := NewGormVariantRepository(db).Find(ctx, catalog.VariantFilter{})
		require.NoError(t, err)
		require.Len(t, variants, 1)
		v := variants[0]
		assert.Equal(t, uint64(4216292), v.ExternalID)
		assert.Equal(t, summary.ShopID, v.ShopID)
		assert.Equal(t, 14, v.Quantity)
		assert.True(t, decimal.NewFromInt(110000).Equal(v.Price))
		require.NotNil(t, v.Product)
		assert.Equal(t, "Смартфоны", v.Product.Category.Name)
		require.Len(t, v.Parameters, 4)
		assert.Equal(t, "Диагональ (дюйм)", v.Parameters[0].Parameter.Name)
		assert.Equal(t, "6.5", v.Parameters[0].Value)

		var links int64
		require.NoError(t, db.Table("category_shops").Where("category_id = ? AND shop_id = ?", 224, summary.ShopID).Count(&links).Error)
		assert.Equal(t, int64(1), links)
	})

	t.Run("re-import is idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createUser(t, db, "partner@example.com", identity.UserTypeShop)
		writer := NewGormCatalogWriter(db)

		_, err := writer.ReplaceShopCatalog(ctx, owner.ID, smartphoneFeed("Связной"))
		require.NoError(t, err)
		summary, err := writer.ReplaceShopCatalog(ctx, owner.ID, smartphoneFeed("Связной"))
		require.NoError(t, err)

		assert.False(t, summary.ShopCreated)
		assert.Equal(t, 0, summary.CategoriesCreated)
		assert.Equal(t, 0, summary.ProductsCreated)
		assert.Equal(t, 0, summary.ParametersCreated)
		assert.Equal(t, int64(1), summary.VariantsDeleted)

		assert.Equal(t, int64(1), countRows(t, db, &catalog.Shop{}))
		assert.Equal(t, int64(1), countRows(t, db, &catalog.Category{}))
		assert.Equal(t, int64(1), countRows(t, db, &catalog.Product{}))
		assert.Equal(t, int64(4), countRows(t, db, &catalog.Parameter{}))
		assert.Equal(t, int64(1), countRows(t, db, &catalog.ProductVariant{}))
		assert.Equal(t, int64(4), countRows(t, db, &catalog.VariantParameter{}))
	})

	t.Run("shop owned by another user is a conflict", func(t *testing.T) {
		db := setupTestDB(t)
		first := createUser(t, db, "first@example.com", identity.UserTypeShop)
		second := createUser(t, db, "second@example.com", identity.UserTypeShop)
		writer := NewGormCatalogWriter(db)

		_, err := writer.ReplaceShopCatalog(ctx, first.ID, smartphoneFeed("Связной"))
		require.NoError(t, err)

		_, err = writer.ReplaceShopCatalog(ctx, second.ID, smartphoneFeed("Связной"))
		assert.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("user cannot own a second shop", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createUser(t, db, "partner@example.com", identity.UserTypeShop)
		writer := NewGormCatalogWriter(db)

		_, err := writer.ReplaceShopCatalog(ctx, owner.ID, smartphoneFeed("Связной"))
		require.NoError(t, err)

		_, err = writer.ReplaceShopCatalog(ctx, owner.ID, smartphoneFeed("Евросеть"))
		assert.ErrorIs(t, err, shared.ErrConflict)
		assert.Equal(t, int64(1), countRows(t, db, &catalog.Shop{}))
	})

	t.Run("category id with another name violates a constraint and rolls back", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createUser(t, db, "partner@example.com", identity.UserTypeShop)
		other := createUser(t, db, "other@example.com", identity.UserTypeShop)
		writer := NewGormCatalogWriter(db)

		_, err := writer.ReplaceShopCatalog(ctx, owner.ID, smartphoneFeed("Связной"))
		require.NoError(t, err)

		feed := smartphoneFeed("Евросеть")
		feed.Categories[0].Name = "Телефоны"
		_, err = writer.ReplaceShopCatalog(ctx, other.ID, feed)
		assert.ErrorIs(t, err, shared.ErrConstraintViolation)
		assert.Equal(t, int64(1), countRows(t, db, &catalog.Shop{}))
	})

	t.Run("good may use a category declared by another shop's feed", func(t *testing.T) {
		db := setupTestDB(t)
		first := createUser(t, db, "first@example.com", identity.UserTypeShop)
		second := createUser(t, db, "second@example.com", identity.UserTypeShop)
		writer := NewGormCatalogWriter(db)

		_, err := writer.ReplaceShopCatalog(ctx, first.ID, smartphoneFeed("Связной"))
		require.NoError(t, err)

		feed := smartphoneFeed("Евросеть")
		feed.Categories = nil
		summary, err := writer.ReplaceShopCatalog(ctx, second.ID, feed)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.VariantsCreated)
		assert.Equal(t, 0, summary.ProductsCreated, "the product of the other shop is reused")
		assert.Equal(t, int64(1), countRows(t, db, &catalog.Category{}))
		assert.Equal(t, int64(2), countRows(t, db, &catalog.ProductVariant{}))
	})

	t.Run("category missing from the catalog violates a constraint", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createUser(t, db, "partner@example.com", identity.UserTypeShop)

		feed := smartphoneFeed("Связной")
		feed.Categories = nil
		_, err := NewGormCatalogWriter(db).ReplaceShopCatalog(ctx, owner.ID, feed)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.ErrConstraintViolation.Code, domainErr.Code)
		assert.Contains(t, domainErr.Message, "goods[0].category")
		assert.Equal(t, int64(0), countRows(t, db, &catalog.Shop{}))
	})

	t.Run("duplicate good rolls back the whole import", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createUser(t, db, "partner@example.com", identity.UserTypeShop)
		writer := NewGormCatalogWriter(db)

		feed := smartphoneFeed("Связной")
		feed.Goods = append(feed.Goods, feed.Goods[0])
		_, err := writer.ReplaceShopCatalog(ctx, owner.ID, feed)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.ErrConstraintViolation.Code, domainErr.Code)
		assert.Contains(t, domainErr.Message, "goods[1]")
		assert.Equal(t, int64(0), countRows(t, db, &catalog.Shop{}))
		assert.Equal(t, int64(0), countRows(t, db, &catalog.ProductVariant{}))
	})

	t.Run("importing one shop leaves another untouched", func(t *testing.T) {
		db := setupTestDB(t)
		a := createUser(t, db, "a@example.com", identity.UserTypeShop)
		b := createUser(t, db, "b@example.com", identity.UserTypeShop)
		writer := NewGormCatalogWriter(db)

		_, err := writer.ReplaceShopCatalog(ctx, a.ID, smartphoneFeed("A"))
		require.NoError(t, err)
		summaryB, err := writer.ReplaceShopCatalog(ctx, b.ID, smartphoneFeed("B"))
		require.NoError(t, err)

		shopB := summaryB.ShopID
		before, err := NewGormVariantRepository(db).Find(ctx, catalog.VariantFilter{ShopID: &shopB})
		require.NoError(t, err)
		require.Len(t, before, 1)

		empty := smartphoneFeed("A")
		empty.Goods = nil
		summaryA, err := writer.ReplaceShopCatalog(ctx, a.ID, empty)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summaryA.VariantsDeleted)

		after, err := NewGormVariantRepository(db).Find(ctx, catalog.VariantFilter{ShopID: &shopB})
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, before[0].ID, after[0].ID)
		assert.Len(t, after[0].Parameters, 4)
	})

	t.Run("claims an unowned shop", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createUser(t, db, "partner@example.com", identity.UserTypeShop)
		require.NoError(t, db.Create(&catalog.Shop{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Name: "Связной", State: true}).Error)

		summary, err := NewGormCatalogWriter(db).ReplaceShopCatalog(ctx, owner.ID, smartphoneFeed("Связной"))
		require.NoError(t, err)
		assert.False(t, summary.ShopCreated)

		shop, err := NewGormShopRepository(db).FindByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, summary.ShopID, shop.ID)
	})
}

func TestGormCatalogWriter_PostgresAdvisoryLock(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("Связной").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "shops" WHERE name = \$1`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := NewGormCatalogWriter(db).ReplaceShopCatalog(context.Background(), 1, smartphoneFeed("Связной"))
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

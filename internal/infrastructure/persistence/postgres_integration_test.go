//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/orders/backend/internal/infrastructure/migration"
	"github.com/orders/backend/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgres starts a throwaway PostgreSQL and applies the SQL migrations
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("orders_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_ImportAndOrderFlow(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)

	partner := createUser(t, db, "partner@example.com", identity.UserTypeShop)
	buyer := createUser(t, db, "buyer@example.com", identity.UserTypeBuyer)

	writer := NewGormCatalogWriter(db)
	summary, err := writer.ReplaceShopCatalog(ctx, partner.ID, smartphoneFeed("Связной"))
	require.NoError(t, err)
	assert.True(t, summary.ShopCreated)
	assert.Equal(t, 1, summary.VariantsCreated)

	// a second run replaces the variants of the shop
	summary, err = writer.ReplaceShopCatalog(ctx, partner.ID, smartphoneFeed("Связной"))
	require.NoError(t, err)
	assert.False(t, summary.ShopCreated)
	assert.Equal(t, int64(1), summary.VariantsDeleted)

	other := createUser(t, db, "other@example.com", identity.UserTypeShop)
	_, err = writer.ReplaceShopCatalog(ctx, other.ID, smartphoneFeed("Связной"))
	assert.Error(t, err, "a shop name belongs to one owner")

	variants, err := NewGormVariantRepository(db).Find(ctx, catalog.VariantFilter{})
	require.NoError(t, err)
	require.Len(t, variants, 1)

	orders := NewGormOrderRepository(db)
	result, err := orders.AddBasketLines(ctx, buyer.ID, []trade.BasketLine{{VariantID: variants[0].ID, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	result, err = orders.AddBasketLines(ctx, buyer.ID, []trade.BasketLine{{VariantID: variants[0].ID, Quantity: 1}})
	require.NoError(t, err)
	require.True(t, result.Failed())
	assert.Equal(t, trade.LineDuplicate, result.Outcomes[0].Status)

	basket, err := orders.FindBasket(ctx, buyer.ID)
	require.NoError(t, err)
	contact := createContact(t, db, buyer.ID)

	placed, err := orders.PlaceOrder(ctx, buyer.ID, basket.ID, contact.ID)
	require.NoError(t, err)
	assert.True(t, placed)

	list, err := orders.FindUserOrders(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.NewFromInt(220000).Equal(list[0].Total()))

	shopOrders, err := orders.FindShopOrders(ctx, partner.ID)
	require.NoError(t, err)
	assert.Len(t, shopOrders, 1)

	_, err = orders.FindBasket(ctx, buyer.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPostgres_ConcurrentBasketCreation(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)

	partner := createUser(t, db, "partner@example.com", identity.UserTypeShop)
	buyer := createUser(t, db, "buyer@example.com", identity.UserTypeBuyer)
	_, err := NewGormCatalogWriter(db).ReplaceShopCatalog(ctx, partner.ID, smartphoneFeed("Связной"))
	require.NoError(t, err)
	variants, err := NewGormVariantRepository(db).Find(ctx, catalog.VariantFilter{})
	require.NoError(t, err)
	require.Len(t, variants, 1)

	const writers = 8
	orders := NewGormOrderRepository(db)
	results := make([]*trade.AddLinesResult, writers)
	errs := make([]error, writers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = orders.AddBasketLines(ctx, buyer.ID, []trade.BasketLine{{VariantID: variants[0].ID, Quantity: 1}})
		}(i)
	}
	close(start)
	wg.Wait()

	created := 0
	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		created += results[i].Created
		if results[i].Failed() {
			assert.Equal(t, trade.LineDuplicate, results[i].FirstFailure().Status)
		}
	}
	assert.Equal(t, 1, created)

	var baskets int64
	require.NoError(t, db.Model(&trade.Order{}).
		Where("user_id = ? AND state = ?", buyer.ID, trade.OrderStateBasket).
		Count(&baskets).Error)
	assert.Equal(t, int64(1), baskets)
	assert.Equal(t, int64(1), countRows(t, db, &trade.OrderLine{}))
}

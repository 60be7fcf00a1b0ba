package persistence

import (
	"context"
	"testing"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db       *gorm.DB
	repo     *GormOrderRepository
	buyer    *identity.User
	partner  *identity.User
	variants []catalog.ProductVariant
}

// newOrderFixture imports a two good feed and creates a buyer
func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := setupTestDB(t)
	partner := createUser(t, db, "partner@example.com", identity.UserTypeShop)
	buyer := createUser(t, db, "buyer@example.com", identity.UserTypeBuyer)

	feed := smartphoneFeed("Связной")
	second := feed.Goods[0]
	second.ID = 4216313
	second.Name = "Смартфон Apple iPhone XR 256GB (красный)"
	second.Price = 65000
	second.Parameters = nil
	feed.Goods = append(feed.Goods, second)

	_, err := NewGormCatalogWriter(db).ReplaceShopCatalog(context.Background(), partner.ID, feed)
	require.NoError(t, err)

	variants, err := NewGormVariantRepository(db).Find(context.Background(), catalog.VariantFilter{})
	require.NoError(t, err)
	require.Len(t, variants, 2)

	return &orderFixture{
		db:       db,
		repo:     NewGormOrderRepository(db),
		buyer:    buyer,
		partner:  partner,
		variants: variants,
	}
}

func TestGormOrderRepository_AddBasketLines(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the basket lazily and adds every line", func(t *testing.T) {
		f := newOrderFixture(t)

		_, err := f.repo.FindBasket(ctx, f.buyer.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		result, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{
			{VariantID: f.variants[0].ID, Quantity: 2},
			{VariantID: f.variants[1].ID, Quantity: 1},
		})
		require.NoError(t, err)
		assert.False(t, result.Failed())
		assert.Equal(t, 2, result.Created)

		basket, err := f.repo.FindBasket(ctx, f.buyer.ID)
		require.NoError(t, err)
		require.Len(t, basket.Lines, 2)
		assert.Equal(t, "Смартфоны", basket.Lines[0].Variant.Product.Category.Name)
		assert.Len(t, basket.Lines[0].Variant.Parameters, 4)
		assert.True(t, decimal.NewFromInt(285000).Equal(basket.Total()))
	})

	t.Run("duplicate line rolls back the whole batch", func(t *testing.T) {
		f := newOrderFixture(t)

		_, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{{VariantID: f.variants[0].ID, Quantity: 1}})
		require.NoError(t, err)

		result, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{
			{VariantID: f.variants[1].ID, Quantity: 1},
			{VariantID: f.variants[0].ID, Quantity: 3},
			{VariantID: f.variants[1].ID, Quantity: 5},
		})
		require.NoError(t, err)
		require.True(t, result.Failed())
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, trade.LineNotApplied, result.Outcomes[0].Status)
		assert.Equal(t, trade.LineDuplicate, result.Outcomes[1].Status)
		assert.Equal(t, trade.LineNotApplied, result.Outcomes[2].Status)

		basket, err := f.repo.FindBasket(ctx, f.buyer.ID)
		require.NoError(t, err)
		require.Len(t, basket.Lines, 1)
		assert.Equal(t, 1, basket.Lines[0].Quantity)
	})

	t.Run("duplicate inside one batch is rejected", func(t *testing.T) {
		f := newOrderFixture(t)

		result, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{
			{VariantID: f.variants[0].ID, Quantity: 1},
			{VariantID: f.variants[0].ID, Quantity: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, trade.LineDuplicate, result.FirstFailure().Status)
		assert.Equal(t, int64(0), countRows(t, f.db, &trade.OrderLine{}))
		assert.Equal(t, int64(0), countRows(t, f.db, &trade.Order{}), "a rejected batch leaves no basket behind")
	})

	t.Run("unknown variant", func(t *testing.T) {
		f := newOrderFixture(t)

		result, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{{VariantID: 9999, Quantity: 1}})
		require.NoError(t, err)
		assert.Equal(t, trade.LineUnknownVariant, result.FirstFailure().Status)
		assert.Equal(t, int64(0), countRows(t, f.db, &trade.Order{}))
	})

	t.Run("invalid quantity does not touch the database", func(t *testing.T) {
		f := newOrderFixture(t)

		result, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{{VariantID: f.variants[0].ID, Quantity: 0}})
		require.NoError(t, err)
		assert.Equal(t, trade.LineInvalid, result.FirstFailure().Status)
		assert.Equal(t, int64(0), countRows(t, f.db, &trade.Order{}))
	})
}

func TestGormOrderRepository_SingleBasket(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	db := f.db.WithContext(ctx)

	first, err := getOrCreateBasket(db, f.buyer.ID)
	require.NoError(t, err)
	second, err := getOrCreateBasket(db, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	err = f.db.Create(trade.NewBasket(f.buyer.ID)).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestGormOrderRepository_UpdateAndDeleteLines(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	_, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{
		{VariantID: f.variants[0].ID, Quantity: 1},
		{VariantID: f.variants[1].ID, Quantity: 1},
	})
	require.NoError(t, err)

	updated, err := f.repo.UpdateBasketLines(ctx, f.buyer.ID, []trade.BasketLine{
		{VariantID: f.variants[0].ID, Quantity: 5},
		{VariantID: 9999, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	basket, err := f.repo.FindBasket(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, basket.Lines[0].Quantity)

	// Another user's basket is out of reach
	deleted, err := f.repo.DeleteBasketLines(ctx, f.partner.ID, []uint64{basket.Lines[0].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	deleted, err = f.repo.DeleteBasketLines(ctx, f.buyer.ID, []uint64{basket.Lines[0].ID, basket.Lines[1].ID, 777})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = f.repo.DeleteBasketLines(ctx, f.buyer.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestGormOrderRepository_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("places the basket and lists it", func(t *testing.T) {
		f := newOrderFixture(t)
		contact := createContact(t, f.db, f.buyer.ID)
		_, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{{VariantID: f.variants[0].ID, Quantity: 2}})
		require.NoError(t, err)
		basket, err := f.repo.FindBasket(ctx, f.buyer.ID)
		require.NoError(t, err)

		placed, err := f.repo.PlaceOrder(ctx, f.buyer.ID, basket.ID, contact.ID)
		require.NoError(t, err)
		assert.True(t, placed)

		placed, err = f.repo.PlaceOrder(ctx, f.buyer.ID, basket.ID, contact.ID)
		require.NoError(t, err)
		assert.False(t, placed, "an order is placed once")

		orders, err := f.repo.FindUserOrders(ctx, f.buyer.ID)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, trade.OrderStateNew, orders[0].State)
		require.NotNil(t, orders[0].Contact)
		assert.Equal(t, contact.ID, orders[0].Contact.ID)
		assert.True(t, decimal.NewFromInt(220000).Equal(orders[0].Total()))

		_, err = f.repo.FindBasket(ctx, f.buyer.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("contact of another user is rejected without mutation", func(t *testing.T) {
		f := newOrderFixture(t)
		foreign := createContact(t, f.db, f.partner.ID)
		_, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{{VariantID: f.variants[0].ID, Quantity: 1}})
		require.NoError(t, err)
		basket, err := f.repo.FindBasket(ctx, f.buyer.ID)
		require.NoError(t, err)

		_, err = f.repo.PlaceOrder(ctx, f.buyer.ID, basket.ID, foreign.ID)
		assert.ErrorIs(t, err, trade.ErrContactNotOwned)

		still, err := f.repo.FindBasket(ctx, f.buyer.ID)
		require.NoError(t, err)
		assert.True(t, still.IsBasket())
		assert.Nil(t, still.ContactID)
	})

	t.Run("another user's basket does not match", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{{VariantID: f.variants[0].ID, Quantity: 1}})
		require.NoError(t, err)
		basket, err := f.repo.FindBasket(ctx, f.buyer.ID)
		require.NoError(t, err)
		partnerContact := createContact(t, f.db, f.partner.ID)

		placed, err := f.repo.PlaceOrder(ctx, f.partner.ID, basket.ID, partnerContact.ID)
		require.NoError(t, err)
		assert.False(t, placed)

		still, err := f.repo.FindBasket(ctx, f.buyer.ID)
		require.NoError(t, err)
		assert.True(t, still.IsBasket())
	})
}

func TestGormOrderRepository_FindShopOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	otherPartner := createUser(t, f.db, "other@example.com", identity.UserTypeShop)
	other := smartphoneFeed("Евросеть")
	other.Goods[0].ID = 1
	_, err := NewGormCatalogWriter(f.db).ReplaceShopCatalog(ctx, otherPartner.ID, other)
	require.NoError(t, err)
	otherShop, err := NewGormShopRepository(f.db).FindByOwner(ctx, otherPartner.ID)
	require.NoError(t, err)
	otherVariants, err := NewGormVariantRepository(f.db).Find(ctx, catalog.VariantFilter{ShopID: &otherShop.ID})
	require.NoError(t, err)
	require.Len(t, otherVariants, 1)

	contact := createContact(t, f.db, f.buyer.ID)
	_, err = f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{
		{VariantID: f.variants[0].ID, Quantity: 1},
		{VariantID: otherVariants[0].ID, Quantity: 1},
	})
	require.NoError(t, err)
	basket, err := f.repo.FindBasket(ctx, f.buyer.ID)
	require.NoError(t, err)

	orders, err := f.repo.FindShopOrders(ctx, f.partner.ID)
	require.NoError(t, err)
	assert.Empty(t, orders, "baskets are not visible to shops")

	placed, err := f.repo.PlaceOrder(ctx, f.buyer.ID, basket.ID, contact.ID)
	require.NoError(t, err)
	require.True(t, placed)

	orders, err = f.repo.FindShopOrders(ctx, f.partner.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Lines, 1)
	assert.Equal(t, f.variants[0].ID, orders[0].Lines[0].VariantID)

	orders, err = f.repo.FindShopOrders(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGormOrderRepository_UpdateState(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	contact := createContact(t, f.db, f.buyer.ID)
	_, err := f.repo.AddBasketLines(ctx, f.buyer.ID, []trade.BasketLine{{VariantID: f.variants[0].ID, Quantity: 1}})
	require.NoError(t, err)
	basket, err := f.repo.FindBasket(ctx, f.buyer.ID)
	require.NoError(t, err)
	_, err = f.repo.PlaceOrder(ctx, f.buyer.ID, basket.ID, contact.ID)
	require.NoError(t, err)

	order, err := f.repo.FindByID(ctx, basket.ID)
	require.NoError(t, err)
	require.NoError(t, order.TransitionTo(trade.OrderStateConfirmed))
	require.NoError(t, f.repo.UpdateState(ctx, order, trade.OrderStateNew))

	// A second writer still believing the order is new loses
	assert.ErrorIs(t, f.repo.UpdateState(ctx, order, trade.OrderStateNew), trade.ErrStateChangedConcurrently)

	_, err = f.repo.FindByID(ctx, 424242)
	assert.ErrorIs(t, err, trade.ErrOrderNotFound)
}

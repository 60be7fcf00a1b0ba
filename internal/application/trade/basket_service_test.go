package trade

import (
	"context"
	"testing"

	"github.com/orders/backend/internal/domain/catalog"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func variant(id uint64, price int64) *catalog.ProductVariant {
	v := &catalog.ProductVariant{Price: decimal.NewFromInt(price)}
	v.ID = id
	return v
}

func TestBasketService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("no basket yet", func(t *testing.T) {
		orders := new(MockOrderRepository)
		orders.On("FindBasket", ctx, uint64(1)).Return(nil, shared.ErrNotFound)

		got, err := NewBasketService(orders, nil).Get(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("total over lines", func(t *testing.T) {
		basket := trade.NewBasket(1)
		basket.ID = 11
		basket.Lines = []trade.OrderLine{
			{VariantID: 6, Quantity: 1, Variant: variant(6, 110000)},
			{VariantID: 3, Quantity: 2, Variant: variant(3, 1500)},
		}
		orders := new(MockOrderRepository)
		orders.On("FindBasket", ctx, uint64(1)).Return(basket, nil)

		got, err := NewBasketService(orders, nil).Get(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, uint64(11), got[0].ID)
		assert.Len(t, got[0].Lines, 2)
		assert.True(t, decimal.NewFromInt(113000).Equal(got[0].Total))
	})
}

func TestBasketService_AddLines(t *testing.T) {
	ctx := context.Background()
	lines := []trade.BasketLine{{VariantID: 6, Quantity: 1}, {VariantID: 3, Quantity: 1}}

	t.Run("created lines are counted", func(t *testing.T) {
		orders := new(MockOrderRepository)
		rec := new(MockRecorder)
		orders.On("AddBasketLines", ctx, uint64(1), lines).Return(&trade.AddLinesResult{
			Created: 2,
			Outcomes: []trade.LineOutcome{
				{Index: 0, VariantID: 6, Status: trade.LineCreated},
				{Index: 1, VariantID: 3, Status: trade.LineCreated},
			},
		}, nil)
		rec.On("BasketLinesAdded", 2).Return()

		res, err := NewBasketService(orders, rec).AddLines(ctx, 1, lines)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Created)
		assert.False(t, res.Failed())
		rec.AssertExpectations(t)
	})

	t.Run("rejected batch is a result, not an error", func(t *testing.T) {
		orders := new(MockOrderRepository)
		rec := new(MockRecorder)
		orders.On("AddBasketLines", ctx, uint64(1), lines).Return(&trade.AddLinesResult{
			Outcomes: []trade.LineOutcome{
				{Index: 0, VariantID: 6, Status: trade.LineNotApplied},
				{Index: 1, VariantID: 3, Status: trade.LineDuplicate, Message: trade.ErrDuplicateLine.Message},
			},
		}, nil)

		res, err := NewBasketService(orders, rec).AddLines(ctx, 1, lines)
		require.NoError(t, err)
		assert.True(t, res.Failed())
		assert.Equal(t, trade.LineNotApplied, res.FirstFailure().Status)
		rec.AssertNotCalled(t, "BasketLinesAdded", mock.Anything)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewBasketService(new(MockOrderRepository), nil).AddLines(ctx, 1, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestBasketService_UpdateLines(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	lines := []trade.BasketLine{{VariantID: 6, Quantity: 3}, {VariantID: 99, Quantity: 1}}
	orders.On("UpdateBasketLines", ctx, uint64(1), lines).Return(int64(1), nil)
	svc := NewBasketService(orders, nil)

	n, err := svc.UpdateLines(ctx, 1, lines)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = svc.UpdateLines(ctx, 1, []trade.BasketLine{{VariantID: 6, Quantity: 0}})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	orders.AssertNumberOfCalls(t, "UpdateBasketLines", 1)
}

func TestBasketService_RemoveLines(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	orders.On("DeleteBasketLines", ctx, uint64(1), []uint64{4, 12}).Return(int64(2), nil)
	svc := NewBasketService(orders, nil)

	n, err := svc.RemoveLines(ctx, 1, "4,abc,12,-3,")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.RemoveLines(ctx, 1, "x,y")
	assert.ErrorIs(t, err, ErrNoLineIDs)
}

package trade

import (
	"context"

	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindBasket(ctx context.Context, userID uint64) (*trade.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) AddBasketLines(ctx context.Context, userID uint64, lines []trade.BasketLine) (*trade.AddLinesResult, error) {
	args := m.Called(ctx, userID, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.AddLinesResult), args.Error(1)
}

func (m *MockOrderRepository) UpdateBasketLines(ctx context.Context, userID uint64, lines []trade.BasketLine) (int64, error) {
	args := m.Called(ctx, userID, lines)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) DeleteBasketLines(ctx context.Context, userID uint64, lineIDs []uint64) (int64, error) {
	args := m.Called(ctx, userID, lineIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) PlaceOrder(ctx context.Context, userID, orderID, contactID uint64) (bool, error) {
	args := m.Called(ctx, userID, orderID, contactID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) FindUserOrders(ctx context.Context, userID uint64) ([]trade.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindShopOrders(ctx context.Context, ownerID uint64) ([]trade.Order, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uint64) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateState(ctx context.Context, order *trade.Order, from trade.OrderState) error {
	args := m.Called(ctx, order, from)
	return args.Error(0)
}

// MockContactRepository is a mock implementation of trade.ContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) FindByUser(ctx context.Context, userID uint64) ([]trade.Contact, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByIDForUser(ctx context.Context, userID, id uint64) (*trade.Contact, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Contact), args.Error(1)
}

func (m *MockContactRepository) Save(ctx context.Context, contact *trade.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) DeleteForUser(ctx context.Context, userID uint64, ids []uint64) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockRecorder is a mock implementation of the basket and order recorders
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) BasketLinesAdded(n int) {
	m.Called(n)
}

func (m *MockRecorder) OrderPlaced() {
	m.Called()
}

func (m *MockRecorder) OrderTransitioned(to string) {
	m.Called(to)
}

func ptr(s string) *string { return &s }
